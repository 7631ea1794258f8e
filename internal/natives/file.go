package natives

import (
	"os"

	"loxgo/internal/lang"
)

// File backs the `file` module: readFile/writeFile/appendFile/removeFile/
// exists, grounded on native.c's fopen/fwrite/fread/fclose/remove family.
// Stdlib os is ambient here; no third-party filesystem package appears in
// the retrieval pack.
func File() *lang.NativeModule {
	return &lang.NativeModule{
		Name: "file",
		Fns: []lang.NativeFnEntry{
			{Name: "readFile", Fn: fileRead},
			{Name: "writeFile", Fn: fileWrite(os.O_WRONLY | os.O_CREATE | os.O_TRUNC)},
			{Name: "appendFile", Fn: fileWrite(os.O_WRONLY | os.O_CREATE | os.O_APPEND)},
			{Name: "removeFile", Fn: fileRemove},
			{Name: "exists", Fn: fileExists},
		},
	}
}

func fileRead(argCount int, args []lang.Value) (lang.Value, error) {
	if argCount != 1 || !args[0].IsString() {
		return lang.Value{}, errArgs("readFile(path)")
	}
	data, err := os.ReadFile(args[0].AsString().Chars)
	if err != nil {
		return lang.Value{}, err
	}
	return lang.ObjVal(lang.Intern(string(data))), nil
}

func fileWrite(flag int) lang.NativeFn {
	return func(argCount int, args []lang.Value) (lang.Value, error) {
		if argCount != 2 || !args[0].IsString() || !args[1].IsString() {
			return lang.Value{}, errArgs("writeFile(path, contents)")
		}
		f, err := os.OpenFile(args[0].AsString().Chars, flag, 0o644)
		if err != nil {
			return lang.Value{}, err
		}
		defer f.Close()
		if _, err := f.WriteString(args[1].AsString().Chars); err != nil {
			return lang.Value{}, err
		}
		return lang.BoolVal(true), nil
	}
}

func fileRemove(argCount int, args []lang.Value) (lang.Value, error) {
	if argCount != 1 || !args[0].IsString() {
		return lang.Value{}, errArgs("removeFile(path)")
	}
	if err := os.Remove(args[0].AsString().Chars); err != nil {
		return lang.Value{}, err
	}
	return lang.BoolVal(true), nil
}

func fileExists(argCount int, args []lang.Value) (lang.Value, error) {
	if argCount != 1 || !args[0].IsString() {
		return lang.Value{}, errArgs("exists(path)")
	}
	_, err := os.Stat(args[0].AsString().Chars)
	return lang.BoolVal(err == nil), nil
}
