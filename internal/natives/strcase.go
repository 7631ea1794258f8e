package natives

import (
	"github.com/iancoleman/strcase"

	"loxgo/internal/lang"
)

// Strcase backs the `strcase` module: snake/camel/kebab case conversion,
// grounded on chazu-maggie/go.mod's github.com/iancoleman/strcase
// dependency.
func Strcase() *lang.NativeModule {
	return &lang.NativeModule{
		Name: "strcase",
		Fns: []lang.NativeFnEntry{
			{Name: "snake", Fn: convert(strcase.ToSnake)},
			{Name: "camel", Fn: convert(strcase.ToCamel)},
			{Name: "kebab", Fn: convert(strcase.ToKebab)},
		},
	}
}

func convert(f func(string) string) lang.NativeFn {
	return func(argCount int, args []lang.Value) (lang.Value, error) {
		if argCount != 1 || !args[0].IsString() {
			return lang.Value{}, errArgs("fn(text)")
		}
		return lang.ObjVal(lang.Intern(f(args[0].AsString().Chars))), nil
	}
}
