package natives

import (
	"encoding/json"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"loxgo/internal/lang"
)

// cborMode decodes CBOR maps into map[string]any rather than cbor/v2's
// default map[any]any, so fromGoValue's map[string]any case can handle both
// codecs identically.
var cborMode = func() cbor.DecMode {
	mode, err := cbor.DecOptions{DefaultMapType: reflect.TypeOf(map[string]any{})}.DecMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

// JSON backs the `json` module (text encode/decode via stdlib
// encoding/json) and CBOR backs a separate `cbor` module for
// the binary sibling, grounded on chazu-maggie/go.mod's
// github.com/fxamacker/cbor/v2 dependency. Both modules marshal through a
// shared Go-value bridge so the codec choice is the only thing that
// differs.
func JSON() *lang.NativeModule {
	return &lang.NativeModule{
		Name: "json",
		Fns: []lang.NativeFnEntry{
			{Name: "encode", Fn: encodeWith(json.Marshal)},
			{Name: "decode", Fn: decodeWith(json.Unmarshal)},
		},
	}
}

func CBOR() *lang.NativeModule {
	return &lang.NativeModule{
		Name: "cbor",
		Fns: []lang.NativeFnEntry{
			{Name: "encode", Fn: encodeWith(cbor.Marshal)},
			{Name: "decode", Fn: decodeWith(cborMode.Unmarshal)},
		},
	}
}

func encodeWith(marshal func(any) ([]byte, error)) lang.NativeFn {
	return func(argCount int, args []lang.Value) (lang.Value, error) {
		if argCount != 1 {
			return lang.Value{}, errArgs("encode(value)")
		}
		data, err := marshal(toGoValue(args[0]))
		if err != nil {
			return lang.Value{}, err
		}
		return lang.ObjVal(lang.Intern(string(data))), nil
	}
}

func decodeWith(unmarshal func([]byte, any) error) lang.NativeFn {
	return func(argCount int, args []lang.Value) (lang.Value, error) {
		if argCount != 1 || !args[0].IsString() {
			return lang.Value{}, errArgs("decode(text)")
		}
		var v any
		if err := unmarshal([]byte(args[0].AsString().Chars), &v); err != nil {
			return lang.Value{}, err
		}
		return fromGoValue(v), nil
	}
}

// toGoValue/fromGoValue bridge between the language's Value union and the
// plain any tree encoding/json and cbor both marshal, so tables become
// maps, arrays become slices, and scalars pass through directly.
func toGoValue(v lang.Value) any {
	switch {
	case v.IsNil():
		return nil
	case v.IsBool():
		return v.Bool
	case v.IsNumber():
		return v.Number
	case v.IsString():
		return v.AsString().Chars
	case v.IsArray():
		arr := v.AsArray()
		out := make([]any, len(arr.Values))
		for i, e := range arr.Values {
			out[i] = toGoValue(e)
		}
		return out
	case v.IsTable():
		out := make(map[string]any)
		v.AsTable().Each(func(k, val lang.Value) {
			out[lang.PrintValue(k)] = toGoValue(val)
		})
		return out
	default:
		return lang.PrintValue(v)
	}
}

func fromGoValue(v any) lang.Value {
	switch t := v.(type) {
	case nil:
		return lang.NilVal()
	case bool:
		return lang.BoolVal(t)
	case float64:
		return lang.NumberVal(t)
	case int64:
		return lang.NumberVal(float64(t))
	case uint64:
		return lang.NumberVal(float64(t))
	case string:
		return lang.ObjVal(lang.Intern(t))
	case []any:
		result := lang.NewArrayValue()
		arr := result.AsArray()
		for _, e := range t {
			arr.Push(fromGoValue(e))
		}
		return result
	case map[string]any:
		result := lang.NewTableValue()
		table := result.AsTable()
		for k, e := range t {
			table.Set(lang.ObjVal(lang.Intern(k)), fromGoValue(e))
		}
		return result
	default:
		return lang.NilVal()
	}
}
