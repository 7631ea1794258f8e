package natives

import (
	"math"
	"math/rand"

	"loxgo/internal/lang"
)

// Math backs the `math` module: ceil/floor/abs/sqrt/sin/cos/pow plus a
// seeded PRNG, grounded on native.c's math entries and on
// ajkachnic-ion/modules/math.go's module shape (a flat name→fn table with a
// constant injected post-registration). No third-party math/random package
// appears anywhere in the retrieval pack, so this module stays on stdlib
// math/math-rand.
func Math() *lang.NativeModule {
	rng := rand.New(rand.NewSource(1))
	return &lang.NativeModule{
		Name: "math",
		Fns: []lang.NativeFnEntry{
			{Name: "ceil", Fn: unary(math.Ceil)},
			{Name: "floor", Fn: unary(math.Floor)},
			{Name: "abs", Fn: unary(math.Abs)},
			{Name: "sqrt", Fn: unary(math.Sqrt)},
			{Name: "sin", Fn: unary(math.Sin)},
			{Name: "cos", Fn: unary(math.Cos)},
			{Name: "pow", Fn: func(argCount int, args []lang.Value) (lang.Value, error) {
				if argCount != 2 || !args[0].IsNumber() || !args[1].IsNumber() {
					return lang.Value{}, errArgs("pow(base, exponent)")
				}
				return lang.NumberVal(math.Pow(args[0].Number, args[1].Number)), nil
			}},
			{Name: "rand", Fn: func(argCount int, args []lang.Value) (lang.Value, error) {
				return lang.NumberVal(rng.Float64()), nil
			}},
			{Name: "seed", Fn: func(argCount int, args []lang.Value) (lang.Value, error) {
				if argCount != 1 || !args[0].IsNumber() {
					return lang.Value{}, errArgs("seed(n)")
				}
				rng.Seed(int64(args[0].Number))
				return lang.NilVal(), nil
			}},
		},
		PostInit: func(vm *lang.VM, table *lang.ObjTable) {
			table.Set(lang.ObjVal(vm.Intern("pi")), lang.NumberVal(math.Pi))
			table.Set(lang.ObjVal(vm.Intern("e")), lang.NumberVal(math.E))
		},
	}
}

func unary(f func(float64) float64) lang.NativeFn {
	return func(argCount int, args []lang.Value) (lang.Value, error) {
		if argCount != 1 || !args[0].IsNumber() {
			return lang.Value{}, errArgs("fn(number)")
		}
		return lang.NumberVal(f(args[0].Number)), nil
	}
}
