package natives

import (
	"sort"

	"loxgo/internal/lang"
)

// Array backs the `array` module: push/pop/insert/remove/sort/reverse/find/
// findLast/map/filter/reduce/flatten, grounded on native.c's arrayFns
// table. map/filter/reduce/find/findLast/sort-with-comparator call back
// into a script-provided closure through lang.CallFunction, since the
// NativeFn signature carries no VM handle of its own.
func Array() *lang.NativeModule {
	return &lang.NativeModule{
		Name: "array",
		Fns: []lang.NativeFnEntry{
			{Name: "push", Fn: arrayPush},
			{Name: "pop", Fn: arrayPop},
			{Name: "insert", Fn: arrayInsert},
			{Name: "remove", Fn: arrayRemove},
			{Name: "sort", Fn: arraySort},
			{Name: "reverse", Fn: arrayReverse},
			{Name: "find", Fn: arrayFind},
			{Name: "findLast", Fn: arrayFindLast},
			{Name: "map", Fn: arrayMap},
			{Name: "filter", Fn: arrayFilter},
			{Name: "reduce", Fn: arrayReduce},
			{Name: "flatten", Fn: arrayFlatten},
		},
	}
}

func arrayPush(argCount int, args []lang.Value) (lang.Value, error) {
	if argCount != 2 || !args[0].IsArray() {
		return lang.Value{}, errArgs("push(array, value)")
	}
	args[0].AsArray().Push(args[1])
	return args[0], nil
}

func arrayPop(argCount int, args []lang.Value) (lang.Value, error) {
	if argCount != 1 || !args[0].IsArray() {
		return lang.Value{}, errArgs("pop(array)")
	}
	v, ok := args[0].AsArray().Pop()
	if !ok {
		return lang.NilVal(), nil
	}
	return v, nil
}

func arrayInsert(argCount int, args []lang.Value) (lang.Value, error) {
	if argCount != 3 || !args[0].IsArray() || !args[1].IsNumber() {
		return lang.Value{}, errArgs("insert(array, index, value)")
	}
	arr := args[0].AsArray()
	i := int(args[1].Number)
	if i < 0 || i > len(arr.Values) {
		return lang.Value{}, errArgs("insert(array, index, value): index out of bounds")
	}
	arr.Values = append(arr.Values[:i], append([]lang.Value{args[2]}, arr.Values[i:]...)...)
	return args[0], nil
}

func arrayRemove(argCount int, args []lang.Value) (lang.Value, error) {
	if argCount != 2 || !args[0].IsArray() || !args[1].IsNumber() {
		return lang.Value{}, errArgs("remove(array, index)")
	}
	arr := args[0].AsArray()
	i := int(args[1].Number)
	if i < 0 || i >= len(arr.Values) {
		return lang.Value{}, errArgs("remove(array, index): index out of bounds")
	}
	removed := arr.Values[i]
	arr.Values = append(arr.Values[:i], arr.Values[i+1:]...)
	return removed, nil
}

func arrayReverse(argCount int, args []lang.Value) (lang.Value, error) {
	if argCount != 1 || !args[0].IsArray() {
		return lang.Value{}, errArgs("reverse(array)")
	}
	values := args[0].AsArray().Values
	for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
		values[i], values[j] = values[j], values[i]
	}
	return args[0], nil
}

// arraySort sorts in place. With one argument it orders numbers or strings
// by their natural order; with two it calls the second argument as a
// comparator returning a negative number when the first value sorts
// before the second, positive when after, zero when equal (the same
// contract the host language's C native array module uses for qsort-backed
// comparisons).
func arraySort(argCount int, args []lang.Value) (lang.Value, error) {
	if argCount < 1 || argCount > 2 || !args[0].IsArray() {
		return lang.Value{}, errArgs("sort(array) or sort(array, comparator)")
	}
	values := args[0].AsArray().Values

	if argCount == 2 {
		comparator := args[1]
		var sortErr error
		sort.SliceStable(values, func(i, j int) bool {
			if sortErr != nil {
				return false
			}
			result, err := lang.CallFunction(comparator, []lang.Value{values[i], values[j]})
			if err != nil {
				sortErr = err
				return false
			}
			if !result.IsNumber() {
				sortErr = errArgs("sort comparator must return a number")
				return false
			}
			return result.Number < 0
		})
		if sortErr != nil {
			return lang.Value{}, sortErr
		}
		return args[0], nil
	}

	var sortErr error
	sort.SliceStable(values, func(i, j int) bool {
		a, b := values[i], values[j]
		switch {
		case a.IsNumber() && b.IsNumber():
			return a.Number < b.Number
		case a.IsString() && b.IsString():
			return a.AsString().Chars < b.AsString().Chars
		default:
			sortErr = errArgs("sort(array) requires all-number or all-string elements; use sort(array, comparator) otherwise")
			return false
		}
	})
	if sortErr != nil {
		return lang.Value{}, sortErr
	}
	return args[0], nil
}

func arrayFind(argCount int, args []lang.Value) (lang.Value, error) {
	if argCount != 2 || !args[0].IsArray() {
		return lang.Value{}, errArgs("find(array, predicate)")
	}
	for _, v := range args[0].AsArray().Values {
		result, err := lang.CallFunction(args[1], []lang.Value{v})
		if err != nil {
			return lang.Value{}, err
		}
		if !result.IsFalsey() {
			return v, nil
		}
	}
	return lang.NilVal(), nil
}

func arrayFindLast(argCount int, args []lang.Value) (lang.Value, error) {
	if argCount != 2 || !args[0].IsArray() {
		return lang.Value{}, errArgs("findLast(array, predicate)")
	}
	values := args[0].AsArray().Values
	for i := len(values) - 1; i >= 0; i-- {
		result, err := lang.CallFunction(args[1], []lang.Value{values[i]})
		if err != nil {
			return lang.Value{}, err
		}
		if !result.IsFalsey() {
			return values[i], nil
		}
	}
	return lang.NilVal(), nil
}

func arrayMap(argCount int, args []lang.Value) (lang.Value, error) {
	if argCount != 2 || !args[0].IsArray() {
		return lang.Value{}, errArgs("map(array, fn)")
	}
	result := lang.NewArrayValue()
	out := result.AsArray()
	for _, v := range args[0].AsArray().Values {
		mapped, err := lang.CallFunction(args[1], []lang.Value{v})
		if err != nil {
			return lang.Value{}, err
		}
		out.Push(mapped)
	}
	return result, nil
}

func arrayFilter(argCount int, args []lang.Value) (lang.Value, error) {
	if argCount != 2 || !args[0].IsArray() {
		return lang.Value{}, errArgs("filter(array, predicate)")
	}
	result := lang.NewArrayValue()
	out := result.AsArray()
	for _, v := range args[0].AsArray().Values {
		keep, err := lang.CallFunction(args[1], []lang.Value{v})
		if err != nil {
			return lang.Value{}, err
		}
		if !keep.IsFalsey() {
			out.Push(v)
		}
	}
	return result, nil
}

func arrayReduce(argCount int, args []lang.Value) (lang.Value, error) {
	if argCount != 3 || !args[0].IsArray() {
		return lang.Value{}, errArgs("reduce(array, fn, initial)")
	}
	acc := args[2]
	for _, v := range args[0].AsArray().Values {
		var err error
		acc, err = lang.CallFunction(args[1], []lang.Value{acc, v})
		if err != nil {
			return lang.Value{}, err
		}
	}
	return acc, nil
}

// arrayFlatten flattens one level of nesting, matching JavaScript's
// Array.prototype.flat() default depth rather than a full deep flatten.
func arrayFlatten(argCount int, args []lang.Value) (lang.Value, error) {
	if argCount != 1 || !args[0].IsArray() {
		return lang.Value{}, errArgs("flatten(array)")
	}
	result := lang.NewArrayValue()
	out := result.AsArray()
	for _, v := range args[0].AsArray().Values {
		if v.IsArray() {
			out.Values = append(out.Values, v.AsArray().Values...)
		} else {
			out.Push(v)
		}
	}
	return result, nil
}
