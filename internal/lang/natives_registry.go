package lang

import "fmt"

// NativeFnEntry and NativeModule are the concrete Go shape of spec.md §6's
// native-module registry: a module is a name, a fixed list of
// {name, NativeFn} pairs, and an optional PostInit hook that can inject
// constants or stateful entries (a seeded RNG, a singleton client) into the
// module's table once it's built, grounded on
// original_source/src/native/native.c's NativeModuleEntry/NativeFnEntry/
// NativeModuleCallback trio.
type NativeFnEntry struct {
	Name string
	Fn   NativeFn
}

type NativeModule struct {
	Name     string
	Fns      []NativeFnEntry
	PostInit func(vm *VM, table *ObjTable)
}

// Intern exposes the VM's string interner to native-module constructors so
// PostInit hooks can set table keys that coincide, by pointer identity,
// with the interned strings the compiler emits for dot/index access.
func (vm *VM) Intern(s string) *ObjString {
	return vm.interner.Intern(s)
}

// activeInterner backs the package-level Intern helper below. Native
// functions follow spec.md §6's fixed NativeFn signature
// (func(argCount int, args []Value) (Value, error)), which carries no VM
// handle, so a string a native constructs and returns (e.g. file contents)
// has no way to go through the owning VM's interner directly. Since an
// embedding host runs one VM per process in practice, NewVM records itself
// here so natives can still intern through the package-level Intern
// function and preserve the "identity coincides with content equality"
// string invariant from spec.md §3.
var activeInterner *Interner

// Intern interns s through whichever VM was constructed most recently,
// for use by native function bodies that have no VM handle of their own.
func Intern(s string) *ObjString {
	if activeInterner == nil {
		activeInterner = newInterner()
	}
	return activeInterner.Intern(s)
}

// activeVM backs the package-level CallFunction helper below, for the same
// reason activeInterner backs Intern: a native function that needs to
// invoke a script-provided closure (the array module's map/filter/reduce
// callbacks) has no VM handle of its own through the fixed NativeFn
// signature.
var activeVM *VM

// CallFunction invokes callee (expected to be a closure or bound method)
// with args, through whichever VM was constructed most recently. See
// activeVM.
func CallFunction(callee Value, args []Value) (Value, error) {
	if activeVM == nil {
		return Value{}, fmt.Errorf("no active VM to call through")
	}
	return activeVM.Call(callee, args)
}

// RegisterModule makes a module available to `module(name)` scripts. Host
// programs call this after NewVM to wire in whichever native modules they
// want exposed; the VM itself never imports module implementations, so the
// core interpreter stays free of the domain dependencies those modules use.
func (vm *VM) RegisterModule(m *NativeModule) {
	vm.modules[m.Name] = m
}

// nativeModule backs the `module(name)` builtin spec.md §6 describes: it
// builds a fresh Table of the named module's functions on every call,
// running PostInit each time.
func (vm *VM) nativeModule(argCount int, args []Value) (Value, error) {
	if argCount != 1 || !args[0].IsString() {
		return Value{}, fmt.Errorf("module() expects a single string argument")
	}
	name := args[0].AsString().Chars
	m, ok := vm.modules[name]
	if !ok {
		return Value{}, fmt.Errorf("unknown module '%s'", name)
	}

	table := newTable()
	for _, entry := range m.Fns {
		fnName := entry.Name
		table.Set(ObjVal(vm.interner.Intern(fnName)), ObjVal(&ObjNative{Name: name + "." + fnName, Fn: entry.Fn}))
	}
	if m.PostInit != nil {
		m.PostInit(vm, table)
	}
	return ObjVal(table), nil
}
