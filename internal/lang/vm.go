package lang

import (
	"fmt"

	multierror "github.com/hashicorp/go-multierror"
)

const (
	framesMax = 64
	stackMax  = framesMax * 256
)

// InterpretResult is spec.md §4.4/§6's tri-state outcome of running a
// program.
type InterpretResult int

const (
	InterpretOK InterpretResult = iota
	InterpretCompileError
	InterpretRuntimeError
)

// CallFrame is one activation record, per spec.md §3: a closure, an
// instruction pointer into that closure's function's chunk, and the base
// index into the VM's value stack where the frame's locals/receiver begin
// (spec.md's "slot[0] is the receiver or implicit self").
type CallFrame struct {
	closure *ObjClosure
	ip      int
	base    int
}

// VM is the stack-based interpreter of spec.md §4.4: a value stack, a call
// stack, a globals table, the string interner, the open-upvalue chain, and
// the cached operator-dunder name strings the ADD/dunder-dispatch path
// looks up on every binary op against instances.
type VM struct {
	stack  []Value
	frames []CallFrame

	globals  map[*ObjString]Value
	interner *Interner

	openUpvalues *ObjUpvalue

	initString *ObjString
	dunders    map[OpCode]*ObjString

	modules map[string]*NativeModule
}

// NewVM constructs a VM with empty globals and the operator-dunder name
// cache pre-interned, per spec.md §4.4's "the VM caches the operator method
// name strings rather than re-interning them per dispatch."
func NewVM() *VM {
	interner := newInterner()
	vm := &VM{
		// Fixed capacity, never reallocated: open upvalues hold raw
		// pointers into this backing array (captureUpvalue), matching the
		// teacher's fixed-size value stack rather than a Go slice that
		// could move its storage on growth.
		stack:    make([]Value, 0, stackMax),
		globals:  make(map[*ObjString]Value),
		interner: interner,
		modules:  make(map[string]*NativeModule),
	}
	vm.initString = interner.Intern("init")
	vm.dunders = map[OpCode]*ObjString{
		OpAdd:        interner.Intern("__add"),
		OpSubtract:   interner.Intern("__sub"),
		OpMultiply:   interner.Intern("__mul"),
		OpDivide:     interner.Intern("__div"),
		OpMod:        interner.Intern("__mod"),
		OpBitwiseAnd: interner.Intern("__and"),
		OpBitwiseOr:  interner.Intern("__or"),
		OpBitwiseXor: interner.Intern("__xor"),
		OpNot:        interner.Intern("__not"),
		OpEqual:      interner.Intern("__eq"),
		OpGreater:    interner.Intern("__gt"),
		OpLess:       interner.Intern("__lt"),
	}
	vm.defineNative("module", vm.nativeModule)
	activeInterner = interner
	activeVM = vm
	return vm
}

func (vm *VM) push(v Value) {
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek(distance int) Value {
	return vm.stack[len(vm.stack)-1-distance]
}

func (vm *VM) resetStack() {
	vm.stack = vm.stack[:0]
	vm.frames = nil
	vm.openUpvalues = nil
}

// Interpret compiles and runs source, per spec.md §6's `interpret()`
// contract.
func (vm *VM) Interpret(source string) InterpretResult {
	fn, err := compile(source, vm.interner)
	if err != nil {
		if merr, ok := err.(*multierror.Error); ok {
			for _, e := range merr.Errors {
				fmt.Println(e)
			}
		} else {
			fmt.Println(err)
		}
		return InterpretCompileError
	}

	closure := newClosure(fn)
	vm.push(ObjVal(closure))
	if err := vm.call(closure, 0); err != nil {
		fmt.Println(err)
		return InterpretRuntimeError
	}

	if _, err := vm.run(0); err != nil {
		fmt.Println(err)
		vm.resetStack()
		return InterpretRuntimeError
	}
	return InterpretOK
}

// Call invokes a callable Value (closure, bound method, class, or native)
// from outside the bytecode loop with args already materialized as Go
// values, and returns its result. This is how a native function (e.g. the
// array module's map/filter/reduce) calls back into a script-provided
// callback: the NativeFn contract has no VM handle, so natives reach this
// through the package-level CallFunction, which routes to whichever VM
// registered itself most recently (the same activeInterner-style workaround
// used for string interning from native bodies).
func (vm *VM) Call(callee Value, args []Value) (Value, error) {
	depth := len(vm.frames)
	vm.push(callee)
	for _, a := range args {
		vm.push(a)
	}
	if err := vm.callValue(callee, len(args)); err != nil {
		return Value{}, err
	}
	if len(vm.frames) == depth {
		// Resolved synchronously (a native or a zero-arg class constructor
		// with no init): the result is already on top of the stack.
		return vm.pop(), nil
	}
	return vm.run(depth)
}

// runtimeError formats spec.md §6's diagnostics and unwinds the frame
// stack's representation in the returned error; the VM's own stack reset
// happens in Interpret, not here, so callers that want to recover mid-call
// can still inspect vm.frames at the point of failure.
func (vm *VM) runtimeError(format string, args ...any) error {
	out := fmt.Sprintf(format, args...)
	for i := len(vm.frames) - 1; i >= 0; i-- {
		f := &vm.frames[i]
		fn := f.closure.Function
		name := "script"
		if fn.Name != nil {
			name = fn.Name.Chars + "()"
		}
		out += fmt.Sprintf("\n[line %d] in %s", fn.Chunk.Lines[f.ip-1], name)
	}
	return fmt.Errorf("%s", out)
}

func (vm *VM) call(closure *ObjClosure, argCount int) error {
	if argCount != closure.Function.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", closure.Function.Arity, argCount)
	}
	if len(vm.frames) == framesMax {
		return vm.runtimeError("Stack overflow.")
	}
	vm.frames = append(vm.frames, CallFrame{
		closure: closure,
		base:    len(vm.stack) - argCount - 1,
	})
	return nil
}

// callValue implements spec.md §4.4's callee-kind dispatch: closures call
// normally; classes allocate an instance and run `init` if present;
// bound methods rebind the receiver into slot 0 and call the underlying
// closure; natives call directly without pushing a frame; anything else is
// a runtime error.
func (vm *VM) callValue(callee Value, argCount int) error {
	if callee.IsObj() {
		switch obj := callee.Obj.(type) {
		case *ObjClosure:
			return vm.call(obj, argCount)
		case *ObjClass:
			instance := newInstance(obj)
			vm.stack[len(vm.stack)-argCount-1] = ObjVal(instance)
			if initializer, ok := obj.Methods[vm.initString]; ok {
				return vm.call(initializer, argCount)
			}
			if argCount != 0 {
				return vm.runtimeError("Expected 0 arguments but got %d.", argCount)
			}
			return nil
		case *ObjBoundMethod:
			vm.stack[len(vm.stack)-argCount-1] = obj.Receiver
			return vm.call(obj.Method, argCount)
		case *ObjNative:
			args := vm.stack[len(vm.stack)-argCount:]
			result, err := obj.Fn(argCount, args)
			if err != nil {
				return vm.runtimeError("%s", err.Error())
			}
			vm.stack = vm.stack[:len(vm.stack)-argCount-1]
			vm.push(result)
			return nil
		}
	}
	return vm.runtimeError("Can only call functions and classes.")
}

// invoke implements spec.md §4.4's OP_INVOKE short-circuit: resolve the
// property as a field first (a stored closure-valued field shadows a
// method, per the same rule plain GET_PROPERTY uses), else dispatch the
// class method directly without constructing an intermediate bound method.
func (vm *VM) invoke(name *ObjString, argCount int) error {
	receiver := vm.peek(argCount)
	switch {
	case receiver.IsInstance():
		instance := receiver.AsInstance()
		if field, ok := instance.Fields[name]; ok {
			vm.stack[len(vm.stack)-argCount-1] = field
			return vm.callValue(field, argCount)
		}
		return vm.invokeFromClass(instance.Class, name, argCount)
	case receiver.IsTable():
		// A native module's table of functions (module("array").map(...))
		// has no class to fall back to, so `name(args)` dot-calls resolve
		// exactly like GET_PROPERTY followed by CALL.
		field, ok := receiver.AsTable().Get(ObjVal(name))
		if !ok {
			return vm.runtimeError("Undefined key '%s'.", name.Chars)
		}
		vm.stack[len(vm.stack)-argCount-1] = field
		return vm.callValue(field, argCount)
	default:
		return vm.runtimeError("Only instances and tables have methods.")
	}
}

func (vm *VM) invokeFromClass(class *ObjClass, name *ObjString, argCount int) error {
	method, ok := class.Methods[name]
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.Chars)
	}
	return vm.call(method, argCount)
}

func (vm *VM) bindMethod(class *ObjClass, name *ObjString) (Value, bool) {
	method, ok := class.Methods[name]
	if !ok {
		return Value{}, false
	}
	return ObjVal(&ObjBoundMethod{Receiver: vm.peek(0), Method: method}), true
}

// captureUpvalue finds or creates the open upvalue for the stack slot at
// absolute index slot, inserting it in slot-descending order so closing a
// range of slots can walk the chain once, per spec.md §4.4. The chain is
// keyed on the slot index rather than the teacher's raw stack pointer scan,
// since comparing indices reads the same either way but is easier to reason
// about against a fixed-capacity backing array.
func (vm *VM) captureUpvalue(slot int) *ObjUpvalue {
	var prev *ObjUpvalue
	cur := vm.openUpvalues
	for cur != nil && cur.Slot > slot {
		prev = cur
		cur = cur.Next
	}
	if cur != nil && cur.Slot == slot {
		return cur
	}

	created := &ObjUpvalue{Location: &vm.stack[slot], Slot: slot, Next: cur}
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.Next = created
	}
	return created
}

// closeUpvalues closes every open upvalue at or above slot, copying the
// live stack value into Closed and detaching Location from the stack.
func (vm *VM) closeUpvalues(slot int) {
	for vm.openUpvalues != nil && vm.openUpvalues.Slot >= slot {
		uv := vm.openUpvalues
		uv.Closed = vm.stack[uv.Slot]
		uv.Location = &uv.Closed
		vm.openUpvalues = uv.Next
	}
}

func (vm *VM) defineMethod(name *ObjString) {
	method := vm.peek(0).AsClosure()
	class := vm.peek(1).AsClass()
	class.Methods[name] = method
	vm.pop()
}

func (vm *VM) defineField(name *ObjString) {
	value := vm.peek(0)
	class := vm.peek(1).AsClass()
	class.Fields[name] = value
	vm.pop()
}

func isFalsey(v Value) bool { return v.IsFalsey() }

// run is spec.md §4.4's dispatch loop: fetch-decode-execute over the
// current frame's chunk until a frame at targetDepth returns, an explicit
// RUNTIME_ERROR occurs, or DUMP/other side effects fire. targetDepth is 0
// for the outermost script call; Call passes the depth it recorded before
// pushing a new frame, so the loop can re-enter recursively when a native
// calls back into a script closure and unwind only as far as that call.
func (vm *VM) run(targetDepth int) (Value, error) {
	frame := &vm.frames[len(vm.frames)-1]

	readByte := func() byte {
		b := frame.closure.Function.Chunk.Code[frame.ip]
		frame.ip++
		return b
	}
	readShort := func() int {
		hi := readByte()
		lo := readByte()
		return int(hi)<<8 | int(lo)
	}
	readConstant := func() Value {
		return frame.closure.Function.Chunk.Constants[readByte()]
	}
	readString := func() *ObjString {
		return readConstant().AsString()
	}

	for {
		op := OpCode(readByte())
		switch op {
		case OpConstant:
			vm.push(readConstant())
		case OpNil:
			vm.push(NilVal())
		case OpTrue:
			vm.push(BoolVal(true))
		case OpFalse:
			vm.push(BoolVal(false))
		case OpPop:
			vm.pop()
		case OpDup:
			vm.push(vm.peek(0))

		case OpGetLocal:
			vm.push(vm.stack[frame.base+int(readByte())])
		case OpSetLocal:
			vm.stack[frame.base+int(readByte())] = vm.peek(0)
		case OpGetUpvalue:
			vm.push(*frame.closure.Upvalues[readByte()].Location)
		case OpSetUpvalue:
			*frame.closure.Upvalues[readByte()].Location = vm.peek(0)

		case OpGetGlobal:
			name := readString()
			v, ok := vm.globals[name]
			if !ok {
				return Value{}, vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}
			vm.push(v)
		case OpDefineGlobal:
			vm.globals[readString()] = vm.peek(0)
			vm.pop()
		case OpSetGlobal:
			name := readString()
			if _, ok := vm.globals[name]; !ok {
				return Value{}, vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}
			vm.globals[name] = vm.peek(0)

		case OpGetProperty:
			if err := vm.getProperty(readString()); err != nil {
				return Value{}, err
			}
		case OpSetProperty:
			name := readString()
			if !vm.peek(1).IsInstance() {
				return Value{}, vm.runtimeError("Only instances have fields.")
			}
			instance := vm.peek(1).AsInstance()
			instance.Fields[name] = vm.peek(0)
			value := vm.pop()
			vm.pop()
			vm.push(value)
		case OpGetSuper:
			name := readString()
			superclass := vm.pop().AsClass()
			receiver := vm.pop()
			bound, ok := vm.bindMethodOn(receiver.AsInstance(), superclass, name)
			if !ok {
				return Value{}, vm.runtimeError("Undefined property '%s'.", name.Chars)
			}
			vm.push(bound)

		case OpEqual:
			b := vm.pop()
			a := vm.pop()
			if sameClassInstances(a, b) {
				if _, ok := a.AsInstance().Class.Methods[vm.dunders[OpEqual]]; ok {
					if err := vm.dunderBinary(OpEqual, a, b); err != nil {
						return Value{}, err
					}
					frame = &vm.frames[len(vm.frames)-1]
					break
				}
			}
			vm.push(BoolVal(ValuesEqual(a, b)))
		case OpGreater:
			if err := vm.binaryCompare(op); err != nil {
				return Value{}, err
			}
			frame = &vm.frames[len(vm.frames)-1]
		case OpLess:
			if err := vm.binaryCompare(op); err != nil {
				return Value{}, err
			}
			frame = &vm.frames[len(vm.frames)-1]

		case OpAdd:
			if err := vm.add(); err != nil {
				return Value{}, err
			}
			frame = &vm.frames[len(vm.frames)-1]
		case OpSubtract, OpMultiply, OpDivide:
			if err := vm.binaryArith(op); err != nil {
				return Value{}, err
			}
			frame = &vm.frames[len(vm.frames)-1]
		case OpMod:
			if err := vm.binaryIntOp(op); err != nil {
				return Value{}, err
			}
			frame = &vm.frames[len(vm.frames)-1]
		case OpBitwiseAnd, OpBitwiseOr, OpBitwiseXor, OpShiftLeft, OpShiftRight:
			if err := vm.binaryIntOp(op); err != nil {
				return Value{}, err
			}
			frame = &vm.frames[len(vm.frames)-1]

		case OpNot:
			if vm.peek(0).IsInstance() {
				if err := vm.dunderUnary(op); err != nil {
					return Value{}, err
				}
				frame = &vm.frames[len(vm.frames)-1]
				break
			}
			vm.push(BoolVal(isFalsey(vm.pop())))
		case OpNegate:
			if !vm.peek(0).IsNumber() {
				return Value{}, vm.runtimeError("Operand must be a number.")
			}
			vm.push(NumberVal(-vm.pop().Number))

		case OpJump:
			offset := readShort()
			frame.ip += offset
		case OpJumpIfFalse:
			offset := readShort()
			if isFalsey(vm.peek(0)) {
				frame.ip += offset
			}
		case OpLoop:
			offset := readShort()
			frame.ip -= offset

		case OpCall:
			argCount := int(readByte())
			if err := vm.callValue(vm.peek(argCount), argCount); err != nil {
				return Value{}, err
			}
			frame = &vm.frames[len(vm.frames)-1]
		case OpInvoke:
			name := readString()
			argCount := int(readByte())
			if err := vm.invoke(name, argCount); err != nil {
				return Value{}, err
			}
			frame = &vm.frames[len(vm.frames)-1]
		case OpSuperInvoke:
			name := readString()
			argCount := int(readByte())
			superclass := vm.pop().AsClass()
			if err := vm.invokeFromClass(superclass, name, argCount); err != nil {
				return Value{}, err
			}
			frame = &vm.frames[len(vm.frames)-1]

		case OpIndex:
			if err := vm.index(); err != nil {
				return Value{}, err
			}
		case OpSetIndex:
			if err := vm.setIndex(); err != nil {
				return Value{}, err
			}

		case OpClosure:
			fn := readConstant().AsFunction()
			closure := newClosure(fn)
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := readByte()
				index := readByte()
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(frame.base + int(index))
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}
			vm.push(ObjVal(closure))
		case OpCloseUpvalue:
			vm.closeUpvalues(len(vm.stack) - 1)
			vm.pop()

		case OpSetTable:
			count := int(readByte())
			table := newTable()
			entries := vm.stack[len(vm.stack)-count*2:]
			for i := 0; i < count; i++ {
				table.Set(entries[i*2], entries[i*2+1])
			}
			vm.stack = vm.stack[:len(vm.stack)-count*2]
			vm.push(ObjVal(table))
		case OpSetArray:
			count := int(readByte())
			arr := newArray()
			entries := vm.stack[len(vm.stack)-count:]
			arr.Values = append(arr.Values, entries...)
			vm.stack = vm.stack[:len(vm.stack)-count]
			vm.push(ObjVal(arr))

		case OpReturn:
			result := vm.pop()
			vm.closeUpvalues(frame.base)
			base := frame.base
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == targetDepth {
				vm.stack = vm.stack[:base]
				return result, nil
			}
			vm.stack = vm.stack[:base]
			vm.push(result)
			frame = &vm.frames[len(vm.frames)-1]

		case OpDump:
			fmt.Println(PrintValue(vm.pop()))

		case OpClass:
			vm.push(ObjVal(newClass(readString())))
		case OpMethod:
			vm.defineMethod(readString())
		case OpProperty:
			vm.defineField(readString())
		case OpInherit:
			superVal := vm.peek(1)
			if !superVal.IsClass() {
				return Value{}, vm.runtimeError("Superclass must be a class.")
			}
			superclass := superVal.AsClass()
			subclass := vm.peek(0).AsClass()
			for name, method := range superclass.Methods {
				subclass.Methods[name] = method
			}
			for name, field := range superclass.Fields {
				subclass.Fields[name] = field
			}
			// Pop the duplicate subclass handle pushed for this merge; the
			// superclass value underneath stays on the stack as the
			// runtime slot for the enclosing scope's "super" local.
			vm.pop()
		}
	}
}

// getProperty implements spec.md §4.4's property-read precedence: instance
// field first, then a bound method on the class; a table receiver looks the
// name up as a string key; any other receiver (arrays included) is an error.
func (vm *VM) getProperty(name *ObjString) error {
	receiver := vm.peek(0)
	switch {
	case receiver.IsInstance():
		instance := receiver.AsInstance()
		if v, ok := instance.Fields[name]; ok {
			vm.pop()
			vm.push(v)
			return nil
		}
		bound, ok := vm.bindMethod(instance.Class, name)
		if !ok {
			return vm.runtimeError("Undefined property '%s'.", name.Chars)
		}
		vm.pop()
		vm.push(bound)
		return nil
	case receiver.IsTable():
		v, ok := receiver.AsTable().Get(ObjVal(name))
		if !ok {
			return vm.runtimeError("Undefined key '%s'.", name.Chars)
		}
		vm.pop()
		vm.push(v)
		return nil
	default:
		return vm.runtimeError("Only instances and tables have properties.")
	}
}

func (vm *VM) bindMethodOn(instance *ObjInstance, class *ObjClass, name *ObjString) (Value, bool) {
	method, ok := class.Methods[name]
	if !ok {
		return Value{}, false
	}
	return ObjVal(&ObjBoundMethod{Receiver: ObjVal(instance), Method: method}), true
}

// dunderUnary dispatches OP_NOT against an instance's `__not` method, per
// spec.md §4.4's operator-overload rule.
func (vm *VM) dunderUnary(op OpCode) error {
	receiver := vm.pop()
	instance := receiver.AsInstance()
	method, ok := instance.Class.Methods[vm.dunders[op]]
	if !ok {
		return vm.runtimeError("Instance of '%s' does not support this operation.", instance.Class.Name.Chars)
	}
	vm.push(receiver)
	return vm.call(method, 0)
}

// binaryArith and binaryCompare implement spec.md §4.4's numeric binary ops
// with the instance-dunder fallback when both operands are instances of the
// same class.
func (vm *VM) binaryArith(op OpCode) error {
	b := vm.peek(0)
	a := vm.peek(1)
	if a.IsNumber() && b.IsNumber() {
		vm.pop()
		vm.pop()
		x, y := a.Number, b.Number
		switch op {
		case OpSubtract:
			vm.push(NumberVal(x - y))
		case OpMultiply:
			vm.push(NumberVal(x * y))
		case OpDivide:
			if y == 0 {
				return vm.runtimeError("Division by zero.")
			}
			vm.push(NumberVal(x / y))
		}
		return nil
	}
	if sameClassInstances(a, b) {
		vm.pop()
		vm.pop()
		return vm.dunderBinary(op, a, b)
	}
	return vm.runtimeError("Operands must be numbers.")
}

func (vm *VM) binaryIntOp(op OpCode) error {
	b := vm.peek(0)
	a := vm.peek(1)
	if a.IsNumber() && b.IsNumber() {
		vm.pop()
		vm.pop()
		// original_source/vm.c's BINARY_OP_INT: truncate both operands to
		// int before the bitwise/modulo operator.
		x, y := int(a.Number), int(b.Number)
		switch op {
		case OpMod:
			if y == 0 {
				return vm.runtimeError("Division by zero.")
			}
			vm.push(NumberVal(float64(x % y)))
		case OpBitwiseAnd:
			vm.push(NumberVal(float64(x & y)))
		case OpBitwiseOr:
			vm.push(NumberVal(float64(x | y)))
		case OpBitwiseXor:
			vm.push(NumberVal(float64(x ^ y)))
		case OpShiftLeft:
			vm.push(NumberVal(float64(x << uint(y))))
		case OpShiftRight:
			vm.push(NumberVal(float64(x >> uint(y))))
		}
		return nil
	}
	if sameClassInstances(a, b) {
		vm.pop()
		vm.pop()
		return vm.dunderBinary(op, a, b)
	}
	return vm.runtimeError("Operands must be numbers.")
}

func (vm *VM) binaryCompare(op OpCode) error {
	b := vm.peek(0)
	a := vm.peek(1)
	if a.IsNumber() && b.IsNumber() {
		vm.pop()
		vm.pop()
		switch op {
		case OpGreater:
			vm.push(BoolVal(a.Number > b.Number))
		case OpLess:
			vm.push(BoolVal(a.Number < b.Number))
		}
		return nil
	}
	if sameClassInstances(a, b) {
		vm.pop()
		vm.pop()
		return vm.dunderBinary(op, a, b)
	}
	return vm.runtimeError("Operands must be numbers.")
}

func sameClassInstances(a, b Value) bool {
	return a.IsInstance() && b.IsInstance() && a.AsInstance().Class == b.AsInstance().Class
}

// dunderBinary implements spec.md §4.4's cross-operator-overload dispatch:
// when both operands are instances of the same class, call that class's
// dunder method with the right operand as the sole argument and the left
// as the receiver.
func (vm *VM) dunderBinary(op OpCode, a, b Value) error {
	instance := a.AsInstance()
	method, ok := instance.Class.Methods[vm.dunders[op]]
	if !ok {
		return vm.runtimeError("Instance of '%s' does not support this operation.", instance.Class.Name.Chars)
	}
	vm.push(a)
	vm.push(b)
	return vm.call(method, 1)
}

// add implements spec.md §4.4's ADD fallback table: string++string,
// number+number, table⊕table (right-biased merge), array++array, else
// instance dunder dispatch.
func (vm *VM) add() error {
	b := vm.peek(0)
	a := vm.peek(1)

	switch {
	case a.IsString() && b.IsString():
		vm.pop()
		vm.pop()
		vm.push(ObjVal(vm.interner.Intern(a.AsString().Chars + b.AsString().Chars)))
		return nil
	case a.IsNumber() && b.IsNumber():
		vm.pop()
		vm.pop()
		vm.push(NumberVal(a.Number + b.Number))
		return nil
	case a.IsTable() && b.IsTable():
		vm.pop()
		vm.pop()
		vm.push(ObjVal(mergeTables(a.AsTable(), b.AsTable())))
		return nil
	case a.IsArray() && b.IsArray():
		vm.pop()
		vm.pop()
		merged := newArray()
		merged.Values = append(merged.Values, a.AsArray().Values...)
		merged.Values = append(merged.Values, b.AsArray().Values...)
		vm.push(ObjVal(merged))
		return nil
	case sameClassInstances(a, b):
		vm.pop()
		vm.pop()
		return vm.dunderBinary(OpAdd, a, b)
	default:
		return vm.runtimeError("Operands must be two joinable types (numbers, strings, tables, arrays, or instances of the same class).")
	}
}

// index implements spec.md §4.4's container read: string (single-char
// result), array (bounds-checked), table (missing-key error).
func (vm *VM) index() error {
	key := vm.pop()
	container := vm.pop()
	switch {
	case container.IsArray():
		if !key.IsNumber() {
			return vm.runtimeError("Array index must be a number.")
		}
		i := int(key.Number)
		arr := container.AsArray()
		if i < 0 || i >= len(arr.Values) {
			return vm.runtimeError("Array index out of bounds.")
		}
		vm.push(arr.Values[i])
		return nil
	case container.IsString():
		if !key.IsNumber() {
			return vm.runtimeError("String index must be a number.")
		}
		i := int(key.Number)
		s := container.AsString().Chars
		if i < 0 || i >= len(s) {
			return vm.runtimeError("String index out of bounds.")
		}
		vm.push(ObjVal(vm.interner.Intern(string(s[i]))))
		return nil
	case container.IsTable():
		v, ok := container.AsTable().Get(key)
		if !ok {
			return vm.runtimeError("Undefined key.")
		}
		vm.push(v)
		return nil
	default:
		return vm.runtimeError("Only arrays, strings, and tables can be indexed.")
	}
}

func (vm *VM) setIndex() error {
	value := vm.pop()
	key := vm.pop()
	container := vm.pop()
	switch {
	case container.IsArray():
		if !key.IsNumber() {
			return vm.runtimeError("Array index must be a number.")
		}
		i := int(key.Number)
		arr := container.AsArray()
		if i < 0 || i >= len(arr.Values) {
			return vm.runtimeError("Array index out of bounds.")
		}
		arr.Values[i] = value
		vm.push(value)
		return nil
	case container.IsTable():
		container.AsTable().Set(key, value)
		vm.push(value)
		return nil
	default:
		return vm.runtimeError("Only arrays and tables support index assignment.")
	}
}

// defineNative installs a Go function as a global callable, per spec.md §6.
func (vm *VM) defineNative(name string, fn NativeFn) {
	s := vm.interner.Intern(name)
	vm.globals[s] = ObjVal(&ObjNative{Name: name, Fn: fn})
}
