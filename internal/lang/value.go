package lang

import "fmt"

// ValueType is the tag of the Value union, per spec.md §3.
type ValueType int

const (
	ValNil ValueType = iota
	ValBool
	ValNumber
	ValObj
)

// Value is the tagged union described by spec.md §3: nil, boolean, double,
// or a heap object handle. Number/Bool/Nil are held by value; Obj is a
// pointer so identity comparisons on heap objects are plain pointer
// comparisons (strings achieve content-equality through interning, per
// spec.md §3's string invariant, not through Value equality itself).
type Value struct {
	Type   ValueType
	Bool   bool
	Number float64
	Obj    Obj
}

func NilVal() Value                 { return Value{Type: ValNil} }
func BoolVal(b bool) Value          { return Value{Type: ValBool, Bool: b} }
func NumberVal(n float64) Value     { return Value{Type: ValNumber, Number: n} }
func ObjVal(o Obj) Value            { return Value{Type: ValObj, Obj: o} }

func (v Value) IsNil() bool    { return v.Type == ValNil }
func (v Value) IsBool() bool   { return v.Type == ValBool }
func (v Value) IsNumber() bool { return v.Type == ValNumber }
func (v Value) IsObj() bool    { return v.Type == ValObj }

func (v Value) IsFalsey() bool {
	return v.IsNil() || (v.IsBool() && !v.Bool)
}

func (v Value) objType() ObjType {
	if v.Obj == nil {
		return objTypeNone
	}
	return v.Obj.objType()
}

func (v Value) IsString() bool      { return v.objType() == ObjTypeString }
func (v Value) IsFunction() bool    { return v.objType() == ObjTypeFunction }
func (v Value) IsClosure() bool     { return v.objType() == ObjTypeClosure }
func (v Value) IsClass() bool       { return v.objType() == ObjTypeClass }
func (v Value) IsInstance() bool    { return v.objType() == ObjTypeInstance }
func (v Value) IsBoundMethod() bool { return v.objType() == ObjTypeBoundMethod }
func (v Value) IsNative() bool      { return v.objType() == ObjTypeNative }
func (v Value) IsTable() bool       { return v.objType() == ObjTypeTable }
func (v Value) IsArray() bool       { return v.objType() == ObjTypeArray }

func (v Value) AsString() *ObjString         { return v.Obj.(*ObjString) }
func (v Value) AsFunction() *ObjFunction     { return v.Obj.(*ObjFunction) }
func (v Value) AsClosure() *ObjClosure       { return v.Obj.(*ObjClosure) }
func (v Value) AsClass() *ObjClass           { return v.Obj.(*ObjClass) }
func (v Value) AsInstance() *ObjInstance     { return v.Obj.(*ObjInstance) }
func (v Value) AsBoundMethod() *ObjBoundMethod { return v.Obj.(*ObjBoundMethod) }
func (v Value) AsNative() *ObjNative         { return v.Obj.(*ObjNative) }
func (v Value) AsTable() *ObjTable           { return v.Obj.(*ObjTable) }
func (v Value) AsArray() *ObjArray           { return v.Obj.(*ObjArray) }

// ValuesEqual implements spec.md §3's equality rule: IEEE-754 for numbers,
// identity for objects (which collapses to content-equality for strings
// because of interning).
func ValuesEqual(a, b Value) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case ValNil:
		return true
	case ValBool:
		return a.Bool == b.Bool
	case ValNumber:
		return a.Number == b.Number
	case ValObj:
		if a.Obj == nil || b.Obj == nil {
			return a.Obj == b.Obj
		}
		if as, ok := a.Obj.(*ObjString); ok {
			bs, ok2 := b.Obj.(*ObjString)
			return ok2 && as == bs
		}
		return a.Obj == b.Obj
	}
	return false
}

func PrintValue(v Value) string {
	switch v.Type {
	case ValNil:
		return "nil"
	case ValBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case ValNumber:
		return fmt.Sprintf("%g", v.Number)
	case ValObj:
		return printObj(v.Obj)
	}
	return "?"
}

// ObjType is the closed set of heap object tags from spec.md §3.
type ObjType int

const (
	objTypeNone ObjType = iota
	ObjTypeString
	ObjTypeFunction
	ObjTypeClosure
	ObjTypeUpvalue
	ObjTypeClass
	ObjTypeInstance
	ObjTypeBoundMethod
	ObjTypeNative
	ObjTypeTable
	ObjTypeArray
)

// Obj is implemented by every heap object. Allocation and GC rooting is the
// embedder/collector's concern (spec.md §5); this interface only carries
// the type tag the VM dispatches on.
type Obj interface {
	objType() ObjType
}

// ObjString is the immutable, hash-precomputed, interned string object of
// spec.md §3.
type ObjString struct {
	Chars string
	Hash  uint32
}

func (*ObjString) objType() ObjType { return ObjTypeString }

func hashString(s string) uint32 {
	// FNV-1a, matching the hash family clox-derived interpreters use for
	// their string table.
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// ObjFunction is created during compilation and never mutated after
// endCompiler, per spec.md §3.
type ObjFunction struct {
	Arity        int
	UpvalueCount int
	Name         *ObjString // nil only for the top-level script function
	Chunk        *Chunk
}

func (*ObjFunction) objType() ObjType { return ObjTypeFunction }

// ObjUpvalue holds either a live pointer into a frame slot (open) or a
// captured value (closed), per spec.md §3. Location points either into a
// VM stack slot or, once closed, at Closed.
type ObjUpvalue struct {
	Location *Value
	Closed   Value
	Slot     int // stack index while open; meaningless once closed
	Next     *ObjUpvalue
}

func (*ObjUpvalue) objType() ObjType { return ObjTypeUpvalue }

// ObjClosure pairs a function with its own fixed-size upvalue array, per
// spec.md §3.
type ObjClosure struct {
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

func (*ObjClosure) objType() ObjType { return ObjTypeClosure }

func newClosure(fn *ObjFunction) *ObjClosure {
	return &ObjClosure{Function: fn, Upvalues: make([]*ObjUpvalue, fn.UpvalueCount)}
}

// ObjClass carries a name, a method table, and a field-default table, per
// spec.md §3.
type ObjClass struct {
	Name    *ObjString
	Methods map[*ObjString]*ObjClosure
	Fields  map[*ObjString]Value
}

func (*ObjClass) objType() ObjType { return ObjTypeClass }

func newClass(name *ObjString) *ObjClass {
	return &ObjClass{Name: name, Methods: make(map[*ObjString]*ObjClosure), Fields: make(map[*ObjString]Value)}
}

// ObjInstance is a class handle plus a field table, per spec.md §3.
type ObjInstance struct {
	Class  *ObjClass
	Fields map[*ObjString]Value
}

func (*ObjInstance) objType() ObjType { return ObjTypeInstance }

func newInstance(class *ObjClass) *ObjInstance {
	fields := make(map[*ObjString]Value, len(class.Fields))
	for k, v := range class.Fields {
		fields[k] = v
	}
	return &ObjInstance{Class: class, Fields: fields}
}

// ObjBoundMethod pairs a receiver value with a closure, per spec.md §3.
type ObjBoundMethod struct {
	Receiver Value
	Method   *ObjClosure
}

func (*ObjBoundMethod) objType() ObjType { return ObjTypeBoundMethod }

// NativeFn is the signature spec.md §3/§6 specifies for native callables:
// (argCount, args[]) → Value | failure.
type NativeFn func(argCount int, args []Value) (Value, error)

// ObjNative wraps an opaque native callable, per spec.md §3.
type ObjNative struct {
	Name string
	Fn   NativeFn
}

func (*ObjNative) objType() ObjType { return ObjTypeNative }

// ObjTable is a mutable mapping from arbitrary Value keys to Values,
// per spec.md §3. Keys are hashed by type+bits, so only Value kinds with a
// well-defined bit pattern (nil/bool/number/string) are usable as keys;
// other object keys fall back to identity via the Obj pointer itself.
type ObjTable struct {
	entries map[tableKey]tableEntry
	order   []tableKey // insertion order, for deterministic iteration/printing
}

type tableKey struct {
	kind ValueType
	num  float64
	b    bool
	obj  Obj
}

type tableEntry struct {
	key   Value
	value Value
}

func (*ObjTable) objType() ObjType { return ObjTypeTable }

func newTable() *ObjTable {
	return &ObjTable{entries: make(map[tableKey]tableEntry)}
}

// NewTableValue constructs an empty table Value, for native functions that
// build structured results (e.g. an HTTP response's status/body pair).
func NewTableValue() Value { return ObjVal(newTable()) }

func valueTableKey(v Value) tableKey {
	switch v.Type {
	case ValNil:
		return tableKey{kind: ValNil}
	case ValBool:
		return tableKey{kind: ValBool, b: v.Bool}
	case ValNumber:
		return tableKey{kind: ValNumber, num: v.Number}
	case ValObj:
		if s, ok := v.Obj.(*ObjString); ok {
			return tableKey{kind: ValObj, obj: s}
		}
		return tableKey{kind: ValObj, obj: v.Obj}
	}
	return tableKey{}
}

func (t *ObjTable) Get(key Value) (Value, bool) {
	e, ok := t.entries[valueTableKey(key)]
	return e.value, ok
}

func (t *ObjTable) Set(key, value Value) {
	k := valueTableKey(key)
	if _, exists := t.entries[k]; !exists {
		t.order = append(t.order, k)
	}
	t.entries[k] = tableEntry{key: key, value: value}
}

func (t *ObjTable) Len() int { return len(t.entries) }

// Each calls fn for every entry in insertion order.
func (t *ObjTable) Each(fn func(key, value Value)) {
	for _, k := range t.order {
		e := t.entries[k]
		fn(e.key, e.value)
	}
}

// mergeTables implements the ADD fallback for table⊕table from spec.md §4.4:
// right-biased — apply left into a fresh table, then right, so right keys
// win on conflict.
func mergeTables(a, b *ObjTable) *ObjTable {
	merged := newTable()
	a.Each(func(k, v Value) { merged.Set(k, v) })
	b.Each(func(k, v Value) { merged.Set(k, v) })
	return merged
}

// ObjArray is an ordered, mutable sequence of Values with amortized
// push/pop, per spec.md §3.
type ObjArray struct {
	Values []Value
}

func (*ObjArray) objType() ObjType { return ObjTypeArray }

func newArray() *ObjArray {
	return &ObjArray{}
}

// NewArrayValue constructs an empty array Value, for native functions that
// build structured results.
func NewArrayValue() Value { return ObjVal(newArray()) }

func (a *ObjArray) Push(v Value) {
	a.Values = append(a.Values, v)
}

func (a *ObjArray) Pop() (Value, bool) {
	if len(a.Values) == 0 {
		return Value{}, false
	}
	v := a.Values[len(a.Values)-1]
	a.Values = a.Values[:len(a.Values)-1]
	return v, true
}

func printObj(o Obj) string {
	switch obj := o.(type) {
	case *ObjString:
		return obj.Chars
	case *ObjFunction:
		if obj.Name == nil {
			return "<script>"
		}
		return fmt.Sprintf("<fn %s>", obj.Name.Chars)
	case *ObjClosure:
		return printObj(obj.Function)
	case *ObjUpvalue:
		return "<upvalue>"
	case *ObjClass:
		return obj.Name.Chars
	case *ObjInstance:
		return fmt.Sprintf("<%s instance>", obj.Class.Name.Chars)
	case *ObjBoundMethod:
		return printObj(obj.Method.Function)
	case *ObjNative:
		return fmt.Sprintf("<native fn %s>", obj.Name)
	case *ObjTable:
		out := "{"
		first := true
		obj.Each(func(k, v Value) {
			if !first {
				out += ", "
			}
			first = false
			out += PrintValue(k) + ": " + PrintValue(v)
		})
		return out + "}"
	case *ObjArray:
		out := "["
		for i, v := range obj.Values {
			if i > 0 {
				out += ", "
			}
			out += PrintValue(v)
		}
		return out + "]"
	}
	return "<obj>"
}
