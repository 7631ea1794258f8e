package lang

// FunctionKind distinguishes the function currently being compiled, per
// spec.md §3's compiler context ("function kind ∈ {script, function,
// method, initializer}").
type FunctionKind int

const (
	FuncScript FunctionKind = iota
	FuncFunction
	FuncMethod
	FuncInitializer
)
