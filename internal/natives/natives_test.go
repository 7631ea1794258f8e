package natives

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loxgo/internal/lang"
)

func findFn(t *testing.T, m *lang.NativeModule, name string) lang.NativeFn {
	t.Helper()
	for _, e := range m.Fns {
		if e.Name == name {
			return e.Fn
		}
	}
	t.Fatalf("module %q has no function %q", m.Name, name)
	return nil
}

func TestMathModule(t *testing.T) {
	m := Math()
	assert.Equal(t, "math", m.Name)

	sqrt := findFn(t, m, "sqrt")
	result, err := sqrt(1, []lang.Value{lang.NumberVal(9)})
	require.NoError(t, err)
	assert.Equal(t, float64(3), result.Number)

	pow := findFn(t, m, "pow")
	result, err = pow(2, []lang.Value{lang.NumberVal(2), lang.NumberVal(10)})
	require.NoError(t, err)
	assert.Equal(t, float64(1024), result.Number)

	_, err = sqrt(1, []lang.Value{lang.ObjVal(lang.Intern("nope"))})
	assert.Error(t, err)
}

func TestMathPostInitSetsConstants(t *testing.T) {
	m := Math()
	vm := lang.NewVM()
	table := lang.NewTableValue().AsTable()
	m.PostInit(vm, table)

	pi, ok := table.Get(lang.ObjVal(vm.Intern("pi")))
	require.True(t, ok)
	assert.InDelta(t, 3.14159, pi.Number, 0.001)
}

func TestStrcaseModule(t *testing.T) {
	m := Strcase()
	snake := findFn(t, m, "snake")
	result, err := snake(1, []lang.Value{lang.ObjVal(lang.Intern("HelloWorld"))})
	require.NoError(t, err)
	assert.Equal(t, "hello_world", result.AsString().Chars)

	camel := findFn(t, m, "camel")
	result, err = camel(1, []lang.Value{lang.ObjVal(lang.Intern("hello_world"))})
	require.NoError(t, err)
	assert.Equal(t, "HelloWorld", result.AsString().Chars)
}

func TestUUIDModule(t *testing.T) {
	m := UUID()
	v4 := findFn(t, m, "v4")
	result, err := v4(0, nil)
	require.NoError(t, err)
	assert.Len(t, result.AsString().Chars, 36)
}

func TestJSONRoundTrip(t *testing.T) {
	m := JSON()
	encode := findFn(t, m, "encode")
	decode := findFn(t, m, "decode")

	table := lang.NewTableValue()
	table.AsTable().Set(lang.ObjVal(lang.Intern("name")), lang.ObjVal(lang.Intern("ok")))

	encoded, err := encode(1, []lang.Value{table})
	require.NoError(t, err)

	decoded, err := decode(1, []lang.Value{encoded})
	require.NoError(t, err)
	require.True(t, decoded.IsTable())

	name, ok := decoded.AsTable().Get(lang.ObjVal(lang.Intern("name")))
	require.True(t, ok)
	assert.Equal(t, "ok", name.AsString().Chars)
}

func TestCBORRoundTrip(t *testing.T) {
	m := CBOR()
	encode := findFn(t, m, "encode")
	decode := findFn(t, m, "decode")

	arr := lang.NewArrayValue()
	arr.AsArray().Push(lang.NumberVal(1))
	arr.AsArray().Push(lang.NumberVal(2))

	encoded, err := encode(1, []lang.Value{arr})
	require.NoError(t, err)

	decoded, err := decode(1, []lang.Value{encoded})
	require.NoError(t, err)
	require.True(t, decoded.IsArray())
	assert.Len(t, decoded.AsArray().Values, 2)
}

func TestHumanizeBytes(t *testing.T) {
	m := Humanize()
	bytesFn := findFn(t, m, "bytes")
	result, err := bytesFn(1, []lang.Value{lang.NumberVal(1024)})
	require.NoError(t, err)
	assert.Equal(t, "1.0 kB", result.AsString().Chars)
}

func TestAllRegistersEveryModuleOnce(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range All() {
		assert.False(t, seen[m.Name], "module %q registered twice", m.Name)
		seen[m.Name] = true
	}
}
