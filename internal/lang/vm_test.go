package lang

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureDump runs source against a fresh VM and returns the InterpretResult
// plus whatever the run printed to stdout, grounded on
// deepnoodle-ai-risor/cmd/risor/eval_cmd_test.go's os.Pipe-based output
// capture.
func captureDump(t *testing.T, source string) (InterpretResult, string) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	vm := NewVM()
	result := vm.Interpret(source)

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return result, buf.String()
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"arithmetic precedence", `dump 1 + 2 * 3;`, "7"},
		{"for loop accumulator", `let a = 0; for (let i = 1; i <= 3; i += 1) { a = a + i; } dump a;`, "6"},
		{"closure capture", `fun mk() { let x = 10; fun inner() { return x; } return inner; } dump mk()();`, "10"},
		{"inheritance and super", `class A { f() { return 1; } } class B < A { f() { return super.f() + 1; } } dump B().f();`, "2"},
		{"table index and mutation", `let t = { "a": 1 }; t["b"] = 2; dump t["a"] + t["b"];`, "3"},
		{"while with break", `let i = 0; while (true) { if (i == 3) break; i = i + 1; } dump i;`, "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, out := captureDump(t, tt.source)
			assert.Equal(t, InterpretOK, result)
			assert.Equal(t, tt.want, strings.TrimSpace(out))
		})
	}
}

func TestErrorScenarios(t *testing.T) {
	t.Run("add type mismatch", func(t *testing.T) {
		old := os.Stdout
		r, w, err := os.Pipe()
		require.NoError(t, err)
		os.Stdout = w

		vm := NewVM()
		result := vm.Interpret(`dump "x" + 1;`)

		w.Close()
		os.Stdout = old
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)

		assert.Equal(t, InterpretRuntimeError, result)
		assert.Contains(t, buf.String(), "must be two joinable types")
	})

	t.Run("arity mismatch", func(t *testing.T) {
		old := os.Stdout
		r, w, err := os.Pipe()
		require.NoError(t, err)
		os.Stdout = w

		vm := NewVM()
		result := vm.Interpret(`fun f(a) { return a; } f(1,2);`)

		w.Close()
		os.Stdout = old
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)

		assert.Equal(t, InterpretRuntimeError, result)
		assert.Contains(t, buf.String(), "Expected 1 arguments but got 2.")
	})

	t.Run("self inheritance", func(t *testing.T) {
		vm := NewVM()
		result := vm.Interpret(`class A {} class A < A {}`)
		assert.Equal(t, InterpretCompileError, result)

		_, err := compile(`class A {} class A < A {}`, newInterner())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "A class can't inherit from itself.")
	})
}

func TestSwitchStatement(t *testing.T) {
	source := `
		let result = 0;
		switch (2) {
		case 1:
			result = 10;
		case 2:
			result = 20;
		case 3:
			result = 30;
		}
		dump result;
	`
	result, out := captureDump(t, source)
	assert.Equal(t, InterpretOK, result)
	assert.Equal(t, "20", strings.TrimSpace(out))
}

func TestSwitchFallsThroughToDefault(t *testing.T) {
	source := `
		let result = 0;
		switch (99) {
		case 1:
			result = 10;
		default:
			result = -1;
		}
		dump result;
	`
	result, out := captureDump(t, source)
	assert.Equal(t, InterpretOK, result)
	assert.Equal(t, "-1", strings.TrimSpace(out))
}

func TestSwitchNoMatchNoDefault(t *testing.T) {
	source := `
		let result = 0;
		switch (99) {
		case 1:
			result = 10;
		}
		dump result;
	`
	result, out := captureDump(t, source)
	assert.Equal(t, InterpretOK, result)
	assert.Equal(t, "0", strings.TrimSpace(out))
}

func TestOperatorOverload(t *testing.T) {
	source := `
		class Vec {
			init(x) { this.x = x; }
			__add(other) { return Vec(this.x + other.x); }
			__eq(other) { return this.x == other.x; }
		}
		let a = Vec(1);
		let b = Vec(2);
		let c = a + b;
		dump c.x;
		dump a == Vec(1);
	`
	result, out := captureDump(t, source)
	assert.Equal(t, InterpretOK, result)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "3", lines[0])
	assert.Equal(t, "true", lines[1])
}

func TestArrayConcatAndIndex(t *testing.T) {
	source := `
		let a = [1, 2] + [3];
		dump a[0] + a[1] + a[2];
	`
	result, out := captureDump(t, source)
	assert.Equal(t, InterpretOK, result)
	assert.Equal(t, "6", strings.TrimSpace(out))
}

func TestTableMergeIsRightBiased(t *testing.T) {
	source := `
		let merged = { "a": 1, "b": 1 } + { "b": 2 };
		dump merged["a"] + merged["b"];
	`
	result, out := captureDump(t, source)
	assert.Equal(t, InterpretOK, result)
	assert.Equal(t, "3", strings.TrimSpace(out))
}

func TestInternIdentityMatchesContentEquality(t *testing.T) {
	in := newInterner()
	a := in.Intern("hello")
	b := in.Intern("hel" + "lo")
	assert.Same(t, a, b)
}

func TestCompileLineTableMatchesCodeLength(t *testing.T) {
	fn, err := compile(`let a = 1 + 2; dump a;`, newInterner())
	require.NoError(t, err)
	assert.Equal(t, len(fn.Chunk.Code), len(fn.Chunk.Lines))
}
