package lang_test

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loxgo/internal/lang"
	"loxgo/internal/natives"
)

// captureModuleDump runs source against a VM with every native module
// registered (mirroring cmd/loxgo/main.go's wiring) and returns dump's
// captured stdout, the way vm_test.go's captureDump does for the core
// interpreter tests.
func captureModuleDump(t *testing.T, source string) (lang.InterpretResult, string) {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	vm := lang.NewVM()
	for _, m := range natives.All() {
		vm.RegisterModule(m)
	}
	result := vm.Interpret(source)

	w.Close()
	os.Stdout = old
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return result, buf.String()
}

// TestArrayModuleMapFiltersReduce exercises the `array` module's callback
// natives end to end, which is the only way to cover lang.CallFunction's
// reentrant path into the bytecode loop from a native function body.
func TestArrayModuleMapFiltersReduce(t *testing.T) {
	source := `
		let arr = module("array");
		let doubled = arr.map([1, 2, 3], fun(x) { return x * 2; });
		let evens = arr.filter(doubled, fun(x) { return x % 2 == 0; });
		let total = arr.reduce(evens, fun(acc, x) { return acc + x; }, 0);
		dump total;
	`
	result, out := captureModuleDump(t, source)
	assert.Equal(t, lang.InterpretOK, result)
	assert.Equal(t, "12", strings.TrimSpace(out))
}

func TestArrayModuleFindAndSort(t *testing.T) {
	source := `
		let arr = module("array");
		let nums = [3, 1, 2];
		arr.sort(nums);
		dump nums;
		dump arr.find(nums, fun(x) { return x > 1; });
	`
	result, out := captureModuleDump(t, source)
	assert.Equal(t, lang.InterpretOK, result)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[1, 2, 3]", lines[0])
	assert.Equal(t, "2", lines[1])
}

func TestArrayModulePushPopInsertRemoveFlatten(t *testing.T) {
	source := `
		let arr = module("array");
		let nums = [1, 2];
		arr.push(nums, 3);
		arr.insert(nums, 0, 0);
		arr.remove(nums, 1);
		dump nums;
		dump arr.pop(nums);
		dump arr.flatten([[1, 2], [3], 4]);
	`
	result, out := captureModuleDump(t, source)
	assert.Equal(t, lang.InterpretOK, result)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "[0, 2, 3]", lines[0])
	assert.Equal(t, "3", lines[1])
	assert.Equal(t, "[1, 2, 3, 4]", lines[2])
}
