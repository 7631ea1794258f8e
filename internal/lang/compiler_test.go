package lang

import (
	"strings"
	"testing"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNestedUpvalueChainCompiles exercises resolveUpvalue's recursive walk
// across two levels of nesting: inner() re-captures middle's own upvalue
// rather than reaching past it directly into outer's locals.
func TestNestedUpvalueChainCompiles(t *testing.T) {
	source := `
		fun outer() {
			let a = 1;
			let b = 2;
			fun middle() {
				fun inner() {
					return a + b;
				}
				return inner;
			}
			return middle;
		}
		dump outer()()();
	`
	result, out := captureDump(t, source)
	assert.Equal(t, InterpretOK, result)
	assert.Equal(t, "3", strings.TrimSpace(out))
}

func TestForwardJumpsTargetValidInstructions(t *testing.T) {
	source := `
		let x = 1;
		if (x == 1) {
			x = 2;
		} else {
			x = 3;
		}
		dump x;
	`
	fn, err := compile(source, newInterner())
	require.NoError(t, err)

	code := fn.Chunk.Code
	for offset := 0; offset < len(code); {
		op := OpCode(code[offset])
		switch op {
		case OpJump, OpJumpIfFalse:
			jump := int(code[offset+1])<<8 | int(code[offset+2])
			target := offset + 3 + jump
			assert.True(t, target >= 0 && target <= len(code), "jump target %d out of bounds (len %d)", target, len(code))
		case OpLoop:
			jump := int(code[offset+1])<<8 | int(code[offset+2])
			target := offset + 3 - jump
			assert.True(t, target >= 0 && target <= len(code), "loop target %d out of bounds (len %d)", target, len(code))
		}
		// instructionWidth is disasm.go's own opcode-width decoder, shared
		// here so this test can never drift from what DisassembleInstruction
		// and jumpSpans actually decode.
		offset += instructionWidth(fn.Chunk, offset)
	}
}

func TestParseErrorsAccumulateAcrossSynchronization(t *testing.T) {
	source := `
		let a = ;
		let b = ;
		dump a;
	`
	_, err := compile(source, newInterner())
	require.Error(t, err)

	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(merr.Errors), 2)
}

func TestCompoundAssignmentDesugarsInSourceOrder(t *testing.T) {
	source := `
		let a = 10;
		a -= 3;
		dump a;
	`
	result, out := captureDump(t, source)
	assert.Equal(t, InterpretOK, result)
	assert.Equal(t, "7", strings.TrimSpace(out))
}
