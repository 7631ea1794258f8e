package lang

import "fmt"

// DisassembleChunk prints every instruction in chunk under a header, in the
// teacher's debug.go format, generalized to the full opcode set (classes,
// invoke/super-invoke, indexing, table/array literals, DUMP) that the
// teacher's own copy of debug.go referenced but never finished wiring, and
// to the box-drawing overlay of forward jumps and backward loops spec.md
// §4.6 describes: a pre-scan over the chunk's own fixed-width encodings
// (jumpSpans) computed fresh on every call, never stored as package state,
// per spec.md §9's open question about shared disassembler state.
func DisassembleChunk(chunk *Chunk, name string) {
	fmt.Printf("== %s ==\n", name)
	spans := jumpSpans(chunk)
	for offset := 0; offset < len(chunk.Code); {
		offset = DisassembleInstruction(chunk, offset, overlayColumn(spans, offset))
	}
}

// jumpSpan is the byte-offset range a single forward OP_JUMP/OP_JUMP_IF_FALSE
// or backward OP_LOOP covers, lo always less than hi regardless of
// direction.
type jumpSpan struct {
	lo, hi int
}

// jumpSpans walks chunk once using the same fixed-width decoding
// DisassembleInstruction uses, collecting every jump/loop's covered range.
func jumpSpans(chunk *Chunk) []jumpSpan {
	var spans []jumpSpan
	code := chunk.Code
	for offset := 0; offset < len(code); {
		op := OpCode(code[offset])
		switch op {
		case OpJump, OpJumpIfFalse:
			jump := int(code[offset+1])<<8 | int(code[offset+2])
			target := offset + 3 + jump
			spans = append(spans, jumpSpan{lo: offset, hi: target})
		case OpLoop:
			jump := int(code[offset+1])<<8 | int(code[offset+2])
			target := offset + 3 - jump
			spans = append(spans, jumpSpan{lo: target, hi: offset + 3})
		}
		offset += instructionWidth(chunk, offset)
	}
	return spans
}

// overlayColumn renders one character of the jump/loop overlay for the
// instruction at offset: a corner where a span starts or ends, a vertical
// bar while inside one, a blank otherwise. Offsets inside more than one
// span (nested control flow) still draw a single bar — this is a
// visualization aid, not a precise multi-lane diagram.
func overlayColumn(spans []jumpSpan, offset int) string {
	col := " "
	for _, s := range spans {
		switch {
		case offset == s.lo || offset == s.hi:
			col = "┌"
			if offset == s.hi {
				col = "└"
			}
		case offset > s.lo && offset < s.hi:
			if col == " " {
				col = "│"
			}
		}
	}
	return col
}

// instructionWidth returns the byte length of the instruction at offset,
// without printing anything, so jumpSpans can walk a chunk using the exact
// same encoding DisassembleInstruction decodes.
func instructionWidth(chunk *Chunk, offset int) int {
	switch OpCode(chunk.Code[offset]) {
	case OpGetLocal, OpSetLocal, OpGetUpvalue, OpSetUpvalue, OpCall,
		OpGetGlobal, OpDefineGlobal, OpSetGlobal, OpGetProperty, OpSetProperty,
		OpGetSuper, OpClass, OpMethod, OpProperty, OpConstant,
		OpSetTable, OpSetArray:
		return 2
	case OpInvoke, OpSuperInvoke, OpJump, OpJumpIfFalse, OpLoop:
		return 3
	case OpClosure:
		fn := chunk.Constants[chunk.Code[offset+1]].AsFunction()
		return 2 + 2*fn.UpvalueCount
	default:
		return 1
	}
}

// DisassembleInstruction decodes and prints one instruction at offset,
// prefixed by overlay (one character of DisassembleChunk's jump/loop
// column; pass " " to omit it), returning the offset of the next
// instruction. All mutable disassembly state (none needed by this opcode
// set's fixed-width encodings) is local to the call, resolving spec.md §9's
// open question about shared disassembler state in favor of "local per
// call."
func DisassembleInstruction(chunk *Chunk, offset int, overlay string) int {
	fmt.Printf("%s %04d ", overlay, offset)
	if offset > 0 && chunk.Lines[offset] == chunk.Lines[offset-1] {
		fmt.Print("   | ")
	} else {
		fmt.Printf("%4d ", chunk.Lines[offset])
	}

	op := OpCode(chunk.Code[offset])
	name := opcodeNames[op]

	switch op {
	case OpGetLocal, OpSetLocal, OpGetUpvalue, OpSetUpvalue, OpCall:
		return byteInstruction(name, chunk, offset)
	case OpGetGlobal, OpDefineGlobal, OpSetGlobal, OpGetProperty, OpSetProperty,
		OpGetSuper, OpClass, OpMethod, OpProperty:
		return constantInstruction(name, chunk, offset)
	case OpInvoke, OpSuperInvoke:
		return invokeInstruction(name, chunk, offset)
	case OpJump, OpJumpIfFalse:
		return jumpInstruction(name, 1, chunk, offset)
	case OpLoop:
		return jumpInstruction(name, -1, chunk, offset)
	case OpSetTable, OpSetArray:
		return byteInstruction(name, chunk, offset)
	case OpClosure:
		return closureInstruction(chunk, offset)
	case OpConstant:
		return constantInstruction(name, chunk, offset)
	default:
		if name == "" {
			fmt.Printf("Unknown opcode %d\n", op)
			return offset + 1
		}
		return simpleInstruction(name, offset)
	}
}

func constantInstruction(name string, chunk *Chunk, offset int) int {
	constant := chunk.Code[offset+1]
	fmt.Printf("%-18s %4d '", name, constant)
	fmt.Print(PrintValue(chunk.Constants[constant]))
	fmt.Println("'")
	return offset + 2
}

func invokeInstruction(name string, chunk *Chunk, offset int) int {
	constant := chunk.Code[offset+1]
	argCount := chunk.Code[offset+2]
	fmt.Printf("%-18s (%d args) %4d '", name, argCount, constant)
	fmt.Print(PrintValue(chunk.Constants[constant]))
	fmt.Println("'")
	return offset + 3
}

func simpleInstruction(name string, offset int) int {
	fmt.Println(name)
	return offset + 1
}

func byteInstruction(name string, chunk *Chunk, offset int) int {
	slot := chunk.Code[offset+1]
	fmt.Printf("%-18s %4d\n", name, slot)
	return offset + 2
}

func jumpInstruction(name string, sign int, chunk *Chunk, offset int) int {
	jump := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	fmt.Printf("%-18s %4d -> %d\n", name, offset, offset+3+sign*jump)
	return offset + 3
}

func closureInstruction(chunk *Chunk, offset int) int {
	constant := chunk.Code[offset+1]
	fmt.Printf("%-18s %4d '", "OP_CLOSURE", constant)
	fmt.Print(PrintValue(chunk.Constants[constant]))
	fmt.Println("'")
	offset += 2

	fn := chunk.Constants[constant].AsFunction()
	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := chunk.Code[offset]
		index := chunk.Code[offset+1]
		scope := "upvalue"
		if isLocal != 0 {
			scope = "local"
		}
		fmt.Printf("%04d      |                     %s %d\n", offset, scope, index)
		offset += 2
	}
	return offset
}
