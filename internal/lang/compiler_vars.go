package lang

func identifiersEqual(a, b Token) bool {
	return a.Lexeme == b.Lexeme
}

func (p *Parser) identifierConstant(name Token) byte {
	return p.makeConstant(ObjVal(p.interner.Intern(name.Lexeme)))
}

// resolveLocal searches locals back-to-front, per spec.md §4.2.
func resolveLocal(fc *funcCompiler, name Token) int {
	for i := len(fc.locals) - 1; i >= 0; i-- {
		l := fc.locals[i]
		if identifiersEqual(name, l.name) {
			return i
		}
	}
	return -1
}

func (p *Parser) resolveLocal(fc *funcCompiler, name Token) int {
	idx := resolveLocal(fc, name)
	if idx != -1 && fc.locals[idx].depth == -1 {
		p.error("Can't read local variable in its own initializer.")
	}
	return idx
}

// addUpvalue deduplicates by (index, isLocal), per spec.md §4.2.
func (p *Parser) addUpvalue(fc *funcCompiler, index byte, isLocal bool) int {
	for i, uv := range fc.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if len(fc.upvalues) >= maxUpvalues {
		p.error("Too many closure variables in function.")
		return 0
	}
	fc.upvalues = append(fc.upvalues, upvalueDesc{index: index, isLocal: isLocal})
	return len(fc.upvalues) - 1
}

// resolveUpvalue recursively searches enclosing compilers, per spec.md
// §4.2: a hit on an enclosing local marks it isCaptured and records
// isLocal=true; a recursive hit records isLocal=false.
func (p *Parser) resolveUpvalue(fc *funcCompiler, name Token) int {
	if fc.enclosing == nil {
		return -1
	}
	if local := resolveLocal(fc.enclosing, name); local != -1 {
		fc.enclosing.locals[local].isCaptured = true
		return p.addUpvalue(fc, byte(local), true)
	}
	if upvalue := p.resolveUpvalue(fc.enclosing, name); upvalue != -1 {
		return p.addUpvalue(fc, byte(upvalue), false)
	}
	return -1
}

func (p *Parser) addLocal(name Token) {
	if len(p.fc.locals) >= maxLocals {
		p.error("Too many local variables in function.")
		return
	}
	p.fc.locals = append(p.fc.locals, local{name: name, depth: -1})
}

func (p *Parser) declareVariable() {
	if p.fc.scopeDepth == 0 {
		return
	}
	name := p.previous
	for i := len(p.fc.locals) - 1; i >= 0; i-- {
		l := p.fc.locals[i]
		if l.depth != -1 && l.depth < p.fc.scopeDepth {
			break
		}
		if identifiersEqual(name, l.name) {
			p.error("Already a variable with this name in this scope.")
		}
	}
	p.addLocal(name)
}

func (p *Parser) parseVariable(errorMessage string) byte {
	p.consume(TokenIdentifier, errorMessage)
	p.declareVariable()
	if p.fc.scopeDepth > 0 {
		return 0
	}
	return p.identifierConstant(p.previous)
}

func (p *Parser) markInitialized() {
	if p.fc.scopeDepth == 0 {
		return
	}
	p.fc.locals[len(p.fc.locals)-1].depth = p.fc.scopeDepth
}

func (p *Parser) defineVariable(global byte) {
	if p.fc.scopeDepth > 0 {
		p.markInitialized()
		return
	}
	p.emitBytes(OpDefineGlobal, global)
}

func syntheticToken(text string) Token {
	return Token{Kind: TokenIdentifier, Lexeme: text}
}

// resolveVariable returns the get/set opcode pair and operand for name,
// resolving local → upvalue → global in that order, per spec.md §4.2.
func (p *Parser) resolveVariable(name Token) (getOp, setOp OpCode, arg int) {
	if arg = p.resolveLocal(p.fc, name); arg != -1 {
		return OpGetLocal, OpSetLocal, arg
	}
	if arg = p.resolveUpvalue(p.fc, name); arg != -1 {
		return OpGetUpvalue, OpSetUpvalue, arg
	}
	return OpGetGlobal, OpSetGlobal, int(p.identifierConstant(name))
}
