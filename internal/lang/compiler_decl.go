package lang

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func (p *Parser) funDeclaration() {
	global := p.parseVariable("Expect function name.")
	p.markInitialized()
	p.funcBody(FuncFunction)
	p.defineVariable(global)
}

// funcBody compiles a parameter list and body in a nested funcCompiler. It
// copies that compiler's upvalue descriptors before endCompiler unlinks it
// from p.fc, then emits OP_CLOSURE followed by one (isLocal, index) pair
// per descriptor.
func (p *Parser) funcBody(kind FunctionKind) {
	name := p.interner.Intern(p.previous.Lexeme)
	fn := &ObjFunction{Name: name, Chunk: newChunk()}
	p.fc = newFuncCompiler(p.fc, fn, kind)
	p.beginScope()

	p.consume(TokenLeftParen, "Expect '(' after function name.")
	if !p.check(TokenRightParen) {
		for {
			p.fc.function.Arity++
			if p.fc.function.Arity > 255 {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			constant := p.parseVariable("Expect parameter name.")
			p.defineVariable(constant)
			if !p.match(TokenComma) {
				break
			}
		}
	}
	p.consume(TokenRightParen, "Expect ')' after parameters.")
	p.consume(TokenLeftBrace, "Expect '{' before function body.")
	p.block()

	upvalues := append([]upvalueDesc(nil), p.fc.upvalues...)
	compiled := p.endCompiler()

	p.emitBytes(OpClosure, p.makeConstant(ObjVal(compiled)))
	for _, uv := range upvalues {
		p.emitByte(boolByte(uv.isLocal))
		p.emitByte(uv.index)
	}
}

// classMember compiles one member of a class body: either a method
// (`name(...) { ... }`) or a field default (`name = expr;` / `name;`),
// emitting OP_PROPERTY for the latter so the class's field-default table is
// populated at class-definition time, per spec.md §3/§4.2.
func (p *Parser) classMember() {
	p.consume(TokenIdentifier, "Expect member name.")
	name := p.previous

	if p.check(TokenLeftParen) {
		constant := p.identifierConstant(name)
		kind := FuncMethod
		if name.Lexeme == "init" {
			kind = FuncInitializer
		}
		p.funcBody(kind)
		p.emitBytes(OpMethod, constant)
		return
	}

	constant := p.identifierConstant(name)
	if p.match(TokenEqual) {
		p.expression()
	} else {
		p.emitOp(OpNil)
	}
	p.consume(TokenSemicolon, "Expect ';' after field declaration.")
	p.emitBytes(OpProperty, constant)
}

// classDeclaration implements spec.md §4.2's class lowering: CLASS, an
// optional superclass variable read plus INHERIT, with a synthetic "super" local
// scoping the method bodies that follow, then one METHOD or PROPERTY per
// member, closed by POP once the class object itself is no longer needed
// on the stack.
func (p *Parser) classDeclaration() {
	p.consume(TokenIdentifier, "Expect class name.")
	nameTok := p.previous
	nameConstant := p.identifierConstant(nameTok)
	p.declareVariable()

	p.emitBytes(OpClass, nameConstant)
	p.defineVariable(nameConstant)

	p.cc = &classCompiler{enclosing: p.cc}

	if p.match(TokenLess) {
		p.consume(TokenIdentifier, "Expect superclass name.")
		pVariable(p, false)

		if identifiersEqual(nameTok, p.previous) {
			p.error("A class can't inherit from itself.")
		}

		p.beginScope()
		p.addLocal(syntheticToken("super"))
		p.defineVariable(0)

		p.namedVariable(nameTok, false)
		p.emitOp(OpInherit)
		p.cc.hasSuperclass = true
	}

	p.namedVariable(nameTok, false)
	p.consume(TokenLeftBrace, "Expect '{' before class body.")
	for !p.check(TokenRightBrace) && !p.check(TokenEof) {
		p.classMember()
	}
	p.consume(TokenRightBrace, "Expect '}' after class body.")
	p.emitOp(OpPop) // the class value pushed by namedVariable above

	if p.cc.hasSuperclass {
		p.endScope()
	}
	p.cc = p.cc.enclosing
}
