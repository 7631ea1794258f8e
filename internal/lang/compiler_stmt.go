package lang

func (p *Parser) declaration() {
	switch {
	case p.match(TokenClass):
		p.classDeclaration()
	case p.match(TokenFun):
		p.funDeclaration()
	case p.match(TokenLet):
		p.letDeclaration()
	default:
		p.statement()
	}

	if p.panicMode {
		p.synchronize()
	}
}

func (p *Parser) statement() {
	switch {
	case p.match(TokenDump):
		p.dumpStatement()
	case p.match(TokenLeftBrace):
		p.beginScope()
		p.block()
		p.endScope()
	case p.match(TokenIf):
		p.ifStatement()
	case p.match(TokenWhile):
		p.whileStatement()
	case p.match(TokenFor):
		p.forStatement()
	case p.match(TokenSwitch):
		p.switchStatement()
	case p.match(TokenReturn):
		p.returnStatement()
	case p.match(TokenBreak):
		p.breakStatement()
	case p.match(TokenContinue):
		p.continueStatement()
	default:
		p.expressionStatement()
	}
}

func (p *Parser) block() {
	for !p.check(TokenRightBrace) && !p.check(TokenEof) {
		p.declaration()
	}
	p.consume(TokenRightBrace, "Expect '}' after block.")
}

func (p *Parser) letDeclaration() {
	global := p.parseVariable("Expect variable name.")
	if p.match(TokenEqual) {
		p.expression()
	} else {
		p.emitOp(OpNil)
	}
	p.consume(TokenSemicolon, "Expect ';' after variable declaration.")
	p.defineVariable(global)
}

func (p *Parser) expressionStatement() {
	p.expression()
	p.consume(TokenSemicolon, "Expect ';' after expression.")
	p.emitOp(OpPop)
}

func (p *Parser) dumpStatement() {
	p.expression()
	p.consume(TokenSemicolon, "Expect ';' after value.")
	p.emitOp(OpDump)
}

// ifStatement implements spec.md §4.2's if/else codegen:
//   evaluate c; JUMP_IF_FALSE → L1; POP; s1; JUMP → L2; L1: POP; s2; L2:
func (p *Parser) ifStatement() {
	p.consume(TokenLeftParen, "Expect '(' after 'if'.")
	p.expression()
	p.consume(TokenRightParen, "Expect ')' after condition.")

	thenJump := p.emitJump(OpJumpIfFalse)
	p.emitOp(OpPop)
	p.statement()

	elseJump := p.emitJump(OpJump)
	p.patchJump(thenJump)
	p.emitOp(OpPop)

	if p.match(TokenElse) {
		p.statement()
	}
	p.patchJump(elseJump)
}

// whileStatement implements spec.md §4.2's while codegen:
//   mark loopStart; c; JUMP_IF_FALSE → Lexit; POP; s; LOOP → loopStart;
//   Lexit: POP; patch all pending breaks.
func (p *Parser) whileStatement() {
	loopStart := len(p.currentChunk().Code)
	p.fc.pushLoop(loopStart)

	p.consume(TokenLeftParen, "Expect '(' after 'while'.")
	p.expression()
	p.consume(TokenRightParen, "Expect ')' after condition.")

	exitJump := p.emitJump(OpJumpIfFalse)
	p.emitOp(OpPop)
	p.statement()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitOp(OpPop)

	for _, b := range p.fc.popLoop() {
		p.patchJump(b)
	}
}

// forStatement implements spec.md §4.2's classic three-part for, with the
// increment trampoline and loopStart rebinding so continue runs the step.
func (p *Parser) forStatement() {
	p.beginScope()
	p.consume(TokenLeftParen, "Expect '(' after 'for'.")

	switch {
	case p.match(TokenSemicolon):
		// no initializer
	case p.match(TokenLet):
		p.letDeclaration()
	default:
		p.expressionStatement()
	}

	loopStart := len(p.currentChunk().Code)
	p.fc.pushLoop(loopStart)

	exitJump := -1
	if !p.match(TokenSemicolon) {
		p.expression()
		p.consume(TokenSemicolon, "Expect ';' after loop condition.")
		exitJump = p.emitJump(OpJumpIfFalse)
		p.emitOp(OpPop)
	}

	if !p.match(TokenRightParen) {
		bodyJump := p.emitJump(OpJump)
		incrementStart := len(p.currentChunk().Code)
		p.expression()
		p.emitOp(OpPop)
		p.consume(TokenRightParen, "Expect ')' after for clauses.")

		p.emitLoop(loopStart)
		loopStart = incrementStart
		p.fc.setLoopStart(loopStart)
		p.patchJump(bodyJump)
	}

	p.statement()
	p.emitLoop(loopStart)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitOp(OpPop)
	}

	for _, b := range p.fc.popLoop() {
		p.patchJump(b)
	}
	p.endScope()
}

// switchStatement implements spec.md §4.2's switch codegen, including the
// "pop exactly once" policy for the residual switch value.
func (p *Parser) switchStatement() {
	p.consume(TokenLeftParen, "Expect '(' after 'switch'.")
	p.expression()
	p.consume(TokenRightParen, "Expect ')' after switch value.")
	p.consume(TokenLeftBrace, "Expect '{' before switch body.")

	var endJumps []int
	sawDefault := false

	for p.check(TokenCase) {
		p.advance()
		p.emitOp(OpDup)
		p.expression()
		p.emitOp(OpEqual)
		p.consume(TokenColon, "Expect ':' after case value.")

		elseJump := p.emitJump(OpJumpIfFalse)
		p.emitOp(OpPop) // pop the equality result
		p.emitOp(OpPop) // pop the switch value; this case matched

		for !p.check(TokenCase) && !p.check(TokenDefault) && !p.check(TokenRightBrace) && !p.check(TokenEof) {
			p.declaration()
		}
		endJumps = append(endJumps, p.emitJump(OpJump))

		p.patchJump(elseJump)
		p.emitOp(OpPop) // pop the equality result on the non-matching path
	}

	if p.match(TokenDefault) {
		sawDefault = true
		p.consume(TokenColon, "Expect ':' after 'default'.")
		for !p.check(TokenRightBrace) && !p.check(TokenEof) {
			p.declaration()
		}
		p.emitOp(OpPop) // pop the residual switch value
	}

	if !sawDefault {
		// No case matched at runtime (or there were no cases at all): the
		// switch value is still on the stack here and there is no default
		// to pop it. Matched cases already popped it and jump past this.
		p.emitOp(OpPop)
	}
	for _, j := range endJumps {
		p.patchJump(j)
	}

	p.consume(TokenRightBrace, "Expect '}' after switch body.")
}

func (p *Parser) breakStatement() {
	_, ok := p.fc.currentLoopStart()
	if !ok {
		p.error("Can't use 'break' outside of a loop.")
	}
	p.consume(TokenSemicolon, "Expect ';' after 'break'.")
	jump := p.emitJump(OpJump)
	if ok {
		p.fc.addBreakJump(jump)
	}
}

func (p *Parser) continueStatement() {
	start, ok := p.fc.currentLoopStart()
	if !ok {
		p.error("Can't use 'continue' outside of a loop.")
		p.consume(TokenSemicolon, "Expect ';' after 'continue'.")
		return
	}
	p.consume(TokenSemicolon, "Expect ';' after 'continue'.")
	p.emitLoop(start)
}

// returnStatement implements spec.md §4.2's Return rule: `return;` in an
// initializer emits GET_LOCAL 0; RETURN, and `return expr;` inside an
// initializer is a compile error.
func (p *Parser) returnStatement() {
	if p.fc.kind == FuncScript {
		p.error("Can't return from top-level code.")
	}

	if p.match(TokenSemicolon) {
		p.emitReturn()
		return
	}

	if p.fc.kind == FuncInitializer {
		p.error("Can't return a value from an initializer.")
	}
	p.expression()
	p.consume(TokenSemicolon, "Expect ';' after return value.")
	p.emitOp(OpReturn)
}
