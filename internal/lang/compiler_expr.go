package lang

import "strconv"

func (p *Parser) expression() {
	p.parsePrecedence(PrecAssignment)
}

// parsePrecedence is spec.md §4.2's Pratt driver: consume a prefix
// expression, then while the next token's precedence ≥ the floor, consume
// an infix. Assignability is threaded as a boolean so assignment is only
// permitted when precedence ≤ assignment.
func (p *Parser) parsePrecedence(precedence Precedence) {
	p.advance()
	prefixRule := getRule(p.previous.Kind).prefix
	if prefixRule == nil {
		p.error("Expect expression.")
		return
	}

	canAssign := precedence <= PrecAssignment
	prefixRule(p, canAssign)

	for precedence <= getRule(p.current.Kind).precedence {
		p.advance()
		infixRule := getRule(p.previous.Kind).infix
		infixRule(p, canAssign)
	}

	if canAssign && p.match(TokenEqual) {
		p.error("Invalid assignment target.")
	}
}

func pNumber(p *Parser, canAssign bool) {
	p.emitConstant(NumberVal(parseNumberLiteral(p.previous.Lexeme)))
}

func parseNumberLiteral(lexeme string) float64 {
	switch {
	case len(lexeme) > 2 && (lexeme[1] == 'x' || lexeme[1] == 'X'):
		n, _ := strconv.ParseInt(lexeme[2:], 16, 64)
		return float64(n)
	case len(lexeme) > 2 && (lexeme[1] == 'b' || lexeme[1] == 'B'):
		n, _ := strconv.ParseInt(lexeme[2:], 2, 64)
		return float64(n)
	case len(lexeme) > 2 && (lexeme[1] == 'o' || lexeme[1] == 'O'):
		n, _ := strconv.ParseInt(lexeme[2:], 8, 64)
		return float64(n)
	default:
		n, _ := strconv.ParseFloat(lexeme, 64)
		return n
	}
}

func pString(p *Parser, canAssign bool) {
	raw := p.previous.Lexeme
	chars := raw[1 : len(raw)-1]
	p.emitConstant(ObjVal(p.interner.Intern(chars)))
}

func pLiteral(p *Parser, canAssign bool) {
	switch p.previous.Kind {
	case TokenFalse:
		p.emitOp(OpFalse)
	case TokenNil:
		p.emitOp(OpNil)
	case TokenTrue:
		p.emitOp(OpTrue)
	}
}

func pGrouping(p *Parser, canAssign bool) {
	p.expression()
	p.consume(TokenRightParen, "Expect ')' after expression.")
}

func pUnary(p *Parser, canAssign bool) {
	opType := p.previous.Kind
	p.parsePrecedence(PrecUnary)
	switch opType {
	case TokenBang:
		p.emitOp(OpNot)
	case TokenMinus:
		p.emitOp(OpNegate)
	}
}

func pBinary(p *Parser, canAssign bool) {
	opType := p.previous.Kind
	rule := getRule(opType)
	p.parsePrecedence(rule.precedence + 1)
	switch opType {
	case TokenBangEqual:
		p.emitOp(OpEqual)
		p.emitOp(OpNot)
	case TokenEqualEqual:
		p.emitOp(OpEqual)
	case TokenGreater:
		p.emitOp(OpGreater)
	case TokenGreaterEqual:
		p.emitOp(OpLess)
		p.emitOp(OpNot)
	case TokenLess:
		p.emitOp(OpLess)
	case TokenLessEqual:
		p.emitOp(OpGreater)
		p.emitOp(OpNot)
	case TokenPlus:
		p.emitOp(OpAdd)
	case TokenMinus:
		p.emitOp(OpSubtract)
	case TokenStar:
		p.emitOp(OpMultiply)
	case TokenSlash:
		p.emitOp(OpDivide)
	case TokenPercent:
		p.emitOp(OpMod)
	case TokenAmp:
		p.emitOp(OpBitwiseAnd)
	case TokenPipe:
		p.emitOp(OpBitwiseOr)
	case TokenCaret:
		p.emitOp(OpBitwiseXor)
	case TokenShiftLeft:
		p.emitOp(OpShiftLeft)
	case TokenShiftRight:
		p.emitOp(OpShiftRight)
	}
}

func pAnd(p *Parser, canAssign bool) {
	endJump := p.emitJump(OpJumpIfFalse)
	p.emitOp(OpPop)
	p.parsePrecedence(PrecAnd)
	p.patchJump(endJump)
}

func pOr(p *Parser, canAssign bool) {
	elseJump := p.emitJump(OpJumpIfFalse)
	endJump := p.emitJump(OpJump)
	p.patchJump(elseJump)
	p.emitOp(OpPop)
	p.parsePrecedence(PrecOr)
	p.patchJump(endJump)
}

func pArrayLiteral(p *Parser, canAssign bool) {
	count := 0
	if !p.check(TokenRightBracket) {
		for {
			p.expression()
			count++
			if !p.match(TokenComma) {
				break
			}
		}
	}
	p.consume(TokenRightBracket, "Expect ']' after array elements.")
	p.emitBytes(OpSetArray, byte(count))
}

func pTableLiteral(p *Parser, canAssign bool) {
	count := 0
	if !p.check(TokenRightBrace) {
		for {
			p.expression()
			p.consume(TokenColon, "Expect ':' after table key.")
			p.expression()
			count++
			if !p.match(TokenComma) {
				break
			}
		}
	}
	p.consume(TokenRightBrace, "Expect '}' after table entries.")
	p.emitBytes(OpSetTable, byte(count))
}

// pIndex handles the `container[index]` infix rule, including the
// assignment target form `container[index] = value`.
func pIndex(p *Parser, canAssign bool) {
	p.expression()
	p.consume(TokenRightBracket, "Expect ']' after index.")
	if canAssign && p.match(TokenEqual) {
		p.expression()
		p.emitOp(OpSetIndex)
		return
	}
	p.emitOp(OpIndex)
}

func (p *Parser) argumentList() int {
	count := 0
	if !p.check(TokenRightParen) {
		for {
			p.expression()
			if count == 255 {
				p.error("Can't have more than 255 arguments.")
			}
			count++
			if !p.match(TokenComma) {
				break
			}
		}
	}
	p.consume(TokenRightParen, "Expect ')' after arguments.")
	return count
}

func pCall(p *Parser, canAssign bool) {
	argCount := p.argumentList()
	p.emitBytes(OpCall, byte(argCount))
}

// pDot implements spec.md §4.2's compiled forms for `.name`, `.name = v`,
// and `.name(args)` (the last of which emits OP_INVOKE directly, per
// spec.md §4.4's INVOKE short-circuit).
func pDot(p *Parser, canAssign bool) {
	p.consume(TokenIdentifier, "Expect property name after '.'.")
	name := p.identifierConstant(p.previous)

	switch {
	case p.match(TokenLeftParen):
		argCount := p.argumentList()
		p.emitBytes(OpInvoke, name)
		p.emitByte(byte(argCount))
	case canAssign && p.match(TokenEqual):
		p.expression()
		p.emitBytes(OpSetProperty, name)
	default:
		p.emitBytes(OpGetProperty, name)
	}
}

func pThis(p *Parser, canAssign bool) {
	if p.cc == nil {
		p.error("Can't use 'this' outside of a class.")
		return
	}
	pVariable(p, false)
}

// pSuper implements `super.name` and `super.name(args)`, compiling to
// GET_LOCAL this; a read of the synthetic "super" variable (an upvalue,
// since it lives in the class declaration's scope); GET_SUPER name, or
// SUPER_INVOKE name, argc with the arguments compiled before the super read.
func pSuper(p *Parser, canAssign bool) {
	if p.cc == nil {
		p.error("Can't use 'super' outside of a class.")
	} else if !p.cc.hasSuperclass {
		p.error("Can't use 'super' in a class with no superclass.")
	}

	p.consume(TokenDot, "Expect '.' after 'super'.")
	p.consume(TokenIdentifier, "Expect superclass method name.")
	name := p.identifierConstant(p.previous)

	p.namedVariable(syntheticToken("this"), false)
	if p.match(TokenLeftParen) {
		argCount := p.argumentList()
		p.namedVariable(syntheticToken("super"), false)
		p.emitBytes(OpSuperInvoke, name)
		p.emitByte(byte(argCount))
	} else {
		p.namedVariable(syntheticToken("super"), false)
		p.emitBytes(OpGetSuper, name)
	}
}

// namedVariable implements spec.md §4.2's assignment sugar: `+=`/`-=`/`*=`/
// `/=` desugar to get; expr; op; set, with the get/expr order following
// source order so non-commutative operators observe `a -= b` as
// `get a; expr b; SUB; set a`.
func (p *Parser) namedVariable(name Token, canAssign bool) {
	getOp, setOp, arg := p.resolveVariable(name)

	if !canAssign {
		p.emitBytes(getOp, byte(arg))
		return
	}

	switch {
	case p.match(TokenEqual):
		p.expression()
		p.emitBytes(setOp, byte(arg))
	case p.match(TokenPlusEqual):
		p.emitBytes(getOp, byte(arg))
		p.expression()
		p.emitOp(OpAdd)
		p.emitBytes(setOp, byte(arg))
	case p.match(TokenMinusEqual):
		p.emitBytes(getOp, byte(arg))
		p.expression()
		p.emitOp(OpSubtract)
		p.emitBytes(setOp, byte(arg))
	case p.match(TokenStarEqual):
		p.emitBytes(getOp, byte(arg))
		p.expression()
		p.emitOp(OpMultiply)
		p.emitBytes(setOp, byte(arg))
	case p.match(TokenSlashEqual):
		p.emitBytes(getOp, byte(arg))
		p.expression()
		p.emitOp(OpDivide)
		p.emitBytes(setOp, byte(arg))
	default:
		p.emitBytes(getOp, byte(arg))
	}
}

func pVariable(p *Parser, canAssign bool) {
	p.namedVariable(p.previous, canAssign)
}
