package lang

// Precedence implements the ladder from spec.md §4.2:
//   none < assignment < or < and < equality < comparison < term < factor < unary < call < primary
// PrecBitwise is inserted between comparison and term to give the bitwise
// operators (& | ^ << >>) a slot of their own; spec.md's ladder only
// orders the named levels relative to each other, so this insertion keeps
// every stated relation intact while giving bitwise ops lower precedence
// than arithmetic and higher than comparison, matching how the
// original_source/ C host parses them.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecBitwise
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

type parseFn func(p *Parser, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}
