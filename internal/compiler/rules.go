package compiler

import "lumen/internal/token"

// Precedence is the Pratt parser's binding-power ladder, lowest to highest.
type Precedence int

const (
	PrecNone       Precedence = iota
	PrecAssignment            // = += -= *= /= &= ^= |=
	PrecOr                    // or
	PrecAnd                   // and
	PrecEquality              // == !=
	PrecComparison            // < <= > >=
	PrecTerm                  // + -
	PrecFactor                // * / %
	PrecPower                 // **
	PrecUnary                 // not -
	PrecCall                  // . () [] call/subscript/dot
)

type parseFn func(p *Parser, canAssign bool)

type rule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

// rules is a plain array indexed by token.Kind, so dispatch during
// expression parsing never costs a map lookup (spec.md §9 design note).
var rules [token.NumKinds]rule

func init() {
	rules[token.LPAREN] = rule{(*Parser).grouping, (*Parser).call, PrecCall}
	rules[token.LBRACKET] = rule{nil, (*Parser).subscript, PrecCall}
	rules[token.DOT] = rule{nil, (*Parser).dot, PrecCall}

	rules[token.MINUS] = rule{(*Parser).unary, (*Parser).binary, PrecTerm}
	rules[token.PLUS] = rule{nil, (*Parser).binary, PrecTerm}
	rules[token.SLASH] = rule{nil, (*Parser).binary, PrecFactor}
	rules[token.STAR] = rule{nil, (*Parser).binary, PrecFactor}
	rules[token.PERCENT] = rule{nil, (*Parser).binary, PrecFactor}
	rules[token.STAR_STAR] = rule{nil, (*Parser).binary, PrecPower}

	rules[token.AMP] = rule{nil, (*Parser).binary, PrecFactor}
	rules[token.CARET] = rule{nil, (*Parser).binary, PrecFactor}
	rules[token.PIPE] = rule{nil, (*Parser).binary, PrecFactor}

	rules[token.NOT] = rule{(*Parser).unary, nil, PrecNone}
	rules[token.BANG_EQUAL] = rule{nil, (*Parser).binary, PrecEquality}
	rules[token.EQUAL_EQUAL] = rule{nil, (*Parser).binary, PrecEquality}
	rules[token.GREATER] = rule{nil, (*Parser).binary, PrecComparison}
	rules[token.GREATER_EQUAL] = rule{nil, (*Parser).binary, PrecComparison}
	rules[token.LESS] = rule{nil, (*Parser).binary, PrecComparison}
	rules[token.LESS_EQUAL] = rule{nil, (*Parser).binary, PrecComparison}

	rules[token.IDENTIFIER] = rule{(*Parser).variable, nil, PrecNone}
	rules[token.STRING] = rule{(*Parser).stringLiteral, nil, PrecNone}
	rules[token.NUMBER] = rule{(*Parser).number, nil, PrecNone}

	rules[token.AND] = rule{nil, (*Parser).and_, PrecAnd}
	rules[token.OR] = rule{nil, (*Parser).or_, PrecOr}

	rules[token.TRUE] = rule{(*Parser).literal, nil, PrecNone}
	rules[token.FALSE] = rule{(*Parser).literal, nil, PrecNone}
	rules[token.NIL] = rule{(*Parser).literal, nil, PrecNone}

	rules[token.THIS] = rule{(*Parser).this_, nil, PrecNone}
	rules[token.SUPER] = rule{(*Parser).super_, nil, PrecNone}
}

func ruleFor(kind token.Kind) rule { return rules[kind] }
