package parse

import "fmt"

// MaxDepth bounds expression nesting so hostile input cannot exhaust the stack.
const MaxDepth = 200

const (
	bpAdditive       = 10
	bpMultiplicative = 20
	bpUnary          = 30
	bpPower          = 40
)

type parser struct {
	toks  []Token
	i     int
	depth int
}

// Parse parses a complete expression.
func Parse(src string) (Node, error) {
	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if p.peek().Type == EOF {
		return nil, &SyntaxError{Pos: 0, Msg: "empty expression"}
	}
	n, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.Type != EOF {
		return nil, &SyntaxError{Pos: t.Pos, Msg: fmt.Sprintf("unexpected %s %q", t.Type, t.Lexeme)}
	}
	return n, nil
}

func (p *parser) peek() Token { return p.toks[p.i] }

func (p *parser) next() Token {
	t := p.toks[p.i]
	if t.Type != EOF {
		p.i++
	}
	return t
}

func (p *parser) need(tt TokenType) (Token, error) {
	t := p.peek()
	if t.Type != tt {
		return t, &SyntaxError{Pos: t.Pos, Msg: fmt.Sprintf("expected %s, found %s", tt, describe(t))}
	}
	p.i++
	return t, nil
}

func describe(t Token) string {
	if t.Type == EOF {
		return t.Type.String()
	}
	return fmt.Sprintf("%q", t.Lexeme)
}

// lbp returns the left binding power of an infix operator.
func lbp(tt TokenType) (int, bool) {
	switch tt {
	case PLUS, MINUS:
		return bpAdditive, true
	case STAR, SLASH, DSLASH, PERCENT:
		return bpMultiplicative, true
	case POW:
		return bpPower, true
	}
	return 0, false
}

func (p *parser) expr(minBP int) (Node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxDepth {
		return nil, &SyntaxError{Pos: p.peek().Pos, Msg: "expression nested too deeply"}
	}

	left, err := p.prefix()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		bp, ok := lbp(op.Type)
		if !ok || bp < minBP {
			return left, nil
		}
		p.i++
		next := bp + 1
		if op.Type == POW {
			next = bp
		}
		right, err := p.expr(next)
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op.Lexeme, X: left, Y: right}
	}
}

func (p *parser) prefix() (Node, error) {
	t := p.next()
	switch t.Type {
	case NUMBER:
		return newNumber(t.Lexeme, t.Pos)
	case IDENT:
		if p.peek().Type == LPAREN {
			p.i++
			args, err := p.args()
			if err != nil {
				return nil, err
			}
			return &Call{Func: t.Lexeme, Args: args, Pos: t.Pos}, nil
		}
		return &Ident{Name: t.Lexeme, Pos: t.Pos}, nil
	case PLUS, MINUS:
		x, err := p.expr(bpUnary)
		if err != nil {
			return nil, err
		}
		return &Unary{Op: t.Lexeme, X: x}, nil
	case LPAREN:
		inner, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.need(RPAREN); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, &SyntaxError{Pos: t.Pos, Msg: "unexpected " + describe(t)}
}

// args parses a call argument list after the opening parenthesis.
func (p *parser) args() ([]Node, error) {
	var out []Node
	if p.peek().Type == RPAREN {
		p.i++
		return out, nil
	}
	for {
		a, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
		t := p.next()
		switch t.Type {
		case COMMA:
			continue
		case RPAREN:
			return out, nil
		}
		return nil, &SyntaxError{Pos: t.Pos, Msg: "expected ',' or ')' in argument list, found " + describe(t)}
	}
}
