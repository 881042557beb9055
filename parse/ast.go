package parse

import (
	"errors"
	"strconv"
	"strings"
)

// Node is an expression tree node. The set of implementations is closed.
type Node interface {
	String() string
	node()
}

// Number is a numeric literal. Integer literals that fit in an int64 keep
// their exact value in Int.
type Number struct {
	Lexeme string
	Value  float64
	Int    int64
	IsInt  bool
}

// Ident is a bare or np-qualified name.
type Ident struct {
	Name string
	Pos  int
}

// Unary is a prefix sign.
type Unary struct {
	Op string
	X  Node
}

// Binary is an infix arithmetic operation.
type Binary struct {
	Op   string
	X, Y Node
}

// Call applies a named function to arguments.
type Call struct {
	Func string
	Args []Node
	Pos  int
}

func (*Number) node() {}
func (*Ident) node()  {}
func (*Unary) node()  {}
func (*Binary) node() {}
func (*Call) node()   {}

func (n *Number) String() string {
	if n.IsInt {
		return strconv.FormatInt(n.Int, 10)
	}
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

func (n *Ident) String() string { return n.Name }
func (n *Unary) String() string { return "(" + n.Op + n.X.String() + ")" }
func (n *Binary) String() string {
	return "(" + n.X.String() + " " + n.Op + " " + n.Y.String() + ")"
}

func (n *Call) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return n.Func + "(" + strings.Join(args, ", ") + ")"
}

func newNumber(lexeme string, pos int) (*Number, error) {
	if !strings.ContainsAny(lexeme, ".eE") {
		if i, err := strconv.ParseInt(lexeme, 10, 64); err == nil {
			return &Number{Lexeme: lexeme, Value: float64(i), Int: i, IsInt: true}, nil
		}
	}
	f, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		// Out-of-range literals degrade to ±Inf; only true garbage fails.
		if !errors.Is(err, strconv.ErrRange) {
			return nil, &SyntaxError{Pos: pos, Msg: "malformed number " + strconv.Quote(lexeme)}
		}
	}
	return &Number{Lexeme: lexeme, Value: f}, nil
}
