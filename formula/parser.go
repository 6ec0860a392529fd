package formula

import "fmt"

// ParseError reports where in the formula parsing failed.
type ParseError struct {
	Pos    int
	Msg    string
	Source string
}

func newParseError(pos int, format string, args ...any) *ParseError {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("formula: %s at offset %d", e.Msg, e.Pos)
	}
	return fmt.Sprintf("formula %q: %s at offset %d", e.Source, e.Msg, e.Pos)
}

type parser struct {
	toks     []token
	i        int
	variable string
	params   map[string]int
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) advance() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) isOp(ops ...string) bool {
	t := p.peek()
	if t.kind != tokOp {
		return false
	}
	for _, op := range ops {
		if t.text == op {
			return true
		}
	}
	return false
}

func (p *parser) parse() (node, error) {
	n, err := p.sum()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, newParseError(t.pos, "unexpected %q", t.text)
	}
	return n, nil
}

func (p *parser) sum() (node, error) {
	l, err := p.product()
	if err != nil {
		return nil, err
	}
	for p.isOp("+", "-") {
		op := p.advance().text
		r, err := p.product()
		if err != nil {
			return nil, err
		}
		l = &binaryNode{op: op, l: l, r: r}
	}
	return l, nil
}

func (p *parser) product() (node, error) {
	l, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.isOp("*", "/", "//", "%") {
		op := p.advance().text
		r, err := p.unary()
		if err != nil {
			return nil, err
		}
		l = &binaryNode{op: op, l: l, r: r}
	}
	return l, nil
}

func (p *parser) unary() (node, error) {
	if p.isOp("+", "-") {
		op := p.advance().text
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: op, x: x}, nil
	}
	return p.power()
}

// power is right associative and its exponent may carry a sign: 2**-x**2.
func (p *parser) power() (node, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if p.isOp("**", "^") {
		p.advance()
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &binaryNode{op: "**", l: base, r: exp}, nil
	}
	return base, nil
}

func (p *parser) primary() (node, error) {
	t := p.advance()
	switch t.kind {
	case tokNum:
		return &numNode{v: t.num, text: t.text}, nil
	case tokParam:
		return &paramNode{idx: p.params[t.text], name: t.text}, nil
	case tokVar:
		return &varNode{name: t.text}, nil
	case tokLParen:
		n, err := p.sum()
		if err != nil {
			return nil, err
		}
		if c := p.advance(); c.kind != tokRParen {
			return nil, newParseError(c.pos, "expected ')'")
		}
		return n, nil
	case tokIdent:
		return p.ident(t)
	case tokEOF:
		return nil, newParseError(t.pos, "unexpected end of formula")
	}
	return nil, newParseError(t.pos, "unexpected %q", t.text)
}

func (p *parser) ident(t token) (node, error) {
	if p.peek().kind == tokLParen {
		fn, ok := lookupFunction(t.text)
		if !ok {
			return nil, newParseError(t.pos, "unknown function %q", t.text)
		}
		p.advance()
		var args []node
		if p.peek().kind != tokRParen {
			for {
				a, err := p.sum()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if p.peek().kind != tokComma {
					break
				}
				p.advance()
			}
		}
		if c := p.advance(); c.kind != tokRParen {
			return nil, newParseError(c.pos, "expected ')' closing %s(", t.text)
		}
		if len(args) < fn.minArgs || (fn.maxArgs >= 0 && len(args) > fn.maxArgs) {
			return nil, newParseError(t.pos, "%s takes %s, got %d", t.text, arity(fn), len(args))
		}
		return &callNode{fn: fn, name: t.text, args: args}, nil
	}

	if t.text == p.variable {
		return &varNode{name: t.text}, nil
	}
	if v, ok := lookupConstant(t.text); ok {
		return &constNode{v: v, name: t.text}, nil
	}
	if _, ok := lookupFunction(t.text); ok {
		return nil, newParseError(t.pos, "function %q used without arguments", t.text)
	}
	return nil, newParseError(t.pos, "unknown identifier %q", t.text)
}

func arity(fn *function) string {
	switch {
	case fn.maxArgs < 0:
		return fmt.Sprintf("at least %d arguments", fn.minArgs)
	case fn.minArgs == fn.maxArgs && fn.minArgs == 1:
		return "1 argument"
	case fn.minArgs == fn.maxArgs:
		return fmt.Sprintf("%d arguments", fn.minArgs)
	}
	return fmt.Sprintf("%d to %d arguments", fn.minArgs, fn.maxArgs)
}
