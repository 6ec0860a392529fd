package formula

import (
	"regexp"
	"strconv"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNum
	tokIdent
	tokParam
	tokVar
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
	num  float64
}

// nameRe matches what may sit inside {...} or [...].
var nameRe = regexp.MustCompile(`^\w[\w.()]*$`)

type lexer struct {
	src  string
	pos  int
	base int
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) || c == '.' }

func (l *lexer) errorf(pos int, format string, args ...any) *ParseError {
	return newParseError(l.base+pos, format, args...)
}

// tokenize scans the whole input. base shifts reported positions so errors
// point into the full formula rather than the right-hand side.
func tokenize(src string, base int) ([]token, error) {
	l := &lexer{src: src, base: base}
	var toks []token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.kind == tokEOF {
			return toks, nil
		}
	}
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t' || l.src[l.pos] == '\n' || l.src[l.pos] == '\r') {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.base + l.pos}, nil
	}

	start := l.pos
	c := l.src[l.pos]
	switch {
	case isDigit(c) || (c == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1])):
		return l.number()
	case isIdentStart(c):
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, text: l.src[start:l.pos], pos: l.base + start}, nil
	case c == '{':
		return l.enclosed(tokParam, '}')
	case c == '[':
		return l.enclosed(tokVar, ']')
	case c == '(':
		l.pos++
		return token{kind: tokLParen, text: "(", pos: l.base + start}, nil
	case c == ')':
		l.pos++
		return token{kind: tokRParen, text: ")", pos: l.base + start}, nil
	case c == ',':
		l.pos++
		return token{kind: tokComma, text: ",", pos: l.base + start}, nil
	case c == '*' || c == '/':
		l.pos++
		if l.pos < len(l.src) && l.src[l.pos] == c {
			l.pos++
		}
		return token{kind: tokOp, text: l.src[start:l.pos], pos: l.base + start}, nil
	case c == '+' || c == '-' || c == '%' || c == '^':
		l.pos++
		return token{kind: tokOp, text: string(c), pos: l.base + start}, nil
	}
	return token{}, l.errorf(start, "unexpected character %q", c)
}

func (l *lexer) number() (token, error) {
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		save := l.pos
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		if l.pos >= len(l.src) || !isDigit(l.src[l.pos]) {
			// not an exponent after all, e.g. "2*e" written as "2e"
			l.pos = save
		} else {
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.pos++
			}
		}
	}
	text := l.src[start:l.pos]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, l.errorf(start, "bad number %q", text)
	}
	if l.pos < len(l.src) && isIdentStart(l.src[l.pos]) {
		return token{}, l.errorf(l.pos, "missing operator between %q and %q", text, l.src[l.pos])
	}
	return token{kind: tokNum, text: text, pos: l.base + start, num: v}, nil
}

func (l *lexer) enclosed(kind tokenKind, closer byte) (token, error) {
	start := l.pos
	l.pos++
	for l.pos < len(l.src) && l.src[l.pos] != closer {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{}, l.errorf(start, "unclosed %q", l.src[start])
	}
	name := l.src[start+1 : l.pos]
	l.pos++
	if !nameRe.MatchString(name) {
		return token{}, l.errorf(start, "invalid name %q", name)
	}
	return token{kind: kind, text: name, pos: l.base + start}, nil
}
