package formula

import (
	"math"
	"strconv"
	"strings"
)

// Binding strengths, loosest first. Rendering parenthesises a child whose
// level is lower than what its parent requires.
const (
	precAdd = iota + 1
	precMul
	precUnary
	precPow
	precAtom
)

type node interface {
	eval(x float64, p []float64) float64
	prec() int
	write(b *strings.Builder)
	latex(b *strings.Builder)
}

type numNode struct {
	v    float64
	text string
}

type paramNode struct {
	idx  int
	name string
}

type varNode struct{ name string }

type constNode struct {
	v    float64
	name string
}

type unaryNode struct {
	op string
	x  node
}

type binaryNode struct {
	op   string
	l, r node
}

type callNode struct {
	fn   *function
	name string
	args []node
}

func (n *numNode) eval(float64, []float64) float64     { return n.v }
func (n *paramNode) eval(_ float64, p []float64) float64 { return p[n.idx] }
func (n *varNode) eval(x float64, _ []float64) float64   { return x }
func (n *constNode) eval(float64, []float64) float64   { return n.v }

func (n *unaryNode) eval(x float64, p []float64) float64 {
	if n.op == "-" {
		return -n.x.eval(x, p)
	}
	return n.x.eval(x, p)
}

func (n *binaryNode) eval(x float64, p []float64) float64 {
	a, b := n.l.eval(x, p), n.r.eval(x, p)
	switch n.op {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	case "/":
		return a / b
	case "//":
		return math.Floor(a / b)
	case "%":
		return pyMod(a, b)
	default: // "**", "^"
		return math.Pow(a, b)
	}
}

func (n *callNode) eval(x float64, p []float64) float64 {
	var buf [4]float64
	args := buf[:0]
	for _, a := range n.args {
		args = append(args, a.eval(x, p))
	}
	return n.fn.call(args)
}

// pyMod gives the remainder the sign of the divisor.
func pyMod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

func (n *numNode) prec() int   { return precAtom }
func (n *paramNode) prec() int { return precAtom }
func (n *varNode) prec() int   { return precAtom }
func (n *constNode) prec() int { return precAtom }
func (n *unaryNode) prec() int { return precUnary }
func (n *callNode) prec() int  { return precAtom }

func (n *binaryNode) prec() int {
	switch n.op {
	case "+", "-":
		return precAdd
	case "*", "/", "//", "%":
		return precMul
	}
	return precPow
}

// child renders c, wrapped in parentheses when it binds looser than min.
func child(b *strings.Builder, c node, min int, tex bool) {
	open, closing := "(", ")"
	if tex {
		open, closing = `\left(`, `\right)`
	}
	wrap := c.prec() < min
	if wrap {
		b.WriteString(open)
	}
	if tex {
		c.latex(b)
	} else {
		c.write(b)
	}
	if wrap {
		b.WriteString(closing)
	}
}

func (n *numNode) write(b *strings.Builder)   { b.WriteString(n.text) }
func (n *paramNode) write(b *strings.Builder) { b.WriteString("{" + n.name + "}") }
func (n *varNode) write(b *strings.Builder)   { b.WriteString(n.name) }
func (n *constNode) write(b *strings.Builder) { b.WriteString(n.name) }

func (n *unaryNode) write(b *strings.Builder) {
	b.WriteString(n.op)
	child(b, n.x, precUnary, false)
}

func (n *binaryNode) write(b *strings.Builder) {
	p := n.prec()
	if p == precPow {
		child(b, n.l, precAtom, false)
		b.WriteString("**")
		child(b, n.r, precUnary, false)
		return
	}
	child(b, n.l, p, false)
	b.WriteString(" " + n.op + " ")
	child(b, n.r, p+1, false)
}

func (n *callNode) write(b *strings.Builder) {
	b.WriteString(n.name + "(")
	for i, a := range n.args {
		if i > 0 {
			b.WriteString(", ")
		}
		a.write(b)
	}
	b.WriteString(")")
}

var greek = map[string]bool{
	"alpha": true, "beta": true, "gamma": true, "delta": true, "epsilon": true,
	"zeta": true, "eta": true, "theta": true, "iota": true, "kappa": true,
	"lambda": true, "mu": true, "nu": true, "xi": true, "pi": true, "rho": true,
	"sigma": true, "tau": true, "phi": true, "chi": true, "psi": true, "omega": true,
	"Gamma": true, "Delta": true, "Theta": true, "Lambda": true, "Xi": true,
	"Pi": true, "Sigma": true, "Phi": true, "Psi": true, "Omega": true,
}

func texName(name string) string {
	base, sub, hasSub := strings.Cut(name, "_")
	switch {
	case greek[base]:
		base = `\` + base
	case len(base) > 1:
		base = `\mathrm{` + base + `}`
	}
	if hasSub && sub != "" {
		return base + "_{" + sub + "}"
	}
	return base
}

func (n *numNode) latex(b *strings.Builder) {
	mant, exp, ok := strings.Cut(strings.ToLower(n.text), "e")
	if !ok {
		b.WriteString(n.text)
		return
	}
	e, _ := strconv.Atoi(exp)
	if mant != "1" {
		b.WriteString(mant + ` \times `)
	}
	b.WriteString("10^{" + strconv.Itoa(e) + "}")
}

func (n *paramNode) latex(b *strings.Builder) { b.WriteString(texName(n.name)) }
func (n *varNode) latex(b *strings.Builder)   { b.WriteString(texName(n.name)) }

func (n *constNode) latex(b *strings.Builder) {
	switch name := stripPrefix(n.name); name {
	case "pi", "tau":
		b.WriteString(`\` + name)
	case "inf":
		b.WriteString(`\infty`)
	default:
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
		b.WriteString(texName(name))
	}
}

func (n *unaryNode) latex(b *strings.Builder) {
	b.WriteString(n.op)
	child(b, n.x, precUnary, true)
}

func (n *binaryNode) latex(b *strings.Builder) {
	switch n.op {
	case "/":
		b.WriteString(`\frac{`)
		n.l.latex(b)
		b.WriteString("}{")
		n.r.latex(b)
		b.WriteString("}")
		return
	case "//":
		b.WriteString(`\left\lfloor \frac{`)
		n.l.latex(b)
		b.WriteString("}{")
		n.r.latex(b)
		b.WriteString(`} \right\rfloor`)
		return
	case "**", "^":
		b.WriteString("{")
		child(b, n.l, precAtom, true)
		b.WriteString("}^{")
		n.r.latex(b)
		b.WriteString("}")
		return
	}
	p := n.prec()
	op := " " + n.op + " "
	switch n.op {
	case "*":
		op = ` \cdot `
	case "%":
		op = ` \bmod `
	}
	child(b, n.l, p, true)
	b.WriteString(op)
	child(b, n.r, p+1, true)
}

func (n *callNode) latex(b *strings.Builder) {
	arg := func(i int) string {
		var s strings.Builder
		n.args[i].latex(&s)
		return s.String()
	}
	switch n.fn.name {
	case "sqrt":
		b.WriteString(`\sqrt{` + arg(0) + `}`)
		return
	case "exp":
		b.WriteString(`e^{` + arg(0) + `}`)
		return
	case "abs":
		b.WriteString(`\left|` + arg(0) + `\right|`)
		return
	case "floor":
		b.WriteString(`\lfloor ` + arg(0) + ` \rfloor`)
		return
	case "ceil":
		b.WriteString(`\lceil ` + arg(0) + ` \rceil`)
		return
	case "log":
		if len(n.args) == 1 {
			b.WriteString(`\ln\left(` + arg(0) + `\right)`)
			return
		}
	case "sin", "cos", "tan", "sinh", "cosh", "tanh", "log10", "log2":
		name := n.fn.name
		if name == "log10" || name == "log2" {
			name = "log_{" + strings.TrimPrefix(name, "log") + "}"
		}
		b.WriteString(`\` + name + `\left(` + arg(0) + `\right)`)
		return
	case "arcsin", "arccos", "arctan":
		b.WriteString(`\` + n.fn.name + `\left(` + arg(0) + `\right)`)
		return
	}
	b.WriteString(`\operatorname{` + n.fn.name + `}\left(`)
	for i := range n.args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(arg(i))
	}
	b.WriteString(`\right)`)
}
