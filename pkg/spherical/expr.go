package spherical

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"surfacesfetus/internal/models"
)

// Func is a scalar function of the polar angle theta and the azimuth phi.
// Implementations must be safe for concurrent use.
type Func interface {
	Eval(theta, phi float64) float64
}

// FuncOf adapts an ordinary Go function to Func
type FuncOf func(theta, phi float64) float64

// Eval calls f
func (f FuncOf) Eval(theta, phi float64) float64 { return f(theta, phi) }

// Constant returns a Func that always evaluates to v
func Constant(v float64) Func { return constant(v) }

type constant float64

func (c constant) Eval(_, _ float64) float64 { return float64(c) }

type variable int

const (
	thetaVar variable = iota
	phiVar
)

func (v variable) Eval(theta, phi float64) float64 {
	if v == thetaVar {
		return theta
	}
	return phi
}

type negate struct{ x Func }

func (n negate) Eval(theta, phi float64) float64 { return -n.x.Eval(theta, phi) }

type binary struct {
	op   byte
	x, y Func
}

func (b binary) Eval(theta, phi float64) float64 {
	x, y := b.x.Eval(theta, phi), b.y.Eval(theta, phi)
	switch b.op {
	case '+':
		return x + y
	case '-':
		return x - y
	case '*':
		return x * y
	case '/':
		return x / y
	default:
		return math.Pow(x, y)
	}
}

type call1 struct {
	f   func(float64) float64
	arg Func
}

func (c call1) Eval(theta, phi float64) float64 { return c.f(c.arg.Eval(theta, phi)) }

type call2 struct {
	f    func(float64, float64) float64
	a, b Func
}

func (c call2) Eval(theta, phi float64) float64 {
	return c.f(c.a.Eval(theta, phi), c.b.Eval(theta, phi))
}

var constants = map[string]float64{
	"pi":  math.Pi,
	"e":   math.E,
	"tau": 2 * math.Pi,
}

var functions1 = map[string]func(float64) float64{
	"sin":     math.Sin,
	"cos":     math.Cos,
	"tan":     math.Tan,
	"asin":    math.Asin,
	"acos":    math.Acos,
	"atan":    math.Atan,
	"sinh":    math.Sinh,
	"cosh":    math.Cosh,
	"tanh":    math.Tanh,
	"sqrt":    math.Sqrt,
	"exp":     math.Exp,
	"log":     math.Log,
	"log2":    math.Log2,
	"log10":   math.Log10,
	"abs":     math.Abs,
	"fabs":    math.Abs,
	"floor":   math.Floor,
	"ceil":    math.Ceil,
	"degrees": func(x float64) float64 { return x * 180 / math.Pi },
	"radians": func(x float64) float64 { return x * math.Pi / 180 },
}

var functions2 = map[string]func(float64, float64) float64{
	"atan2": math.Atan2,
	"pow":   math.Pow,
	"hypot": math.Hypot,
	"min":   math.Min,
	"max":   math.Max,
	"log":   func(x, base float64) float64 { return math.Log(x) / math.Log(base) },
}

// Parse compiles an arithmetic expression over theta and phi.
//
// The grammar accepts numbers, the variables theta and phi, the constants
// pi, e and tau, the operators + - * / and ^ (or **, right associative),
// parentheses and calls to the usual math functions (sin, cos, sqrt, atan2,
// pow, log, ...).
func Parse(src string) (Func, error) {
	p := &parser{src: src}
	if err := p.lex(); err != nil {
		return nil, err
	}
	f, err := p.expr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.errorf(tok, "unexpected %q", tok.text)
	}
	return f, nil
}

// MustParse is like Parse but panics on error
func MustParse(src string) Func {
	f, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return f
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp
)

type token struct {
	kind tokenKind
	text string
	pos  int
	num  float64
}

type parser struct {
	src    string
	tokens []token
	i      int
}

func (p *parser) errorf(tok token, format string, args ...interface{}) error {
	return models.NewError(models.ErrFormat, "parse expression", tok.pos, math.NaN(),
		fmt.Sprintf("%s in %q", fmt.Sprintf(format, args...), p.src))
}

func (p *parser) lex() error {
	s := p.src
	for i := 0; i < len(s); {
		c := rune(s[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case unicode.IsDigit(c) || c == '.':
			j := i
			for j < len(s) && (isDigit(s[j]) || s[j] == '.') {
				j++
			}
			if j < len(s) && (s[j] == 'e' || s[j] == 'E') {
				k := j + 1
				if k < len(s) && (s[k] == '+' || s[k] == '-') {
					k++
				}
				if k < len(s) && isDigit(s[k]) {
					for k < len(s) && isDigit(s[k]) {
						k++
					}
					j = k
				}
			}
			v, err := strconv.ParseFloat(s[i:j], 64)
			if err != nil {
				return p.errorf(token{pos: i}, "invalid number %q", s[i:j])
			}
			p.tokens = append(p.tokens, token{kind: tokNumber, text: s[i:j], pos: i, num: v})
			i = j
		case unicode.IsLetter(c) || c == '_':
			j := i
			for j < len(s) && (isDigit(s[j]) || s[j] == '_' || unicode.IsLetter(rune(s[j]))) {
				j++
			}
			p.tokens = append(p.tokens, token{kind: tokIdent, text: s[i:j], pos: i})
			i = j
		case strings.HasPrefix(s[i:], "**"):
			p.tokens = append(p.tokens, token{kind: tokOp, text: "^", pos: i})
			i += 2
		case strings.ContainsRune("+-*/^(),", c):
			p.tokens = append(p.tokens, token{kind: tokOp, text: string(c), pos: i})
			i++
		default:
			return p.errorf(token{pos: i}, "unexpected character %q", c)
		}
	}
	p.tokens = append(p.tokens, token{kind: tokEOF, pos: len(s)})
	return nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func (p *parser) peek() token { return p.tokens[p.i] }

func (p *parser) next() token {
	tok := p.tokens[p.i]
	if tok.kind != tokEOF {
		p.i++
	}
	return tok
}

func (p *parser) accept(op string) bool {
	if tok := p.peek(); tok.kind == tokOp && tok.text == op {
		p.i++
		return true
	}
	return false
}

func (p *parser) expect(op string) error {
	if !p.accept(op) {
		tok := p.peek()
		if tok.kind == tokEOF {
			return p.errorf(tok, "expected %q at end of expression", op)
		}
		return p.errorf(tok, "expected %q, found %q", op, tok.text)
	}
	return nil
}

// expr := term { ("+" | "-") term }
func (p *parser) expr() (Func, error) {
	x, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		var op byte
		switch {
		case p.accept("+"):
			op = '+'
		case p.accept("-"):
			op = '-'
		default:
			return x, nil
		}
		y, err := p.term()
		if err != nil {
			return nil, err
		}
		x = binary{op: op, x: x, y: y}
	}
}

// term := unary { ("*" | "/") unary }
func (p *parser) term() (Func, error) {
	x, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		var op byte
		switch {
		case p.accept("*"):
			op = '*'
		case p.accept("/"):
			op = '/'
		default:
			return x, nil
		}
		y, err := p.unary()
		if err != nil {
			return nil, err
		}
		x = binary{op: op, x: x, y: y}
	}
}

// unary := ("-" | "+") unary | power
func (p *parser) unary() (Func, error) {
	switch {
	case p.accept("-"):
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return negate{x}, nil
	case p.accept("+"):
		return p.unary()
	}
	return p.power()
}

// power := primary [ "^" unary ]
func (p *parser) power() (Func, error) {
	x, err := p.primary()
	if err != nil {
		return nil, err
	}
	if p.accept("^") {
		y, err := p.unary()
		if err != nil {
			return nil, err
		}
		return binary{op: '^', x: x, y: y}, nil
	}
	return x, nil
}

// primary := number | name | name "(" args ")" | "(" expr ")"
func (p *parser) primary() (Func, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		return constant(tok.num), nil
	case tokIdent:
		if p.accept("(") {
			return p.call(tok)
		}
		switch tok.text {
		case "theta":
			return thetaVar, nil
		case "phi":
			return phiVar, nil
		}
		if v, ok := constants[tok.text]; ok {
			return constant(v), nil
		}
		return nil, p.errorf(tok, "unknown name %q", tok.text)
	case tokOp:
		if tok.text == "(" {
			x, err := p.expr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return x, nil
		}
		return nil, p.errorf(tok, "unexpected %q", tok.text)
	default:
		return nil, p.errorf(tok, "unexpected end of expression")
	}
}

func (p *parser) call(name token) (Func, error) {
	var args []Func
	if !p.accept(")") {
		for {
			arg, err := p.expr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.accept(")") {
				break
			}
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
	}

	switch len(args) {
	case 1:
		if f, ok := functions1[name.text]; ok {
			return call1{f: f, arg: args[0]}, nil
		}
	case 2:
		if f, ok := functions2[name.text]; ok {
			return call2{f: f, a: args[0], b: args[1]}, nil
		}
	}
	if _, ok := functions1[name.text]; ok {
		return nil, p.errorf(name, "%s takes 1 argument, got %d", name.text, len(args))
	}
	if _, ok := functions2[name.text]; ok {
		return nil, p.errorf(name, "%s takes 2 arguments, got %d", name.text, len(args))
	}
	return nil, p.errorf(name, "unknown function %q", name.text)
}
