// Package calc evaluates plain arithmetic expressions.
//
// Only numbers, parentheses and the operators + - * / // % ** are accepted;
// there are no names, calls or any other way to reach the host program.
package calc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

var (
	ErrSyntax         = errors.New("синтаксическая ошибка")
	ErrDivisionByZero = errors.New("деление на ноль")
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

// Eval parses and evaluates expr.
func Eval(expr string) (float64, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return 0, err
	}
	p := &parser{tokens: tokens}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return 0, fmt.Errorf("%w: лишний символ %q в позиции %d", ErrSyntax, t.text, t.pos+1)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("результат вне допустимого диапазона")
	}
	return v, nil
}

// Format prints integral results without a fractional part.
func Format(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func tokenize(s string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(s); {
		c := rune(s[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case unicode.IsDigit(c) || c == '.':
			start := i
			for i < len(s) && (unicode.IsDigit(rune(s[i])) || s[i] == '.' || s[i] == '_') {
				i++
			}
			// exponent: 1e3, 2.5E-4
			if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
				j := i + 1
				if j < len(s) && (s[j] == '+' || s[j] == '-') {
					j++
				}
				if j < len(s) && unicode.IsDigit(rune(s[j])) {
					i = j
					for i < len(s) && unicode.IsDigit(rune(s[i])) {
						i++
					}
				}
			}
			text := s[start:i]
			num, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: неверное число %q", ErrSyntax, text)
			}
			tokens = append(tokens, token{kind: tokNumber, text: text, num: num, pos: start})
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		case strings.HasPrefix(s[i:], "**"), strings.HasPrefix(s[i:], "//"):
			tokens = append(tokens, token{kind: tokOp, text: s[i : i+2], pos: i})
			i += 2
		case strings.ContainsRune("+-*/%", c):
			tokens = append(tokens, token{kind: tokOp, text: string(c), pos: i})
			i++
		default:
			return nil, fmt.Errorf("%w: недопустимый символ %q в позиции %d", ErrSyntax, c, i+1)
		}
	}
	return append(tokens, token{kind: tokEOF, pos: len(s)}), nil
}

// parser is a recursive descent parser with Python operator precedence:
//
//	expr  := term (("+" | "-") term)*
//	term  := unary (("*" | "/" | "//" | "%") unary)*
//	unary := ("+" | "-") unary | power
//	power := atom ("**" unary)?
//	atom  := number | "(" expr ")"
type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
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

func (p *parser) expr() (float64, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for p.isOp("+", "-") {
		op := p.next().text
		right, err := p.term()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			left += right
		} else {
			left -= right
		}
	}
	return left, nil
}

func (p *parser) term() (float64, error) {
	left, err := p.unary()
	if err != nil {
		return 0, err
	}
	for p.isOp("*", "/", "//", "%") {
		op := p.next().text
		right, err := p.unary()
		if err != nil {
			return 0, err
		}
		switch op {
		case "*":
			left *= right
		case "/":
			if right == 0 {
				return 0, ErrDivisionByZero
			}
			left /= right
		case "//":
			if right == 0 {
				return 0, ErrDivisionByZero
			}
			left = math.Floor(left / right)
		case "%":
			if right == 0 {
				return 0, ErrDivisionByZero
			}
			left = floorMod(left, right)
		}
	}
	return left, nil
}

func (p *parser) unary() (float64, error) {
	if p.isOp("+", "-") {
		op := p.next().text
		v, err := p.unary()
		if err != nil {
			return 0, err
		}
		if op == "-" {
			return -v, nil
		}
		return v, nil
	}
	return p.power()
}

func (p *parser) power() (float64, error) {
	base, err := p.atom()
	if err != nil {
		return 0, err
	}
	if p.isOp("**") {
		p.next()
		exp, err := p.unary()
		if err != nil {
			return 0, err
		}
		if base == 0 && exp < 0 {
			return 0, ErrDivisionByZero
		}
		return math.Pow(base, exp), nil
	}
	return base, nil
}

func (p *parser) atom() (float64, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return t.num, nil
	case tokLParen:
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if p.next().kind != tokRParen {
			return 0, fmt.Errorf("%w: ожидается ')'", ErrSyntax)
		}
		return v, nil
	case tokEOF:
		return 0, fmt.Errorf("%w: неожиданный конец выражения", ErrSyntax)
	}
	return 0, fmt.Errorf("%w: неожиданный символ %q в позиции %d", ErrSyntax, t.text, t.pos+1)
}

// floorMod matches Python's %, where the result takes the divisor's sign.
func floorMod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}
