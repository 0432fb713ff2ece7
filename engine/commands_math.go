package engine

import (
	"fmt"
	"strconv"
	"strings"
)

func handleMath(ctx *Context, node *Node, args []string) error {
	if len(args) < 3 || !strings.EqualFold(args[0], "EXPR") {
		ctx.Diag(inputError(ctx, node, "math", "math(EXPR outvar expression) requires an output variable and expression"))
		return nil
	}
	outVar := args[1]
	expr := strings.Join(args[2:], " ")
	value, err := evalMathExpr(expr)
	if err != nil {
		ctx.Diag(inputError(ctx, node, "math", "invalid expression: "+err.Error()))
		return nil
	}
	ctx.Env.Set(outVar, strconv.FormatInt(value, 10))
	return nil
}

// evalMathExpr evaluates a restricted arithmetic expression with +, -, *, /,
// %, and parentheses over int64 operands, matching math(EXPR)'s integer
// subset (spec.md table §2 row 10 lists math among the command handlers; no
// floating-point form is specified).
func evalMathExpr(expr string) (int64, error) {
	toks, err := tokenizeMathExpr(expr)
	if err != nil {
		return 0, err
	}
	p := &mathParser{toks: toks}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.toks) {
		return 0, fmt.Errorf("unexpected token %q", p.toks[p.pos])
	}
	return v, nil
}

func tokenizeMathExpr(expr string) ([]string, error) {
	var toks []string
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '+' || c == '-' || c == '*' || c == '/' || c == '%' || c == '(' || c == ')':
			toks = append(toks, string(c))
			i++
		case c >= '0' && c <= '9':
			j := i
			for j < len(expr) && expr[j] >= '0' && expr[j] <= '9' {
				j++
			}
			toks = append(toks, expr[i:j])
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q", c)
		}
	}
	return toks, nil
}

type mathParser struct {
	toks []string
	pos  int
}

func (p *mathParser) peek() string {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return ""
}

func (p *mathParser) parseExpr() (int64, error) {
	v, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for p.peek() == "+" || p.peek() == "-" {
		op := p.toks[p.pos]
		p.pos++
		rhs, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			v += rhs
		} else {
			v -= rhs
		}
	}
	return v, nil
}

func (p *mathParser) parseTerm() (int64, error) {
	v, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for p.peek() == "*" || p.peek() == "/" || p.peek() == "%" {
		op := p.toks[p.pos]
		p.pos++
		rhs, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		switch op {
		case "*":
			v *= rhs
		case "/":
			if rhs == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			v /= rhs
		case "%":
			if rhs == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			v %= rhs
		}
	}
	return v, nil
}

func (p *mathParser) parseFactor() (int64, error) {
	if p.peek() == "-" {
		p.pos++
		v, err := p.parseFactor()
		return -v, err
	}
	if p.peek() == "(" {
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ")" {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	}
	tok := p.peek()
	if tok == "" {
		return 0, fmt.Errorf("unexpected end of expression")
	}
	v, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, err
	}
	p.pos++
	return v, nil
}
