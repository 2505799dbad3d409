package filter

import (
	"encoding/json"
	"strconv"
)

// Unparse renders e back into filter syntax. parse(unparse(a)) reproduces a
// modulo Group wrappers: a logical operand that Parse would otherwise
// regroup by precedence or associativity is wrapped in parentheses, which
// parse back as a Group that evaluation treats transparently.
func Unparse(e Expr) string {
	paren := func(x Expr, wrapOr, wrapAnd bool) string {
		_, isOr := x.(Or)
		_, isAnd := x.(And)
		if (wrapOr && isOr) || (wrapAnd && isAnd) {
			return "(" + Unparse(x) + ")"
		}
		return Unparse(x)
	}
	switch t := e.(type) {
	case Empty:
		return ""
	case Attr:
		return t.Path + " " + string(t.Op) + " " + literalString(t.Literal)
	case Present:
		return t.Path + " pr"
	case And:
		return paren(t.Left, true, false) + " and " + paren(t.Right, true, true)
	case Or:
		return Unparse(t.Left) + " or " + paren(t.Right, true, false)
	case Not:
		return "not " + paren(t.X, true, true)
	case Group:
		return "(" + Unparse(t.X) + ")"
	default:
		return ""
	}
}

func literalString(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case string:
		b, _ := json.Marshal(t)
		return string(b)
	default:
		return "null"
	}
}
