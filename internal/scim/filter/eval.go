package filter

import (
	"strconv"
	"strings"

	"github.com/openidx/scimcore/internal/scim/scimdoc"
)

// Eval evaluates e against doc and reports whether doc matches. It never
// fails for a well-formed AST: structural mismatches simply evaluate false.
func Eval(e Expr, doc any) bool {
	switch t := e.(type) {
	case Empty:
		return true
	case Group:
		return Eval(t.X, doc)
	case Not:
		return !Eval(t.X, doc)
	case And:
		return Eval(t.Left, doc) && Eval(t.Right, doc)
	case Or:
		return Eval(t.Left, doc) || Eval(t.Right, doc)
	case Present:
		vals, err := resolve(t.Path, doc)
		if err != nil {
			return false
		}
		for _, v := range vals {
			if !scimdoc.IsEmpty(v) {
				return true
			}
		}
		return false
	case Attr:
		vals, err := resolve(t.Path, doc)
		if err != nil {
			return false
		}
		for _, v := range vals {
			if compareOne(t.Op, v, t.Literal) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// resolve returns the set of candidate values reachable via path, per the
// existential-quantifier semantics of §4.2: arrays contribute one candidate
// per matching element, and multi-valued complex attributes resolved at the
// complex level (not a sub-attribute) contribute their "value" member.
func resolve(path string, doc any) ([]any, error) {
	name, innerSrc, hasInner, rest, err := splitAttrPath(path)
	if err != nil {
		return nil, err
	}
	v0, _ := scimdoc.GetCI(doc, name)

	if !hasInner {
		return navigate(v0, rest), nil
	}

	arr, _ := v0.([]any)
	inner, err := Parse(innerSrc)
	if err != nil {
		return nil, err
	}
	var out []any
	for _, elem := range arr {
		if Eval(inner, elem) {
			out = append(out, navigate(elem, rest)...)
		}
	}
	return out, nil
}

// splitAttrPath decomposes an AttrPath string (as produced by the parser)
// into its leading Name, an optional bracketed inner filter source, and the
// remaining dotted sub-attribute segments.
func splitAttrPath(path string) (name, innerSrc string, hasInner bool, rest []string, err error) {
	i := 0
	for i < len(path) && isNameChar(path[i]) {
		i++
	}
	name = path[:i]
	if i < len(path) && path[i] == '[' {
		end, berr := matchingBracket(path, i)
		if berr != nil {
			return "", "", false, nil, berr
		}
		innerSrc = path[i+1 : end]
		hasInner = true
		i = end + 1
	}
	if i < len(path) && path[i] == '.' {
		rest = strings.Split(path[i+1:], ".")
	}
	return name, innerSrc, hasInner, rest, nil
}

func navigate(v any, restSegs []string) []any {
	if len(restSegs) == 0 {
		return expandLeaf(v)
	}
	switch t := v.(type) {
	case []any:
		var out []any
		for _, elem := range t {
			out = append(out, navigate(elem, restSegs)...)
		}
		return out
	case map[string]any:
		nv, ok := scimdoc.GetCI(t, restSegs[0])
		if !ok {
			return []any{nil}
		}
		return navigate(nv, restSegs[1:])
	default:
		return []any{nil}
	}
}

// expandLeaf descends multi-valued complex attributes into their "value"
// member when the path stops at the complex attribute itself.
func expandLeaf(v any) []any {
	arr, ok := v.([]any)
	if !ok {
		return []any{v}
	}
	out := make([]any, 0, len(arr))
	for _, elem := range arr {
		if m, ok := elem.(map[string]any); ok {
			if vv, ok2 := m["value"]; ok2 {
				out = append(out, vv)
				continue
			}
		}
		out = append(out, elem)
	}
	return out
}

func compareOne(op Op, val, lit any) bool {
	switch op {
	case Eq:
		return equalsLoose(val, lit)
	case Ne:
		return !equalsLoose(val, lit)
	case Co, Sw, Ew:
		vs, vok := toStr(val)
		ls, lok := toStr(lit)
		if !vok || !lok {
			return false
		}
		vs, ls = strings.ToLower(vs), strings.ToLower(ls)
		switch op {
		case Co:
			return strings.Contains(vs, ls)
		case Sw:
			return strings.HasPrefix(vs, ls)
		default:
			return strings.HasSuffix(vs, ls)
		}
	case Gt, Ge, Lt, Le:
		vf, vok := toFloat(val)
		lf, lok := toFloat(lit)
		if !vok || !lok {
			return false
		}
		switch op {
		case Gt:
			return vf > lf
		case Ge:
			return vf >= lf
		case Lt:
			return vf < lf
		default:
			return vf <= lf
		}
	default:
		return false
	}
}

func equalsLoose(val, lit any) bool {
	if val == nil && lit == nil {
		return true
	}
	vs, vok := toStr(val)
	ls, lok := toStr(lit)
	if vok && lok {
		return strings.EqualFold(vs, ls)
	}
	return false
}

func toStr(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		if t {
			return "true", true
		}
		return "false", true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
