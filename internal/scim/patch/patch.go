// Package patch implements the RFC 7644 §3.5.2 PATCH operation semantics
// against the dynamic document shape from package scimdoc, generalized
// across any resource type rather than hard-coded to one.
package patch

import (
	"strings"

	"github.com/openidx/scimcore/internal/scim/filter"
	"github.com/openidx/scimcore/internal/scim/path"
	"github.com/openidx/scimcore/internal/scim/scimdoc"
)

// Operation is one element of a PATCH request's Operations array.
type Operation struct {
	Op    string `json:"op"`
	Path  string `json:"path,omitempty"`
	Value any    `json:"value,omitempty"`
}

// Apply executes ops against doc in order; each operation sees the document
// produced by the previous one. The empty operation list is the identity.
func Apply(doc map[string]any, ops []Operation) error {
	for _, op := range ops {
		if err := applyOne(doc, op); err != nil {
			return err
		}
	}
	return nil
}

func applyOne(doc map[string]any, op Operation) error {
	switch strings.ToLower(op.Op) {
	case "add":
		return applyAdd(doc, op)
	case "remove":
		return applyRemove(doc, op)
	case "replace":
		return applyReplace(doc, op)
	default:
		return &InvalidValueError{Detail: "unknown op " + op.Op}
	}
}

func applyAdd(doc map[string]any, op Operation) error {
	if op.Path == "" {
		obj, ok := op.Value.(map[string]any)
		if !ok {
			return &InvalidValueError{Detail: "add without a path requires an object value"}
		}
		mergeConcat(doc, obj)
		return nil
	}
	if op.Value == nil {
		return &InvalidValueError{Detail: "add requires a value"}
	}
	p, err := path.Parse(op.Path)
	if err != nil {
		return err
	}
	return addAtPath(doc, p, op.Value)
}

func applyRemove(doc map[string]any, op Operation) error {
	if op.Path == "" {
		return &NoTargetError{Detail: "remove requires a path"}
	}
	p, err := path.Parse(op.Path)
	if err != nil {
		return err
	}
	return removeAtPath(doc, p)
}

func applyReplace(doc map[string]any, op Operation) error {
	if op.Path == "" {
		obj, ok := op.Value.(map[string]any)
		if !ok {
			return &InvalidValueError{Detail: "replace without a path requires an object value"}
		}
		for k, v := range obj {
			setCI(doc, k, v)
		}
		return nil
	}
	if op.Value == nil {
		return &InvalidValueError{Detail: "replace requires a value"}
	}
	p, err := path.Parse(op.Path)
	if err != nil {
		return err
	}
	return replaceAtPath(doc, p, op.Value)
}

func addAtPath(doc map[string]any, p path.Path, value any) error {
	root := p.Root()
	subs := p.SubNames()
	filterExpr, indexed := p.IndexFilter()

	if !indexed {
		names := append([]string{root}, subs...)
		return setNestedAdd(doc, names, value)
	}

	arr := getArray(doc, root)
	matched := matchIndices(arr, filterExpr)
	if len(matched) == 0 {
		// No target to append to; consistent with the lenient no-op
		// interpretation applied elsewhere for indexed operations with
		// no matching elements.
		return nil
	}
	if len(subs) == 0 {
		obj, ok := value.(map[string]any)
		if !ok {
			return &InvalidValueError{Detail: "add on an indexed path requires an object value"}
		}
		for _, idx := range matched {
			if m, ok := arr[idx].(map[string]any); ok {
				mergeConcat(m, obj)
			}
		}
		setCI(doc, root, arr)
		return nil
	}
	for _, idx := range matched {
		if m, ok := arr[idx].(map[string]any); ok {
			if err := setNestedAdd(m, subs, value); err != nil {
				return err
			}
		}
	}
	setCI(doc, root, arr)
	return nil
}

func removeAtPath(doc map[string]any, p path.Path) error {
	root := p.Root()
	subs := p.SubNames()
	filterExpr, indexed := p.IndexFilter()

	if !indexed {
		if len(subs) == 0 {
			scimdoc.Delete(doc, root)
			return nil
		}
		scimdoc.Delete(doc, root+"."+strings.Join(subs, "."))
		return nil
	}

	arr := getArray(doc, root)
	if arr == nil {
		return nil
	}
	matched := matchIndices(arr, filterExpr)
	if len(matched) == 0 {
		// Indexed remove with no matches is a lenient no-op.
		return nil
	}
	if len(subs) == 0 {
		isMatch := make(map[int]bool, len(matched))
		for _, i := range matched {
			isMatch[i] = true
		}
		kept := make([]any, 0, len(arr))
		for i, e := range arr {
			if !isMatch[i] {
				kept = append(kept, e)
			}
		}
		setCI(doc, root, kept)
		return nil
	}
	full := strings.Join(subs, ".")
	for _, idx := range matched {
		if m, ok := arr[idx].(map[string]any); ok {
			scimdoc.Delete(m, full)
		}
	}
	setCI(doc, root, arr)
	return nil
}

func replaceAtPath(doc map[string]any, p path.Path, value any) error {
	root := p.Root()
	subs := p.SubNames()
	filterExpr, indexed := p.IndexFilter()

	if !indexed {
		names := append([]string{root}, subs...)
		return setNestedReplace(doc, names, value)
	}

	arr := getArray(doc, root)
	matched := matchIndices(arr, filterExpr)

	if len(subs) == 0 {
		obj, ok := value.(map[string]any)
		if !ok {
			return &InvalidValueError{Detail: "replace on an indexed path requires an object value"}
		}
		if len(matched) == 0 {
			newElem := map[string]any{}
			for k, v := range obj {
				newElem[k] = v
			}
			arr = append(arr, newElem)
		} else {
			for _, idx := range matched {
				if m, ok := arr[idx].(map[string]any); ok {
					for k, v := range obj {
						setCI(m, k, v)
					}
				}
			}
		}
		setCI(doc, root, arr)
		return nil
	}

	if len(matched) == 0 {
		newElem := map[string]any{}
		if err := setNestedReplace(newElem, subs, value); err != nil {
			return err
		}
		arr = append(arr, newElem)
		setCI(doc, root, arr)
		return nil
	}
	for _, idx := range matched {
		if m, ok := arr[idx].(map[string]any); ok {
			if err := setNestedReplace(m, subs, value); err != nil {
				return err
			}
		}
	}
	setCI(doc, root, arr)
	return nil
}

func setNestedAdd(obj map[string]any, names []string, value any) error {
	if len(names) == 1 {
		return addPlain(obj, names[0], value)
	}
	nm := nestedContainer(obj, names[0])
	return setNestedAdd(nm, names[1:], value)
}

func setNestedReplace(obj map[string]any, names []string, value any) error {
	if len(names) == 1 {
		setCI(obj, names[0], value)
		return nil
	}
	nm := nestedContainer(obj, names[0])
	return setNestedReplace(nm, names[1:], value)
}

func nestedContainer(obj map[string]any, name string) map[string]any {
	next, ok := scimdoc.GetCI(obj, name)
	if ok {
		if nm, ok := next.(map[string]any); ok {
			return nm
		}
	}
	nm := map[string]any{}
	setCI(obj, name, nm)
	return nm
}

func addPlain(obj map[string]any, name string, value any) error {
	existing, ok := scimdoc.GetCI(obj, name)
	if ok {
		if earr, eok := existing.([]any); eok {
			if varr, vok := value.([]any); vok {
				setCI(obj, name, append(append([]any{}, earr...), varr...))
			} else {
				setCI(obj, name, append(append([]any{}, earr...), value))
			}
			return nil
		}
	}
	setCI(obj, name, value)
	return nil
}

// mergeConcat merges src into dst: array-valued keys present on both sides
// concatenate; everything else overwrites.
func mergeConcat(dst, src map[string]any) {
	for k, v := range src {
		if existing, ok := dst[k]; ok {
			if earr, eok := existing.([]any); eok {
				if varr, vok := v.([]any); vok {
					dst[k] = append(append([]any{}, earr...), varr...)
					continue
				}
			}
		}
		dst[k] = v
	}
}

func getArray(doc map[string]any, name string) []any {
	v, ok := scimdoc.GetCI(doc, name)
	if !ok {
		return nil
	}
	arr, _ := v.([]any)
	return arr
}

func matchIndices(arr []any, expr filter.Expr) []int {
	var out []int
	for i, e := range arr {
		if filter.Eval(expr, e) {
			out = append(out, i)
		}
	}
	return out
}

func setCI(obj map[string]any, name string, value any) {
	for k := range obj {
		if strings.EqualFold(k, name) {
			obj[k] = value
			return
		}
	}
	obj[name] = value
}
