// Package scimdoc provides navigation and mutation helpers over the
// dynamic document shape shared by the filter, path, patch, and projection
// engines: the same nil/bool/float64/string/[]any/map[string]any tree that
// encoding/json produces when unmarshaling into any.
package scimdoc

import "strings"

// Get resolves a dotted attribute name (e.g. "name.familyName") against doc
// and returns the value found, or nil with ok == false if any segment is
// absent or the document shape does not match.
func Get(doc any, name string) (any, bool) {
	segs := strings.Split(name, ".")
	cur := doc
	for _, seg := range segs {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, exists := m[seg]
		if !exists {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// GetCI is Get with a case-insensitive key lookup at every segment, matching SCIM's
// case-insensitive attribute name semantics (RFC 7643 §2.1).
func GetCI(doc any, name string) (any, bool) {
	segs := strings.Split(name, ".")
	cur := doc
	for _, seg := range segs {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, exists := lookupCI(m, seg)
		if !exists {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func lookupCI(m map[string]any, key string) (any, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

// Set assigns value at a dotted attribute name, creating intermediate
// objects as needed. It fails only if an intermediate segment already
// holds a non-object value.
func Set(doc map[string]any, name string, value any) bool {
	segs := strings.Split(name, ".")
	cur := doc
	for i, seg := range segs {
		if i == len(segs)-1 {
			key, ok := caseKey(cur, seg)
			if !ok {
				key = seg
			}
			cur[key] = value
			return true
		}
		key, ok := caseKey(cur, seg)
		if !ok {
			key = seg
		}
		next, exists := cur[key]
		if !exists || next == nil {
			m := map[string]any{}
			cur[key] = m
			cur = m
			continue
		}
		m, ok := next.(map[string]any)
		if !ok {
			return false
		}
		cur = m
	}
	return true
}

// Delete removes the attribute at name if present. Returns true if
// something was actually removed.
func Delete(doc map[string]any, name string) bool {
	segs := strings.Split(name, ".")
	cur := doc
	for i, seg := range segs {
		key, ok := caseKey(cur, seg)
		if !ok {
			return false
		}
		if i == len(segs)-1 {
			if _, exists := cur[key]; !exists {
				return false
			}
			delete(cur, key)
			return true
		}
		next, exists := cur[key]
		if !exists {
			return false
		}
		m, ok := next.(map[string]any)
		if !ok {
			return false
		}
		cur = m
	}
	return false
}

// caseKey finds the actual key in m matching name case-insensitively.
func caseKey(m map[string]any, name string) (string, bool) {
	if _, ok := m[name]; ok {
		return name, true
	}
	for k := range m {
		if strings.EqualFold(k, name) {
			return k, true
		}
	}
	return "", false
}

// IsEmpty reports whether v is SCIM-empty: nil, an empty array, or an empty
// string. This drives "pr" (present) semantics.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case []any:
		return len(t) == 0
	case string:
		return t == ""
	default:
		return false
	}
}

// Clone deep-copies a document tree.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = Clone(vv)
		}
		return m
	case []any:
		a := make([]any, len(t))
		for i, vv := range t {
			a[i] = Clone(vv)
		}
		return a
	default:
		return t
	}
}
