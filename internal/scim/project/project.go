// Package project implements SCIM's attribute-projection rules
// (RFC 7644 §3.9): the attributes/excludedAttributes query parameters.
package project

import (
	"strings"

	"github.com/openidx/scimcore/internal/scim/scimdoc"
)

// includeProtected attributes are always carried by inclusion, per
// RFC 7644 §3.9 — meta is returned by default, but is not exempt from
// excludedAttributes.
var includeProtected = map[string]bool{"schemas": true, "id": true, "meta": true}

// excludeProtected attributes can never be removed by exclusion.
var excludeProtected = map[string]bool{"schemas": true, "id": true}

// Selector projects a document according to an include list or an exclude
// list. Include takes precedence when both are supplied.
type Selector struct {
	include []string
	exclude []string
}

// New builds a Selector from the attributes and excludedAttributes query
// parameters. Each entry is trimmed; empty entries are dropped.
func New(include, exclude []string) *Selector {
	return &Selector{include: clean(include), exclude: clean(exclude)}
}

func clean(in []string) []string {
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Project applies the selector to doc, returning a new document. A
// Selector with neither list set returns an unmodified deep copy.
func (s *Selector) Project(doc map[string]any) map[string]any {
	if s == nil {
		return scimdoc.Clone(doc).(map[string]any)
	}
	if len(s.include) > 0 {
		return s.includeProject(doc)
	}
	if len(s.exclude) > 0 {
		return s.excludeProject(doc)
	}
	return scimdoc.Clone(doc).(map[string]any)
}

func (s *Selector) includeProject(doc map[string]any) map[string]any {
	out := map[string]any{}
	for name := range includeProtected {
		if v, ok := doc[name]; ok {
			out[name] = scimdoc.Clone(v)
		}
	}

	groups := groupByRoot(s.include)
	for root, subs := range groups {
		v, ok := scimdoc.GetCI(doc, root)
		if !ok {
			continue
		}
		if isFullInclude(subs) {
			out[root] = scimdoc.Clone(v)
			continue
		}
		out[root] = projectInclude(v, subs)
	}
	return out
}

func (s *Selector) excludeProject(doc map[string]any) map[string]any {
	out := scimdoc.Clone(doc).(map[string]any)
	for _, p := range s.exclude {
		root := strings.SplitN(p, ".", 2)[0]
		if excludeProtected[root] {
			continue
		}
		deleteDotted(out, p)
	}
	return out
}

// groupByRoot buckets dotted paths by their first segment; "" in the bucket
// marks that the whole root attribute is requested verbatim.
func groupByRoot(paths []string) map[string][]string {
	groups := map[string][]string{}
	for _, p := range paths {
		parts := strings.SplitN(p, ".", 2)
		root := parts[0]
		if len(parts) == 1 {
			groups[root] = append(groups[root], "")
		} else {
			groups[root] = append(groups[root], parts[1])
		}
	}
	return groups
}

func isFullInclude(subs []string) bool {
	for _, s := range subs {
		if s == "" {
			return true
		}
	}
	return false
}

func projectInclude(v any, subs []string) any {
	switch t := v.(type) {
	case map[string]any:
		out := map[string]any{}
		groups := groupByRoot(subs)
		for root, nested := range groups {
			nv, ok := scimdoc.GetCI(t, root)
			if !ok {
				continue
			}
			if isFullInclude(nested) {
				out[root] = scimdoc.Clone(nv)
			} else {
				out[root] = projectInclude(nv, nested)
			}
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, elem := range t {
			out = append(out, projectInclude(elem, subs))
		}
		return out
	default:
		return v
	}
}

func deleteDotted(doc map[string]any, dotted string) {
	parts := strings.SplitN(dotted, ".", 2)
	key, ok := caseKey(doc, parts[0])
	if !ok {
		return
	}
	if len(parts) == 1 {
		delete(doc, key)
		return
	}
	switch t := doc[key].(type) {
	case map[string]any:
		deleteDotted(t, parts[1])
	case []any:
		for _, elem := range t {
			if m, ok := elem.(map[string]any); ok {
				deleteDotted(m, parts[1])
			}
		}
	}
}

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
