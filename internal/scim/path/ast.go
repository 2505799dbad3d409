// Package path implements the RFC 7644 §3.5.2 attribute path language used
// by PATCH operations and, in their bracketed form, by value-path filters.
package path

import "github.com/openidx/scimcore/internal/scim/filter"

// Segment is one element of a parsed path. The set of implementations is
// closed: Attribute, IndexedAttribute, SubAttribute.
type Segment interface {
	segmentNode()
}

// Attribute is a plain name, appearing at the root or as a sub-attribute.
type Attribute struct {
	Name string
}

// IndexedAttribute is a root attribute scoped by a value-path filter, e.g.
// the "members[value eq \"u1\"]" in "members[value eq \"u1\"].display".
type IndexedAttribute struct {
	Name   string
	Filter filter.Expr
}

// SubAttribute is a dotted continuation after the root segment.
type SubAttribute struct {
	Name string
}

func (Attribute) segmentNode()        {}
func (IndexedAttribute) segmentNode() {}
func (SubAttribute) segmentNode()     {}

// Path is an ordered sequence of segments. Exactly one IndexedAttribute or
// Attribute appears at index 0; every later segment is a SubAttribute.
type Path []Segment

// Root reports the root segment name, regardless of whether it is plain or
// indexed.
func (p Path) Root() string {
	if len(p) == 0 {
		return ""
	}
	switch s := p[0].(type) {
	case Attribute:
		return s.Name
	case IndexedAttribute:
		return s.Name
	default:
		return ""
	}
}

// SubNames returns the dotted sub-attribute names following the root,
// joined form, e.g. ["familyName"] for "name.familyName".
func (p Path) SubNames() []string {
	if len(p) <= 1 {
		return nil
	}
	names := make([]string, 0, len(p)-1)
	for _, s := range p[1:] {
		if sa, ok := s.(SubAttribute); ok {
			names = append(names, sa.Name)
		}
	}
	return names
}

// IndexFilter returns the root's scoping filter and true if the root is an
// IndexedAttribute.
func (p Path) IndexFilter() (filter.Expr, bool) {
	if len(p) == 0 {
		return nil, false
	}
	if ia, ok := p[0].(IndexedAttribute); ok {
		return ia.Filter, true
	}
	return nil, false
}

// IsEmpty reports whether p is the sentinel empty path (never valid as a
// PATCH operation path).
func (p Path) IsEmpty() bool {
	return len(p) == 0
}
