package path

import (
	"fmt"
	"strings"

	"github.com/openidx/scimcore/internal/scim/filter"
)

// InvalidPathError is returned for any deviation from the grammar in
// RFC 7644 §3.5.2: unmatched brackets, empty attribute names, missing dot
// separators, or trailing operators.
type InvalidPathError struct {
	Detail string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path: %s", e.Detail)
}

func invalidf(format string, args ...any) error {
	return &InvalidPathError{Detail: fmt.Sprintf(format, args...)}
}

// Parse parses a PATCH path expression: Root ( "[" Filter "]" )? ( "." SubName )*.
// An empty string parses to the empty Path sentinel.
func Parse(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}

	i := 0
	name, err := takeName(s, &i)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, invalidf("empty attribute name at position %d", i)
	}

	var segs Path
	if i < len(s) && s[i] == '[' {
		end, berr := matchingBracket(s, i)
		if berr != nil {
			return nil, invalidf("%v", berr)
		}
		inner := s[i+1 : end]
		if strings.TrimSpace(inner) == "" {
			return nil, invalidf("empty value-path filter at position %d", i)
		}
		expr, ferr := filter.Parse(inner)
		if ferr != nil {
			return nil, invalidf("invalid value-path filter %q: %v", inner, ferr)
		}
		segs = append(segs, IndexedAttribute{Name: name, Filter: expr})
		i = end + 1
	} else {
		segs = append(segs, Attribute{Name: name})
	}

	for i < len(s) {
		if s[i] != '.' {
			return nil, invalidf("expected '.' at position %d, got %q", i, s[i:])
		}
		i++
		sub, serr := takeName(s, &i)
		if serr != nil {
			return nil, serr
		}
		if sub == "" {
			return nil, invalidf("empty sub-attribute name at position %d", i)
		}
		segs = append(segs, SubAttribute{Name: sub})
	}

	return segs, nil
}

// String renders p back into RFC 7644 §3.5.2 wire syntax.
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	switch s := p[0].(type) {
	case Attribute:
		b.WriteString(s.Name)
	case IndexedAttribute:
		b.WriteString(s.Name)
		b.WriteByte('[')
		b.WriteString(filter.Unparse(s.Filter))
		b.WriteByte(']')
	}
	for _, sub := range p.SubNames() {
		b.WriteByte('.')
		b.WriteString(sub)
	}
	return b.String()
}

func takeName(s string, i *int) (string, error) {
	start := *i
	for *i < len(s) && isNameChar(s[*i]) {
		*i++
	}
	return s[start:*i], nil
}

func isNameChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == ':' || c == '$'
}

func matchingBracket(s string, open int) (int, error) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("unmatched '[' at position %d", open)
}
