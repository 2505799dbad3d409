package filter

import "fmt"

// InvalidFilterError is returned for any deviation from the grammar in
// RFC 7644 §3.4.2.2.
type InvalidFilterError struct {
	Detail string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid filter: %s", e.Detail)
}

func invalidf(format string, args ...any) error {
	return &InvalidFilterError{Detail: fmt.Sprintf(format, args...)}
}
