// Package query decodes the SCIM list/search query parameters
// (filter, attributes, excludedAttributes, sortBy, sortOrder, startIndex,
// count) into a structured Query.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openidx/scimcore/internal/scim/filter"
)

// TooManyError reports that a caller explicitly requested a page size
// larger than the server's maxResults limit (RFC 7644 §3.4.2, scimType
// "tooMany"). It is the only flow-control signal Parse emits for an
// oversized count; an omitted count that would otherwise default above
// maxResults is clamped instead, since the caller never asked for it.
type TooManyError struct {
	Requested  int
	MaxResults int
}

func (e *TooManyError) Error() string {
	return fmt.Sprintf("too many results requested: count %d exceeds maxResults %d", e.Requested, e.MaxResults)
}

// Limits bounds page sizes accepted by Parse.
type Limits struct {
	MaxResults      int
	DefaultPageSize int
}

// Query is the decoded form of a SCIM list/search request.
type Query struct {
	Filter             filter.Expr
	Attributes         []string
	ExcludedAttributes []string
	SortBy             string
	SortOrder          string // "ascending" or "descending"
	StartIndex         int
	Count              int
}

// Offset is the zero-based equivalent of StartIndex.
func (q *Query) Offset() int {
	return q.StartIndex - 1
}

// Parse decodes values (a flat string->[]string map, as produced by both
// URL query decoding and a JSON .search request body) into a Query,
// clamping startIndex and count to limits. An explicit count above
// MaxResults is not clamped: it yields a *TooManyError.
func Parse(values map[string][]string, limits Limits) (*Query, error) {
	q := &Query{SortOrder: "ascending"}

	if fs := first(values, "filter"); fs != "" {
		expr, err := filter.Parse(fs)
		if err != nil {
			return nil, err
		}
		q.Filter = expr
	} else {
		q.Filter = filter.Empty{}
	}

	attrs := splitTrim(first(values, "attributes"))
	excl := splitTrim(first(values, "excludedAttributes"))
	if len(attrs) > 0 {
		// attributes and excludedAttributes are mutually exclusive;
		// attributes wins when both are present.
		excl = nil
	}
	q.Attributes = attrs
	q.ExcludedAttributes = excl

	q.SortBy = first(values, "sortBy")
	if strings.ToLower(first(values, "sortOrder")) == "descending" {
		q.SortOrder = "descending"
	}

	startIndex := atoiDefault(first(values, "startIndex"), 1)
	if startIndex < 1 {
		startIndex = 1
	}
	q.StartIndex = startIndex

	defaultCount := limits.DefaultPageSize
	if defaultCount <= 0 {
		defaultCount = 1
	}
	rawCount := first(values, "count")
	count := atoiDefault(rawCount, defaultCount)
	if count < 1 {
		count = 1
	}
	if limits.MaxResults > 0 && count > limits.MaxResults {
		if rawCount != "" {
			return nil, &TooManyError{Requested: count, MaxResults: limits.MaxResults}
		}
		count = limits.MaxResults
	}
	q.Count = count

	return q, nil
}

func first(values map[string][]string, key string) string {
	for k, v := range values {
		if strings.EqualFold(k, key) && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func splitTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
