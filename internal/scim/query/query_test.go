package query

import "testing"

func TestParse_Defaults(t *testing.T) {
	q, err := Parse(map[string][]string{}, Limits{MaxResults: 100, DefaultPageSize: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.StartIndex != 1 {
		t.Fatalf("expected default startIndex 1, got %d", q.StartIndex)
	}
	if q.Count != 20 {
		t.Fatalf("expected default count 20, got %d", q.Count)
	}
	if q.SortOrder != "ascending" {
		t.Fatalf("expected default sortOrder ascending, got %q", q.SortOrder)
	}
}

func TestParse_ExplicitCountOverMaxResultsIsTooMany(t *testing.T) {
	_, err := Parse(map[string][]string{"count": {"500"}}, Limits{MaxResults: 100, DefaultPageSize: 20})
	if err == nil {
		t.Fatalf("expected a tooMany error when the caller explicitly requests more than maxResults")
	}
	if _, ok := err.(*TooManyError); !ok {
		t.Fatalf("expected *TooManyError, got %T: %v", err, err)
	}
}

func TestParse_DefaultPageSizeOverMaxResultsIsClamped(t *testing.T) {
	q, err := Parse(map[string][]string{}, Limits{MaxResults: 100, DefaultPageSize: 500})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Count != 100 {
		t.Fatalf("expected an unrequested default count to be clamped to 100, got %d", q.Count)
	}
}

func TestParse_StartIndexClampedToOne(t *testing.T) {
	q, err := Parse(map[string][]string{"startIndex": {"-5"}}, Limits{MaxResults: 100, DefaultPageSize: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.StartIndex != 1 {
		t.Fatalf("expected startIndex clamped to 1, got %d", q.StartIndex)
	}
}

func TestParse_AttributesWinsOverExcluded(t *testing.T) {
	q, err := Parse(map[string][]string{
		"attributes":         {"userName, active"},
		"excludedAttributes": {"password"},
	}, Limits{MaxResults: 100, DefaultPageSize: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.ExcludedAttributes) != 0 {
		t.Fatalf("expected excludedAttributes to be dropped, got %v", q.ExcludedAttributes)
	}
	if len(q.Attributes) != 2 || q.Attributes[0] != "userName" || q.Attributes[1] != "active" {
		t.Fatalf("unexpected attributes: %v", q.Attributes)
	}
}

func TestParse_SortOrderDescending(t *testing.T) {
	q, err := Parse(map[string][]string{"sortOrder": {"DESCENDING"}}, Limits{MaxResults: 100, DefaultPageSize: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.SortOrder != "descending" {
		t.Fatalf("expected descending, got %q", q.SortOrder)
	}
}

func TestParse_InvalidFilterPropagates(t *testing.T) {
	_, err := Parse(map[string][]string{"filter": {`userName xx "john"`}}, Limits{MaxResults: 100, DefaultPageSize: 20})
	if err == nil {
		t.Fatalf("expected error for invalid filter")
	}
}
