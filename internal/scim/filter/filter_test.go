package filter

import "testing"

func TestParse_SimpleEquality(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantOp    Op
		wantField string
		wantValue any
		wantErr   bool
	}{
		{"string eq", `userName eq "john"`, Eq, "userName", "john", false},
		{"bool eq", `active eq true`, Eq, "active", true, false},
		{"number gt", `age gt 21`, Gt, "age", float64(21), false},
		{"unknown op", `userName xx "john"`, "", "", nil, true},
		{"unterminated string", `userName eq "john`, "", "", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			attr, ok := e.(Attr)
			if !ok {
				t.Fatalf("expected Attr, got %T", e)
			}
			if attr.Op != tt.wantOp || attr.Path != tt.wantField || attr.Literal != tt.wantValue {
				t.Fatalf("got %+v, want op=%v field=%v value=%v", attr, tt.wantOp, tt.wantField, tt.wantValue)
			}
		})
	}
}

func TestParse_S1_LogicalAnd(t *testing.T) {
	e, err := Parse(`userName eq "john" and active eq true`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	and, ok := e.(And)
	if !ok {
		t.Fatalf("expected And, got %T", e)
	}
	left, ok := and.Left.(Attr)
	if !ok || left.Path != "userName" || left.Op != Eq || left.Literal != "john" {
		t.Fatalf("unexpected left operand: %+v", and.Left)
	}
	right, ok := and.Right.(Attr)
	if !ok || right.Path != "active" || right.Op != Eq || right.Literal != true {
		t.Fatalf("unexpected right operand: %+v", and.Right)
	}
}

func TestParse_EmptyIsEmpty(t *testing.T) {
	e, err := Parse("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := e.(Empty); !ok {
		t.Fatalf("expected Empty, got %T", e)
	}
}

func TestParse_PrecedenceAndBeforeOr(t *testing.T) {
	e, err := Parse(`a eq "1" or b eq "2" and c eq "3"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	or, ok := e.(Or)
	if !ok {
		t.Fatalf("expected top-level Or, got %T", e)
	}
	if _, ok := or.Right.(And); !ok {
		t.Fatalf("expected right operand of Or to be And, got %T", or.Right)
	}
}

func TestParse_NotBindsTighterThanAnd(t *testing.T) {
	e, err := Parse(`not a pr and b pr`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	and, ok := e.(And)
	if !ok {
		t.Fatalf("expected top-level And, got %T", e)
	}
	if _, ok := and.Left.(Not); !ok {
		t.Fatalf("expected left operand of And to be Not, got %T", and.Left)
	}
}

func TestParse_KeywordBoundary(t *testing.T) {
	// "organization" must not be mistaken for the "or" keyword.
	e, err := Parse(`organization eq "acme"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	attr, ok := e.(Attr)
	if !ok || attr.Path != "organization" {
		t.Fatalf("unexpected parse result: %+v", e)
	}
}

func TestParse_Group(t *testing.T) {
	e, err := Parse(`(userName eq "john")`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := e.(Group); !ok {
		t.Fatalf("expected Group, got %T", e)
	}
}

func TestEval_CaseInsensitiveEq(t *testing.T) {
	doc := map[string]any{"userName": "John"}
	upper, _ := Parse(`userName eq "JOHN"`)
	lower, _ := Parse(`userName eq "john"`)
	if Eval(upper, doc) != Eval(lower, doc) {
		t.Fatalf("eq should be case-insensitive")
	}
	if !Eval(upper, doc) {
		t.Fatalf("expected match")
	}
}

func TestEval_EmptyMatchesAll(t *testing.T) {
	e, _ := Parse("")
	for _, doc := range []any{
		map[string]any{},
		map[string]any{"a": 1},
		nil,
	} {
		if !Eval(e, doc) {
			t.Fatalf("empty filter should match everything, doc=%v", doc)
		}
	}
}

func TestEval_Monotonicity(t *testing.T) {
	doc := map[string]any{"a": true, "b": false}
	a, _ := Parse("a eq true")
	b, _ := Parse("b eq true")
	and := And{Left: a, Right: b}
	or := Or{Left: a, Right: b}
	not := Not{X: a}
	if Eval(and, doc) != (Eval(a, doc) && Eval(b, doc)) {
		t.Fatalf("And is not the conjunction of its operands")
	}
	if Eval(or, doc) != (Eval(a, doc) || Eval(b, doc)) {
		t.Fatalf("Or is not the disjunction of its operands")
	}
	if Eval(not, doc) != !Eval(a, doc) {
		t.Fatalf("Not does not invert its operand")
	}
}

func TestEval_S2_ValuePathFilter(t *testing.T) {
	e, err := Parse(`emails[type eq "work"].value ew "@example.com"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	match := map[string]any{
		"emails": []any{
			map[string]any{"type": "work", "value": "a@example.com"},
			map[string]any{"type": "home", "value": "b@other"},
		},
	}
	if !Eval(e, match) {
		t.Fatalf("expected value-path filter to match")
	}
	noMatch := map[string]any{
		"emails": []any{
			map[string]any{"type": "home", "value": "b@other"},
		},
	}
	if Eval(e, noMatch) {
		t.Fatalf("expected value-path filter not to match")
	}
}

func TestEval_Present(t *testing.T) {
	e, _ := Parse("nickName pr")
	if Eval(e, map[string]any{}) {
		t.Fatalf("pr on absent attribute should be false")
	}
	if Eval(e, map[string]any{"nickName": ""}) {
		t.Fatalf("pr on empty string should be false")
	}
	if Eval(e, map[string]any{"nickName": []any{}}) {
		t.Fatalf("pr on empty array should be false")
	}
	if !Eval(e, map[string]any{"nickName": "Bob"}) {
		t.Fatalf("pr on non-empty value should be true")
	}
}

func TestEval_ExistentialArrayMatch(t *testing.T) {
	e, _ := Parse(`tags eq "vip"`)
	doc := map[string]any{"tags": []any{"standard", "vip"}}
	if !Eval(e, doc) {
		t.Fatalf("expected existential array match")
	}
}

func TestUnparse_RoundTrip(t *testing.T) {
	inputs := []string{
		`userName eq "john"`,
		`active eq true`,
		`age gt 21`,
		`userName eq "john" and active eq true`,
		`not userName pr`,
	}
	for _, in := range inputs {
		e1, err := Parse(in)
		if err != nil {
			t.Fatalf("parse(%q): %v", in, err)
		}
		out := Unparse(e1)
		e2, err := Parse(out)
		if err != nil {
			t.Fatalf("parse(unparse(%q))=%q: %v", in, out, err)
		}
		if Unparse(e2) != Unparse(e1) {
			t.Fatalf("round-trip mismatch: %q -> %q -> %q", in, out, Unparse(e2))
		}
	}
}
