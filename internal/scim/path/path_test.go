package path

import "testing"

func TestParse_PlainAttribute(t *testing.T) {
	p, err := Parse("userName")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(p))
	}
	attr, ok := p[0].(Attribute)
	if !ok || attr.Name != "userName" {
		t.Fatalf("unexpected segment: %+v", p[0])
	}
}

func TestParse_SubAttribute(t *testing.T) {
	p, err := Parse("name.familyName")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Root() != "name" {
		t.Fatalf("expected root name, got %q", p.Root())
	}
	if subs := p.SubNames(); len(subs) != 1 || subs[0] != "familyName" {
		t.Fatalf("unexpected sub names: %v", subs)
	}
}

func TestParse_IndexedAttribute(t *testing.T) {
	p, err := Parse(`members[value eq "u1"]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expr, ok := p.IndexFilter()
	if !ok {
		t.Fatalf("expected an indexed attribute")
	}
	if expr == nil {
		t.Fatalf("expected a non-nil filter")
	}
}

func TestParse_IndexedWithSubAttribute(t *testing.T) {
	p, err := Parse(`emails[type eq "work"].value`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Root() != "emails" {
		t.Fatalf("unexpected root: %q", p.Root())
	}
	if subs := p.SubNames(); len(subs) != 1 || subs[0] != "value" {
		t.Fatalf("unexpected sub names: %v", subs)
	}
}

func TestParse_Empty(t *testing.T) {
	p, err := Parse("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.IsEmpty() {
		t.Fatalf("expected empty path sentinel")
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{
		"members[value eq \"u1\"",
		"name.",
		".name",
		"members[]",
	} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestString_RoundTrip(t *testing.T) {
	for _, in := range []string{
		"userName",
		"name.familyName",
		`members[value eq "u1"]`,
	} {
		p, err := Parse(in)
		if err != nil {
			t.Fatalf("parse(%q): %v", in, err)
		}
		if got := p.String(); got != in {
			t.Fatalf("String() = %q, want %q", got, in)
		}
	}
}
