package scimdoc

import "testing"

func TestGet_NestedPath(t *testing.T) {
	doc := map[string]any{"name": map[string]any{"familyName": "Doe"}}
	v, ok := Get(doc, "name.familyName")
	if !ok || v != "Doe" {
		t.Fatalf("got %v, %v", v, ok)
	}
}

func TestGet_MissingSegment(t *testing.T) {
	doc := map[string]any{"name": map[string]any{"familyName": "Doe"}}
	if _, ok := Get(doc, "name.givenName"); ok {
		t.Fatal("expected ok == false")
	}
	if _, ok := Get(doc, "emails.value"); ok {
		t.Fatal("expected ok == false when an intermediate segment is not an object")
	}
}

func TestGetCI_CaseInsensitive(t *testing.T) {
	doc := map[string]any{"userName": "bjensen"}
	v, ok := GetCI(doc, "USERNAME")
	if !ok || v != "bjensen" {
		t.Fatalf("got %v, %v", v, ok)
	}
}

func TestSet_CreatesIntermediateObjects(t *testing.T) {
	doc := map[string]any{}
	if !Set(doc, "name.familyName", "Doe") {
		t.Fatal("expected Set to succeed")
	}
	name, ok := doc["name"].(map[string]any)
	if !ok || name["familyName"] != "Doe" {
		t.Fatalf("unexpected doc: %v", doc)
	}
}

func TestSet_PreservesExistingKeyCasing(t *testing.T) {
	doc := map[string]any{"userName": "old"}
	if !Set(doc, "username", "new") {
		t.Fatal("expected Set to succeed")
	}
	if _, hasLower := doc["username"]; hasLower {
		t.Fatal("Set should have reused the existing key's casing")
	}
	if doc["userName"] != "new" {
		t.Fatalf("unexpected doc: %v", doc)
	}
}

func TestSet_FailsOnNonObjectIntermediate(t *testing.T) {
	doc := map[string]any{"name": "flat"}
	if Set(doc, "name.familyName", "Doe") {
		t.Fatal("expected Set to fail when an intermediate segment is not an object")
	}
}

func TestDelete_RemovesLeaf(t *testing.T) {
	doc := map[string]any{"name": map[string]any{"familyName": "Doe"}}
	if !Delete(doc, "name.familyName") {
		t.Fatal("expected Delete to report removal")
	}
	if _, ok := Get(doc, "name.familyName"); ok {
		t.Fatal("expected attribute to be gone")
	}
}

func TestDelete_MissingIsNoop(t *testing.T) {
	doc := map[string]any{}
	if Delete(doc, "name.familyName") {
		t.Fatal("expected Delete to report no removal")
	}
}

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		v    any
		want bool
	}{
		{nil, true},
		{[]any{}, true},
		{"", true},
		{[]any{"x"}, false},
		{"x", false},
		{float64(0), false},
		{false, false},
	}
	for _, c := range cases {
		if got := IsEmpty(c.v); got != c.want {
			t.Errorf("IsEmpty(%#v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestClone_DeepCopiesNestedStructures(t *testing.T) {
	orig := map[string]any{
		"emails": []any{map[string]any{"value": "a@example.com"}},
	}
	cloned := Clone(orig).(map[string]any)

	emails := cloned["emails"].([]any)
	emails[0].(map[string]any)["value"] = "mutated@example.com"

	origEmails := orig["emails"].([]any)
	if origEmails[0].(map[string]any)["value"] != "a@example.com" {
		t.Fatal("Clone should not share underlying storage with the original")
	}
}
