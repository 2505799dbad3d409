package project

import (
	"reflect"
	"testing"
)

func sampleResource() map[string]any {
	return map[string]any{
		"schemas":  []any{"urn:ietf:params:scim:schemas:core:2.0:User"},
		"id":       "abc",
		"meta":     map[string]any{"resourceType": "User"},
		"userName": "jdoe",
		"name": map[string]any{
			"familyName": "Doe",
			"givenName":  "John",
		},
		"password": "secret",
	}
}

func TestProject_S5_IncludeProjection(t *testing.T) {
	sel := New([]string{"userName", "name.familyName"}, nil)
	out := sel.Project(sampleResource())

	for _, key := range []string{"schemas", "id", "meta", "userName", "name"} {
		if _, ok := out[key]; !ok {
			t.Fatalf("expected key %q in projected output, got %v", key, out)
		}
	}
	if _, ok := out["password"]; ok {
		t.Fatalf("password should not be present in include projection")
	}
	name := out["name"].(map[string]any)
	if _, ok := name["givenName"]; ok {
		t.Fatalf("givenName should have been dropped, only familyName was included")
	}
	if name["familyName"] != "Doe" {
		t.Fatalf("unexpected familyName: %v", name["familyName"])
	}
}

func TestProject_ExcludeProtectsSchemasAndID(t *testing.T) {
	sel := New(nil, []string{"schemas", "id", "password"})
	out := sel.Project(sampleResource())
	if _, ok := out["schemas"]; !ok {
		t.Fatalf("schemas must never be excluded")
	}
	if _, ok := out["id"]; !ok {
		t.Fatalf("id must never be excluded")
	}
	if _, ok := out["password"]; ok {
		t.Fatalf("password should have been excluded")
	}
}

func TestProject_IncludeAllPathsIsIdentity(t *testing.T) {
	r := map[string]any{
		"schemas":  []any{"urn:ietf:params:scim:schemas:core:2.0:User"},
		"id":       "abc",
		"userName": "jdoe",
		"active":   true,
	}
	sel := New([]string{"userName", "active"}, nil)
	out := sel.Project(r)
	if !reflect.DeepEqual(out, r) {
		t.Fatalf("include(r, allPaths(r)) should equal r; got %v want %v", out, r)
	}
}

func TestProject_ExcludeNoneIsIdentity(t *testing.T) {
	r := map[string]any{
		"schemas":  []any{"urn:ietf:params:scim:schemas:core:2.0:User"},
		"id":       "abc",
		"userName": "jdoe",
	}
	sel := New(nil, nil)
	out := sel.Project(r)
	if !reflect.DeepEqual(out, r) {
		t.Fatalf("exclude(r, []) should equal r; got %v want %v", out, r)
	}
}

func TestProject_ExcludeMetaIsHonored(t *testing.T) {
	sel := New(nil, []string{"meta"})
	out := sel.Project(sampleResource())
	if _, ok := out["meta"]; ok {
		t.Fatalf("meta should be excludable via excludedAttributes, only schemas/id are protected from exclusion")
	}
	if _, ok := out["schemas"]; !ok {
		t.Fatalf("schemas must still be present")
	}
}

func TestProject_ExcludeSubAttribute(t *testing.T) {
	sel := New(nil, []string{"name.givenName"})
	out := sel.Project(sampleResource())
	name := out["name"].(map[string]any)
	if _, ok := name["givenName"]; ok {
		t.Fatalf("givenName should have been excluded")
	}
	if name["familyName"] != "Doe" {
		t.Fatalf("familyName should remain: %v", name)
	}
}
