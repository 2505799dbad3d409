package scim

import (
	"encoding/json"

	"github.com/openidx/scimcore/internal/scim/patch"
	"github.com/openidx/scimcore/internal/scim/project"
)

// ListResponse is the RFC 7644 §3.4.2 list/query response envelope. Note
// the capitalized Resources field — mandated by SCIM, not a stylistic
// choice.
type ListResponse struct {
	Schemas      []string `json:"schemas"`
	TotalResults int      `json:"totalResults"`
	StartIndex   int      `json:"startIndex"`
	ItemsPerPage int      `json:"itemsPerPage"`
	Resources    []any    `json:"Resources"`
}

const listResponseSchema = "urn:ietf:params:scim:api:messages:2.0:ListResponse"

// NewListResponse builds a ListResponse envelope around resources.
func NewListResponse(resources []any, total, startIndex, itemsPerPage int) *ListResponse {
	if resources == nil {
		resources = []any{}
	}
	return &ListResponse{
		Schemas:      []string{listResponseSchema},
		TotalResults: total,
		StartIndex:   startIndex,
		ItemsPerPage: itemsPerPage,
		Resources:    resources,
	}
}

// PatchRequestBody is the RFC 7644 §3.5.2 PATCH request envelope. Note the
// capitalized Operations field.
type PatchRequestBody struct {
	Schemas    []string          `json:"schemas"`
	Operations []patch.Operation `json:"Operations"`
}

// projectBody applies sel to a single-resource JSON body.
func projectBody(body []byte, sel *project.Selector) ([]byte, error) {
	if sel == nil {
		return body, nil
	}
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return body, nil // not a projectable object (e.g. already an error body); pass through
	}
	return json.Marshal(sel.Project(doc))
}

// projectListBody applies sel to every element of a ListResponse body's
// Resources array, leaving the envelope fields untouched.
func projectListBody(body []byte, sel *project.Selector) ([]byte, error) {
	if sel == nil {
		return body, nil
	}
	var lr ListResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return body, nil
	}
	for i, r := range lr.Resources {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		lr.Resources[i] = sel.Project(m)
	}
	return json.Marshal(lr)
}

func metaOf(body []byte) (location string, etag string) {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", ""
	}
	meta, ok := doc["meta"].(map[string]any)
	if !ok {
		return "", ""
	}
	if l, ok := meta["location"].(string); ok {
		location = l
	}
	if v, ok := meta["version"].(string); ok {
		etag = v
	}
	return location, etag
}
