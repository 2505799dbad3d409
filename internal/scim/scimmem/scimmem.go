// Package scimmem is an in-memory reference ResourceHandler for Users and
// Groups. It is not the product: it exists so the dispatch state machine
// and the resource handler contract can be exercised end-to-end by tests
// and cmd/scimdemo without a real datastore.
package scimmem

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/openidx/scimcore/internal/scim"
	"github.com/openidx/scimcore/internal/scim/filter"
	"github.com/openidx/scimcore/internal/scim/query"
	"github.com/openidx/scimcore/internal/scim/scimdoc"
)

// writeOnlyAttrs are never returned in a response, per RFC 7643 §7's
// writeOnly mutability (e.g. "password").
var writeOnlyAttrs = []string{"password"}

// Store holds one resource type's documents in memory, keyed by id.
// It implements scim.TypedResourceHandler[map[string]any] directly against
// the dynamic document shape rather than a typed struct, matching the
// "canonical shape is the tree" design note.
type Store struct {
	mu           sync.RWMutex
	endpoint     string
	resourceType string
	schemaURI    string
	uniqueField  string // e.g. "userName"; empty disables the uniqueness check
	data         map[string]map[string]any
}

// NewUserStore returns a Store for the Users endpoint, enforcing userName
// uniqueness per RFC 7643 §4.1.
func NewUserStore() *Store {
	return &Store{
		endpoint:     "Users",
		resourceType: "User",
		schemaURI:    "urn:ietf:params:scim:schemas:core:2.0:User",
		uniqueField:  "userName",
		data:         map[string]map[string]any{},
	}
}

// NewGroupStore returns a Store for the Groups endpoint.
func NewGroupStore() *Store {
	return &Store{
		endpoint:     "Groups",
		resourceType: "Group",
		schemaURI:    "urn:ietf:params:scim:schemas:core:2.0:Group",
		uniqueField:  "displayName",
		data:         map[string]map[string]any{},
	}
}

// NewUsersHandler wires a fresh Store for Users into the core's
// type-erased ResourceHandler interface.
func NewUsersHandler() scim.ResourceHandler {
	return scim.TypeErase[map[string]any](NewUserStore())
}

// NewGroupsHandler wires a fresh Store for Groups into the core's
// type-erased ResourceHandler interface.
func NewGroupsHandler() scim.ResourceHandler {
	return scim.TypeErase[map[string]any](NewGroupStore())
}

func (s *Store) Endpoint() string  { return s.endpoint }
func (s *Store) SchemaURI() string { return s.schemaURI }

func (s *Store) Create(ctx context.Context, rc *scim.RequestContext, doc map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUnique(doc, ""); err != nil {
		return nil, err
	}
	if err := hashPassword(doc); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	doc["id"] = id
	doc["schemas"] = []any{s.schemaURI}
	doc["meta"] = s.newMeta(rc, id)
	s.data[id] = scimdoc.Clone(doc).(map[string]any)
	return stripWriteOnly(scimdoc.Clone(doc).(map[string]any)), nil
}

func (s *Store) Get(ctx context.Context, rc *scim.RequestContext, id string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.data[id]
	if !ok {
		return nil, scim.NotFound(fmt.Sprintf("no %s with id %q", s.resourceType, id))
	}
	return stripWriteOnly(scimdoc.Clone(d).(map[string]any)), nil
}

func (s *Store) Replace(ctx context.Context, rc *scim.RequestContext, id string, doc map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.data[id]
	if !ok {
		return nil, scim.NotFound(fmt.Sprintf("no %s with id %q", s.resourceType, id))
	}
	if err := s.checkUnique(doc, id); err != nil {
		return nil, err
	}
	if _, changed := doc["password"]; changed {
		if err := hashPassword(doc); err != nil {
			return nil, err
		}
	} else if hash, ok := existing["password"]; ok {
		// A replace that omits password leaves the stored hash untouched
		// rather than losing it; callers re-send everything they want kept.
		doc["password"] = hash
	}

	doc["id"] = id
	doc["schemas"] = []any{s.schemaURI}
	meta, _ := existing["meta"].(map[string]any)
	doc["meta"] = s.bumpMeta(meta, rc, id)
	s.data[id] = scimdoc.Clone(doc).(map[string]any)
	return stripWriteOnly(scimdoc.Clone(doc).(map[string]any)), nil
}

func (s *Store) Delete(ctx context.Context, rc *scim.RequestContext, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return scim.NotFound(fmt.Sprintf("no %s with id %q", s.resourceType, id))
	}
	delete(s.data, id)
	return nil
}

func (s *Store) Search(ctx context.Context, rc *scim.RequestContext, q *query.Query) ([]map[string]any, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expr := q.Filter
	if expr == nil {
		expr = filter.Empty{}
	}

	var matched []map[string]any
	for _, d := range s.data {
		if filter.Eval(expr, d) {
			matched = append(matched, d)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return fmt.Sprint(matched[i]["id"]) < fmt.Sprint(matched[j]["id"])
	})
	if q.SortBy != "" {
		sortBy := q.SortBy
		desc := q.SortOrder == "descending"
		sort.SliceStable(matched, func(i, j int) bool {
			vi, _ := scimdoc.GetCI(matched[i], sortBy)
			vj, _ := scimdoc.GetCI(matched[j], sortBy)
			less := fmt.Sprint(vi) < fmt.Sprint(vj)
			if desc {
				return !less
			}
			return less
		})
	}

	total := len(matched)
	start := q.Offset()
	if start > total {
		start = total
	}
	end := start + q.Count
	if end > total {
		end = total
	}
	page := matched[start:end]

	out := make([]map[string]any, len(page))
	for i, d := range page {
		out[i] = stripWriteOnly(scimdoc.Clone(d).(map[string]any))
	}
	return out, total, nil
}

func (s *Store) checkUnique(doc map[string]any, excludeID string) error {
	if s.uniqueField == "" {
		return nil
	}
	v, ok := scimdoc.GetCI(doc, s.uniqueField)
	if !ok {
		return nil
	}
	vs, ok := v.(string)
	if !ok {
		return nil
	}
	for id, existing := range s.data {
		if id == excludeID {
			continue
		}
		ev, ok := scimdoc.GetCI(existing, s.uniqueField)
		if !ok {
			continue
		}
		if evs, ok := ev.(string); ok && strings.EqualFold(evs, vs) {
			return scim.Uniqueness(fmt.Sprintf("%s %q is already in use", s.uniqueField, vs))
		}
	}
	return nil
}

func (s *Store) newMeta(rc *scim.RequestContext, id string) map[string]any {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return map[string]any{
		"resourceType": s.resourceType,
		"created":      now,
		"lastModified": now,
		"location":     s.location(rc, id),
		"version":      etag(),
	}
}

func (s *Store) bumpMeta(prev map[string]any, rc *scim.RequestContext, id string) map[string]any {
	m := map[string]any{}
	for k, v := range prev {
		m[k] = v
	}
	m["resourceType"] = s.resourceType
	if _, ok := m["created"]; !ok {
		m["created"] = time.Now().UTC().Format(time.RFC3339Nano)
	}
	m["lastModified"] = time.Now().UTC().Format(time.RFC3339Nano)
	m["location"] = s.location(rc, id)
	m["version"] = etag()
	return m
}

func (s *Store) location(rc *scim.RequestContext, id string) string {
	base := ""
	if rc != nil {
		base = rc.BaseURL
	}
	return strings.TrimRight(base, "/") + "/" + s.endpoint + "/" + id
}

func etag() string {
	return fmt.Sprintf("W/%q", uuid.NewString())
}

// hashPassword replaces a plaintext "password" attribute with its bcrypt
// hash before it is stored. A caller sending an already-hashed value
// (identifiable by the bcrypt prefix) is assumed to be re-sending what a
// prior response never actually returned, so it is passed through as-is.
func hashPassword(doc map[string]any) error {
	raw, ok := scimdoc.GetCI(doc, "password")
	if !ok {
		return nil
	}
	plain, ok := raw.(string)
	if !ok || plain == "" {
		return nil
	}
	if strings.HasPrefix(plain, "$2a$") || strings.HasPrefix(plain, "$2b$") {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return scim.Internal(fmt.Sprintf("hash password: %v", err))
	}
	scimdoc.Set(doc, "password", string(hash))
	return nil
}

// stripWriteOnly removes attributes that RFC 7643 §7 marks writeOnly
// (password) from a document that is about to be returned to a caller.
func stripWriteOnly(doc map[string]any) map[string]any {
	for _, name := range writeOnlyAttrs {
		scimdoc.Delete(doc, name)
	}
	return doc
}
