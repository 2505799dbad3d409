package scim

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/openidx/scimcore/internal/scim/patch"
	"github.com/openidx/scimcore/internal/scim/query"
)

// RequestContext carries the per-request state handlers need: the
// authenticated caller and the base URL to stamp into meta.location.
type RequestContext struct {
	Auth    *AuthContext
	BaseURL string
}

// ResourceHandler is the contract between the dispatcher and a pluggable
// resource implementation. Per the type-erasure design in §9, its methods
// are byte-buffer oriented so a heterogeneous Registry can hold handlers
// for different resource types behind one interface; TypeErase supplies
// the typed convenience layer.
type ResourceHandler interface {
	Endpoint() string
	SchemaURI() string
	Create(ctx context.Context, rc *RequestContext, body []byte) ([]byte, error)
	Get(ctx context.Context, rc *RequestContext, id string) ([]byte, error)
	Replace(ctx context.Context, rc *RequestContext, id string, body []byte) ([]byte, error)
	Delete(ctx context.Context, rc *RequestContext, id string) error
	Search(ctx context.Context, rc *RequestContext, q *query.Query) ([]byte, error)
	Patch(ctx context.Context, rc *RequestContext, id string, ops []patch.Operation) ([]byte, error)
}

// TypedResourceHandler is the typed shape a resource implementation
// actually writes against; TypeErase adapts it to ResourceHandler.
type TypedResourceHandler[T any] interface {
	Endpoint() string
	SchemaURI() string
	Create(ctx context.Context, rc *RequestContext, doc T) (T, error)
	Get(ctx context.Context, rc *RequestContext, id string) (T, error)
	Replace(ctx context.Context, rc *RequestContext, id string, doc T) (T, error)
	Delete(ctx context.Context, rc *RequestContext, id string) error
	Search(ctx context.Context, rc *RequestContext, q *query.Query) ([]T, int, error)
}

type erasedHandler[T any] struct {
	inner TypedResourceHandler[T]
}

// TypeErase adapts a TypedResourceHandler[T] into a ResourceHandler,
// marshaling/unmarshaling T at the boundary and applying the default
// get->apply->replace PATCH fallback.
func TypeErase[T any](inner TypedResourceHandler[T]) ResourceHandler {
	return &erasedHandler[T]{inner: inner}
}

func (h *erasedHandler[T]) Endpoint() string  { return h.inner.Endpoint() }
func (h *erasedHandler[T]) SchemaURI() string { return h.inner.SchemaURI() }

func (h *erasedHandler[T]) Create(ctx context.Context, rc *RequestContext, body []byte) ([]byte, error) {
	var doc T
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, InvalidSyntax(err.Error())
	}
	out, err := h.inner.Create(ctx, rc, doc)
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

func (h *erasedHandler[T]) Get(ctx context.Context, rc *RequestContext, id string) ([]byte, error) {
	out, err := h.inner.Get(ctx, rc, id)
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

func (h *erasedHandler[T]) Replace(ctx context.Context, rc *RequestContext, id string, body []byte) ([]byte, error) {
	var doc T
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, InvalidSyntax(err.Error())
	}
	out, err := h.inner.Replace(ctx, rc, id, doc)
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

func (h *erasedHandler[T]) Delete(ctx context.Context, rc *RequestContext, id string) error {
	return h.inner.Delete(ctx, rc, id)
}

func (h *erasedHandler[T]) Search(ctx context.Context, rc *RequestContext, q *query.Query) ([]byte, error) {
	items, total, err := h.inner.Search(ctx, rc, q)
	if err != nil {
		return nil, err
	}
	resources := make([]any, len(items))
	for i, item := range items {
		b, err := json.Marshal(item)
		if err != nil {
			return nil, Internal(err.Error())
		}
		var m any
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, Internal(err.Error())
		}
		resources[i] = m
	}
	lr := NewListResponse(resources, total, q.StartIndex, len(resources))
	return json.Marshal(lr)
}

// Patch implements the default get->apply->replace fallback described in
// §4.8. A TypedResourceHandler that needs atomicity can bypass this by
// wrapping its own ResourceHandler directly instead of going through
// TypeErase.
func (h *erasedHandler[T]) Patch(ctx context.Context, rc *RequestContext, id string, ops []patch.Operation) ([]byte, error) {
	current, err := h.inner.Get(ctx, rc, id)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(current)
	if err != nil {
		return nil, Internal(err.Error())
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, Internal(err.Error())
	}
	if err := patch.Apply(doc, ops); err != nil {
		return nil, FromError(err)
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return nil, Internal(err.Error())
	}
	return h.Replace(ctx, rc, id, merged)
}

// Registry is the read-mostly table of resource handlers keyed by endpoint
// name (e.g. "Users", "Groups"). Registration after startup is permitted
// but serialized through mu.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]ResourceHandler
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: map[string]ResourceHandler{}}
}

// Register adds or replaces the handler for its endpoint.
func (r *Registry) Register(h ResourceHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Endpoint()] = h
}

// Lookup returns the handler registered for endpoint, if any.
func (r *Registry) Lookup(endpoint string) (ResourceHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[endpoint]
	return h, ok
}

// All returns every registered handler, used by the discovery endpoints.
func (r *Registry) All() []ResourceHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ResourceHandler, 0, len(r.handlers))
	for _, h := range r.handlers {
		out = append(out, h)
	}
	return out
}
