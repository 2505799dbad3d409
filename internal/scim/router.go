// Package scim implements the SCIM 2.0 request dispatch state machine and
// the ambient machinery (errors, config, metrics, auth) that binds the
// filter/path/patch/project/query engines to a pluggable resource handler
// registry. Transport bindings (e.g. scimgin) adapt a concrete framework's
// request/response types into Request/Response defined here.
package scim

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/openidx/scimcore/internal/scim/project"
	"github.com/openidx/scimcore/internal/scim/query"
)

// Request is the transport-independent shape a dispatcher call operates
// on. Transport bindings build one of these from whatever framework they
// wrap.
type Request struct {
	Method   string
	Path     string
	RawQuery map[string][]string
	Headers  map[string]string
	Body     []byte
	BaseURL  string
}

// Response is the transport-independent result of a dispatch.
type Response struct {
	Status  int
	Body    []byte
	Headers map[string]string
}

// Router is the dispatch state machine of §4.7, holding the handler
// registry and the ambient collaborators (auth, limits, metrics, logging)
// it threads through every request.
type Router struct {
	Registry *Registry
	Auth     Authenticator
	Limits   query.Limits
	SPConfig *ServiceProviderConfig
	Logger   *zap.Logger
	Metrics  *Metrics
}

// NewRouter builds a Router. logger and metrics may be nil; nil-safe
// no-ops are used in that case so tests can omit them.
func NewRouter(reg *Registry, auth Authenticator, limits query.Limits, spc *ServiceProviderConfig, logger *zap.Logger, metrics *Metrics) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{Registry: reg, Auth: auth, Limits: limits, SPConfig: spc, Logger: logger, Metrics: metrics}
}

// Handle runs the nine-step dispatch state machine of §4.7 against req.
func (rt *Router) Handle(ctx context.Context, req *Request) *Response {
	start := time.Now()
	endpoint, id, isSearch := parsePath(req.Path)

	resp := rt.handle(ctx, req, endpoint, id, isSearch)

	if rt.Metrics != nil {
		status := "200"
		if resp.Status != 0 {
			status = strconv.Itoa(resp.Status)
		}
		rt.Metrics.RequestsTotal.WithLabelValues(endpoint, req.Method, status).Inc()
		rt.Metrics.RequestDuration.WithLabelValues(endpoint, req.Method).Observe(time.Since(start).Seconds())
	}
	return resp
}

func (rt *Router) handle(ctx context.Context, req *Request, endpoint, id string, isSearch bool) *Response {
	// Step 1: authenticate.
	auth, err := rt.Auth.Authenticate(ctx, req)
	if err != nil {
		return rt.errorResponse(err)
	}

	// Step 3: service-provider metadata endpoints are served without a
	// handler lookup: ServiceProviderConfig from static config,
	// ResourceTypes and Schemas from the registry's list of handlers.
	switch endpoint {
	case "ServiceProviderConfig":
		return rt.jsonResponse(200, rt.SPConfig)
	case "ResourceTypes":
		return rt.resourceTypesResponse(id)
	case "Schemas":
		return rt.schemasResponse(id)
	case "Bulk":
		return rt.errorResponse(BadRequest("bulk operations are not supported"))
	case "":
		if isSearch {
			return rt.errorResponse(BadRequest("root-level search is not supported"))
		}
	}

	// Step 4: lookup handler.
	handler, ok := rt.Registry.Lookup(endpoint)
	if !ok {
		return rt.errorResponse(NotFound("no resource type registered at this endpoint"))
	}

	// Step 5: build RequestContext.
	rc := &RequestContext{Auth: auth, BaseURL: req.BaseURL}

	// Step 2/6: route by method/id/isSearch, parsing query params and
	// decoding the body as the specific action requires.
	switch {
	case req.Method == "GET" && id == "":
		return rt.doSearch(ctx, handler, rc, req.RawQuery, endpoint, req.BaseURL)
	case req.Method == "GET" && id != "":
		return rt.doGet(ctx, handler, rc, id, req.RawQuery, req.BaseURL)
	case req.Method == "POST" && id == "" && isSearch:
		return rt.doSearchBody(ctx, handler, rc, req.Body, endpoint, req.BaseURL)
	case req.Method == "POST" && id == "":
		return rt.doCreate(ctx, handler, rc, req.Body, req.RawQuery, req.BaseURL, endpoint)
	case req.Method == "PUT" && id != "":
		return rt.doReplace(ctx, handler, rc, id, req.Body, req.RawQuery, req.BaseURL)
	case req.Method == "PATCH" && id != "":
		return rt.doPatch(ctx, handler, rc, id, req.Body, req.RawQuery, req.BaseURL)
	case req.Method == "DELETE" && id != "":
		return rt.doDelete(ctx, handler, rc, id)
	default:
		return rt.errorResponse(BadRequest("unsupported method/path combination"))
	}
}

func (rt *Router) doSearch(ctx context.Context, h ResourceHandler, rc *RequestContext, raw map[string][]string, endpoint, baseURL string) *Response {
	q, err := query.Parse(raw, rt.Limits)
	if err != nil {
		return rt.errorResponse(FromError(err))
	}
	body, err := h.Search(ctx, rc, q)
	if err != nil {
		return rt.errorResponse(FromError(err))
	}
	sel := selectorFor(q)
	body, _ = projectListBody(body, sel)
	return &Response{Status: 200, Body: body, Headers: map[string]string{"Content-Type": "application/scim+json"}}
}

func (rt *Router) doSearchBody(ctx context.Context, h ResourceHandler, rc *RequestContext, body []byte, endpoint, baseURL string) *Response {
	if len(body) == 0 {
		return rt.errorResponse(InvalidSyntax("search request requires a body"))
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return rt.errorResponse(InvalidSyntax(err.Error()))
	}
	values := map[string][]string{}
	for k, v := range raw {
		if s, ok := v.(string); ok {
			values[k] = []string{s}
		}
	}
	return rt.doSearch(ctx, h, rc, values, endpoint, baseURL)
}

func (rt *Router) doGet(ctx context.Context, h ResourceHandler, rc *RequestContext, id string, raw map[string][]string, baseURL string) *Response {
	body, err := h.Get(ctx, rc, id)
	if err != nil {
		return rt.errorResponse(FromError(err))
	}
	return rt.resourceResponse(200, body, raw)
}

func (rt *Router) doCreate(ctx context.Context, h ResourceHandler, rc *RequestContext, body []byte, raw map[string][]string, baseURL, endpoint string) *Response {
	if len(body) == 0 {
		return rt.errorResponse(InvalidSyntax("create requires a body"))
	}
	out, err := h.Create(ctx, rc, body)
	if err != nil {
		return rt.errorResponse(FromError(err))
	}
	return rt.resourceResponse(201, out, raw)
}

func (rt *Router) doReplace(ctx context.Context, h ResourceHandler, rc *RequestContext, id string, body []byte, raw map[string][]string, baseURL string) *Response {
	if len(body) == 0 {
		return rt.errorResponse(InvalidSyntax("replace requires a body"))
	}
	out, err := h.Replace(ctx, rc, id, body)
	if err != nil {
		return rt.errorResponse(FromError(err))
	}
	return rt.resourceResponse(200, out, raw)
}

func (rt *Router) doPatch(ctx context.Context, h ResourceHandler, rc *RequestContext, id string, body []byte, raw map[string][]string, baseURL string) *Response {
	if len(body) == 0 {
		return rt.errorResponse(InvalidSyntax("patch requires a body"))
	}
	var preq PatchRequestBody
	if err := json.Unmarshal(body, &preq); err != nil {
		return rt.errorResponse(InvalidSyntax(err.Error()))
	}
	out, err := h.Patch(ctx, rc, id, preq.Operations)
	if err != nil {
		return rt.errorResponse(FromError(err))
	}
	return rt.resourceResponse(200, out, raw)
}

func (rt *Router) doDelete(ctx context.Context, h ResourceHandler, rc *RequestContext, id string) *Response {
	if err := h.Delete(ctx, rc, id); err != nil {
		return rt.errorResponse(FromError(err))
	}
	return &Response{Status: 204, Headers: map[string]string{}}
}

// resourceResponse applies attribute projection (if the caller supplied
// attributes/excludedAttributes) and stamps Location/ETag from meta.
func (rt *Router) resourceResponse(status int, body []byte, raw map[string][]string) *Response {
	q, _ := query.Parse(raw, rt.Limits)
	sel := selectorFor(q)
	projected, err := projectBody(body, sel)
	if err == nil {
		body = projected
	}
	headers := map[string]string{"Content-Type": "application/scim+json"}
	if loc, etag := metaOf(body); loc != "" || etag != "" {
		if loc != "" {
			headers["Location"] = loc
		}
		if etag != "" {
			headers["ETag"] = etag
		}
	}
	return &Response{Status: status, Body: body, Headers: headers}
}

func selectorFor(q *query.Query) *project.Selector {
	if q == nil {
		return nil
	}
	if len(q.Attributes) == 0 && len(q.ExcludedAttributes) == 0 {
		return nil
	}
	return project.New(q.Attributes, q.ExcludedAttributes)
}

func (rt *Router) errorResponse(err error) *Response {
	se := FromError(err)
	if rt.Metrics != nil && se.ScimType != "" {
		rt.Metrics.ErrorsTotal.WithLabelValues(se.ScimType).Inc()
	}
	body, _ := json.Marshal(se.Envelope())
	return &Response{Status: se.Status, Body: body, Headers: map[string]string{"Content-Type": "application/scim+json"}}
}

func (rt *Router) jsonResponse(status int, v any) *Response {
	body, err := json.Marshal(v)
	if err != nil {
		return rt.errorResponse(Internal(err.Error()))
	}
	return &Response{Status: status, Body: body, Headers: map[string]string{"Content-Type": "application/scim+json"}}
}

func (rt *Router) resourceTypesResponse(id string) *Response {
	handlers := rt.Registry.All()
	if id != "" {
		for _, h := range handlers {
			if h.Endpoint() == id {
				return rt.jsonResponse(200, resourceTypeDoc(h))
			}
		}
		return rt.errorResponse(NotFound("no such resource type"))
	}
	docs := make([]any, 0, len(handlers))
	for _, h := range handlers {
		docs = append(docs, resourceTypeDoc(h))
	}
	return rt.jsonResponse(200, docs)
}

func resourceTypeDoc(h ResourceHandler) map[string]any {
	return map[string]any{
		"schemas":  []string{"urn:ietf:params:scim:schemas:core:2.0:ResourceType"},
		"id":       h.Endpoint(),
		"name":     h.Endpoint(),
		"endpoint": "/" + h.Endpoint(),
		"schema":   h.SchemaURI(),
	}
}

func (rt *Router) schemasResponse(id string) *Response {
	handlers := rt.Registry.All()
	if id != "" {
		for _, h := range handlers {
			if h.SchemaURI() == id {
				return rt.jsonResponse(200, map[string]any{"id": h.SchemaURI(), "name": h.Endpoint()})
			}
		}
		return rt.errorResponse(NotFound("no such schema"))
	}
	docs := make([]any, 0, len(handlers))
	for _, h := range handlers {
		docs = append(docs, map[string]any{"id": h.SchemaURI(), "name": h.Endpoint()})
	}
	return rt.jsonResponse(200, docs)
}

// parsePath decodes the path shape of §4.7:
// /{Endpoint}[/{id}[/.search]] or /.search.
func parsePath(p string) (endpoint, id string, isSearch bool) {
	segs := splitNonEmpty(p)
	if len(segs) == 0 {
		return "", "", false
	}
	if segs[0] == ".search" {
		return "", "", true
	}
	endpoint = segs[0]
	rest := segs[1:]
	if len(rest) > 0 && rest[len(rest)-1] == ".search" {
		isSearch = true
		rest = rest[:len(rest)-1]
	}
	if len(rest) > 0 {
		id = rest[0]
	}
	return endpoint, id, isSearch
}

func splitNonEmpty(p string) []string {
	parts := strings.Split(p, "/")
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
