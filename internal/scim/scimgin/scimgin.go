// Package scimgin adapts the transport-independent dispatcher in package
// scim onto github.com/gin-gonic/gin, the HTTP framework the teacher uses
// for every other service endpoint. It carries no SCIM semantics of its
// own: it only translates *gin.Context into scim.Request and writes
// scim.Response back.
package scimgin

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openidx/scimcore/internal/scim"
)

// Bind registers the SCIM route table of §4.7 against engine, dispatching
// every match through router.
func Bind(engine gin.IRouter, router *scim.Router) {
	h := func(c *gin.Context) { serve(c, router) }

	engine.GET("/:endpoint", h)
	engine.GET("/:endpoint/:id", h)
	engine.POST("/:endpoint", h)
	engine.POST("/:endpoint/.search", h)
	engine.POST("/:endpoint/:id/.search", h)
	engine.POST("/.search", h)
	engine.PUT("/:endpoint/:id", h)
	engine.PATCH("/:endpoint/:id", h)
	engine.DELETE("/:endpoint/:id", h)
}

func serve(c *gin.Context, router *scim.Router) {
	body, _ := io.ReadAll(c.Request.Body)

	headers := map[string]string{}
	if auth := c.GetHeader("Authorization"); auth != "" {
		headers["Authorization"] = auth
	}

	req := &scim.Request{
		Method:   c.Request.Method,
		Path:     c.Request.URL.Path,
		RawQuery: map[string][]string(c.Request.URL.Query()),
		Headers:  headers,
		Body:     body,
		BaseURL:  baseURL(c.Request),
	}

	resp := router.Handle(c.Request.Context(), req)

	for k, v := range resp.Headers {
		c.Header(k, v)
	}
	if len(resp.Body) == 0 {
		c.Status(resp.Status)
		return
	}
	c.Data(resp.Status, "application/scim+json", resp.Body)
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + r.Host
}
