package scim

import (
	"context"
	"strings"
)

// AuthContext is the opaque identity the core receives from an
// Authenticator. Token acquisition schemes are out of scope; the core only
// consumes this shape.
type AuthContext struct {
	Subject string
	Tenant  string
}

// Authenticator resolves a Request's credentials into an AuthContext.
// Adapted from the teacher's gin-coupled SCIMAuthMiddleware, extracted to
// the shape the core actually needs.
type Authenticator interface {
	Authenticate(ctx context.Context, req *Request) (*AuthContext, error)
}

// StaticTokenAuthenticator maps bearer tokens to tenants from a fixed
// table, the reference implementation of Authenticator used by tests and
// cmd/scimdemo.
type StaticTokenAuthenticator struct {
	tokens map[string]string // token -> tenant
}

// NewStaticTokenAuthenticator builds a StaticTokenAuthenticator from a
// token->tenant table.
func NewStaticTokenAuthenticator(tokens map[string]string) *StaticTokenAuthenticator {
	return &StaticTokenAuthenticator{tokens: tokens}
}

func (a *StaticTokenAuthenticator) Authenticate(ctx context.Context, req *Request) (*AuthContext, error) {
	header := req.Headers["Authorization"]
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return nil, Unauthorized("missing or malformed Authorization header")
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	tenant, ok := a.tokens[token]
	if !ok {
		return nil, Unauthorized("unrecognized bearer token")
	}
	return &AuthContext{Subject: token, Tenant: tenant}, nil
}

// NoAuthAuthenticator accepts every request with an empty AuthContext. It
// exists for tests and local demos that don't want to exercise the
// credential path.
type NoAuthAuthenticator struct{}

func (NoAuthAuthenticator) Authenticate(ctx context.Context, req *Request) (*AuthContext, error) {
	return &AuthContext{}, nil
}
