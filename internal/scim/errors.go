package scim

import "fmt"

// Code is the abstract error category the dispatcher maps to an HTTP
// status code, independent of the SCIM-specific scimType detail.
type Code string

const (
	CodeBadRequest   Code = "badRequest"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "notFound"
	CodeConflict     Code = "conflict"
	CodeInternal     Code = "internal"
)

var statusForCode = map[Code]int{
	CodeBadRequest:   400,
	CodeUnauthorized: 401,
	CodeForbidden:    403,
	CodeNotFound:     404,
	CodeConflict:     409,
	CodeInternal:     500,
}

// Error is the single typed error representation the dispatcher converts
// into a SCIM error envelope. Parsers, evaluators, and the applicator fail
// fast with their own package-local error types; FromError translates
// those at the dispatcher boundary, which is the only layer permitted to
// produce the wire envelope (per the propagation policy).
type Error struct {
	Code     Code
	ScimType string
	Status   int
	Detail   string
	Err      error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error for code with the given SCIM scimType (may be empty)
// and detail.
func New(code Code, scimType, detail string) *Error {
	return &Error{Code: code, ScimType: scimType, Status: statusForCode[code], Detail: detail}
}

// Wrap builds an Error for code carrying err as the underlying cause.
func Wrap(err error, code Code, scimType, detail string) *Error {
	e := New(code, scimType, detail)
	e.Err = err
	return e
}

func InvalidFilter(detail string) *Error  { return New(CodeBadRequest, "invalidFilter", detail) }
func InvalidPath(detail string) *Error    { return New(CodeBadRequest, "invalidPath", detail) }
func NoTarget(detail string) *Error       { return New(CodeBadRequest, "noTarget", detail) }
func InvalidValue(detail string) *Error   { return New(CodeBadRequest, "invalidValue", detail) }
func InvalidSyntax(detail string) *Error  { return New(CodeBadRequest, "invalidSyntax", detail) }
func Mutability(detail string) *Error     { return New(CodeBadRequest, "mutability", detail) }
func TooMany(detail string) *Error        { return New(CodeBadRequest, "tooMany", detail) }
func Uniqueness(detail string) *Error     { return New(CodeConflict, "uniqueness", detail) }
func Unauthorized(detail string) *Error   { return New(CodeUnauthorized, "", detail) }
func Forbidden(detail string) *Error      { return New(CodeForbidden, "", detail) }
func NotFound(detail string) *Error       { return New(CodeNotFound, "", detail) }
func Conflict(detail string) *Error       { return New(CodeConflict, "", detail) }
func Internal(detail string) *Error       { return New(CodeInternal, "", detail) }
func BadRequest(detail string) *Error     { return New(CodeBadRequest, "", detail) }

// Envelope renders e as the SCIM error envelope body (RFC 7644 §3.12).
func (e *Error) Envelope() map[string]any {
	body := map[string]any{
		"schemas": []string{"urn:ietf:params:scim:api:messages:2.0:Error"},
		"status":  fmt.Sprintf("%d", e.Status),
		"detail":  e.Detail,
	}
	if e.ScimType != "" {
		body["scimType"] = e.ScimType
	}
	return body
}

// FromError converts any error raised by the filter/path/patch engines or a
// resource handler into a dispatcher-level *Error. Errors that are already
// *Error pass through unchanged; unrecognized errors become CodeInternal.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	if se, ok := err.(*Error); ok {
		return se
	}
	detail := err.Error()
	switch {
	case hasErrorType(err, "invalid filter"):
		return InvalidFilter(detail)
	case hasErrorType(err, "invalid path"):
		return InvalidPath(detail)
	case hasErrorType(err, "no target"):
		return NoTarget(detail)
	case hasErrorType(err, "invalid value"):
		return InvalidValue(detail)
	case hasErrorType(err, "too many"):
		return TooMany(detail)
	default:
		return Internal(detail)
	}
}

// hasErrorType is a conservative fallback for errors from packages that do
// not import scim (to avoid the import cycle their Error() text is
// prefixed consistently by their own constructors).
func hasErrorType(err error, prefix string) bool {
	s := err.Error()
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
