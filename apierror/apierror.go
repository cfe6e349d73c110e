// Package apierror classifies failures from directory sources into a small
// fixed taxonomy so callers can decide on retries and render consistent
// user-facing messages.
package apierror

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
)

type Code string

const (
	CodeNetwork    Code = "NETWORK_ERROR"
	CodeTimeout    Code = "TIMEOUT_ERROR"
	CodeValidation Code = "VALIDATION_ERROR"
	CodeNotFound   Code = "NOT_FOUND"
	CodeRateLimit  Code = "RATE_LIMITED"
	CodeCache      Code = "CACHE_ERROR"
	CodeSpecParse  Code = "SPEC_PARSE_ERROR"
	CodeAuth       Code = "AUTH_ERROR"
	CodeServer     Code = "SERVER_ERROR"
	CodeUnknown    Code = "UNKNOWN_ERROR"
)

// Context carries the operation details an error happened under.
type Context struct {
	Operation string `json:"operation,omitempty"`
	Source    string `json:"source,omitempty"`
	Provider  string `json:"provider,omitempty"`
	APIID     string `json:"apiId,omitempty"`
}

type Error struct {
	Code    Code
	Context Context
	cause   error
}

func (e *Error) Error() string {
	msg := e.Message()
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

// Message renders the user-facing message templated from code and context.
func (e *Error) Message() string {
	subject := e.Context.APIID
	if subject == "" {
		subject = e.Context.Provider
	}
	if subject == "" {
		subject = e.Context.Source
	}

	var msg string
	switch e.Code {
	case CodeNetwork:
		msg = "unable to reach the API directory"
	case CodeTimeout:
		msg = "the API directory did not respond in time"
	case CodeValidation:
		msg = "the request or document failed validation"
	case CodeNotFound:
		msg = "the requested API was not found"
	case CodeRateLimit:
		msg = "the API directory is rate limiting requests"
	case CodeCache:
		msg = "cache operation failed"
	case CodeSpecParse:
		msg = "the specification could not be parsed"
	case CodeAuth:
		msg = "access to the API directory was denied"
	case CodeServer:
		msg = "the API directory reported a server error"
	default:
		msg = "an unexpected error occurred"
	}

	if subject != "" {
		msg = fmt.Sprintf("%s (%s)", msg, subject)
	}
	if e.Context.Operation != "" {
		msg = fmt.Sprintf("%s during %s", msg, e.Context.Operation)
	}
	return msg
}

func New(code Code, ctx Context, cause error) *Error {
	return &Error{Code: code, Context: ctx, cause: cause}
}

// FromHTTPStatus maps an HTTP status code to a taxonomy member.
func FromHTTPStatus(status int, ctx Context, cause error) *Error {
	var code Code
	switch {
	case status == 404:
		code = CodeNotFound
	case status == 401 || status == 403:
		code = CodeAuth
	case status == 429:
		code = CodeRateLimit
	case status >= 500:
		code = CodeServer
	default:
		code = CodeUnknown
	}
	return New(code, ctx, cause)
}

// Classify maps transport-level errors to taxonomy members. Anything
// unrecognized becomes UnknownError rather than crashing.
func Classify(err error, ctx Context) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return New(CodeTimeout, ctx, err)
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return New(CodeNetwork, ctx, err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return New(CodeNetwork, ctx, err)
	}
	if errors.Is(err, syscall.ETIMEDOUT) || errors.Is(err, os.ErrDeadlineExceeded) {
		return New(CodeTimeout, ctx, err)
	}

	// gorequest surfaces some transport failures as strings only.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "no such host"):
		return New(CodeNetwork, ctx, err)
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return New(CodeTimeout, ctx, err)
	}
	return New(CodeUnknown, ctx, err)
}

// Retryable reports whether an operation failing with the given code is
// worth retrying. Retry execution itself is the caller's responsibility.
func Retryable(code Code) bool {
	switch code {
	case CodeNetwork, CodeTimeout, CodeRateLimit, CodeServer:
		return true
	}
	return false
}
