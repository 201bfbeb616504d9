package model

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("record not found")

// ValidationError covers caller mistakes: dangling canonical references,
// unknown tenants, raw records without a provider-native identifier.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func NewMissingOriginIDError(provider, objectKind string) *ValidationError {
	return &ValidationError{
		Field:  "remote_id",
		Reason: fmt.Sprintf("no origin id on %s %s record", provider, objectKind),
	}
}

func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

type UpstreamErrorKind string

const (
	UpstreamAuth      UpstreamErrorKind = "auth"
	UpstreamRateLimit UpstreamErrorKind = "rate_limit"
	UpstreamTimeout   UpstreamErrorKind = "timeout"
	UpstreamMalformed UpstreamErrorKind = "malformed"
	UpstreamOther     UpstreamErrorKind = "other"
)

// UpstreamError wraps an adapter/network failure with enough context for the
// caller to retry or report: provider, object kind and tenant.
type UpstreamError struct {
	Kind         UpstreamErrorKind
	Provider     string
	ObjectKind   string
	LinkedUserID string
	Err          error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s upstream failure (%s) for %s of linked user %s: %v",
		e.Provider, e.Kind, e.ObjectKind, e.LinkedUserID, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func IsUpstreamError(err error) bool {
	_, ok := errors.Cause(err).(*UpstreamError)
	return ok
}

// UpstreamKindFromStatus maps a provider HTTP status to an error subcategory.
func UpstreamKindFromStatus(statusCode int) UpstreamErrorKind {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return UpstreamAuth
	case http.StatusTooManyRequests:
		return UpstreamRateLimit
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return UpstreamTimeout
	default:
		return UpstreamOther
	}
}

type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure on %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func IsPersistenceError(err error) bool {
	_, ok := errors.Cause(err).(*PersistenceError)
	return ok
}
