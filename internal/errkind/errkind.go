// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package errkind defines the domain-level error kinds used across the
// ingestion pipeline (spec §7) and a typed error carrying retry/provider
// metadata for the HTTP/SSE boundary to act on.
package errkind

import (
	"errors"
	"fmt"
)

// Kind is a closed enum of domain error kinds.
type Kind string

const (
	InvalidInput        Kind = "invalid_input"
	UnsupportedSource   Kind = "unsupported_source"
	SSRFBlocked         Kind = "ssrf_blocked"
	TooLarge            Kind = "too_large"
	InvalidPDF          Kind = "invalid_pdf"
	Network             Kind = "network"
	Timeout             Kind = "timeout"
	ProviderUnavailable Kind = "provider_unavailable"
	NotFound            Kind = "not_found"
	ParseFailure        Kind = "parse_failure"
	Conflict            Kind = "conflict"
	Cancelled           Kind = "cancelled"
	Internal            Kind = "internal"
)

// Retryable reports whether a retry by the caller (beyond the broker's own
// retry budget) is ever worth attempting for this kind.
func (k Kind) Retryable() bool {
	switch k {
	case Network, Timeout, ProviderUnavailable:
		return true
	default:
		return false
	}
}

// Error wraps a domain Kind with the failing provider (if any) and the
// original cause, without surfacing the raw provider error as primary text.
type Error struct {
	Kind     Kind
	Provider string
	Stage    string
	Cause    error
}

func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Provider, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error for the given kind, wrapping cause.
func New(kind Kind, provider string, cause error) *Error {
	return &Error{Kind: kind, Provider: provider, Cause: cause}
}

// As extracts an *Error from err, reporting ok=false with an
// Error{Kind: Internal, Cause: err} fallback when err does not carry a
// domain kind.
func As(err error) (*Error, bool) {
	var de *Error
	if ok := errors.As(err, &de); ok {
		return de, true
	}
	return &Error{Kind: Internal, Cause: err}, false
}
