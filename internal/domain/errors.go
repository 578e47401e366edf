package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrRateLimited     = errors.New("rate limited")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUpstreamFetch   = errors.New("upstream fetch failed")
	ErrArtifact        = errors.New("artifact generation failed")
	ErrPersistence     = errors.New("persistence failed")
)
