package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and adapters return
// these (optionally wrapped) so services can translate them into domain errors.
//
// - ErrNotFound: artifact or template does not exist
// - ErrExpired: artifact is older than the retention window
// - ErrUnavailable: external service (language model, converter, store) unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrExpired     = errors.New("expired")
	ErrUnavailable = errors.New("unavailable")
)
