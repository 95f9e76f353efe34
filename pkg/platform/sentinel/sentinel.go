package sentinel

import "errors"

// Sentinel errors for infrastructure facts. The backend client, lock stores and
// the circuit breaker return these (optionally wrapped) so the session layer
// can translate them into domain errors.
//
// - ErrNotFound: the backend or a store has no such record
// - ErrConflict: the record already exists (duplicate alias)
// - ErrUnavailable: transport failure, 5xx, or an open circuit
// - ErrRejected: the backend refused the request (4xx other than 404/409)
// - ErrInvalidState: the operation does not apply to the current state
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("unavailable")
	ErrRejected     = errors.New("rejected")
	ErrInvalidState = errors.New("invalid state")
)
