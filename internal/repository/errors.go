// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values let higher layers such as the
// booking ledger and handlers distinguish failure scenarios: ErrForbidden
// means the caller does not own the resource it is acting on, while
// ErrConflict means existing dependent state blocks the operation (for
// example deleting a room that still has active reservations).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot proceed because
// of conflicting state.  Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")
