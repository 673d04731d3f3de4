// Package repository implements the data-access layer: one repo per entity,
// each holding the shared *sql.DB pool and issuing hand-written parameterized
// SQL. This file defines the three domain error kinds reused across
// repositories. Higher layers match them with errors.Is and translate them
// into HTTP status codes; repositories wrap them with a human-readable
// message at the point of detection.
package repository

import "errors"

// ErrAuthentication is returned when a credential is invalid or the caller's
// stored role does not permit the operation. Handlers translate it into an
// HTTP 401 response.
var ErrAuthentication = errors.New("authentication failed")

// ErrInvariant is returned when a write violates a domain invariant: a
// duplicate email or id_number, an invalid tooth code, or an update that
// affected no rows. Handlers translate it into an HTTP 400 response.
var ErrInvariant = errors.New("invariant violation")

// ErrNotFound is returned when a lookup by id or natural key matches no
// rows. Handlers translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")
