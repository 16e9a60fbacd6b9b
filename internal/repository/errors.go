// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow handlers to distinguish
// between failure scenarios: ErrNotFound maps to HTTP 404, the two
// uniqueness errors to 400/409, and ErrCredencialesInvalidas to 401.
package repository

import "errors"

// ErrNotFound is returned when a record lookup by id, numero or token
// matches no row.
var ErrNotFound = errors.New("not found")

// ErrNumeroReservaExists is returned when creating or updating a
// reservation would duplicate an existing non-null numero_reserva.
var ErrNumeroReservaExists = errors.New("numero_reserva already exists")

// ErrUsernameExists is returned when creating an admin with a username
// that is already taken.
var ErrUsernameExists = errors.New("username already exists")

// ErrCredencialesInvalidas is returned by Authenticate when the username
// is unknown or the password does not match.  Both cases collapse into
// one sentinel so callers cannot probe for valid usernames.
var ErrCredencialesInvalidas = errors.New("invalid credentials")
