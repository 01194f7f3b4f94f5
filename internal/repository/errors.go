// Package repository implements MySQL persistence for zones, seats,
// users and reservations.  The reservation repository doubles as the
// service layer's ReservationStore: its InTx method is the unit of
// work the admission controller relies on for conflict-free inserts.
// Sentinel values defined here let handlers distinguish failure
// scenarios; entity lookups that feed the service layer return the
// service package's NotFound sentinels instead so the core never has
// to import this package.
package repository

import "errors"

// ErrZoneNotFound is returned when a zone lookup yields no rows.
var ErrZoneNotFound = errors.New("zone not found")

// ErrUserNotFound is returned when a user lookup yields no rows.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken is returned when registering with an email that
// already exists.  Handlers should translate this into HTTP 409.
var ErrEmailTaken = errors.New("email already registered")

// ErrConflict is returned when a delete or update cannot be performed
// because of dependent records, such as deleting a zone that still
// owns seats or a seat with historical reservations.  Handlers should
// translate this into HTTP 409.
var ErrConflict = errors.New("conflict")
