// Package repository defines the store interfaces the handlers depend on
// and their MySQL and in-memory implementations. Sentinel errors let the
// handler layer map failures onto the client-visible error codes without
// inspecting driver errors.
package repository

import "errors"

// ErrEmailExists is returned when an insert or profile update would
// violate email uniqueness. Handlers translate it to EMAIL_ALREADY_EXISTS.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a user, token or coupon lookup matches
// nothing usable (including revoked refresh tokens).
var ErrNotFound = errors.New("not found")

// ErrExpired is returned when a refresh or reset token exists but is past
// its expiry. The distinction from ErrNotFound feeds the client's retry
// logic (REFRESH_EXPIRED vs REFRESH_INVALID).
var ErrExpired = errors.New("expired")
