// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrUnauthorized indicates the shop token is missing or does not resolve
// to a configured shop profile.
var ErrUnauthorized = errors.New("invalid token")

// ErrValidation indicates an inbound record failed field validation.
var ErrValidation = errors.New("validation")
