package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvariantViolation signals the state machine was invoked in an inconsistent state.
// It is a programmer error and is fatal to the affected session only.
var ErrInvariantViolation = errors.New("dialogue invariant violation")

// ErrFactAlreadySet is returned when a collected fact would be overwritten.
var ErrFactAlreadySet = errors.New("fact already set")

// ErrIncompleteFacts is returned when evaluation is requested before all facts are known.
var ErrIncompleteFacts = errors.New("facts incomplete")
