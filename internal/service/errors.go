package service

import "errors"

// Caller-correctable business errors. Anything else bubbling out of a
// service is an infrastructure failure and should be treated as opaque.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrTaskNotFound       = errors.New("task not found")
	ErrTimerRunning       = errors.New("another timer is already running")
	ErrNoActiveTimer      = errors.New("no active timer found for this task")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
