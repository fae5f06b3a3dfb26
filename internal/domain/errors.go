package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is returned when a domain entity fails validation.
// The specific errors below wrap it.
var ErrValidation = errors.New("validation failed")

// Common validation errors for Subscriber
var (
	ErrEmptySubscriberID   = fmt.Errorf("%w: subscriber ID cannot be empty", ErrValidation)
	ErrMissingSubscribedAt = fmt.Errorf("%w: subscription time must be set", ErrValidation)
)
