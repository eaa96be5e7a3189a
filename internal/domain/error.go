package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound             = errors.New("entity not found")
	ErrAlreadyExists        = errors.New("entity already exists")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrSessionInvalid       = errors.New("stored session token rejected")
	ErrAssistantUnavailable = errors.New("assistant unavailable")
	ErrVoiceUnsupported     = errors.New("voice capability not supported")
	ErrLoginRequired        = errors.New("login required")
	ErrEngineClosed         = errors.New("assistant engine closed")
	ErrRequestPending       = errors.New("request already pending")
)

// AuthError is returned by login and signup when the backend (or local
// validation) rejects the request. Message is safe to show to the user.
type AuthError struct {
	Op      string // "login" | "signup"
	Status  int    // HTTP status, 0 when no response was received
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ContentError reports a failed personalize or translate request.
type ContentError struct {
	Op      string
	Message string
	Err     error
}

func (e *ContentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *ContentError) Unwrap() error { return e.Err }
