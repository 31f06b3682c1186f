// Package api implements the client for the Byflash Drive HTTP API.
package api

import (
	"errors"
	"strings"
)

// ErrSessionExpired indicates the server rejected the bearer token (HTTP 401).
// Callers must reset the session and send the user back to login.
var ErrSessionExpired = errors.New("session expired")

// ErrInvalidCredentials indicates a failed login attempt.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidPassword indicates a wrong folder or file password.
var ErrInvalidPassword = errors.New("invalid password")

// IsPasswordError checks if an error indicates a rejected password.
//
// Besides the wrapped ErrInvalidPassword sentinel, this matches the message
// patterns the server is known to emit for password failures so that errors
// surfaced through plain strings are still classified correctly.
func IsPasswordError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrInvalidPassword) {
		return true
	}

	errStr := strings.ToLower(err.Error())

	passwordIndicators := []string{
		"password incorrect",
		"incorrect password",
		"wrong password",
		"mot de passe",
	}

	for _, indicator := range passwordIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// IsSessionExpired checks if an error indicates an expired or rejected session.
func IsSessionExpired(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrSessionExpired) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "unauthorized") || strings.Contains(errStr, "status 401")
}
