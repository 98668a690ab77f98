package session

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCorruptedDeviceKey         = errors.New("the persisted device key is corrupted, rotate it explicitly before retrying")
	ErrDeviceKeyRequired          = errors.New("no device key pair is available, generate one first")
	ErrDeviceRegistrationRequired = errors.New("no device registration is available, register the device first")
	ErrInstallationRequired       = errors.New("no installation is available, run the installation step first")
	ErrMissingDecryptionKey       = errors.New("the response body is encrypted but no device key is available to decrypt it")
	ErrMissingDeviceID            = errors.New("the device registration response doesn't carry an identifier")
	ErrMissingInstallationToken   = errors.New("the installation response doesn't carry a token")
	ErrMissingServerKey           = errors.New("the installation response doesn't carry the platform public key")
	ErrMissingSessionExpiry       = errors.New("the session response doesn't carry a usable expiry")
	ErrMissingSessionID           = errors.New("the session response doesn't carry an identifier")
	ErrMissingSessionToken        = errors.New("the session response doesn't carry a token")
	ErrMissingUserRecord          = errors.New("the session response doesn't carry a user record")
	ErrMultipleUserRecords        = errors.New("the session response carries more than one user record")
	ErrNoActiveSession            = errors.New("no active session is available, register one first")
	ErrResponseIntegrity          = errors.New("the response signature doesn't match its content")
)

var errRenewalSuperseded = errors.New("the session renewal was superseded")

// APIError is a final response from the platform with a non-success status.
type APIError struct {
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("the platform responded with status %d: %s", e.StatusCode, strings.Join(e.Messages, ", "))
}

// IsTransient reports whether replaying the exact same request may succeed.
func (e *APIError) IsTransient() bool {
	return e.StatusCode >= 500
}

// IsFatalCredential reports whether the platform rejected the credentials
// themselves. Replaying cannot succeed and the local credential chain has to
// be rebuilt.
func (e *APIError) IsFatalCredential() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// InstallationError reports a failed installation exchange.
type InstallationError struct {
	Cause error
}

func NewInstallationError(cause error) InstallationError {
	return InstallationError{Cause: cause}
}

func (e InstallationError) Error() string {
	return fmt.Sprintf("the installation failed: %v", e.Cause)
}

func (e InstallationError) Unwrap() error {
	return e.Cause
}

// UnknownUserKindError reports a session response whose user record is of a
// kind this library doesn't recognize.
type UnknownUserKindError struct {
	Kind string
}

func NewUnknownUserKindError(kind string) UnknownUserKindError {
	return UnknownUserKindError{Kind: kind}
}

func (e UnknownUserKindError) Error() string {
	return fmt.Sprintf("the user kind %q is not supported", e.Kind)
}
