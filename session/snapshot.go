package session

import (
	"crypto/rsa"
	"encoding/hex"
	"time"

	"code.meridianbank.io/meridian-go/crypto"
	mbcrypto "code.meridianbank.io/meridian-go/libs/crypto"
)

const (
	StatusUninitialized    Status = "uninitialized"
	StatusInstalled        Status = "installed"
	StatusDeviceRegistered Status = "device_registered"
	StatusSessionActive    Status = "session_active"
	StatusSessionExpired   Status = "session_expired"
)

// Status locates a client in the handshake sequence. It is derived from the
// snapshot, never stored.
type Status string

// Installation is the trust anchor established with the platform: an opaque
// token bound to the device public key, and the platform key used to verify
// response signatures and wrap request body keys.
type Installation struct {
	Token        Token
	ServerKeyPEM []byte
	ServerKey    *rsa.PublicKey
}

func NewInstallation(token Token, serverKeyPEM []byte) (*Installation, error) {
	serverKey, err := crypto.PublicKeyFromPEM(serverKeyPEM)
	if err != nil {
		return nil, err
	}
	return &Installation{
		Token:        token,
		ServerKeyPEM: serverKeyPEM,
		ServerKey:    serverKey,
	}, nil
}

// Device is the registration binding an API key to the installation.
type Device struct {
	ID           string
	Description  string
	PermittedIPs []string
}

// Session is the active authenticated context with the platform.
type Session struct {
	ID        string
	Token     Token
	TokenID   string
	ExpiresAt time.Time
	User      User
	DeviceID  string
}

// Valid reports whether the session can still authenticate calls. Expiry is
// checked here, on every use, not only by the background renewer.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && !s.Token.IsEmpty() && now.Before(s.ExpiresAt)
}

// Snapshot is the full credential state of one client. The entities form a
// chain: the installation is bound to the key pair, the device to the
// installation, the session to the device. An entity whose upstream binding
// doesn't hold is absent, never partially restored.
type Snapshot struct {
	KeyPair      *crypto.KeyPair
	Installation *Installation
	Device       *Device
	Session      *Session
}

func (s *Snapshot) Status(now time.Time) Status {
	switch {
	case s.Installation == nil:
		return StatusUninitialized
	case s.Device == nil:
		return StatusInstalled
	case s.Session == nil:
		return StatusDeviceRegistered
	case !s.Session.Valid(now):
		return StatusSessionExpired
	default:
		return StatusSessionActive
	}
}

// installationDigest ties downstream entities to the installation token
// without persisting the token a second time.
func installationDigest(token Token) string {
	return hex.EncodeToString(mbcrypto.Hash([]byte(token)))
}
