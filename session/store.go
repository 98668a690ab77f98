package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"code.meridianbank.io/meridian-go/crypto"
	"code.meridianbank.io/meridian-go/store"
)

const (
	deviceKeyEntry    = "device_key"
	installationEntry = "installation"
	deviceEntry       = "device"
	sessionEntry      = "session"
	oauthTokenEntry   = "oauth_token"
)

const recordVersion = 1

type deviceKeyRecord struct {
	Version    uint32 `json:"version"`
	PrivateKey string `json:"private_key"`
}

type installationRecord struct {
	Version        uint32 `json:"version"`
	Token          string `json:"token"`
	ServerKey      string `json:"server_public_key"`
	KeyFingerprint string `json:"key_fingerprint"`
}

type deviceRecord struct {
	Version            uint32   `json:"version"`
	ID                 string   `json:"id"`
	Description        string   `json:"description"`
	PermittedIPs       []string `json:"permitted_ips,omitempty"`
	InstallationDigest string   `json:"installation_digest"`
}

type sessionRecord struct {
	Version   uint32    `json:"version"`
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
	DeviceID  string    `json:"device_id"`
}

// Store reads and writes the credential snapshot. Each entity lives under its
// own entry so partial resets stay possible.
type Store struct {
	kv store.KV
}

func NewStore(kv store.KV) *Store {
	return &Store{kv: kv}
}

// DeviceKey returns the persisted device key pair. Corrupt material surfaces
// as ErrCorruptedDeviceKey, never as a silent regeneration: the platform
// trusts the key it saw at installation time.
func (s *Store) DeviceKey() (*crypto.KeyPair, error) {
	buf, err := s.kv.Get(deviceKeyEntry)
	if err != nil {
		return nil, err
	}

	record := &deviceKeyRecord{}
	if err := json.Unmarshal(buf, record); err != nil {
		return nil, ErrCorruptedDeviceKey
	}
	keyPair, err := crypto.KeyPairFromPEM([]byte(record.PrivateKey))
	if err != nil {
		return nil, ErrCorruptedDeviceKey
	}
	return keyPair, nil
}

func (s *Store) SaveDeviceKey(keyPair *crypto.KeyPair) error {
	buf, err := json.Marshal(deviceKeyRecord{
		Version:    recordVersion,
		PrivateKey: string(keyPair.PrivatePEM()),
	})
	if err != nil {
		return err
	}
	if err := s.kv.Set(deviceKeyEntry, buf); err != nil {
		return fmt.Errorf("couldn't save the device key: %w", err)
	}
	return nil
}

func (s *Store) SaveInstallation(installation *Installation, keyFingerprint string) error {
	buf, err := json.Marshal(installationRecord{
		Version:        recordVersion,
		Token:          installation.Token.String(),
		ServerKey:      string(installation.ServerKeyPEM),
		KeyFingerprint: keyFingerprint,
	})
	if err != nil {
		return err
	}
	if err := s.kv.Set(installationEntry, buf); err != nil {
		return fmt.Errorf("couldn't save the installation: %w", err)
	}
	return nil
}

func (s *Store) SaveDevice(device *Device, installationToken Token) error {
	buf, err := json.Marshal(deviceRecord{
		Version:            recordVersion,
		ID:                 device.ID,
		Description:        device.Description,
		PermittedIPs:       device.PermittedIPs,
		InstallationDigest: installationDigest(installationToken),
	})
	if err != nil {
		return err
	}
	if err := s.kv.Set(deviceEntry, buf); err != nil {
		return fmt.Errorf("couldn't save the device registration: %w", err)
	}
	return nil
}

func (s *Store) SaveSession(session *Session) error {
	buf, err := json.Marshal(sessionRecord{
		Version:   recordVersion,
		ID:        session.ID,
		Token:     session.Token.String(),
		TokenID:   session.TokenID,
		ExpiresAt: session.ExpiresAt,
		User:      session.User,
		DeviceID:  session.DeviceID,
	})
	if err != nil {
		return err
	}
	if err := s.kv.Set(sessionEntry, buf); err != nil {
		return fmt.Errorf("couldn't save the session: %w", err)
	}
	return nil
}

func (s *Store) DeleteSession() error {
	if err := s.kv.Remove(sessionEntry); err != nil {
		return fmt.Errorf("couldn't remove the session: %w", err)
	}
	return nil
}

// SetOAuthToken persists the delegated-access token. The bytes are opaque to
// this package.
func (s *Store) SetOAuthToken(data []byte) error {
	if err := s.kv.Set(oauthTokenEntry, data); err != nil {
		return fmt.Errorf("couldn't save the OAuth token: %w", err)
	}
	return nil
}

func (s *Store) OAuthToken() ([]byte, error) {
	return s.kv.Get(oauthTokenEntry)
}

func (s *Store) DeleteOAuthToken() error {
	if err := s.kv.Remove(oauthTokenEntry); err != nil {
		return fmt.Errorf("couldn't remove the OAuth token: %w", err)
	}
	return nil
}

// Reset removes everything but the device key pair.
func (s *Store) Reset() error {
	for _, entry := range []string{installationEntry, deviceEntry, sessionEntry, oauthTokenEntry} {
		if err := s.kv.Remove(entry); err != nil {
			return fmt.Errorf("couldn't remove the %s entry: %w", entry, err)
		}
	}
	return nil
}

// Load rebuilds the snapshot from the persisted entries. An entity whose
// binding to its upstream entity doesn't hold is dropped, along with
// everything below it.
func (s *Store) Load() (*Snapshot, error) {
	snapshot := &Snapshot{}

	keyPair, err := s.DeviceKey()
	if err != nil {
		if !errors.Is(err, store.ErrEntryNotFound) {
			return nil, err
		}
		return snapshot, nil
	}
	snapshot.KeyPair = keyPair

	snapshot.Installation, err = s.loadInstallation(keyPair.Fingerprint())
	if err != nil {
		return nil, err
	}
	if snapshot.Installation == nil {
		return snapshot, nil
	}

	snapshot.Device, err = s.loadDevice(snapshot.Installation.Token)
	if err != nil {
		return nil, err
	}
	if snapshot.Device == nil {
		return snapshot, nil
	}

	snapshot.Session, err = s.loadSession(snapshot.Device.ID)
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *Store) loadInstallation(keyFingerprint string) (*Installation, error) {
	buf, err := s.kv.Get(installationEntry)
	if err != nil {
		if errors.Is(err, store.ErrEntryNotFound) {
			return nil, nil
		}
		return nil, err
	}

	record := &installationRecord{}
	if err := json.Unmarshal(buf, record); err != nil {
		return nil, fmt.Errorf("couldn't parse the installation entry: %w", err)
	}
	if record.KeyFingerprint != keyFingerprint {
		// The device key changed since the installation was established.
		return nil, nil
	}

	installation, err := NewInstallation(Token(record.Token), []byte(record.ServerKey))
	if err != nil {
		return nil, fmt.Errorf("couldn't parse the platform public key: %w", err)
	}
	return installation, nil
}

func (s *Store) loadDevice(installationToken Token) (*Device, error) {
	buf, err := s.kv.Get(deviceEntry)
	if err != nil {
		if errors.Is(err, store.ErrEntryNotFound) {
			return nil, nil
		}
		return nil, err
	}

	record := &deviceRecord{}
	if err := json.Unmarshal(buf, record); err != nil {
		return nil, fmt.Errorf("couldn't parse the device entry: %w", err)
	}
	if record.InstallationDigest != installationDigest(installationToken) {
		return nil, nil
	}

	return &Device{
		ID:           record.ID,
		Description:  record.Description,
		PermittedIPs: record.PermittedIPs,
	}, nil
}

func (s *Store) loadSession(deviceID string) (*Session, error) {
	buf, err := s.kv.Get(sessionEntry)
	if err != nil {
		if errors.Is(err, store.ErrEntryNotFound) {
			return nil, nil
		}
		return nil, err
	}

	record := &sessionRecord{}
	if err := json.Unmarshal(buf, record); err != nil {
		return nil, fmt.Errorf("couldn't parse the session entry: %w", err)
	}
	if record.DeviceID != deviceID {
		return nil, nil
	}

	return &Session{
		ID:        record.ID,
		Token:     Token(record.Token),
		TokenID:   record.TokenID,
		ExpiresAt: record.ExpiresAt,
		User:      record.User,
		DeviceID:  record.DeviceID,
	}, nil
}
