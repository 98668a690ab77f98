package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"code.meridianbank.io/meridian-go/logging"
	"code.meridianbank.io/meridian-go/metrics"

	"golang.org/x/sync/singleflight"
)

const (
	installationPath  = "/installation"
	devicePath        = "/device-server"
	sessionPath       = "/session-server"
	sessionDeletePath = "/session"

	stepInstall         = "install"
	stepRegisterDevice  = "register_device"
	stepRegisterSession = "register_session"
	stepDestroySession  = "destroy_session"

	renewalTimeout = 30 * time.Second
)

// DeviceOptions describes the device on first registration.
type DeviceOptions struct {
	Description  string
	PermittedIPs []string
}

// Handshake drives the trust establishment sequence with the platform and
// owns every mutation of the credential snapshot. Concurrent callers of the
// same step share one attempt, and the background renewer goes through the
// same guard as explicit calls.
type Handshake struct {
	log       *logging.Logger
	cfg       Config
	store     *Store
	requester *Requester
	renewer   *Renewer

	// mu serializes every read-modify-write of the snapshot.
	mu     sync.Mutex
	flight singleflight.Group
	apiKey string
}

func NewHandshake(log *logging.Logger, cfg Config, st *Store, requester *Requester) *Handshake {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	h := &Handshake{
		log:       log,
		cfg:       cfg,
		store:     st,
		requester: requester,
	}
	h.renewer = NewRenewer(log, cfg.RenewalMargin.Get(), h.renewSession)
	return h
}

// Install establishes the trust anchor with the platform. It is idempotent:
// with a valid installation already persisted it returns without a network
// call.
func (h *Handshake) Install(ctx context.Context) error {
	_, err, _ := h.flight.Do(stepInstall, func() (interface{}, error) {
		return nil, h.install(ctx)
	})
	return err
}

func (h *Handshake) install(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	snapshot, err := h.store.Load()
	if err != nil {
		return err
	}
	if snapshot.KeyPair == nil {
		return ErrDeviceKeyRequired
	}
	if snapshot.Installation != nil {
		return nil
	}

	outcome := "failure"
	defer func() { metrics.HandshakeStepInc(stepInstall, outcome) }()

	body, err := json.Marshal(installationRequest{
		ClientPublicKey: string(snapshot.KeyPair.PublicPEM()),
	})
	if err != nil {
		return err
	}

	// The installation is the one unauthenticated call: no trust anchor
	// exists yet to sign with.
	responseBody, err := h.requester.Do(ctx, http.MethodPost, installationPath, nil, body, Auth{})
	if err != nil {
		return NewInstallationError(err)
	}

	items, err := decodeItems(responseBody)
	if err != nil {
		return NewInstallationError(err)
	}

	token := &tokenItem{}
	found, err := decodeWrapper(items, "Token", token)
	if err != nil {
		return NewInstallationError(err)
	}
	if !found || token.Token == "" {
		return NewInstallationError(ErrMissingInstallationToken)
	}

	serverKey := &serverKeyItem{}
	found, err = decodeWrapper(items, "ServerPublicKey", serverKey)
	if err != nil {
		return NewInstallationError(err)
	}
	if !found || serverKey.ServerPublicKey == "" {
		// Without the platform key no response can ever be verified. This is
		// a misconfiguration, not something to retry.
		return NewInstallationError(ErrMissingServerKey)
	}

	installation, err := NewInstallation(Token(token.Token), []byte(serverKey.ServerPublicKey))
	if err != nil {
		return NewInstallationError(err)
	}

	if err := h.store.SaveInstallation(installation, snapshot.KeyPair.Fingerprint()); err != nil {
		return err
	}

	outcome = "ok"
	h.log.Info("installation established",
		logging.String("key-fingerprint", snapshot.KeyPair.Fingerprint()),
	)
	return nil
}

// RegisterDevice binds the API key to the installed device identity. It is
// idempotent per installation. A rejection of the credentials wipes the local
// chain: nothing downstream can succeed on a bad device registration.
func (h *Handshake) RegisterDevice(ctx context.Context, apiKey, description string, permittedIPs []string) error {
	_, err, _ := h.flight.Do(stepRegisterDevice, func() (interface{}, error) {
		return nil, h.registerDevice(ctx, apiKey, description, permittedIPs)
	})
	return err
}

func (h *Handshake) registerDevice(ctx context.Context, apiKey, description string, permittedIPs []string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	snapshot, err := h.store.Load()
	if err != nil {
		return err
	}
	if snapshot.Installation == nil {
		return ErrInstallationRequired
	}
	if snapshot.Device != nil {
		return nil
	}

	outcome := "failure"
	defer func() { metrics.HandshakeStepInc(stepRegisterDevice, outcome) }()

	body, err := json.Marshal(deviceRequest{
		Description:  description,
		Secret:       apiKey,
		PermittedIPs: permittedIPs,
	})
	if err != nil {
		return err
	}

	responseBody, err := h.requester.Do(ctx, http.MethodPost, devicePath, nil, body, h.installationAuth(snapshot))
	if err != nil {
		if h.resetOnFatalCredential(err) {
			h.log.Warn("the platform rejected the device registration, credentials reset",
				logging.Error(err),
			)
			return fmt.Errorf("the device registration was rejected: %w", err)
		}
		return fmt.Errorf("the device registration failed: %w", err)
	}

	items, err := decodeItems(responseBody)
	if err != nil {
		return err
	}
	id := &idItem{}
	found, err := decodeWrapper(items, "Id", id)
	if err != nil {
		return err
	}
	if !found || id.ID == "" {
		return ErrMissingDeviceID
	}

	device := &Device{
		ID:           id.ID,
		Description:  description,
		PermittedIPs: permittedIPs,
	}
	if err := h.store.SaveDevice(device, snapshot.Installation.Token); err != nil {
		return err
	}

	outcome = "ok"
	h.log.Info("device registered", logging.String("device-id", device.ID))
	return nil
}

// RegisterSession exchanges the API key for a session token. While the
// current session is still valid it is returned without a network call. The
// response must carry exactly one recognized user record: an unknown kind is
// fatal and nothing gets persisted.
func (h *Handshake) RegisterSession(ctx context.Context, apiKey string) (*Session, error) {
	v, err, _ := h.flight.Do(stepRegisterSession, func() (interface{}, error) {
		return h.registerSession(ctx, apiKey, "")
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (h *Handshake) registerSession(ctx context.Context, apiKey, renewingTokenID string) (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	snapshot, err := h.store.Load()
	if err != nil {
		return nil, err
	}
	if snapshot.Device == nil {
		return nil, ErrDeviceRegistrationRequired
	}

	now := time.Now()
	if renewingTokenID != "" {
		// A renewal acts only on the exact session it was armed for.
		// Anything else means a destroy or an explicit registration raced
		// ahead, and that one wins.
		if snapshot.Session == nil || snapshot.Session.TokenID != renewingTokenID {
			return nil, errRenewalSuperseded
		}
	} else if snapshot.Session.Valid(now) {
		return snapshot.Session, nil
	}

	outcome := "failure"
	defer func() { metrics.HandshakeStepInc(stepRegisterSession, outcome) }()

	body, err := json.Marshal(sessionRequest{Secret: apiKey})
	if err != nil {
		return nil, err
	}

	responseBody, err := h.requester.Do(ctx, http.MethodPost, sessionPath, nil, body, h.installationAuth(snapshot))
	if err != nil {
		if h.resetOnFatalCredential(err) {
			h.log.Warn("the platform rejected the session registration, credentials reset",
				logging.Error(err),
			)
			return nil, fmt.Errorf("the session registration was rejected: %w", err)
		}
		return nil, fmt.Errorf("the session registration failed: %w", err)
	}

	items, err := decodeItems(responseBody)
	if err != nil {
		return nil, err
	}

	id := &idItem{}
	found, err := decodeWrapper(items, "Id", id)
	if err != nil {
		return nil, err
	}
	if !found || id.ID == "" {
		return nil, ErrMissingSessionID
	}

	token := &tokenItem{}
	found, err = decodeWrapper(items, "Token", token)
	if err != nil {
		return nil, err
	}
	if !found || token.Token == "" {
		return nil, ErrMissingSessionToken
	}

	user, err := parseUser(items)
	if err != nil {
		return nil, err
	}
	if user.SessionTimeout() <= 0 {
		return nil, ErrMissingSessionExpiry
	}

	session := &Session{
		ID:        id.ID,
		Token:     Token(token.Token),
		TokenID:   token.ID,
		ExpiresAt: now.Add(user.SessionTimeout()),
		User:      user,
		DeviceID:  snapshot.Device.ID,
	}
	if err := h.store.SaveSession(session); err != nil {
		return nil, err
	}
	h.apiKey = apiKey

	if !h.cfg.DisableRenewal {
		h.renewer.Arm(session.ExpiresAt, session.TokenID)
	}

	outcome = "ok"
	metrics.ActiveSessionSet(true)
	h.log.Info("session registered",
		logging.String("session-id", session.ID),
		logging.String("user-kind", string(user.Kind())),
		logging.Time("expires-at", session.ExpiresAt),
	)
	return session, nil
}

// EnsureSession walks the whole chain: device key, installation, device
// registration, session. Steps already satisfied by persisted state are
// skipped.
func (h *Handshake) EnsureSession(ctx context.Context, apiKey string, device DeviceOptions) (*Session, error) {
	if _, err := EnsureKeyPair(h.store, h.cfg.KeySize); err != nil {
		return nil, err
	}
	if err := h.Install(ctx); err != nil {
		return nil, err
	}
	if err := h.RegisterDevice(ctx, apiKey, device.Description, device.PermittedIPs); err != nil {
		return nil, err
	}
	return h.RegisterSession(ctx, apiKey)
}

// DestroySession invalidates the session server-side on a best-effort basis
// and unconditionally clears it locally: the credential must not be reused
// either way.
func (h *Handshake) DestroySession(ctx context.Context) error {
	_, err, _ := h.flight.Do(stepDestroySession, func() (interface{}, error) {
		return nil, h.destroySession(ctx)
	})
	return err
}

func (h *Handshake) destroySession(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.renewer.Cancel()

	snapshot, err := h.store.Load()
	if err != nil {
		return err
	}
	if snapshot.Session == nil {
		return nil
	}

	outcome := "failure"
	defer func() { metrics.HandshakeStepInc(stepDestroySession, outcome) }()

	if _, err := h.requester.Do(ctx, http.MethodDelete, sessionDeletePath+"/"+snapshot.Session.ID, nil, nil, h.sessionAuth(snapshot)); err != nil {
		h.log.Warn("couldn't destroy the session server-side", logging.Error(err))
	} else {
		outcome = "ok"
	}

	if err := h.store.DeleteSession(); err != nil {
		return err
	}

	metrics.ActiveSessionSet(false)
	h.log.Info("session destroyed", logging.String("session-id", snapshot.Session.ID))
	return nil
}

// Reset wipes the installation, the device registration, the session and the
// OAuth token, keeping the key pair. The next chain starts from scratch.
func (h *Handshake) Reset() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.renewer.Cancel()
	if err := h.store.Reset(); err != nil {
		return err
	}

	metrics.ActiveSessionSet(false)
	h.log.Info("credentials reset")
	return nil
}

// Status derives where the client stands in the handshake sequence.
func (h *Handshake) Status() (Status, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	snapshot, err := h.store.Load()
	if err != nil {
		return "", err
	}
	return snapshot.Status(time.Now()), nil
}

// SessionAuth hands out the credential material of the active session.
func (h *Handshake) SessionAuth() (Auth, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	snapshot, err := h.store.Load()
	if err != nil {
		return Auth{}, err
	}
	if !snapshot.Session.Valid(time.Now()) {
		return Auth{}, ErrNoActiveSession
	}
	return h.sessionAuth(snapshot), nil
}

func (h *Handshake) installationAuth(snapshot *Snapshot) Auth {
	return Auth{
		Token:     snapshot.Installation.Token,
		KeyPair:   snapshot.KeyPair,
		ServerKey: snapshot.Installation.ServerKey,
	}
}

func (h *Handshake) sessionAuth(snapshot *Snapshot) Auth {
	return Auth{
		Token:     snapshot.Session.Token,
		KeyPair:   snapshot.KeyPair,
		ServerKey: snapshot.Installation.ServerKey,
	}
}

// resetOnFatalCredential wipes the credential chain when the platform
// rejected the credentials themselves. It reports whether it did.
func (h *Handshake) resetOnFatalCredential(err error) bool {
	apiErr := &APIError{}
	if !errors.As(err, &apiErr) || !apiErr.IsFatalCredential() {
		return false
	}

	if resetErr := h.store.Reset(); resetErr != nil {
		h.log.Error("couldn't reset the credentials", logging.Error(resetErr))
	}
	h.renewer.Cancel()
	metrics.ActiveSessionSet(false)
	return true
}

func (h *Handshake) renewSession(tokenID string) {
	ctx, cancel := context.WithTimeout(context.Background(), renewalTimeout)
	defer cancel()

	h.mu.Lock()
	apiKey := h.apiKey
	h.mu.Unlock()
	if apiKey == "" {
		metrics.SessionRenewalInc("skipped")
		return
	}

	if _, err := h.registerSession(ctx, apiKey, tokenID); err != nil {
		if errors.Is(err, errRenewalSuperseded) {
			h.log.Debug("session renewal superseded")
			metrics.SessionRenewalInc("superseded")
			return
		}
		// Reported, not fatal. The next use observes the expired session and
		// re-runs the handshake.
		h.log.Warn("couldn't renew the session", logging.Error(err))
		metrics.SessionRenewalInc("failure")
		return
	}

	metrics.SessionRenewalInc("ok")
	h.log.Debug("session renewed")
}
