package session_test

import (
	"testing"
	"time"

	"code.meridianbank.io/meridian-go/session"

	"github.com/stretchr/testify/assert"
)

func TestSnapshot(t *testing.T) {
	t.Run("The status follows the credential chain", testSnapshotTheStatusFollowsTheCredentialChain)
	t.Run("A session is only valid until its expiry", testSnapshotASessionIsOnlyValidUntilItsExpiry)
}

func testSnapshotTheStatusFollowsTheCredentialChain(t *testing.T) {
	// given
	now := time.Now()
	snapshot := &session.Snapshot{}

	// then
	assert.Equal(t, session.StatusUninitialized, snapshot.Status(now))

	// when
	snapshot.Installation = &session.Installation{Token: "installation-token"}

	// then
	assert.Equal(t, session.StatusInstalled, snapshot.Status(now))

	// when
	snapshot.Device = &session.Device{ID: "device-1"}

	// then
	assert.Equal(t, session.StatusDeviceRegistered, snapshot.Status(now))

	// when
	snapshot.Session = &session.Session{
		ID:        "session-1",
		Token:     "session-token",
		ExpiresAt: now.Add(-time.Second),
	}

	// then
	assert.Equal(t, session.StatusSessionExpired, snapshot.Status(now))

	// when
	snapshot.Session.ExpiresAt = now.Add(time.Hour)

	// then
	assert.Equal(t, session.StatusSessionActive, snapshot.Status(now))
}

func testSnapshotASessionIsOnlyValidUntilItsExpiry(t *testing.T) {
	// given
	now := time.Now()

	var missing *session.Session

	// then
	assert.False(t, missing.Valid(now))

	// given
	sess := &session.Session{Token: "session-token", ExpiresAt: now.Add(time.Minute)}

	// then
	assert.True(t, sess.Valid(now))
	assert.False(t, sess.Valid(sess.ExpiresAt))
	assert.False(t, sess.Valid(sess.ExpiresAt.Add(time.Second)))

	// given
	tokenless := &session.Session{ExpiresAt: now.Add(time.Minute)}

	// then
	assert.False(t, tokenless.Valid(now))
}
