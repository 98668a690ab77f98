package crypto_test

import (
	"testing"

	"code.meridianbank.io/meridian-go/crypto"
	mbrand "code.meridianbank.io/meridian-go/libs/rand"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyPair(t *testing.T) {
	t.Run("Generating a key pair with the default size succeeds", testGeneratingKeyPairWithDefaultSizeSucceeds)
	t.Run("Generating a key pair below the minimum size fails", testGeneratingKeyPairBelowMinimumSizeFails)
	t.Run("Generating a key pair above the maximum size fails", testGeneratingKeyPairAboveMaximumSizeFails)
	t.Run("Serializing then parsing the private key round trips", testSerializingThenParsingPrivateKeyRoundTrips)
	t.Run("Parsing a buffer without PEM block fails", testParsingBufferWithoutPEMBlockFails)
	t.Run("Parsing a PEM block of the wrong type fails", testParsingPEMBlockOfWrongTypeFails)
	t.Run("Parsing the public key PEM gives back the public key", testParsingPublicKeyPEMGivesBackPublicKey)
}

func testGeneratingKeyPairWithDefaultSizeSucceeds(t *testing.T) {
	// when
	keyPair, err := crypto.GenerateKeyPair(crypto.DefaultKeySize)

	// then
	require.NoError(t, err)
	assert.NotNil(t, keyPair)
	assert.Len(t, keyPair.Fingerprint(), 64)
}

func testGeneratingKeyPairBelowMinimumSizeFails(t *testing.T) {
	// when
	keyPair, err := crypto.GenerateKeyPair(1024)

	// then
	require.ErrorIs(t, err, crypto.ErrKeySizeTooSmall)
	assert.Nil(t, keyPair)
}

func testGeneratingKeyPairAboveMaximumSizeFails(t *testing.T) {
	// when
	keyPair, err := crypto.GenerateKeyPair(8192)

	// then
	require.ErrorIs(t, err, crypto.ErrKeySizeTooLarge)
	assert.Nil(t, keyPair)
}

func testSerializingThenParsingPrivateKeyRoundTrips(t *testing.T) {
	// given
	keyPair := generateKeyPair(t)

	// when
	restored, err := crypto.KeyPairFromPEM(keyPair.PrivatePEM())

	// then
	require.NoError(t, err)
	assert.Equal(t, keyPair.Fingerprint(), restored.Fingerprint())
	assert.Equal(t, keyPair.PublicPEM(), restored.PublicPEM())
}

func testParsingBufferWithoutPEMBlockFails(t *testing.T) {
	// when
	keyPair, err := crypto.KeyPairFromPEM([]byte(mbrand.RandomStr(20)))

	// then
	require.ErrorIs(t, err, crypto.ErrNotAPEMBlock)
	assert.Nil(t, keyPair)
}

func testParsingPEMBlockOfWrongTypeFails(t *testing.T) {
	// given
	keyPair := generateKeyPair(t)

	// when
	restored, err := crypto.KeyPairFromPEM(keyPair.PublicPEM())

	// then
	require.ErrorIs(t, err, crypto.ErrNotAnRSAPrivateKey)
	assert.Nil(t, restored)
}

func testParsingPublicKeyPEMGivesBackPublicKey(t *testing.T) {
	// given
	keyPair := generateKeyPair(t)

	// when
	pub, err := crypto.PublicKeyFromPEM(keyPair.PublicPEM())

	// then
	require.NoError(t, err)
	assert.Equal(t, keyPair.Public(), pub)
}

func TestSignature(t *testing.T) {
	t.Run("Signing the same payload twice gives the same signature", testSigningSamePayloadTwiceGivesSameSignature)
	t.Run("Verifying a valid signature succeeds", testVerifyingValidSignatureSucceeds)
	t.Run("Verifying a signature over a different payload fails", testVerifyingSignatureOverDifferentPayloadFails)
	t.Run("Verifying a signature with the wrong key fails", testVerifyingSignatureWithWrongKeyFails)
}

func testSigningSamePayloadTwiceGivesSameSignature(t *testing.T) {
	// given
	keyPair := generateKeyPair(t)
	payload := []byte(mbrand.RandomStr(20))

	// when
	sig1, err := keyPair.Sign(payload)

	// then
	require.NoError(t, err)

	// when
	sig2, err := keyPair.Sign(payload)

	// then
	require.NoError(t, err)
	assert.Equal(t, sig1, sig2)
}

func testVerifyingValidSignatureSucceeds(t *testing.T) {
	// given
	keyPair := generateKeyPair(t)
	payload := []byte(mbrand.RandomStr(20))

	// when
	sig, err := keyPair.Sign(payload)

	// then
	require.NoError(t, err)

	// when
	err = crypto.Verify(keyPair.Public(), payload, sig)

	// then
	require.NoError(t, err)
}

func testVerifyingSignatureOverDifferentPayloadFails(t *testing.T) {
	// given
	keyPair := generateKeyPair(t)
	payload := []byte(mbrand.RandomStr(20))

	// when
	sig, err := keyPair.Sign(payload)

	// then
	require.NoError(t, err)

	// when
	err = crypto.Verify(keyPair.Public(), []byte(mbrand.RandomStr(20)), sig)

	// then
	require.ErrorIs(t, err, crypto.ErrInvalidSignature)
}

func testVerifyingSignatureWithWrongKeyFails(t *testing.T) {
	// given
	keyPair := generateKeyPair(t)
	otherKeyPair := generateKeyPair(t)
	payload := []byte(mbrand.RandomStr(20))

	// when
	sig, err := keyPair.Sign(payload)

	// then
	require.NoError(t, err)

	// when
	err = crypto.Verify(otherKeyPair.Public(), payload, sig)

	// then
	require.ErrorIs(t, err, crypto.ErrInvalidSignature)
}

func generateKeyPair(t *testing.T) *crypto.KeyPair {
	t.Helper()
	keyPair, err := crypto.GenerateKeyPair(crypto.DefaultKeySize)
	if err != nil {
		t.Fatalf("couldn't generate key pair: %v", err)
	}
	return keyPair
}
