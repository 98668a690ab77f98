package crypto

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
)

const (
	// DefaultKeySize is the key size used when the caller doesn't require a
	// specific one.
	DefaultKeySize = 2048
	// MinKeySize is the smallest key size the platform accepts.
	MinKeySize = 2048
	// MaxKeySize is the largest key size the platform accepts.
	MaxKeySize = 4096

	privateKeyPEMType = "RSA PRIVATE KEY"
	publicKeyPEMType  = "PUBLIC KEY"
)

// KeyPair wraps the RSA key pair identifying the device on the platform. The
// private key never leaves the pair, signing and decryption go through it.
type KeyPair struct {
	priv        *rsa.PrivateKey
	fingerprint string
}

// GenerateKeyPair creates a new RSA key pair of the given size. The size is
// checked against the lower and upper bound separately, so the caller can
// tell which one was violated.
func GenerateKeyPair(size int) (*KeyPair, error) {
	if size < MinKeySize {
		return nil, ErrKeySizeTooSmall
	}
	if size > MaxKeySize {
		return nil, ErrKeySizeTooLarge
	}

	priv, err := rsa.GenerateKey(rand.Reader, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyGenerationFailed, err)
	}

	return newKeyPair(priv)
}

// KeyPairFromPEM rebuilds a key pair from a PKCS #1 private key PEM block,
// as produced by PrivatePEM.
func KeyPairFromPEM(privPEM []byte) (*KeyPair, error) {
	block, _ := pem.Decode(privPEM)
	if block == nil {
		return nil, ErrNotAPEMBlock
	}
	if block.Type != privateKeyPEMType {
		return nil, ErrNotAnRSAPrivateKey
	}

	priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse RSA private key: %w", err)
	}

	return newKeyPair(priv)
}

func newKeyPair(priv *rsa.PrivateKey) (*KeyPair, error) {
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("couldn't marshal RSA public key: %w", err)
	}
	digest := sha256.Sum256(der)

	return &KeyPair{
		priv:        priv,
		fingerprint: hex.EncodeToString(digest[:]),
	}, nil
}

// Public returns the public half of the pair.
func (k *KeyPair) Public() *rsa.PublicKey {
	return &k.priv.PublicKey
}

// Fingerprint returns the hex encoded SHA-256 digest of the public key in
// PKIX DER form. It identifies the pair across restarts.
func (k *KeyPair) Fingerprint() string {
	return k.fingerprint
}

// PrivatePEM serializes the private key as a PKCS #1 PEM block.
func (k *KeyPair) PrivatePEM() []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  privateKeyPEMType,
		Bytes: x509.MarshalPKCS1PrivateKey(k.priv),
	})
}

// PublicPEM serializes the public key as a PKIX PEM block, the form the
// platform expects during installation.
func (k *KeyPair) PublicPEM() []byte {
	der, err := x509.MarshalPKIXPublicKey(&k.priv.PublicKey)
	if err != nil {
		// Already marshalled once when the pair was built.
		panic(err)
	}
	return pem.EncodeToMemory(&pem.Block{
		Type:  publicKeyPEMType,
		Bytes: der,
	})
}

// Sign signs the payload with PKCS #1 v1.5 over its SHA-256 digest. Signing
// the same payload twice gives the same signature.
func (k *KeyPair) Sign(payload []byte) ([]byte, error) {
	digest := sha256.Sum256(payload)
	sig, err := rsa.SignPKCS1v15(rand.Reader, k.priv, crypto.SHA256, digest[:])
	if err != nil {
		return nil, fmt.Errorf("couldn't sign payload: %w", err)
	}
	return sig, nil
}

// PublicKeyFromPEM parses a PKIX public key PEM block, the form the platform
// uses to announce its own key.
func PublicKeyFromPEM(pubPEM []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pubPEM)
	if block == nil {
		return nil, ErrNotAPEMBlock
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse public key: %w", err)
	}

	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, ErrNotAnRSAPublicKey
	}
	return rsaPub, nil
}

// Verify checks the PKCS #1 v1.5 signature over the SHA-256 digest of the
// payload against the given public key.
func Verify(pub *rsa.PublicKey, payload, sig []byte) error {
	digest := sha256.Sum256(payload)
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], sig); err != nil {
		return ErrInvalidSignature
	}
	return nil
}
