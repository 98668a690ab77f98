package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
)

const (
	bodyKeySize = 32
	ivSize      = 12
	tagSize     = 16
)

// Envelope carries the pieces of a hybrid encrypted request body. A fresh
// AES-256 key is generated for every body and wrapped with the platform
// public key, the GCM tag is detached from the ciphertext so that each piece
// can travel in its own header.
type Envelope struct {
	// Key is the body key, wrapped with RSA-OAEP.
	Key []byte
	// IV is the GCM nonce.
	IV []byte
	// Ciphertext is the encrypted body, without the tag.
	Ciphertext []byte
	// Tag is the GCM authentication tag.
	Tag []byte
}

// EncryptEnvelope seals the body for the holder of the given public key.
func EncryptEnvelope(pub *rsa.PublicKey, body []byte) (*Envelope, error) {
	bodyKey := make([]byte, bodyKeySize)
	if _, err := rand.Read(bodyKey); err != nil {
		return nil, fmt.Errorf("couldn't generate body key: %w", err)
	}

	aead, err := newGCM(bodyKey)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("couldn't generate IV: %w", err)
	}

	sealed := aead.Seal(nil, iv, body, nil)

	wrappedKey, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, bodyKey, nil)
	if err != nil {
		return nil, fmt.Errorf("couldn't wrap body key: %w", err)
	}

	return &Envelope{
		Key:        wrappedKey,
		IV:         iv,
		Ciphertext: sealed[:len(sealed)-tagSize],
		Tag:        sealed[len(sealed)-tagSize:],
	}, nil
}

// Decrypt opens an envelope sealed for this key pair. A wrong key and a
// tampered envelope are indistinguishable, both surface as
// ErrDecryptionFailed.
func (k *KeyPair) Decrypt(env *Envelope) ([]byte, error) {
	if len(env.IV) != ivSize || len(env.Tag) != tagSize {
		return nil, ErrMalformedEnvelope
	}

	bodyKey, err := rsa.DecryptOAEP(sha256.New(), nil, k.priv, env.Key, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	aead, err := newGCM(bodyKey)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(env.Ciphertext)+len(env.Tag))
	sealed = append(sealed, env.Ciphertext...)
	sealed = append(sealed, env.Tag...)

	body, err := aead.Open(nil, env.IV, sealed, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return body, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialise cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialise GCM: %w", err)
	}
	return aead, nil
}
