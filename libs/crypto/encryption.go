package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	envelopeVersion = 1
	saltSize        = 16

	kdfTime     = 2
	kdfMemoryKB = 64 * 1024
	kdfThreads  = 1
)

var (
	ErrWrongPassphrase    = errors.New("wrong passphrase, or data has been tampered with")
	ErrUnsupportedVersion = errors.New("unsupported encryption envelope version")
)

// envelope is the serialized shape of an encrypted buffer. The key derivation
// parameters travel with the data so they can be hardened without breaking
// previously written files.
type envelope struct {
	Version     uint32 `json:"version"`
	KDFTime     uint32 `json:"kdfTime"`
	KDFMemoryKB uint32 `json:"kdfMemoryKb"`
	KDFThreads  uint8  `json:"kdfThreads"`
	Salt        []byte `json:"salt"`
	Nonce       []byte `json:"nonce"`
	Ciphertext  []byte `json:"ciphertext"`
}

// Encrypt seals the data with a key derived from the passphrase, using
// argon2id and XChaCha20-Poly1305.
func Encrypt(data []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("couldn't generate salt: %w", err)
	}

	key := deriveKey(passphrase, salt, kdfTime, kdfMemoryKB, kdfThreads)
	defer wipe(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialise cipher: %w", err)
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("couldn't generate nonce: %w", err)
	}

	env := envelope{
		Version:     envelopeVersion,
		KDFTime:     kdfTime,
		KDFMemoryKB: kdfMemoryKB,
		KDFThreads:  kdfThreads,
		Salt:        salt,
		Nonce:       nonce,
		Ciphertext:  aead.Seal(nil, nonce, data, nil),
	}

	buf, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("couldn't marshal encryption envelope: %w", err)
	}
	return buf, nil
}

// Decrypt opens a buffer previously produced by Encrypt. A passphrase
// mismatch and a tampered payload are indistinguishable, both surface as
// ErrWrongPassphrase.
func Decrypt(buf []byte, passphrase string) ([]byte, error) {
	env := envelope{}
	if err := json.Unmarshal(buf, &env); err != nil {
		return nil, fmt.Errorf("couldn't unmarshal encryption envelope: %w", err)
	}

	if env.Version != envelopeVersion {
		return nil, ErrUnsupportedVersion
	}

	if len(env.Nonce) != chacha20poly1305.NonceSizeX {
		return nil, ErrWrongPassphrase
	}

	key := deriveKey(passphrase, env.Salt, env.KDFTime, env.KDFMemoryKB, env.KDFThreads)
	defer wipe(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialise cipher: %w", err)
	}

	data, err := aead.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return data, nil
}

// Hash returns the SHA-256 digest of the data.
func Hash(data []byte) []byte {
	digest := sha256.Sum256(data)
	return digest[:]
}

func deriveKey(passphrase string, salt []byte, time, memoryKB uint32, threads uint8) []byte {
	return argon2.IDKey([]byte(passphrase), salt, time, memoryKB, threads, chacha20poly1305.KeySize)
}

func wipe(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
