package crypto

import "errors"

var (
	ErrKeyGenerationFailed = errors.New("the key pair couldn't be generated")

	ErrKeySizeTooSmall    = errors.New("the key size must be at least 2048 bits")
	ErrKeySizeTooLarge    = errors.New("the key size must be at most 4096 bits")
	ErrNotAPEMBlock       = errors.New("the buffer doesn't contain a PEM block")
	ErrNotAnRSAPrivateKey = errors.New("the PEM block doesn't contain an RSA private key")
	ErrNotAnRSAPublicKey  = errors.New("the PEM block doesn't contain an RSA public key")
	ErrInvalidSignature   = errors.New("the signature doesn't match the payload")
	ErrMalformedEnvelope  = errors.New("the encryption envelope is malformed")
	ErrDecryptionFailed   = errors.New("the envelope couldn't be decrypted")
)
