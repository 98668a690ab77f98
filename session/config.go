package session

import (
	"code.meridianbank.io/meridian-go/config/encoding"
	"code.meridianbank.io/meridian-go/crypto"
	"code.meridianbank.io/meridian-go/logging"
)

const namedLogger = "session"

// Config represents the configuration of the session package.
type Config struct {
	Level          encoding.LogLevel `long:"level" description:"Log level"`
	KeySize        int               `long:"key-size" description:"Bit strength of a newly generated device key pair"`
	RenewalMargin  encoding.Duration `long:"renewal-margin" description:"How long before expiry the session is renewed, zero keeps a tenth of the lifetime"`
	DisableRenewal encoding.Bool     `long:"disable-renewal" description:"Do not renew the session in the background"`
	EncryptBodies  encoding.Bool     `long:"encrypt-bodies" description:"Encrypt request bodies sent to the platform"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:          encoding.LogLevel{Level: logging.InfoLevel},
		KeySize:        crypto.DefaultKeySize,
		RenewalMargin:  encoding.Duration{},
		DisableRenewal: false,
		EncryptBodies:  false,
	}
}
