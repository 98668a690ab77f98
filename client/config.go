package client

import (
	"time"

	"code.meridianbank.io/meridian-go/config/encoding"
	"code.meridianbank.io/meridian-go/logging"
)

// Config contains the configurable items for this package
type Config struct {
	Level       encoding.LogLevel `long:"level" description:"The log level for the transport"`
	Environment Environment       `long:"environment" description:"The platform to talk to (production, sandbox)"`
	APIURL      string            `long:"api-url" description:"Override the API base URL derived from the environment"`
	Timeout     encoding.Duration `long:"timeout" description:"The timeout applied to every request, e.g. 15s"`
	Retries     uint64            `long:"retries" description:"The number of times a request is retried on transport failures"`
}

// NewDefaultConfig creates an instance of the package-specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:       encoding.LogLevel{Level: logging.InfoLevel},
		Environment: Sandbox,
		Timeout:     encoding.Duration{Duration: 15 * time.Second},
		Retries:     5,
	}
}
