package metrics

import (
	"code.meridianbank.io/meridian-go/config/encoding"
	"code.meridianbank.io/meridian-go/logging"
)

const namedLogger = "metrics"

// Config represents the configuration of the metrics package.
type Config struct {
	Level   encoding.LogLevel `long:"level" description:"Log level"`
	Enabled encoding.Bool     `long:"enabled" description:"Expose the library instruments over HTTP"`
	Path    string            `long:"path" description:"Path the instruments are served on"`
	Port    int               `long:"port" description:"Port the instruments are served on"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:   encoding.LogLevel{Level: logging.InfoLevel},
		Enabled: false,
		Path:    "/metrics",
		Port:    2112,
	}
}
