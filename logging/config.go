package logging

// Config contains the configurable items for this package
type Config struct {
	Environment string `long:"environment" choice:"dev" choice:"prod" description:"The logging environment to use"`
}

// NewDefaultConfig creates an instance of the package-specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Environment: "prod",
	}
}
