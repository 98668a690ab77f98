package config

import (
	"fmt"
	"os"

	"code.meridianbank.io/meridian-go/client"
	mbfs "code.meridianbank.io/meridian-go/libs/fs"
	"code.meridianbank.io/meridian-go/logging"
	"code.meridianbank.io/meridian-go/metrics"
	"code.meridianbank.io/meridian-go/paths"
	"code.meridianbank.io/meridian-go/session"
)

// Config ties together the configuration of all the library packages, so they
// can be configured with a single file.
type Config struct {
	API     client.Config  `group:"API" namespace:"api"`
	Session session.Config `group:"Session" namespace:"session"`
	Metrics metrics.Config `group:"Metrics" namespace:"metrics"`
	Logging logging.Config `group:"Logging" namespace:"logging"`
}

// NewDefaultConfig returns the default configuration of every package, as
// specified at the per package config level.
func NewDefaultConfig() Config {
	return Config{
		API:     client.NewDefaultConfig(),
		Session: session.NewDefaultConfig(),
		Metrics: metrics.NewDefaultConfig(),
		Logging: logging.NewDefaultConfig(),
	}
}

type Loader struct {
	configFilePath string
}

func InitialiseLoader(mbPaths paths.Paths) (*Loader, error) {
	configFilePath, err := mbPaths.CreateConfigPathFor(paths.ClientDefaultConfigFile)
	if err != nil {
		return nil, fmt.Errorf("couldn't get path for %s: %w", paths.ClientDefaultConfigFile, err)
	}

	return &Loader{
		configFilePath: configFilePath,
	}, nil
}

func (l *Loader) ConfigFilePath() string {
	return l.configFilePath
}

func (l *Loader) ConfigExists() (bool, error) {
	exists, err := mbfs.FileExists(l.configFilePath)
	if err != nil {
		return false, fmt.Errorf("couldn't verify file presence: %w", err)
	}
	return exists, nil
}

func (l *Loader) GetConfig() (*Config, error) {
	// Starting from the defaults keeps keys absent from the file at their
	// default value, instead of their zero value.
	cfg := NewDefaultConfig()
	if err := paths.ReadStructuredFile(l.configFilePath, &cfg); err != nil {
		return nil, fmt.Errorf("couldn't read file at %s: %w", l.configFilePath, err)
	}
	return &cfg, nil
}

func (l *Loader) SaveConfig(cfg *Config) error {
	if err := paths.WriteStructuredFile(l.configFilePath, cfg); err != nil {
		return fmt.Errorf("couldn't write file at %s: %w", l.configFilePath, err)
	}
	return nil
}

func (l *Loader) RemoveConfig() {
	_ = os.RemoveAll(l.configFilePath)
}
