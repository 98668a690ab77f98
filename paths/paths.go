package paths

import (
	"fmt"
	"path/filepath"

	mbfs "code.meridianbank.io/meridian-go/libs/fs"

	"github.com/adrg/xdg"
)

// meridianHome is the name of the folder under which all the configuration,
// data and state files live, inside the standard platform directories.
const meridianHome = "meridian"

// File structure for configuration:
//
// CONFIG_HOME
// └── client/
//     └── config.toml
type ConfigPath string

func (p ConfigPath) String() string {
	return string(p)
}

// JoinConfigPath joins any number of path elements with the root ConfigPath
// into a single path, separating them with the OS specific Separator, and
// returns it as a ConfigPath.
func JoinConfigPath(p ConfigPath, elems ...string) ConfigPath {
	return ConfigPath(JoinConfigPathStr(p, elems...))
}

// JoinConfigPathStr joins any number of path elements with the root ConfigPath
// into a single path, separating them with the OS specific Separator, and
// returns it as a string.
func JoinConfigPathStr(p ConfigPath, elems ...string) string {
	return filepath.Join(append([]string{string(p)}, elems...)...)
}

var (
	// ClientConfigHome is the folder containing the configuration files of the
	// API client.
	ClientConfigHome = ConfigPath("client")

	// ClientDefaultConfigFile is the default configuration file of the API
	// client.
	ClientDefaultConfigFile = JoinConfigPath(ClientConfigHome, "config.toml")
)

// File structure for data:
//
// DATA_HOME
// └── sessions/
//     ├── device_key.json
//     ├── installation.json
//     ├── device.json
//     ├── session.json
//     └── oauth_token.json
type DataPath string

func (p DataPath) String() string {
	return string(p)
}

// JoinDataPath joins any number of path elements with the root DataPath into
// a single path, separating them with the OS specific Separator, and returns
// it as a DataPath.
func JoinDataPath(p DataPath, elems ...string) DataPath {
	return DataPath(JoinDataPathStr(p, elems...))
}

// JoinDataPathStr joins any number of path elements with the root DataPath
// into a single path, separating them with the OS specific Separator, and
// returns it as a string.
func JoinDataPathStr(p DataPath, elems ...string) string {
	return filepath.Join(append([]string{string(p)}, elems...)...)
}

// SessionsDataHome is the folder containing the session material of the API
// client: the device key pair, the registration tokens, and the OAuth token.
var SessionsDataHome = DataPath("sessions")

// File structure for state:
//
// STATE_HOME
// └── client/
//     └── logs/
type StatePath string

func (p StatePath) String() string {
	return string(p)
}

// JoinStatePath joins any number of path elements with the root StatePath
// into a single path, separating them with the OS specific Separator, and
// returns it as a StatePath.
func JoinStatePath(p StatePath, elems ...string) StatePath {
	return StatePath(JoinStatePathStr(p, elems...))
}

// JoinStatePathStr joins any number of path elements with the root StatePath
// into a single path, separating them with the OS specific Separator, and
// returns it as a string.
func JoinStatePathStr(p StatePath, elems ...string) string {
	return filepath.Join(append([]string{string(p)}, elems...)...)
}

var (
	// ClientStateHome is the folder containing the state of the API client.
	ClientStateHome = StatePath("client")

	// ClientLogsHome is the folder containing the log files of the API client.
	ClientLogsHome = JoinStatePath(ClientStateHome, "logs")
)

// DefaultPaths lays out the files under the standard platform directories,
// namespaced under a meridian folder.
type DefaultPaths struct{}

func (p *DefaultPaths) CreateConfigPathFor(relFilePath ConfigPath) (string, error) {
	fullPath := p.ConfigPathFor(relFilePath)
	if err := mbfs.EnsureDir(filepath.Dir(fullPath)); err != nil {
		return "", fmt.Errorf("couldn't create directories for file %s: %w", fullPath, err)
	}
	return fullPath, nil
}

func (p *DefaultPaths) CreateConfigDirFor(relDirPath ConfigPath) (string, error) {
	fullPath := p.ConfigPathFor(relDirPath)
	if err := mbfs.EnsureDir(fullPath); err != nil {
		return "", fmt.Errorf("couldn't create directories %s: %w", fullPath, err)
	}
	return fullPath, nil
}

func (p *DefaultPaths) CreateDataPathFor(relFilePath DataPath) (string, error) {
	fullPath := p.DataPathFor(relFilePath)
	if err := mbfs.EnsureDir(filepath.Dir(fullPath)); err != nil {
		return "", fmt.Errorf("couldn't create directories for file %s: %w", fullPath, err)
	}
	return fullPath, nil
}

func (p *DefaultPaths) CreateDataDirFor(relDirPath DataPath) (string, error) {
	fullPath := p.DataPathFor(relDirPath)
	if err := mbfs.EnsureDir(fullPath); err != nil {
		return "", fmt.Errorf("couldn't create directories %s: %w", fullPath, err)
	}
	return fullPath, nil
}

func (p *DefaultPaths) CreateStatePathFor(relFilePath StatePath) (string, error) {
	fullPath := p.StatePathFor(relFilePath)
	if err := mbfs.EnsureDir(filepath.Dir(fullPath)); err != nil {
		return "", fmt.Errorf("couldn't create directories for file %s: %w", fullPath, err)
	}
	return fullPath, nil
}

func (p *DefaultPaths) CreateStateDirFor(relDirPath StatePath) (string, error) {
	fullPath := p.StatePathFor(relDirPath)
	if err := mbfs.EnsureDir(fullPath); err != nil {
		return "", fmt.Errorf("couldn't create directories %s: %w", fullPath, err)
	}
	return fullPath, nil
}

func (p *DefaultPaths) ConfigPathFor(relPath ConfigPath) string {
	return filepath.Join(xdg.ConfigHome, meridianHome, relPath.String())
}

func (p *DefaultPaths) DataPathFor(relPath DataPath) string {
	return filepath.Join(xdg.DataHome, meridianHome, relPath.String())
}

func (p *DefaultPaths) StatePathFor(relPath StatePath) string {
	return filepath.Join(xdg.StateHome, meridianHome, relPath.String())
}

// CustomPaths lays out the files under a single root folder, which makes
// isolated environments easy to build and inspect.
//
// File structure:
//
// CUSTOM_HOME
// ├── config/
// ├── data/
// └── state/
type CustomPaths struct {
	CustomHome string
}

func (p *CustomPaths) CreateConfigPathFor(relFilePath ConfigPath) (string, error) {
	fullPath := p.ConfigPathFor(relFilePath)
	if err := mbfs.EnsureDir(filepath.Dir(fullPath)); err != nil {
		return "", fmt.Errorf("couldn't create directories for file %s: %w", fullPath, err)
	}
	return fullPath, nil
}

func (p *CustomPaths) CreateConfigDirFor(relDirPath ConfigPath) (string, error) {
	fullPath := p.ConfigPathFor(relDirPath)
	if err := mbfs.EnsureDir(fullPath); err != nil {
		return "", fmt.Errorf("couldn't create directories %s: %w", fullPath, err)
	}
	return fullPath, nil
}

func (p *CustomPaths) CreateDataPathFor(relFilePath DataPath) (string, error) {
	fullPath := p.DataPathFor(relFilePath)
	if err := mbfs.EnsureDir(filepath.Dir(fullPath)); err != nil {
		return "", fmt.Errorf("couldn't create directories for file %s: %w", fullPath, err)
	}
	return fullPath, nil
}

func (p *CustomPaths) CreateDataDirFor(relDirPath DataPath) (string, error) {
	fullPath := p.DataPathFor(relDirPath)
	if err := mbfs.EnsureDir(fullPath); err != nil {
		return "", fmt.Errorf("couldn't create directories %s: %w", fullPath, err)
	}
	return fullPath, nil
}

func (p *CustomPaths) CreateStatePathFor(relFilePath StatePath) (string, error) {
	fullPath := p.StatePathFor(relFilePath)
	if err := mbfs.EnsureDir(filepath.Dir(fullPath)); err != nil {
		return "", fmt.Errorf("couldn't create directories for file %s: %w", fullPath, err)
	}
	return fullPath, nil
}

func (p *CustomPaths) CreateStateDirFor(relDirPath StatePath) (string, error) {
	fullPath := p.StatePathFor(relDirPath)
	if err := mbfs.EnsureDir(fullPath); err != nil {
		return "", fmt.Errorf("couldn't create directories %s: %w", fullPath, err)
	}
	return fullPath, nil
}

func (p *CustomPaths) ConfigPathFor(relPath ConfigPath) string {
	return filepath.Join(p.CustomHome, "config", relPath.String())
}

func (p *CustomPaths) DataPathFor(relPath DataPath) string {
	return filepath.Join(p.CustomHome, "data", relPath.String())
}

func (p *CustomPaths) StatePathFor(relPath StatePath) string {
	return filepath.Join(p.CustomHome, "state", relPath.String())
}
