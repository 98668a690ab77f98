package paths

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	mbfs "code.meridianbank.io/meridian-go/libs/fs"

	"github.com/BurntSushi/toml"
)

// ErrUnsupportedFileFormat is returned when the file extension doesn't match
// any of the supported serialization formats.
var ErrUnsupportedFileFormat = errors.New("the file format is not supported")

// ReadStructuredFile reads the file located at the path and unmarshals its
// content into v. The serialization format is picked based on the file
// extension. TOML and JSON files are supported.
func ReadStructuredFile(path string, v interface{}) error {
	content, err := mbfs.ReadFile(path)
	if err != nil {
		return fmt.Errorf("couldn't read file %s: %w", path, err)
	}

	if err := unmarshal(filepath.Ext(path), content, v); err != nil {
		return fmt.Errorf("couldn't unmarshal file %s: %w", path, err)
	}

	return nil
}

// WriteStructuredFile marshals v and writes it to the file located at the
// path. The serialization format is picked based on the file extension. TOML
// and JSON files are supported.
func WriteStructuredFile(path string, v interface{}) error {
	content, err := marshal(filepath.Ext(path), v)
	if err != nil {
		return fmt.Errorf("couldn't marshal content for file %s: %w", path, err)
	}

	if err := mbfs.WriteFile(path, content); err != nil {
		return fmt.Errorf("couldn't write file %s: %w", path, err)
	}

	return nil
}

func unmarshal(ext string, content []byte, v interface{}) error {
	switch ext {
	case ".toml":
		return toml.Unmarshal(content, v)
	case ".json":
		return json.Unmarshal(content, v)
	default:
		return ErrUnsupportedFileFormat
	}
}

func marshal(ext string, v interface{}) ([]byte, error) {
	switch ext {
	case ".toml":
		return toml.Marshal(v)
	case ".json":
		return json.MarshalIndent(v, "", "  ")
	default:
		return nil, ErrUnsupportedFileFormat
	}
}
