package v1

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	mbcrypto "code.meridianbank.io/meridian-go/libs/crypto"
	mbfs "code.meridianbank.io/meridian-go/libs/fs"
	"code.meridianbank.io/meridian-go/paths"
	"code.meridianbank.io/meridian-go/store"
)

var (
	ErrEntryNameCannotStartWithDot           = errors.New("the name cannot start with a dot (\".\") character")
	ErrEntryNameCannotContainSlashCharacters = errors.New("the name cannot contain slash (\"/\", \"\\\") characters")
)

// Store is a KV backed by one file per entry. When built with a passphrase,
// the entries are encrypted at rest.
type Store struct {
	entriesHome string
	passphrase  string
}

// InitialiseStore builds a file-backed store under the sessions data home.
// An empty passphrase disables encryption at rest.
func InitialiseStore(meridianPaths paths.Paths, passphrase string) (*Store, error) {
	entriesHome, err := meridianPaths.CreateDataDirFor(paths.SessionsDataHome)
	if err != nil {
		return nil, fmt.Errorf("couldn't get data directory for %s: %w", paths.SessionsDataHome, err)
	}

	return &Store{
		entriesHome: entriesHome,
		passphrase:  passphrase,
	}, nil
}

func (s *Store) Get(name string) ([]byte, error) {
	if err := checkEntryName(name); err != nil {
		return nil, err
	}

	buf, err := os.ReadFile(s.entryPath(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, store.ErrEntryNotFound
		}
		return nil, fmt.Errorf("couldn't read file at %s: %w", s.entryPath(name), err)
	}

	if s.passphrase == "" {
		return buf, nil
	}

	data, err := mbcrypto.Decrypt(buf, s.passphrase)
	if err != nil {
		return nil, fmt.Errorf("couldn't decrypt entry %s: %w", name, err)
	}
	return data, nil
}

func (s *Store) Set(name string, data []byte) error {
	if err := checkEntryName(name); err != nil {
		return err
	}

	buf := data
	if s.passphrase != "" {
		encBuf, err := mbcrypto.Encrypt(data, s.passphrase)
		if err != nil {
			return fmt.Errorf("couldn't encrypt entry %s: %w", name, err)
		}
		buf = encBuf
	}

	entryPath := s.entryPath(name)
	if err := mbfs.WriteFile(entryPath, buf); err != nil {
		return fmt.Errorf("couldn't write file at %s: %w", entryPath, err)
	}
	return nil
}

func (s *Store) Remove(name string) error {
	if err := checkEntryName(name); err != nil {
		return err
	}

	if err := os.Remove(s.entryPath(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("couldn't remove file at %s: %w", s.entryPath(name), err)
	}
	return nil
}

// ListEntries returns the names of the persisted entries, sorted.
func (s *Store) ListEntries() ([]string, error) {
	entriesParentDir, entriesDir := filepath.Split(s.entriesHome)
	dirEntries, err := fs.ReadDir(os.DirFS(entriesParentDir), entriesDir)
	if err != nil {
		return nil, fmt.Errorf("couldn't read directory at %s: %w", s.entriesHome, err)
	}

	names := []string{}
	for _, entry := range dirEntries {
		info, err := entry.Info()
		if err != nil || info.IsDir() || strings.HasPrefix(info.Name(), ".") {
			continue
		}

		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) entryPath(name string) string {
	return filepath.Join(s.entriesHome, name)
}

func checkEntryName(name string) error {
	// Reject hidden files.
	if strings.HasPrefix(name, ".") {
		return ErrEntryNameCannotStartWithDot
	}

	// Reject slash and back-slash to avoid path resolution.
	if strings.ContainsAny(name, "/\\") {
		return ErrEntryNameCannotContainSlashCharacters
	}
	return nil
}
