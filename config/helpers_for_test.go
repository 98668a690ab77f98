package config_test

import (
	"os"
	"testing"

	"code.meridianbank.io/meridian-go/config"
	"code.meridianbank.io/meridian-go/paths"

	"github.com/stretchr/testify/require"
)

func newTestLoader(t *testing.T) *config.Loader {
	t.Helper()

	loader, err := config.InitialiseLoader(paths.New(t.TempDir()))
	require.NoError(t, err)

	return loader
}

func writeConfigFile(t *testing.T, loader *config.Loader, content string) {
	t.Helper()

	require.NoError(t, os.WriteFile(loader.ConfigFilePath(), []byte(content), 0o600))
}
