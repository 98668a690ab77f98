package commands

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type initResult struct {
	ConfigFilePath string `json:"configFilePath"`
	Environment    string `json:"environment"`
	KeyFingerprint string `json:"keyFingerprint"`
}

func (suite *CommandSuite) TestInit(t *testing.T) {
	home, pass := suite.PrepareSandbox(t)
	ctx := context.Background()

	// when
	out, err := suite.RunMain(ctx, "init --output json --home %s --passphrase-file %s", home, pass)

	// then
	require.NoError(t, err)
	result := initResult{}
	require.NoError(t, json.Unmarshal(out, &result))
	assert.True(t, strings.HasSuffix(result.ConfigFilePath, "config.toml"))
	assert.FileExists(t, result.ConfigFilePath)
	assert.Equal(t, "sandbox", result.Environment)
	assert.NotEmpty(t, result.KeyFingerprint)

	// when initialising a second time without forcing
	_, err = suite.RunMain(ctx, "init --output json --home %s --passphrase-file %s", home, pass)

	// then
	require.Error(t, err)

	// when forcing the initialisation onto another environment
	out, err = suite.RunMain(ctx, "init --output json --force --environment production --home %s --passphrase-file %s", home, pass)

	// then
	require.NoError(t, err)
	forced := initResult{}
	require.NoError(t, json.Unmarshal(out, &forced))
	assert.Equal(t, "production", forced.Environment)
	// the device key pair survives the re-initialisation
	assert.Equal(t, result.KeyFingerprint, forced.KeyFingerprint)
}
