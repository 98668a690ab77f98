package commands

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *CommandSuite) TestStatus(t *testing.T) {
	home, pass := suite.PrepareSandbox(t)
	ctx := context.Background()

	// setup
	_, err := suite.RunMain(ctx, "init --output json --home %s --passphrase-file %s", home, pass)
	require.NoError(t, err)

	// when
	out, err := suite.RunMain(ctx, "status --output json --home %s --passphrase-file %s", home, pass)

	// then
	require.NoError(t, err)
	result := struct {
		Status         string `json:"status"`
		Environment    string `json:"environment"`
		KeyFingerprint string `json:"keyFingerprint"`
		SessionID      string `json:"sessionId"`
	}{}
	require.NoError(t, json.Unmarshal(out, &result))
	assert.Equal(t, "uninitialized", result.Status)
	assert.Equal(t, "sandbox", result.Environment)
	assert.NotEmpty(t, result.KeyFingerprint)
	assert.Empty(t, result.SessionID)
}

func (suite *CommandSuite) TestReset(t *testing.T) {
	home, pass := suite.PrepareSandbox(t)
	ctx := context.Background()

	// setup
	_, err := suite.RunMain(ctx, "init --output json --home %s --passphrase-file %s", home, pass)
	require.NoError(t, err)

	// when
	out, err := suite.RunMain(ctx, "reset --home %s --passphrase-file %s", home, pass)

	// then
	require.NoError(t, err)
	assert.Contains(t, string(out), "credentials reset")

	// when the status is derived afterwards
	out, err = suite.RunMain(ctx, "status --output json --home %s --passphrase-file %s", home, pass)

	// then the device key pair is still there
	require.NoError(t, err)
	result := struct {
		Status         string `json:"status"`
		KeyFingerprint string `json:"keyFingerprint"`
	}{}
	require.NoError(t, json.Unmarshal(out, &result))
	assert.Equal(t, "uninitialized", result.Status)
	assert.NotEmpty(t, result.KeyFingerprint)
}
