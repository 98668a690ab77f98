package commands

import (
	"context"
	"encoding/json"
	"testing"

	"code.meridianbank.io/meridian-go/version"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *CommandSuite) TestVersion(t *testing.T) {
	ctx := context.Background()

	// when
	out, err := suite.RunMain(ctx, "version")

	// then
	require.NoError(t, err)
	assert.Contains(t, string(out), "Meridian CLI")
	assert.Contains(t, string(out), version.Get())

	// when asking for JSON
	out, err = suite.RunMain(ctx, "version --output json")

	// then
	require.NoError(t, err)
	result := struct {
		Version string `json:"version"`
	}{}
	require.NoError(t, json.Unmarshal(out, &result))
	assert.Equal(t, version.Get(), result.Version)
}
