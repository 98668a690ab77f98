package commands

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *CommandSuite) TestOAuthURL(t *testing.T) {
	home, pass := suite.PrepareSandbox(t)
	ctx := context.Background()

	// setup
	_, err := suite.RunMain(ctx, "init --output json --home %s --passphrase-file %s", home, pass)
	require.NoError(t, err)

	// when
	out, err := suite.RunMain(ctx, "oauth url --output json --home %s --client-id client-1 --redirect-uri http://localhost:8085/callback --state st4te", home)

	// then
	require.NoError(t, err)
	result := struct {
		AuthorizationURL string `json:"authorizationUrl"`
	}{}
	require.NoError(t, json.Unmarshal(out, &result))
	assert.Equal(t,
		"https://oauth.sandbox.meridianbank.io/auth?response_type=code&client_id=client-1&redirect_uri=http://localhost:8085/callback&state=st4te",
		result.AuthorizationURL,
	)

	// when the state is left out
	out, err = suite.RunMain(ctx, "oauth url --output json --home %s --client-id client-1 --redirect-uri http://localhost:8085/callback", home)

	// then
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(out, &result))
	assert.Equal(t,
		"https://oauth.sandbox.meridianbank.io/auth?response_type=code&client_id=client-1&redirect_uri=http://localhost:8085/callback",
		result.AuthorizationURL,
	)
}
