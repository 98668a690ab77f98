package oauth_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"code.meridianbank.io/meridian-go/client"
	mbrand "code.meridianbank.io/meridian-go/libs/rand"
	"code.meridianbank.io/meridian-go/logging"
	"code.meridianbank.io/meridian-go/oauth"
	"code.meridianbank.io/meridian-go/session"
	"code.meridianbank.io/meridian-go/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizationURL(t *testing.T) {
	t.Run("The production URL is built exactly", testAuthorizationURLTheProductionURLIsBuiltExactly)
	t.Run("The sandbox host is substituted", testAuthorizationURLTheSandboxHostIsSubstituted)
	t.Run("A state value is appended", testAuthorizationURLAStateValueIsAppended)
	t.Run("An unknown environment is rejected", testAuthorizationURLAnUnknownEnvironmentIsRejected)
}

func TestExchange(t *testing.T) {
	t.Run("A mismatched state stops the exchange", testExchangeAMismatchedStateStopsTheExchange)
	t.Run("The code is traded for a token", testExchangeTheCodeIsTradedForAToken)
	t.Run("An explicit grant type is passed through", testExchangeAnExplicitGrantTypeIsPassedThrough)
	t.Run("A response without an access token is rejected", testExchangeAResponseWithoutAnAccessTokenIsRejected)
	t.Run("A failed exchange persists nothing", testExchangeAFailedExchangePersistsNothing)
	t.Run("The stored token is returned later", testExchangeTheStoredTokenIsReturnedLater)
}

func testAuthorizationURLTheProductionURLIsBuiltExactly(t *testing.T) {
	// when
	authURL, err := oauth.AuthorizationURL("clientId", "redirectUri", "", client.Production)

	// then
	require.NoError(t, err)
	assert.Equal(t, "https://oauth.meridianbank.io/auth?response_type=code&client_id=clientId&redirect_uri=redirectUri", authURL)
}

func testAuthorizationURLTheSandboxHostIsSubstituted(t *testing.T) {
	// when
	authURL, err := oauth.AuthorizationURL("clientId", "redirectUri", "", client.Sandbox)

	// then
	require.NoError(t, err)
	assert.Equal(t, "https://oauth.sandbox.meridianbank.io/auth?response_type=code&client_id=clientId&redirect_uri=redirectUri", authURL)
}

func testAuthorizationURLAStateValueIsAppended(t *testing.T) {
	// when
	authURL, err := oauth.AuthorizationURL("clientId", "redirectUri", "xyz", client.Production)

	// then
	require.NoError(t, err)
	assert.Equal(t, "https://oauth.meridianbank.io/auth?response_type=code&client_id=clientId&redirect_uri=redirectUri&state=xyz", authURL)
}

func testAuthorizationURLAnUnknownEnvironmentIsRejected(t *testing.T) {
	// when
	authURL, err := oauth.AuthorizationURL("clientId", "redirectUri", "", client.Environment("staging"))

	// then
	require.ErrorIs(t, err, client.ErrUnknownEnvironment)
	assert.Empty(t, authURL)
}

type oauthFixture struct {
	rq      *fakeRequester
	tokens  *session.Store
	service *oauth.Service
}

func newOAuthFixture(t *testing.T) *oauthFixture {
	t.Helper()

	rq := &fakeRequester{}
	tokens := session.NewStore(store.NewMemory())

	return &oauthFixture{
		rq:      rq,
		tokens:  tokens,
		service: oauth.NewService(logging.NewTestLogger(), rq, tokens),
	}
}

func testExchangeAMismatchedStateStopsTheExchange(t *testing.T) {
	// given
	f := newOAuthFixture(t)

	// when
	_, err := f.service.Exchange(context.Background(), oauth.ExchangeParams{
		ClientID:      "clientId",
		ClientSecret:  "secret",
		RedirectURI:   "redirectUri",
		Code:          "code-1",
		State:         "attacker-controlled",
		ExpectedState: "expected",
	})

	// then
	require.ErrorIs(t, err, oauth.ErrStateMismatch)
	assert.Zero(t, f.rq.calls)
	_, err = f.tokens.OAuthToken()
	require.ErrorIs(t, err, store.ErrEntryNotFound)
}

func testExchangeTheCodeIsTradedForAToken(t *testing.T) {
	// given
	f := newOAuthFixture(t)
	accessToken := mbrand.RandomStr(20)
	f.rq.response = []byte(`{"access_token":"` + accessToken + `","token_type":"bearer","state":"xyz"}`)

	// when
	token, err := f.service.Exchange(context.Background(), oauth.ExchangeParams{
		ClientID:      "clientId",
		ClientSecret:  "secret",
		RedirectURI:   "redirectUri",
		Code:          "code-1",
		State:         "xyz",
		ExpectedState: "xyz",
	})

	// then
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, accessToken, token.AccessToken)
	assert.Equal(t, "bearer", token.TokenType)
	assert.Equal(t, "xyz", token.State)

	assert.Equal(t, 1, f.rq.calls)
	assert.Equal(t, http.MethodPost, f.rq.method)
	assert.Equal(t, "/token", f.rq.path)
	assert.Empty(t, f.rq.body)
	assert.Equal(t, "authorization_code", f.rq.query.Get("grant_type"))
	assert.Equal(t, "code-1", f.rq.query.Get("code"))
	assert.Equal(t, "redirectUri", f.rq.query.Get("redirect_uri"))
	assert.Equal(t, "clientId", f.rq.query.Get("client_id"))
	assert.Equal(t, "secret", f.rq.query.Get("client_secret"))

	// The token survives in the store.
	stored, err := f.service.StoredToken()
	require.NoError(t, err)
	assert.Equal(t, token, stored)
}

func testExchangeAnExplicitGrantTypeIsPassedThrough(t *testing.T) {
	// given
	f := newOAuthFixture(t)
	f.rq.response = []byte(`{"access_token":"at-1","token_type":"bearer"}`)

	// when
	_, err := f.service.Exchange(context.Background(), oauth.ExchangeParams{
		ClientID:  "clientId",
		Code:      "code-1",
		GrantType: "refresh_token",
	})

	// then
	require.NoError(t, err)
	assert.Equal(t, "refresh_token", f.rq.query.Get("grant_type"))
}

func testExchangeAResponseWithoutAnAccessTokenIsRejected(t *testing.T) {
	// given
	f := newOAuthFixture(t)
	f.rq.response = []byte(`{"token_type":"bearer"}`)

	// when
	_, err := f.service.Exchange(context.Background(), oauth.ExchangeParams{
		ClientID: "clientId",
		Code:     "code-1",
	})

	// then
	require.ErrorIs(t, err, oauth.ErrMissingAccessToken)
	_, err = f.tokens.OAuthToken()
	require.ErrorIs(t, err, store.ErrEntryNotFound)
}

func testExchangeAFailedExchangePersistsNothing(t *testing.T) {
	// given
	f := newOAuthFixture(t)
	f.rq.err = assert.AnError

	// when
	_, err := f.service.Exchange(context.Background(), oauth.ExchangeParams{
		ClientID: "clientId",
		Code:     "code-1",
	})

	// then
	require.ErrorIs(t, err, assert.AnError)
	_, err = f.tokens.OAuthToken()
	require.ErrorIs(t, err, store.ErrEntryNotFound)
}

func testExchangeTheStoredTokenIsReturnedLater(t *testing.T) {
	// given
	f := newOAuthFixture(t)

	// when nothing was exchanged yet
	_, err := f.service.StoredToken()

	// then
	require.ErrorIs(t, err, store.ErrEntryNotFound)

	// given
	require.NoError(t, f.tokens.SetOAuthToken([]byte(`{"access_token":"at-1","token_type":"bearer"}`)))

	// when
	token, err := f.service.StoredToken()

	// then
	require.NoError(t, err)
	assert.Equal(t, "at-1", token.AccessToken)
}

type fakeRequester struct {
	calls    int
	method   string
	path     string
	query    url.Values
	body     []byte
	response []byte
	err      error
}

func (f *fakeRequester) Do(_ context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	f.calls++
	f.method = method
	f.path = path
	f.query = query
	f.body = body
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}
