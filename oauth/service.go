package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"code.meridianbank.io/meridian-go/client"
	"code.meridianbank.io/meridian-go/logging"
)

const (
	namedLogger = "oauth"

	tokenPath = "/token"

	// GrantTypeAuthorizationCode is the only grant the platform supports
	// today, and the default of Exchange.
	GrantTypeAuthorizationCode = "authorization_code"
)

var (
	ErrMissingAccessToken = errors.New("the token response doesn't carry an access token")
	ErrStateMismatch      = errors.New("the authorization state doesn't match the expected one")
)

// Requester runs one signed exchange against the token API. The session
// package provides the canonical implementation.
type Requester interface {
	Do(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error)
}

// TokenStore persists the exchanged token across restarts.
type TokenStore interface {
	SetOAuthToken(data []byte) error
	OAuthToken() ([]byte, error)
}

// Token is the credential handed out at the end of the authorization flow.
// Its access token takes the place of an API key in a later handshake, it is
// never renewed on its own.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	State       string `json:"state"`
}

// ExchangeParams describes one authorization code exchange.
type ExchangeParams struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Code         string
	// State is the value the authorization redirect came back with.
	State string
	// ExpectedState, when set, must match State exactly before anything is
	// sent to the platform.
	ExpectedState string
	// GrantType defaults to GrantTypeAuthorizationCode when left empty.
	GrantType string
}

// AuthorizationURL builds the URL end-users are sent to for granting access.
// Pure string construction, no network call is involved.
func AuthorizationURL(clientID, redirectURI, state string, env client.Environment) (string, error) {
	base, err := env.AuthorizationURL()
	if err != nil {
		return "", err
	}

	authURL := fmt.Sprintf("%s?response_type=code&client_id=%s&redirect_uri=%s", base, clientID, redirectURI)
	if state != "" {
		authURL += "&state=" + state
	}
	return authURL, nil
}

// Service exchanges authorization codes for access tokens and keeps the
// result around.
type Service struct {
	log *logging.Logger
	rq  Requester
	st  TokenStore
}

func NewService(log *logging.Logger, rq Requester, st TokenStore) *Service {
	return &Service{
		log: log.Named(namedLogger),
		rq:  rq,
		st:  st,
	}
}

// Exchange trades an authorization code for an access token and persists it.
func (s *Service) Exchange(ctx context.Context, params ExchangeParams) (*Token, error) {
	if params.ExpectedState != "" && params.State != params.ExpectedState {
		// The redirect answered someone else's authorization, or was
		// tampered with. Nothing goes out.
		return nil, ErrStateMismatch
	}

	grantType := params.GrantType
	if grantType == "" {
		grantType = GrantTypeAuthorizationCode
	}

	// The token endpoint takes its parameters on the query string, with an
	// empty body.
	query := url.Values{}
	query.Set("grant_type", grantType)
	query.Set("code", params.Code)
	query.Set("redirect_uri", params.RedirectURI)
	query.Set("client_id", params.ClientID)
	query.Set("client_secret", params.ClientSecret)

	responseBody, err := s.rq.Do(ctx, http.MethodPost, tokenPath, query, nil)
	if err != nil {
		return nil, fmt.Errorf("the token exchange failed: %w", err)
	}

	token := &Token{}
	if err := json.Unmarshal(responseBody, token); err != nil {
		return nil, fmt.Errorf("couldn't parse the token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, ErrMissingAccessToken
	}

	data, err := json.Marshal(token)
	if err != nil {
		return nil, err
	}
	if err := s.st.SetOAuthToken(data); err != nil {
		return nil, fmt.Errorf("couldn't persist the token: %w", err)
	}

	s.log.Info("authorization code exchanged")
	return token, nil
}

// StoredToken returns the token of an earlier exchange.
func (s *Service) StoredToken() (*Token, error) {
	data, err := s.st.OAuthToken()
	if err != nil {
		return nil, err
	}

	token := &Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, fmt.Errorf("couldn't parse the persisted token: %w", err)
	}
	return token, nil
}
