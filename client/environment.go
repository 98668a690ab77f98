package client

import (
	"errors"
	"fmt"
)

// Environment selects the platform the client talks to.
type Environment string

const (
	// Production is the live platform, operating on real money.
	Production Environment = "production"
	// Sandbox is the test platform, operating on play money.
	Sandbox Environment = "sandbox"
)

var ErrUnknownEnvironment = errors.New("the environment is not supported, pick either production or sandbox")

const tokenEndpoint = "/token"

type endpoints struct {
	api           string
	authorization string
	tokenAPI      string
}

var environmentEndpoints = map[Environment]endpoints{
	Production: {
		api:           "https://api.meridianbank.io/v1",
		authorization: "https://oauth.meridianbank.io/auth",
		tokenAPI:      "https://api.oauth.meridianbank.io/v1",
	},
	Sandbox: {
		api:           "https://public-api.sandbox.meridianbank.io/v1",
		authorization: "https://oauth.sandbox.meridianbank.io/auth",
		tokenAPI:      "https://api-oauth.sandbox.meridianbank.io/v1",
	},
}

// APIURL returns the base URL of the platform API for this environment.
func (e Environment) APIURL() (string, error) {
	eps, ok := environmentEndpoints[e]
	if !ok {
		return "", ErrUnknownEnvironment
	}
	return eps.api, nil
}

// AuthorizationURL returns the base URL end-users are sent to during the
// OAuth authorization flow.
func (e Environment) AuthorizationURL() (string, error) {
	eps, ok := environmentEndpoints[e]
	if !ok {
		return "", ErrUnknownEnvironment
	}
	return eps.authorization, nil
}

// TokenAPIURL returns the base URL of the token exchange API. It lives on its
// own host, apart from the platform API.
func (e Environment) TokenAPIURL() (string, error) {
	eps, ok := environmentEndpoints[e]
	if !ok {
		return "", ErrUnknownEnvironment
	}
	return eps.tokenAPI, nil
}

// TokenURL returns the URL authorization codes are exchanged against.
func (e Environment) TokenURL() (string, error) {
	base, err := e.TokenAPIURL()
	if err != nil {
		return "", err
	}
	return base + tokenEndpoint, nil
}

func (e *Environment) UnmarshalText(text []byte) error {
	env := Environment(text)
	if _, ok := environmentEndpoints[env]; !ok {
		return fmt.Errorf("unsupported environment %q: %w", string(text), ErrUnknownEnvironment)
	}
	*e = env
	return nil
}

func (e *Environment) UnmarshalFlag(s string) error {
	return e.UnmarshalText([]byte(s))
}

func (e Environment) MarshalText() ([]byte, error) {
	return []byte(e), nil
}

func (e Environment) String() string {
	return string(e)
}
