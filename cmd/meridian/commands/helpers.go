package commands

import (
	"errors"
	"fmt"

	"code.meridianbank.io/meridian-go/client"
	"code.meridianbank.io/meridian-go/config"
	"code.meridianbank.io/meridian-go/logging"
	"code.meridianbank.io/meridian-go/oauth"
	"code.meridianbank.io/meridian-go/paths"
	"code.meridianbank.io/meridian-go/session"
	storev1 "code.meridianbank.io/meridian-go/store/v1"
)

const passphrasePrompt = "credentials store"

var ErrConfigDoesNotExist = errors.New("no configuration found, please run the init command first")

// loadConfig reads the configuration of the custom or standard home, without
// touching the credentials store.
func loadConfig(homeFlag config.HomeFlag) (*config.Config, error) {
	cfgLoader, err := config.InitialiseLoader(paths.New(homeFlag.Home))
	if err != nil {
		return nil, fmt.Errorf("couldn't initialise configuration loader: %w", err)
	}

	configExists, err := cfgLoader.ConfigExists()
	if err != nil {
		return nil, fmt.Errorf("couldn't verify configuration presence: %w", err)
	}
	if !configExists {
		return nil, ErrConfigDoesNotExist
	}

	cfg, err := cfgLoader.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("couldn't get configuration: %w", err)
	}
	return cfg, nil
}

// clientResources bundles everything a subcommand needs to talk to the
// platform. Built per invocation, the CLI holds no long-lived state besides
// what the credentials store persists.
type clientResources struct {
	cfg       *config.Config
	log       *logging.Logger
	store     *session.Store
	requester *session.Requester
	handshake *session.Handshake
}

func buildClientResources(homeFlag config.HomeFlag, passphraseFlag config.PassphraseFlag) (*clientResources, error) {
	mbPaths := paths.New(homeFlag.Home)

	cfg, err := loadConfig(homeFlag)
	if err != nil {
		return nil, err
	}

	log := logging.NewLoggerFromEnv(cfg.Logging.Environment)

	pass, err := passphraseFlag.PassphraseFile.Get(passphrasePrompt, false)
	if err != nil {
		return nil, err
	}

	credStore, err := storev1.InitialiseStore(mbPaths, pass)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialise credentials store: %w", err)
	}

	transport, err := client.NewHTTPTransport(log, cfg.API)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialise transport: %w", err)
	}

	sessionStore := session.NewStore(credStore)
	requester := session.NewRequester(log, cfg.Session, transport)

	return &clientResources{
		cfg:       cfg,
		log:       log,
		store:     sessionStore,
		requester: requester,
		handshake: session.NewHandshake(log, cfg.Session, sessionStore, requester),
	}, nil
}

// sessionRequester is the signed requester the platform resources are served
// by, authenticating with the active session.
func (r *clientResources) sessionRequester() *session.BoundRequester {
	return session.NewBoundRequester(r.requester, r.handshake)
}

// tokenService builds the OAuth service against the token API. The token
// exchange lives on its own host and outside the trust chain, so it goes
// through an unauthenticated requester.
func (r *clientResources) tokenService() (*oauth.Service, error) {
	tokenCfg := r.cfg.API
	tokenURL, err := tokenCfg.Environment.TokenAPIURL()
	if err != nil {
		return nil, err
	}
	tokenCfg.APIURL = tokenURL

	transport, err := client.NewHTTPTransport(r.log, tokenCfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialise token transport: %w", err)
	}

	requester := session.NewRequester(r.log, r.cfg.Session, transport)
	rq := session.NewBoundRequester(requester, session.AnonymousAuth{})
	return oauth.NewService(r.log, rq, r.store), nil
}
