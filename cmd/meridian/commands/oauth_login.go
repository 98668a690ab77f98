package commands

import (
	"context"
	"fmt"
	"os"

	"code.meridianbank.io/meridian-go/config"
	"code.meridianbank.io/meridian-go/config/encoding"
	mbjson "code.meridianbank.io/meridian-go/libs/json"
	mbrand "code.meridianbank.io/meridian-go/libs/rand"
	"code.meridianbank.io/meridian-go/logging"
	"code.meridianbank.io/meridian-go/oauth"
)

const stateLength = 20

type oauthLoginCmd struct {
	ctx context.Context

	config.HomeFlag
	config.PassphraseFlag
	config.OutputFlag

	ClientID      string            `long:"client-id" required:"true" description:"The OAuth client identifier"`
	ClientSecret  string            `long:"client-secret" required:"true" description:"The OAuth client secret"`
	ListenAddress string            `long:"listen-address" default:"127.0.0.1:0" description:"The local address the callback listener binds on, port zero picks a free port"`
	Timeout       encoding.Duration `long:"timeout" default:"5m" description:"How long to wait for the user to grant access"`
}

func (opts *oauthLoginCmd) Execute(_ []string) error {
	output, err := opts.OutputFlag.GetOutput()
	if err != nil {
		return err
	}

	resources, err := buildClientResources(opts.HomeFlag, opts.PassphraseFlag)
	if err != nil {
		return err
	}
	log := resources.log
	defer log.AtExit()

	listener := oauth.NewCallbackListener(log)
	redirectURI, err := listener.Start(opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("couldn't start the callback listener: %w", err)
	}
	defer func() {
		if err := listener.Stop(); err != nil {
			log.Warn("couldn't stop the callback listener", logging.Error(err))
		}
	}()

	state := mbrand.RandomStr(stateLength)
	authURL, err := oauth.AuthorizationURL(opts.ClientID, redirectURI, state, resources.cfg.API.Environment)
	if err != nil {
		return fmt.Errorf("couldn't build the authorization URL: %w", err)
	}

	if output.IsHuman() {
		fmt.Printf("Open this URL in your browser to grant access:\n\n  %s\n\n", authURL)
	} else {
		// Keep stdout to the final JSON document.
		fmt.Fprintf(os.Stderr, "open this URL in your browser to grant access: %s\n", authURL)
	}

	ctx, cancel := context.WithTimeout(opts.ctx, opts.Timeout.Get())
	defer cancel()

	callback, err := listener.Wait(ctx)
	if err != nil {
		return fmt.Errorf("no authorization callback received: %w", err)
	}

	svc, err := resources.tokenService()
	if err != nil {
		return err
	}

	token, err := svc.Exchange(opts.ctx, oauth.ExchangeParams{
		ClientID:      opts.ClientID,
		ClientSecret:  opts.ClientSecret,
		RedirectURI:   redirectURI,
		Code:          callback.Code,
		State:         callback.State,
		ExpectedState: state,
	})
	if err != nil {
		return fmt.Errorf("couldn't exchange the authorization code: %w", err)
	}

	result := struct {
		AccessToken string `json:"accessToken"`
		TokenType   string `json:"tokenType"`
	}{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
	}

	if output.IsHuman() {
		log.Info("authorization flow completed, use the access token as the API key of a session")
		if err := mbjson.PrettyPrint(result); err != nil {
			return fmt.Errorf("couldn't pretty print result: %w", err)
		}
	} else if output.IsJSON() {
		return mbjson.Print(result)
	}

	return nil
}
