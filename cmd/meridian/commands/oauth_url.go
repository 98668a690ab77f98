package commands

import (
	"fmt"

	"code.meridianbank.io/meridian-go/config"
	mbjson "code.meridianbank.io/meridian-go/libs/json"
	"code.meridianbank.io/meridian-go/oauth"
)

type oauthURLCmd struct {
	config.HomeFlag
	config.OutputFlag

	ClientID    string `long:"client-id" required:"true" description:"The OAuth client identifier"`
	RedirectURI string `long:"redirect-uri" required:"true" description:"The URI the user is sent back to after granting access"`
	State       string `long:"state" description:"An opaque value echoed back on the redirect, empty omits it"`
}

func (opts *oauthURLCmd) Execute(_ []string) error {
	output, err := opts.OutputFlag.GetOutput()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts.HomeFlag)
	if err != nil {
		return err
	}

	authURL, err := oauth.AuthorizationURL(opts.ClientID, opts.RedirectURI, opts.State, cfg.API.Environment)
	if err != nil {
		return fmt.Errorf("couldn't build the authorization URL: %w", err)
	}

	result := struct {
		AuthorizationURL string `json:"authorizationUrl"`
	}{
		AuthorizationURL: authURL,
	}

	if output.IsHuman() {
		if err := mbjson.PrettyPrint(result); err != nil {
			return fmt.Errorf("couldn't pretty print result: %w", err)
		}
	} else if output.IsJSON() {
		return mbjson.Print(result)
	}

	return nil
}
