package commands

import (
	"context"

	"github.com/jessevdk/go-flags"
)

type OAuthCmd struct {
	// Subcommands
	URL   oauthURLCmd   `command:"url" description:"Build the URL end-users grant access on"`
	Login oauthLoginCmd `command:"login" description:"Run the authorization flow locally and exchange the code for a token"`
}

var oauthCmd OAuthCmd

func OAuth(ctx context.Context, parser *flags.Parser) error {
	oauthCmd = OAuthCmd{
		Login: oauthLoginCmd{ctx: ctx},
	}

	desc := "Manage the OAuth authorization flow"
	_, err := parser.AddCommand("oauth", desc, desc, &oauthCmd)
	return err
}
