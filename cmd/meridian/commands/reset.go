package commands

import (
	"context"
	"fmt"

	"code.meridianbank.io/meridian-go/config"

	"github.com/jessevdk/go-flags"
)

type ResetCmd struct {
	config.HomeFlag
	config.PassphraseFlag
}

var resetCmd ResetCmd

func (opts *ResetCmd) Execute(_ []string) error {
	resources, err := buildClientResources(opts.HomeFlag, opts.PassphraseFlag)
	if err != nil {
		return err
	}
	log := resources.log
	defer log.AtExit()

	if err := resources.handshake.Reset(); err != nil {
		return fmt.Errorf("couldn't reset the credentials: %w", err)
	}

	return nil
}

func Reset(_ context.Context, parser *flags.Parser) error {
	resetCmd = ResetCmd{}

	short := "Wipe the persisted credentials"
	long := "Remove the installation, the device registration, the session and the OAuth token, keeping the device key pair"

	_, err := parser.AddCommand("reset", short, long, &resetCmd)
	return err
}
