package commands

import (
	"context"
	"fmt"

	"code.meridianbank.io/meridian-go/config"

	"github.com/jessevdk/go-flags"
)

type DestroySessionCmd struct {
	ctx context.Context

	config.HomeFlag
	config.PassphraseFlag
}

var destroySessionCmd DestroySessionCmd

func (opts *DestroySessionCmd) Execute(_ []string) error {
	resources, err := buildClientResources(opts.HomeFlag, opts.PassphraseFlag)
	if err != nil {
		return err
	}
	log := resources.log
	defer log.AtExit()

	if err := resources.handshake.DestroySession(opts.ctx); err != nil {
		return fmt.Errorf("couldn't destroy the session: %w", err)
	}

	return nil
}

func DestroySession(ctx context.Context, parser *flags.Parser) error {
	destroySessionCmd = DestroySessionCmd{ctx: ctx}

	short := "Destroy the active session"
	long := "Invalidate the session server-side on a best-effort basis and clear it locally"

	_, err := parser.AddCommand("destroy-session", short, long, &destroySessionCmd)
	return err
}
