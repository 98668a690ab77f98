package commands

import (
	"context"
	"fmt"

	"code.meridianbank.io/meridian-go/config"
	mbjson "code.meridianbank.io/meridian-go/libs/json"
	"code.meridianbank.io/meridian-go/logging"
	"code.meridianbank.io/meridian-go/session"

	"github.com/jessevdk/go-flags"
)

type InstallCmd struct {
	ctx context.Context

	config.HomeFlag
	config.PassphraseFlag
	config.OutputFlag
}

var installCmd InstallCmd

func (opts *InstallCmd) Execute(_ []string) error {
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

	keyPair, err := session.EnsureKeyPair(resources.store, resources.cfg.Session.KeySize)
	if err != nil {
		return fmt.Errorf("couldn't get device key pair: %w", err)
	}

	if err := resources.handshake.Install(opts.ctx); err != nil {
		return fmt.Errorf("couldn't install the client: %w", err)
	}

	result := struct {
		KeyFingerprint string `json:"keyFingerprint"`
	}{
		KeyFingerprint: keyPair.Fingerprint(),
	}

	if output.IsHuman() {
		log.Info("installation established successfully",
			logging.String("key-fingerprint", result.KeyFingerprint),
		)
		if err := mbjson.PrettyPrint(result); err != nil {
			return fmt.Errorf("couldn't pretty print result: %w", err)
		}
	} else if output.IsJSON() {
		return mbjson.Print(result)
	}

	return nil
}

func Install(ctx context.Context, parser *flags.Parser) error {
	installCmd = InstallCmd{ctx: ctx}

	short := "Establish the installation with the platform"
	long := "Register the device public key with the platform and persist the returned trust anchor"

	_, err := parser.AddCommand("install", short, long, &installCmd)
	return err
}
