package commands

import (
	"context"
	"fmt"

	"code.meridianbank.io/meridian-go/client"
	"code.meridianbank.io/meridian-go/config"
	mbjson "code.meridianbank.io/meridian-go/libs/json"
	"code.meridianbank.io/meridian-go/logging"
	"code.meridianbank.io/meridian-go/paths"
	"code.meridianbank.io/meridian-go/session"
	storev1 "code.meridianbank.io/meridian-go/store/v1"

	"github.com/jessevdk/go-flags"
)

type InitCmd struct {
	config.HomeFlag
	config.PassphraseFlag
	config.OutputFlag

	Environment client.Environment `long:"environment" description:"The platform the client talks to (production, sandbox)" default:"sandbox"`
	Force       bool               `short:"f" long:"force" description:"Erase existing configuration at the specified path"`
}

var initCmd InitCmd

func (opts *InitCmd) Execute(_ []string) error {
	log := logging.NewLoggerFromEnv(logging.NewDefaultConfig().Environment)
	defer log.AtExit()

	output, err := opts.OutputFlag.GetOutput()
	if err != nil {
		return err
	}

	pass, err := opts.PassphraseFile.Get(passphrasePrompt, true)
	if err != nil {
		return err
	}

	mbPaths := paths.New(opts.Home)

	cfgLoader, err := config.InitialiseLoader(mbPaths)
	if err != nil {
		return fmt.Errorf("couldn't initialise configuration loader: %w", err)
	}

	configExists, err := cfgLoader.ConfigExists()
	if err != nil {
		return fmt.Errorf("couldn't verify configuration presence: %w", err)
	}
	if configExists && !opts.Force {
		return fmt.Errorf("configuration already exists at `%s` please remove it first or re-run using -f", cfgLoader.ConfigFilePath())
	}
	if configExists && opts.Force {
		cfgLoader.RemoveConfig()
	}

	cfg := config.NewDefaultConfig()
	cfg.API.Environment = opts.Environment

	if err := cfgLoader.SaveConfig(&cfg); err != nil {
		return fmt.Errorf("couldn't save configuration file: %w", err)
	}

	credStore, err := storev1.InitialiseStore(mbPaths, pass)
	if err != nil {
		return fmt.Errorf("couldn't initialise credentials store: %w", err)
	}

	keyPair, err := session.EnsureKeyPair(session.NewStore(credStore), cfg.Session.KeySize)
	if err != nil {
		return fmt.Errorf("couldn't generate device key pair: %w", err)
	}

	result := struct {
		ConfigFilePath string `json:"configFilePath"`
		Environment    string `json:"environment"`
		KeyFingerprint string `json:"keyFingerprint"`
	}{
		ConfigFilePath: cfgLoader.ConfigFilePath(),
		Environment:    cfg.API.Environment.String(),
		KeyFingerprint: keyPair.Fingerprint(),
	}

	if output.IsHuman() {
		log.Info("client initialised successfully",
			logging.String("config-path", result.ConfigFilePath),
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

func Init(_ context.Context, parser *flags.Parser) error {
	initCmd = InitCmd{}

	short := "Initialise the client"
	long := "Generate the configuration file and the device key pair required before talking to the platform"

	_, err := parser.AddCommand("init", short, long, &initCmd)
	return err
}
