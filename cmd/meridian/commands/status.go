package commands

import (
	"context"
	"fmt"
	"time"

	"code.meridianbank.io/meridian-go/config"
	mbjson "code.meridianbank.io/meridian-go/libs/json"

	"github.com/jessevdk/go-flags"
)

type StatusCmd struct {
	config.HomeFlag
	config.PassphraseFlag
	config.OutputFlag
}

var statusCmd StatusCmd

func (opts *StatusCmd) Execute(_ []string) error {
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

	// The status is derived from the persisted snapshot, no network call is
	// involved.
	snapshot, err := resources.store.Load()
	if err != nil {
		return fmt.Errorf("couldn't load the credentials: %w", err)
	}

	result := struct {
		Status         string `json:"status"`
		Environment    string `json:"environment"`
		KeyFingerprint string `json:"keyFingerprint,omitempty"`
		DeviceID       string `json:"deviceId,omitempty"`
		SessionID      string `json:"sessionId,omitempty"`
		ExpiresAt      string `json:"expiresAt,omitempty"`
	}{
		Status:      string(snapshot.Status(time.Now())),
		Environment: resources.cfg.API.Environment.String(),
	}
	if snapshot.KeyPair != nil {
		result.KeyFingerprint = snapshot.KeyPair.Fingerprint()
	}
	if snapshot.Device != nil {
		result.DeviceID = snapshot.Device.ID
	}
	if snapshot.Session != nil {
		result.SessionID = snapshot.Session.ID
		result.ExpiresAt = snapshot.Session.ExpiresAt.Format(time.RFC3339)
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

func Status(_ context.Context, parser *flags.Parser) error {
	statusCmd = StatusCmd{}

	short := "Show where the client stands in the handshake sequence"
	long := "Derive the handshake status from the persisted credentials, without talking to the platform"

	_, err := parser.AddCommand("status", short, long, &statusCmd)
	return err
}
