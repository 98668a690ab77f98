package commands

import (
	"context"
	"fmt"
	"time"

	"code.meridianbank.io/meridian-go/config"
	mbjson "code.meridianbank.io/meridian-go/libs/json"
	"code.meridianbank.io/meridian-go/logging"
	"code.meridianbank.io/meridian-go/session"

	"github.com/jessevdk/go-flags"
)

type CreateSessionCmd struct {
	ctx context.Context

	config.HomeFlag
	config.PassphraseFlag
	config.OutputFlag

	APIKey       string   `long:"api-key" required:"true" description:"The API key to open the session with"`
	Description  string   `long:"description" default:"meridian-go" description:"A description of this device, used if the device is not registered yet"`
	PermittedIPs []string `long:"permitted-ip" description:"An IP the API key may be used from, used if the device is not registered yet"`
}

var createSessionCmd CreateSessionCmd

func (opts *CreateSessionCmd) Execute(_ []string) error {
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

	sess, err := resources.handshake.EnsureSession(opts.ctx, opts.APIKey, session.DeviceOptions{
		Description:  opts.Description,
		PermittedIPs: opts.PermittedIPs,
	})
	if err != nil {
		return fmt.Errorf("couldn't create the session: %w", err)
	}

	result := struct {
		SessionID string `json:"sessionId"`
		UserKind  string `json:"userKind"`
		UserName  string `json:"userName,omitempty"`
		ExpiresAt string `json:"expiresAt"`
	}{
		SessionID: sess.ID,
		UserKind:  string(sess.User.Kind()),
		UserName:  sess.User.DisplayName(),
		ExpiresAt: sess.ExpiresAt.Format(time.RFC3339),
	}

	if output.IsHuman() {
		log.Info("session created successfully",
			logging.String("session-id", result.SessionID),
			logging.String("user-kind", result.UserKind),
		)
		if err := mbjson.PrettyPrint(result); err != nil {
			return fmt.Errorf("couldn't pretty print result: %w", err)
		}
	} else if output.IsJSON() {
		return mbjson.Print(result)
	}

	return nil
}

func CreateSession(ctx context.Context, parser *flags.Parser) error {
	createSessionCmd = CreateSessionCmd{ctx: ctx}

	short := "Open a session with the platform"
	long := "Walk the whole handshake sequence, skipping the steps already satisfied by persisted credentials, and exchange the API key for a session token"

	_, err := parser.AddCommand("create-session", short, long, &createSessionCmd)
	return err
}
