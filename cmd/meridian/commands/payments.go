package commands

import (
	"context"
	"fmt"

	"code.meridianbank.io/meridian-go/config"
	mbjson "code.meridianbank.io/meridian-go/libs/json"
	"code.meridianbank.io/meridian-go/payments"
	"code.meridianbank.io/meridian-go/session"

	"github.com/jessevdk/go-flags"
)

type PaymentsCmd struct {
	ctx context.Context

	config.HomeFlag
	config.PassphraseFlag
	config.OutputFlag

	APIKey    string `long:"api-key" required:"true" description:"The API key the session is opened with"`
	UserID    string `long:"user-id" required:"true" description:"The identifier of the user the account belongs to"`
	AccountID string `long:"account-id" required:"true" description:"The identifier of the monetary account the payments are booked on"`
	Count     int    `long:"count" default:"10" description:"How many payments to return at most"`
	OlderID   string `long:"older-id" description:"Only return payments older than this payment identifier"`
}

var paymentsCmd PaymentsCmd

func (opts *PaymentsCmd) Execute(_ []string) error {
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

	if _, err := resources.handshake.EnsureSession(opts.ctx, opts.APIKey, session.DeviceOptions{}); err != nil {
		return fmt.Errorf("couldn't open a session: %w", err)
	}

	svc := payments.NewService(log, resources.sessionRequester())

	page, err := svc.ListPayments(opts.ctx, opts.UserID, opts.AccountID, payments.ListParams{
		Count:   opts.Count,
		OlderID: opts.OlderID,
	})
	if err != nil {
		return fmt.Errorf("couldn't list the payments: %w", err)
	}

	result := struct {
		Payments []payments.Payment `json:"payments"`
	}{
		Payments: page,
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

func Payments(ctx context.Context, parser *flags.Parser) error {
	paymentsCmd = PaymentsCmd{ctx: ctx}

	short := "List the payments of a monetary account"
	long := "Return a page of payments booked on the monetary account, newest first"

	_, err := parser.AddCommand("payments", short, long, &paymentsCmd)
	return err
}
