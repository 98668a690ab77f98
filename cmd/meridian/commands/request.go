package commands

import (
	"context"
	"fmt"

	"code.meridianbank.io/meridian-go/config"
	mbjson "code.meridianbank.io/meridian-go/libs/json"
	"code.meridianbank.io/meridian-go/logging"
	"code.meridianbank.io/meridian-go/payments"
	"code.meridianbank.io/meridian-go/session"

	"github.com/jessevdk/go-flags"
	"github.com/shopspring/decimal"
)

type RequestCmd struct {
	ctx context.Context

	config.HomeFlag
	config.PassphraseFlag
	config.OutputFlag

	APIKey           string `long:"api-key" required:"true" description:"The API key the session is opened with"`
	UserID           string `long:"user-id" required:"true" description:"The identifier of the user the account belongs to"`
	AccountID        string `long:"account-id" required:"true" description:"The identifier of the monetary account the request is created on"`
	Amount           string `long:"amount" required:"true" description:"The amount to request, e.g. 12.50"`
	Currency         string `long:"currency" default:"EUR" description:"The currency of the amount, as an ISO 4217 code"`
	Counterparty     string `long:"counterparty" required:"true" description:"The alias of the counterparty the amount is requested from"`
	CounterpartyType string `long:"counterparty-type" default:"EMAIL" description:"The kind of alias used (EMAIL, PHONE_NUMBER, IBAN)"`
	Description      string `long:"description" required:"true" description:"What the request is about, shown to the counterparty"`
	MinimumAge       int    `long:"minimum-age" description:"The minimum age the counterparty must have, between 12 and 100, zero leaves it unset"`
	RedirectURL      string `long:"redirect-url" description:"The URL the counterparty is sent to after responding"`
}

var requestCmd RequestCmd

func (opts *RequestCmd) Execute(_ []string) error {
	output, err := opts.OutputFlag.GetOutput()
	if err != nil {
		return err
	}

	amount, err := decimal.NewFromString(opts.Amount)
	if err != nil {
		return fmt.Errorf("couldn't parse the amount: %w", err)
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

	inquiry, err := svc.CreateRequestInquiry(opts.ctx, opts.UserID, opts.AccountID, payments.RequestInquiryParams{
		Amount: payments.Amount{
			Value:    amount,
			Currency: opts.Currency,
		},
		Counterparty: payments.Pointer{
			Type:  opts.CounterpartyType,
			Value: opts.Counterparty,
		},
		Description: opts.Description,
		MinimumAge:  opts.MinimumAge,
		RedirectURL: opts.RedirectURL,
	})
	if err != nil {
		return fmt.Errorf("couldn't create the payment request: %w", err)
	}

	result := struct {
		RequestID string `json:"requestId"`
	}{
		RequestID: inquiry.ID,
	}

	if output.IsHuman() {
		log.Info("payment request created successfully",
			logging.String("request-id", result.RequestID),
		)
		if err := mbjson.PrettyPrint(result); err != nil {
			return fmt.Errorf("couldn't pretty print result: %w", err)
		}
	} else if output.IsJSON() {
		return mbjson.Print(result)
	}

	return nil
}

func Request(ctx context.Context, parser *flags.Parser) error {
	requestCmd = RequestCmd{ctx: ctx}

	short := "Create a payment request"
	long := "Ask a counterparty to pay the given amount onto the monetary account"

	_, err := parser.AddCommand("request", short, long, &requestCmd)
	return err
}
