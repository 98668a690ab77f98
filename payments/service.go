package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"code.meridianbank.io/meridian-go/logging"

	"github.com/shopspring/decimal"
)

const namedLogger = "payments"

const (
	// MinimumAgeFloor and MinimumAgeCeiling bound the minimum age a payment
	// request may impose on its counterparty.
	MinimumAgeFloor   = 12
	MinimumAgeCeiling = 100
)

var (
	ErrMinimumAgeTooHigh   = errors.New("the minimum age cannot be higher than 100")
	ErrMinimumAgeTooLow    = errors.New("the minimum age cannot be lower than 12")
	ErrMissingAmount       = errors.New("the amount requires a value and a currency")
	ErrMissingCounterparty = errors.New("the counterparty alias is required")
	ErrMissingDescription  = errors.New("the description is required")
	ErrMissingID           = errors.New("the platform response doesn't carry an identifier")
)

// Requester runs one signed exchange against the platform API. The session
// package provides the canonical implementation.
type Requester interface {
	Do(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error)
}

// Amount is a monetary amount with an exact decimal value.
type Amount struct {
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
}

// Pointer identifies a counterparty by email address, phone number or account
// number.
type Pointer struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Name  string `json:"name,omitempty"`
}

// RequestInquiryParams describes a payment request to create. All checks run
// before anything is sent: a violation is a configuration mistake on the
// caller's side, not a platform answer.
type RequestInquiryParams struct {
	Amount       Amount
	Counterparty Pointer
	Description  string
	// MinimumAge the counterparty must have, between 12 and 100. Zero leaves
	// it unset.
	MinimumAge  int
	RedirectURL string
}

func (p RequestInquiryParams) validate() error {
	if p.Amount.Value.IsZero() || p.Amount.Currency == "" {
		return ErrMissingAmount
	}
	if p.Counterparty.Value == "" {
		return ErrMissingCounterparty
	}
	if p.Description == "" {
		return ErrMissingDescription
	}
	if p.MinimumAge != 0 {
		// Each bound stands on its own.
		if p.MinimumAge < MinimumAgeFloor {
			return ErrMinimumAgeTooLow
		}
		if p.MinimumAge > MinimumAgeCeiling {
			return ErrMinimumAgeTooHigh
		}
	}
	return nil
}

// RequestInquiry is the payment request as the platform tracks it.
type RequestInquiry struct {
	ID string
}

// Payment is one booked payment on a monetary account.
type Payment struct {
	ID                string  `json:"id"`
	Amount            Amount  `json:"amount"`
	Description       string  `json:"description"`
	CounterpartyAlias Pointer `json:"counterparty_alias"`
	Created           string  `json:"created"`
}

// ListParams narrows the page of payments returned.
type ListParams struct {
	Count   int
	OlderID string
}

// Service wraps the payment resources of the platform API.
type Service struct {
	log *logging.Logger
	rq  Requester
}

func NewService(log *logging.Logger, rq Requester) *Service {
	return &Service{
		log: log.Named(namedLogger),
		rq:  rq,
	}
}

type requestInquiryRequest struct {
	AmountInquired    Amount  `json:"amount_inquired"`
	CounterpartyAlias Pointer `json:"counterparty_alias"`
	Description       string  `json:"description"`
	MinimumAge        int     `json:"minimum_age,omitempty"`
	RedirectURL       string  `json:"redirect_url,omitempty"`
}

// CreateRequestInquiry asks the counterparty to pay the given amount.
func (s *Service) CreateRequestInquiry(ctx context.Context, userID, accountID string, params RequestInquiryParams) (*RequestInquiry, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(requestInquiryRequest{
		AmountInquired:    params.Amount,
		CounterpartyAlias: params.Counterparty,
		Description:       params.Description,
		MinimumAge:        params.MinimumAge,
		RedirectURL:       params.RedirectURL,
	})
	if err != nil {
		return nil, err
	}

	responseBody, err := s.rq.Do(ctx, http.MethodPost, accountPath(userID, accountID, "/request-inquiry"), nil, body)
	if err != nil {
		return nil, fmt.Errorf("couldn't create the payment request: %w", err)
	}

	id, err := unwrapID(responseBody)
	if err != nil {
		return nil, err
	}

	s.log.Info("payment request created", logging.String("request-id", id))
	return &RequestInquiry{ID: id}, nil
}

// ListPayments returns a page of payments booked on the account, newest
// first.
func (s *Service) ListPayments(ctx context.Context, userID, accountID string, params ListParams) ([]Payment, error) {
	query := url.Values{}
	if params.Count > 0 {
		query.Set("count", strconv.Itoa(params.Count))
	}
	if params.OlderID != "" {
		query.Set("older_id", params.OlderID)
	}

	responseBody, err := s.rq.Do(ctx, http.MethodGet, accountPath(userID, accountID, "/payment"), query, nil)
	if err != nil {
		return nil, fmt.Errorf("couldn't list the payments: %w", err)
	}

	return unwrapPayments(responseBody)
}

func accountPath(userID, accountID, resource string) string {
	return "/user/" + userID + "/monetary-account/" + accountID + resource
}

func unwrapID(body []byte) (string, error) {
	envelope := struct {
		Response []struct {
			ID *struct {
				ID string `json:"id"`
			} `json:"Id"`
		} `json:"Response"`
	}{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("couldn't parse the response: %w", err)
	}

	for _, item := range envelope.Response {
		if item.ID != nil && item.ID.ID != "" {
			return item.ID.ID, nil
		}
	}
	return "", ErrMissingID
}

func unwrapPayments(body []byte) ([]Payment, error) {
	envelope := struct {
		Response []struct {
			Payment *Payment `json:"Payment"`
		} `json:"Response"`
	}{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("couldn't parse the response: %w", err)
	}

	payments := make([]Payment, 0, len(envelope.Response))
	for _, item := range envelope.Response {
		if item.Payment != nil {
			payments = append(payments, *item.Payment)
		}
	}
	return payments, nil
}
