package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"code.meridianbank.io/meridian-go/logging"

	"github.com/cenkalti/backoff/v4"
)

//go:generate go run github.com/golang/mock/mockgen -destination mocks/transport_mock.go -package mocks code.meridianbank.io/meridian-go/client Transport

const namedLogger = "client"

// Request is a wire-agnostic description of one API call. The path is
// relative to the API base of the environment and starts with a slash.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers http.Header
	Body    []byte
}

// Response is the raw outcome of one API call, before any verification or
// decoding.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Transport carries one prepared request to the platform. Implementations
// return an error for transport-level failures only, an HTTP error status is
// a Response like any other.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// HTTPTransport sends requests over HTTP, retrying transport-level failures
// with an exponential backoff.
type HTTPTransport struct {
	log     *logging.Logger
	clt     *http.Client
	baseURL string
	retries uint64
}

func NewHTTPTransport(log *logging.Logger, cfg Config) (*HTTPTransport, error) {
	baseURL := cfg.APIURL
	if baseURL == "" {
		apiURL, err := cfg.Environment.APIURL()
		if err != nil {
			return nil, err
		}
		baseURL = apiURL
	}

	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &HTTPTransport{
		log: log,
		clt: &http.Client{
			Timeout: cfg.Timeout.Get(),
		},
		baseURL: baseURL,
		retries: cfg.Retries,
	}, nil
}

func (t *HTTPTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	var resp *Response

	op := func() error {
		r, err := t.send(ctx, req)
		if err != nil {
			t.log.Warn("couldn't reach the platform, retrying",
				logging.String("method", req.Method),
				logging.String("path", req.Path),
				logging.Error(err),
			)
			return err
		}
		resp = r
		return nil
	}

	boff := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), t.retries), ctx)
	if err := backoff.Retry(op, boff); err != nil {
		return nil, fmt.Errorf("couldn't reach the platform: %w", err)
	}

	if t.log.GetLevel() <= logging.DebugLevel {
		t.log.Debug("response received from the platform",
			logging.String("method", req.Method),
			logging.String("path", req.Path),
			logging.Int("status", resp.StatusCode),
		)
	}

	return resp, nil
}

func (t *HTTPTransport) send(ctx context.Context, req *Request) (*Response, error) {
	reqURL := t.baseURL + req.Path
	if len(req.Query) != 0 {
		reqURL += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, reqURL, bytes.NewReader(req.Body))
	if err != nil {
		// The request itself is malformed, retrying cannot fix it.
		return nil, backoff.Permanent(fmt.Errorf("couldn't build request: %w", err))
	}
	for name, values := range req.Headers {
		for _, value := range values {
			httpReq.Header.Add(name, value)
		}
	}

	httpResp, err := t.clt.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
	}, nil
}
