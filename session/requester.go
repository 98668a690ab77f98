package session

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"code.meridianbank.io/meridian-go/client"
	"code.meridianbank.io/meridian-go/crypto"
	"code.meridianbank.io/meridian-go/logging"
	"code.meridianbank.io/meridian-go/metrics"
	"code.meridianbank.io/meridian-go/version"

	uuid "github.com/satori/go.uuid"
)

const (
	headerCacheControl    = "Cache-Control"
	headerUserAgent       = "User-Agent"
	headerRequestID       = "X-Meridian-Client-Request-Id"
	headerAuthentication  = "X-Meridian-Client-Authentication"
	headerSignature       = "X-Meridian-Client-Signature"
	headerEncryptionKey   = "X-Meridian-Client-Encryption-Key"
	headerEncryptionIV    = "X-Meridian-Client-Encryption-Iv"
	headerEncryptionTag   = "X-Meridian-Client-Encryption-Tag"
	headerServerSignature = "X-Meridian-Server-Signature"
	headerPrefix          = "X-Meridian-"
)

// Auth is the credential material attached to one exchange. The token fills
// the authentication header, the key pair signs the canonical request bytes,
// the platform key checks the response signature and wraps body keys. A zero
// Auth produces the one unauthenticated call of the protocol, the
// installation.
type Auth struct {
	Token     Token
	KeyPair   *crypto.KeyPair
	ServerKey *rsa.PublicKey
}

// Requester is the signed exchange primitive every call to the platform goes
// through.
type Requester struct {
	log       *logging.Logger
	transport client.Transport
	userAgent string
	encrypt   bool
}

func NewRequester(log *logging.Logger, cfg Config, transport client.Transport) *Requester {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Requester{
		log:       log,
		transport: transport,
		userAgent: version.UserAgent(),
		encrypt:   bool(cfg.EncryptBodies),
	}
}

// Do runs one exchange with the platform: sign, send, verify, decrypt.
// Non-success statuses come back as *APIError carrying the platform's own
// descriptions.
func (r *Requester) Do(ctx context.Context, method, path string, query url.Values, body []byte, auth Auth) ([]byte, error) {
	headers := http.Header{}
	headers.Set(headerCacheControl, "no-cache")
	headers.Set(headerUserAgent, r.userAgent)
	headers.Set(headerRequestID, uuid.NewV4().String())
	if !auth.Token.IsEmpty() {
		headers.Set(headerAuthentication, auth.Token.String())
	}

	wireBody := body
	if r.encrypt && auth.ServerKey != nil && len(body) != 0 {
		envelope, err := crypto.EncryptEnvelope(auth.ServerKey, body)
		if err != nil {
			return nil, fmt.Errorf("couldn't encrypt the request body: %w", err)
		}
		headers.Set(headerEncryptionKey, base64.StdEncoding.EncodeToString(envelope.Key))
		headers.Set(headerEncryptionIV, base64.StdEncoding.EncodeToString(envelope.IV))
		headers.Set(headerEncryptionTag, base64.StdEncoding.EncodeToString(envelope.Tag))
		wireBody = envelope.Ciphertext
	}

	if auth.KeyPair != nil {
		// The signature commits to the bytes that go on the wire, ciphertext
		// and encryption headers included.
		signature, err := auth.KeyPair.Sign(canonicalRequest(method, requestPath(path, query), headers, wireBody))
		if err != nil {
			return nil, fmt.Errorf("couldn't sign the request: %w", err)
		}
		headers.Set(headerSignature, base64.StdEncoding.EncodeToString(signature))
	}

	endpoint := endpointLabel(path)
	tc := metrics.NewTimeCounter(endpoint)
	response, err := r.transport.Send(ctx, &client.Request{
		Method:  method,
		Path:    path,
		Query:   query,
		Headers: headers,
		Body:    wireBody,
	})
	tc.APIRequestTimeAdd()
	if err != nil {
		metrics.APIRequestInc(endpoint, "unreachable")
		return nil, err
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		metrics.APIRequestInc(endpoint, "api_error")
		r.log.Debug("the platform rejected the request",
			logging.String("method", method),
			logging.String("path", path),
			logging.Int("status", response.StatusCode),
		)
		return nil, newAPIError(response)
	}

	if auth.ServerKey != nil {
		if err := verifyResponse(auth.ServerKey, response); err != nil {
			metrics.APIRequestInc(endpoint, "integrity_error")
			return nil, err
		}
	}

	responseBody := response.Body
	if response.Headers.Get(headerEncryptionKey) != "" {
		if auth.KeyPair == nil {
			metrics.APIRequestInc(endpoint, "decryption_error")
			return nil, ErrMissingDecryptionKey
		}
		responseBody, err = decryptResponseBody(auth.KeyPair, response)
		if err != nil {
			metrics.APIRequestInc(endpoint, "decryption_error")
			return nil, err
		}
	}

	metrics.APIRequestInc(endpoint, "ok")
	return responseBody, nil
}

// verifyResponse checks the platform signature over the canonical response
// bytes. A response that doesn't verify is rejected, never partially used.
func verifyResponse(serverKey *rsa.PublicKey, response *client.Response) error {
	encodedSignature := response.Headers.Get(headerServerSignature)
	if encodedSignature == "" {
		return ErrResponseIntegrity
	}
	signature, err := base64.StdEncoding.DecodeString(encodedSignature)
	if err != nil {
		return ErrResponseIntegrity
	}
	if err := crypto.Verify(serverKey, canonicalResponse(response), signature); err != nil {
		return ErrResponseIntegrity
	}
	return nil
}

func decryptResponseBody(keyPair *crypto.KeyPair, response *client.Response) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(response.Headers.Get(headerEncryptionKey))
	if err != nil {
		return nil, fmt.Errorf("couldn't decode the body key header: %w", err)
	}
	iv, err := base64.StdEncoding.DecodeString(response.Headers.Get(headerEncryptionIV))
	if err != nil {
		return nil, fmt.Errorf("couldn't decode the body IV header: %w", err)
	}
	tag, err := base64.StdEncoding.DecodeString(response.Headers.Get(headerEncryptionTag))
	if err != nil {
		return nil, fmt.Errorf("couldn't decode the body tag header: %w", err)
	}

	plain, err := keyPair.Decrypt(&crypto.Envelope{
		Key:        key,
		IV:         iv,
		Ciphertext: response.Body,
		Tag:        tag,
	})
	if err != nil {
		return nil, fmt.Errorf("couldn't decrypt the response body: %w", err)
	}
	return plain, nil
}

// canonicalRequest is the byte form the client signature commits to:
//
//	METHOD /path\n
//	Header: value\n        (sorted Cache-Control, User-Agent, X-Meridian-*)
//	\n
//	body
func canonicalRequest(method, pathAndQuery string, headers http.Header, body []byte) []byte {
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "%s %s\n", method, pathAndQuery)
	writeSignedHeaders(buf, headers, isSignedRequestHeader)
	buf.WriteByte('\n')
	buf.Write(body)
	return buf.Bytes()
}

// canonicalResponse is the byte form the platform signature commits to:
//
//	status\n
//	Header: value\n        (sorted X-Meridian-*, signature excluded)
//	\n
//	body
func canonicalResponse(response *client.Response) []byte {
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "%d\n", response.StatusCode)
	writeSignedHeaders(buf, response.Headers, isSignedResponseHeader)
	buf.WriteByte('\n')
	buf.Write(response.Body)
	return buf.Bytes()
}

func writeSignedHeaders(buf *bytes.Buffer, headers http.Header, include func(string) bool) {
	names := make([]string, 0, len(headers))
	for name := range headers {
		if include(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(buf, "%s: %s\n", name, headers.Get(name))
	}
}

func isSignedRequestHeader(name string) bool {
	if name == headerSignature {
		return false
	}
	return name == headerCacheControl || name == headerUserAgent || strings.HasPrefix(name, headerPrefix)
}

func isSignedResponseHeader(name string) bool {
	return name != headerServerSignature && strings.HasPrefix(name, headerPrefix)
}

func requestPath(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

// endpointLabel keeps metrics cardinality down to the resource root.
func endpointLabel(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

// AuthProvider hands out the credential material for the current session.
type AuthProvider interface {
	SessionAuth() (Auth, error)
}

// AnonymousAuth satisfies AuthProvider with the zero credential, for the rare
// endpoints living outside the trust chain, like the OAuth token host.
type AnonymousAuth struct{}

func (AnonymousAuth) SessionAuth() (Auth, error) {
	return Auth{}, nil
}

// BoundRequester pairs a requester with a credential source, giving resource
// services an auth-free call surface.
type BoundRequester struct {
	requester *Requester
	provider  AuthProvider
}

func NewBoundRequester(requester *Requester, provider AuthProvider) *BoundRequester {
	return &BoundRequester{
		requester: requester,
		provider:  provider,
	}
}

func (b *BoundRequester) Do(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	auth, err := b.provider.SessionAuth()
	if err != nil {
		return nil, err
	}
	return b.requester.Do(ctx, method, path, query, body, auth)
}
