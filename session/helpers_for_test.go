package session_test

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"testing"

	"code.meridianbank.io/meridian-go/client"
	"code.meridianbank.io/meridian-go/crypto"

	"github.com/stretchr/testify/require"
)

func generateKeyPair(t *testing.T) *crypto.KeyPair {
	t.Helper()

	keyPair, err := crypto.GenerateKeyPair(crypto.DefaultKeySize)
	require.NoError(t, err)
	return keyPair
}

// signedResponse rebuilds the canonical response bytes the way the platform
// does, signs them with the given key pair and attaches the signature header.
func signedResponse(t *testing.T, serverKeys *crypto.KeyPair, status int, headers http.Header, body []byte) *client.Response {
	t.Helper()

	if headers == nil {
		headers = http.Header{}
	}

	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "%d\n", status)
	names := make([]string, 0, len(headers))
	for name := range headers {
		if name == "X-Meridian-Server-Signature" || !strings.HasPrefix(name, "X-Meridian-") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(buf, "%s: %s\n", name, headers.Get(name))
	}
	buf.WriteByte('\n')
	buf.Write(body)

	signature, err := serverKeys.Sign(buf.Bytes())
	require.NoError(t, err)
	headers.Set("X-Meridian-Server-Signature", base64.StdEncoding.EncodeToString(signature))

	return &client.Response{
		StatusCode: status,
		Headers:    headers,
		Body:       body,
	}
}

// canonicalRequestBytes rebuilds the byte sequence a request signature is
// expected to cover, from the request alone.
func canonicalRequestBytes(req *client.Request) []byte {
	path := req.Path
	if len(req.Query) != 0 {
		path += "?" + req.Query.Encode()
	}

	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "%s %s\n", req.Method, path)
	names := make([]string, 0, len(req.Headers))
	for name := range req.Headers {
		if name == "X-Meridian-Client-Signature" {
			continue
		}
		if name != "Cache-Control" && name != "User-Agent" && !strings.HasPrefix(name, "X-Meridian-") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(buf, "%s: %s\n", name, req.Headers.Get(name))
	}
	buf.WriteByte('\n')
	buf.Write(req.Body)
	return buf.Bytes()
}

func verifyRequestSignature(t *testing.T, clientKeys *crypto.KeyPair, req *client.Request) {
	t.Helper()

	signature, err := base64.StdEncoding.DecodeString(req.Headers.Get("X-Meridian-Client-Signature"))
	require.NoError(t, err)
	require.NoError(t, crypto.Verify(clientKeys.Public(), canonicalRequestBytes(req), signature))
}
