package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"code.meridianbank.io/meridian-go/client"
)

// The platform wraps every body in an envelope: success bodies are a list of
// single-key items named after what they carry, error bodies a list of
// descriptions.
//
//	{"Response":[{"Id":{...}},{"Token":{...}}]}
//	{"Error":[{"error_description":"..."}]}
type responseEnvelope struct {
	Response []json.RawMessage `json:"Response"`
	Error    []errorItem       `json:"Error"`
}

type errorItem struct {
	Description string `json:"error_description"`
}

type idItem struct {
	ID string `json:"id"`
}

type tokenItem struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

type serverKeyItem struct {
	ServerPublicKey string `json:"server_public_key"`
}

type installationRequest struct {
	ClientPublicKey string `json:"client_public_key"`
}

type deviceRequest struct {
	Description  string   `json:"description"`
	Secret       string   `json:"secret"`
	PermittedIPs []string `json:"permitted_ips,omitempty"`
}

type sessionRequest struct {
	Secret string `json:"secret"`
}

// decodeItems splits a success body into its wrapper-keyed items.
func decodeItems(body []byte) ([]map[string]json.RawMessage, error) {
	envelope := &responseEnvelope{}
	if err := json.Unmarshal(body, envelope); err != nil {
		return nil, fmt.Errorf("couldn't parse the response body: %w", err)
	}

	items := make([]map[string]json.RawMessage, 0, len(envelope.Response))
	for _, raw := range envelope.Response {
		item := map[string]json.RawMessage{}
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("couldn't parse a response item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

// decodeWrapper finds the first item carrying the given wrapper key and
// decodes it. It reports whether the wrapper was present at all.
func decodeWrapper(items []map[string]json.RawMessage, key string, into interface{}) (bool, error) {
	for _, item := range items {
		raw, ok := item[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, into); err != nil {
			return false, fmt.Errorf("couldn't parse the %s item: %w", key, err)
		}
		return true, nil
	}
	return false, nil
}

// parseUser extracts the one user record from the response items. The user
// wrappers form a tagged union: exactly one recognized kind must be present.
func parseUser(items []map[string]json.RawMessage) (User, error) {
	wrappers := map[string]json.RawMessage{}
	for _, item := range items {
		for key, raw := range item {
			if strings.HasPrefix(key, "User") {
				wrappers[key] = raw
			}
		}
	}

	buf, err := json.Marshal(wrappers)
	if err != nil {
		return User{}, err
	}
	user := User{}
	if err := json.Unmarshal(buf, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// newAPIError turns a non-success response into an APIError, salvaging the
// platform's own descriptions when the body carries them.
func newAPIError(response *client.Response) *APIError {
	messages := []string{}
	envelope := &responseEnvelope{}
	if err := json.Unmarshal(response.Body, envelope); err == nil {
		for _, item := range envelope.Error {
			if item.Description != "" {
				messages = append(messages, item.Description)
			}
		}
	}
	if len(messages) == 0 {
		messages = []string{http.StatusText(response.StatusCode)}
	}
	return &APIError{
		StatusCode: response.StatusCode,
		Messages:   messages,
	}
}
