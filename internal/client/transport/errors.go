package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
)

var (
	// ErrAuthorizationPreset rejects requests that already carry an
	// Authorization header: the transport owns that header.
	ErrAuthorizationPreset = errors.New("request must not set Authorization")
	// ErrNoRefreshToken: a 401 arrived and there is nothing to refresh with.
	ErrNoRefreshToken = errors.New("no refresh token stored")
	// ErrRefreshFailed: the refresh endpoint did not issue a new access token.
	ErrRefreshFailed = errors.New("token refresh failed")
)

// StatusError is a non-2xx API response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	if d := e.Detail(); d != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, d)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

func (e *StatusError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// ValidationErrors decodes a validation body of the form
// {"field": ["message", ...], "non_field_errors": [...]}. Keys whose values
// are not string lists are skipped.
func (e *StatusError) ValidationErrors() map[string][]string {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(e.Body, &raw); err != nil {
		return nil
	}
	out := make(map[string][]string, len(raw))
	for k, v := range raw {
		var msgs []string
		if err := json.Unmarshal(v, &msgs); err == nil && len(msgs) > 0 {
			out[k] = msgs
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Detail picks one human-readable message from the body: "detail" or
// "error", then "non_field_errors", then the first field error in key order.
func (e *StatusError) Detail() string {
	var d struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(e.Body, &d); err == nil {
		if d.Detail != "" {
			return d.Detail
		}
		if d.Error != "" {
			return d.Error
		}
	}

	fields := e.ValidationErrors()
	if msgs, ok := fields["non_field_errors"]; ok {
		return msgs[0]
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		return k + ": " + fields[k][0]
	}
	return ""
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
