package gophora

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies a failed backend call.
type ErrorKind string

const (
	KindNetwork    ErrorKind = "network"    // transport failure, no response
	KindAuth       ErrorKind = "auth"       // 401/403
	KindValidation ErrorKind = "validation" // 400/422
	KindNotFound   ErrorKind = "not_found"  // 404
	KindServer     ErrorKind = "server"     // everything else
)

// APIError is the normalized form of every backend failure. Screens render
// Message verbatim in their error banner.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("gophora: %s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("gophora: %s: %s", e.Kind, e.Message)
}

func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindServer
	}
}

// decodeError turns a non-2xx response body into an APIError. The backend
// usually sends {"detail": "..."}, sometimes {"message": "..."}, and
// sometimes plain text; none of it can be assumed well-formed.
func decodeError(status int, body []byte) *APIError {
	msg := ""

	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if len(payload.Detail) > 0 {
			var detail string
			if err := json.Unmarshal(payload.Detail, &detail); err == nil {
				msg = detail
			} else {
				// FastAPI validation errors put structures under detail
				msg = string(payload.Detail)
			}
		} else if payload.Message != "" {
			msg = payload.Message
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = fmt.Sprintf("Error %d", status)
	}

	return &APIError{Kind: kindForStatus(status), Status: status, Message: msg}
}

func networkError(err error) *APIError {
	return &APIError{Kind: KindNetwork, Message: err.Error()}
}
