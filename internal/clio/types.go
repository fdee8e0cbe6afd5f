package clio

import (
	"bytes"
	"context"
	"encoding/json"
	"time"
)

// SubmissionResult is the outcome of one contact or matter submission.
// Success and diagnostics travel together: the raw remote response is kept
// opaque for the webhook echo, ErrorDetail aggregates per-attempt failures.
type SubmissionResult struct {
	Success     bool            `json:"success"`
	RemoteID    string          `json:"remote_id,omitempty"`
	Raw         json.RawMessage `json:"raw,omitempty"`
	ErrorDetail string          `json:"error_detail,omitempty"`
}

// ContactFields is everything the bridge knows about a caller when creating
// a Clio contact. All fields optional.
type ContactFields struct {
	Name   string
	Phone  string
	Email  string
	Region string
}

// MatterFields drives matter creation. ContactID must reference an existing
// Clio contact.
type MatterFields struct {
	ContactID    string
	PracticeArea string
	Description  string
}

// TransactionRecord captures one outbound API call for the diagnostics log.
type TransactionRecord struct {
	Source       string
	Destination  string
	Method       string
	URL          string
	RequestBody  json.RawMessage
	Status       int
	ResponseBody json.RawMessage
	Duration     time.Duration
	Success      bool
}

// TransactionLog persists API call records and errors. Implemented by the
// store; a nil log disables persistence without changing client behavior.
type TransactionLog interface {
	LogTransaction(ctx context.Context, rec TransactionRecord)
	LogError(ctx context.Context, errType, message string)
}

// extractRemoteID pulls the resource id out of a Clio response body,
// tolerating the enveloped ({"data":{"id":...}}) and bare ({"id":...})
// shapes and both numeric and string ids. Returns "" when no id is present.
func extractRemoteID(body []byte) string {
	var env struct {
		Data struct {
			ID any `json:"id"`
		} `json:"data"`
		ID any `json:"id"`
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&env); err != nil {
		return ""
	}
	if s := idString(env.Data.ID); s != "" {
		return s
	}
	return idString(env.ID)
}

func idString(v any) string {
	switch t := v.(type) {
	case json.Number:
		return t.String()
	case string:
		return t
	default:
		return ""
	}
}
