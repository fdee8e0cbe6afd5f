package clio

import (
	"context"

	"github.com/casebridge/casebridge/internal/summarize"
)

// maxDescriptionLen is Clio's hard limit on the matter description field.
// Longer descriptions are summarized down to summaryTarget first.
const (
	maxDescriptionLen = 255
	summaryTarget     = 240
)

const defaultDescription = "Lead from GoHighLevel"

// matterStrategy is one request shape to try against the API. build is pure:
// fields in, endpoint path and body out.
type matterStrategy struct {
	name  string
	build func(f MatterFields) (path string, body map[string]any)
}

// matterStrategies is the ordered list of envelope shapes tried for matter
// creation. The first 2xx wins; order reflects how likely each shape is to
// be accepted.
var matterStrategies = []matterStrategy{
	{
		name: "standard",
		build: func(f MatterFields) (string, map[string]any) {
			return "/matters", map[string]any{
				"data": map[string]any{
					"type":           "Matter",
					"client":         map[string]any{"id": f.ContactID},
					"display_number": "GHL-" + f.ContactID,
					"description":    f.Description,
					"status":         "Pending",
					"practice_area":  f.PracticeArea,
				},
			}
		},
	},
	{
		name: "flat-client-id",
		build: func(f MatterFields) (string, map[string]any) {
			return "/matters", map[string]any{
				"data": map[string]any{
					"type":           "Matter",
					"client_id":      f.ContactID,
					"display_number": "GHL-" + f.ContactID,
					"description":    f.Description,
					"status":         "Pending",
					"practice_area":  f.PracticeArea,
				},
			}
		},
	},
	{
		name: "contact-scoped",
		build: func(f MatterFields) (string, map[string]any) {
			return "/contacts/" + f.ContactID + "/matters", map[string]any{
				"data": map[string]any{
					"type":           "Matter",
					"display_number": "GHL-" + f.ContactID,
					"description":    f.Description,
					"status":         "Pending",
					"practice_area":  f.PracticeArea,
				},
			}
		},
	},
}

// CreateMatter creates a matter for an existing contact, walking the
// strategy list until one shape is accepted. A missing contact id is a hard
// precondition failure: ErrNoContactID, zero HTTP calls. A 401 from any
// attempt returns ErrAuthExpired immediately.
func (c *Client) CreateMatter(ctx context.Context, token string, f MatterFields) (SubmissionResult, error) {
	if f.ContactID == "" {
		return SubmissionResult{ErrorDetail: "cannot create matter without a contact id"}, ErrNoContactID
	}

	if f.Description == "" {
		f.Description = defaultDescription
	}
	if len(f.Description) > maxDescriptionLen {
		original := len(f.Description)
		f.Description = summarize.Summarize(f.Description, summaryTarget)
		c.logger.Info("summarized matter description", "original_len", original, "summary_len", len(f.Description))
	}
	if f.PracticeArea == "" {
		f.PracticeArea = "General"
	}

	var attempts []attempt
	for _, strat := range matterStrategies {
		path, body := strat.build(f)
		a := c.post(ctx, token, strat.name, c.baseURL+path, body, "matter")
		if a.ok() {
			c.logger.Info("matter created", "strategy", strat.name, "contact_id", f.ContactID)
			return SubmissionResult{Success: true, RemoteID: extractRemoteID(a.body), Raw: a.body}, nil
		}
		if a.unauthorized() {
			return SubmissionResult{ErrorDetail: a.String()}, ErrAuthExpired
		}
		attempts = append(attempts, a)
	}

	c.logger.Warn("all matter strategies exhausted", "contact_id", f.ContactID, "attempts", len(attempts))
	return SubmissionResult{ErrorDetail: joinAttempts(attempts)}, nil
}
