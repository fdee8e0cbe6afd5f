package clio

import (
	"context"
	"strings"
)

// splitName breaks a full name into the given/family pair Clio requires.
// Clio rejects contacts without a family name, so a single token gets a "."
// placeholder and a missing name becomes Unknown Caller.
func splitName(full string) (first, last string) {
	parts := strings.Fields(strings.TrimSpace(full))
	switch len(parts) {
	case 0:
		return "Unknown", "Caller"
	case 1:
		return parts[0], "."
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

func contactBody(first, last string, f ContactFields, minimal bool) map[string]any {
	data := map[string]any{
		"type":       "Person",
		"first_name": first,
		"last_name":  last,
	}
	if f.Phone != "" {
		data["phone_numbers"] = []map[string]string{
			{"number": f.Phone, "type": "work"},
		}
	}
	if minimal {
		return map[string]any{"data": data}
	}
	if f.Email != "" {
		data["email_addresses"] = []map[string]string{
			{"address": f.Email, "type": "work"},
		}
	}
	if f.Region != "" {
		data["addresses"] = []map[string]string{
			{"type": "home", "state": f.Region, "country": "US"},
		}
	}
	return map[string]any{"data": data}
}

// CreateContact creates a Person contact in Clio. A 422 that complains about
// name fields gets one retry with a minimal identity+phone body; the attempt
// count never exceeds two. A 401 returns ErrAuthExpired.
func (c *Client) CreateContact(ctx context.Context, token string, f ContactFields) (SubmissionResult, error) {
	first, last := splitName(f.Name)
	url := c.baseURL + "/contacts"

	c.logger.Info("creating clio contact", "first_name", first, "last_name", last,
		"has_phone", f.Phone != "", "has_email", f.Email != "")

	a := c.post(ctx, token, "contact", url, contactBody(first, last, f, false), "contact")
	if a.ok() {
		return SubmissionResult{Success: true, RemoteID: extractRemoteID(a.body), Raw: a.body}, nil
	}
	if a.unauthorized() {
		return SubmissionResult{ErrorDetail: a.String()}, ErrAuthExpired
	}

	attempts := []attempt{a}

	// Validation errors on the name fields are recoverable with a reduced
	// body. Anything else exhausts immediately.
	if a.status == 422 && looksLikeNameError(a.body) {
		c.logger.Info("retrying contact with minimal body")
		retry := c.post(ctx, token, "contact-minimal", url, contactBody(first, last, f, true), "contact")
		if retry.ok() {
			return SubmissionResult{Success: true, RemoteID: extractRemoteID(retry.body), Raw: retry.body}, nil
		}
		if retry.unauthorized() {
			return SubmissionResult{ErrorDetail: retry.String()}, ErrAuthExpired
		}
		attempts = append(attempts, retry)
	}

	return SubmissionResult{ErrorDetail: joinAttempts(attempts)}, nil
}

// looksLikeNameError reports whether a 422 body mentions the name fields.
func looksLikeNameError(body []byte) bool {
	lower := strings.ToLower(string(body))
	return strings.Contains(lower, "name") || strings.Contains(lower, "first") || strings.Contains(lower, "last")
}

func joinAttempts(attempts []attempt) string {
	parts := make([]string, len(attempts))
	for i, a := range attempts {
		parts[i] = a.String()
	}
	return strings.Join(parts, "; ")
}
