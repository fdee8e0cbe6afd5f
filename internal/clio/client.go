// Package clio submits extracted intake records to the Clio practice
// management API. The remote request shapes are not fully stable, so matter
// creation walks an ordered list of body shapes and takes the first one the
// API accepts.
package clio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/casebridge/casebridge/internal/metrics"
)

// ErrAuthExpired signals a 401 from Clio. The credential collaborator reacts
// to this by re-initiating authorization; it is never retried with the same
// token.
var ErrAuthExpired = errors.New("clio authentication expired")

// ErrNoContactID is returned when matter creation is attempted without a
// contact identifier. No HTTP call is made in that case.
var ErrNoContactID = errors.New("matter requires a contact id")

type Client struct {
	baseURL     string
	authURL     string
	tokenURL    string
	clientID    string
	secret      string
	redirectURI string

	client *http.Client
	txlog  TransactionLog
	logger *slog.Logger
}

// Config carries the endpoints and OAuth client credentials.
type Config struct {
	BaseURL     string
	AuthURL     string
	TokenURL    string
	ClientID    string
	Secret      string
	RedirectURI string
	Timeout     time.Duration
}

func NewClient(cfg Config, txlog TransactionLog, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		authURL:     cfg.AuthURL,
		tokenURL:    cfg.TokenURL,
		clientID:    cfg.ClientID,
		secret:      cfg.Secret,
		redirectURI: cfg.RedirectURI,
		client:      &http.Client{Timeout: timeout},
		txlog:       txlog,
		logger:      logger,
	}
}

// attempt is the record of one POST to Clio: status plus response body, kept
// for the aggregated error detail when every shape fails.
type attempt struct {
	name   string
	status int
	body   []byte
	err    error
}

func (a attempt) String() string {
	if a.err != nil {
		return fmt.Sprintf("%s: %v", a.name, a.err)
	}
	return fmt.Sprintf("%s: status %d: %s", a.name, a.status, truncateBody(a.body))
}

func truncateBody(b []byte) string {
	const max = 500
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}

// post sends one JSON request and records it in the transaction log. The
// returned attempt always carries whatever diagnostics were available.
func (c *Client) post(ctx context.Context, token, name, url string, payload any, resource string) attempt {
	a := attempt{name: name}

	body, err := json.Marshal(payload)
	if err != nil {
		a.err = fmt.Errorf("marshal request: %w", err)
		return a
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		a.err = fmt.Errorf("create request: %w", err)
		return a
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		a.err = fmt.Errorf("clio request: %w", err)
		c.logAttempt(ctx, url, body, 0, nil, duration, false)
		c.logger.Warn("clio request failed", "attempt", name, "url", url, "error", err, "duration_ms", duration.Milliseconds())
		metrics.RecordSubmission(resource, name, "error")
		return a
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		a.err = fmt.Errorf("read response: %w", err)
		return a
	}

	a.status = resp.StatusCode
	a.body = respBody

	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	c.logAttempt(ctx, url, body, resp.StatusCode, respBody, duration, success)
	c.logger.Info("clio submission attempt",
		"attempt", name,
		"url", url,
		"status", resp.StatusCode,
		"duration_ms", duration.Milliseconds(),
	)
	metrics.RecordSubmission(resource, name, fmt.Sprintf("%d", resp.StatusCode))
	metrics.ObserveSubmissionDuration(resource, duration)
	return a
}

func (c *Client) logAttempt(ctx context.Context, url string, reqBody []byte, status int, respBody []byte, duration time.Duration, success bool) {
	if c.txlog == nil {
		return
	}
	c.txlog.LogTransaction(ctx, TransactionRecord{
		Source:       "casebridge",
		Destination:  "clio",
		Method:       http.MethodPost,
		URL:          url,
		RequestBody:  reqBody,
		Status:       status,
		ResponseBody: respBody,
		Duration:     duration,
		Success:      success,
	})
	if !success {
		c.txlog.LogError(ctx, "clio_api", fmt.Sprintf("POST %s returned %d", url, status))
	}
}

func (a attempt) ok() bool {
	return a.err == nil && a.status >= 200 && a.status < 300
}

func (a attempt) unauthorized() bool {
	return a.err == nil && a.status == http.StatusUnauthorized
}
