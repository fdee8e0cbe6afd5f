// Package pipeline wires the intake stages together: rejection gate,
// transcript extraction, classification, and Clio submission. One webhook
// delivery is processed start to finish on the request goroutine; nothing is
// queued or retried across deliveries.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/casebridge/casebridge/internal/classify"
	"github.com/casebridge/casebridge/internal/clio"
	"github.com/casebridge/casebridge/internal/events"
	"github.com/casebridge/casebridge/internal/metrics"
	"github.com/casebridge/casebridge/internal/transcript"
)

// ErrNotAuthenticated means no Clio token is stored: the operator has to run
// the authorization flow before webhooks can be bridged.
var ErrNotAuthenticated = errors.New("not authenticated with clio")

// WebhookPayload is the body GoHighLevel posts. Identity fields show up
// either at the top level or inside customData depending on workflow
// configuration, so both are probed.
type WebhookPayload struct {
	Transcription string     `json:"transcription"`
	FullName      string     `json:"full_name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	State         string     `json:"state"`
	CustomData    CustomData `json:"customData"`
}

type CustomData struct {
	Transcription   string `json:"transcription"`
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	CaseDescription string `json:"case_description"`
}

// Result is what the webhook responder renders. Err carries the failure
// classification (ErrNotAuthenticated, clio.ErrAuthExpired, or a generic
// submission failure) for status-code mapping.
type Result struct {
	Rejected     bool                   `json:"rejected"`
	Message      string                 `json:"message"`
	Caller       transcript.CallerInfo  `json:"caller"`
	PracticeArea string                 `json:"practice_area,omitempty"`
	Contact      *clio.SubmissionResult `json:"contact,omitempty"`
	Matter       *clio.SubmissionResult `json:"matter,omitempty"`
	Err          error                  `json:"-"`
}

// ErrSubmissionFailed wraps a remote rejection after all attempts were
// exhausted.
var ErrSubmissionFailed = errors.New("clio submission failed")

// Submitter is the Clio surface the pipeline needs. *clio.Client implements
// it.
type Submitter interface {
	CreateContact(ctx context.Context, token string, f clio.ContactFields) (clio.SubmissionResult, error)
	CreateMatter(ctx context.Context, token string, f clio.MatterFields) (clio.SubmissionResult, error)
}

// TokenSource yields the stored Clio access token. *store.Store implements
// it.
type TokenSource interface {
	ClioToken(ctx context.Context) (string, error)
}

type Pipeline struct {
	clio      Submitter
	tokens    TokenSource
	publisher *events.Publisher
	logger    *slog.Logger
}

func New(submitter Submitter, tokens TokenSource, publisher *events.Publisher, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		clio:      submitter,
		tokens:    tokens,
		publisher: publisher,
		logger:    logger,
	}
}

// Process runs one webhook delivery through the full pipeline. It always
// returns a well-formed Result; failures are classified in Result.Err, never
// panicked or half-reported.
func (p *Pipeline) Process(ctx context.Context, payload WebhookPayload) Result {
	transcription := payload.Transcription
	if transcription == "" {
		transcription = payload.CustomData.Transcription
	}
	p.logger.Info("processing webhook", "transcript_len", len(transcription))

	// Rejection gate first: a declined case skips extraction and submission
	// entirely and is still a success for the webhook caller.
	accept, reason := transcript.ShouldCreateCase(transcription)
	if !accept {
		p.logger.Info("case rejected", "reason", reason)
		metrics.RecordWebhook("rejected")
		p.publisher.PublishCase(events.SubjectCaseRejected, events.CaseEvent{Reason: reason})
		return Result{Rejected: true, Message: "call handled - case rejected by agent"}
	}

	caller := transcript.Parse(transcription)
	p.logger.Info("caller extracted",
		"name_found", caller.Name != "",
		"phone_found", caller.Phone != "",
		"email_found", caller.Email != "",
	)

	// Field precedence: transcript wins, then explicit payload fields, then
	// customData. Documented in DESIGN.md; keep the order stable.
	name := coalesce(caller.Name, titleCase(payload.FullName), titleCase(payload.CustomData.FullName))
	email := coalesce(caller.Email, payload.Email, payload.CustomData.Email)
	phone := coalesce(caller.Phone, payload.Phone, payload.CustomData.Phone)
	caller = transcript.CallerInfo{Name: name, Phone: phone, Email: email}

	caseDescription := coalesce(payload.CustomData.CaseDescription, transcription)

	practiceArea := classify.Classify(caseDescription)
	p.logger.Info("practice area classified", "practice_area", practiceArea)
	metrics.RecordPracticeArea(practiceArea)

	token, err := p.tokens.ClioToken(ctx)
	if err != nil {
		p.logger.Warn("no clio credentials available", "error", err)
		metrics.RecordWebhook("auth_expired")
		return Result{Caller: caller, PracticeArea: practiceArea, Message: "not authenticated with Clio", Err: ErrNotAuthenticated}
	}

	contact, err := p.clio.CreateContact(ctx, token, clio.ContactFields{
		Name:   name,
		Phone:  phone,
		Email:  email,
		Region: payload.State,
	})
	if err != nil {
		return p.fail(caller, practiceArea, &contact, nil, err)
	}
	if !contact.Success {
		return p.fail(caller, practiceArea, &contact, nil, ErrSubmissionFailed)
	}

	matter, err := p.clio.CreateMatter(ctx, token, clio.MatterFields{
		ContactID:    contact.RemoteID,
		PracticeArea: practiceArea,
		Description:  caseDescription,
	})
	if err != nil {
		return p.fail(caller, practiceArea, &contact, &matter, err)
	}
	if !matter.Success {
		return p.fail(caller, practiceArea, &contact, &matter, ErrSubmissionFailed)
	}

	p.logger.Info("case bridged to clio",
		"contact_id", contact.RemoteID,
		"matter_id", matter.RemoteID,
		"practice_area", practiceArea,
	)
	metrics.RecordWebhook("created")
	p.publisher.PublishCase(events.SubjectCaseCreated, events.CaseEvent{
		ContactID:    contact.RemoteID,
		MatterID:     matter.RemoteID,
		PracticeArea: practiceArea,
	})

	return Result{
		Message:      "Data forwarded to Clio",
		Caller:       caller,
		PracticeArea: practiceArea,
		Contact:      &contact,
		Matter:       &matter,
	}
}

func (p *Pipeline) fail(caller transcript.CallerInfo, practiceArea string, contact, matter *clio.SubmissionResult, err error) Result {
	outcome := "failed"
	message := "failed to forward case to Clio"
	if errors.Is(err, clio.ErrAuthExpired) {
		outcome = "auth_expired"
		message = "Clio authentication expired - please re-authorize"
	}
	p.logger.Error("submission failed", "error", err, "outcome", outcome)
	metrics.RecordWebhook(outcome)
	p.publisher.PublishCase(events.SubjectCaseFailed, events.CaseEvent{
		PracticeArea: practiceArea,
		Reason:       err.Error(),
	})

	return Result{
		Message:      message,
		Caller:       caller,
		PracticeArea: practiceArea,
		Contact:      contact,
		Matter:       matter,
		Err:          err,
	}
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
