package clio

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testClient(serverURL string) *Client {
	return NewClient(Config{
		BaseURL:     serverURL,
		AuthURL:     serverURL + "/oauth/authorize",
		TokenURL:    serverURL + "/oauth/token",
		ClientID:    "test-client",
		Secret:      "test-secret",
		RedirectURI: "https://bridge.test/api/clio-callback",
	}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in        string
		wantFirst string
		wantLast  string
	}{
		{"Jane Doe", "Jane", "Doe"},
		{"Jane Q Doe", "Jane", "Q Doe"},
		{"Cher", "Cher", "."},
		{"", "Unknown", "Caller"},
		{"   ", "Unknown", "Caller"},
	}

	for _, tt := range tests {
		first, last := splitName(tt.in)
		if first != tt.wantFirst || last != tt.wantLast {
			t.Errorf("splitName(%q) = %q %q, want %q %q", tt.in, first, last, tt.wantFirst, tt.wantLast)
		}
	}
}

func TestCreateContact_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/contacts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("unexpected auth header %q", got)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		data := body["data"].(map[string]any)
		if data["type"] != "Person" || data["first_name"] != "Jane" || data["last_name"] != "Doe" {
			t.Errorf("unexpected contact data: %v", data)
		}
		if _, ok := data["phone_numbers"]; !ok {
			t.Error("expected phone_numbers block")
		}
		if _, ok := data["email_addresses"]; !ok {
			t.Error("expected email_addresses block")
		}

		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"data":{"id":12345,"first_name":"Jane"}}`)
	}))
	defer server.Close()

	c := testClient(server.URL)
	res, err := c.CreateContact(context.Background(), "tok-123", ContactFields{
		Name:  "Jane Doe",
		Phone: "(555) 222-3333",
		Email: "jane@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.RemoteID != "12345" {
		t.Errorf("remote id = %q, want 12345", res.RemoteID)
	}
}

func TestCreateContact_RetriesMinimalOnNameValidation(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		data := body["data"].(map[string]any)

		if calls == 1 {
			w.WriteHeader(http.StatusUnprocessableEntity)
			io.WriteString(w, `{"error":{"message":"first_name is invalid"}}`)
			return
		}

		// Second attempt must be the reduced identity+phone body.
		if _, ok := data["email_addresses"]; ok {
			t.Error("minimal retry should not carry email_addresses")
		}
		if _, ok := data["addresses"]; ok {
			t.Error("minimal retry should not carry addresses")
		}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"data":{"id":777}}`)
	}))
	defer server.Close()

	c := testClient(server.URL)
	res, err := c.CreateContact(context.Background(), "tok", ContactFields{
		Name:   "Jane Doe",
		Phone:  "(555) 222-3333",
		Email:  "jane@example.com",
		Region: "CA",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || res.RemoteID != "777" {
		t.Fatalf("expected success via minimal retry, got %+v", res)
	}
	if calls != 2 {
		t.Errorf("expected exactly 2 attempts, got %d", calls)
	}
}

func TestCreateContact_ExhaustsAfterTwoAttempts(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"error":{"message":"last_name is invalid"}}`)
	}))
	defer server.Close()

	c := testClient(server.URL)
	res, err := c.CreateContact(context.Background(), "tok", ContactFields{Name: "Jane Doe"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success {
		t.Fatal("expected failure")
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
	if !strings.Contains(res.ErrorDetail, "422") {
		t.Errorf("expected error detail to carry status, got %q", res.ErrorDetail)
	}
}

func TestCreateContact_NonNameValidationDoesNotRetry(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"error":{"message":"phone format rejected"}}`)
	}))
	defer server.Close()

	c := testClient(server.URL)
	res, err := c.CreateContact(context.Background(), "tok", ContactFields{Name: "Jane Doe"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success {
		t.Fatal("expected failure")
	}
	if calls != 1 {
		t.Errorf("expected single attempt, got %d", calls)
	}
}

func TestCreateContact_AuthExpired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":"invalid_token"}`)
	}))
	defer server.Close()

	c := testClient(server.URL)
	_, err := c.CreateContact(context.Background(), "stale", ContactFields{Name: "Jane Doe"})
	if !errors.Is(err, ErrAuthExpired) {
		t.Fatalf("expected ErrAuthExpired, got %v", err)
	}
}

func TestCreateMatter_RequiresContactID(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	c := testClient(server.URL)
	res, err := c.CreateMatter(context.Background(), "tok", MatterFields{
		PracticeArea: "Personal Injury",
		Description:  "car accident",
	})
	if !errors.Is(err, ErrNoContactID) {
		t.Fatalf("expected ErrNoContactID, got %v", err)
	}
	if res.Success {
		t.Fatal("expected failure result")
	}
	if calls != 0 {
		t.Errorf("expected zero HTTP calls, got %d", calls)
	}
}

func TestCreateMatter_FirstStrategyWins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		data := body["data"].(map[string]any)

		if r.URL.Path != "/matters" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		client, ok := data["client"].(map[string]any)
		if !ok || client["id"] != "12345" {
			t.Errorf("expected nested client id, got %v", data)
		}
		if data["display_number"] != "GHL-12345" {
			t.Errorf("display_number = %v", data["display_number"])
		}
		if data["status"] != "Pending" {
			t.Errorf("status = %v", data["status"])
		}

		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"data":{"id":555}}`)
	}))
	defer server.Close()

	c := testClient(server.URL)
	res, err := c.CreateMatter(context.Background(), "tok", MatterFields{
		ContactID:    "12345",
		PracticeArea: "Personal Injury",
		Description:  "car accident",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || res.RemoteID != "555" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestCreateMatter_FallsThroughStrategies(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		// Reject the two /matters shapes, accept the contact-scoped one.
		if strings.HasPrefix(r.URL.Path, "/contacts/") {
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"data":{"id":888}}`)
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"error":"unknown attribute"}`)
	}))
	defer server.Close()

	c := testClient(server.URL)
	res, err := c.CreateMatter(context.Background(), "tok", MatterFields{
		ContactID:    "42",
		PracticeArea: "Family Law",
		Description:  "custody dispute",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || res.RemoteID != "888" {
		t.Fatalf("unexpected result %+v", res)
	}
	want := []string{"/matters", "/matters", "/contacts/42/matters"}
	if len(paths) != len(want) {
		t.Fatalf("expected %d attempts, got %d: %v", len(want), len(paths), paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("attempt %d path = %s, want %s", i, paths[i], want[i])
		}
	}
}

func TestCreateMatter_ExhaustionAggregatesAttempts(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"error":"attempt `+string(rune('0'+calls))+`"}`)
	}))
	defer server.Close()

	c := testClient(server.URL)
	res, err := c.CreateMatter(context.Background(), "tok", MatterFields{ContactID: "1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success {
		t.Fatal("expected failure")
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
	for _, name := range []string{"standard", "flat-client-id", "contact-scoped"} {
		if !strings.Contains(res.ErrorDetail, name) {
			t.Errorf("error detail missing attempt %q: %s", name, res.ErrorDetail)
		}
	}
}

func TestCreateMatter_AuthExpiredStopsImmediately(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := testClient(server.URL)
	_, err := c.CreateMatter(context.Background(), "stale", MatterFields{ContactID: "1"})
	if !errors.Is(err, ErrAuthExpired) {
		t.Fatalf("expected ErrAuthExpired, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 401 to stop the strategy walk, got %d calls", calls)
	}
}

func TestCreateMatter_SummarizesLongDescription(t *testing.T) {
	var gotDescription string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		gotDescription = body["data"].(map[string]any)["description"].(string)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"data":{"id":1}}`)
	}))
	defer server.Close()

	long := "Human: I was in a car accident last week.\nHuman: " + strings.Repeat("It has been very difficult. ", 20)

	c := testClient(server.URL)
	if _, err := c.CreateMatter(context.Background(), "tok", MatterFields{ContactID: "9", Description: long}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotDescription) > 255 {
		t.Errorf("description not summarized: %d chars", len(gotDescription))
	}
	if gotDescription == "" {
		t.Error("expected non-empty description")
	}
}

func TestCreateMatter_DefaultsEmptyFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		data := body["data"].(map[string]any)
		if data["description"] != "Lead from GoHighLevel" {
			t.Errorf("description = %v", data["description"])
		}
		if data["practice_area"] != "General" {
			t.Errorf("practice_area = %v", data["practice_area"])
		}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"data":{"id":1}}`)
	}))
	defer server.Close()

	c := testClient(server.URL)
	if _, err := c.CreateMatter(context.Background(), "tok", MatterFields{ContactID: "9"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExchangeCode_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("grant_type") != "authorization_code" {
			t.Errorf("grant_type = %q", r.PostForm.Get("grant_type"))
		}
		if r.PostForm.Get("code") != "auth-code-1" {
			t.Errorf("code = %q", r.PostForm.Get("code"))
		}
		if r.PostForm.Get("client_id") != "test-client" {
			t.Errorf("client_id = %q", r.PostForm.Get("client_id"))
		}
		io.WriteString(w, `{"access_token":"at-1","refresh_token":"rt-1","expires_in":3600}`)
	}))
	defer server.Close()

	c := testClient(server.URL)
	tok, err := c.ExchangeCode(context.Background(), "auth-code-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.AccessToken != "at-1" || tok.RefreshToken != "rt-1" {
		t.Errorf("unexpected token response %+v", tok)
	}
}

func TestExchangeCode_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"invalid_grant"}`)
	}))
	defer server.Close()

	c := testClient(server.URL)
	if _, err := c.ExchangeCode(context.Background(), "bad"); err == nil {
		t.Fatal("expected error for failed exchange")
	}
}

func TestAuthorizeURL(t *testing.T) {
	c := testClient("https://clio.test")
	u := c.AuthorizeURL()
	for _, want := range []string{"response_type=code", "client_id=test-client", "redirect_uri="} {
		if !strings.Contains(u, want) {
			t.Errorf("authorize url missing %q: %s", want, u)
		}
	}
}

func TestExtractRemoteID(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"data":{"id":123}}`, "123"},
		{`{"data":{"id":"abc"}}`, "abc"},
		{`{"id":9}`, "9"},
		{`{"error":"nope"}`, ""},
		{`not json`, ""},
	}
	for _, tt := range tests {
		if got := extractRemoteID([]byte(tt.body)); got != tt.want {
			t.Errorf("extractRemoteID(%s) = %q, want %q", tt.body, got, tt.want)
		}
	}
}
