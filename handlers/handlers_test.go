package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"Portfolio/models"
)

type fakeStore struct {
	mu        sync.Mutex
	projects  []models.Project
	listErr   error
	createErr error
	pingErr   error
	contacts  []models.Contact
	nextID    int64
}

func (f *fakeStore) ListProjects(context.Context) ([]models.Project, error) {
	return f.projects, f.listErr
}

func (f *fakeStore) CreateContact(_ context.Context, c *models.Contact) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c.ID = f.nextID
	f.contacts = append(f.contacts, *c)
	return c.ID, nil
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func newTestServer(t *testing.T, store *fakeStore) http.Handler {
	t.Helper()
	public := t.TempDir()
	if err := os.MkdirAll(filepath.Join(public, "images"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(public, "images", "logo.svg"), []byte("<svg></svg>"), 0o644); err != nil {
		t.Fatal(err)
	}
	h, err := New(store, filepath.Join("..", "templates"), public)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h.Router()
}

func do(t *testing.T, srv http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestStaticPages(t *testing.T) {
	srv := newTestServer(t, &fakeStore{})
	for path, marker := range map[string]string{
		"/":         "Infrastructure that ships itself",
		"/about":    "<h1>About</h1>",
		"/services": "<h1>Services</h1>",
		"/contact":  `id="contact-form"`,
	} {
		rec := do(t, srv, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: status %d", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), marker) {
			t.Fatalf("GET %s: missing %q", path, marker)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Fatalf("GET %s: content type %q", path, ct)
		}
		if rec.Header().Get(requestIDHeader) == "" {
			t.Fatalf("GET %s: missing request id", path)
		}
	}
}

func TestPortfolioRendersProjects(t *testing.T) {
	store := &fakeStore{projects: []models.Project{
		{ID: 2, Title: "Serverless App", Description: "Runs on **Lambda**.", Image: "images/serverless.svg", Link: "#"},
		{ID: 1, Title: "Cloud Infra Automation", Description: "Terraform", Image: "images/cloud_infra.svg", Link: "#"},
	}}
	srv := newTestServer(t, store)

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/portfolio", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	body := rec.Body.String()
	first := strings.Index(body, "Serverless App")
	second := strings.Index(body, "Cloud Infra Automation")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("projects missing or out of order:\n%s", body)
	}
	if !strings.Contains(body, "<strong>Lambda</strong>") {
		t.Fatalf("description markdown not rendered:\n%s", body)
	}
}

func TestPortfolioDBError(t *testing.T) {
	srv := newTestServer(t, &fakeStore{listErr: errors.New("connection lost")})

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/portfolio", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "DB error") {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestSubmitContactJSON(t *testing.T) {
	store := &fakeStore{}
	srv := newTestServer(t, store)

	req := httptest.NewRequest(http.MethodPost, "/api/contact",
		strings.NewReader(`{"name":"Alice","email":"a@example.com","message":"Hi"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := do(t, srv, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true || body["id"] != float64(1) {
		t.Fatalf("unexpected body %v", body)
	}
	if len(store.contacts) != 1 {
		t.Fatalf("expected one stored contact, got %d", len(store.contacts))
	}
	c := store.contacts[0]
	if c.Name != "Alice" || c.Email != "a@example.com" || c.Message == nil || *c.Message != "Hi" {
		t.Fatalf("unexpected stored contact %+v", c)
	}
}

func TestSubmitContactForm(t *testing.T) {
	store := &fakeStore{}
	srv := newTestServer(t, store)

	form := url.Values{"name": {"Bob"}, "email": {"b@example.com"}}
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := do(t, srv, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.contacts) != 1 || store.contacts[0].Message != nil {
		t.Fatalf("expected one contact with NULL message, got %+v", store.contacts)
	}
}

func TestSubmitContactValidation(t *testing.T) {
	cases := map[string]string{
		"missing email": `{"name":"Alice"}`,
		"missing name":  `{"email":"a@example.com"}`,
		"empty name":    `{"name":"","email":"a@example.com"}`,
		"null email":    `{"name":"Alice","email":null}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			store := &fakeStore{}
			srv := newTestServer(t, store)

			req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			rec := do(t, srv, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != `{"error":"Name and email required"}` {
				t.Fatalf("unexpected body %s", got)
			}
			if len(store.contacts) != 0 {
				t.Fatalf("no row should be inserted")
			}
		})
	}
}

func TestSubmitContactStoresValuesAsSent(t *testing.T) {
	store := &fakeStore{}
	srv := newTestServer(t, store)

	req := httptest.NewRequest(http.MethodPost, "/api/contact",
		strings.NewReader(`{"name":" Alice ","email":" a@example.com","message":"  "}`))
	req.Header.Set("Content-Type", "application/json")
	rec := do(t, srv, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.contacts) != 1 {
		t.Fatalf("expected one stored contact, got %d", len(store.contacts))
	}
	c := store.contacts[0]
	if c.Name != " Alice " || c.Email != " a@example.com" {
		t.Fatalf("name/email changed: %q %q", c.Name, c.Email)
	}
	if c.Message == nil || *c.Message != "  " {
		t.Fatalf("whitespace message should be stored as sent, got %v", c.Message)
	}
}

func TestSubmitContactScalarFields(t *testing.T) {
	cases := []struct {
		payload string
		message *string
	}{
		{`{"name":"Alice","email":"a@example.com","message":7}`, strPtr("7")},
		{`{"name":"Alice","email":"a@example.com","message":true}`, strPtr("true")},
		{`{"name":"Alice","email":"a@example.com","message":0}`, nil},
		{`{"name":"Alice","email":"a@example.com","message":null}`, nil},
	}
	for _, tc := range cases {
		store := &fakeStore{}
		srv := newTestServer(t, store)
		req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(tc.payload))
		req.Header.Set("Content-Type", "application/json")
		rec := do(t, srv, req)

		if rec.Code != http.StatusOK || len(store.contacts) != 1 {
			t.Fatalf("%s: expected 200 and one row, got %d %s", tc.payload, rec.Code, rec.Body.String())
		}
		got := store.contacts[0].Message
		switch {
		case tc.message == nil && got != nil:
			t.Fatalf("%s: expected NULL message, got %q", tc.payload, *got)
		case tc.message != nil && (got == nil || *got != *tc.message):
			t.Fatalf("%s: expected message %q, got %v", tc.payload, *tc.message, got)
		}
	}
}

func TestSubmitContactRejectsObjectFields(t *testing.T) {
	srv := newTestServer(t, &fakeStore{})
	req := httptest.NewRequest(http.MethodPost, "/api/contact",
		strings.NewReader(`{"name":{"first":"Alice"},"email":"a@example.com"}`))
	req.Header.Set("Content-Type", "application/json")

	if rec := do(t, srv, req); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func strPtr(s string) *string { return &s }

func TestSubmitContactMalformedJSON(t *testing.T) {
	srv := newTestServer(t, &fakeStore{})
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")

	if rec := do(t, srv, req); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSubmitContactDBError(t *testing.T) {
	srv := newTestServer(t, &fakeStore{createErr: errors.New("deadlock")})
	req := httptest.NewRequest(http.MethodPost, "/api/contact",
		strings.NewReader(`{"name":"Alice","email":"a@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := do(t, srv, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "DB error" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestNotFoundAndStatic(t *testing.T) {
	srv := newTestServer(t, &fakeStore{})

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "Page not found") {
		t.Fatalf("expected rendered 404, got %d", rec.Code)
	}

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/contact", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("wrong method should render 404, got %d", rec.Code)
	}

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/images/logo.svg", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "<svg></svg>" {
		t.Fatalf("expected static file, got %d %q", rec.Code, rec.Body.String())
	}

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/images", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("directories must not be listed, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestServer(t, &fakeStore{}), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = do(t, newTestServer(t, &fakeStore{pingErr: errors.New("gone")}), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestNewFailsOnMissingTemplates(t *testing.T) {
	if _, err := New(&fakeStore{}, t.TempDir(), ""); err == nil {
		t.Fatalf("expected error for empty templates dir")
	}
}
