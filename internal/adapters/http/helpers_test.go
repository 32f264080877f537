package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"pefitness/internal/adapters/http/middleware"
	"pefitness/internal/adapters/identity"
	accountStore "pefitness/internal/adapters/storage/account"
	accountDomain "pefitness/internal/domain/account"
	"pefitness/internal/domain/fitness"
)

var fixedTime = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

const testVisitor = "5f0c8a4e-3c1b-4d8e-9a63-0d7f3f1c2b11"

// mockAccountStore implements accountStore.Store in memory.
type mockAccountStore struct {
	mu       sync.Mutex
	accounts map[string]accountDomain.Account
}

func newMockAccountStore(accts ...accountDomain.Account) *mockAccountStore {
	m := &mockAccountStore{accounts: make(map[string]accountDomain.Account)}
	for _, a := range accts {
		m.accounts[a.ID] = a
	}
	return m
}

// GetByID implements the account store interface for testing.
// PRE: id is non-empty
// POST: Returns the account or ErrNotFound
func (m *mockAccountStore) GetByID(_ context.Context, id string) (accountDomain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return accountDomain.Account{}, accountStore.ErrNotFound
}

// GetByEmail implements the account store interface for testing.
// POST: Returns the first account whose email matches case-insensitively
func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (accountDomain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return accountDomain.Account{}, accountStore.ErrNotFound
}

// GetByGoogleSubject implements the account store interface for testing.
func (m *mockAccountStore) GetByGoogleSubject(_ context.Context, subject string) (accountDomain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if subject != "" && a.GoogleSubject == subject {
			return a, nil
		}
	}
	return accountDomain.Account{}, accountStore.ErrNotFound
}

// Save implements the account store interface for testing.
// POST: account stored under its ID
func (m *mockAccountStore) Save(_ context.Context, a accountDomain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.ID] = a
	return nil
}

// Count implements the account store interface for testing.
func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.accounts), nil
}

// captureSink implements orchestrators.RecordSink synchronously.
type captureSink struct {
	mu      sync.Mutex
	records []fitness.Record
}

// Record implements RecordSink.
// POST: rec appended to records
func (c *captureSink) Record(_ context.Context, rec fitness.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
}

func (c *captureSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// mockAppender implements orchestrators.RecordAppender.
type mockAppender struct {
	err error
}

// Append implements RecordAppender.
// POST: returns the configured error
func (m *mockAppender) Append(_ context.Context, _ fitness.Record) error {
	return m.err
}

// mockCompleter implements ai.Completer and counts calls.
type mockCompleter struct {
	mu             sync.Mutex
	text           string
	err            error
	hits           int
	lastCredential string
	lastPrompt     string
}

// Complete implements ai.Completer.
// POST: hits incremented; configured text or error returned
func (m *mockCompleter) Complete(_ context.Context, credential, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits++
	m.lastCredential = credential
	m.lastPrompt = prompt
	return m.text, m.err
}

// mockVerifier implements identity.TokenVerifier.
type mockVerifier struct {
	claims identity.Claims
}

// Verify implements identity.TokenVerifier.
// POST: "good-token" yields claims; anything else ErrInvalidToken
func (m *mockVerifier) Verify(_ context.Context, idToken string) (identity.Claims, error) {
	if idToken != "good-token" {
		return identity.Claims{}, identity.ErrInvalidToken
	}
	return m.claims, nil
}

var errStoreDown = errors.New("store unreachable")

func testDeps() Deps {
	return Deps{
		Accounts:   newMockAccountStore(),
		Sink:       &captureSink{},
		Completer:  &mockCompleter{text: "做得好！"},
		CSRFKey:    []byte("0123456789abcdef0123456789abcdef"),
		GenerateID: func() string { return "record-001" },
		Now:        func() time.Time { return fixedTime },
	}
}

func newTestServer(t *testing.T, deps Deps) *Server {
	t.Helper()
	s, err := NewServer(deps)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

// serveRoutes runs a request against the routes without middleware, as
// an anonymous visitor.
func serveRoutes(s *Server, req *http.Request) *httptest.ResponseRecorder {
	req = req.WithContext(middleware.ContextWithVisitor(req.Context(), testVisitor))
	rr := httptest.NewRecorder()
	s.routes().ServeHTTP(rr, req)
	return rr
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func studentForm() url.Values {
	return url.Values{
		"name":        {"陳大文"},
		"class":       {"6A"},
		"classNo":     {"12"},
		"gender":      {"M"},
		"sitUps":      {"25"},
		"flexibility": {"20"},
		"handGrip":    {"12"},
		"run9min":     {"1500"},
		"height":      {"150"},
		"weight":      {"45"},
	}
}

func teacherAccount(t *testing.T) accountDomain.Account {
	t.Helper()
	a := accountDomain.Account{ID: "acct-1", Email: "pe@school.edu.hk", DisplayName: "Mr Chan", Role: accountDomain.RoleTeacher}
	if err := a.SetPassword("correct horse battery"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	return a
}
