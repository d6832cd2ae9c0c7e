package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"billing-backend/internal/auth"
	"billing-backend/internal/config"
	"billing-backend/internal/models"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers map[int]*models.User

func (f fakeUsers) GetUser(_ context.Context, id int) (*models.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

type memoryResponses struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryResponses() *memoryResponses {
	return &memoryResponses{data: map[string][]byte{}}
}

func (m *memoryResponses) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *memoryResponses) Reserve(_ context.Context, key string, pending []byte, _ time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false
	}
	m.data[key] = pending
	return true
}

func (m *memoryResponses) Put(_ context.Context, key string, data []byte, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
}

func (m *memoryResponses) Release(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

func newAuth(t *testing.T) (*AuthMiddleware, *auth.JWTManager, fakeUsers) {
	t.Helper()
	jwtManager := auth.NewJWTManager(config.JWTConfig{Secret: "test-secret", ExpirationHours: 1, Issuer: "billing"})
	users := fakeUsers{
		1: {ID: 1, Username: "admin", Role: models.RoleAdmin, IsActive: true},
		2: {ID: 2, Username: "cashier", Role: models.RoleCashier, IsActive: true},
		3: {ID: 3, Username: "gone", Role: models.RoleCashier, IsActive: false},
	}
	return NewAuthMiddleware(jwtManager, users), jwtManager, users
}

func bearer(t *testing.T, j *auth.JWTManager, u *models.User) string {
	t.Helper()
	token, err := j.GenerateToken(u)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthenticate(t *testing.T) {
	m, jwtManager, users := newAuth(t)

	var seenID int
	h := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID, _ = GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer not-a-token", http.StatusUnauthorized},
		{"unknown user", bearer(t, jwtManager, &models.User{ID: 99, Role: models.RoleAdmin}), http.StatusUnauthorized},
		{"inactive user", bearer(t, jwtManager, users[3]), http.StatusForbidden},
		{"valid", bearer(t, jwtManager, users[2]), http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
	assert.Equal(t, 2, seenID)
}

func TestRequireAdmin(t *testing.T) {
	m, jwtManager, users := newAuth(t)
	h := m.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, _ := GetRoleFromContext(r.Context())
		io.WriteString(w, role)
	}))

	req := httptest.NewRequest(http.MethodPut, "/api/settings/company", nil)
	req.Header.Set("Authorization", bearer(t, jwtManager, users[2]))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "FORBIDDEN")

	req.Header.Set("Authorization", bearer(t, jwtManager, users[1]))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RoleAdmin, rec.Body.String())
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newMemoryResponses()
	calls := 0
	h := Idempotency(store, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"invoice_number":"NH/0001/25-26"}`)
	}))

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/bills", strings.NewReader(body))
		req.Header.Set(IdempotencyKeyHeader, "abc-123")
		req = req.WithContext(WithUser(req.Context(), &models.User{ID: 2, Role: models.RoleCashier}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := send(`{"items":[1]}`)
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Empty(t, first.Header().Get(ReplayedHeader))

	second := send(`{"items":[1]}`)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(ReplayedHeader))
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)

	other := send(`{"items":[2]}`)
	assert.Equal(t, http.StatusConflict, other.Code)
	assert.Contains(t, other.Body.String(), "IDEMPOTENCY_MISMATCH")
	assert.Equal(t, 1, calls)
}

func TestIdempotencyInProgressAndServerErrors(t *testing.T) {
	store := newMemoryResponses()
	status := http.StatusInternalServerError
	h := Idempotency(store, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	req := func() *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/api/bills", strings.NewReader("{}"))
		r.Header.Set(IdempotencyKeyHeader, "k1")
		return r
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	_, kept := store.Get(context.Background(), "0:k1")
	assert.False(t, kept, "server errors must not be stored")

	// A pending marker from another request blocks a concurrent retry
	pending := requestHash(http.MethodPost, "/api/bills", []byte("{}"), "0")
	store.Put(context.Background(), "0:k1", []byte(`{"request_hash":"`+pending+`","done":false}`), time.Minute)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req())
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "IDEMPOTENCY_IN_PROGRESS")
}

func TestIdempotencyIgnoresRequestsWithoutKey(t *testing.T) {
	store := newMemoryResponses()
	calls := 0
	h := Idempotency(store, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	for i := 0; i < 2; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/bills", strings.NewReader("{}")))
	}
	get := httptest.NewRequest(http.MethodGet, "/api/bills", nil)
	get.Header.Set(IdempotencyKeyHeader, "k")
	h.ServeHTTP(httptest.NewRecorder(), get)
	h.ServeHTTP(httptest.NewRecorder(), get)

	assert.Equal(t, 4, calls)
	assert.Empty(t, store.data)
}

func TestRequestLoggerAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	rl := NewRequestLogger(log.New(&buf, "", 0))

	var seen string
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/bills?q=x", nil))
	rl.Close()

	id := rec.Header().Get(RequestIDHeader)
	require.NotEmpty(t, id)
	assert.Equal(t, id, seen)
	assert.Contains(t, buf.String(), id)
	assert.Contains(t, buf.String(), "GET /api/bills 418")
}

func TestRequestLoggerKeepsValidIncomingID(t *testing.T) {
	rl := NewRequestLogger(log.New(io.Discard, "", 0))
	defer rl.Close()

	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "6f1c2a4e-8a0b-4c5e-9d1f-2b3c4d5e6f70")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "6f1c2a4e-8a0b-4c5e-9d1f-2b3c4d5e6f70", rec.Header().Get(RequestIDHeader))

	req.Header.Set(RequestIDHeader, "not a uuid")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "not a uuid", rec.Header().Get(RequestIDHeader))
}

func TestPanicRecovery(t *testing.T) {
	h := PanicRecovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error","code":"INTERNAL"}`, rec.Body.String())
}

func TestRouteTemplateLabel(t *testing.T) {
	r := mux.NewRouter()
	var label string
	r.HandleFunc("/api/bills/{id}", func(w http.ResponseWriter, req *http.Request) {
		label = routeTemplate(req)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/bills/42", nil))
	assert.Equal(t, "/api/bills/{id}", label)

	assert.Equal(t, "unmatched", routeTemplate(httptest.NewRequest(http.MethodGet, "/nope", nil)))
}
