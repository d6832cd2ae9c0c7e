package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"billing-backend/internal/metrics"
)

const IdempotencyKeyHeader = "Idempotency-Key"
const ReplayedHeader = "Idempotent-Replayed"

// ResponseStore keeps the outcome of requests carrying an Idempotency-Key.
// cache.Responses is the Redis backed implementation.
type ResponseStore interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Reserve(ctx context.Context, key string, pending []byte, ttl time.Duration) bool
	Put(ctx context.Context, key string, data []byte, ttl time.Duration)
	Release(ctx context.Context, key string)
}

type storedResponse struct {
	RequestHash string `json:"request_hash"`
	Done        bool   `json:"done"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// bodyRecorder copies everything the handler writes so it can be stored.
type bodyRecorder struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (r *bodyRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a mutating request is retried
// with the same Idempotency-Key. Reusing a key for a different request, or
// while the first one is still running, is answered with 409. Server errors
// are not stored so the client may retry them.
func Idempotency(store ResponseStore, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			default:
				next.ServeHTTP(w, r)
				return
			}

			key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > 128 {
				writeJSONError(w, http.StatusBadRequest, "Idempotency-Key too long", "VALIDATION")
				return
			}

			var body []byte
			if r.Body != nil {
				var err error
				body, err = io.ReadAll(r.Body)
				if err != nil {
					writeJSONError(w, http.StatusBadRequest, "Could not read request body", "VALIDATION")
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
			}

			userID, _ := GetUserIDFromContext(r.Context())
			user := strconv.Itoa(userID)
			reqHash := requestHash(r.Method, r.URL.RequestURI(), body, user)
			storeKey := user + ":" + key
			ctx := r.Context()

			pending, _ := json.Marshal(storedResponse{RequestHash: reqHash})
			if !store.Reserve(ctx, storeKey, pending, ttl) {
				raw, ok := store.Get(ctx, storeKey)
				if ok {
					var existing storedResponse
					if err := json.Unmarshal(raw, &existing); err == nil {
						if existing.RequestHash != reqHash {
							writeJSONError(w, http.StatusConflict, "Idempotency-Key reuse with different request", "IDEMPOTENCY_MISMATCH")
							return
						}
						if !existing.Done {
							writeJSONError(w, http.StatusConflict, "A request with this Idempotency-Key is still in progress", "IDEMPOTENCY_IN_PROGRESS")
							return
						}
						metrics.IdempotentReplays.Inc()
						if existing.ContentType != "" {
							w.Header().Set("Content-Type", existing.ContentType)
						}
						w.Header().Set(ReplayedHeader, "true")
						w.WriteHeader(existing.Status)
						w.Write(existing.Body)
						return
					}
				}
				// Expired or unreadable between Reserve and Get; run the request.
			}

			rec := &bodyRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.statusCode >= 500 {
				store.Release(ctx, storeKey)
				return
			}
			done, err := json.Marshal(storedResponse{
				RequestHash: reqHash,
				Done:        true,
				Status:      rec.statusCode,
				ContentType: rec.Header().Get("Content-Type"),
				Body:        rec.body.Bytes(),
			})
			if err != nil {
				store.Release(ctx, storeKey)
				return
			}
			store.Put(ctx, storeKey, done, ttl)
		})
	}
}

// requestHash is method|path|body|user
func requestHash(method, path string, body []byte, user string) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{'\n'})
	h.Write([]byte(path))
	h.Write([]byte{'\n'})
	h.Write(body)
	h.Write([]byte{'\n'})
	h.Write([]byte(user))
	return hex.EncodeToString(h.Sum(nil))
}
