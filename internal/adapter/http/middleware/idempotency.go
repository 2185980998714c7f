package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iho/bankledger/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// ReplayHeader marks a response served from the idempotency store.
	ReplayHeader = "X-Idempotency-Replay"

	maxKeyedBodyBytes = 1 << 20
)

// IdempotencyMiddleware replays the stored response of a POST that was
// already completed under the same Idempotency-Key.
type IdempotencyMiddleware struct {
	store   usecase.IdempotencyStore
	ttl     time.Duration
	replays prometheus.Counter
}

// IdempotencyOption configures IdempotencyMiddleware.
type IdempotencyOption func(*IdempotencyMiddleware)

// WithTTL sets how long responses are kept.
func WithTTL(ttl time.Duration) IdempotencyOption {
	return func(m *IdempotencyMiddleware) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithReplayCounter counts replayed responses.
func WithReplayCounter(c prometheus.Counter) IdempotencyOption {
	return func(m *IdempotencyMiddleware) { m.replays = c }
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, opts ...IdempotencyOption) *IdempotencyMiddleware {
	m := &IdempotencyMiddleware{store: store, ttl: usecase.IdempotencyKeyTTL}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Wrap wraps an http.Handler with idempotency checking. Keys are scoped to
// the authenticated user when there is one, and to a digest of the body
// otherwise.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only apply to mutating requests
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		key = r.URL.Path + ":" + key
		if username, ok := UsernameFromContext(r.Context()); ok {
			key = username + ":" + key
		} else {
			// anonymous keys are bound to the request body
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxKeyedBodyBytes))
			if err != nil {
				writeFailure(w, http.StatusBadRequest, "Invalid request body")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			sum := sha256.Sum256(body)
			key = hex.EncodeToString(sum[:16]) + ":" + key
		}

		exists, cachedResponse, err := m.store.CheckAndSet(r.Context(), key, nil, m.ttl)
		if err != nil {
			writeFailure(w, http.StatusServiceUnavailable, "Idempotency check failed")
			return
		}

		if exists {
			if string(cachedResponse) == usecase.IdempotencyPending {
				writeFailure(w, http.StatusConflict, "Request with this Idempotency-Key is still in progress")
				return
			}

			if m.replays != nil {
				m.replays.Inc()
			}
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set(ReplayHeader, "true")
			_, _ = w.Write(cachedResponse)
			return
		}

		// Capture response
		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}

		completed := false
		defer func() {
			// a panic or a failed request frees the key for a retry
			if !completed {
				_ = m.store.Release(r.Context(), key)
			}
		}()

		next.ServeHTTP(recorder, r)

		if recorder.statusCode >= 200 && recorder.statusCode < 300 {
			// a failed Update leaves the placeholder, so retries get 409
			// rather than running twice
			completed = true
			_ = m.store.Update(r.Context(), key, recorder.body.Bytes(), m.ttl)
		}
	})
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
