package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"bus-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type memCounter struct {
	mu      sync.Mutex
	hits    map[string]int64
	windows map[string]time.Duration
	err     error
}

func newMemCounter() *memCounter {
	return &memCounter{hits: map[string]int64{}, windows: map[string]time.Duration{}}
}

func (c *memCounter) Hit(_ context.Context, key string, window time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	c.hits[key]++
	c.windows[key] = window
	return c.hits[key], nil
}

func TestRateLimitRejectsAfterLimit(t *testing.T) {
	counter := newMemCounter()
	config := utils.RateLimitConfig{Requests: 2, Window: time.Minute, Prefix: "rl:booking"}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusCreated) })
	h := rateLimit(counter, config, zap.NewNop())(next)

	userID := uuid.New()
	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
		req = req.WithContext(utils.SetUserContext(req.Context(), userID, "passenger"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := 1; i <= 2; i++ {
		if rec := send(); rec.Code != http.StatusCreated {
			t.Fatalf("request %d: status = %d, want 201", i, rec.Code)
		}
	}

	rec := send()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" || rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("unexpected headers: %v", rec.Header())
	}

	key := "rl:booking:" + userID.String()
	if counter.hits[key] != 3 || counter.windows[key] != time.Minute {
		t.Fatalf("counter keyed wrong: %v %v", counter.hits, counter.windows)
	}

	// another caller has its own window
	other := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
	other = other.WithContext(utils.SetUserContext(other.Context(), uuid.New(), "passenger"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	if rec.Code != http.StatusCreated {
		t.Fatalf("other caller: status = %d, want 201", rec.Code)
	}
}

func TestRateLimitFailsOpenOnCounterError(t *testing.T) {
	counter := newMemCounter()
	counter.err = errors.New("connection refused")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusCreated) })
	h := rateLimit(counter, utils.RateLimitConfig{Requests: 1, Window: time.Minute, Prefix: "rl"}, zap.NewNop())(next)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/bookings", nil))
		if rec.Code != http.StatusCreated {
			t.Fatalf("request %d: status = %d, want 201", i, rec.Code)
		}
	}
}

func TestRateLimitUnreachableRedisLetsRequestsThrough(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusCreated) })
	h := RateLimit(client, utils.RateLimitConfig{Requests: 1, Window: time.Minute, Prefix: "rl"}, zap.NewNop())(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/bookings", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
}
