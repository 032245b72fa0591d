package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/gobacks-backend/pkg/config"
	pkgredis "github.com/angelmondragon/gobacks-backend/pkg/redis"
)

func newRedisStore(t *testing.T) (*pkgredis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := pkgredis.New(context.Background(), config.RedisConfig{Address: mr.Addr()}, nil)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func requestWithPattern(method, url, pattern string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, url, body)
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{pattern}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestRouteMatches(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		pattern string
		ok      bool
	}{
		{"create cart", http.MethodPost, "/cart/", true},
		{"create cart v1", http.MethodPost, "/api/v1/cart/", true},
		{"mutate items", http.MethodPost, "/cart/{cartId}", true},
		{"mutate items v1", http.MethodPost, "/api/v1/cart/{cartId}", true},
		{"list carts", http.MethodGet, "/cart/", false},
		{"delete cart", http.MethodDelete, "/cart/{cartId}", false},
		{"health", http.MethodPost, "/health/ready", false},
		{"empty", http.MethodPost, "", false},
	}

	for _, tt := range tests {
		if got := routeMatches(tt.method, tt.pattern); got != tt.ok {
			t.Fatalf("%s: expected %v got %v", tt.name, tt.ok, got)
		}
	}
}

func TestIdempotencyPassesThroughWithoutHeader(t *testing.T) {
	store, mr := newRedisStore(t)
	var calls int
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		req := requestWithPattern(http.MethodPost, "/cart", "/cart/", strings.NewReader(`{"name":"x"}`))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d", resp.Code)
		}
	}
	if calls != 2 {
		t.Fatalf("handler executed %d times, expected 2", calls)
	}
	if len(mr.Keys()) != 0 {
		t.Fatalf("nothing should be stored without a key, got %v", mr.Keys())
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store, mr := newRedisStore(t)
	var calls int
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"success","data":` + string(body) + `}`))
	}))

	req := requestWithPattern(http.MethodPost, "/cart", "/cart/", strings.NewReader(`{"name":"x"}`))
	req.Header.Set(idempotencyKeyHeader, "abc")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected first response 201 got %d", resp.Code)
	}

	replay := requestWithPattern(http.MethodPost, "/cart", "/cart/", strings.NewReader(`{"name":"x"}`))
	replay.Header.Set(idempotencyKeyHeader, "abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, replay)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected replay status 201 got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" || rec.Header().Get(idempotencyReplayHeader) != "true" {
		t.Fatalf("unexpected replay headers %v", rec.Header())
	}
	if rec.Body.String() != resp.Body.String() {
		t.Fatalf("expected stored body got %s", rec.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}

	key := store.IdempotencyKey("POST|/cart", "abc")
	if !mr.Exists(key) {
		t.Fatalf("expected record under %s, keys %v", key, mr.Keys())
	}
	if ttl := mr.TTL(key); ttl != time.Hour {
		t.Fatalf("expected 1h ttl got %v", ttl)
	}
}

func TestIdempotencyDetectsBodyChange(t *testing.T) {
	store, _ := newRedisStore(t)
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := requestWithPattern(http.MethodPost, "/cart/1", "/cart/{cartId}", strings.NewReader(`{"items_deleted":[1]}`))
	req.Header.Set(idempotencyKeyHeader, "xyz")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	replay := requestWithPattern(http.MethodPost, "/cart/1", "/cart/{cartId}", strings.NewReader(`{"items_deleted":[2]}`))
	replay.Header.Set(idempotencyKeyHeader, "xyz")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, replay)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var payload struct {
		Message string `json:"message"`
		Data    any    `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if !strings.Contains(payload.Message, "idempotency key reused") || payload.Data != nil {
		t.Fatalf("unexpected envelope %+v", payload)
	}
}

func TestIdempotencySkipsServerFailures(t *testing.T) {
	store, mr := newRedisStore(t)
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	req := requestWithPattern(http.MethodPost, "/cart", "/cart/", strings.NewReader(`{}`))
	req.Header.Set(idempotencyKeyHeader, "boom")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if len(mr.Keys()) != 0 {
		t.Fatalf("server failures must not be stored, got %v", mr.Keys())
	}
}

func TestIdempotencyDegradesWhenRedisIsDown(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.Close()

	var calls int
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	req := requestWithPattern(http.MethodPost, "/cart", "/cart/", strings.NewReader(`{}`))
	req.Header.Set(idempotencyKeyHeader, "down")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated || calls != 1 {
		t.Fatalf("expected request to run without redis, code=%d calls=%d", resp.Code, calls)
	}
}

func TestIdempotencyIgnoresNonMatchingRoutes(t *testing.T) {
	store, mr := newRedisStore(t)
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := requestWithPattern(http.MethodDelete, "/cart/1", "/cart/{cartId}", nil)
	req.Header.Set(idempotencyKeyHeader, "del")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if len(mr.Keys()) != 0 {
		t.Fatalf("delete should not be recorded, got %v", mr.Keys())
	}
}
