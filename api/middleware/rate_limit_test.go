package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type fakeCounter struct {
	counts map[string]int64
	err    error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: make(map[string]int64)}
}

func (f *fakeCounter) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	return f.counts[key], nil
}

func registrationRequest(ip, email string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/candidates", strings.NewReader(`{"email":"`+email+`"}`))
	req.Header.Set("X-Forwarded-For", ip)
	return req
}

func TestRateLimitBlocksAfterIPLimit(t *testing.T) {
	store := newFakeCounter()
	policy := NewRateLimitPolicy("registration", time.Minute, 2, 0)
	mw := RateLimit(policy, store, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		mw(handler).ServeHTTP(rec, registrationRequest("203.0.113.9", "a@example.com"))
		if rec.Code != http.StatusCreated {
			t.Fatalf("request %d blocked early with %d", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, registrationRequest("203.0.113.9", "a@example.com"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", rec.Code)
	}
}

func TestRateLimitCountsPerEmail(t *testing.T) {
	store := newFakeCounter()
	policy := NewRateLimitPolicy("registration", time.Minute, 0, 1)
	mw := RateLimit(policy, store, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, registrationRequest("203.0.113.9", "same@example.com"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first request blocked with %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, registrationRequest("198.51.100.7", "Same@Example.com"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for same email from another ip, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, registrationRequest("198.51.100.7", "other@example.com"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("different email blocked with %d", rec.Code)
	}
}

func TestRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	store := newFakeCounter()
	mw := RateLimit(RateLimitPolicy{}, store, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, registrationRequest("203.0.113.9", "a@example.com"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
	if len(store.counts) != 0 {
		t.Fatalf("disabled policy should not touch the store")
	}
}
