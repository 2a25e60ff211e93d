// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/marquee/internal/config"
)

// =====================================================
// ChiMiddleware Configuration Tests
// =====================================================

func TestNewChiMiddleware_DefaultConfig(t *testing.T) {
	t.Parallel()

	m := NewChiMiddleware(nil)
	if m.config == nil {
		t.Fatal("config is nil")
	}
	if len(m.config.CORSAllowedOrigins) != 0 {
		t.Errorf("CORSAllowedOrigins = %v, want []", m.config.CORSAllowedOrigins)
	}
	if m.config.CORSMaxAge != 86400 {
		t.Errorf("CORSMaxAge = %d, want 86400", m.config.CORSMaxAge)
	}
}

func TestChiMiddlewareConfigFrom(t *testing.T) {
	t.Parallel()

	sec := &config.SecurityConfig{
		CORSOrigins:       []string{"https://a.example", "https://b.example"},
		RateLimitReqs:     250,
		RateLimitWindow:   30 * time.Second,
		RateLimitDisabled: true,
	}
	cfg := ChiMiddlewareConfigFrom(sec)

	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitRequests != 250 || cfg.RateLimitWindow != 30*time.Second || !cfg.RateLimitDisabled {
		t.Errorf("rate limit = %d/%v disabled=%v", cfg.RateLimitRequests, cfg.RateLimitWindow, cfg.RateLimitDisabled)
	}

	sec.CORSOrigins[0] = "mutated"
	if cfg.CORSAllowedOrigins[0] != "https://a.example" {
		t.Error("config shares the origins slice with the source")
	}
}

// =====================================================
// CORS Middleware Tests
// =====================================================

func TestChiMiddleware_CORS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		origins    []string
		origin     string
		wantHeader string
	}{
		{"wildcard", []string{"*"}, "https://example.com", "*"},
		{"allowed origin", []string{"https://allowed.com"}, "https://allowed.com", "https://allowed.com"},
		{"disallowed origin", []string{"https://allowed.com"}, "https://evil.com", ""},
		{"no origins configured", nil, "https://example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultChiMiddlewareConfig()
			cfg.CORSAllowedOrigins = tt.origins
			handler := NewChiMiddleware(cfg).CORS()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantHeader {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantHeader)
			}
		})
	}
}

func TestChiMiddleware_CORSPreflight(t *testing.T) {
	t.Parallel()

	cfg := DefaultChiMiddlewareConfig()
	cfg.CORSAllowedOrigins = []string{"https://ui.example"}
	cfg.RateLimitDisabled = true
	srv, _ := newTestServer(t, newTestEngine(t, true), cfg)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/recommendations", nil)
	req.Header.Set("Origin", "https://ui.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK && rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://ui.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

// =====================================================
// Rate Limit Middleware Tests
// =====================================================

func TestChiMiddleware_RateLimit(t *testing.T) {
	t.Parallel()

	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitRequests = 2
	cfg.RateLimitWindow = time.Minute
	srv, _ := newTestServer(t, newTestEngine(t, true), cfg)

	for i := 0; i < 2; i++ {
		if rec, _ := doRequest(t, srv, http.MethodGet, "/api/v1/model"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rec.Code)
		}
	}

	rec, env := doRequest(t, srv, http.MethodGet, "/api/v1/model")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if env.Error == nil || env.Error.Code != ErrCodeTooManyRequests {
		t.Errorf("error = %+v, want %s", env.Error, ErrCodeTooManyRequests)
	}

	// Health probes have their own budget.
	if rec, _ := doRequest(t, srv, http.MethodGet, "/api/v1/health"); rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}

func TestChiMiddleware_RateLimitDisabled(t *testing.T) {
	t.Parallel()

	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitRequests = 1
	cfg.RateLimitDisabled = true
	srv, _ := newTestServer(t, newTestEngine(t, true), cfg)

	for i := 0; i < 5; i++ {
		if rec, _ := doRequest(t, srv, http.MethodGet, "/api/v1/model"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rec.Code)
		}
	}
}

// =====================================================
// Security Headers Tests
// =====================================================

func TestAPISecurityHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		tls      bool
		proto    string
		wantHSTS bool
	}{
		{"plain http", false, "", false},
		{"direct tls", true, "", true},
		{"tls terminating proxy", false, "https", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := APISecurityHeaders()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			req := httptest.NewRequest(http.MethodGet, "/api/v1/model", nil)
			if tt.tls {
				req.TLS = &tls.ConnectionState{}
			}
			if tt.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tt.proto)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			h := rec.Header()
			if h.Get("X-Content-Type-Options") != "nosniff" || h.Get("X-Frame-Options") != "DENY" {
				t.Errorf("missing base headers: %v", h)
			}
			if got := h.Get("Strict-Transport-Security") != ""; got != tt.wantHSTS {
				t.Errorf("HSTS present = %v, want %v", got, tt.wantHSTS)
			}
		})
	}
}
