// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/recommend"
)

// mockBuilder reports a settable fingerprint and builds artifacts carrying it.
type mockBuilder struct {
	mu          sync.Mutex
	fingerprint string
	fpErr       error
	buildErr    error
	buildCalls  int
}

func (m *mockBuilder) Fingerprint() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fingerprint, m.fpErr
}

func (m *mockBuilder) Build(ctx context.Context) (*recommend.Artifacts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buildCalls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.buildErr != nil {
		return nil, m.buildErr
	}
	return &recommend.Artifacts{Fingerprint: m.fingerprint}, nil
}

func (m *mockBuilder) set(fp string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fingerprint = fp
}

func (m *mockBuilder) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buildCalls
}

type mockPublisher struct {
	mu        sync.Mutex
	published []string
	err       error
	prunes    int
}

func (m *mockPublisher) PruneCache() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prunes++
	return 1
}

func (m *mockPublisher) pruneCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prunes
}

func (m *mockPublisher) Publish(a *recommend.Artifacts) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, a.Fingerprint)
	return nil
}

func (m *mockPublisher) fingerprints() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.published...)
}

func newTestRebuildService(t *testing.T, b *mockBuilder, p *mockPublisher, cfg RebuildServiceConfig) *RebuildService {
	t.Helper()
	if cfg.Interval == 0 {
		cfg.Interval = time.Hour
	}
	svc, err := NewRebuildService(b, p, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRebuildService() error = %v", err)
	}
	return svc
}

func TestNewRebuildService(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		builder ArtifactBuilder
		pub     Publisher
		cfg     RebuildServiceConfig
		wantErr bool
	}{
		{"valid", &mockBuilder{}, &mockPublisher{}, RebuildServiceConfig{Interval: time.Minute}, false},
		{"nil builder", nil, &mockPublisher{}, RebuildServiceConfig{Interval: time.Minute}, true},
		{"nil publisher", &mockBuilder{}, nil, RebuildServiceConfig{Interval: time.Minute}, true},
		{"zero interval", &mockBuilder{}, &mockPublisher{}, RebuildServiceConfig{}, true},
		{"negative interval", &mockBuilder{}, &mockPublisher{}, RebuildServiceConfig{Interval: -time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, err := NewRebuildService(tt.builder, tt.pub, tt.cfg, zerolog.Nop())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewRebuildService() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && svc.config.BuildTimeout != DefaultBuildTimeout {
				t.Errorf("BuildTimeout = %v, want %v", svc.config.BuildTimeout, DefaultBuildTimeout)
			}
		})
	}
}

func TestRebuildService_String(t *testing.T) {
	t.Parallel()
	svc := newTestRebuildService(t, &mockBuilder{}, &mockPublisher{}, RebuildServiceConfig{})
	if got := svc.String(); got != "rebuild-service" {
		t.Errorf("String() = %q, want %q", got, "rebuild-service")
	}
	var _ suture.Service = svc
}

func TestRebuildService_Check(t *testing.T) {
	t.Parallel()

	builder := &mockBuilder{fingerprint: "v1"}
	pub := &mockPublisher{}
	svc := newTestRebuildService(t, builder, pub, RebuildServiceConfig{Fingerprint: "v1"})
	ctx := context.Background()

	if got := svc.check(ctx); got != metrics.OutcomeUnchanged {
		t.Errorf("check() unchanged = %q, want %q", got, metrics.OutcomeUnchanged)
	}
	if builder.calls() != 0 {
		t.Errorf("built %d times with unchanged inputs", builder.calls())
	}

	builder.set("v2")
	if got := svc.check(ctx); got != metrics.OutcomeOK {
		t.Errorf("check() changed = %q, want %q", got, metrics.OutcomeOK)
	}
	if got := pub.fingerprints(); len(got) != 1 || got[0] != "v2" {
		t.Errorf("published = %v, want [v2]", got)
	}

	if got := svc.check(ctx); got != metrics.OutcomeUnchanged {
		t.Errorf("check() after publish = %q, want %q", got, metrics.OutcomeUnchanged)
	}
}

func TestRebuildService_Check_EmptyFingerprintForcesBuild(t *testing.T) {
	t.Parallel()

	builder := &mockBuilder{fingerprint: "v1"}
	pub := &mockPublisher{}
	svc := newTestRebuildService(t, builder, pub, RebuildServiceConfig{})

	if got := svc.check(context.Background()); got != metrics.OutcomeOK {
		t.Errorf("check() = %q, want %q", got, metrics.OutcomeOK)
	}
	if len(pub.fingerprints()) != 1 {
		t.Error("first check did not publish")
	}
}

func TestRebuildService_Check_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		builder   *mockBuilder
		publisher *mockPublisher
	}{
		{"fingerprint error", &mockBuilder{fpErr: errors.New("stat: no such file")}, &mockPublisher{}},
		{"build error", &mockBuilder{fingerprint: "v2", buildErr: errors.New("bad csv")}, &mockPublisher{}},
		{"publish error", &mockBuilder{fingerprint: "v2"}, &mockPublisher{err: errors.New("artifacts missing corpus")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newTestRebuildService(t, tt.builder, tt.publisher, RebuildServiceConfig{Fingerprint: "v1"})

			if got := svc.check(context.Background()); got != metrics.OutcomeError {
				t.Errorf("check() = %q, want %q", got, metrics.OutcomeError)
			}
			if svc.published != "v1" {
				t.Errorf("published fingerprint = %q after failure, want v1", svc.published)
			}
		})
	}
}

func TestRebuildService_Check_RetriesAfterFailure(t *testing.T) {
	t.Parallel()

	builder := &mockBuilder{fingerprint: "v2", buildErr: errors.New("transient")}
	pub := &mockPublisher{}
	svc := newTestRebuildService(t, builder, pub, RebuildServiceConfig{Fingerprint: "v1"})
	ctx := context.Background()

	if got := svc.check(ctx); got != metrics.OutcomeError {
		t.Fatalf("check() = %q, want error", got)
	}

	builder.mu.Lock()
	builder.buildErr = nil
	builder.mu.Unlock()

	if got := svc.check(ctx); got != metrics.OutcomeOK {
		t.Errorf("retry check() = %q, want ok", got)
	}
	if builder.calls() != 2 {
		t.Errorf("build calls = %d, want 2", builder.calls())
	}
}

func TestRebuildService_Serve(t *testing.T) {
	t.Parallel()

	builder := &mockBuilder{fingerprint: "v1"}
	pub := &mockPublisher{}
	svc := newTestRebuildService(t, builder, pub, RebuildServiceConfig{
		Interval:    10 * time.Millisecond,
		Fingerprint: "v1",
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Serve(ctx)
	}()

	builder.set("v2")

	deadline := time.After(2 * time.Second)
	for len(pub.fingerprints()) == 0 {
		select {
		case <-deadline:
			cancel()
			t.Fatal("changed inputs were not rebuilt")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	if pub.pruneCalls() == 0 {
		t.Error("response cache was not pruned on tick")
	}
	if got := pub.fingerprints(); len(got) != 1 || got[0] != "v2" {
		t.Errorf("published = %v, want exactly [v2]", got)
	}
}
