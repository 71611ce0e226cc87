package goAset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mansetdig/goAset/session"
)

func BenchmarkMetricsIncParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Inc(MetricLoginSuccess)
		}
	})
}

func BenchmarkMetricsObserveLatencyParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	d := 12 * time.Millisecond
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Observe(MetricBackendLatency, d)
		}
	})
}

func BenchmarkBootstrapValid(b *testing.B) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.Backend.BaseURL = srv.URL
	store := session.NewMemoryStore()
	m, err := New().WithConfig(cfg).WithStore(store).Build()
	if err != nil {
		b.Fatal(err)
	}
	defer m.Teardown()

	ctx := context.Background()
	enc, err := m.codec.Encode(makeToken("alice"))
	if err != nil {
		b.Fatal(err)
	}
	encRefresh, err := m.codec.Encode("refresh-1")
	if err != nil {
		b.Fatal(err)
	}
	_ = store.Set(ctx, session.FieldToken, enc)
	_ = store.Set(ctx, session.FieldRefreshToken, encRefresh)
	_ = store.Set(ctx, session.FieldRole, "admin")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if m.Bootstrap(ctx) != StateAuthenticated {
			b.Fatal("bootstrap lost the session")
		}
	}
}
