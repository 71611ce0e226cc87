package goAset

import (
	"context"
	"log/slog"
	"time"

	"github.com/mansetdig/goAset/backend"
	"github.com/mansetdig/goAset/codec"
	"github.com/mansetdig/goAset/internal/audit"
	"github.com/mansetdig/goAset/internal/flows"
	"github.com/mansetdig/goAset/jwt"
	"github.com/mansetdig/goAset/permission"
	"github.com/mansetdig/goAset/session"
)

// Builder assembles a Manager.
//
// Builder instances are intended to be configured during initialization and
// then discarded; Build may be called once.
type Builder struct {
	config Config

	store      session.Store
	httpClient backend.Doer
	logger     *slog.Logger
	listeners  []StateListener
	eventSink  EventSink
	menu       *permission.Menu

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStore sets the session store. The default is a fresh MemoryStore.
func (b *Builder) WithStore(store session.Store) *Builder {
	b.store = store
	return b
}

// WithHTTPClient overrides the HTTP client used for backend calls.
func (b *Builder) WithHTTPClient(client backend.Doer) *Builder {
	b.httpClient = client
	return b
}

// WithLogger sets the structured logger. The default discards output.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithStateListener registers fn for every state transition. Listeners are
// called in registration order.
func (b *Builder) WithStateListener(fn StateListener) *Builder {
	if fn != nil {
		b.listeners = append(b.listeners, fn)
	}
	return b
}

// WithEventSink sets the session event sink and enables event delivery.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.eventSink = sink
	b.config.Audit.Enabled = sink != nil
	return b
}

// WithMenu replaces the canonical navigation menu used by VisibleMenu.
func (b *Builder) WithMenu(menu *permission.Menu) *Builder {
	b.menu = menu
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the backend latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the Manager. No network or
// store I/O happens until the first operation.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cdc, err := codec.New(cfg.Codec.Key)
	if err != nil {
		return nil, err
	}

	store := b.store
	if store == nil {
		store = session.NewMemoryStore()
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	menu := b.menu
	if menu == nil {
		menu = permission.CanonicalMenu()
	}

	m := &Manager{
		config:    cfg,
		store:     store,
		codec:     cdc,
		menu:      menu,
		logger:    logger,
		metrics:   NewMetrics(cfg.Metrics),
		listeners: append([]StateListener(nil), b.listeners...),
		loops:     make(map[*RefreshLoop]struct{}),
	}
	m.audit = audit.NewDispatcher(audit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.eventSink)

	m.client = backend.New(backend.Config{
		BaseURL:      cfg.Backend.BaseURL,
		Timeout:      cfg.Backend.Timeout,
		RefreshStyle: backend.RefreshStyle(cfg.Backend.RefreshStyle),
		HTTPClient:   b.httpClient,
		Observer: func(op string, status int, elapsed time.Duration) {
			m.metrics.Observe(MetricBackendLatency, elapsed)
			logger.Debug("goAset: backend call", "op", op, "status", status, "elapsed", elapsed)
		},
	})

	encodeRefresh, decodeRefresh := passthrough, passthrough
	if cfg.Codec.EncodeRefreshToken {
		encodeRefresh, decodeRefresh = cdc.Encode, cdc.Decode
	}

	roleDeps := flows.RoleDeps{
		Store:   store,
		Backend: m.client,
		Warn:    logger.Warn,
	}
	refreshDeps := flows.RefreshDeps{
		Store:            store,
		Backend:          m.client,
		EncodeCredential: cdc.Encode,
		EncodeRefresh:    encodeRefresh,
		DecodeRefresh:    decodeRefresh,
	}
	m.flows = flows.New(flows.Deps{
		Login: flows.LoginDeps{
			Store:            store,
			Backend:          m.client,
			EncodeCredential: cdc.Encode,
			EncodeRefresh:    encodeRefresh,
			ExtractSubject:   jwt.SubjectOf,
			ResolveRole: func(ctx context.Context, credential, subject string) flows.RoleResult {
				return flows.RunResolveRole(ctx, credential, subject, roleDeps)
			},
		},
		Bootstrap: flows.BootstrapDeps{
			Store:            store,
			Backend:          m.client,
			DecodeCredential: cdc.Decode,
			Refresh: func(ctx context.Context) flows.RefreshResult {
				return flows.RunRefresh(ctx, refreshDeps)
			},
		},
		Refresh: refreshDeps,
		Role:    roleDeps,
		Logout:  flows.LogoutDeps{Store: store},
	})

	b.built = true
	return m, nil
}

func passthrough(s string) (string, error) { return s, nil }
