package goAset

import (
	"context"
	"io"
	"log/slog"

	"github.com/mansetdig/goAset/internal/audit"
)

// Session event types.
const (
	EventLoginSuccess   = "login_success"
	EventLoginRejected  = "login_rejected"
	EventLoginFailure   = "login_failure"
	EventBootstrap      = "bootstrap"
	EventRefreshSuccess = "refresh_success"
	EventRefreshFailure = "refresh_failure"
	EventRoleResolved   = "role_resolved"
	EventLogout         = "logout"
	EventSessionCleared = "session_cleared"
	EventStateChanged   = "state_changed"
)

// SessionEvent is one lifecycle record. It never carries a credential; the
// Error field holds a failure class such as "transport" or "rejected".
type SessionEvent = audit.Event

// EventSink receives session events from the dispatcher goroutine.
type EventSink = audit.Sink

type (
	NoOpSink       = audit.NoOpSink
	SinkFunc       = audit.SinkFunc
	ChannelSink    = audit.ChannelSink
	JSONWriterSink = audit.JSONWriterSink
	SlogSink       = audit.SlogSink
)

// NewChannelSink returns a sink that writes into a channel of the given size.
func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

// NewJSONWriterSink writes one JSON object per event to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

// NewSlogSink logs events through logger.
func NewSlogSink(logger *slog.Logger) SlogSink {
	return audit.SlogSink{Logger: logger}
}

func (m *Manager) emit(ctx context.Context, eventType string, success bool, reason string, fill func(*SessionEvent)) {
	if m.audit == nil {
		return
	}
	ev := SessionEvent{
		EventType: eventType,
		RequestID: RequestID(ctx),
		State:     m.State().String(),
		Success:   success,
		Error:     reason,
	}
	if fill != nil {
		fill(&ev)
	}
	m.audit.Emit(ctx, ev)
}
