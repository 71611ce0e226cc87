package goAset

import (
	"context"
	"time"
)

// RefreshLoop periodically refreshes an authenticated session. It is created
// by Manager.StartRefreshLoop and must be stopped by its owner, either with
// Stop, by cancelling the context it was started with, or by
// Manager.Teardown.
type RefreshLoop struct {
	m      *Manager
	cancel context.CancelFunc
	done   chan struct{}
}

// StartRefreshLoop starts refreshing every Config.Refresh.Interval while the
// session is authenticated. A failed background refresh clears the session
// and transitions to StateUnauthenticated; the loop keeps running and resumes
// after a later Login.
func (m *Manager) StartRefreshLoop(ctx context.Context) *RefreshLoop {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	l := &RefreshLoop{m: m, cancel: cancel, done: make(chan struct{})}

	if !m.ready() {
		cancel()
		close(l.done)
		return l
	}

	m.loopMu.Lock()
	if m.torn {
		m.loopMu.Unlock()
		cancel()
		close(l.done)
		return l
	}
	m.loops[l] = struct{}{}
	m.loopMu.Unlock()

	go l.run(ctx, m.config.Refresh.Interval)
	return l
}

func (l *RefreshLoop) run(ctx context.Context, interval time.Duration) {
	defer func() {
		l.m.loopMu.Lock()
		delete(l.m.loops, l)
		l.m.loopMu.Unlock()
		close(l.done)
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A tick and a cancellation can be ready together.
			if ctx.Err() != nil {
				return
			}
			l.m.loopRefresh(ctx)
		}
	}
}

// Stop cancels the loop and waits for its goroutine to exit. No refresh
// starts after Stop returns. Stop is idempotent.
func (l *RefreshLoop) Stop() {
	if l == nil {
		return
	}
	l.cancel()
	<-l.done
}

// Done is closed when the loop has exited.
func (l *RefreshLoop) Done() <-chan struct{} {
	return l.done
}
