// Package notify delivers best-effort notifications off the request path.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/usmansyedcoder/Portfolio-Backend/internal/metrics"
	"github.com/usmansyedcoder/Portfolio-Backend/pkg/mailer"
)

// Sender delivers a single mail message.
type Sender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// Dispatcher runs each send on its own goroutine. Failures are logged and
// counted but never returned to the caller.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. A non-positive timeout defaults to 30s.
func NewDispatcher(sender Sender, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{sender: sender, timeout: timeout}
}

// Dispatch schedules msg for delivery and returns immediately. The send is
// detached from ctx cancellation so it survives the end of the request.
func (d *Dispatcher) Dispatch(ctx context.Context, msg mailer.Message) {
	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()

		start := time.Now()
		if err := d.sender.Send(ctx, msg); err != nil {
			metrics.NotificationsTotal.WithLabelValues("failed").Inc()
			slog.Warn("notification dispatch failed", "subject", msg.Subject, "error", err)
			return
		}
		metrics.NotificationsTotal.WithLabelValues("sent").Inc()
		slog.Info("notification sent", "subject", msg.Subject, "duration_ms", time.Since(start).Milliseconds())
	}()
}

// Wait blocks until all in-flight sends finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
