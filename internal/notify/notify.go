// Package notify delivers owner notifications about appointment decisions
// and stays.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Message is a plain-text email to one owner.
type Message struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// Notifier delivers a message.
type Notifier interface {
	Notify(ctx context.Context, m Message) error
}

// Log is a Notifier that only logs messages. It is used in dev mode and
// when no mail transport is configured.
type Log struct {
	Logger *slog.Logger
}

// Notify logs the message.
func (l Log) Notify(_ context.Context, m Message) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("[DEV] notification", "to", m.To, "subject", m.Subject, "body", m.Body)
	return nil
}

// Dispatcher sends messages in the background. Failures are logged and
// never reach the caller.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Each send gets its own timeout,
// detached from the request that triggered it.
func NewDispatcher(n Notifier, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{notifier: n, timeout: timeout}
}

// Dispatch sends m without waiting for delivery.
func (d *Dispatcher) Dispatch(m Message) {
	if d == nil || d.notifier == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.notifier.Notify(ctx, m); err != nil {
			slog.Error("sending notification failed", "to", m.To, "subject", m.Subject, "error", err)
		}
	}()
}

// Wait blocks until every dispatched message has been attempted.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
