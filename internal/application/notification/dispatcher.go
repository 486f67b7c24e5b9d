package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-blog-nosql/internal/domain"
)

// Sender delivers one mail. Implemented by the smtp and sns transports.
type Sender interface {
	Send(ctx context.Context, mail domain.Mail) error
}

type Options struct {
	Workers         int
	QueueSize       int
	MaxTries        uint
	SendTimeout     time.Duration
	InitialInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.QueueSize < 1 {
		o.QueueSize = 1
	}
	if o.MaxTries < 1 {
		o.MaxTries = 1
	}
	if o.SendTimeout <= 0 {
		o.SendTimeout = 30 * time.Second
	}
	if o.InitialInterval <= 0 {
		o.InitialInterval = 500 * time.Millisecond
	}
	return o
}

// Dispatcher sends mail on background workers so request handlers never
// wait on a mail server. Delivery is best effort: failures are logged.
type Dispatcher struct {
	sender Sender
	opts   Options
	queue  chan domain.Mail

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(sender Sender, opts Options) *Dispatcher {
	opts = opts.withDefaults()
	return &Dispatcher{
		sender: sender,
		opts:   opts,
		queue:  make(chan domain.Mail, opts.QueueSize),
	}
}

// Start launches the worker goroutines.
func (d *Dispatcher) Start() {
	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go d.work(i)
	}
}

// Enqueue hands mail to the workers without blocking. It reports false
// when the queue is full or the dispatcher is shut down; the mail is dropped.
func (d *Dispatcher) Enqueue(mail domain.Mail) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		slog.Warn("mail dropped: dispatcher stopped", "to", mail.To, "subject", mail.Subject)
		return false
	}
	select {
	case d.queue <- mail:
		return true
	default:
		slog.Warn("mail dropped: queue full", "to", mail.To, "subject", mail.Subject)
		return false
	}
}

// Shutdown stops accepting mail and waits for queued mail to be attempted,
// or for ctx to end.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

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

func (d *Dispatcher) work(n int) {
	defer d.wg.Done()
	for mail := range d.queue {
		if err := d.deliver(mail); err != nil {
			slog.Error("mail delivery failed", "worker", n, "to", mail.To, "subject", mail.Subject, "err", err)
		}
	}
}

func (d *Dispatcher) deliver(mail domain.Mail) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.opts.InitialInterval

	_, err := backoff.Retry(context.Background(), func() (struct{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), d.opts.SendTimeout)
		defer cancel()
		err := d.sender.Send(ctx, mail)
		if errors.Is(err, domain.ErrUndeliverable) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(d.opts.MaxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.Warn("mail send failed, retrying", "to", mail.To, "in", next, "err", err)
		}),
	)
	return err
}
