// Package outbox delivers queued notifications: webhooks to integrations, emails and chat messages.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/metrics"
	"github.com/fsdevblog/groph-ledger/internal/transport/webhook"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	defaultWorkers            = 4
	defaultBatchSize     uint = 50
	defaultMaxAttempts        = 8
	defaultLease              = time.Minute
	defaultBaseBackoff        = 5 * time.Second
	defaultMaxBackoff         = time.Hour
	defaultIdleDelay          = time.Second
	defaultSettleTimeout      = 3 * time.Second
	defaultRateLimit          = rate.Limit(20)
)

// permanentError marks events that cannot succeed on retry.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(format string, args ...any) error {
	return &permanentError{err: fmt.Errorf(format, args...)}
}

// Dispatcher delivers outbox events. Run drains the queue in the background, DispatchNow delivers freshly
// committed events once. Both claim events with a lease first, so an event is never sent by two workers at
// once.
type Dispatcher struct {
	store     Store
	webhook   WebhookSender
	mailer    Mailer
	chat      ChatNotifier
	endpoints map[string]webhook.Endpoint
	l         *logrus.Entry
	limiter   *rate.Limiter
	now       func() time.Time
	jitter    func(d time.Duration) time.Duration

	workers     int
	batchSize   uint
	maxAttempts int
	lease       time.Duration
	baseBackoff time.Duration
	maxBackoff  time.Duration
	idleDelay   time.Duration
}

func New(
	store Store,
	webhookSender WebhookSender,
	mailer Mailer,
	chat ChatNotifier,
	endpoints map[string]webhook.Endpoint,
	l *logrus.Logger,
) *Dispatcher {
	return &Dispatcher{
		store:       store,
		webhook:     webhookSender,
		mailer:      mailer,
		chat:        chat,
		endpoints:   endpoints,
		l:           l.WithFields(logrus.Fields{"component": "outbox", "module": "dispatcher"}),
		limiter:     rate.NewLimiter(defaultRateLimit, 1),
		now:         time.Now,
		jitter:      halfJitter,
		workers:     defaultWorkers,
		batchSize:   defaultBatchSize,
		maxAttempts: defaultMaxAttempts,
		lease:       defaultLease,
		baseBackoff: defaultBaseBackoff,
		maxBackoff:  defaultMaxBackoff,
		idleDelay:   defaultIdleDelay,
	}
}

// SetWorkers sets how many events are delivered concurrently.
func (d *Dispatcher) SetWorkers(workers int) *Dispatcher {
	if workers > 0 {
		d.workers = workers
	}
	return d
}

// SetBatchSize sets how many events are claimed per iteration.
func (d *Dispatcher) SetBatchSize(size uint) *Dispatcher {
	if size > 0 {
		d.batchSize = size
	}
	return d
}

// SetMaxAttempts sets the attempt budget after which an event is marked failed.
func (d *Dispatcher) SetMaxAttempts(attempts int) *Dispatcher {
	if attempts > 0 {
		d.maxAttempts = attempts
	}
	return d
}

// SetRateLimit caps outbound deliveries per second across all channels.
func (d *Dispatcher) SetRateLimit(perSecond float64) *Dispatcher {
	if perSecond > 0 {
		d.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return d
}

// SetBackoff sets the first retry delay and the cap of the exponential backoff.
func (d *Dispatcher) SetBackoff(base, maxDelay time.Duration) *Dispatcher {
	d.baseBackoff = base
	d.maxBackoff = maxDelay
	return d
}

// Run delivers due events until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	d.l.WithFields(logrus.Fields{
		"workers":     d.workers,
		"batchSize":   d.batchSize,
		"maxAttempts": d.maxAttempts,
	}).Info("Starting")

	for {
		select {
		case <-ctx.Done():
			d.l.Info("Got stop signal, exiting...")
			return
		default:
		}

		n, err := d.process(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			d.l.WithError(err).Error("process error")
		}
		if n > 0 && err == nil {
			continue
		}
		select {
		case <-ctx.Done():
		case <-time.After(d.idleDelay):
		}
	}
}

// process claims one batch and delivers it. It returns the number of claimed events.
func (d *Dispatcher) process(ctx context.Context) (int, error) {
	events, err := d.store.Claim(ctx, d.batchSize, d.lease)
	if err != nil {
		return 0, fmt.Errorf("process: %w", err)
	}
	if len(events) == 0 {
		return 0, nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for _, ev := range events {
		g.Go(func() error {
			d.handle(gCtx, ev)
			return nil
		})
	}
	_ = g.Wait()
	return len(events), nil
}

// DispatchNow makes one delivery attempt for ids. Events leased by the background loop are skipped. Every
// failure is returned as *domain.NotificationError, the event stays queued for retry.
func (d *Dispatcher) DispatchNow(ctx context.Context, ids []uuid.UUID) []error {
	if len(ids) == 0 {
		return nil
	}
	events, err := d.store.ClaimByIDs(ctx, ids, d.lease)
	if err != nil {
		warnings := make([]error, 0, len(ids))
		for _, id := range ids {
			warnings = append(warnings, domain.NewNotificationError(id, "", fmt.Errorf("claim: %w", err)))
		}
		return warnings
	}

	var warnings []error
	for _, ev := range events {
		if deliveryErr := d.handle(ctx, ev); deliveryErr != nil {
			warnings = append(warnings, domain.NewNotificationError(ev.ID, ev.Channel, deliveryErr))
		}
	}
	return warnings
}

// handle delivers ev and records the outcome.
func (d *Dispatcher) handle(ctx context.Context, ev domain.OutboxEvent) error {
	log := d.l.WithFields(logrus.Fields{
		"eventID":   ev.ID,
		"channel":   ev.Channel,
		"eventType": ev.EventType,
		"attempt":   ev.Attempts,
	})

	err := d.deliver(ctx, ev)

	settleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultSettleTimeout)
	defer cancel()

	if err == nil {
		metrics.RecordOutboxDelivery(string(ev.Channel), metrics.ResultSuccess)
		if markErr := d.store.MarkDelivered(settleCtx, ev.ID); markErr != nil {
			log.WithError(markErr).Error("mark delivered")
		}
		log.Debug("delivered")
		return nil
	}
	metrics.RecordOutboxDelivery(string(ev.Channel), metrics.ResultFailure)

	var perm *permanentError
	if errors.As(err, &perm) || ev.Attempts >= d.maxAttempts {
		if markErr := d.store.MarkFailed(settleCtx, ev.ID, err); markErr != nil {
			log.WithError(markErr).Error("mark failed")
		}
		log.WithError(err).Error("delivery failed permanently")
		return err
	}

	next := d.now().Add(d.retryDelay(ev.Attempts, err))
	if markErr := d.store.MarkRetry(settleCtx, ev.ID, next, err); markErr != nil {
		log.WithError(markErr).Error("mark retry")
	}
	log.WithError(err).WithField("nextAttemptAt", next).Warn("delivery failed, will retry")
	return err
}

func (d *Dispatcher) deliver(ctx context.Context, ev domain.OutboxEvent) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	switch ev.Channel {
	case domain.OutboxChannelWebhook:
		endpoint, ok := d.endpoints[ev.Integration]
		if !ok {
			return permanent("no webhook endpoint configured for integration %q", ev.Integration)
		}
		return d.webhook.Send(ctx, endpoint, ev.ID, ev.Payload) //nolint:wrapcheck
	case domain.OutboxChannelEmail:
		var p domain.EmailPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return permanent("decode email payload: %s", err.Error())
		}
		if p.To == "" {
			return permanent("email without recipient")
		}
		return d.mailer.Send(ctx, p.To, p.Subject, p.Body) //nolint:wrapcheck
	case domain.OutboxChannelChat:
		var p domain.ChatPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return permanent("decode chat payload: %s", err.Error())
		}
		return d.chat.Notify(ctx, p.Text) //nolint:wrapcheck
	default:
		return permanent("unknown channel %q", ev.Channel)
	}
}

// retryDelay is an exponential backoff with jitter. A Retry-After from the receiver is honoured when it is
// longer.
func (d *Dispatcher) retryDelay(attempts int, cause error) time.Duration {
	delay := d.baseBackoff
	for i := 1; i < attempts && delay < d.maxBackoff; i++ {
		delay *= 2
	}
	if delay > d.maxBackoff {
		delay = d.maxBackoff
	}
	delay += d.jitter(delay)

	var tooMany *webhook.TooManyRequestError
	if errors.As(cause, &tooMany) && tooMany.RetryAfter > delay {
		delay = tooMany.RetryAfter
	}
	return delay
}

func halfJitter(d time.Duration) time.Duration {
	if d <= 1 {
		return 0
	}
	return rand.N(d / 2) //nolint:gosec
}
