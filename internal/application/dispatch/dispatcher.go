package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/projtrack-notify/internal/domain"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultLiveTimeout = 2 * time.Second
	defaultMaxInFlight = 32
	defaultMaxBacklog  = 256
)

type notificationStore interface {
	Create(ctx context.Context, in domain.NotificationInput) (*domain.Notification, error)
}

type tokenLookup interface {
	TokensFor(ctx context.Context, userIDs []string) ([]domain.PushToken, error)
}

type studentRoster interface {
	ActiveStudentIDs(ctx context.Context) ([]string, error)
}

// Gateway delivers one message to a batch of device tokens and reports a
// result per token. An error means nothing was attempted.
type Gateway interface {
	Send(ctx context.Context, tokens []string, msg domain.PushMessage) ([]domain.DeliveryResult, error)
}

// LivePublisher forwards a new record to connected clients.
type LivePublisher interface {
	Publish(ctx context.Context, n *domain.Notification) error
}

type Deps struct {
	Store  notificationStore
	Tokens tokenLookup
	Roster studentRoster
	// Gateway may be nil, in which case push delivery is skipped.
	Gateway Gateway
	// Live may be nil.
	Live LivePublisher
	// Timeout bounds the token lookup and gateway call of one delivery.
	Timeout time.Duration
	// LiveTimeout bounds the live publish, which runs beside the push path.
	LiveTimeout time.Duration
	MaxInFlight int
	// MaxBacklog is how many deliveries may wait for a slot. Zero selects the
	// default; a negative value admits nothing beyond MaxInFlight.
	MaxBacklog int
}

// Dispatcher records notifications and fans them out to devices. The record
// write is synchronous; push delivery runs in the background and its failures
// are only logged.
type Dispatcher struct {
	store   notificationStore
	tokens  tokenLookup
	roster  studentRoster
	gateway Gateway
	live    LivePublisher
	timeout     time.Duration
	liveTimeout time.Duration
	sem         chan struct{}
	// queue holds one token per admitted delivery, running or waiting.
	queue chan struct{}

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func New(deps Deps) *Dispatcher {
	if deps.Timeout <= 0 {
		deps.Timeout = defaultTimeout
	}
	if deps.LiveTimeout <= 0 {
		deps.LiveTimeout = defaultLiveTimeout
	}
	if deps.MaxInFlight <= 0 {
		deps.MaxInFlight = defaultMaxInFlight
	}
	if deps.MaxBacklog < 0 {
		deps.MaxBacklog = 0
	} else if deps.MaxBacklog == 0 {
		deps.MaxBacklog = defaultMaxBacklog
	}
	return &Dispatcher{
		store:   deps.Store,
		tokens:  deps.Tokens,
		roster:  deps.Roster,
		gateway: deps.Gateway,
		live:    deps.Live,
		timeout:     deps.Timeout,
		liveTimeout: deps.LiveTimeout,
		sem:         make(chan struct{}, deps.MaxInFlight),
		queue:       make(chan struct{}, deps.MaxInFlight+deps.MaxBacklog),
	}
}

// Dispatch stores the record and schedules push delivery. It fails only when
// the record could not be written.
func (d *Dispatcher) Dispatch(ctx context.Context, in domain.NotificationInput) (*domain.DispatchResult, error) {
	n, err := d.store.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	d.spawn(n)
	return &domain.DispatchResult{Notification: n}, nil
}

// Shutdown stops accepting background deliveries and waits for the ones in
// flight, or until ctx is done.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
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
		return fmt.Errorf("waiting for push deliveries: %w", ctx.Err())
	}
}

func (d *Dispatcher) spawn(n *domain.Notification) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		slog.Warn("dispatcher shut down, push skipped", "notification_id", n.NotificationID)
		return
	}
	select {
	case d.queue <- struct{}{}:
	default:
		d.mu.Unlock()
		slog.Warn("push skipped, backlog full", "notification_id", n.NotificationID, "backlog", cap(d.queue))
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		defer func() { <-d.queue }()
		d.sem <- struct{}{}
		defer func() { <-d.sem }()
		d.deliver(n)
	}()
}

// deliver runs the live publish and the push path side by side, each under its
// own deadline, and returns when both are done.
func (d *Dispatcher) deliver(n *domain.Notification) {
	log := slog.With("notification_id", n.NotificationID)

	var wg sync.WaitGroup
	if d.live != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer recoverDelivery(log, "live publish")
			ctx, cancel := context.WithTimeout(context.Background(), d.liveTimeout)
			defer cancel()
			if err := d.live.Publish(ctx, n); err != nil {
				log.Warn("live publish failed", "err", err)
			}
		}()
	}

	func() {
		defer recoverDelivery(log, "push")
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		d.push(ctx, log, n)
	}()
	wg.Wait()
}

func recoverDelivery(log *slog.Logger, stage string) {
	if r := recover(); r != nil {
		log.Error("push delivery panicked", "stage", stage, "panic", r)
	}
}

func (d *Dispatcher) push(ctx context.Context, log *slog.Logger, n *domain.Notification) {
	if d.gateway == nil {
		log.Debug("push disabled, skipping delivery")
		return
	}

	tokens, err := d.tokens.TokensFor(ctx, n.Recipients)
	if err != nil {
		log.Warn("push token lookup failed", "err", err)
		return
	}
	if len(tokens) == 0 {
		log.Info("no push tokens for recipients", "recipients", len(n.Recipients))
		return
	}

	values := make([]string, len(tokens))
	owners := make(map[string]string, len(tokens))
	for i, t := range tokens {
		values[i] = t.Token
		owners[t.Token] = t.UserID
	}

	results, err := d.gateway.Send(ctx, values, pushMessage(n))
	if err != nil {
		log.Warn("push send failed", "tokens", len(values), "err", err)
		return
	}

	failed := 0
	for _, r := range results {
		if r.Err == nil {
			continue
		}
		failed++
		log.Warn("push delivery failed",
			"user_id", owners[r.Token],
			"token", redact(r.Token),
			"unregistered", errors.Is(r.Err, domain.ErrTokenUnregistered),
			"err", r.Err,
		)
	}
	log.Info("push delivered", "tokens", len(values), "failed", failed)
}

func pushMessage(n *domain.Notification) domain.PushMessage {
	data := map[string]string{
		"notification_id": n.NotificationID,
		"type":            string(n.Type),
	}
	if n.RelatedRef != nil {
		data["related_ref"] = *n.RelatedRef
	}
	return domain.PushMessage{Title: n.Title, Body: n.Body, Data: data}
}

// redact keeps the last 8 characters of a token for log correlation.
func redact(token string) string {
	if len(token) <= 8 {
		return token
	}
	return "..." + token[len(token)-8:]
}
