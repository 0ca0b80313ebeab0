// Package outbox implements the domain's Publisher/Subscriber ports with an
// in-process bus. Delivery is at-most-once and non-durable; a real outbox
// would persist events transactionally and relay from a worker, which is what
// the kafka relay approximates downstream of this bus.
package outbox

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	domoutbox "github.com/tiendago/storefront/internal/domain/outbox"
	"github.com/tiendago/storefront/internal/observability"
	"github.com/tiendago/storefront/internal/observability/logctx"
)

const (
	queueCapacity  = 1024
	maxInFlight    = 8 // handler fanout cap per event
	handlerTimeout = 30 * time.Second
)

type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]domoutbox.Handler

	events chan domoutbox.Event
	cancel context.CancelFunc

	startOnce sync.Once
	stopOnce  sync.Once

	log observability.Logger
}

func NewBus(logger observability.Logger) *Bus {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Bus{
		handlers: make(map[string][]domoutbox.Handler),
		events:   make(chan domoutbox.Event, queueCapacity),
		log:      logger.With(observability.F("component", "outbox")),
	}
}

// Subscribe registers a handler for the named event. Registration is expected
// to finish before Start; late subscriptions only see subsequent events.
func (b *Bus) Subscribe(eventName string, h domoutbox.Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.handlers[eventName] = append(b.handlers[eventName], h)
	b.mu.Unlock()
}

func (b *Bus) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		runCtx, cancel := context.WithCancel(ctx)
		b.cancel = cancel
		go b.run(runCtx)
		b.log.Info("event_bus_started")
	})
}

func (b *Bus) Stop(_ context.Context) {
	b.stopOnce.Do(func() {
		if b.cancel != nil {
			b.cancel()
		}
		close(b.events)
		b.log.Info("event_bus_stopped")
	})
}

// Publish enqueues the event. It blocks only when the queue is full; a
// cancelled context aborts the enqueue and surfaces the context error.
func (b *Bus) Publish(ctx context.Context, e domoutbox.Event) error {
	if e == nil {
		return nil
	}
	select {
	case b.events <- e:
		return nil
	case <-ctx.Done():
		logctx.FromOr(ctx, b.log).Warn("event_enqueue_aborted",
			observability.F("event", e.EventName()),
			observability.F("error", ctx.Err().Error()),
		)
		return ctx.Err()
	}
}

func (b *Bus) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, open := <-b.events:
			if !open {
				return
			}
			b.deliver(ctx, e)
		}
	}
}

func (b *Bus) deliver(ctx context.Context, e domoutbox.Event) {
	name := e.EventName()

	b.mu.RLock()
	subscribers := append([]domoutbox.Handler(nil), b.handlers[name]...)
	b.mu.RUnlock()

	if len(subscribers) == 0 {
		b.log.Debug("event_no_subscribers", observability.F("event", name))
		return
	}

	// Handlers outlive the triggering request, so they run detached from its
	// cancellation but still bounded by handlerTimeout.
	base := context.WithoutCancel(ctx)
	logger := b.log.With(observability.F("event", name))

	sem := make(chan struct{}, maxInFlight)
	var wg sync.WaitGroup
	for _, h := range subscribers {
		sem <- struct{}{}
		wg.Add(1)
		go func(h domoutbox.Handler) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("event_handler_panic",
						observability.F("panic", r),
						observability.F("stack", string(debug.Stack())),
					)
				}
				<-sem
				wg.Done()
			}()

			hctx, cancel := context.WithTimeout(base, handlerTimeout)
			defer cancel()
			if err := h(logctx.With(hctx, logger), e); err != nil {
				logger.Warn("event_handler_failed",
					observability.F("error", err.Error()),
				)
			}
		}(h)
	}
	wg.Wait()
}
