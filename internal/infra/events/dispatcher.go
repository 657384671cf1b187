package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Publisher delivers one event to one downstream system.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, data any) error
}

type sink struct {
	name string
	pub  Publisher
}

// Dispatcher fans events out to every registered publisher in the background.
// Delivery is best-effort: failures are logged and never reach the caller.
type Dispatcher struct {
	mu      sync.RWMutex
	sinks   []sink
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(timeout time.Duration) *Dispatcher {
	return &Dispatcher{timeout: timeout}
}

func (d *Dispatcher) Register(name string, pub Publisher) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sinks = append(d.sinks, sink{name: name, pub: pub})
}

func (d *Dispatcher) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.sinks)
}

// Dispatch returns immediately. Each publisher gets its own attempt under a
// shared timeout; one failing publisher does not cancel the others.
func (d *Dispatcher) Dispatch(routingKey string, data any) {
	d.mu.RLock()
	sinks := append([]sink(nil), d.sinks...)
	d.mu.RUnlock()
	if len(sinks) == 0 {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		var g errgroup.Group
		for _, s := range sinks {
			s := s
			g.Go(func() error {
				if err := s.pub.Publish(ctx, routingKey, data); err != nil {
					slog.Warn("event delivery failed",
						slog.String("sink", s.name),
						slog.String("routing_key", routingKey),
						slog.Any("err", err))
					return fmt.Errorf("%s: %w", s.name, err)
				}
				return nil
			})
		}
		if err := g.Wait(); err == nil {
			slog.Debug("event delivered", slog.String("routing_key", routingKey), slog.Int("sinks", len(sinks)))
		}
	}()
}

// Wait blocks until every in-flight dispatch finishes.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Shutdown waits for in-flight dispatches or gives up when ctx is done.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
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
