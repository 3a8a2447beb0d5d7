package events

import (
	"context"
	"errors"

	"taskmanager/internal/domain"
)

// Publisher delivers domain events to subscribers.
type Publisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, domain.Event) error { return nil }

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev domain.Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps published events in memory. Useful in tests.
type Recorder struct {
	Events []domain.Event
}

func (r *Recorder) Publish(_ context.Context, ev domain.Event) error {
	r.Events = append(r.Events, ev)
	return nil
}
