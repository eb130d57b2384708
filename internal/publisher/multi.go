package publisher

import (
	"context"
	"errors"
	"fmt"

	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/models"
)

// NamedPublisher tags a sink with a name for error reporting and metrics
type NamedPublisher struct {
	Name      string
	Publisher contracts.Publisher
}

// MultiPublisher fans each record out to every sink. A failing sink does
// not stop the others.
type MultiPublisher struct {
	sinks   []NamedPublisher
	onError func(sink string, err error)
}

// NewMultiPublisher creates a fan-out publisher. onError may be nil.
func NewMultiPublisher(onError func(sink string, err error), sinks ...NamedPublisher) *MultiPublisher {
	return &MultiPublisher{
		sinks:   sinks,
		onError: onError,
	}
}

func (m *MultiPublisher) Publish(ctx context.Context, record *models.CommentaryRecord) error {
	var errs []error
	for _, sink := range m.sinks {
		if err := sink.Publisher.Publish(ctx, record); err != nil {
			m.report(sink.Name, err)
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name, err))
		}
	}
	return errors.Join(errs...)
}

// PublishBatch hands the whole batch to sinks that support batching and
// publishes record by record to the rest
func (m *MultiPublisher) PublishBatch(ctx context.Context, records []*models.CommentaryRecord) error {
	if len(records) == 0 {
		return nil
	}

	var errs []error
	for _, sink := range m.sinks {
		if batcher, ok := sink.Publisher.(contracts.BatchPublisher); ok {
			if err := batcher.PublishBatch(ctx, records); err != nil {
				m.report(sink.Name, err)
				errs = append(errs, fmt.Errorf("%s: %w", sink.Name, err))
			}
			continue
		}

		for _, record := range records {
			if err := sink.Publisher.Publish(ctx, record); err != nil {
				m.report(sink.Name, err)
				errs = append(errs, fmt.Errorf("%s: %w", sink.Name, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (m *MultiPublisher) report(sink string, err error) {
	if m.onError != nil {
		m.onError(sink, err)
	}
}

func (m *MultiPublisher) Close() error {
	var errs []error
	for _, sink := range m.sinks {
		if err := sink.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name, err))
		}
	}
	return errors.Join(errs...)
}
