package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sales-platform/sales-service/internal/domain"
	"github.com/sales-platform/sales-service/pkg/logging"
	"github.com/sales-platform/sales-service/pkg/metrics"
	"github.com/sales-platform/sales-service/pkg/resilience"
)

// Publisher implements domain.EventPublisher by appending each event to
// the durable event log. The log is the audit trail of record: an
// append failure propagates to the caller and fails the command.
type Publisher struct {
	repo    domain.EventLogRepository
	breaker *resilience.CircuitBreaker
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// NewPublisher creates a new Publisher
func NewPublisher(repo domain.EventLogRepository, breaker *resilience.CircuitBreaker, logger *logging.Logger, m *metrics.Metrics) *Publisher {
	return &Publisher{
		repo:    repo,
		breaker: breaker,
		logger:  logger.WithComponent("event_publisher"),
		metrics: m,
	}
}

// Publish records a domain event
func (p *Publisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	start := time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize %s event: %w", event.EventType(), err)
	}

	entry := &domain.EventLog{
		EventID:   event.EventID(),
		EventType: event.EventType(),
		EventData: string(data),
		CreatedAt: event.OccurredAt(),
	}

	if p.breaker != nil {
		_, err = p.breaker.Execute(ctx, func() (interface{}, error) {
			return nil, p.repo.Append(ctx, entry)
		})
	} else {
		err = p.repo.Append(ctx, entry)
	}

	duration := time.Since(start)
	if p.metrics != nil {
		p.metrics.RecordEventAppended(event.EventType(), err == nil, duration)
	}
	p.logger.EventPublished(ctx, event.EventType(), event.EventID(), err == nil, duration)

	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.EventType(), err)
	}

	return nil
}

// PublishAll records multiple domain events, stopping at the first failure
func (p *Publisher) PublishAll(ctx context.Context, events []domain.DomainEvent) error {
	for _, event := range events {
		if err := p.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
