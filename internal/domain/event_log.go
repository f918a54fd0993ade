package domain

import (
	"context"
	"time"
)

// EventLog is a durable record of a published domain event. The payload
// is the event serialized as JSON, kept verbatim for auditing.
type EventLog struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	EventID   string    `bson:"eventId" json:"eventId"`
	EventType string    `bson:"eventType" json:"eventType"`
	EventData string    `bson:"eventData" json:"eventData"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// EventLogFilter represents filter options for querying the event log
type EventLogFilter struct {
	EventID   *string
	EventType *string
	FromDate  *time.Time
	ToDate    *time.Time
}

// EventLogRepository defines the interface for the audit log store
type EventLogRepository interface {
	// Append durably records an event log entry
	Append(ctx context.Context, log *EventLog) error

	// List retrieves entries matching the filter, newest first
	List(ctx context.Context, filter EventLogFilter, pagination Pagination) ([]*EventLog, error)

	// Count returns the number of entries matching the filter
	Count(ctx context.Context, filter EventLogFilter) (int64, error)
}
