package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sales-platform/sales-service/internal/domain"
)

const eventLogCollection = "event_logs"

// eventLogDocument is the persisted shape of a domain.EventLog
type eventLogDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	EventID   string             `bson:"eventId"`
	EventType string             `bson:"eventType"`
	EventData string             `bson:"eventData"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// EventLogRepository implements domain.EventLogRepository using MongoDB
type EventLogRepository struct {
	collection *mongo.Collection
}

// NewEventLogRepository creates a new EventLogRepository
func NewEventLogRepository(db *mongo.Database) *EventLogRepository {
	collection := db.Collection(eventLogCollection)

	// Create indexes
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "eventId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "eventType", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &EventLogRepository{collection: collection}
}

// Append durably records an event log entry
func (r *EventLogRepository) Append(ctx context.Context, log *domain.EventLog) error {
	doc := eventLogDocument{
		EventID:   log.EventID,
		EventType: log.EventType,
		EventData: log.EventData,
		CreatedAt: log.CreatedAt,
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to append event log: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		log.ID = oid.Hex()
	}

	return nil
}

// List retrieves entries matching the filter. Entries sort on creation
// time, newest first unless the pagination asks for ascending order.
func (r *EventLogRepository) List(ctx context.Context, filter domain.EventLogFilter, pagination domain.Pagination) ([]*domain.EventLog, error) {
	sortValue := -1
	if pagination.SortBy != "" && !pagination.SortDesc {
		sortValue = 1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: sortValue}}).
		SetSkip(pagination.Skip()).
		SetLimit(pagination.Limit())

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query event logs: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []eventLogDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode event logs: %w", err)
	}

	logs := make([]*domain.EventLog, 0, len(docs))
	for _, doc := range docs {
		logs = append(logs, &domain.EventLog{
			ID:        doc.ID.Hex(),
			EventID:   doc.EventID,
			EventType: doc.EventType,
			EventData: doc.EventData,
			CreatedAt: doc.CreatedAt,
		})
	}

	return logs, nil
}

// Count returns the number of entries matching the filter
func (r *EventLogRepository) Count(ctx context.Context, filter domain.EventLogFilter) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count event logs: %w", err)
	}
	return count, nil
}

func buildFilter(filter domain.EventLogFilter) bson.M {
	query := bson.M{}

	if filter.EventID != nil {
		query["eventId"] = *filter.EventID
	}
	if filter.EventType != nil {
		query["eventType"] = *filter.EventType
	}

	dateRange := bson.M{}
	if filter.FromDate != nil {
		dateRange["$gte"] = *filter.FromDate
	}
	if filter.ToDate != nil {
		dateRange["$lte"] = *filter.ToDate
	}
	if len(dateRange) > 0 {
		query["createdAt"] = dateRange
	}

	return query
}
