package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
)

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	col *mongo.Collection
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{col: db.Collection(collectionEvents)}
}

// Insert persists an audit event to the booking_events collection.
func (r *EventRepository) Insert(ctx context.Context, event *domain.BookingEvent) error {
	doc := bson.M{
		"type":         string(event.Type),
		"timestamp":    event.Timestamp.UTC(),
		"processed_at": time.Now().UTC(),
	}
	optional := map[string]string{
		"booking_id":   event.BookingID,
		"wizard_id":    event.WizardID,
		"actor_id":     event.ActorID,
		"actor_role":   string(event.ActorRole),
		"from":         event.From,
		"to":           event.To,
		"reference_id": event.ReferenceID,
		"message":      event.Message,
	}
	for k, v := range optional {
		if v != "" {
			doc[k] = v
		}
	}
	if event.Amount != 0 {
		doc["amount"] = event.Amount
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}

// ListByBooking returns the audit trail of one booking, oldest first. The
// payment events of the wizard that created it are included.
func (r *EventRepository) ListByBooking(ctx context.Context, bookingID, wizardID string) ([]*domain.BookingEvent, error) {
	filter := bson.M{"booking_id": bookingID}
	if wizardID != "" {
		filter = bson.M{"$or": bson.A{
			bson.M{"booking_id": bookingID},
			bson.M{"wizard_id": wizardID},
		}}
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
}

// ListByType returns the newest events of type t.
func (r *EventRepository) ListByType(ctx context.Context, t domain.BookingEventType, limit int) ([]*domain.BookingEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{"type": string(t)}, opts)
}

func (r *EventRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.BookingEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	events := make([]*domain.BookingEvent, 0)
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
