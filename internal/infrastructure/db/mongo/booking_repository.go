package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
	"github.com/brightnest/cleaning-portal/internal/core/ports"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(collectionBookings)}
}

// Create inserts a new booking document.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, b)
	return err
}

func (r *BookingRepository) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var b domain.Booking
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) List(ctx context.Context, f ports.BookingFilter) ([]*domain.Booking, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bookingQuery(f)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	opts := options.Find().SetSort(sortSpec(f.Sort))
	if f.Page > 0 && f.Limit > 0 {
		opts.SetSkip(int64((f.Page - 1) * f.Limit)).SetLimit(int64(f.Limit))
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find bookings: %w", err)
	}
	bookings := make([]*domain.Booking, 0)
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// ListDetailed joins each booking with the profile summaries of its owner
// and assignee. A missing profile leaves the field empty.
func (r *BookingRepository) ListDetailed(ctx context.Context, f ports.BookingFilter) ([]*domain.BookingDetail, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bookingQuery(f)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: sortSpec(f.Sort)}},
	}
	if f.Page > 0 && f.Limit > 0 {
		pipeline = append(pipeline,
			bson.D{{Key: "$skip", Value: int64((f.Page - 1) * f.Limit)}},
			bson.D{{Key: "$limit", Value: int64(f.Limit)}},
		)
	}
	pipeline = append(pipeline, joinProfile("user_id", "customer")...)
	pipeline = append(pipeline, joinProfile("assigned_employee", "employee")...)

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("aggregate bookings: %w", err)
	}
	details := make([]*domain.BookingDetail, 0)
	if err := cur.All(ctx, &details); err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// Update applies the non-nil fields and returns the stored result. An empty
// assignee removes the field.
func (r *BookingRepository) Update(ctx context.Context, id string, upd ports.BookingUpdate) (*domain.Booking, error) {
	set, unset := bson.M{}, bson.M{}
	if upd.Status != nil {
		set["status"] = string(*upd.Status)
	}
	if upd.AssignedEmployee != nil {
		if *upd.AssignedEmployee == "" {
			unset["assigned_employee"] = ""
		} else {
			set["assigned_employee"] = *upd.AssignedEmployee
		}
	}
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if len(update) == 0 {
		return r.FindByID(ctx, id)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var b domain.Booking
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Stats counts bookings by status and sums paid amounts.
func (r *BookingRepository) Stats(ctx context.Context) (*domain.BookingStats, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	countIf := func(field, value string) bson.D {
		return bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$eq", Value: bson.A{"$" + field, value}}}, 1, 0,
		}}}}}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "pending", Value: countIf("status", string(domain.StatusPending))},
			{Key: "completed", Value: countIf("status", string(domain.StatusCompleted))},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$payment_status", string(domain.PaymentPaid)}}}, "$payment_amount", 0,
			}}}}}},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("booking stats: %w", err)
	}
	var rows []struct {
		Total     int64   `bson:"total"`
		Pending   int64   `bson:"pending"`
		Completed int64   `bson:"completed"`
		Revenue   float64 `bson:"revenue"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	st := &domain.BookingStats{}
	if len(rows) > 0 {
		st.Total, st.Pending, st.Completed, st.Revenue = rows[0].Total, rows[0].Pending, rows[0].Completed, rows[0].Revenue
	}
	return st, nil
}

func bookingQuery(f ports.BookingFilter) bson.M {
	q := bson.M{}
	if f.UserID != "" {
		q["user_id"] = f.UserID
	}
	if f.AssignedEmployee != "" {
		q["assigned_employee"] = f.AssignedEmployee
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	return q
}

func sortSpec(o ports.SortOrder) bson.D {
	if o == ports.SortByDateAsc {
		return bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}}
	}
	return bson.D{{Key: "created_at", Value: -1}}
}

// joinProfile looks up the profile whose _id equals localField and keeps
// its display fields under as.
func joinProfile(localField, as string) []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionProfiles},
			{Key: "localField", Value: localField},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: as},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$" + as},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: as + ".role", Value: 0},
			{Key: as + ".created_at", Value: 0},
		}}},
	}
}
