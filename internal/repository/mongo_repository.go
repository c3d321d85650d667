package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aapkitaxi/service-booking/internal/domain"
	bookingDomain "github.com/aapkitaxi/service-booking/internal/domain/booking"
)

// bookingDocument is the MongoDB shape of a booking. Documents are keyed by
// the application-level sequential id field, not the Mongo _id.
type bookingDocument struct {
	ID        int64     `bson:"id"`
	Name      string    `bson:"name"`
	Phone     string    `bson:"phone"`
	Pickup    string    `bson:"pickup"`
	Drop      string    `bson:"drop"`
	Datetime  string    `bson:"datetime"`
	Seats     int       `bson:"seats"`
	Status    string    `bson:"status"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoBookingRepository is the document-store implementation of
// booking.Repository.
type MongoBookingRepository struct {
	coll *mongo.Collection
}

// NewMongoBookingRepository creates a MongoBookingRepository over the
// bookings collection and ensures the unique index on the id field, so a
// concurrent create that computed the same next id fails with a duplicate
// key error instead of silently storing two bookings under one id.
func NewMongoBookingRepository(ctx context.Context, client *mongo.Client, database string) (*MongoBookingRepository, error) {
	coll := client.Database(database).Collection("bookings")

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create booking id index: %w", err)
	}

	return &MongoBookingRepository{coll: coll}, nil
}

// Insert persists a new booking document under its pre-assigned id.
func (r *MongoBookingRepository) Insert(ctx context.Context, b *bookingDomain.Booking) error {
	if _, err := r.coll.InsertOne(ctx, toBookingDocument(b)); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

// ListAll retrieves every booking ordered by creation time descending.
func (r *MongoBookingRepository) ListAll(ctx context.Context) ([]*bookingDomain.Booking, error) {
	cursor, err := r.coll.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []bookingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(docs))
	for i, d := range docs {
		bookings[i] = toDomainFromDocument(&d)
	}
	return bookings, nil
}

// FindByID retrieves a booking by its identifier.
func (r *MongoBookingRepository) FindByID(ctx context.Context, id int64) (*bookingDomain.Booking, error) {
	var doc bookingDocument
	err := r.coll.FindOne(ctx, bson.D{{Key: "id", Value: id}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NewNotFoundError("Booking", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("failed to find booking by id: %w", err)
	}
	return toDomainFromDocument(&doc), nil
}

// FindByIDAndPhone retrieves a booking only when both id and phone match.
func (r *MongoBookingRepository) FindByIDAndPhone(ctx context.Context, id int64, phone string) (*bookingDomain.Booking, error) {
	var doc bookingDocument
	err := r.coll.FindOne(ctx, bson.D{
		{Key: "id", Value: id},
		{Key: "phone", Value: phone},
	}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NewNotFoundError("Booking", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("failed to find booking by id and phone: %w", err)
	}
	return toDomainFromDocument(&doc), nil
}

// UpdateStatus sets the booking's status and refreshes updated_at, reporting
// whether a document was modified.
func (r *MongoBookingRepository) UpdateStatus(ctx context.Context, id int64, status bookingDomain.Status) (bool, error) {
	result, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "status", Value: status.String()},
			{Key: "updated_at", Value: time.Now().UTC()},
		}}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to update booking status: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

// MaxID returns the highest stored booking id, or 0 when the collection is
// empty.
func (r *MongoBookingRepository) MaxID(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "max_id", Value: bson.D{{Key: "$max", Value: "$id"}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate max booking id: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		MaxID int64 `bson:"max_id"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode max booking id: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].MaxID, nil
}

// Ping probes the MongoDB deployment.
func (r *MongoBookingRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

// --- Conversion Helpers ---

func toBookingDocument(b *bookingDomain.Booking) *bookingDocument {
	return &bookingDocument{
		ID:        b.ID(),
		Name:      b.Name(),
		Phone:     b.Phone(),
		Pickup:    b.Pickup(),
		Drop:      b.Drop(),
		Datetime:  b.Datetime(),
		Seats:     b.Seats(),
		Status:    b.Status().String(),
		CreatedAt: b.CreatedAt(),
		UpdatedAt: b.UpdatedAt(),
	}
}

func toDomainFromDocument(d *bookingDocument) *bookingDomain.Booking {
	return bookingDomain.Reconstruct(
		d.ID,
		d.Name,
		d.Phone,
		d.Pickup,
		d.Drop,
		d.Datetime,
		d.Seats,
		bookingDomain.Status(d.Status),
		d.CreatedAt,
		d.UpdatedAt,
	)
}
