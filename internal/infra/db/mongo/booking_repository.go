package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hotelbooking/internal/app/uow"
	domainbooking "hotelbooking/internal/domain/booking"
	"hotelbooking/internal/domain/pricing"
	domainroom "hotelbooking/internal/domain/room"
	domainrange "hotelbooking/internal/domain/shared/daterange"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(bookingsCollection)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save upserts guarded by version; a stale version surfaces as uow.ErrConcurrentUpdate.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return writeError(err)
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return uow.ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *BookingRepository) ListByRoom(ctx context.Context, roomID domainroom.ID) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"room_id": string(roomID)})
}

// Overlapping matches check_in < qe AND check_out > qs for non-cancelled bookings.
func (r *BookingRepository) Overlapping(ctx context.Context, roomID domainroom.ID, dr domainrange.DateRange) ([]*domainbooking.Booking, error) {
	filter := bson.M{
		"room_id":         string(roomID),
		"status":          bson.M{"$ne": string(domainbooking.StatusCancelled)},
		"range.check_in":  bson.M{"$lt": dr.CheckOut.UnixMilli()},
		"range.check_out": bson.M{"$gt": dr.CheckIn.UnixMilli()},
	}
	return r.find(ctx, filter)
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainbooking.Booking, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toAggregate())
	}
	return out, nil
}

type bookingDocument struct {
	ID          string            `bson:"_id"`
	UserID      string            `bson:"user_id"`
	RoomID      string            `bson:"room_id"`
	Range       rangeDocument     `bson:"range"`
	Guests      int               `bson:"guests"`
	Children    int               `bson:"children"`
	NoOfRooms   int               `bson:"no_of_rooms"`
	Price       pricing.Breakdown `bson:"price"`
	Status      string            `bson:"status"`
	CreatedAt   int64             `bson:"created_at"`
	UpdatedAt   int64             `bson:"updated_at"`
	CancelledAt *int64            `bson:"cancelled_at,omitempty"`
	Version     int64             `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	doc := bookingDocument{
		ID:        string(b.ID),
		UserID:    b.UserID,
		RoomID:    string(b.RoomID),
		Range:     rangeDocument{CheckIn: b.Range.CheckIn.UnixMilli(), CheckOut: b.Range.CheckOut.UnixMilli()},
		Guests:    b.Guests,
		Children:  b.Children,
		NoOfRooms: b.NoOfRooms,
		Price:     b.Price,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt.UnixMilli(),
		UpdatedAt: b.UpdatedAt.UnixMilli(),
		Version:   b.Version,
	}
	if b.CancelledAt != nil {
		ms := b.CancelledAt.UnixMilli()
		doc.CancelledAt = &ms
	}
	return doc
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	agg := &domainbooking.Booking{
		ID:        domainbooking.ID(d.ID),
		UserID:    d.UserID,
		RoomID:    domainroom.ID(d.RoomID),
		Range:     domainrange.DateRange{CheckIn: timestampToTime(d.Range.CheckIn), CheckOut: timestampToTime(d.Range.CheckOut)},
		Guests:    d.Guests,
		Children:  d.Children,
		NoOfRooms: d.NoOfRooms,
		Price:     d.Price,
		Status:    domainbooking.Status(d.Status),
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}
	if d.CancelledAt != nil {
		at := timestampToTime(*d.CancelledAt)
		agg.CancelledAt = &at
	}
	return agg
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
