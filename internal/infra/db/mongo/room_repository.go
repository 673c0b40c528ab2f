package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hotelbooking/internal/app/uow"
	"hotelbooking/internal/domain/pricing"
	domainroom "hotelbooking/internal/domain/room"
)

type RoomRepository struct {
	col *mongo.Collection
}

func NewRoomRepository(db *mongo.Database) *RoomRepository {
	return &RoomRepository{col: db.Collection(roomsCollection)}
}

func (r *RoomRepository) ByID(ctx context.Context, id domainroom.ID) (*domainroom.Room, error) {
	var doc roomDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainroom.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save writes the whole document under the {_id, version} guard, so two
// units that read the same counters cannot both commit.
func (r *RoomRepository) Save(ctx context.Context, room *domainroom.Room) error {
	doc := newRoomDocument(room)
	filter := bson.M{"_id": doc.ID, "version": room.Version}
	doc.Version = room.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		return writeError(err)
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return uow.ErrConcurrentUpdate
	}
	room.Version = doc.Version
	return nil
}

func (r *RoomRepository) List(ctx context.Context, params domainroom.ListParams) ([]*domainroom.Room, error) {
	filter := bson.M{}
	if params.Name != "" {
		filter["name"] = string(params.Name)
	}
	if params.OnlyAvailable {
		filter["is_available"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if params.Limit > 0 {
		opts.SetLimit(int64(params.Limit))
	}
	if params.Offset > 0 {
		opts.SetSkip(int64(params.Offset))
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []roomDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainroom.Room, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toAggregate())
	}
	return out, nil
}

type ratingDocument struct {
	UserID    string `bson:"user_id"`
	Score     int    `bson:"score"`
	CreatedAt int64  `bson:"created_at"`
}

type roomDocument struct {
	ID              string           `bson:"_id"`
	Name            string           `bson:"name"`
	Description     string           `bson:"description"`
	Currency        string           `bson:"currency"`
	Price           float64          `bson:"price"`
	DiscountedPrice float64          `bson:"discounted_price"`
	WeekendPrice    float64          `bson:"weekend_price"`
	Taxes           pricing.TaxRates `bson:"taxes"`
	MaxOccupancy    int              `bson:"max_occupancy"`
	TotalSlots      int              `bson:"total_slots"`
	BookedSlots     int              `bson:"booked_slots"`
	AvailableSlots  int              `bson:"available_slots"`
	IsAvailable     bool             `bson:"is_available"`
	Ratings         []ratingDocument `bson:"ratings"`
	CreatedAt       int64            `bson:"created_at"`
	UpdatedAt       int64            `bson:"updated_at"`
	Version         int64            `bson:"version"`
}

func newRoomDocument(r *domainroom.Room) roomDocument {
	ratings := make([]ratingDocument, 0, len(r.Ratings))
	for _, rt := range r.Ratings {
		ratings = append(ratings, ratingDocument{UserID: rt.UserID, Score: rt.Score, CreatedAt: rt.CreatedAt.UnixMilli()})
	}
	return roomDocument{
		ID:              string(r.ID),
		Name:            string(r.Name),
		Description:     r.Description,
		Currency:        r.Currency,
		Price:           r.Price,
		DiscountedPrice: r.DiscountedPrice,
		WeekendPrice:    r.WeekendPrice,
		Taxes:           r.Taxes,
		MaxOccupancy:    r.MaxOccupancy,
		TotalSlots:      r.TotalSlots,
		BookedSlots:     r.BookedSlots,
		AvailableSlots:  r.AvailableSlots,
		IsAvailable:     r.IsAvailable,
		Ratings:         ratings,
		CreatedAt:       r.CreatedAt.UnixMilli(),
		UpdatedAt:       r.UpdatedAt.UnixMilli(),
		Version:         r.Version,
	}
}

func (d roomDocument) toAggregate() *domainroom.Room {
	room := &domainroom.Room{
		ID:              domainroom.ID(d.ID),
		Name:            domainroom.Category(d.Name),
		Description:     d.Description,
		Currency:        d.Currency,
		Price:           d.Price,
		DiscountedPrice: d.DiscountedPrice,
		WeekendPrice:    d.WeekendPrice,
		Taxes:           d.Taxes,
		MaxOccupancy:    d.MaxOccupancy,
		TotalSlots:      d.TotalSlots,
		BookedSlots:     d.BookedSlots,
		AvailableSlots:  d.AvailableSlots,
		IsAvailable:     d.IsAvailable,
		CreatedAt:       timestampToTime(d.CreatedAt),
		UpdatedAt:       timestampToTime(d.UpdatedAt),
		Version:         d.Version,
	}
	for _, rt := range d.Ratings {
		room.Ratings = append(room.Ratings, domainroom.Rating{UserID: rt.UserID, Score: rt.Score, CreatedAt: timestampToTime(rt.CreatedAt)})
	}
	return room
}

var _ domainroom.Repository = (*RoomRepository)(nil)
