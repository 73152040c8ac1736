package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "offerbook/internal/domain/booking"
	domainoffers "offerbook/internal/domain/offers"
)

type ReservationRepository struct {
	col *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	return &ReservationRepository{col: db.Collection("agg_reservations")}
}

func (r *ReservationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "offer_id", Value: 1}, {Key: "range.start", Value: 1}}},
		{Keys: bson.D{{Key: "occupant_id", Value: 1}}},
	})
	return err
}

func (r *ReservationRepository) ByID(ctx context.Context, id domainbooking.ReservationID) (*domainbooking.Reservation, error) {
	var doc reservationDocument
	if err := findOne(ctx, r.col, bson.M{"_id": string(id)}, &doc, domainbooking.ErrReservationNotFound); err != nil {
		return nil, err
	}
	return doc.toAggregate()
}

// Find returns matches ordered by start date.
func (r *ReservationRepository) Find(ctx context.Context, filter domainbooking.Filter) ([]*domainbooking.Reservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "range.start", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, reservationFilter(filter), opts)
	if err != nil {
		return nil, err
	}
	var docs []reservationDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainbooking.Reservation, 0, len(docs))
	for _, d := range docs {
		res, err := d.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// Save upserts guarded by version; a stale copy yields ErrConcurrentUpdate.
func (r *ReservationRepository) Save(ctx context.Context, res *domainbooking.Reservation) error {
	doc := newReservationDocument(res)
	filter := bson.M{"_id": doc.ID, "version": res.Version}
	doc.Version = res.Version + 1
	result, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if result.MatchedCount == 0 && result.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	res.Version = doc.Version
	return nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id domainbooking.ReservationID) error {
	return deleteOne(ctx, r.col, string(id), domainbooking.ErrReservationNotFound)
}

func reservationFilter(f domainbooking.Filter) bson.M {
	filter := bson.M{}
	if len(f.OfferIDs) > 0 {
		filter["offer_id"] = bson.M{"$in": stringsOf(f.OfferIDs)}
	}
	if f.Occupant != "" {
		filter["occupant_id"] = string(f.Occupant)
	}
	if f.ExcludeCancelled {
		filter["status"] = bson.M{"$ne": string(domainbooking.StatusCancelled)}
	}
	if f.ExcludeID != "" {
		filter["_id"] = bson.M{"$ne": string(f.ExcludeID)}
	}
	return filter
}

type reservationDocument struct {
	ID           string        `bson:"_id"`
	OfferID      string        `bson:"offer_id"`
	OccupantID   string        `bson:"occupant_id"`
	Range        rangeDocument `bson:"range"`
	Adults       int           `bson:"adults"`
	Children     int           `bson:"children"`
	Status       string        `bson:"status"`
	CancelReason string        `bson:"cancel_reason"`
	CreatedAt    int64         `bson:"created_at"`
	UpdatedAt    int64         `bson:"updated_at"`
	Version      int64         `bson:"version"`
}

func newReservationDocument(r *domainbooking.Reservation) reservationDocument {
	return reservationDocument{
		ID:           string(r.ID),
		OfferID:      string(r.Offer),
		OccupantID:   string(r.Occupant),
		Range:        newRangeDocument(r.Range),
		Adults:       r.Adults,
		Children:     r.Children,
		Status:       string(r.Status),
		CancelReason: string(r.CancelReason),
		CreatedAt:    r.CreatedAt.UnixMilli(),
		UpdatedAt:    r.UpdatedAt.UnixMilli(),
		Version:      r.Version,
	}
}

func (d reservationDocument) toAggregate() (*domainbooking.Reservation, error) {
	status, reason, err := domainbooking.ParseStored(d.Status, d.CancelReason)
	if err != nil {
		return nil, fmt.Errorf("mongo: reservation %s: %w", d.ID, err)
	}
	return &domainbooking.Reservation{
		ID:           domainbooking.ReservationID(d.ID),
		Offer:        domainoffers.OfferID(d.OfferID),
		Occupant:     domainbooking.OccupantID(d.OccupantID),
		Range:        d.Range.toRange(),
		Adults:       d.Adults,
		Children:     d.Children,
		Status:       status,
		CancelReason: reason,
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
		Version:      d.Version,
	}, nil
}
