package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "offerbook/internal/domain/booking"
	domainoffers "offerbook/internal/domain/offers"
	domainreviews "offerbook/internal/domain/reviews"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection("ref_reviews")}
}

func (r *ReviewRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "offer_id", Value: 1}}})
	return err
}

func (r *ReviewRepository) ListByOffers(ctx context.Context, ids []domainoffers.OfferID) ([]*domainreviews.Review, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"offer_id": bson.M{"$in": stringsOf(ids)}})
	if err != nil {
		return nil, err
	}
	var docs []reviewDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainreviews.Review, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domainreviews.Review{
			ID:          domainreviews.ReviewID(d.ID),
			Reservation: domainbooking.ReservationID(d.ReservationID),
			Offer:       domainoffers.OfferID(d.OfferID),
			Author:      d.Author,
			Rating:      d.Rating,
			Text:        d.Text,
			CreatedAt:   timestampToTime(d.CreatedAt),
		})
	}
	return out, nil
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	if err := review.Validate(); err != nil {
		return err
	}
	doc := reviewDocument{
		ID:            string(review.ID),
		ReservationID: string(review.Reservation),
		OfferID:       string(review.Offer),
		Author:        review.Author,
		Rating:        review.Rating,
		Text:          review.Text,
		CreatedAt:     review.CreatedAt.UnixMilli(),
	}
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

type reviewDocument struct {
	ID            string `bson:"_id"`
	ReservationID string `bson:"reservation_id"`
	OfferID       string `bson:"offer_id"`
	Author        string `bson:"author"`
	Rating        int    `bson:"rating"`
	Text          string `bson:"text"`
	CreatedAt     int64  `bson:"created_at"`
}
