package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainoffers "offerbook/internal/domain/offers"
)

type OfferRepository struct {
	col *mongo.Collection
}

func NewOfferRepository(db *mongo.Database) *OfferRepository {
	return &OfferRepository{col: db.Collection("ref_offers")}
}

func (r *OfferRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "host_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
	})
	return err
}

func (r *OfferRepository) ByID(ctx context.Context, id domainoffers.OfferID) (*domainoffers.Offer, error) {
	var doc offerDocument
	if err := findOne(ctx, r.col, bson.M{"_id": string(id)}, &doc, domainoffers.ErrOfferNotFound); err != nil {
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *OfferRepository) IDsByHost(ctx context.Context, host domainoffers.HostID) ([]domainoffers.OfferID, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).SetProjection(bson.M{"_id": 1})
	cur, err := r.col.Find(ctx, bson.M{"host_id": string(host)}, opts)
	if err != nil {
		return nil, err
	}
	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]domainoffers.OfferID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, domainoffers.OfferID(d.ID))
	}
	return ids, nil
}

func (r *OfferRepository) HostExists(ctx context.Context, host domainoffers.HostID) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"host_id": string(host)}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *OfferRepository) Search(ctx context.Context, params domainoffers.SearchParams) ([]*domainoffers.Offer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, offerFilter(params), opts)
	if err != nil {
		return nil, err
	}
	var docs []offerDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainoffers.Offer, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, nil
}

func (r *OfferRepository) Save(ctx context.Context, offer *domainoffers.Offer) error {
	doc := newOfferDocument(offer)
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

func offerFilter(params domainoffers.SearchParams) bson.M {
	params = params.Normalized()
	filter := bson.M{"status": string(params.Status)}
	if params.Host != "" {
		filter["host_id"] = string(params.Host)
	}
	return filter
}

type offerDocument struct {
	ID          string              `bson:"_id"`
	HostID      string              `bson:"host_id"`
	CityID      string              `bson:"city_id"`
	Title       string              `bson:"title"`
	Coordinates *coordinateDocument `bson:"coordinates,omitempty"`
	Status      string              `bson:"status"`
	CreatedAt   int64               `bson:"created_at"`
	UpdatedAt   int64               `bson:"updated_at"`
}

func newOfferDocument(o *domainoffers.Offer) offerDocument {
	return offerDocument{
		ID:          string(o.ID),
		HostID:      string(o.Host),
		CityID:      string(o.City),
		Title:       o.Title,
		Coordinates: newCoordinateDocument(o.Coordinates),
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt.UnixMilli(),
		UpdatedAt:   o.UpdatedAt.UnixMilli(),
	}
}

func (d offerDocument) toAggregate() *domainoffers.Offer {
	return &domainoffers.Offer{
		ID:          domainoffers.OfferID(d.ID),
		Host:        domainoffers.HostID(d.HostID),
		City:        domainoffers.CityID(d.CityID),
		Title:       d.Title,
		Coordinates: d.Coordinates.toCoordinate(),
		Status:      domainoffers.Status(d.Status),
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
	}
}
