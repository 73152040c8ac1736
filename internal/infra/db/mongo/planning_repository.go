package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainoffers "offerbook/internal/domain/offers"
	domainplanning "offerbook/internal/domain/planning"
)

const (
	scopeKindOffer = "offer"
	scopeKindHost  = "host"
)

type PlanningRepository struct {
	col *mongo.Collection
}

func NewPlanningRepository(db *mongo.Database) *PlanningRepository {
	return &PlanningRepository{col: db.Collection("agg_planning")}
}

func (r *PlanningRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "scope.kind", Value: 1}, {Key: "scope.offer_id", Value: 1}}},
		{Keys: bson.D{{Key: "scope.kind", Value: 1}, {Key: "scope.host_id", Value: 1}}},
	})
	return err
}

func (r *PlanningRepository) ByID(ctx context.Context, id domainplanning.EntryID) (*domainplanning.Entry, error) {
	var doc entryDocument
	if err := findOne(ctx, r.col, bson.M{"_id": string(id)}, &doc, domainplanning.ErrEntryNotFound); err != nil {
		return nil, err
	}
	return doc.toAggregate()
}

func (r *PlanningRepository) Find(ctx context.Context, filter domainplanning.Filter) ([]*domainplanning.Entry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "range.start", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, entryFilter(filter), opts)
	if err != nil {
		return nil, err
	}
	var docs []entryDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainplanning.Entry, 0, len(docs))
	for _, d := range docs {
		e, err := d.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *PlanningRepository) Save(ctx context.Context, entry *domainplanning.Entry) error {
	doc, err := newEntryDocument(entry)
	if err != nil {
		return err
	}
	_, err = r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

func (r *PlanningRepository) Delete(ctx context.Context, id domainplanning.EntryID) error {
	return deleteOne(ctx, r.col, string(id), domainplanning.ErrEntryNotFound)
}

func entryFilter(f domainplanning.Filter) bson.M {
	filter := bson.M{}
	if f.ExcludeID != "" {
		filter["_id"] = bson.M{"$ne": string(f.ExcludeID)}
	}
	var or bson.A
	if len(f.OfferIDs) > 0 {
		or = append(or, bson.M{"scope.kind": scopeKindOffer, "scope.offer_id": bson.M{"$in": stringsOf(f.OfferIDs)}})
	}
	if f.HostID != "" {
		or = append(or, bson.M{"scope.kind": scopeKindHost, "scope.host_id": string(f.HostID)})
	}
	if len(or) > 0 {
		filter["$or"] = or
	}
	return filter
}

type scopeDocument struct {
	Kind    string `bson:"kind"`
	OfferID string `bson:"offer_id,omitempty"`
	HostID  string `bson:"host_id,omitempty"`
}

type entryDocument struct {
	ID          string        `bson:"_id"`
	Scope       scopeDocument `bson:"scope"`
	Name        string        `bson:"name"`
	Description string        `bson:"description"`
	Range       rangeDocument `bson:"range"`
	CreatedAt   int64         `bson:"created_at"`
	UpdatedAt   int64         `bson:"updated_at"`
}

func newEntryDocument(e *domainplanning.Entry) (entryDocument, error) {
	var scope scopeDocument
	switch s := e.Scope.(type) {
	case domainplanning.OfferScope:
		scope = scopeDocument{Kind: scopeKindOffer, OfferID: string(s.Offer)}
	case domainplanning.HostScope:
		scope = scopeDocument{Kind: scopeKindHost, HostID: string(s.Host)}
	default:
		return entryDocument{}, domainplanning.ErrScopeRequired
	}
	return entryDocument{
		ID:          string(e.ID),
		Scope:       scope,
		Name:        e.Name,
		Description: e.Description,
		Range:       newRangeDocument(e.Range),
		CreatedAt:   e.CreatedAt.UnixMilli(),
		UpdatedAt:   e.UpdatedAt.UnixMilli(),
	}, nil
}

func (d entryDocument) toAggregate() (*domainplanning.Entry, error) {
	var scope domainplanning.Scope
	switch d.Scope.Kind {
	case scopeKindOffer:
		scope = domainplanning.OfferScope{Offer: domainoffers.OfferID(d.Scope.OfferID)}
	case scopeKindHost:
		scope = domainplanning.HostScope{Host: domainoffers.HostID(d.Scope.HostID)}
	default:
		return nil, fmt.Errorf("mongo: planning entry %s has unknown scope kind %q", d.ID, d.Scope.Kind)
	}
	return &domainplanning.Entry{
		ID:          domainplanning.EntryID(d.ID),
		Scope:       scope,
		Name:        d.Name,
		Description: d.Description,
		Range:       d.Range.toRange(),
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
	}, nil
}
