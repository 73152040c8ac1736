package mongo

import (
	"context"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"offerbook/internal/domain/geo"
	domainlocations "offerbook/internal/domain/locations"
	domainoffers "offerbook/internal/domain/offers"
)

type LocationRepository struct {
	col *mongo.Collection
}

func NewLocationRepository(db *mongo.Database) *LocationRepository {
	return &LocationRepository{col: db.Collection("ref_locations")}
}

func (r *LocationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name_lower", Value: 1}}},
		{Keys: bson.D{{Key: "population", Value: -1}}},
	})
	return err
}

func (r *LocationRepository) ByID(ctx context.Context, id domainoffers.CityID) (*domainlocations.City, error) {
	var doc locationDocument
	if err := findOne(ctx, r.col, bson.M{"_id": string(id)}, &doc, domainlocations.ErrLocationNotFound); err != nil {
		return nil, err
	}
	return doc.toCity(), nil
}

func (r *LocationRepository) SearchByName(ctx context.Context, prefix string, order domainlocations.Order, limit int) ([]*domainlocations.City, error) {
	opts := options.Find().SetSort(locationSort(order))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.col.Find(ctx, locationFilter(prefix), opts)
	if err != nil {
		return nil, err
	}
	var docs []locationDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainlocations.City, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toCity())
	}
	return out, nil
}

func (r *LocationRepository) Save(ctx context.Context, city *domainlocations.City) error {
	doc := locationDocument{
		ID:         string(city.ID),
		Name:       city.Name,
		NameLower:  strings.ToLower(city.Name),
		Department: city.Department,
		Population: city.Population,
		Lat:        city.Coordinates.Lat,
		Lon:        city.Coordinates.Lon,
	}
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

func locationFilter(prefix string) bson.M {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return bson.M{}
	}
	return bson.M{"name_lower": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix)}}
}

func locationSort(order domainlocations.Order) bson.D {
	if order == domainlocations.OrderByName {
		return bson.D{{Key: "name_lower", Value: 1}}
	}
	return bson.D{{Key: "population", Value: -1}, {Key: "name", Value: 1}}
}

type locationDocument struct {
	ID         string  `bson:"_id"`
	Name       string  `bson:"name"`
	NameLower  string  `bson:"name_lower"`
	Department string  `bson:"department"`
	Population int     `bson:"population"`
	Lat        float64 `bson:"lat"`
	Lon        float64 `bson:"lon"`
}

func (d locationDocument) toCity() *domainlocations.City {
	return &domainlocations.City{
		ID:          domainoffers.CityID(d.ID),
		Name:        d.Name,
		Department:  d.Department,
		Population:  d.Population,
		Coordinates: geo.Coordinate{Lat: d.Lat, Lon: d.Lon},
	}
}
