package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"offerbook/internal/app/uow"
	"offerbook/internal/domain/geo"
	"offerbook/internal/domain/shared/daterange"
)

var ErrConcurrentUpdate = fmt.Errorf("mongo: %w", uow.ErrConcurrentUpdate)

type rangeDocument struct {
	Start int64 `bson:"start"`
	End   int64 `bson:"end"`
}

func newRangeDocument(r daterange.DateRange) rangeDocument {
	return rangeDocument{Start: r.Start.UnixMilli(), End: r.End.UnixMilli()}
}

func (d rangeDocument) toRange() daterange.DateRange {
	return daterange.DateRange{Start: timestampToTime(d.Start), End: timestampToTime(d.End)}
}

type coordinateDocument struct {
	Lat float64 `bson:"lat"`
	Lon float64 `bson:"lon"`
}

func newCoordinateDocument(c *geo.Coordinate) *coordinateDocument {
	if c == nil {
		return nil
	}
	return &coordinateDocument{Lat: c.Lat, Lon: c.Lon}
}

func (d *coordinateDocument) toCoordinate() *geo.Coordinate {
	if d == nil {
		return nil
	}
	return &geo.Coordinate{Lat: d.Lat, Lon: d.Lon}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// findOne decodes a single document, translating ErrNoDocuments to notFound.
func findOne(ctx context.Context, col *mongo.Collection, filter bson.M, out any, notFound error) error {
	err := col.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound
	}
	return err
}

// deleteOne removes by id and reports notFound when nothing matched.
func deleteOne(ctx context.Context, col *mongo.Collection, id string, notFound error) error {
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notFound
	}
	return nil
}

func stringsOf[T ~string](ids []T) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
