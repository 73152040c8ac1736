package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"

	"offerbook/internal/app/uow"
	domainbooking "offerbook/internal/domain/booking"
	domainlocations "offerbook/internal/domain/locations"
	domainoffers "offerbook/internal/domain/offers"
	domainplanning "offerbook/internal/domain/planning"
	domainreviews "offerbook/internal/domain/reviews"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	OffersRepo       domainoffers.Repository
	LocationsRepo    domainlocations.Repository
	ReservationsRepo domainbooking.Repository
	PlanningRepo     domainplanning.Repository
	ReviewsRepo      domainreviews.Repository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// NewFactory builds the repositories over db and ensures their indexes.
func NewFactory(ctx context.Context, db *mongo.Database) (Factory, error) {
	offers := NewOfferRepository(db)
	locations := NewLocationRepository(db)
	reservations := NewReservationRepository(db)
	planning := NewPlanningRepository(db)
	reviews := NewReviewRepository(db)
	for _, ensure := range []func(context.Context) error{
		offers.EnsureIndexes, locations.EnsureIndexes, reservations.EnsureIndexes, planning.EnsureIndexes, reviews.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return Factory{}, err
		}
	}
	return Factory{
		DB:               db,
		OffersRepo:       offers,
		LocationsRepo:    locations,
		ReservationsRepo: reservations,
		PlanningRepo:     planning,
		ReviewsRepo:      reviews,
	}, nil
}

// Begin starts a MongoDB session/transaction. Read-only units read from a snapshot.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if opts.ReadOnly {
		txnOpts = txnOpts.SetReadConcern(readconcern.Snapshot())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{session: session, factory: f}, nil
}

type Unit struct {
	session mongo.Session
	factory Factory
}

func (u *Unit) Offers() domainoffers.Repository        { return u.factory.OffersRepo }
func (u *Unit) Locations() domainlocations.Repository  { return u.factory.LocationsRepo }
func (u *Unit) Reservations() domainbooking.Repository { return u.factory.ReservationsRepo }
func (u *Unit) Planning() domainplanning.Repository    { return u.factory.PlanningRepo }
func (u *Unit) Reviews() domainreviews.Repository      { return u.factory.ReviewsRepo }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var (
	_ uow.UoWFactory      = Factory{}
	_ uow.ContextInjector = (*Unit)(nil)
)
