package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"offerbook/internal/app/uow"
	domainbooking "offerbook/internal/domain/booking"
	domainlocations "offerbook/internal/domain/locations"
	domainoffers "offerbook/internal/domain/offers"
	domainplanning "offerbook/internal/domain/planning"
	domainreviews "offerbook/internal/domain/reviews"
)

var (
	ErrUnitOfWorkNotConfigured = errors.New("postgres: unit of work factory missing pool")
	ErrConcurrentUpdate        = fmt.Errorf("postgres: %w", uow.ErrConcurrentUpdate)
)

const serializationFailure = "40001"

// Factory opens SERIALIZABLE transactions on the pool.
type Factory struct {
	Pool *pgxpool.Pool

	OffersRepo       domainoffers.Repository
	LocationsRepo    domainlocations.Repository
	ReservationsRepo domainbooking.Repository
	PlanningRepo     domainplanning.Repository
	ReviewsRepo      domainreviews.Repository
}

func NewFactory(pool *pgxpool.Pool) Factory {
	return Factory{
		Pool:             pool,
		OffersRepo:       NewOfferRepository(pool),
		LocationsRepo:    NewLocationRepository(pool),
		ReservationsRepo: NewReservationRepository(pool),
		PlanningRepo:     NewPlanningRepository(pool),
		ReviewsRepo:      NewReviewRepository(pool),
	}
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Pool == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable, AccessMode: pgx.ReadWrite}
	if opts.ReadOnly {
		txOpts.AccessMode = pgx.ReadOnly
	}
	tx, err := f.Pool.BeginTx(ctx, txOpts)
	if err != nil {
		return nil, err
	}
	return &Unit{tx: tx, factory: f}, nil
}

type Unit struct {
	tx      pgx.Tx
	factory Factory
}

func (u *Unit) Offers() domainoffers.Repository        { return u.factory.OffersRepo }
func (u *Unit) Locations() domainlocations.Repository  { return u.factory.LocationsRepo }
func (u *Unit) Reservations() domainbooking.Repository { return u.factory.ReservationsRepo }
func (u *Unit) Planning() domainplanning.Repository    { return u.factory.PlanningRepo }
func (u *Unit) Reviews() domainreviews.Repository      { return u.factory.ReviewsRepo }

func (u *Unit) Commit(ctx context.Context) error {
	return translate(u.tx.Commit(ctx))
}

func (u *Unit) Rollback(ctx context.Context) error {
	err := u.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return WithTx(ctx, u.tx)
}

// translate reports serialization failures as ErrConcurrentUpdate.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == serializationFailure {
		return errors.Join(ErrConcurrentUpdate, err)
	}
	return err
}

var (
	_ uow.UoWFactory      = Factory{}
	_ uow.ContextInjector = (*Unit)(nil)
)
