// Package wiring registers every command and query handler and wraps the
// buses with the middleware chain. Storage, locking and metrics are injected
// so the same wiring serves the binary and the tests.
package wiring

import (
	"log/slog"
	"time"

	"offerbook/internal/app/commands"
	availabilityapp "offerbook/internal/app/handlers/availability"
	catalogapp "offerbook/internal/app/handlers/catalog"
	offersapp "offerbook/internal/app/handlers/offers"
	placesapp "offerbook/internal/app/handlers/places"
	planningapp "offerbook/internal/app/handlers/planning"
	reservationsapp "offerbook/internal/app/handlers/reservations"
	"offerbook/internal/app/middleware"
	"offerbook/internal/app/outbox"
	"offerbook/internal/app/queries"
	"offerbook/internal/app/uow"
	"offerbook/internal/app/validation"
	domainavailability "offerbook/internal/domain/availability"
	"offerbook/internal/domain/ranking"
)

type Deps struct {
	UoW            uow.UoWFactory
	Outbox         outbox.Outbox
	Idempotency    middleware.IdempotencyStore
	IdempotencyTTL time.Duration
	Locker         middleware.Locker
	Logger         *slog.Logger
	Checks         domainavailability.Observer
	Ranking        ranking.DurationObserver
	Clock          func() time.Time
	Source         string
}

type Buses struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func Build(d Deps) Buses {
	encoder := outbox.JSONEventEncoder{Source: d.Source}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, reservationsapp.CreateKey, &reservationsapp.CreateHandler{
		Outbox: d.Outbox, Encoder: encoder, Observer: d.Checks, Clock: d.Clock,
	})
	commands.RegisterHandler(commandBus, reservationsapp.UpdateKey, &reservationsapp.UpdateHandler{
		Outbox: d.Outbox, Encoder: encoder, Observer: d.Checks, Clock: d.Clock,
	})
	commands.RegisterHandler(commandBus, reservationsapp.DeleteKey, &reservationsapp.DeleteHandler{
		Outbox: d.Outbox, Encoder: encoder, Clock: d.Clock,
	})
	commands.RegisterHandler(commandBus, planningapp.AddKey, &planningapp.AddHandler{
		Outbox: d.Outbox, Encoder: encoder, Observer: d.Checks, Clock: d.Clock,
	})
	commands.RegisterHandler(commandBus, planningapp.UpdateKey, &planningapp.UpdateHandler{
		Outbox: d.Outbox, Encoder: encoder, Observer: d.Checks, Clock: d.Clock,
	})
	commands.RegisterHandler(commandBus, planningapp.RemoveKey, &planningapp.RemoveHandler{
		Outbox: d.Outbox, Encoder: encoder, Clock: d.Clock,
	})
	commands.RegisterHandler(commandBus, catalogapp.SyncOfferKey, &catalogapp.SyncOfferHandler{Clock: d.Clock})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, availabilityapp.CheckKey, &availabilityapp.CheckHandler{
		UoWFactory: d.UoW, Observer: d.Checks, Clock: d.Clock,
	})
	queries.RegisterHandler(queryBus, reservationsapp.ListKey, &reservationsapp.ListHandler{UoWFactory: d.UoW})
	queries.RegisterHandler(queryBus, reservationsapp.GetKey, &reservationsapp.GetHandler{UoWFactory: d.UoW})
	queries.RegisterHandler(queryBus, planningapp.ListKey, &planningapp.ListHandler{UoWFactory: d.UoW})
	queries.RegisterHandler(queryBus, offersapp.SearchKey, &offersapp.SearchHandler{UoWFactory: d.UoW, Observer: d.Ranking})
	queries.RegisterHandler(queryBus, placesapp.SearchKey, &placesapp.SearchHandler{UoWFactory: d.UoW})

	validator := validation.New()
	var idempotency middleware.CommandMiddleware
	if d.Idempotency != nil {
		idempotency = middleware.Idempotency(d.Idempotency, nil, d.IdempotencyTTL)
	}

	return Buses{
		Commands: middleware.ChainCommands(commandBus,
			middleware.Logging(d.Logger),
			middleware.Validation(validator),
			idempotency,
			middleware.Serialize(d.Locker, availabilityapp.LockKeys(d.UoW)),
			middleware.Transaction(d.UoW, nil),
			middleware.OutboxFlush(d.Outbox),
		),
		Queries: middleware.ChainQueries(queryBus,
			middleware.QueryLogging(d.Logger),
			middleware.QueryValidation(validator),
		),
	}
}
