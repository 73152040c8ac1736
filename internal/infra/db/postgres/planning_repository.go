package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	domainoffers "offerbook/internal/domain/offers"
	domainplanning "offerbook/internal/domain/planning"
)

const (
	entryColumns   = `id, scope_kind, offer_id, host_id, name, description, start_at, end_at, created_at, updated_at`
	scopeKindOffer = "offer"
	scopeKindHost  = "host"
)

type PlanningRepository struct {
	pool *pgxpool.Pool
}

func NewPlanningRepository(pool *pgxpool.Pool) *PlanningRepository {
	return &PlanningRepository{pool: pool}
}

func (r *PlanningRepository) ByID(ctx context.Context, id domainplanning.EntryID) (*domainplanning.Entry, error) {
	row := Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+entryColumns+` FROM planning_entries WHERE id = $1`, string(id))
	e, err := scanEntry(row)
	if err != nil {
		return nil, notFound(err, domainplanning.ErrEntryNotFound)
	}
	return e, nil
}

func (r *PlanningRepository) Find(ctx context.Context, filter domainplanning.Filter) ([]*domainplanning.Entry, error) {
	sql, args := entryQuery(filter)
	rows, err := Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domainplanning.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PlanningRepository) Save(ctx context.Context, e *domainplanning.Entry) error {
	var kind string
	var offer, host *string
	switch s := e.Scope.(type) {
	case domainplanning.OfferScope:
		id := string(s.Offer)
		kind, offer = scopeKindOffer, &id
	case domainplanning.HostScope:
		id := string(s.Host)
		kind, host = scopeKindHost, &id
	default:
		return domainplanning.ErrScopeRequired
	}
	_, err := Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO planning_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description,
			start_at = EXCLUDED.start_at, end_at = EXCLUDED.end_at, updated_at = EXCLUDED.updated_at`,
		string(e.ID), kind, offer, host, e.Name, e.Description,
		e.Range.Start.UTC(), e.Range.End.UTC(), e.CreatedAt.UTC(), e.UpdatedAt.UTC())
	return translate(err)
}

func (r *PlanningRepository) Delete(ctx context.Context, id domainplanning.EntryID) error {
	tag, err := Conn(ctx, r.pool).Exec(ctx, `DELETE FROM planning_entries WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainplanning.ErrEntryNotFound
	}
	return nil
}

func entryQuery(f domainplanning.Filter) (string, []any) {
	var w where
	if f.ExcludeID != "" {
		w.and("id <> " + w.arg(string(f.ExcludeID)))
	}
	switch {
	case len(f.OfferIDs) > 0 && f.HostID != "":
		offers := w.arg(stringsOf(f.OfferIDs))
		host := w.arg(string(f.HostID))
		w.and("((scope_kind = 'offer' AND offer_id = ANY(" + offers + ")) OR (scope_kind = 'host' AND host_id = " + host + "))")
	case len(f.OfferIDs) > 0:
		w.and("scope_kind = 'offer' AND offer_id = ANY(" + w.arg(stringsOf(f.OfferIDs)) + ")")
	case f.HostID != "":
		w.and("scope_kind = 'host' AND host_id = " + w.arg(string(f.HostID)))
	}
	return `SELECT ` + entryColumns + ` FROM planning_entries` + w.String() + ` ORDER BY start_at, id`, w.args
}

func scanEntry(row rowScanner) (*domainplanning.Entry, error) {
	var (
		e           domainplanning.Entry
		id, kind    string
		offer, host *string
	)
	err := row.Scan(&id, &kind, &offer, &host, &e.Name, &e.Description,
		&e.Range.Start, &e.Range.End, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.ID = domainplanning.EntryID(id)
	switch {
	case kind == scopeKindOffer && offer != nil:
		e.Scope = domainplanning.OfferScope{Offer: domainoffers.OfferID(*offer)}
	case kind == scopeKindHost && host != nil:
		e.Scope = domainplanning.HostScope{Host: domainoffers.HostID(*host)}
	default:
		return nil, fmt.Errorf("postgres: planning entry %s has invalid scope %q", id, kind)
	}
	e.Range.Start = e.Range.Start.UTC()
	e.Range.End = e.Range.End.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return &e, nil
}
