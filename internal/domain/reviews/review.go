package reviews

import (
	"context"
	"errors"
	"time"

	"offerbook/internal/domain/booking"
	"offerbook/internal/domain/offers"
)

var ErrInvalidRating = errors.New("reviews: rating must be between 0 and 5")

type ReviewID string

// Review is authored elsewhere; this service only reads it to rank offers.
type Review struct {
	ID          ReviewID
	Reservation booking.ReservationID
	Offer       offers.OfferID
	Author      string
	Rating      int
	Text        string
	CreatedAt   time.Time
}

func (r *Review) Validate() error {
	if r.Rating < 0 || r.Rating > 5 {
		return ErrInvalidRating
	}
	return nil
}

type Repository interface {
	ListByOffers(ctx context.Context, ids []offers.OfferID) ([]*Review, error)
	Save(ctx context.Context, review *Review) error
}

// Stats aggregates the reviews of one offer.
type Stats struct {
	Count   int
	Average *float64
}

// Summarize groups reviews by offer. Reviews whose reservation is not in
// active are ignored; a nil active set keeps every review.
func Summarize(list []*Review, active map[booking.ReservationID]struct{}) map[offers.OfferID]Stats {
	sums := make(map[offers.OfferID]int)
	out := make(map[offers.OfferID]Stats)
	for _, r := range list {
		if r == nil {
			continue
		}
		if active != nil {
			if _, ok := active[r.Reservation]; !ok {
				continue
			}
		}
		sums[r.Offer] += r.Rating
		st := out[r.Offer]
		st.Count++
		out[r.Offer] = st
	}
	for id, st := range out {
		avg := float64(sums[id]) / float64(st.Count)
		st.Average = &avg
		out[id] = st
	}
	return out
}
