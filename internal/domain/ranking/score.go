package ranking

import (
	"math"

	"offerbook/internal/domain/offers"
)

// Scoring constants are fixed; ranking stays comparable with existing data.
var distanceBands = [...]float64{5, 10, 30, 50, 100, 250}

const (
	maxScoredDistanceKm = 1000.0
	firstBandBase       = 4.0
	cityMatchBonus      = 1.0
)

// Candidate is an offer with the signals ranking needs. Distance is nil when
// no origin was resolved or the offer has no coordinates.
type Candidate struct {
	Offer         *offers.Offer
	Distance      *float64
	AverageRating *float64
	ReviewCount   int
	SortScore     float64
}

// Score fills SortScore for every candidate in place. City and distance terms
// only apply when useDistance is set.
func Score(cands []Candidate, useDistance bool, matchCity *offers.CityID) {
	for i := range cands {
		c := &cands[i]
		c.SortScore = 0
		if useDistance {
			if matchCity != nil && c.Offer != nil && c.Offer.City == *matchCity {
				c.SortScore += cityMatchBonus
			}
			if c.Distance != nil {
				c.SortScore += DistanceScore(*c.Distance)
			}
		}
		if c.AverageRating != nil {
			c.SortScore += RatingScore(*c.AverageRating)
		}
		c.SortScore += ReviewVolumeScore(c.ReviewCount)
	}
}

// DistanceScore walks the distance bands. Each band carries a base score
// (4, 3, 2, 1, then halving) plus a share of up to 1 that shrinks linearly
// across the band. Between the last band and 1000 km only the shrinking share
// is left; from 1000 km on the score is 0.
func DistanceScore(d float64) float64 {
	base := firstBandBase
	for level, limit := range distanceBands {
		if d < limit {
			if level == 0 {
				return base + 1 - d/limit
			}
			prev := distanceBands[level-1]
			coeff := math.Min(base, 1)
			return base + coeff - ((d-prev)/(limit-prev))*coeff
		}
		if base > 1 {
			base--
		} else {
			base /= 2
		}
	}
	last := distanceBands[len(distanceBands)-1]
	if d >= last && d < maxScoredDistanceKm {
		coeff := math.Min(base, 1)
		return coeff - ((d-last)/(maxScoredDistanceKm-last))*coeff
	}
	return 0
}

// RatingScore maps an average in [0,5] onto [0,2], rounded up to the next 0.2.
// ceil(avg*2)/5 equals ceil((avg/5)*10)/5 without the intermediate division.
func RatingScore(avg float64) float64 {
	return math.Ceil(avg*2) / 5
}

func ReviewVolumeScore(count int) float64 {
	switch {
	case count < 5:
		return 0
	case count < 10:
		return 0.25
	case count < 25:
		return 0.6
	case count < 50:
		return 1
	case count < 100:
		return 1.4
	case count < 500:
		return 1.75
	default:
		return 2
	}
}
