// Package fixtures seeds reference data (cities, offers, past reservations,
// reviews) from a JSON file.
package fixtures

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"offerbook/internal/app/uow"
	domainavailability "offerbook/internal/domain/availability"
	domainbooking "offerbook/internal/domain/booking"
	"offerbook/internal/domain/geo"
	domainlocations "offerbook/internal/domain/locations"
	domainoffers "offerbook/internal/domain/offers"
	domainreviews "offerbook/internal/domain/reviews"
	"offerbook/internal/domain/shared/daterange"
)

type File struct {
	Cities       []City        `json:"cities"`
	Offers       []Offer       `json:"offers"`
	Reservations []Reservation `json:"reservations"`
	Reviews      []Review      `json:"reviews"`
}

type City struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Department string  `json:"department"`
	Population int     `json:"population"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
}

type Offer struct {
	ID     string   `json:"id"`
	Host   string   `json:"host"`
	City   string   `json:"city"`
	Title  string   `json:"title"`
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
	Status string   `json:"status"`
}

// Reservation is a booking the seeded reviews refer to. Status defaults to CONFIRMED.
type Reservation struct {
	ID       string `json:"id"`
	Offer    string `json:"offer"`
	Occupant string `json:"occupant"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Adults   int    `json:"adults"`
	Children int    `json:"children"`
	Status   string `json:"status"`
}

type Review struct {
	ID          string `json:"id"`
	Reservation string `json:"reservation"`
	Offer       string `json:"offer"`
	Author      string `json:"author"`
	Rating      int    `json:"rating"`
	Text        string `json:"text"`
	CreatedAt   string `json:"created_at"`
}

// Summary counts what was imported.
type Summary struct {
	Cities       int
	Offers       int
	Reservations int
	Reviews      int
}

// Load imports path in one unit of work. A missing or empty file is not an
// error; invalid entries are logged and skipped.
func Load(ctx context.Context, factory uow.UoWFactory, path string, logger *slog.Logger) (Summary, error) {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("fixtures file not found, skipping", "path", path)
			return Summary{}, nil
		}
		return Summary{}, fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("fixtures file empty", "path", path)
		return Summary{}, nil
	}
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return Summary{}, fmt.Errorf("decode fixtures: %w", err)
	}

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return Summary{}, err
	}
	execCtx := uow.Bind(ctx, unit)
	sum, err := importFile(execCtx, unit, file, logger)
	if err != nil {
		_ = unit.Rollback(ctx)
		return Summary{}, err
	}
	if err := unit.Commit(ctx); err != nil {
		return Summary{}, err
	}
	logger.Info("fixtures imported", "path", path, "cities", sum.Cities, "offers", sum.Offers, "reservations", sum.Reservations, "reviews", sum.Reviews)
	return sum, nil
}

func importFile(ctx context.Context, unit uow.UnitOfWork, file File, logger *slog.Logger) (Summary, error) {
	var sum Summary
	now := time.Now().UTC()
	for _, fx := range file.Cities {
		city := &domainlocations.City{
			ID:          domainoffers.CityID(fx.ID),
			Name:        fx.Name,
			Department:  fx.Department,
			Population:  fx.Population,
			Coordinates: geo.Coordinate{Lat: fx.Lat, Lon: fx.Lon},
		}
		if fx.ID == "" || !city.Coordinates.Valid() {
			logger.Error("fixture city invalid", "city_id", fx.ID)
			continue
		}
		if err := unit.Locations().Save(ctx, city); err != nil {
			return sum, fmt.Errorf("store city %s: %w", fx.ID, err)
		}
		sum.Cities++
	}
	for _, fx := range file.Offers {
		var coords *geo.Coordinate
		if fx.Lat != nil && fx.Lon != nil {
			coords = &geo.Coordinate{Lat: *fx.Lat, Lon: *fx.Lon}
		}
		status := domainoffers.StatusAvailable
		if strings.TrimSpace(fx.Status) != "" {
			parsed, err := domainoffers.ParseStatus(fx.Status)
			if err != nil {
				logger.Error("fixture offer invalid", "offer_id", fx.ID, "error", err)
				continue
			}
			status = parsed
		}
		offer, err := domainoffers.NewOffer(domainoffers.CreateParams{
			ID:          domainoffers.OfferID(fx.ID),
			Host:        domainoffers.HostID(fx.Host),
			City:        domainoffers.CityID(fx.City),
			Title:       fx.Title,
			Coordinates: coords,
			Status:      status,
			Now:         now,
		})
		if err != nil {
			logger.Error("fixture offer invalid", "offer_id", fx.ID, "error", err)
			continue
		}
		if err := unit.Offers().Save(ctx, offer); err != nil {
			return sum, fmt.Errorf("store offer %s: %w", fx.ID, err)
		}
		sum.Offers++
	}
	for _, fx := range file.Reservations {
		stored, err := importReservation(ctx, unit, fx, now)
		if err != nil {
			return sum, err
		}
		if stored {
			sum.Reservations++
			continue
		}
		logger.Error("fixture reservation invalid", "reservation_id", fx.ID, "offer_id", fx.Offer)
	}
	for _, fx := range file.Reviews {
		review := &domainreviews.Review{
			ID:          domainreviews.ReviewID(fx.ID),
			Reservation: domainbooking.ReservationID(fx.Reservation),
			Offer:       domainoffers.OfferID(fx.Offer),
			Author:      fx.Author,
			Rating:      fx.Rating,
			Text:        fx.Text,
			CreatedAt:   parseTime(fx.CreatedAt, now),
		}
		if err := review.Validate(); err != nil {
			logger.Error("fixture review invalid", "review_id", fx.ID, "error", err)
			continue
		}
		if err := unit.Reviews().Save(ctx, review); err != nil {
			return sum, fmt.Errorf("store review %s: %w", fx.ID, err)
		}
		sum.Reviews++
	}
	return sum, nil
}

// importReservation stores fx unless it is malformed or overlaps what is
// already on the offer's calendar. Only storage failures are returned.
func importReservation(ctx context.Context, unit uow.UnitOfWork, fx Reservation, now time.Time) (bool, error) {
	offer, err := unit.Offers().ByID(ctx, domainoffers.OfferID(fx.Offer))
	if errors.Is(err, domainoffers.ErrOfferNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	start, errStart := time.Parse(time.DateOnly, fx.Start)
	end, errEnd := time.Parse(time.DateOnly, fx.End)
	if fx.ID == "" || errStart != nil || errEnd != nil {
		return false, nil
	}
	status := domainbooking.StatusConfirmed
	if strings.TrimSpace(fx.Status) != "" {
		if status, err = domainbooking.ParseStatus(fx.Status); err != nil {
			return false, nil
		}
	}
	adults := fx.Adults
	if adults == 0 {
		adults = 1
	}
	r, err := domainbooking.NewReservation(domainbooking.CreateParams{
		ID:        domainbooking.ReservationID(fx.ID),
		Offer:     offer.ID,
		Occupant:  domainbooking.OccupantID(fx.Occupant),
		Range:     daterange.DateRange{Start: start.UTC(), End: end.UTC()},
		Adults:    adults,
		Children:  fx.Children,
		Status:    status,
		CreatedAt: now,
	})
	if err != nil {
		return false, nil
	}
	if status.BlocksCalendar() {
		checker := domainavailability.NewChecker(unit.Reservations(), unit.Planning(), unit.Offers(), nil)
		conflicts, err := checker.Check(ctx, nil, r.Range, domainavailability.OfferScope(offer))
		if err != nil {
			return false, err
		}
		if len(conflicts) > 0 {
			return false, nil
		}
	}
	if err := unit.Reservations().Save(ctx, r); err != nil {
		return false, fmt.Errorf("store reservation %s: %w", fx.ID, err)
	}
	return true, nil
}

func parseTime(value string, fallback time.Time) time.Time {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC()
	}
	return fallback
}

// DefaultPath returns the first existing candidate, or data/fixtures.json.
func DefaultPath() string {
	candidates := []string{
		filepath.Join("data", "fixtures.json"),
		filepath.Join("..", "..", "data", "fixtures.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}
