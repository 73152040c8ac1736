package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"offerbook/internal/app/dto"
	availabilityapp "offerbook/internal/app/handlers/availability"
	offersapp "offerbook/internal/app/handlers/offers"
	placesapp "offerbook/internal/app/handlers/places"
	"offerbook/internal/app/queries"
)

type OfferHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h OfferHandler) Search(c *gin.Context) {
	lat, err := optionalFloat(c.Query("lat"))
	if err != nil {
		badRequest(c, errors.New("lat must be a number"))
		return
	}
	lon, err := optionalFloat(c.Query("lon"))
	if err != nil {
		badRequest(c, errors.New("lon must be a number"))
		return
	}
	q := offersapp.SearchQuery{
		Lat:    lat,
		Lon:    lon,
		CityID: strings.TrimSpace(c.Query("city_id")),
		HostID: strings.TrimSpace(c.Query("host_id")),
		Status: strings.TrimSpace(c.Query("status")),
	}
	result, err := queries.Ask[offersapp.SearchQuery, dto.RankedOfferCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h OfferHandler) Availability(c *gin.Context) {
	start, err := parseDate(c.Query("start"))
	if err != nil {
		badRequest(c, err)
		return
	}
	end, err := parseDate(c.Query("end"))
	if err != nil {
		badRequest(c, err)
		return
	}
	q := availabilityapp.CheckQuery{
		OfferID:              strings.TrimSpace(c.Param("id")),
		StartDate:            start,
		EndDate:              end,
		ExcludeReservationID: strings.TrimSpace(c.Query("exclude_reservation_id")),
	}
	result, err := queries.Ask[availabilityapp.CheckQuery, dto.Availability](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type PlaceHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h PlaceHandler) Search(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, errors.New("limit must be an integer"))
			return
		}
		limit = n
	}
	q := placesapp.SearchQuery{
		Name:  c.Query("name"),
		Order: strings.ToLower(strings.TrimSpace(c.Query("order"))),
		Limit: limit,
	}
	result, err := queries.Ask[placesapp.SearchQuery, dto.PlaceCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func optionalFloat(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

var (
	_ OfferHTTP = OfferHandler{}
	_ PlaceHTTP = PlaceHandler{}
)
