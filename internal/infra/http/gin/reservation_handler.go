package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"offerbook/internal/app/commands"
	"offerbook/internal/app/dto"
	reservationsapp "offerbook/internal/app/handlers/reservations"
	"offerbook/internal/app/queries"
)

type ReservationHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createReservationRequest struct {
	OfferID    string `json:"offerId"`
	OccupantID string `json:"occupantId"`
	StartDate  *date  `json:"startDate"`
	EndDate    *date  `json:"endDate"`
	Adults     int    `json:"adults"`
	Children   int    `json:"children"`
	Status     string `json:"status"`
}

type updateReservationRequest struct {
	StartDate    *date   `json:"startDate"`
	EndDate      *date   `json:"endDate"`
	Adults       *int    `json:"adults"`
	Children     *int    `json:"children"`
	Status       *string `json:"status"`
	CancelReason *string `json:"cancelReason"`
}

func (h ReservationHandler) Create(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := reservationsapp.CreateCommand{
		CommandID:       uuid.NewString(),
		OfferID:         strings.TrimSpace(req.OfferID),
		OccupantID:      strings.TrimSpace(req.OccupantID),
		StartDate:       req.StartDate.value(),
		EndDate:         req.EndDate.value(),
		Adults:          req.Adults,
		Children:        req.Children,
		Status:          strings.ToUpper(strings.TrimSpace(req.Status)),
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[reservationsapp.CreateCommand, *dto.Reservation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ReservationHandler) List(c *gin.Context) {
	hide, _ := strconv.ParseBool(c.Query("hide_cancelled"))
	q := reservationsapp.ListQuery{
		OfferID:       strings.TrimSpace(c.Query("offer_id")),
		OccupantID:    strings.TrimSpace(c.Query("occupant_id")),
		HostID:        strings.TrimSpace(c.Query("host_id")),
		HideCancelled: hide,
	}
	result, err := queries.Ask[reservationsapp.ListQuery, dto.ReservationCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReservationHandler) Get(c *gin.Context) {
	q := reservationsapp.GetQuery{ID: strings.TrimSpace(c.Param("id"))}
	result, err := queries.Ask[reservationsapp.GetQuery, *dto.Reservation](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReservationHandler) Update(c *gin.Context) {
	var req updateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := reservationsapp.UpdateCommand{
		ID:           strings.TrimSpace(c.Param("id")),
		StartDate:    req.StartDate.ptr(),
		EndDate:      req.EndDate.ptr(),
		Adults:       req.Adults,
		Children:     req.Children,
		Status:       upper(req.Status),
		CancelReason: upper(req.CancelReason),
	}
	result, err := commands.Dispatch[reservationsapp.UpdateCommand, *dto.Reservation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReservationHandler) Delete(c *gin.Context) {
	cmd := reservationsapp.DeleteCommand{ID: strings.TrimSpace(c.Param("id"))}
	result, err := commands.Dispatch[reservationsapp.DeleteCommand, *reservationsapp.DeleteResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func upper(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.ToUpper(strings.TrimSpace(*s))
	return &v
}

var _ ReservationHTTP = ReservationHandler{}
