package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"offerbook/internal/app/commands"
	"offerbook/internal/app/dto"
	planningapp "offerbook/internal/app/handlers/planning"
	"offerbook/internal/app/queries"
)

type BlackoutHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createBlackoutRequest struct {
	OfferID     string `json:"offerId"`
	HostID      string `json:"hostId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   *date  `json:"startDate"`
	EndDate     *date  `json:"endDate"`
}

type updateBlackoutRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	StartDate   *date   `json:"startDate"`
	EndDate     *date   `json:"endDate"`
}

func (h BlackoutHandler) Create(c *gin.Context) {
	var req createBlackoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := planningapp.AddCommand{
		CommandID:   uuid.NewString(),
		OfferID:     req.OfferID,
		HostID:      req.HostID,
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate.value(),
		EndDate:     req.EndDate.value(),
	}
	result, err := commands.Dispatch[planningapp.AddCommand, *dto.Blackout](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BlackoutHandler) List(c *gin.Context) {
	q := planningapp.ListQuery{
		OfferID: strings.TrimSpace(c.Query("offer_id")),
		HostID:  strings.TrimSpace(c.Query("host_id")),
	}
	result, err := queries.Ask[planningapp.ListQuery, dto.BlackoutCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BlackoutHandler) Update(c *gin.Context) {
	var req updateBlackoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := planningapp.UpdateCommand{
		ID:          strings.TrimSpace(c.Param("id")),
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate.ptr(),
		EndDate:     req.EndDate.ptr(),
	}
	result, err := commands.Dispatch[planningapp.UpdateCommand, *dto.Blackout](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BlackoutHandler) Delete(c *gin.Context) {
	cmd := planningapp.RemoveCommand{ID: strings.TrimSpace(c.Param("id"))}
	result, err := commands.Dispatch[planningapp.RemoveCommand, *planningapp.RemoveResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BlackoutHTTP = BlackoutHandler{}
