package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"offerbook/internal/app/uow"
	"offerbook/internal/app/validation"
	domainavailability "offerbook/internal/domain/availability"
	domainbooking "offerbook/internal/domain/booking"
	domainlocations "offerbook/internal/domain/locations"
	domainoffers "offerbook/internal/domain/offers"
	domainplanning "offerbook/internal/domain/planning"
	"offerbook/internal/domain/shared/daterange"
)

type errorResponse struct {
	Error  string       `json:"error"`
	Errors []fieldError `json:"errors,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// respondWithError maps application errors onto status codes. Conflicts and
// validation failures carry per-field errors.
func respondWithError(c *gin.Context, logger *slog.Logger, err error) {
	var (
		conflict *domainavailability.ConflictError
		invalid  *validation.Error
	)
	switch {
	case errors.As(err, &conflict):
		resp := errorResponse{Error: domainavailability.UnavailableMessage}
		for _, f := range conflict.FieldErrors() {
			resp.Errors = append(resp.Errors, fieldError{Field: f.Field, Message: f.Message})
		}
		c.JSON(http.StatusConflict, resp)
	case errors.As(err, &invalid):
		resp := errorResponse{Error: "invalid input"}
		for _, f := range invalid.Fields {
			resp.Errors = append(resp.Errors, fieldError{Field: f.Field, Message: f.Message})
		}
		c.JSON(http.StatusUnprocessableEntity, resp)
	case errors.Is(err, daterange.ErrInvalidRange):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Errors: []fieldError{
			{Field: "startDate", Message: "must be before the end date"},
			{Field: "endDate", Message: "must be after the start date"},
		}})
	case errors.Is(err, domainoffers.ErrOfferNotFound),
		errors.Is(err, domainoffers.ErrHostNotFound),
		errors.Is(err, domainlocations.ErrLocationNotFound),
		errors.Is(err, domainbooking.ErrReservationNotFound),
		errors.Is(err, domainplanning.ErrEntryNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domainbooking.ErrCancelledImmutable),
		errors.Is(err, domainplanning.ErrScopeImmutable):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, uow.ErrConcurrentUpdate):
		c.JSON(http.StatusConflict, errorResponse{Error: "resource was modified concurrently, retry the request"})
	default:
		if logger != nil {
			logger.ErrorContext(c.Request.Context(), "request failed", "error", err, "path", c.FullPath())
		}
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}
