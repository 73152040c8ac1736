package ginserver_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"offerbook/internal/app/wiring/wiringtest"
	"offerbook/internal/domain/geo"
	ginserver "offerbook/internal/infra/http/gin"
	"offerbook/internal/infra/obs"
)

type apiError struct {
	Error  string `json:"error"`
	Errors []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func newRouter(t *testing.T) (*gin.Engine, *wiringtest.Harness) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := wiringtest.New(t)
	router := ginserver.NewRouter(obs.Middleware{}, obs.HealthHandlers{}, ginserver.Handlers{
		Reservation: ginserver.ReservationHandler{Commands: h.Commands, Queries: h.Queries},
		Blackout:    ginserver.BlackoutHandler{Commands: h.Commands, Queries: h.Queries},
		Offer:       ginserver.OfferHandler{Queries: h.Queries},
		Place:       ginserver.PlaceHandler{Queries: h.Queries},
	})
	return router, h
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func day(n int) string { return wiringtest.Day(n).Format("2006-01-02") }

func TestReservationLifecycle(t *testing.T) {
	router, h := newRouter(t)
	h.Offer(t, "O1", "H", "", nil)

	rec := do(router, http.MethodPost, "/api/v1/reservations",
		`{"offerId":"O1","occupantId":"u1","startDate":"`+day(1)+`","endDate":"`+day(4)+`","adults":2}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "WAITING_APPROVAL", created.Status)

	rec = do(router, http.MethodPost, "/api/v1/reservations",
		`{"offerId":"O1","occupantId":"u2","startDate":"`+day(2)+`","endDate":"`+day(3)+`","adults":1}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	var conflict apiError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conflict))
	require.Len(t, conflict.Errors, 2)
	require.Equal(t, "startDate", conflict.Errors[0].Field)
	require.Equal(t, "endDate", conflict.Errors[1].Field)
	require.Equal(t, conflict.Errors[0].Message, conflict.Errors[1].Message)

	rec = do(router, http.MethodPatch, "/api/v1/reservations/"+created.ID, `{"status":"cancelled","cancelReason":"owner_cancellation"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(router, http.MethodPatch, "/api/v1/reservations/"+created.ID, `{"adults":3}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = do(router, http.MethodGet, "/api/v1/reservations?offer_id=O1&hide_cancelled=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"items":[]}`, rec.Body.String())

	rec = do(router, http.MethodDelete, "/api/v1/reservations/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(router, http.MethodGet, "/api/v1/reservations/"+created.ID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidationErrors(t *testing.T) {
	router, h := newRouter(t)
	h.Offer(t, "O1", "H", "", nil)

	rec := do(router, http.MethodPost, "/api/v1/reservations",
		`{"offerId":"O1","occupantId":"u1","startDate":"`+day(4)+`","endDate":"`+day(4)+`","adults":2}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body apiError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Errors, 2)

	rec = do(router, http.MethodPost, "/api/v1/reservations", `{"offerId":"O1","startDate":"tomorrow"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPost, "/api/v1/reservations",
		`{"offerId":"nope","occupantId":"u1","startDate":"`+day(1)+`","endDate":"`+day(2)+`","adults":1}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(router, http.MethodPost, "/api/v1/blackouts",
		`{"offerId":"O1","hostId":"H","startDate":"`+day(1)+`","endDate":"`+day(2)+`"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestBlackoutsAndAvailability(t *testing.T) {
	router, h := newRouter(t)
	h.Offer(t, "O1", "H", "", nil)
	h.Offer(t, "O2", "H", "", nil)

	rec := do(router, http.MethodPost, "/api/v1/blackouts",
		`{"hostId":"H","name":"closed","startDate":"`+day(10)+`","endDate":"`+day(12)+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(router, http.MethodGet, "/api/v1/offers/O2/availability?start="+day(11)+"&end="+day(13), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var avail struct {
		Available bool `json:"available"`
		Conflicts []struct {
			Kind string `json:"kind"`
		} `json:"conflicts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &avail))
	require.False(t, avail.Available)
	require.Equal(t, "blackout", avail.Conflicts[0].Kind)

	rec = do(router, http.MethodGet, "/api/v1/blackouts?host_id=H", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"hostId":"H"`)

	rec = do(router, http.MethodGet, "/api/v1/blackouts?offer_id=O2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

func TestSearchEndpoints(t *testing.T) {
	router, h := newRouter(t)
	paris := geo.Coordinate{Lat: 48.8566, Lon: 2.3522}
	lyon := geo.Coordinate{Lat: 45.7640, Lon: 4.8357}
	h.Offer(t, "far", "H", "C-LYON", &lyon)
	h.Offer(t, "near", "H", "C-PARIS", &paris)
	h.City(t, "C-PARIS", "Paris", 2100000, paris)

	rec := do(router, http.MethodGet, "/api/v1/offers?city_id=C-PARIS", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ranked struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
		UseDistance bool `json:"useDistance"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ranked))
	require.True(t, ranked.UseDistance)
	require.Equal(t, "near", ranked.Items[0].ID)

	rec = do(router, http.MethodGet, "/api/v1/offers?lat=abc", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodGet, "/api/v1/places?name=par", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"name":"Paris"`)
}
