package query

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/237Fresnel/urban-transport-platform/internal/artifact"
	coreagg "github.com/237Fresnel/urban-transport-platform/internal/core/aggregation"
	httperr "github.com/237Fresnel/urban-transport-platform/internal/core/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *artifact.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := seedStore(t)
	artifacts := artifact.NewMemoryStore()
	svc := newService(store, artifacts)

	router := gin.New()
	svc.RegisterRoutes(router)
	return router, artifacts
}

func doGet(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlers_DailyAndHourly(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doGet(t, router, "/stats/daily")
	require.Equal(t, http.StatusOK, rec.Code)
	var daily []coreagg.DailyRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &daily))
	require.Equal(t, []coreagg.DailyRow{
		{Date: "2026-02-07", TripCount: 2},
		{Date: "2026-02-08", TripCount: 1},
	}, daily)

	rec = doGet(t, router, "/stats/hourly?city=Paris")
	require.Equal(t, http.StatusOK, rec.Code)
	var hourly []coreagg.HourlyRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hourly))
	require.Equal(t, []coreagg.HourlyRow{
		{Hour: 8, TripCount: 1},
		{Hour: 18, TripCount: 1},
	}, hourly)
}

func TestHandlers_CitiesAndWeekday(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doGet(t, router, "/stats/cities")
	require.Equal(t, http.StatusOK, rec.Code)
	var cities []coreagg.CityRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cities))
	require.Equal(t, []coreagg.CityRow{
		{City: "Paris", AvgDistance: 15.0, TripCount: 2},
		{City: "Lyon", AvgDistance: 10.0, TripCount: 1},
	}, cities)

	rec = doGet(t, router, "/stats/weekday")
	require.Equal(t, http.StatusOK, rec.Code)
	var weekday []coreagg.WeekdayRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &weekday))
	require.Len(t, weekday, 2)

	rec = doGet(t, router, "/cities")
	require.Equal(t, http.StatusOK, rec.Code)
	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	require.Equal(t, []string{"Lyon", "Paris"}, names)
}

func TestHandlers_TopZonesLimit(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doGet(t, router, "/top-zones?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	var zones []coreagg.ZoneRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &zones))
	require.Equal(t, []coreagg.ZoneRow{{Zone: "Zone A", TripCount: 2}}, zones)
}

func TestHandlers_ValidationErrors(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name string
		path string
	}{
		{name: "non-integer trips limit", path: "/trips?limit=abc"},
		{name: "oversized trips limit", path: "/trips?limit=1001"},
		{name: "negative trips limit", path: "/trips?limit=-1"},
		{name: "malformed trips date", path: "/trips?date=notadate"},
		{name: "zero zone limit", path: "/top-zones?limit=0"},
		{name: "non-integer zone limit", path: "/top-zones?limit=ten"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doGet(t, router, tc.path)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp httperr.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.Equal(t, httperr.HttpValidationError, resp.ErrorType)
		})
	}
}

func TestHandlers_TripsHideInternalID(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doGet(t, router, "/trips?city=Lyon")
	require.Equal(t, http.StatusOK, rec.Code)

	var raw []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Len(t, raw, 1)
	require.NotContains(t, raw[0], "RowID")
	require.Equal(t, "t3", raw[0]["trip_id"])
	require.Equal(t, "Lyon", raw[0]["city"])
}

func TestHandlers_BackendDownReturns503(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := seedStore(t)
	svc := NewService(store, &downStats{StatsReader: store}, artifact.NewMemoryStore(), Options{})
	router := gin.New()
	svc.RegisterRoutes(router)

	rec := doGet(t, router, "/stats/daily")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, httperr.HttpBackendDownError, resp.ErrorType)
}

func TestHandlers_EmptyResultIsEmptyArray(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newService(seedStore(t), artifact.NewMemoryStore())
	router := gin.New()
	svc.RegisterRoutes(router)

	rec := doGet(t, router, "/trips?city=Nantes")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())
}
