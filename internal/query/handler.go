package query

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	v1 "github.com/237Fresnel/urban-transport-platform/internal/api/v1"
	coreagg "github.com/237Fresnel/urban-transport-platform/internal/core/aggregation"
	httperr "github.com/237Fresnel/urban-transport-platform/internal/core/errors"
	"github.com/237Fresnel/urban-transport-platform/internal/core/storage"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all query API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/stats/daily", s.HandleDaily)
	r.GET("/stats/hourly", s.HandleHourly)
	r.GET("/stats/cities", s.HandleCities)
	r.GET("/stats/weekday", s.HandleWeekday)
	r.GET("/top-zones", s.HandleTopZones)
	r.GET("/trips", s.HandleTrips)
	r.GET("/cities", s.HandleDistinctCities)
}

// respondError maps resolver errors onto the HTTP error taxonomy.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpValidationError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
	case errors.Is(err, storage.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, httperr.ErrorResponse{
			ErrorType: httperr.HttpBackendDownError,
			Message:   "Store backend unavailable",
			Details:   err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to resolve query",
			Details:   err.Error(),
		})
	}
}

// parseLimit reads an optional limit query parameter. An absent parameter
// comes back as zero and the service substitutes its default; an explicit
// value must be a positive integer. Upper bounds are the service's concern.
func parseLimit(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpValidationError,
			Message:   "Invalid query parameters",
			Details:   name + " must be a positive integer",
		})
		return 0, false
	}
	return v, true
}

// HandleDaily handles GET /stats/daily?city=
func (s *Service) HandleDaily(c *gin.Context) {
	rows, err := s.Daily(c.Request.Context(), c.Query("city"))
	if err != nil {
		respondError(c, err)
		return
	}
	if rows == nil {
		rows = []coreagg.DailyRow{}
	}
	c.JSON(http.StatusOK, rows)
}

// HandleHourly handles GET /stats/hourly?city=
func (s *Service) HandleHourly(c *gin.Context) {
	rows, err := s.Hourly(c.Request.Context(), c.Query("city"))
	if err != nil {
		respondError(c, err)
		return
	}
	if rows == nil {
		rows = []coreagg.HourlyRow{}
	}
	c.JSON(http.StatusOK, rows)
}

// HandleCities handles GET /stats/cities
func (s *Service) HandleCities(c *gin.Context) {
	rows, err := s.Cities(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if rows == nil {
		rows = []coreagg.CityRow{}
	}
	c.JSON(http.StatusOK, rows)
}

// HandleWeekday handles GET /stats/weekday
func (s *Service) HandleWeekday(c *gin.Context) {
	rows, err := s.Weekday(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if rows == nil {
		rows = []coreagg.WeekdayRow{}
	}
	c.JSON(http.StatusOK, rows)
}

// HandleTopZones handles GET /top-zones?limit=
func (s *Service) HandleTopZones(c *gin.Context) {
	limit, ok := parseLimit(c, "limit")
	if !ok {
		return
	}
	rows, err := s.TopZones(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if rows == nil {
		rows = []coreagg.ZoneRow{}
	}
	c.JSON(http.StatusOK, rows)
}

// HandleTrips handles GET /trips?city=&date=&limit=
func (s *Service) HandleTrips(c *gin.Context) {
	limit, ok := parseLimit(c, "limit")
	if !ok {
		return
	}
	trips, err := s.Trips(c.Request.Context(), c.Query("city"), c.Query("date"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if trips == nil {
		trips = []v1.Trip{}
	}
	c.JSON(http.StatusOK, trips)
}

// HandleDistinctCities handles GET /cities
func (s *Service) HandleDistinctCities(c *gin.Context) {
	cities, err := s.DistinctCities(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if cities == nil {
		cities = []string{}
	}
	c.JSON(http.StatusOK, cities)
}
