package handler

import (
	"errors"
	"net/http"

	"github.com/drivetime/drivetime/internal/api/models"
	"github.com/drivetime/drivetime/internal/api/response"
	"github.com/drivetime/drivetime/internal/maps"
)

// GeocodeHandler handles geocoding lookups.
type GeocodeHandler struct {
	geocoder maps.Geocoder
}

// NewGeocodeHandler creates a new GeocodeHandler.
func NewGeocodeHandler(geocoder maps.Geocoder) *GeocodeHandler {
	return &GeocodeHandler{geocoder: geocoder}
}

// Geocode handles GET /v1/geocode?query=... - free-text location lookup.
func (h *GeocodeHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		response.BadRequest(w, r, "query parameter is required", []models.FieldError{
			{Field: "query", Message: "required", Code: "REQUIRED"},
		})
		return
	}

	places, err := h.geocoder.Geocode(r.Context(), query)
	if err != nil {
		switch {
		case errors.Is(err, maps.ErrNoResults):
			response.NotFound(w, r, "no locations matched the query")
		case errors.Is(err, maps.ErrRateLimitExceeded):
			response.TooManyRequests(w, r, "maps provider quota exceeded")
		default:
			response.BadGateway(w, r, "geocoding failed")
		}
		return
	}

	resp := models.GeocodeResponse{
		Query:      query,
		Candidates: make([]models.GeocodeCandidate, 0, len(places)),
	}
	for _, p := range places {
		resp.Candidates = append(resp.Candidates, models.GeocodeCandidate{
			FormattedAddress: p.FormattedAddress,
			Location:         models.Point{Lat: p.Location.Lat, Lng: p.Location.Lng},
			PlaceID:          p.PlaceID,
		})
	}

	response.JSON(w, r, http.StatusOK, resp)
}
