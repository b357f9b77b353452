package handler

import (
	"net/http"

	"github.com/drivetime/drivetime/internal/api/models"
	"github.com/drivetime/drivetime/internal/api/response"
	"github.com/drivetime/drivetime/internal/maps"
)

// StaticMapper renders static map URLs for a trip.
type StaticMapper interface {
	StaticMapURL(origin, destination maps.Coordinate) string
}

// StaticMapHandler handles static map URL generation.
type StaticMapHandler struct {
	mapper StaticMapper
}

// NewStaticMapHandler creates a new StaticMapHandler.
func NewStaticMapHandler(mapper StaticMapper) *StaticMapHandler {
	return &StaticMapHandler{mapper: mapper}
}

// StaticMap handles GET /v1/static-map?origin=lat,lng&destination=lat,lng.
func (h *StaticMapHandler) StaticMap(w http.ResponseWriter, r *http.Request) {
	origin, err := maps.ParseCoordinate(r.URL.Query().Get("origin"))
	if err != nil {
		response.BadRequest(w, r, "invalid origin", []models.FieldError{
			{Field: "origin", Message: "must be \"lat,lng\" within valid ranges", Code: "INVALID"},
		})
		return
	}

	destination, err := maps.ParseCoordinate(r.URL.Query().Get("destination"))
	if err != nil {
		response.BadRequest(w, r, "invalid destination", []models.FieldError{
			{Field: "destination", Message: "must be \"lat,lng\" within valid ranges", Code: "INVALID"},
		})
		return
	}

	resp := models.StaticMapResponse{
		URL: h.mapper.StaticMapURL(origin, destination),
	}
	response.JSON(w, r, http.StatusOK, resp)
}
