package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/drivetime/drivetime/internal/api/models"
	"github.com/drivetime/drivetime/internal/api/response"
	"github.com/drivetime/drivetime/internal/drivetime"
	"github.com/drivetime/drivetime/internal/maps"
	"github.com/drivetime/drivetime/internal/series"
)

// Analyzer runs departure-time analyses.
type Analyzer interface {
	Analyze(ctx context.Context, req drivetime.AnalyzeRequest) (*drivetime.Analysis, error)
}

// AnalysisHandler handles departure-time analysis requests.
type AnalysisHandler struct {
	analyzer Analyzer
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analyzer Analyzer) *AnalysisHandler {
	return &AnalysisHandler{analyzer: analyzer}
}

// ETASeries handles POST /v1/eta-series - run a departure-time analysis.
func (h *AnalysisHandler) ETASeries(w http.ResponseWriter, r *http.Request) {
	var req models.ETASeriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if fieldErrors := validateETASeriesRequest(&req); len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid analysis request", fieldErrors)
		return
	}

	analysis, err := h.analyzer.Analyze(r.Context(), drivetime.AnalyzeRequest{
		Origin:          maps.Coordinate{Lat: req.Origin.Lat, Lng: req.Origin.Lng},
		Destination:     maps.Coordinate{Lat: req.Destination.Lat, Lng: req.Destination.Lng},
		Date:            req.Date,
		Start:           req.Start,
		End:             req.End,
		IntervalMinutes: req.IntervalMinutes,
		Timezone:        req.Timezone,
	})
	if err != nil {
		if errors.Is(err, series.ErrEmptySeries) {
			response.BadGateway(w, r, "no departure instant produced complete data")
			return
		}
		// Remaining failures are window construction problems.
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	response.JSON(w, r, http.StatusOK, toETASeriesResponse(analysis, req.IncludeChart))
}

func validateETASeriesRequest(req *models.ETASeriesRequest) []models.FieldError {
	var fieldErrors []models.FieldError

	checkPoint := func(field string, p *models.Point) {
		if p == nil {
			fieldErrors = append(fieldErrors, models.FieldError{Field: field, Message: "required", Code: "REQUIRED"})
			return
		}
		c := maps.Coordinate{Lat: p.Lat, Lng: p.Lng}
		if err := c.Validate(); err != nil {
			fieldErrors = append(fieldErrors, models.FieldError{Field: field, Message: err.Error(), Code: "OUT_OF_RANGE"})
		}
	}
	checkPoint("origin", req.Origin)
	checkPoint("destination", req.Destination)

	if req.Date == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "date", Message: "required", Code: "REQUIRED"})
	}
	if req.Start == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "start", Message: "required", Code: "REQUIRED"})
	}
	if req.End == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "end", Message: "required", Code: "REQUIRED"})
	}
	if req.IntervalMinutes < 0 {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "intervalMinutes", Message: "must be positive", Code: "OUT_OF_RANGE"})
	}

	return fieldErrors
}

func toETASeriesResponse(analysis *drivetime.Analysis, includeChart bool) models.ETASeriesResponse {
	resp := models.ETASeriesResponse{
		Series: make([]models.ETAPoint, 0, len(analysis.Series)),
		Insight: models.ETAInsight{
			Best:          toETAPoint(analysis.Insight.Best),
			Worst:         toETAPoint(analysis.Insight.Worst),
			DifferenceMin: analysis.Insight.DifferenceMin,
		},
		FailedTasks:  analysis.FailedTasks,
		FailedPoints: analysis.FailedPoints,
	}
	for _, entry := range analysis.Series {
		resp.Series = append(resp.Series, toETAPoint(entry))
	}
	if includeChart {
		resp.Chart = analysis.Chart
	}
	return resp
}

func toETAPoint(entry series.Entry) models.ETAPoint {
	return models.ETAPoint{
		Departure:      models.Timestamp(entry.Departure),
		OptimisticMin:  entry.OptimisticMin,
		PessimisticMin: entry.PessimisticMin,
		AverageMin:     entry.AverageMin,
	}
}
