package models

// ETASeriesRequest asks for a departure-time analysis between two points.
type ETASeriesRequest struct {
	Origin      *Point `json:"origin"`
	Destination *Point `json:"destination"`

	// Date is the calendar date, YYYY-MM-DD.
	Date string `json:"date"`
	// Start and End are wall-clock HH:MM bounds on that date.
	Start string `json:"start"`
	End   string `json:"end"`

	// IntervalMinutes is the sampling interval (default 15).
	IntervalMinutes int `json:"intervalMinutes,omitempty"`

	// Timezone is an IANA zone name resolving the date and times.
	Timezone string `json:"timezone,omitempty"`

	// IncludeChart requests the rendered text chart in the response.
	IncludeChart bool `json:"includeChart,omitempty"`
}

// ETAPoint is one departure instant in the analysis series.
type ETAPoint struct {
	Departure      Timestamp `json:"departure"`
	OptimisticMin  float64   `json:"optimisticMin"`
	PessimisticMin float64   `json:"pessimisticMin"`
	AverageMin     float64   `json:"averageMin"`
}

// ETAInsight summarizes the best and worst departure instants.
type ETAInsight struct {
	Best          ETAPoint `json:"best"`
	Worst         ETAPoint `json:"worst"`
	DifferenceMin float64  `json:"differenceMin"`
}

// ETASeriesResponse is the result of a departure-time analysis.
type ETASeriesResponse struct {
	Series  []ETAPoint `json:"series"`
	Insight ETAInsight `json:"insight"`
	Chart   string     `json:"chart,omitempty"`

	// FailedTasks counts individual duration fetches that never succeeded.
	FailedTasks int `json:"failedTasks"`
	// FailedPoints counts departure instants dropped from the series.
	FailedPoints int `json:"failedPoints"`
}

// GeocodeCandidate is one geocoding match for a free-text query.
type GeocodeCandidate struct {
	FormattedAddress string `json:"formattedAddress"`
	Location         Point  `json:"location"`
	PlaceID          string `json:"placeId,omitempty"`
}

// GeocodeResponse holds the candidates for a geocoding query.
type GeocodeResponse struct {
	Query      string             `json:"query"`
	Candidates []GeocodeCandidate `json:"candidates"`
}

// StaticMapResponse holds the rendered static map URL for a trip.
type StaticMapResponse struct {
	URL string `json:"url"`
}
