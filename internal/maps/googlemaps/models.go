package googlemaps

// Google Maps API status codes shared by the directions and geocoding APIs.
const (
	statusOK             = "OK"
	statusZeroResults    = "ZERO_RESULTS"
	statusNotFound       = "NOT_FOUND"
	statusOverQueryLimit = "OVER_QUERY_LIMIT"
)

// Google Maps API response structures.

type directionsResponse struct {
	Status       string           `json:"status"`
	ErrorMessage string           `json:"error_message"`
	Routes       []directionsRoute `json:"routes"`
}

type directionsRoute struct {
	Legs []directionsLeg `json:"legs"`
}

type directionsLeg struct {
	Duration          *textValue `json:"duration"`
	DurationInTraffic *textValue `json:"duration_in_traffic"`
}

type textValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"` // seconds
}

type geocodeResponse struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message"`
	Results      []geocodeResult `json:"results"`
}

type geocodeResult struct {
	FormattedAddress string          `json:"formatted_address"`
	PlaceID          string          `json:"place_id"`
	Geometry         geocodeGeometry `json:"geometry"`
}

type geocodeGeometry struct {
	Location geocodeLocation `json:"location"`
}

type geocodeLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
