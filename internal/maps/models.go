// Package maps provides the domain model for traffic-aware trip duration
// lookups and geocoding against an external maps platform.
package maps

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors for maps operations.
var (
	// ErrProviderUnavailable indicates the maps provider is down or the circuit breaker is open.
	ErrProviderUnavailable = errors.New("maps provider unavailable")
	// ErrNoRouteFound indicates no drivable route exists between the given points.
	ErrNoRouteFound = errors.New("no route found between the given points")
	// ErrRateLimitExceeded indicates the API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidCoordinates indicates the provided coordinates are invalid or out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrNoResults indicates a geocoding query matched nothing.
	ErrNoResults = errors.New("no geocoding results")
	// ErrMissingAPIKey indicates the provider was constructed without credentials.
	ErrMissingAPIKey = errors.New("missing maps API key")
)

// TrafficModel selects the congestion assumption used for ETA computation.
type TrafficModel string

const (
	// ModelOptimistic assumes light traffic.
	ModelOptimistic TrafficModel = "optimistic"
	// ModelPessimistic assumes heavy traffic.
	ModelPessimistic TrafficModel = "pessimistic"
	// ModelBestGuess is the provider's default blended estimate.
	// The departure-time analysis only queries the optimistic and
	// pessimistic models; best-guess is exposed for ad hoc lookups.
	ModelBestGuess TrafficModel = "best_guess"
)

// Coordinate represents a geographic point.
type Coordinate struct {
	Lat float64
	Lng float64
}

// String renders the coordinate as "lat,lng" the way the provider expects it.
func (c Coordinate) String() string {
	return fmt.Sprintf("%g,%g", c.Lat, c.Lng)
}

// Validate checks that the coordinate is within valid ranges.
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]", c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]", c.Lng)
	}
	return nil
}

// ParseCoordinate parses a "lat,lng" string into a validated Coordinate.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Coordinate{}, fmt.Errorf("%w: expected \"lat,lng\", got %q", ErrInvalidCoordinates, s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: bad latitude %q", ErrInvalidCoordinates, parts[0])
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: bad longitude %q", ErrInvalidCoordinates, parts[1])
	}
	c := Coordinate{Lat: lat, Lng: lng}
	if err := c.Validate(); err != nil {
		return Coordinate{}, fmt.Errorf("%w: %s", ErrInvalidCoordinates, err)
	}
	return c, nil
}

// Place is a geocoding candidate for a free-text query.
type Place struct {
	Query            string
	FormattedAddress string
	Location         Coordinate
	PlaceID          string
}

// DurationRequest asks for the drive time between two points at a departure instant.
type DurationRequest struct {
	Origin      Coordinate
	Destination Coordinate
	// DepartureEpoch is the departure time as Unix seconds. Must be now or future.
	DepartureEpoch int64
	Model          TrafficModel
}

// DurationProvider computes traffic-aware drive durations.
type DurationProvider interface {
	// DurationInTraffic returns the drive duration in seconds for the request.
	DurationInTraffic(ctx context.Context, req DurationRequest) (int, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// Geocoder resolves free-text queries to coordinate candidates.
type Geocoder interface {
	// Geocode returns up to 5 candidates for a textual location.
	Geocode(ctx context.Context, query string) ([]Place, error)
}

// Error provides detailed error information from the maps provider.
type Error struct {
	Provider string // Provider that generated the error
	Code     string // Error code from the provider
	Message  string // Human-readable error message
	Err      error  // Underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient and the request can be retried.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable) || errors.Is(e.Err, ErrRateLimitExceeded)
}
