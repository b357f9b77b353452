// Package googlemaps provides a client for the Google Maps Platform
// geocoding, directions and static map APIs.
package googlemaps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/drivetime/drivetime/internal/maps"
	"github.com/drivetime/drivetime/internal/provider/resilience"
)

const (
	// ProviderName identifies this maps provider.
	ProviderName = "googlemaps"

	// DefaultBaseURL is the Google Maps Platform API base URL.
	DefaultBaseURL = "https://maps.googleapis.com"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second

	// maxGeocodeCandidates caps how many geocoding results are returned.
	maxGeocodeCandidates = 5
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Google Maps client.
type ClientConfig struct {
	// APIKey is the Google Maps API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to the Google API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Google Maps Platform API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new Google Maps client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultConfig(ProviderName)
		clientCfg.Timeout = timeout
		if cfg.Registry != nil {
			clientCfg.Registry = cfg.Registry
		}
		httpClient = resilience.New(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// DurationInTraffic returns the driving duration in seconds between origin
// and destination when departing at the requested instant, under the
// requested traffic model. Falls back to the plain duration when the API
// omits the traffic-aware value.
func (c *Client) DurationInTraffic(ctx context.Context, req maps.DurationRequest) (int, error) {
	if c.apiKey == "" {
		return 0, c.wrapError("NO_KEY", "API key is not configured", maps.ErrMissingAPIKey)
	}
	if err := req.Origin.Validate(); err != nil {
		return 0, c.wrapError("INVALID_ORIGIN", "invalid origin coordinates", maps.ErrInvalidCoordinates)
	}
	if err := req.Destination.Validate(); err != nil {
		return 0, c.wrapError("INVALID_DESTINATION", "invalid destination coordinates", maps.ErrInvalidCoordinates)
	}

	model := req.Model
	if model == "" {
		model = maps.ModelBestGuess
	}

	params := url.Values{}
	params.Set("origin", req.Origin.String())
	params.Set("destination", req.Destination.String())
	params.Set("mode", "driving")
	params.Set("departure_time", strconv.FormatInt(req.DepartureEpoch, 10))
	params.Set("traffic_model", string(model))
	params.Set("key", c.apiKey)

	c.logger.Debug().
		Str("origin", req.Origin.String()).
		Str("destination", req.Destination.String()).
		Int64("departure_epoch", req.DepartureEpoch).
		Str("traffic_model", string(model)).
		Msg("requesting directions")

	var dirResp directionsResponse
	if err := c.getJSON(ctx, "/maps/api/directions/json", params, &dirResp); err != nil {
		return 0, err
	}

	if dirResp.Status != statusOK {
		return 0, c.statusError(dirResp.Status, dirResp.ErrorMessage)
	}
	if len(dirResp.Routes) == 0 || len(dirResp.Routes[0].Legs) == 0 {
		return 0, c.wrapError("NO_ROUTE", "directions response contained no route legs", maps.ErrNoRouteFound)
	}

	leg := dirResp.Routes[0].Legs[0]
	duration := leg.DurationInTraffic
	if duration == nil {
		duration = leg.Duration
	}
	if duration == nil {
		return 0, c.wrapError("NO_DURATION", "directions response contained no duration", maps.ErrNoRouteFound)
	}

	return duration.Value, nil
}

// Geocode returns up to 5 candidates for a textual location.
func (c *Client) Geocode(ctx context.Context, query string) ([]maps.Place, error) {
	if c.apiKey == "" {
		return nil, c.wrapError("NO_KEY", "API key is not configured", maps.ErrMissingAPIKey)
	}

	params := url.Values{}
	params.Set("address", query)
	params.Set("key", c.apiKey)

	var geoResp geocodeResponse
	if err := c.getJSON(ctx, "/maps/api/geocode/json", params, &geoResp); err != nil {
		return nil, err
	}

	switch geoResp.Status {
	case statusOK:
	case statusZeroResults:
		return nil, c.wrapError("ZERO_RESULTS", fmt.Sprintf("no results for %q", query), maps.ErrNoResults)
	default:
		return nil, c.statusError(geoResp.Status, geoResp.ErrorMessage)
	}

	results := geoResp.Results
	if len(results) > maxGeocodeCandidates {
		results = results[:maxGeocodeCandidates]
	}

	places := make([]maps.Place, 0, len(results))
	for _, res := range results {
		places = append(places, maps.Place{
			Query:            query,
			FormattedAddress: res.FormattedAddress,
			Location: maps.Coordinate{
				Lat: res.Geometry.Location.Lat,
				Lng: res.Geometry.Location.Lng,
			},
			PlaceID: res.PlaceID,
		})
	}

	c.logger.Debug().
		Str("query", query).
		Int("candidates", len(places)).
		Msg("geocoded query")

	return places, nil
}

// StaticMapURL returns a static map URL with start/end markers for the trip.
func (c *Client) StaticMapURL(origin, destination maps.Coordinate) string {
	params := url.Values{}
	params.Set("size", "640x400")
	params.Set("scale", "2")
	params.Set("maptype", "roadmap")
	params.Add("markers", "color:green|label:S|"+origin.String())
	params.Add("markers", "color:red|label:E|"+destination.String())
	params.Set("key", c.apiKey)

	return c.baseURL + "/maps/api/staticmap?" + params.Encode()
}

// getJSON executes a GET request against the API and decodes the body.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := c.baseURL + path + "?" + params.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return c.wrapError("REQUEST_FAILED", "failed to reach maps provider", maps.ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests {
			return c.wrapError("RATE_LIMIT", "API rate limit exceeded", maps.ErrRateLimitExceeded)
		}
		return c.wrapError(
			fmt.Sprintf("HTTP_%d", resp.StatusCode),
			fmt.Sprintf("maps provider returned status %d", resp.StatusCode),
			maps.ErrProviderUnavailable,
		)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// statusError maps a non-OK API status field to a domain error.
func (c *Client) statusError(status, message string) error {
	if message == "" {
		message = "maps API returned status " + status
	}
	switch status {
	case statusOverQueryLimit:
		return c.wrapError(status, message, maps.ErrRateLimitExceeded)
	case statusNotFound, statusZeroResults:
		return c.wrapError(status, message, maps.ErrNoRouteFound)
	default:
		return c.wrapError(status, message, maps.ErrProviderUnavailable)
	}
}

func (c *Client) wrapError(code, message string, err error) error {
	return &maps.Error{
		Provider: ProviderName,
		Code:     code,
		Message:  message,
		Err:      err,
	}
}
