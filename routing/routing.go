// Package routing wraps an OpenRouteService-compatible driving
// directions API. Route never fails: any error degrades to a
// straight-line estimate so the rest of the dispatch pipeline works
// identically whether the provider is reachable or not.
package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"go-medalert/geo"
	"go-medalert/types"
)

const (
	defaultBaseURL = "https://api.openrouteservice.org/v2/directions/driving-car/geojson"
	defaultTimeout = 8 * time.Second

	// fallbackMinPerKm assumes a 30 km/h average over the straight line.
	fallbackMinPerKm = 2.0
)

// Provider calls the routing API with a per-call timeout.
type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// Option configures a Provider.
type Option func(*Provider)

// WithBaseURL points the provider at a different endpoint (tests, self-hosted ORS).
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = u }
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.client = c }
}

// NewProvider builds a routing provider. An empty apiKey is allowed;
// every call will then take the fallback path.
func NewProvider(apiKey string, opts ...Option) *Provider {
	p := &Provider{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// directionsRequest is the ORS request body: coordinates as [lng, lat].
type directionsRequest struct {
	Coordinates [][2]float64 `json:"coordinates"`
}

// directionsResponse is the slice of the GeoJSON response we consume.
type directionsResponse struct {
	Features []struct {
		Properties struct {
			Segments []struct {
				Distance float64 `json:"distance"` // meters
				Duration float64 `json:"duration"` // seconds
			} `json:"segments"`
		} `json:"properties"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"` // [lng, lat]
		} `json:"geometry"`
	} `json:"features"`
}

// Route computes the driving leg from start to end. On any failure it
// returns the straight-line fallback leg; it never returns an error.
func (p *Provider) Route(ctx context.Context, start, end types.Coordinate) types.RouteLeg {
	leg, err := p.callAPI(ctx, start, end)
	if err != nil {
		log.Printf("routing: falling back to straight line: %v", err)
		return StraightLineLeg(start, end)
	}
	return leg
}

func (p *Provider) callAPI(ctx context.Context, start, end types.Coordinate) (types.RouteLeg, error) {
	if p.apiKey == "" {
		return types.RouteLeg{}, fmt.Errorf("routing API key not configured")
	}

	body, err := json.Marshal(directionsRequest{
		Coordinates: [][2]float64{{start.Lng, start.Lat}, {end.Lng, end.Lat}},
	})
	if err != nil {
		return types.RouteLeg{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewBuffer(body))
	if err != nil {
		return types.RouteLeg{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return types.RouteLeg{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.RouteLeg{}, fmt.Errorf("routing API returned status: %s", resp.Status)
	}

	var parsed directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return types.RouteLeg{}, err
	}
	if len(parsed.Features) == 0 || len(parsed.Features[0].Properties.Segments) == 0 {
		return types.RouteLeg{}, fmt.Errorf("routing API returned no segments")
	}

	feature := parsed.Features[0]
	segment := feature.Properties.Segments[0]
	geometry := make([]types.Coordinate, 0, len(feature.Geometry.Coordinates))
	for _, pair := range feature.Geometry.Coordinates {
		if len(pair) < 2 {
			continue
		}
		geometry = append(geometry, types.Coordinate{Lat: pair[1], Lng: pair[0]})
	}
	if len(geometry) == 0 {
		geometry = []types.Coordinate{start, end}
	}

	return types.RouteLeg{
		DistanceKm:  segment.Distance / 1000,
		DurationMin: segment.Duration / 60,
		Geometry:    geometry,
		Source:      types.RouteAPI,
	}, nil
}

// StraightLineLeg is the guaranteed-success route estimate: haversine
// distance, 30 km/h average speed, two-point geometry.
func StraightLineLeg(start, end types.Coordinate) types.RouteLeg {
	distance := geo.HaversineKm(start, end)
	return types.RouteLeg{
		DistanceKm:  distance,
		DurationMin: distance * fallbackMinPerKm,
		Geometry:    []types.Coordinate{start, end},
		Source:      types.RouteStraightLine,
	}
}
