package geocode

import (
	"context"

	"googlemaps.github.io/maps"

	"go-medalert/types"
)

// MapsGeocoder is the Google Maps forward geocoder.
type MapsGeocoder struct {
	client *maps.Client
}

// NewMapsClient builds the underlying Google Maps client.
func NewMapsClient(apiKey string) (*maps.Client, error) {
	return maps.NewClient(maps.WithAPIKey(apiKey))
}

// NewMapsGeocoder wraps an injected maps client.
func NewMapsGeocoder(client *maps.Client) *MapsGeocoder {
	return &MapsGeocoder{client: client}
}

func (g *MapsGeocoder) Name() string { return "google_maps" }

func (g *MapsGeocoder) Search(ctx context.Context, query string) (*Result, error) {
	req := &maps.GeocodingRequest{Address: query}

	results, err := g.client.Geocode(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	loc := results[0].Geometry.Location
	return &Result{
		Coordinate:  types.Coordinate{Lat: loc.Lat, Lng: loc.Lng},
		DisplayName: results[0].FormattedAddress,
	}, nil
}
