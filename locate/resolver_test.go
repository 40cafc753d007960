package locate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-medalert/geocode"
	"go-medalert/types"
)

type stubSearcher struct {
	results map[string]*geocode.Result
	queries []string
}

func (s *stubSearcher) Search(_ context.Context, query string) *geocode.Result {
	s.queries = append(s.queries, query)
	return s.results[query]
}

type stubHints struct {
	hints []string
	err   error
}

func (s *stubHints) AddressHints(_ context.Context, _ string) ([]string, error) {
	return s.hints, s.err
}

func coord(lat, lng float64) *types.Coordinate {
	return &types.Coordinate{Lat: lat, Lng: lng}
}

func TestMerge(t *testing.T) {
	ctx := context.Background()

	t.Run("manual coordinates beat gps", func(t *testing.T) {
		r := NewResolver(nil, nil)
		got := r.Merge(ctx,
			&types.Signal{Coordinate: coord(33.57, -7.58), Accuracy: "5m"},
			&types.Signal{Coordinate: coord(10, 20)},
			nil,
		)
		assert.Equal(t, types.SourceManual, got.Source)
		assert.Equal(t, 10.0, got.Coordinate.Lat)
		assert.Equal(t, 20.0, got.Coordinate.Lng)
		assert.Equal(t, types.ConfidenceMedium, got.Confidence)
	})

	t.Run("manual address geocodes and keeps manual source", func(t *testing.T) {
		searcher := &stubSearcher{results: map[string]*geocode.Result{
			"Rue X, El Jadida": {Coordinate: types.Coordinate{Lat: 33.25, Lng: -8.51}, DisplayName: "Rue X", Provider: "nominatim"},
		}}
		r := NewResolver(searcher, nil)
		got := r.Merge(ctx, nil, &types.Signal{Address: "Rue X, El Jadida"}, nil)
		assert.Equal(t, types.SourceManual, got.Source)
		assert.Equal(t, 33.25, got.Coordinate.Lat)
	})

	t.Run("unresolvable manual address falls through to gps", func(t *testing.T) {
		r := NewResolver(&stubSearcher{}, nil)
		got := r.Merge(ctx,
			&types.Signal{Coordinate: coord(33.57, -7.58)},
			&types.Signal{Address: "nowhere"},
			nil,
		)
		assert.Equal(t, types.SourceGPS, got.Source)
		assert.Equal(t, types.ConfidenceHigh, got.Confidence)
	})

	t.Run("ip is used when nothing better exists", func(t *testing.T) {
		r := NewResolver(nil, nil)
		got := r.Merge(ctx, nil, nil, &types.Signal{Coordinate: coord(34.02, -6.84), Accuracy: "ip_based"})
		assert.Equal(t, types.SourceIP, got.Source)
		assert.Equal(t, types.ConfidenceLow, got.Confidence)
	})

	t.Run("no signals falls back to the default", func(t *testing.T) {
		r := NewResolver(nil, nil)
		got := r.Merge(ctx, nil, nil, nil)
		assert.Equal(t, DefaultLocation, got)
		assert.True(t, got.HasCoordinates())
	})

	t.Run("zero gps coordinates do not count", func(t *testing.T) {
		r := NewResolver(nil, nil)
		got := r.Merge(ctx, &types.Signal{Coordinate: coord(0, 0)}, nil, nil)
		assert.Equal(t, types.SourceDefault, got.Source)
	})
}

func TestGeocodeAddress(t *testing.T) {
	ctx := context.Background()

	t.Run("literal text first", func(t *testing.T) {
		searcher := &stubSearcher{results: map[string]*geocode.Result{
			"Casablanca": {Coordinate: types.Coordinate{Lat: 33.57, Lng: -7.59}, Provider: "gazetteer"},
		}}
		r := NewResolver(searcher, nil)
		got := r.GeocodeAddress(ctx, "Casablanca")
		require.NotNil(t, got)
		assert.Equal(t, "gazetteer", got.Source)
	})

	t.Run("entity hints recover a miss", func(t *testing.T) {
		searcher := &stubSearcher{results: map[string]*geocode.Result{
			"El Jadida": {Coordinate: types.Coordinate{Lat: 33.25, Lng: -8.51}, Provider: "gazetteer"},
		}}
		hints := &stubHints{hints: []string{"somewhere else", "El Jadida"}}
		r := NewResolver(searcher, hints)

		got := r.GeocodeAddress(ctx, "help me I am near El Jadida by the port")
		require.NotNil(t, got)
		assert.Equal(t, 33.25, got.Coordinate.Lat)
		assert.Equal(t, []string{"help me I am near El Jadida by the port", "somewhere else", "El Jadida"}, searcher.queries)
	})

	t.Run("nil geocoder never resolves", func(t *testing.T) {
		r := NewResolver(nil, nil)
		assert.Nil(t, r.GeocodeAddress(ctx, "Casablanca"))
	})
}
