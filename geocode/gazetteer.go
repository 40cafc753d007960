package geocode

import (
	"context"
	"strings"

	"go-medalert/types"
)

// Gazetteer is the last-resort geocoding strategy: a static table of
// known city names matched by substring. It never fails, it only
// misses.
type Gazetteer struct {
	entries []gazetteerEntry
}

type gazetteerEntry struct {
	match   string
	display string
	coord   types.Coordinate
}

// NewGazetteer builds the default Moroccan city table.
func NewGazetteer() *Gazetteer {
	return &Gazetteer{entries: []gazetteerEntry{
		{"casablanca", "Casablanca, Morocco", types.Coordinate{Lat: 33.5731, Lng: -7.5898}},
		{"el jadida", "El Jadida, Morocco", types.Coordinate{Lat: 33.2564, Lng: -8.5106}},
		{"rabat", "Rabat, Morocco", types.Coordinate{Lat: 34.0209, Lng: -6.8416}},
		{"marrakech", "Marrakech, Morocco", types.Coordinate{Lat: 31.6295, Lng: -7.9811}},
		{"fès", "Fès, Morocco", types.Coordinate{Lat: 34.0181, Lng: -5.0078}},
		{"fes", "Fès, Morocco", types.Coordinate{Lat: 34.0181, Lng: -5.0078}},
		{"tanger", "Tanger, Morocco", types.Coordinate{Lat: 35.7595, Lng: -5.8340}},
		{"agadir", "Agadir, Morocco", types.Coordinate{Lat: 30.4278, Lng: -9.5981}},
		{"oujda", "Oujda, Morocco", types.Coordinate{Lat: 34.6814, Lng: -1.9086}},
		{"kenitra", "Kenitra, Morocco", types.Coordinate{Lat: 34.2610, Lng: -6.5802}},
		{"mohammedia", "Mohammedia, Morocco", types.Coordinate{Lat: 33.6866, Lng: -7.3830}},
		{"settat", "Settat, Morocco", types.Coordinate{Lat: 33.0010, Lng: -7.6166}},
	}}
}

func (g *Gazetteer) Name() string { return "gazetteer" }

func (g *Gazetteer) Search(_ context.Context, query string) (*Result, error) {
	lowered := strings.ToLower(query)
	for _, entry := range g.entries {
		if strings.Contains(lowered, entry.match) {
			return &Result{
				Coordinate:  entry.coord,
				DisplayName: entry.display,
			}, nil
		}
	}
	return nil, nil
}
