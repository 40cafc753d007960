package types

// Facility is a hospital or clinic loaded from the backing store.
// Read-only from the dispatch engine's perspective; the routing fields
// at the bottom are filled in per-selection, not persisted back.
type Facility struct {
	ID          string     `firestore:"id" json:"id"`
	Name        string     `firestore:"name" json:"name"`
	Coordinates Coordinate `firestore:"coordinates" json:"coordinates"`
	Specialties []string   `firestore:"specialties" json:"specialties"`
	Locality    string     `firestore:"locality" json:"locality"`

	// Enrichment from the selection's route computation.
	DistanceKm    float64      `firestore:"distance_km" json:"distance_km"`
	EtaMinutes    float64      `firestore:"eta_minutes" json:"eta_minutes"`
	RouteGeometry []Coordinate `firestore:"-" json:"route_geometry,omitempty"`
}
