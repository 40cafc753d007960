package types

// RouteSource records which strategy produced a leg.
type RouteSource string

const (
	RouteAPI          RouteSource = "routing_api"
	RouteStraightLine RouteSource = "straight_line"
)

// RouteLeg is one directed segment of a mission route
// (ambulance→patient or patient→facility). Immutable once produced.
type RouteLeg struct {
	DistanceKm  float64      `firestore:"distance_km" json:"distance_km"`
	DurationMin float64      `firestore:"duration_min" json:"duration_min"`
	Geometry    []Coordinate `firestore:"geometry" json:"geometry"`
	Source      RouteSource  `firestore:"source" json:"source"`
}
