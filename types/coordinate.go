package types

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `firestore:"lat" json:"lat"`
	Lng float64 `firestore:"lng" json:"lng"`
}

// Valid reports whether the coordinate lies in the usual ranges.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// IsZero reports whether the coordinate is the unset zero value.
// (0,0) is in the Gulf of Guinea and never a real patient location here.
func (c Coordinate) IsZero() bool {
	return c.Lat == 0 && c.Lng == 0
}
