package types

// Location source tags. A ResolvedLocation records which signal won the merge.
const (
	SourceGPS     = "gps"
	SourceManual  = "manual"
	SourceIP      = "ip"
	SourceDefault = "default"
)

// Confidence tags attached to a resolved location.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Signal is one raw location input (GPS fix, manual form entry, or
// IP-based estimate). Coordinate is nil when the signal only carries an
// address. Signals are immutable once produced.
type Signal struct {
	Coordinate *Coordinate `json:"coordinate,omitempty"`
	Address    string      `json:"address,omitempty"`
	Accuracy   string      `json:"accuracy,omitempty"`
}

// ResolvedLocation is the single coordinate chosen by the merge policy,
// tagged with the winning source. Created once per alert, never mutated.
type ResolvedLocation struct {
	Coordinate Coordinate `firestore:"coordinate" json:"coordinate"`
	Address    string     `firestore:"address" json:"address"`
	Source     string     `firestore:"source" json:"source"`
	Confidence string     `firestore:"confidence" json:"confidence"`
}

// HasCoordinates reports whether the merge produced usable coordinates.
func (r ResolvedLocation) HasCoordinates() bool {
	return !r.Coordinate.IsZero() && r.Coordinate.Valid()
}
