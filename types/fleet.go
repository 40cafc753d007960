package types

// FleetClass is the ambulance capability class.
type FleetClass string

const (
	ClassStandard FleetClass = "standard"
	// ClassALS is an advanced-life-support unit (SMUR / Type A).
	ClassALS FleetClass = "als"
)

func (c FleetClass) String() string { return string(c) }

// FleetStatus is the availability state of a unit.
type FleetStatus string

const (
	StatusAvailable FleetStatus = "available"
	StatusAssigned  FleetStatus = "assigned"
	StatusEnRoute   FleetStatus = "en_route"
)

func (s FleetStatus) String() string { return string(s) }

// FleetUnit is an ambulance. Position and status are mutated only by
// the orchestrator of the mission the unit is assigned to.
type FleetUnit struct {
	ID              string      `firestore:"id" json:"id"`
	Name            string      `firestore:"name" json:"name"`
	Class           FleetClass  `firestore:"class" json:"class"`
	Status          FleetStatus `firestore:"status" json:"status"`
	CurrentPosition Coordinate  `firestore:"current_position" json:"current_position"`
	CurrentAlertID  string      `firestore:"current_alert_id" json:"current_alert_id,omitempty"`
}
