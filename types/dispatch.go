package types

import "fmt"

// Severity is the emergency level, 1 (minor) to 5 (critical).
type Severity int

const (
	SeverityMinor    Severity = 1
	SeverityModerate Severity = 2
	SeverityCritical Severity = 3
	SeveritySevere   Severity = 4
	SeverityExtreme  Severity = 5
)

// ParseSeverity validates a boundary-supplied level.
func ParseSeverity(level int) (Severity, error) {
	if level < 1 || level > 5 {
		return 0, fmt.Errorf("severity %d out of range 1..5", level)
	}
	return Severity(level), nil
}

// RequiresALS reports whether the level calls for an
// advanced-life-support unit.
func (s Severity) RequiresALS() bool { return s >= SeverityCritical }

// DispatchPlan is a complete dispatch decision. Created by the planner,
// consumed by the orchestrator, never mutated after creation.
type DispatchPlan struct {
	Facility      Facility  `firestore:"facility" json:"facility"`
	FleetUnit     FleetUnit `firestore:"fleet_unit" json:"fleet_unit"`
	LegToPatient  RouteLeg  `firestore:"leg_to_patient" json:"leg_to_patient"`
	LegToFacility RouteLeg  `firestore:"leg_to_facility" json:"leg_to_facility"`
	TotalKm       float64   `firestore:"total_distance_km" json:"total_distance_km"`
	TotalEtaMin   float64   `firestore:"total_eta_min" json:"total_eta_min"`
	Severity      Severity  `firestore:"severity" json:"severity"`
}
