package types

import "time"

// Phase is the mission state machine. Transitions are strictly forward;
// PhaseError is reachable from any non-terminal phase.
type Phase string

const (
	PhaseCreated           Phase = "CREATED"
	PhaseDispatched        Phase = "DISPATCHED"
	PhaseEnRouteToPatient  Phase = "EN_ROUTE_TO_PATIENT"
	PhasePatientPickup     Phase = "PATIENT_PICKUP"
	PhaseProtocolGenerated Phase = "PROTOCOL_GENERATED"
	PhaseEnRouteToFacility Phase = "EN_ROUTE_TO_FACILITY"
	PhaseResolved          Phase = "RESOLVED"
	PhaseError             Phase = "ERROR"
)

// phaseOrder gives each sequential phase a rank. PROTOCOL_GENERATED is
// optional: a mission may go straight from pickup to the facility leg.
var phaseOrder = map[Phase]int{
	PhaseCreated:           0,
	PhaseDispatched:        1,
	PhaseEnRouteToPatient:  2,
	PhasePatientPickup:     3,
	PhaseProtocolGenerated: 4,
	PhaseEnRouteToFacility: 5,
	PhaseResolved:          6,
}

// Terminal reports whether no further transitions are permitted.
func (p Phase) Terminal() bool {
	return p == PhaseResolved || p == PhaseError
}

// CanAdvanceTo reports whether next is a legal transition from p.
func (p Phase) CanAdvanceTo(next Phase) bool {
	if p.Terminal() {
		return false
	}
	if next == PhaseError {
		return true
	}
	from, ok := phaseOrder[p]
	to, ok2 := phaseOrder[next]
	if !ok || !ok2 {
		return false
	}
	return to > from
}

// Mission is one alert's dispatch workflow record. Mutated only by the
// orchestrator through phase transitions; Logs is append-only.
type Mission struct {
	AlertID     string       `firestore:"alert_id" json:"alert_id"`
	Phase       Phase        `firestore:"phase" json:"phase"`
	Plan        DispatchPlan `firestore:"plan" json:"plan"`
	Logs        []string     `firestore:"logs" json:"logs"`
	StartedAt   time.Time    `firestore:"started_at" json:"started_at"`
	CompletedAt *time.Time   `firestore:"completed_at" json:"completed_at,omitempty"`
	Error       string       `firestore:"error" json:"error,omitempty"`
}
