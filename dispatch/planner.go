package dispatch

import (
	"context"

	"go-medalert/types"
)

// Planner composes facility selection, fleet selection and routing
// into one dispatch decision.
type Planner struct {
	facilities *FacilitySelector
	fleet      *FleetSelector
	router     Router
}

// NewPlanner wires the planner from its collaborators.
func NewPlanner(facilities *FacilitySelector, fleet *FleetSelector, router Router) *Planner {
	return &Planner{facilities: facilities, fleet: fleet, router: router}
}

// Plan produces the dispatch decision for a resolved patient location.
// Each route leg independently falls back to a straight-line estimate;
// only an empty facility or fleet pool is fatal.
func (p *Planner) Plan(ctx context.Context, loc types.ResolvedLocation, severity types.Severity, age int, symptoms string) (types.DispatchPlan, error) {
	if !loc.HasCoordinates() {
		return types.DispatchPlan{}, ErrNoCoordinates
	}
	patient := loc.Coordinate

	facility, err := p.facilities.SelectFacility(ctx, patient, severity, age, symptoms)
	if err != nil {
		return types.DispatchPlan{}, err
	}

	units, err := p.fleet.SelectFleet(ctx, severity)
	if err != nil {
		return types.DispatchPlan{}, err
	}
	unit := units[0]

	legToPatient := p.router.Route(ctx, unit.CurrentPosition, patient)
	legToFacility := p.router.Route(ctx, patient, facility.Coordinates)

	return types.DispatchPlan{
		Facility:      facility,
		FleetUnit:     unit,
		LegToPatient:  legToPatient,
		LegToFacility: legToFacility,
		TotalKm:       legToPatient.DistanceKm + legToFacility.DistanceKm,
		TotalEtaMin:   legToPatient.DurationMin + legToFacility.DurationMin,
		Severity:      severity,
	}, nil
}
