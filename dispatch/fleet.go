package dispatch

import (
	"context"
	"fmt"
	"log"
	"strings"

	"go-medalert/store"
	"go-medalert/types"
)

// Terms that identify an advanced-life-support unit by name or type.
var alsKeywords = []string{
	"smur", "umh", "type a",
	"réanimation", "reanimation", "resuscitation",
}

// FleetSelector picks candidate ambulances for a severity level.
type FleetSelector struct {
	store store.Store
}

// NewFleetSelector wires the selector to the ambulance store.
func NewFleetSelector(s store.Store) *FleetSelector {
	return &FleetSelector{store: s}
}

// SelectFleet returns the available units ordered as stored; the caller
// takes the first as the assigned unit. At or above the critical
// threshold only advanced-life-support units are returned when at least
// one exists; a critical case degrades to the full available list only
// when no ALS unit is on duty, and that degradation is logged.
func (s *FleetSelector) SelectFleet(ctx context.Context, severity types.Severity) ([]types.FleetUnit, error) {
	docs, err := s.store.GetAll(ctx, store.CollectionAmbulances)
	if err != nil {
		return nil, fmt.Errorf("loading fleet: %w", err)
	}

	var available []types.FleetUnit
	for _, doc := range docs {
		unit, err := store.DecodeFleetUnit(doc)
		if err != nil {
			log.Printf("dispatch: skipping malformed fleet unit: %v", err)
			continue
		}
		if unit.Status == types.StatusAvailable {
			available = append(available, unit)
		}
	}
	if len(available) == 0 {
		return nil, ErrNoAvailableFleet
	}

	if !severity.RequiresALS() {
		return available, nil
	}

	var als []types.FleetUnit
	for _, unit := range available {
		if IsALS(unit) {
			als = append(als, unit)
		}
	}
	if len(als) > 0 {
		return als, nil
	}

	log.Printf("dispatch: severity %d requires ALS but none available, degrading to %d standard units",
		severity, len(available))
	return available, nil
}

// IsALS reports whether a unit is an advanced-life-support vehicle,
// by class or by the usual naming conventions.
func IsALS(unit types.FleetUnit) bool {
	if unit.Class == types.ClassALS {
		return true
	}
	name := strings.ToLower(unit.Name)
	for _, keyword := range alsKeywords {
		if strings.Contains(name, keyword) {
			return true
		}
	}
	return false
}
