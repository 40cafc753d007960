// Package dispatch turns a patient location and severity into a
// dispatch decision: which facility, which ambulance, which routes.
package dispatch

import (
	"context"
	"errors"

	"go-medalert/types"
)

// Fatal selection errors; anything else the package degrades around.
var (
	ErrNoEligibleFacility = errors.New("no eligible facility found")
	ErrNoAvailableFleet   = errors.New("no available fleet units")
	ErrNoCoordinates      = errors.New("resolved location has no usable coordinates")
)

// Router computes a driving leg; satisfied by routing.Provider. The
// contract is that Route never fails, it only degrades.
type Router interface {
	Route(ctx context.Context, start, end types.Coordinate) types.RouteLeg
}
