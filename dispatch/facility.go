package dispatch

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"go-medalert/geo"
	"go-medalert/store"
	"go-medalert/types"
)

// pediatricAgeLimit is the age above which pediatric-only facilities
// are excluded from selection.
const pediatricAgeLimit = 16

// Non-emergency specialty clinics that must never receive a dispatch.
var exclusionKeywords = []string{
	"dentaire", "dental",
	"vétérinaire", "veterinaire", "veterinary",
	"physiothérapie", "physiotherapie", "physiotherapy",
	"optique", "optical",
	"laboratoire", "laboratory",
	"cosmétique", "cosmetique", "cosmetic",
	"cabinet",
}

// Generic emergency-capable facility terms.
var inclusionKeywords = []string{
	"hôpital", "hopital", "hospital",
	"chu",
	"clinique", "clinic",
	"urgence", "urgences", "emergency",
}

// Added to the exclusion set for adult patients.
var pediatricKeywords = []string{
	"pédiatrique", "pediatrique", "pediatric", "enfants",
}

// symptomPriorities maps symptom terms to specialty terms that
// force-include a matching facility, past the generic inclusion test.
var symptomPriorities = []struct {
	symptoms    []string
	specialties []string
}{
	{
		symptoms:    []string{"respirat", "breath", "souffle", "asthm", "étouff", "etouff"},
		specialties: []string{"pneumo", "pulmono"},
	},
	{
		symptoms:    []string{"cardia", "chest pain", "cœur", "coeur", "poitrine", "infarctus"},
		specialties: []string{"cardio"},
	},
	{
		symptoms:    []string{"trauma", "fracture", "accident", "blessure", "chute"},
		specialties: []string{"orthopéd", "orthoped", "chirurg", "surg"},
	},
	{
		symptoms:    []string{"neuro", "avc", "stroke", "convuls", "seizure", "paraly"},
		specialties: []string{"neuro"},
	},
	{
		symptoms:    []string{"grossesse", "pregnan", "accouch", "labor", "contraction"},
		specialties: []string{"matern", "obstétri", "obstetri", "gynéco", "gyneco"},
	},
}

// FacilitySelector ranks hospitals for a patient.
type FacilitySelector struct {
	store  store.Store
	router Router
}

// NewFacilitySelector wires the selector to the hospital store and the
// routing provider.
func NewFacilitySelector(s store.Store, router Router) *FacilitySelector {
	return &FacilitySelector{store: s, router: router}
}

// SelectFacility picks the best facility for the patient: filter out
// non-emergency clinics, prefer hospitals and symptom-matched
// specialties, rank the rest by distance, then enrich the winner with
// a real route. Exclusion takes strict precedence over every inclusion
// or priority match. age 0 means unknown; symptoms may be empty.
func (s *FacilitySelector) SelectFacility(ctx context.Context, patient types.Coordinate, severity types.Severity, age int, symptoms string) (types.Facility, error) {
	docs, err := s.store.GetAll(ctx, store.CollectionHospitals)
	if err != nil {
		return types.Facility{}, fmt.Errorf("loading facilities: %w", err)
	}
	if len(docs) == 0 {
		return types.Facility{}, ErrNoEligibleFacility
	}

	facilities := make([]types.Facility, 0, len(docs))
	for _, doc := range docs {
		facility, err := store.DecodeFacility(doc)
		if err != nil {
			log.Printf("dispatch: skipping malformed facility: %v", err)
			continue
		}
		facilities = append(facilities, facility)
	}

	excluded := exclusionKeywords
	if age > pediatricAgeLimit {
		excluded = append(append([]string{}, excluded...), pediatricKeywords...)
	}
	priorities := prioritySpecialties(symptoms)

	var eligible, preferred []types.Facility
	for _, facility := range facilities {
		if containsAny(facility.Name, excluded) {
			continue
		}
		eligible = append(eligible, facility)
		if facilityMatches(facility, priorities) || facilityMatches(facility, inclusionKeywords) {
			preferred = append(preferred, facility)
		}
	}

	candidates := preferred
	if len(candidates) == 0 {
		candidates = eligible
	}
	if len(candidates) == 0 {
		return types.Facility{}, ErrNoEligibleFacility
	}

	// Stable sort keeps first-listed wins on equal distance.
	sort.SliceStable(candidates, func(i, j int) bool {
		return geo.HaversineKm(patient, candidates[i].Coordinates) <
			geo.HaversineKm(patient, candidates[j].Coordinates)
	})

	best := candidates[0]
	leg := s.routeTo(ctx, patient, best.Coordinates)
	best.DistanceKm = leg.DistanceKm
	best.EtaMinutes = leg.DurationMin
	best.RouteGeometry = leg.Geometry
	return best, nil
}

func (s *FacilitySelector) routeTo(ctx context.Context, patient, facility types.Coordinate) types.RouteLeg {
	if s.router == nil {
		distance := geo.HaversineKm(patient, facility)
		return types.RouteLeg{
			DistanceKm:  distance,
			DurationMin: distance * 2,
			Geometry:    []types.Coordinate{patient, facility},
			Source:      types.RouteStraightLine,
		}
	}
	return s.router.Route(ctx, patient, facility)
}

// prioritySpecialties returns the specialty terms implied by the
// symptom text, or nil when nothing matches.
func prioritySpecialties(symptoms string) []string {
	if symptoms == "" {
		return nil
	}
	lowered := strings.ToLower(symptoms)
	var specialties []string
	for _, entry := range symptomPriorities {
		for _, term := range entry.symptoms {
			if strings.Contains(lowered, term) {
				specialties = append(specialties, entry.specialties...)
				break
			}
		}
	}
	return specialties
}

func facilityMatches(facility types.Facility, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	if containsAny(facility.Name, keywords) {
		return true
	}
	for _, specialty := range facility.Specialties {
		if containsAny(specialty, keywords) {
			return true
		}
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	lowered := strings.ToLower(text)
	for _, keyword := range keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
