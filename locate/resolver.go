// Package locate merges the raw location signals of an alert (GPS fix,
// manual form entry, IP estimate) into one best-effort coordinate.
package locate

import (
	"context"
	"log"

	"go-medalert/geocode"
	"go-medalert/types"
)

// DefaultLocation is the hardcoded last-resort coordinate (Casablanca).
var DefaultLocation = types.ResolvedLocation{
	Coordinate: types.Coordinate{Lat: 33.5731, Lng: -7.5898},
	Address:    "Casablanca, Morocco",
	Source:     types.SourceDefault,
	Confidence: types.ConfidenceLow,
}

// AddressSearcher resolves free text to coordinates; satisfied by
// geocode.Cascade and geocode.CachedCascade.
type AddressSearcher interface {
	Search(ctx context.Context, query string) *geocode.Result
}

// HintExtractor pulls address-like entities out of free text;
// satisfied by nlp.Extractor.
type HintExtractor interface {
	AddressHints(ctx context.Context, text string) ([]string, error)
}

// Resolver applies the merge policy: manual > GPS > IP > default.
type Resolver struct {
	geocoder AddressSearcher
	hints    HintExtractor
}

// NewResolver builds a resolver. geocoder may be nil (manual addresses
// then never geocode); hints is optional.
func NewResolver(geocoder AddressSearcher, hints HintExtractor) *Resolver {
	return &Resolver{geocoder: geocoder, hints: hints}
}

// Merge picks the best location from the available signals. A manual
// signal with explicit coordinates wins outright; a manual signal with
// only an address is geocoded first and falls through to GPS/IP/default
// only when geocoding misses. The result is never without coordinates.
func (r *Resolver) Merge(ctx context.Context, gps, manual, ip *types.Signal) types.ResolvedLocation {
	if manual != nil {
		if hasCoords(manual) {
			return types.ResolvedLocation{
				Coordinate: *manual.Coordinate,
				Address:    manual.Address,
				Source:     types.SourceManual,
				Confidence: types.ConfidenceMedium,
			}
		}
		if manual.Address != "" {
			if resolved := r.GeocodeAddress(ctx, manual.Address); resolved != nil {
				resolved.Source = types.SourceManual
				resolved.Confidence = types.ConfidenceMedium
				return *resolved
			}
			log.Printf("locate: manual address %q did not geocode, falling through", manual.Address)
		}
	}

	if gps != nil && hasCoords(gps) {
		return types.ResolvedLocation{
			Coordinate: *gps.Coordinate,
			Address:    gps.Address,
			Source:     types.SourceGPS,
			Confidence: types.ConfidenceHigh,
		}
	}

	if ip != nil && hasCoords(ip) {
		return types.ResolvedLocation{
			Coordinate: *ip.Coordinate,
			Address:    ip.Address,
			Source:     types.SourceIP,
			Confidence: types.ConfidenceLow,
		}
	}

	return DefaultLocation
}

// GeocodeAddress resolves free text through the cascade, trying
// extracted address entities when the literal text misses. Returns nil
// when everything misses.
func (r *Resolver) GeocodeAddress(ctx context.Context, text string) *types.ResolvedLocation {
	if r.geocoder == nil || text == "" {
		return nil
	}

	if result := r.geocoder.Search(ctx, text); result != nil {
		return resolvedFromResult(result)
	}

	if r.hints != nil {
		hints, err := r.hints.AddressHints(ctx, text)
		if err != nil {
			log.Printf("locate: entity extraction failed for %q: %v", text, err)
			return nil
		}
		for _, hint := range hints {
			if result := r.geocoder.Search(ctx, hint); result != nil {
				return resolvedFromResult(result)
			}
		}
	}
	return nil
}

func resolvedFromResult(result *geocode.Result) *types.ResolvedLocation {
	return &types.ResolvedLocation{
		Coordinate: result.Coordinate,
		Address:    result.DisplayName,
		Source:     result.Provider,
		Confidence: types.ConfidenceMedium,
	}
}

func hasCoords(s *types.Signal) bool {
	return s.Coordinate != nil && s.Coordinate.Valid() && !s.Coordinate.IsZero()
}
