// Package geocode resolves free-text addresses to coordinates through
// an ordered cascade of providers. One failing provider never aborts
// the cascade; the result is tagged with the provider that won.
package geocode

import (
	"context"
	"log"
	"time"

	"go-medalert/types"
)

const defaultProviderTimeout = 6 * time.Second

// Result is a geocoding hit.
type Result struct {
	Coordinate  types.Coordinate `json:"coordinate"`
	DisplayName string           `json:"display_name"`
	Provider    string           `json:"provider"`
}

// Geocoder is a single forward-geocoding strategy. A miss is (nil, nil);
// errors are provider failures and candidates for the next strategy.
type Geocoder interface {
	Name() string
	Search(ctx context.Context, query string) (*Result, error)
}

// Cascade tries each provider in order and returns the first hit.
type Cascade struct {
	providers []Geocoder
	timeout   time.Duration
}

// NewCascade builds a cascade over the given providers, first wins.
func NewCascade(providers ...Geocoder) *Cascade {
	return &Cascade{providers: providers, timeout: defaultProviderTimeout}
}

// WithTimeout sets the per-provider timeout.
func (c *Cascade) WithTimeout(d time.Duration) *Cascade {
	c.timeout = d
	return c
}

// Search resolves the query, or returns nil when every provider misses.
func (c *Cascade) Search(ctx context.Context, query string) *Result {
	if query == "" {
		return nil
	}
	for _, provider := range c.providers {
		pctx, cancel := context.WithTimeout(ctx, c.timeout)
		result, err := provider.Search(pctx, query)
		cancel()
		if err != nil {
			log.Printf("geocode: provider %s failed for %q: %v", provider.Name(), query, err)
			continue
		}
		if result == nil {
			continue
		}
		result.Provider = provider.Name()
		return result
	}
	return nil
}
