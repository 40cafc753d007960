package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go-medalert/types"
)

const (
	defaultNominatimURL = "https://nominatim.openstreetmap.org/search"
	nominatimUserAgent  = "medalert/1.0"
)

var leadingHouseNumber = regexp.MustCompile(`^\s*\d+[\s,]+`)

// NominatimGeocoder queries a Nominatim instance, retrying with
// progressively simplified queries: the full text, the text with a
// leading house number stripped, then the text truncated at the first
// comma. Nominatim is picky about exact house-level queries, so the
// simplification recovers street- or city-level hits.
type NominatimGeocoder struct {
	baseURL string
	email   string
	client  *http.Client
}

// NewNominatimGeocoder builds the provider. baseURL falls back to the
// public OSM instance; email is sent as the contact parameter when set.
func NewNominatimGeocoder(baseURL, email string, client *http.Client) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = defaultNominatimURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &NominatimGeocoder{baseURL: baseURL, email: email, client: client}
}

func (g *NominatimGeocoder) Name() string { return "nominatim" }

func (g *NominatimGeocoder) Search(ctx context.Context, query string) (*Result, error) {
	var lastErr error
	for _, attempt := range simplifyQuery(query) {
		result, err := g.searchOnce(ctx, attempt)
		if err != nil {
			lastErr = err
			continue
		}
		if result != nil {
			return result, nil
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}

// simplifyQuery returns the retry ladder, deduplicated, in order.
func simplifyQuery(query string) []string {
	attempts := []string{strings.TrimSpace(query)}

	stripped := strings.TrimSpace(leadingHouseNumber.ReplaceAllString(query, ""))
	if stripped != "" && stripped != attempts[0] {
		attempts = append(attempts, stripped)
	}

	if idx := strings.Index(query, ","); idx > 0 {
		truncated := strings.TrimSpace(query[:idx])
		if truncated != "" && truncated != attempts[0] && (len(attempts) < 2 || truncated != attempts[1]) {
			attempts = append(attempts, truncated)
		}
	}
	return attempts
}

type nominatimHit struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (g *NominatimGeocoder) searchOnce(ctx context.Context, query string) (*Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	if g.email != "" {
		params.Set("email", g.email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", nominatimUserAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim returned status: %s", resp.Status)
	}

	var hits []nominatimHit
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(hits[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("nominatim returned bad latitude %q: %w", hits[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(hits[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("nominatim returned bad longitude %q: %w", hits[0].Lon, err)
	}

	return &Result{
		Coordinate:  types.Coordinate{Lat: lat, Lng: lng},
		DisplayName: hits[0].DisplayName,
	}, nil
}
