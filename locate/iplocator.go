package locate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go-medalert/types"
)

const (
	defaultIPAPIBaseURL = "https://ipgeolocation.abstractapi.com/v1/"
	ipLookupTimeout     = 5 * time.Second
)

// IPLocator estimates a caller's position from their IP address via
// AbstractAPI. A failed lookup is a missing signal, not an error the
// alert path has to handle.
type IPLocator struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewIPLocator builds the locator. baseURL falls back to the hosted API.
func NewIPLocator(apiKey, baseURL string, client *http.Client) *IPLocator {
	if baseURL == "" {
		baseURL = defaultIPAPIBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: ipLookupTimeout}
	}
	return &IPLocator{apiKey: apiKey, baseURL: baseURL, client: client}
}

type ipAPIResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
}

// Lookup resolves ip to a location signal. Returns nil when the service
// is unavailable or unconfigured.
func (l *IPLocator) Lookup(ctx context.Context, ip string) *types.Signal {
	if l.apiKey == "" {
		return nil
	}

	params := url.Values{}
	params.Set("api_key", l.apiKey)
	if ip != "" {
		params.Set("ip_address", ip)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var parsed ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil
	}

	coord := types.Coordinate{Lat: parsed.Latitude, Lng: parsed.Longitude}
	if coord.IsZero() || !coord.Valid() {
		return nil
	}

	return &types.Signal{
		Coordinate: &coord,
		Address:    fmt.Sprintf("%s, %s", parsed.City, parsed.Country),
		Accuracy:   "ip_based",
	}
}
