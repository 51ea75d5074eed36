// Package distance resolves delivery addresses to road distances through an
// external geocoding service. The pricing engine only sees it as a function
// returning kilometers or an error; the shipping estimator falls back to the
// courier minimum fee when it fails.
package distance

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const requestTimeout = 5 * time.Second

// Client queries the configured distance endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

type distanceResponse struct {
	DistanceKm float64 `json:"distance_km"`
}

// DistanceKm resolves address to a distance in kilometers from the workshop.
func (c *Client) DistanceKm(address string) (float64, error) {
	if c.baseURL == "" {
		return 0, fmt.Errorf("distance service is not configured")
	}
	if address == "" {
		return 0, fmt.Errorf("empty delivery address")
	}

	resp, err := c.http.Get(c.baseURL + "?address=" + url.QueryEscape(address))
	if err != nil {
		return 0, fmt.Errorf("query distance service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("distance service returned status %d", resp.StatusCode)
	}

	var payload distanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode distance response: %w", err)
	}
	if payload.DistanceKm <= 0 {
		return 0, fmt.Errorf("distance service returned %v km", payload.DistanceKm)
	}

	return payload.DistanceKm, nil
}
