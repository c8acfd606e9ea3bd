// Package geocode reverse-geocodes a map-picked location into address
// fragments. Lookups are best-effort: callers fall back to placeholder
// fragments rather than blocking location selection.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Place struct {
	Street  string
	City    string
	Emirate string
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Road    string `json:"road"`
		Suburb  string `json:"suburb"`
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		State   string `json:"state"`
	} `json:"address"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Reverse resolves (lat, lng) to street/city/emirate fragments.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (Place, error) {
	url := fmt.Sprintf("%s/reverse?format=jsonv2&lat=%f&lon=%f", c.baseURL, lat, lng)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return Place{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "photo-prints-backend")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Place{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Place{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Place{}, fmt.Errorf("reverse geocode failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result reverseResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return Place{}, fmt.Errorf("failed to decode response: %w", err)
	}

	place := Place{
		Street:  result.Address.Road,
		City:    result.Address.City,
		Emirate: result.Address.State,
	}
	if place.Street == "" {
		place.Street = result.Address.Suburb
	}
	if place.City == "" {
		place.City = result.Address.Town
	}
	if place.City == "" {
		place.City = result.Address.Village
	}
	if place.Street == "" && place.City == "" && place.Emirate == "" {
		return Place{}, fmt.Errorf("no address fragments in response: %s", result.DisplayName)
	}
	return place, nil
}
