// Package geocode resolves GPS coordinates into administrative regions using
// the Google Maps reverse geocoding endpoint.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/christaic/bot-incidenciasPEXT/internal/models"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Client queries the reverse geocoding API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a geocoding client.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, &models.ConfigurationError{Component: "geocode", Reason: "api key is required"}
	}
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type apiResponse struct {
	Status  string `json:"status"`
	Results []struct {
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

// Reverse resolves coordinates into region, subregion and locality. Fields the
// API does not report come back empty; the caller substitutes sentinels.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (models.Placemark, error) {
	q := url.Values{}
	q.Set("latlng", fmt.Sprintf("%.6f,%.6f", lat, lng))
	q.Set("key", c.apiKey)
	q.Set("language", "es")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return models.Placemark{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return models.Placemark{}, &models.UpstreamError{Service: "geocode", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return models.Placemark{}, &models.UpstreamError{Service: "geocode", Err: fmt.Errorf("geocode returned status %d", resp.StatusCode)}
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.Placemark{}, &models.UpstreamError{Service: "geocode", Err: err}
	}
	if body.Status != "OK" || len(body.Results) == 0 {
		return models.Placemark{}, &models.UpstreamError{Service: "geocode", Err: fmt.Errorf("geocode status %q", body.Status)}
	}

	// The first result is the most specific; later results fill gaps it left.
	// Districts do not always geocode as a locality component, so level-3 and
	// sublocality components stand in when no locality is reported.
	var place models.Placemark
	localityExact := false
	for _, result := range body.Results {
		for _, comp := range result.AddressComponents {
			for _, t := range comp.Types {
				switch t {
				case "administrative_area_level_1":
					if place.Region == "" {
						place.Region = comp.LongName
					}
				case "administrative_area_level_2":
					if place.Subregion == "" {
						place.Subregion = comp.LongName
					}
				case "locality":
					if !localityExact {
						place.Locality = comp.LongName
						localityExact = true
					}
				case "administrative_area_level_3", "sublocality_level_1":
					if place.Locality == "" {
						place.Locality = comp.LongName
					}
				}
			}
		}
		if place.Region != "" && place.Subregion != "" && localityExact {
			break
		}
	}
	return place, nil
}
