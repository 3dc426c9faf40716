package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const geocodeBody = `{
	"status": "OK",
	"results": [
		{
			"address_components": [
				{"long_name": "Miraflores", "types": ["locality", "political"]},
				{"long_name": "Lima", "types": ["administrative_area_level_2", "political"]}
			]
		},
		{
			"address_components": [
				{"long_name": "Lima", "types": ["administrative_area_level_1", "political"]}
			]
		}
	]
}`

func TestReverseFillsGapsFromSecondaryResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("latlng"); got != "-12.046374,-77.042793" {
			t.Errorf("unexpected latlng %q", got)
		}
		if r.URL.Query().Get("key") == "" {
			t.Errorf("request is missing the api key")
		}
		fmt.Fprint(w, geocodeBody)
	}))
	defer srv.Close()

	c, err := NewClient("test-key", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	place, err := c.Reverse(context.Background(), -12.046374, -77.042793)
	if err != nil {
		t.Fatalf("Reverse failed: %v", err)
	}
	if place.Region != "Lima" || place.Subregion != "Lima" || place.Locality != "Miraflores" {
		t.Errorf("unexpected placemark %+v", place)
	}
}

func TestReverseDistrictWithoutLocalityComponent(t *testing.T) {
	// Some districts never geocode as a locality; the level-3 component then
	// carries the district name.
	body := `{
		"status": "OK",
		"results": [
			{
				"address_components": [
					{"long_name": "Chorrillos", "types": ["administrative_area_level_3", "political"]},
					{"long_name": "Lima", "types": ["administrative_area_level_2", "political"]},
					{"long_name": "Lima", "types": ["administrative_area_level_1", "political"]}
				]
			}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	c, err := NewClient("test-key", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	place, err := c.Reverse(context.Background(), -12.17, -77.02)
	if err != nil {
		t.Fatalf("Reverse failed: %v", err)
	}
	if place.Locality != "Chorrillos" {
		t.Errorf("locality = %q, want %q from the level-3 component", place.Locality, "Chorrillos")
	}
}

func TestReverseLocalityPreferredOverSublocality(t *testing.T) {
	body := `{
		"status": "OK",
		"results": [
			{
				"address_components": [
					{"long_name": "Barranco", "types": ["sublocality_level_1", "political"]},
					{"long_name": "Lima", "types": ["locality", "political"]}
				]
			}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	c, err := NewClient("test-key", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	place, err := c.Reverse(context.Background(), -12.14, -77.02)
	if err != nil {
		t.Fatalf("Reverse failed: %v", err)
	}
	if place.Locality != "Lima" {
		t.Errorf("locality = %q, a locality component should win over sublocality", place.Locality)
	}
}

func TestReverseZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "ZERO_RESULTS", "results": []}`)
	}))
	defer srv.Close()

	c, err := NewClient("test-key", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if _, err := c.Reverse(context.Background(), 0, 0); err == nil {
		t.Errorf("expected an error for ZERO_RESULTS")
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(""); err == nil {
		t.Errorf("expected an error for a missing api key")
	}
}
