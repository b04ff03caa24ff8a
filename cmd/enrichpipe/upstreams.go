package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/driveguide/enrichpipe/agent"
	"github.com/driveguide/enrichpipe/core"
	"github.com/driveguide/enrichpipe/route"
)

// httpDirections calls the Google Maps Directions API. The response shape
// is treated as an external collaborator's concern; only the fields the
// pipeline needs are extracted here.
type httpDirections struct {
	httpClient *http.Client
	apiKey     string
}

func newHTTPDirections(httpClient *http.Client) *httpDirections {
	return &httpDirections{httpClient: httpClient, apiKey: core.Secrets("GOOGLE_MAPS_API_KEY")}
}

func (d *httpDirections) GetDirections(ctx context.Context, origin, destination string) (route.DirectionsLeg, error) {
	endpoint := fmt.Sprintf("https://maps.googleapis.com/maps/api/directions/json?origin=%s&destination=%s&key=%s",
		url.QueryEscape(origin), url.QueryEscape(destination), d.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return route.DirectionsLeg{}, err
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return route.DirectionsLeg{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return route.DirectionsLeg{}, fmt.Errorf("directions upstream returned status %d", resp.StatusCode)
	}

	var body struct {
		Routes []struct {
			Legs []struct {
				Steps []struct {
					HTMLInstructions string `json:"html_instructions"`
					EndLocation      struct {
						Lat float64 `json:"lat"`
						Lng float64 `json:"lng"`
					} `json:"end_location"`
				} `json:"steps"`
			} `json:"legs"`
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return route.DirectionsLeg{}, err
	}
	if len(body.Routes) == 0 || len(body.Routes[0].Legs) == 0 {
		return route.DirectionsLeg{}, fmt.Errorf("directions upstream returned no route")
	}

	leg := route.DirectionsLeg{}
	for _, s := range body.Routes[0].Legs[0].Steps {
		leg.Steps = append(leg.Steps, route.DirectionsStep{
			HTMLInstructions: s.HTMLInstructions,
			EndLat:           s.EndLocation.Lat,
			EndLng:           s.EndLocation.Lng,
		})
	}
	return leg, nil
}

// httpGeocode reverse-geocodes coordinates via the Google Maps Geocoding API.
type httpGeocode struct {
	httpClient *http.Client
	apiKey     string
}

func newHTTPGeocode(httpClient *http.Client) *httpGeocode {
	return &httpGeocode{httpClient: httpClient, apiKey: core.Secrets("GOOGLE_MAPS_API_KEY")}
}

func (g *httpGeocode) ReverseGeocode(ctx context.Context, lat, lng float64) (string, string, error) {
	endpoint := fmt.Sprintf("https://maps.googleapis.com/maps/api/geocode/json?latlng=%f,%f&key=%s", lat, lng, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", "", err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("geocode upstream returned status %d", resp.StatusCode)
	}

	var body struct {
		Results []struct {
			FormattedAddress string `json:"formatted_address"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", "", err
	}
	if len(body.Results) == 0 {
		return "", "", fmt.Errorf("geocode upstream returned no results")
	}
	address := body.Results[0].FormattedAddress
	return address, address, nil
}

// mockUpstream returns deterministic search/fetch functions standing in
// for the real per-kind content APIs (YouTube, Spotify, Wikipedia, ...),
// which are external collaborators outside the pipeline's contract.
func mockUpstream(kind core.AgentType) (agent.SearchFunc, agent.FetchFunc) {
	search := func(ctx context.Context, query string, task core.Task) ([]core.Candidate, error) {
		return []core.Candidate{{
			ID:             fmt.Sprintf("%s-%s-1", kind, task.LocationName),
			Title:          fmt.Sprintf("%s about %s", query, task.LocationName),
			URL:            fmt.Sprintf("https://example.com/%s/%s", kind, task.LocationName),
			ViewCount:      1000,
			Popularity:     50,
			PublishedAt:    "",
			DurationSecond: 180,
		}}, nil
	}
	fetch := func(ctx context.Context, candidate core.Candidate, task core.Task) (map[string]interface{}, error) {
		metadata := map[string]interface{}{
			"title": candidate.Title,
			"url":   candidate.URL,
		}
		switch kind {
		case core.AgentVideo:
			metadata["description"] = "placeholder description"
			metadata["view_count"] = candidate.ViewCount
		case core.AgentSong:
			metadata["artist"] = "placeholder artist"
			metadata["album"] = "placeholder album"
		case core.AgentKnowledge:
			metadata["summary"] = "placeholder summary"
			metadata["source"] = candidate.Source
		}
		return metadata, nil
	}
	return search, fetch
}
