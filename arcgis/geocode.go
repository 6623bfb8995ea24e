package arcgis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

const DefaultGeocodeURL = "https://geocode.arcgis.com/arcgis/rest/services/World/GeocodeServer/findAddressCandidates"

// Bias point (downtown LA) and radius in meters for candidate
// searches.
const (
	geocodeBiasLocation = "-118.25,34.05"
	geocodeBiasDistance = "50000"
)

var ErrAddressNotFound = errors.New("no matching address found")

// A geocoded address. X is longitude, Y latitude.
type Placemark struct {
	X     float64
	Y     float64
	Label string
	Score float64
}

// Geocoder resolves address text to coordinates via the ArcGIS World
// Geocoder. An API key is optional but raises the free quota.
type Geocoder struct {
	URL    string
	APIKey string
	Client *http.Client
}

func NewGeocoder(apiKey string) *Geocoder {
	return &Geocoder{
		URL:    DefaultGeocodeURL,
		APIKey: apiKey,
		Client: &http.Client{Timeout: DefaultTimeout},
	}
}

// Resolves an address to its best candidate, by score. Returns
// ErrAddressNotFound if the service has no candidates at all. Callers
// decide how low a score they'll accept.
func (g *Geocoder) Locate(ctx context.Context, address string) (*Placemark, error) {
	params := url.Values{}
	params.Set("f", "json")
	params.Set("singleLine", address)
	params.Set("outFields", "Match_addr,Addr_type")
	params.Set("maxLocations", "5")
	params.Set("location", geocodeBiasLocation)
	params.Set("distance", geocodeBiasDistance)
	if g.APIKey != "" {
		params.Set("token", g.APIKey)
	}

	var payload struct {
		Candidates []struct {
			Score    float64 `json:"score"`
			Location struct {
				X float64 `json:"x"`
				Y float64 `json:"y"`
			} `json:"location"`
			Attributes struct {
				MatchAddr string `json:"Match_addr"`
			} `json:"attributes"`
		} `json:"candidates"`
		Error *apiError `json:"error"`
	}
	if err := getJSON(ctx, g.Client, g.URL, params, &payload); err != nil {
		return nil, fmt.Errorf("geocoding: %w", err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("geocoding: %w", payload.Error)
	}

	if len(payload.Candidates) == 0 {
		return nil, ErrAddressNotFound
	}

	best := payload.Candidates[0]
	for _, c := range payload.Candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}

	label := best.Attributes.MatchAddr
	if label == "" {
		label = address
	}

	return &Placemark{
		X:     best.Location.X,
		Y:     best.Location.Y,
		Label: label,
		Score: best.Score,
	}, nil
}
