package arcgis

// Clients for the ArcGIS REST services backing lookups: the World
// Geocoder and the city's Clean_Street_Routes feature layer.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const DefaultTimeout = 15 * time.Second

// ArcGIS reports failures in a 200 response carrying an error
// member, so a status check alone isn't enough.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("arcgis error %d: %s", e.Code, e.Message)
}

func getJSON(ctx context.Context, client *http.Client, rawURL string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
