package arcgis

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alandotcom/sweepy/route"
)

func TestGeocoderLocate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "json", q.Get("f"))
		assert.Equal(t, "4370 Sunset Blvd, Los Angeles, CA", q.Get("singleLine"))
		assert.Equal(t, "-118.25,34.05", q.Get("location"))
		assert.Equal(t, "50000", q.Get("distance"))
		assert.Equal(t, "secret", q.Get("token"))

		fmt.Fprint(w, `{
			"candidates": [
				{
					"score": 82.5,
					"location": {"x": -118.29, "y": 34.09},
					"attributes": {"Match_addr": "4370 Sunset Blvd Apt 2"}
				},
				{
					"score": 98.1,
					"location": {"x": -118.28381, "y": 34.09768},
					"attributes": {"Match_addr": "4370 W Sunset Blvd, Los Angeles, California, 90029"}
				}
			]
		}`)
	}))
	defer server.Close()

	g := NewGeocoder("secret")
	g.URL = server.URL

	p, err := g.Locate(context.Background(), "4370 Sunset Blvd, Los Angeles, CA")
	require.NoError(t, err)

	assert.Equal(t, -118.28381, p.X)
	assert.Equal(t, 34.09768, p.Y)
	assert.Equal(t, "4370 W Sunset Blvd, Los Angeles, California, 90029", p.Label)
	assert.Equal(t, 98.1, p.Score)
}

func TestGeocoderNoToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["token"]
		assert.False(t, present)
		fmt.Fprint(w, `{"candidates": []}`)
	}))
	defer server.Close()

	g := NewGeocoder("")
	g.URL = server.URL

	_, err := g.Locate(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestGeocoderErrors(t *testing.T) {
	for _, tc := range []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			"api error in 200 body",
			func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"error": {"code": 498, "message": "Invalid token"}}`)
			},
		},
		{
			"http error",
			func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusBadGateway)
			},
		},
		{
			"garbage body",
			func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `not even json`)
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			g := NewGeocoder("")
			g.URL = server.URL

			_, err := g.Locate(context.Background(), "123 Main St")
			assert.Error(t, err)
			assert.NotErrorIs(t, err, ErrAddressNotFound)
		})
	}
}

func TestRouteServerQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "json", q.Get("f"))
		assert.Equal(t, "esriGeometryEnvelope", q.Get("geometryType"))
		assert.Equal(t, "4326", q.Get("inSR"))
		assert.Equal(t, "esriSpatialRelIntersects", q.Get("spatialRel"))
		assert.Equal(t, "false", q.Get("returnGeometry"))
		assert.Equal(t, "10", q.Get("resultRecordCount"))
		assert.Equal(t, routeOutFields, q.Get("outFields"))

		corners := strings.Split(q.Get("geometry"), ",")
		require.Len(t, corners, 4)
		expected := []float64{-118.2506, 34.0494, -118.2494, 34.0506}
		for i, c := range corners {
			v, err := strconv.ParseFloat(c, 64)
			require.NoError(t, err)
			assert.InDelta(t, expected[i], v, 1e-9)
		}

		fmt.Fprint(w, `{
			"features": [
				{
					"attributes": {
						"Route": "N5123",
						"Posted_Day": "Tuesday",
						"Posted_Time": "10am-1pm",
						"Boundaries": "Sunset Blvd to Fountain Ave",
						"Weeks": "2 & 4",
						"Day_Short": "Tue",
						"STNAME": "Valerio",
						"TDIR": "W",
						"STSFX": "St"
					}
				},
				{
					"attributes": {
						"Route": "N5124",
						"Posted_Day": null,
						"Posted_Time": null,
						"Boundaries": null,
						"Weeks": null,
						"Day_Short": null,
						"STNAME": "Valerio",
						"TDIR": null,
						"STSFX": "St"
					}
				}
			]
		}`)
	}))
	defer server.Close()

	s := NewRouteServer()
	s.URL = server.URL

	records, err := s.Query(context.Background(), route.NewEnvelope(-118.25, 34.05, 200))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, route.Record{
		Route:      "N5123",
		PostedDay:  "Tuesday",
		PostedTime: "10am-1pm",
		Boundaries: "Sunset Blvd to Fountain Ave",
		Weeks:      "2 & 4",
		DayShort:   "Tue",
		StreetName: "Valerio",
		StreetDir:  "W",
		StreetSfx:  "St",
	}, records[0])

	// Null attributes come through as empty strings.
	assert.Equal(t, "", records[1].PostedDay)
	assert.Equal(t, "Valerio", records[1].StreetName)
}

func TestRouteServerEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"features": []}`)
	}))
	defer server.Close()

	s := NewRouteServer()
	s.URL = server.URL

	records, err := s.Query(context.Background(), route.NewEnvelope(-118.25, 34.05, 200))
	require.NoError(t, err)
	assert.Empty(t, records)
}

// The layer reports failures with a 200 status and an error member in
// the body. Those must not pass for "no routes here".
func TestRouteServerAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error": {"code": 400, "message": "Unable to complete operation."}}`)
	}))
	defer server.Close()

	s := NewRouteServer()
	s.URL = server.URL

	_, err := s.Query(context.Background(), route.NewEnvelope(-118.25, 34.05, 200))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unable to complete operation")
}
