package arcgis

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/alandotcom/sweepy/route"
)

// Layer 0 is Centerlines_Centroid_Routes_v2, centerlines with the
// sweep schedule joined on.
const DefaultRoutesURL = "https://services5.arcgis.com/7nsPwEMP38bSkCjy/arcgis/rest/services/Clean_Street_Routes/FeatureServer/0/query"

const routeOutFields = "Route,Posted_Day,Posted_Time,Boundaries,Weeks,Day_Short,STNAME,TDIR,STSFX"

// RouteServer queries the city's sweeping routes feature layer. It
// implements route.Source.
type RouteServer struct {
	URL    string
	Client *http.Client
}

func NewRouteServer() *RouteServer {
	return &RouteServer{
		URL:    DefaultRoutesURL,
		Client: &http.Client{Timeout: DefaultTimeout},
	}
}

func (s *RouteServer) Query(ctx context.Context, env route.Envelope) ([]route.Record, error) {
	geometry := strings.Join([]string{
		strconv.FormatFloat(env.XMin, 'f', -1, 64),
		strconv.FormatFloat(env.YMin, 'f', -1, 64),
		strconv.FormatFloat(env.XMax, 'f', -1, 64),
		strconv.FormatFloat(env.YMax, 'f', -1, 64),
	}, ",")

	params := url.Values{}
	params.Set("f", "json")
	params.Set("geometry", geometry)
	params.Set("geometryType", "esriGeometryEnvelope")
	params.Set("inSR", "4326")
	params.Set("spatialRel", "esriSpatialRelIntersects")
	params.Set("outFields", routeOutFields)
	params.Set("returnGeometry", "false")
	params.Set("resultRecordCount", "10")

	var payload struct {
		Features []struct {
			Attributes struct {
				Route      string `json:"Route"`
				PostedDay  string `json:"Posted_Day"`
				PostedTime string `json:"Posted_Time"`
				Boundaries string `json:"Boundaries"`
				Weeks      string `json:"Weeks"`
				DayShort   string `json:"Day_Short"`
				StreetName string `json:"STNAME"`
				StreetDir  string `json:"TDIR"`
				StreetSfx  string `json:"STSFX"`
			} `json:"attributes"`
		} `json:"features"`
		Error *apiError `json:"error"`
	}
	if err := getJSON(ctx, s.Client, s.URL, params, &payload); err != nil {
		return nil, fmt.Errorf("querying routes: %w", err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("querying routes: %w", payload.Error)
	}

	records := []route.Record{}
	for _, f := range payload.Features {
		records = append(records, route.Record{
			Route:      f.Attributes.Route,
			PostedDay:  f.Attributes.PostedDay,
			PostedTime: f.Attributes.PostedTime,
			Boundaries: f.Attributes.Boundaries,
			Weeks:      f.Attributes.Weeks,
			DayShort:   f.Attributes.DayShort,
			StreetName: f.Attributes.StreetName,
			StreetDir:  f.Attributes.StreetDir,
			StreetSfx:  f.Attributes.StreetSfx,
		})
	}

	return records, nil
}
