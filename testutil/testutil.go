package testutil

// Fakes and fixtures shared by tests.

import (
	"context"

	"github.com/alandotcom/sweepy/arcgis"
	"github.com/alandotcom/sweepy/route"
)

// Geocoder hands back a canned placemark and records every address it
// is asked to resolve.
type Geocoder struct {
	Place *arcgis.Placemark
	Err   error

	Addresses []string
}

func (g *Geocoder) Locate(_ context.Context, address string) (*arcgis.Placemark, error) {
	g.Addresses = append(g.Addresses, address)
	if g.Err != nil {
		return nil, g.Err
	}
	return g.Place, nil
}

// RouteSource serves one canned record set per query, then empty sets.
type RouteSource struct {
	Results [][]route.Record
	Err     error

	Envelopes []route.Envelope
}

func (s *RouteSource) Query(_ context.Context, env route.Envelope) ([]route.Record, error) {
	s.Envelopes = append(s.Envelopes, env)
	if s.Err != nil {
		return nil, s.Err
	}
	if len(s.Results) == 0 {
		return []route.Record{}, nil
	}
	records := s.Results[0]
	s.Results = s.Results[1:]
	return records, nil
}

// ValerioRecords is a single posted route swept on 2nd & 4th Tuesdays.
func ValerioRecords() []route.Record {
	return []route.Record{
		{
			Route:      "N5123",
			PostedDay:  "Tuesday",
			PostedTime: "10am-1pm",
			Weeks:      "2 & 4",
			StreetName: "Valerio",
			StreetDir:  "W",
			StreetSfx:  "St",
		},
	}
}

// SunsetPlacemark is a high-confidence geocode in central LA.
func SunsetPlacemark() *arcgis.Placemark {
	return &arcgis.Placemark{
		X:     -118.28381,
		Y:     34.09768,
		Label: "4370 W Sunset Blvd, Los Angeles, California, 90029",
		Score: 98.1,
	}
}
