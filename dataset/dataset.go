package dataset

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/spkg/bom"

	"github.com/alandotcom/sweepy/route"
	"github.com/alandotcom/sweepy/schedule"
)

// Matches the live layer's resultRecordCount.
const queryLimit = 10

type routeCSV struct {
	X          float64 `csv:"X"`
	Y          float64 `csv:"Y"`
	Route      string  `csv:"Route"`
	PostedDay  string  `csv:"Posted_Day"`
	PostedTime string  `csv:"Posted_Time"`
	Boundaries string  `csv:"Boundaries"`
	Weeks      string  `csv:"Weeks"`
	DayShort   string  `csv:"Day_Short"`
	StreetName string  `csv:"STNAME"`
	StreetDir  string  `csv:"TDIR"`
	StreetSfx  string  `csv:"STSFX"`
}

type centroidRecord struct {
	X      float64
	Y      float64
	Record route.Record
}

// Snapshot is an offline copy of the sweeping routes layer, loaded
// from a centroid CSV export. It implements route.Source, so lookups
// can run without the live FeatureServer.
type Snapshot struct {
	records []centroidRecord
}

// Loads a snapshot from CSV. Rows carrying a posted day must have a
// parseable schedule; bad rows fail the load, not a later lookup.
func Load(r io.Reader) (*Snapshot, error) {
	// LazyCSVReader survives sloppy quoting in exports. The BOM
	// reader strips unicode BOMs if present.
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		return gocsv.LazyCSVReader(bom.NewReader(in))
	})

	rows := []*routeCSV{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, errors.Wrap(err, "unmarshaling routes csv")
	}

	snapshot := &Snapshot{}
	for i, row := range rows {
		if row.Route == "" {
			return nil, fmt.Errorf("empty Route (row %d)", i+1)
		}
		if row.X < -180 || row.X > 180 || row.Y < -90 || row.Y > 90 {
			return nil, fmt.Errorf("centroid out of range (row %d)", i+1)
		}

		if row.PostedDay != "" {
			if _, err := schedule.ParseWeekday(row.PostedDay); err != nil {
				return nil, errors.Wrapf(err, "parsing Posted_Day (row %d)", i+1)
			}
			if _, err := schedule.ParseParity(row.Weeks); err != nil {
				return nil, errors.Wrapf(err, "parsing Weeks (row %d)", i+1)
			}
		}

		snapshot.records = append(snapshot.records, centroidRecord{
			X: row.X,
			Y: row.Y,
			Record: route.Record{
				Route:      row.Route,
				PostedDay:  row.PostedDay,
				PostedTime: row.PostedTime,
				Boundaries: row.Boundaries,
				Weeks:      row.Weeks,
				DayShort:   row.DayShort,
				StreetName: row.StreetName,
				StreetDir:  row.StreetDir,
				StreetSfx:  row.StreetSfx,
			},
		})
	}

	return snapshot, nil
}

func LoadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening routes csv")
	}
	defer f.Close()

	return Load(f)
}

func (s *Snapshot) Len() int {
	return len(s.records)
}

// Returns records whose centroid falls inside the envelope, nearest
// to its center first.
func (s *Snapshot) Query(_ context.Context, env route.Envelope) ([]route.Record, error) {
	cx, cy := env.Center()

	hits := []centroidRecord{}
	for _, r := range s.records {
		if env.Contains(r.X, r.Y) {
			hits = append(hits, r)
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		a := haversineDistance(hits[i].Y, hits[i].X, cy, cx)
		b := haversineDistance(hits[j].Y, hits[j].X, cy, cx)
		return a < b
	})

	if len(hits) > queryLimit {
		hits = hits[:queryLimit]
	}

	records := []route.Record{}
	for _, h := range hits {
		records = append(records, h.Record)
	}
	return records, nil
}

func haversineDistance(aLat, aLon, bLat, bLon float64) float64 {
	const earthRadiusKm = 6371

	aLatRad := aLat * math.Pi / 180
	aLonRad := aLon * math.Pi / 180
	bLatRad := bLat * math.Pi / 180
	bLonRad := bLon * math.Pi / 180
	deltaLat := aLatRad - bLatRad
	deltaLon := aLonRad - bLonRad

	a := math.Cos(aLatRad)*math.Cos(bLatRad)*math.Pow(math.Sin(deltaLon/2), 2) + math.Pow(math.Sin(deltaLat/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return c * earthRadiusKm
}
