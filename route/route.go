package route

import (
	"context"
)

// Degrees of longitude/latitude per foot. Close enough at LA's
// latitude for the small radii involved.
const degreesPerFoot = 0.000003

// Attributes of a sweeping route record, as the city's routes layer
// publishes them.
type Record struct {
	Route      string
	PostedDay  string
	PostedTime string
	Boundaries string
	Weeks      string
	DayShort   string
	StreetName string
	StreetDir  string
	StreetSfx  string
}

// A bounding box in WGS84 degrees, x is longitude and y latitude.
//
// The routes layer rejects point-buffer queries (the units param),
// so all spatial lookups go through envelopes instead.
type Envelope struct {
	XMin float64
	YMin float64
	XMax float64
	YMax float64
}

// Envelope centered on a point, with a radius given in feet.
func NewEnvelope(x, y, radiusFt float64) Envelope {
	offset := radiusFt * degreesPerFoot
	return Envelope{
		XMin: x - offset,
		YMin: y - offset,
		XMax: x + offset,
		YMax: y + offset,
	}
}

func (e Envelope) Contains(x, y float64) bool {
	return x >= e.XMin && x <= e.XMax && y >= e.YMin && y <= e.YMax
}

func (e Envelope) Center() (x, y float64) {
	return (e.XMin + e.XMax) / 2, (e.YMin + e.YMax) / 2
}

// Source answers spatial queries against the sweeping routes layer.
type Source interface {
	Query(ctx context.Context, env Envelope) ([]Record, error)
}
