package sweepy

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/alandotcom/sweepy/arcgis"
	"github.com/alandotcom/sweepy/holiday"
	"github.com/alandotcom/sweepy/metrics"
	"github.com/alandotcom/sweepy/route"
	"github.com/alandotcom/sweepy/schedule"
)

const (
	// Geocode candidates scoring below this are treated as not found.
	MinGeocodeScore = 70

	// Spatial lookup radii in feet. The tight envelope goes first,
	// the wide one is the retry when it comes up empty.
	initialRadiusFt = 200
	retryRadiusFt   = 500

	// Upcoming dates carried on a report.
	reportDates = 4
)

// StreetsLA's public sweeping map.
const DashboardURL = "https://labss.maps.arcgis.com/apps/dashboards/ad01106434a443a69924c54f1e8edbf7"

var ErrAddressNotFound = errors.New("address not found")

// Geocoder resolves address text to coordinates.
type Geocoder interface {
	Locate(ctx context.Context, address string) (*arcgis.Placemark, error)
}

// Service answers street sweeping lookups. It glues the geocoder,
// the routes source, the holiday calendar and the schedule engine
// together, and is what every transport talks to.
type Service struct {
	Geocoder Geocoder
	Routes   route.Source
	Holidays holiday.Calendar
	Location *time.Location
	Metrics  *metrics.Metrics

	// Now is the clock, swappable in tests.
	Now func() time.Time
}

// Outcome of a successful lookup, ready for a transport to render.
type Report struct {
	Label      string // geocoded address, or raw coordinates
	Summary    *route.Summary
	SweepToday bool
	NextDates  []time.Time
}

func NewService(geocoder Geocoder, routes route.Source, holidays holiday.Calendar) (*Service, error) {
	location, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		return nil, fmt.Errorf("loading timezone: %w", err)
	}

	return &Service{
		Geocoder: geocoder,
		Routes:   routes,
		Holidays: holidays,
		Location: location,
		Now:      time.Now,
	}, nil
}

var laPattern = regexp.MustCompile(`(?i)\b(los angeles|la)\b`)

// Appends ", Los Angeles, CA" unless the address already mentions LA.
func NormalizeAddress(address string) string {
	if laPattern.MatchString(address) {
		return address
	}
	return address + ", Los Angeles, CA"
}

// Resolves an address to a trusted placemark. Returns
// ErrAddressNotFound when no candidate scores at least
// MinGeocodeScore.
func (s *Service) Geocode(ctx context.Context, address string) (*arcgis.Placemark, error) {
	place, err := s.Geocoder.Locate(ctx, NormalizeAddress(address))
	if errors.Is(err, arcgis.ErrAddressNotFound) {
		// The service answered, it just has no candidates.
		s.Metrics.CountUpstream("geocoder", nil)
		s.Metrics.CountLookup("address_not_found")
		return nil, ErrAddressNotFound
	}
	s.Metrics.CountUpstream("geocoder", err)
	if err != nil {
		s.Metrics.CountLookup("geocoder_error")
		return nil, fmt.Errorf("locating address: %w", err)
	}
	if place.Score < MinGeocodeScore {
		s.Metrics.CountLookup("address_not_found")
		return nil, fmt.Errorf("%w: best candidate scored %.0f", ErrAddressNotFound, place.Score)
	}
	return place, nil
}

// Resolves an address and looks up its sweeping schedule.
func (s *Service) LookupAddress(ctx context.Context, address string) (*Report, error) {
	place, err := s.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	report, err := s.LookupPoint(ctx, place.X, place.Y)
	if err != nil {
		return nil, err
	}
	report.Label = place.Label
	return report, nil
}

// Looks up the sweeping schedule around a point. x is longitude, y
// latitude.
func (s *Service) LookupPoint(ctx context.Context, x, y float64) (*Report, error) {
	started := time.Now()

	records, err := s.Routes.Query(ctx, route.NewEnvelope(x, y, initialRadiusFt))
	s.Metrics.CountUpstream("routes", err)
	if err != nil {
		s.Metrics.CountLookup("routes_error")
		return nil, fmt.Errorf("querying routes: %w", err)
	}
	if len(records) == 0 {
		records, err = s.Routes.Query(ctx, route.NewEnvelope(x, y, retryRadiusFt))
		s.Metrics.CountUpstream("routes", err)
		if err != nil {
			s.Metrics.CountLookup("routes_error")
			return nil, fmt.Errorf("querying routes: %w", err)
		}
	}

	summary, err := route.Consolidate(records)
	if errors.Is(err, route.ErrNoPostedRoutes) {
		s.Metrics.CountLookup("no_routes")
		return nil, err
	}
	if err != nil {
		// Data quality: the layer served a schedule we can't parse.
		s.Metrics.CountLookup("bad_schedule")
		return nil, fmt.Errorf("consolidating routes: %w", err)
	}

	now := s.now()

	sweepToday := false
	for _, sch := range summary.Schedules {
		if schedule.IsSweepToday(now, sch.Day, sch.Parity, s.Holidays) {
			sweepToday = true
			break
		}
	}

	dates, err := s.UpcomingDates(summary, reportDates)
	if err != nil {
		s.Metrics.CountLookup("horizon_exhausted")
		return nil, err
	}

	s.Metrics.CountLookup("ok")
	s.Metrics.ObserveLookupDuration(time.Since(started))

	return &Report{
		Label:      fmt.Sprintf("%.5f, %.5f", y, x),
		Summary:    summary,
		SweepToday: sweepToday,
		NextDates:  dates,
	}, nil
}

// Returns the next count sweep dates for a summary, merged across its
// posted days in chronological order.
func (s *Service) UpcomingDates(summary *route.Summary, count int) ([]time.Time, error) {
	now := s.now()

	all := []time.Time{}
	for _, sch := range summary.Schedules {
		dates, err := schedule.NextSweepDates(now, sch.Day, sch.Parity, s.Holidays, count)
		if err != nil {
			return nil, fmt.Errorf("computing sweep dates: %w", err)
		}
		all = append(all, dates...)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].Before(all[j])
	})
	if len(all) > count {
		all = all[:count]
	}
	return all, nil
}

// Wall clock time in LA. All schedule math keys off this.
func (s *Service) now() time.Time {
	clock := s.Now
	if clock == nil {
		clock = time.Now
	}
	return clock().In(s.Location)
}
