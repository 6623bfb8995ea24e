package web

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alandotcom/sweepy/route"
)

const (
	calendarDefaultCount = 12
	calendarMaxCount     = 60
)

// GET /api/calendar.ics?lat=&lon=&count=
func (s *Server) calendar(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon are required"})
		return
	}

	count := calendarDefaultCount
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > calendarMaxCount {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("count must be between 1 and %d", calendarMaxCount)})
			return
		}
		count = n
	}

	report, err := s.Service.LookupPoint(c.Request.Context(), lon, lat)
	if errors.Is(err, route.ErrNoPostedRoutes) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no posted sweep routes at this location"})
		return
	}
	if err != nil {
		log.Printf("calendar (%f, %f): %v", lon, lat, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	dates, err := s.Service.UpcomingDates(report.Summary, count)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/calendar; charset=utf-8")
	c.Status(http.StatusOK)
	writeCalendar(c.Writer, report.Summary, dates)
}

// Emits a subscription feed: METHOD:PUBLISH, stable UIDs, all-day
// events. No attachment header, calendar apps need inline content to
// subscribe.
func writeCalendar(w io.Writer, summary *route.Summary, dates []time.Time) {
	fmt.Fprintln(w, "BEGIN:VCALENDAR")
	fmt.Fprintln(w, "VERSION:2.0")
	fmt.Fprintln(w, "PRODID:-//sweepy//street sweeping//EN")
	fmt.Fprintln(w, "METHOD:PUBLISH")
	fmt.Fprintf(w, "X-WR-CALNAME:Street Sweeping %s\n", summary.Street)
	fmt.Fprintln(w, "X-WR-TIMEZONE:America/Los_Angeles")
	fmt.Fprintln(w, "CALSCALE:GREGORIAN")
	fmt.Fprintln(w, "X-PUBLISHED-TTL:P1D")

	stamp := time.Now().UTC().Format("20060102T150405Z")
	street := strings.ReplaceAll(summary.Street, " ", "-")
	times := strings.Join(summary.Times, ", ")

	for _, date := range dates {
		fmt.Fprintln(w, "BEGIN:VEVENT")
		fmt.Fprintf(w, "UID:%s-%s@sweepy\n", date.Format("2006-01-02"), street)
		fmt.Fprintf(w, "DTSTAMP:%s\n", stamp)
		fmt.Fprintf(w, "DTSTART;VALUE=DATE:%s\n", date.Format("20060102"))
		fmt.Fprintf(w, "DTEND;VALUE=DATE:%s\n", date.AddDate(0, 0, 1).Format("20060102"))
		fmt.Fprintf(w, "SUMMARY:Street sweeping: %s\n", summary.Street)
		if times != "" {
			fmt.Fprintf(w, "DESCRIPTION:Sweeping %s. Move your car!\n", times)
		} else {
			fmt.Fprintln(w, "DESCRIPTION:Move your car!")
		}
		fmt.Fprintf(w, "LOCATION:%s\n", summary.Street)
		fmt.Fprintln(w, "END:VEVENT")
	}

	fmt.Fprintln(w, "END:VCALENDAR")
}
