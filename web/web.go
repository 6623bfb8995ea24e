package web

import (
	"context"
	_ "embed"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	sweepy "github.com/alandotcom/sweepy"
	"github.com/alandotcom/sweepy/route"
)

//go:embed index.html
var indexHTML []byte

// Server is the browser-facing lookup API plus a small single page
// frontend.
type Server struct {
	Service *sweepy.Service

	router *gin.Engine
}

func NewServer(service *sweepy.Service) *Server {
	s := &Server{
		Service: service,
		router:  gin.New(),
	}
	s.router.Use(gin.Recovery(), cors())
	s.routes()
	return s
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) routes() {
	s.router.GET("/", s.index)

	api := s.router.Group("/api")
	api.GET("/health", s.health)
	api.POST("/address", s.lookupAddress)
	api.POST("/lookup", s.lookupPoint)
	api.GET("/calendar.ics", s.calendar)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
	log.Printf("web listening on %s", addr)

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func (s *Server) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type lookupResponse struct {
	Found   bool   `json:"found"`
	Text    string `json:"text"`
	Address string `json:"address,omitempty"`
}

type addressRequest struct {
	Address string `json:"address"`
}

// POST /api/address
func (s *Server) lookupAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		c.JSON(http.StatusOK, lookupResponse{Found: false, Text: "Please enter an address."})
		return
	}

	place, err := s.Service.Geocode(c.Request.Context(), address)
	if errors.Is(err, sweepy.ErrAddressNotFound) {
		c.JSON(http.StatusOK, lookupResponse{Found: false, Text: sweepy.MsgAddressNotFound})
		return
	}
	if err != nil {
		log.Printf("geocoding '%s': %v", address, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp, err := s.lookup(c.Request.Context(), place.X, place.Y)
	if err != nil {
		log.Printf("looking up '%s': %v", address, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	resp.Address = place.Label
	c.JSON(http.StatusOK, resp)
}

type pointRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// POST /api/lookup
func (s *Server) lookupPoint(c *gin.Context) {
	var req pointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	resp, err := s.lookup(c.Request.Context(), req.Lon, req.Lat)
	if err != nil {
		log.Printf("looking up (%f, %f): %v", req.Lon, req.Lat, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) lookup(ctx context.Context, x, y float64) (lookupResponse, error) {
	report, err := s.Service.LookupPoint(ctx, x, y)
	if errors.Is(err, route.ErrNoPostedRoutes) {
		return lookupResponse{Found: false, Text: sweepy.MsgNoRoutes}, nil
	}
	if err != nil {
		return lookupResponse{}, err
	}
	return lookupResponse{Found: true, Text: report.Text()}, nil
}
