package server

import (
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"quakeview/internal/dashboard"
	"quakeview/internal/logger"
	"quakeview/internal/observability"
)

// DefaultTileURL is the OpenStreetMap raster tile template.
const DefaultTileURL = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"

// DefaultAttribution credits the tile provider.
const DefaultAttribution = "&copy; OpenStreetMap contributors"

// Refresher accepts manual refresh requests.
type Refresher interface {
	Trigger()
}

// Config configures the UI surface.
type Config struct {
	TileURL     string
	Attribution string
	MetricsPath string // empty disables /metrics
	Debug       bool
}

// Server serves the page, the JSON API and the live websocket.
type Server struct {
	cfg       Config
	dash      *dashboard.Dashboard
	refresher Refresher
	metrics   *observability.Collector
	hub       *Hub
	engine    *gin.Engine
}

// New builds the server and its routes. metrics may be nil.
func New(cfg Config, dash *dashboard.Dashboard, refresher Refresher, metrics *observability.Collector, hub *Hub) *Server {
	if cfg.TileURL == "" {
		cfg.TileURL = DefaultTileURL
	}
	if cfg.Attribution == "" {
		cfg.Attribution = DefaultAttribution
	}
	if hub == nil {
		hub = NewHub()
	}
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())
	engine.SetHTMLTemplate(template.Must(template.New("page").Parse(tmplPage)))

	s := &Server{
		cfg:       cfg,
		dash:      dash,
		refresher: refresher,
		metrics:   metrics,
		hub:       hub,
		engine:    engine,
	}
	s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugf("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}
