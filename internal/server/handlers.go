package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quakeview/internal/render/mapview"
)

type pageData struct {
	TileURL     string
	Attribution string
	ChartWidth  float64
	ChartHeight float64
	Bounds      [2][2]float64
}

func (s *Server) index(c *gin.Context) {
	geom := s.dash.ChartGeometry()
	c.HTML(http.StatusOK, "page", pageData{
		TileURL:     s.cfg.TileURL,
		Attribution: s.cfg.Attribution,
		ChartWidth:  geom.Width,
		ChartHeight: geom.Height,
		Bounds:      mapview.WorldBounds,
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, s.dash.Snapshot())
}

func (s *Server) refresh(c *gin.Context) {
	s.refresher.Trigger()
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func (s *Server) hoverEnter(c *gin.Context) {
	lower, ok := bucketParam(c)
	if !ok {
		return
	}
	snap, found := s.dash.Highlight(lower)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown bucket"})
		return
	}
	s.metrics.ObserveInteraction("hover_enter")
	s.hub.Broadcast(snap)
	c.JSON(http.StatusOK, snap)
}

func (s *Server) hoverExit(c *gin.Context) {
	lower, ok := bucketParam(c)
	if !ok {
		return
	}
	snap, found := s.dash.Reset(lower)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown bucket"})
		return
	}
	s.metrics.ObserveInteraction("hover_exit")
	s.hub.Broadcast(snap)
	c.JSON(http.StatusOK, snap)
}

func (s *Server) click(c *gin.Context) {
	lower, ok := bucketParam(c)
	if !ok {
		return
	}
	detail, found := s.dash.Click(lower)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown bucket"})
		return
	}
	s.metrics.ObserveInteraction("click")
	c.JSON(http.StatusOK, detail)
}

func (s *Server) live(c *gin.Context) {
	s.hub.ServeWS(c.Writer, c.Request, s.dash.Snapshot)
}

func bucketParam(c *gin.Context) (int, bool) {
	lower, err := strconv.Atoi(c.Param("lower"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bucket must be an integer"})
		return 0, false
	}
	return lower, true
}
