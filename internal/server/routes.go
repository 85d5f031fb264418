package server

import "github.com/gin-gonic/gin"

func (s *Server) routes() {
	r := s.engine
	r.GET("/", s.index)
	r.GET("/healthz", s.health)
	r.GET("/ws", s.live)
	if s.metrics != nil && s.cfg.MetricsPath != "" {
		r.GET(s.cfg.MetricsPath, gin.WrapH(s.metrics.Handler()))
	}

	api := r.Group("/api")
	{
		api.GET("/snapshot", s.snapshot)
		api.POST("/refresh", s.refresh)
		api.GET("/buckets/:lower", s.click)
		api.POST("/buckets/:lower/highlight", s.hoverEnter)
		api.POST("/buckets/:lower/reset", s.hoverExit)
	}
}
