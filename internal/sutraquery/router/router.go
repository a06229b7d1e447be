// Package router provides SutraQuery service routing.
package router

import (
	"github.com/kart-io/logger"

	"github.com/ISHANT57/Gita-Chatbot/internal/sutraquery/handler"
	"github.com/ISHANT57/Gita-Chatbot/pkg/infra/server"
)

// Register registers the SutraQuery service routes.
func Register(mgr *server.Manager, h *handler.Handler) error {
	logger.Info("Registering SutraQuery routes...")

	httpServer := mgr.HTTPServer()
	if httpServer == nil {
		return nil
	}

	engine := httpServer.Engine()

	engine.GET("/healthz", h.Healthz)

	api := engine.Group("/api")
	{
		api.POST("/search", h.Search)
		api.GET("/verse/:chapter/:verse", h.Verse)
		api.GET("/stats", h.Stats)
		api.POST("/initialize", h.Initialize)
	}

	logger.Info("HTTP routes registered")
	return nil
}
