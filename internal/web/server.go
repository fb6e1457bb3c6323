package web

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/ifaizanrathore/workora-eta-engine/internal/core"
)

// Service is the engine surface the handlers depend on.
// Implementations: core.Engine
type Service interface {
	SetEta(ctx context.Context, req core.SetEtaRequest) (*core.Record, error)
	ExtendEta(ctx context.Context, req core.ExtendEtaRequest) (*core.Record, error)
	MarkComplete(ctx context.Context, taskID, userID string) (*core.Record, error)
	Get(ctx context.Context, taskID string) (*core.Record, error)
}

// Server is the accountability API server
type Server struct {
	service  Service
	settings core.Config
	clock    core.Clock
	router   *gin.Engine
}

// NewServer creates a new API server
func NewServer(service Service, settings core.Config) *Server {
	router := gin.Default()

	s := &Server{
		service:  service,
		settings: settings,
		clock:    core.NewSystemClock(),
		router:   router,
	}
	s.registerRoutes(router)
	return s
}

func (s *Server) registerRoutes(router *gin.Engine) {
	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/tasks/:id/eta", s.handleSetEta)
		api.POST("/tasks/:id/eta/extend", s.handleExtendEta)
		api.POST("/tasks/:id/complete", s.handleComplete)
		api.GET("/tasks/:id/accountability", s.handleGetAccountability)
		api.GET("/settings", s.handleSettings)
	}
}

// Run starts the API server
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
