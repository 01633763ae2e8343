package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kpenchev/tvprograma-go/internal/config"
	"github.com/kpenchev/tvprograma-go/internal/constants"
	"github.com/kpenchev/tvprograma-go/internal/service"
	"github.com/kpenchev/tvprograma-go/internal/service/cache"
	"github.com/kpenchev/tvprograma-go/internal/service/catalog"
	"github.com/kpenchev/tvprograma-go/internal/service/exclusion"
	"go.uber.org/zap"
)

// Deps collects everything the HTTP layer talks to. The server owns no
// business logic; handlers translate between HTTP and the services.
type Deps struct {
	Fetcher    *service.Fetcher
	Programs   *service.ProgramRepository
	Channels   *service.ChannelRepository
	Annotator  *service.Annotator
	Aggregator *service.FilmAggregator
	Catalog    *catalog.Catalog
	Exclusions *exclusion.Store
	Cache      *cache.Service
}

type Server struct {
	cfg    *config.Config
	deps   Deps
	logger *zap.Logger
	http   *http.Server
}

func New(cfg *config.Config, deps Deps, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	s.registerRoutes(router)

	s.http = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	return s
}

func (s *Server) registerRoutes(router *gin.Engine) {
	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	{
		api.GET("/config", s.handleConfig)
		api.GET("/status", s.handleStatus)
		api.POST("/fetch", s.handleFetch)

		api.GET("/programs", s.handlePrograms)
		api.GET("/programs/7days", s.handleProgramsWindow)

		api.GET("/channels", s.handleChannels)
		api.GET("/channels/active", s.handleActiveChannels)
		api.PUT("/channels", s.handleUpdateChannels)
		api.POST("/channels/:id/toggle", s.handleToggleChannel)

		api.GET("/oscars", s.handleOscars)
		api.GET("/oscars/catalog", s.handleOscarsCatalog)

		api.GET("/exclusions", s.handleListExclusions)
		api.POST("/exclusions", s.handleAddExclusion)
		api.DELETE("/exclusions", s.handleRemoveExclusion)
	}
}

// Run blocks until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.HTTPConfig.ServerShutdown)
	defer cancel()
	return s.http.Shutdown(ctx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
