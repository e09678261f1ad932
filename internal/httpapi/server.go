// Package httpapi exposes the homily services over a JSON API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/homilybuild/homily/internal/service"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

// Deps are the collaborators the router serves.
type Deps struct {
	Homilies service.HomilyService
	Contexts service.ContextService
	Settings service.SettingsService
	Wizards  service.WizardService
	Archives service.ArchiveService

	// JWTSecret enables bearer-token authentication. When empty the
	// X-Owner-ID header, then DevOwnerID, identifies the caller.
	JWTSecret   string
	DevOwnerID  string
	CORSOrigins []string
	// Metrics registers the gin_* Prometheus collectors and /metrics.
	// Collectors register globally, so only one router per process may
	// enable it.
	Metrics bool
	Logger  *zap.Logger
}

type handler struct {
	homilies service.HomilyService
	contexts service.ContextService
	settings service.SettingsService
	wizards  service.WizardService
	archives service.ArchiveService
	logger   *zap.Logger
}

// NewRouter builds the gin engine with middleware and routes.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	h := &handler{
		homilies: d.Homilies,
		contexts: d.Contexts,
		settings: d.Settings,
		wizards:  d.Wizards,
		archives: d.Archives,
		logger:   d.Logger.Named("http"),
	}

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(accessLogger(h.logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(d.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = d.CORSOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", headerOwnerID}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Must precede route registration: gin copies the middleware chain into
	// each route as it is added.
	if d.Metrics {
		ginprometheus.NewPrometheus("gin").Use(router)
	}

	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", health)
	router.HEAD("/health", health)

	api := router.Group("/api")
	api.Use(authenticate(d.JWTSecret, d.DevOwnerID, h.logger))
	h.registerHomilyRoutes(api)
	h.registerWizardRoutes(api)
	h.registerContextRoutes(api)
	h.registerSettingsRoutes(api)
	h.registerArchiveRoutes(api)
	return router
}

// Server runs the router until its context is cancelled.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

func NewServer(addr string, router http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		srv: &http.Server{
			Addr:        addr,
			Handler:     router,
			ReadTimeout: 15 * time.Second,
			// generation calls can run for minutes
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
