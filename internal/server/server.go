package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"

	"github.com/lissto-dev/composer/internal/api/common"
	"github.com/lissto-dev/composer/internal/api/generate"
	"github.com/lissto-dev/composer/internal/api/importer"
	"github.com/lissto-dev/composer/internal/middleware"
	"github.com/lissto-dev/composer/pkg/cache"
	"github.com/lissto-dev/composer/pkg/config"
	"github.com/lissto-dev/composer/pkg/kompose"
	"github.com/lissto-dev/composer/pkg/logging"
)

// VersionInfo contains build version information
type VersionInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// Server represents the API server
type Server struct {
	echo        *echo.Echo
	config      *config.Config
	instanceID  string
	pool        *kompose.Pool
	cache       cache.Cache
	versionInfo *VersionInfo
}

// NewConverter builds the configured kompose backend
func NewConverter(cfg config.KomposeConfig) (kompose.Converter, error) {
	var opts []kompose.Option
	if cfg.AccessMode != "" {
		opts = append(opts, kompose.WithPVCAccessMode(corev1.PersistentVolumeAccessMode(cfg.AccessMode)))
	}
	return kompose.NewConverter(cfg.Backend, cfg.Binary, cfg.Namespace, opts...)
}

// New wires handlers around converter and registers all routes on e
func New(
	e *echo.Echo,
	cfg *config.Config,
	converter kompose.Converter,
	instanceID string, // instance ID reported in headers and /health?info=true
	versionInfo *VersionInfo,
) *Server {
	if versionInfo == nil {
		versionInfo = &VersionInfo{}
	}
	srv := &Server{
		echo:        e,
		config:      cfg,
		instanceID:  instanceID,
		versionInfo: versionInfo,
	}

	poolCfg := kompose.PoolConfig{
		Workers: int64(cfg.Kompose.Workers),
		Timeout: cfg.Kompose.Timeout,
	}
	if cfg.Kompose.CacheEnabled() {
		srv.cache = cache.NewConversionCache(cfg.Kompose.CacheFile)
		poolCfg.Cache = srv.cache
		poolCfg.CacheTTL = cfg.Kompose.CacheTTL
	}
	srv.pool = kompose.NewPool(converter, poolCfg)

	generateHandler := generate.NewHandler(kompose.NewAdapter(srv.pool), cfg.Compose.DefaultVersion)
	importHandler := importer.NewHandler()

	e.Use(middleware.VersionMiddleware(versionInfo.Version))

	generate.RegisterRoutes(e.Group("/generate"), generateHandler)
	importer.RegisterRoutes(e.Group("/import"), importHandler)

	e.GET("/version", srv.handleVersion)

	// Supports ?info=true to return instance information
	e.GET("/health", srv.handleHealth)

	logging.L().Info("Routes registered",
		zap.String("backend", converter.Name()),
		zap.Int("workers", cfg.Kompose.Workers),
		zap.Bool("cache", srv.cache != nil))
	return srv
}

// handleHealth returns 200 for liveness checks, or instance info when ?info=true
func (s *Server) handleHealth(c echo.Context) error {
	if c.QueryParam("info") == "true" {
		return c.JSON(http.StatusOK, common.HealthInfo{
			PublicURL:  s.config.Server.PublicURL,
			InstanceID: s.instanceID,
			Backend:    s.pool.Name(),
		})
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) handleVersion(c echo.Context) error {
	return c.JSON(http.StatusOK, s.versionInfo)
}

// Start starts the API server
func (s *Server) Start() error {
	addr := ":" + strconv.Itoa(s.config.Server.Port)
	logging.L().Info("Starting server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown stops accepting requests and flushes the conversion cache
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)
	if s.cache != nil {
		if cerr := s.cache.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close conversion cache: %w", cerr)
		}
	}
	return err
}
