package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/jobs"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/matching"
)

const (
	DefaultListen       = ":8080"
	DefaultMaxUploadMB  = 10
	DefaultMatchTimeout = 2 * time.Minute
)

// JobSource returns listings for a role. It never fails; an unreachable source yields no listings.
type JobSource interface {
	Fetch(ctx context.Context, role string) *jobs.Listings
}

type Matcher interface {
	Match(ctx context.Context, resumeText, role string, listings *jobs.Listings) (*matching.Report, error)
}

type Config struct {
	Listen            string        `mapstructure:"listen"`
	MaxUploadMB       int64         `mapstructure:"max-upload-mb"`
	MatchTimeout      time.Duration `mapstructure:"match-timeout"`
	AllowedExtensions []string      `mapstructure:"allowed-extensions"`
	// AllowedOrigins lists CORS origins. Empty allows any origin.
	AllowedOrigins []string `mapstructure:"allowed-origins"`
}

func (c Config) withDefaults() Config {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = DefaultMaxUploadMB
	}
	if c.MatchTimeout <= 0 {
		c.MatchTimeout = DefaultMatchTimeout
	}
	if len(c.AllowedExtensions) == 0 {
		c.AllowedExtensions = []string{".pdf"}
	}
	exts := make([]string, 0, len(c.AllowedExtensions))
	for _, ext := range c.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	c.AllowedExtensions = exts
	return c
}

type Server struct {
	config  Config
	source  JobSource
	matcher Matcher
	logger  *zap.Logger
	router  *gin.Engine
}

func New(cfg Config, source JobSource, matcher Matcher, log *zap.Logger) *Server {
	s := &Server{
		config:  cfg.withDefaults(),
		source:  source,
		matcher: matcher,
		logger:  logger.OrNop(log).Named("server"),
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog(), cors.New(s.corsConfig()))

	api := r.Group("/api/v1")
	{
		api.GET("/health", s.health)
		api.POST("/match", s.match)
	}

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server started", zap.String("listen", s.config.Listen))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("shutting down server")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	if len(s.config.AllowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.config.AllowedOrigins
	}
	return cfg
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info("request served",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
