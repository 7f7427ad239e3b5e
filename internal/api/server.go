package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"market-advisor/config"
	"market-advisor/internal/analyzer"
	"market-advisor/internal/cache"
	"market-advisor/internal/database"
	"market-advisor/internal/decision"
	"market-advisor/internal/logging"
	"market-advisor/internal/marketdata"
	"market-advisor/internal/position"
)

// RateLimiter provides simple in-memory rate limiting per endpoint
type RateLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
	limit    int           // max requests
	window   time.Duration // time window
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
}

// Allow checks if a request is allowed for the given key
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-r.window)

	var recent []time.Time
	for _, t := range r.requests[key] {
		if t.After(windowStart) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= r.limit {
		r.requests[key] = recent
		return false
	}

	r.requests[key] = append(recent, now)
	return true
}

// Server represents the HTTP API server
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     config.ServerConfig
	logger     zerolog.Logger

	provider  marketdata.Provider
	analyzer  *analyzer.Analyzer
	engine    *decision.Engine
	engineCfg decision.Config
	positions *position.Manager
	watchlist *marketdata.Watchlist

	// Optional, nil when disabled
	cacheService *cache.CacheService
	repo         *database.Repository

	rateLimiter *RateLimiter
}

// NewServer creates a new API server. cacheService and repo may be nil when
// the corresponding backends are disabled.
func NewServer(
	cfg config.ServerConfig,
	engineCfg decision.Config,
	provider marketdata.Provider,
	an *analyzer.Analyzer,
	engine *decision.Engine,
	positions *position.Manager,
	watchlist *marketdata.Watchlist,
	cacheService *cache.CacheService,
	repo *database.Repository,
	logger zerolog.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.AllowedOrigins == "" || cfg.AllowedOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(cfg.AllowedOrigins, ",")
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Content-Length"}
	router.Use(cors.New(corsConfig))

	server := &Server{
		router:       router,
		config:       cfg,
		logger:       logger.With().Str("component", "API").Logger(),
		provider:     provider,
		analyzer:     an,
		engine:       engine,
		engineCfg:    engineCfg,
		positions:    positions,
		watchlist:    watchlist,
		cacheService: cacheService,
		repo:         repo,
		rateLimiter:  NewRateLimiter(120, time.Minute),
	}

	router.Use(server.requestLogger())
	router.Use(server.rateLimitMiddleware())
	server.setupRoutes()

	return server
}

// requestLogger attaches a trace ID to each request and logs method, path,
// status and latency on completion.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, reqLogger := logging.WithTraceContext(c.Request.Context(), s.logger)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()
		reqLogger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// rateLimitMiddleware limits requests per endpoint path.
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.rateLimiter.Allow(c.FullPath()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded, try again later",
			})
			return
		}
		c.Next()
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/analysis", s.handleAnalysis)
		api.GET("/analysis/:symbol", s.handleAnalysisSymbol)
		api.GET("/analysis/:symbol/history", s.handleAnalysisHistory)
		api.GET("/recommendations", s.handleRecommendations)
		api.GET("/recommendations/:symbol", s.handleRecommendationSymbol)
		api.GET("/recommendations/:symbol/history", s.handleRecommendationHistory)
		api.GET("/history/stats", s.handleHistoryStats)
		api.GET("/portfolio/summary", s.handlePortfolioSummary)

		api.GET("/positions", s.handleListPositions)
		api.GET("/positions/summary", s.handlePositionSummary)
		api.POST("/positions", s.handleOpenPosition)
		api.POST("/positions/:symbol/:id/close", s.handleClosePosition)
		api.DELETE("/positions/:symbol/:id", s.handleDeletePosition)

		api.GET("/watchlist", s.handleWatchlist)
		api.POST("/watchlist", s.handleAddWatchlist)
		api.DELETE("/watchlist/:symbol", s.handleRemoveWatchlist)
		api.GET("/watchlist/alerts", s.handlePriceAlerts)
	}
}

// Start runs the HTTP server until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), time.Duration(s.config.ShutdownTimeout)*time.Second)
	defer cancel()

	s.logger.Info().Msg("shutting down HTTP server")
	return s.httpServer.Shutdown(shutdownCtx)
}
