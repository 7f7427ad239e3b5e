package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"market-advisor/internal/analyzer"
	"market-advisor/internal/cache"
	"market-advisor/internal/database"
	"market-advisor/internal/decision"
	"market-advisor/internal/logging"
	"market-advisor/internal/marketdata"
	"market-advisor/internal/position"
)

func (s *Server) handleHealth(c *gin.Context) {
	resp := gin.H{
		"status": "ok",
		"time":   time.Now().UTC(),
	}
	if s.cacheService != nil {
		resp["cache"] = s.cacheService.GetStats()
	}
	if s.repo != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.repo.HealthCheck(ctx); err != nil {
			resp["database"] = "unreachable"
		} else {
			resp["database"] = "ok"
		}
	}
	c.JSON(http.StatusOK, resp)
}

// analyses loads the latest snapshot and analyzes it, going through the cache
// when one is wired. Cache failures fall back to recomputing.
func (s *Server) analyses(ctx context.Context) (map[string]analyzer.Analysis, error) {
	if s.cacheService != nil {
		var cached map[string]analyzer.Analysis
		if err := s.cacheService.GetJSON(ctx, cache.AnalysisKey("all"), &cached); err == nil {
			return cached, nil
		}
	}

	snapshot, err := s.provider.LoadLatest()
	if err != nil {
		return nil, err
	}

	results := s.analyzer.Analyze(snapshot)
	if s.cacheService != nil {
		if err := s.cacheService.SetJSON(ctx, cache.AnalysisKey("all"), results, s.cacheService.TTL()); err != nil {
			s.logger.Debug().Err(err).Msg("analysis cache write skipped")
		}
	}
	return results, nil
}

func (s *Server) handleAnalysis(c *gin.Context) {
	results, err := s.analyses(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, results)
}

func (s *Server) handleAnalysisSymbol(c *gin.Context) {
	results, err := s.analyses(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	symbol := strings.ToUpper(c.Param("symbol"))
	for key, a := range results {
		if strings.Contains(strings.ToUpper(key), symbol) {
			s.auditAnalysis(c.Request.Context(), key, a)
			c.JSON(http.StatusOK, a)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "symbol not found in latest snapshot"})
}

func (s *Server) handleAnalysisHistory(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history storage is not enabled"})
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	records, err := s.repo.GetAnalysisHistory(c.Request.Context(), strings.ToUpper(c.Param("symbol")), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) handleHistoryStats(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history storage is not enabled"})
		return
	}

	stats, err := s.repo.GetHistoryStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleRecommendationHistory(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history storage is not enabled"})
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	records, err := s.repo.GetRecommendationHistory(c.Request.Context(), strings.ToUpper(c.Param("symbol")), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) handleRecommendations(c *gin.Context) {
	ctx := c.Request.Context()

	if s.cacheService != nil {
		var cached map[string]decision.Recommendation
		if err := s.cacheService.GetJSON(ctx, cache.RecommendationsKey(), &cached); err == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	results, err := s.analyses(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	recommendations := s.engine.Recommend(results, s.engineCfg)
	s.refreshPositions(results)
	s.auditRecommendations(ctx, recommendations)

	if s.cacheService != nil {
		if err := s.cacheService.SetJSON(ctx, cache.RecommendationsKey(), recommendations, s.cacheService.TTL()); err != nil {
			s.logger.Debug().Err(err).Msg("recommendations cache write skipped")
		}
	}
	c.JSON(http.StatusOK, recommendations)
}

func (s *Server) handleRecommendationSymbol(c *gin.Context) {
	results, err := s.analyses(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	symbol := strings.ToUpper(c.Param("symbol"))
	for key, a := range results {
		if !strings.Contains(strings.ToUpper(key), symbol) {
			continue
		}
		recs := s.engine.Recommend(map[string]analyzer.Analysis{key: a}, s.engineCfg)
		rec := recs[key]
		c.JSON(http.StatusOK, gin.H{
			"symbol":         key,
			"recommendation": rec,
			"position_size":  decision.SuggestPositionSize(rec.RiskLevel, s.engineCfg),
		})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "symbol not found in latest snapshot"})
}

func (s *Server) handlePortfolioSummary(c *gin.Context) {
	ctx := c.Request.Context()

	if s.cacheService != nil {
		var cached decision.PortfolioSummary
		if err := s.cacheService.GetJSON(ctx, cache.PortfolioKey(), &cached); err == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	results, err := s.analyses(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	summary := decision.SummarizePortfolio(s.engine.Recommend(results, s.engineCfg))
	if s.cacheService != nil {
		if err := s.cacheService.SetJSON(ctx, cache.PortfolioKey(), summary, s.cacheService.TTL()); err != nil {
			s.logger.Debug().Err(err).Msg("portfolio cache write skipped")
		}
	}
	c.JSON(http.StatusOK, summary)
}

// refreshPositions feeds fresh prices into the position state machine for
// every analyzed symbol.
func (s *Server) refreshPositions(results map[string]analyzer.Analysis) {
	for key, a := range results {
		if a.CurrentPrice <= 0 {
			continue
		}
		if err := s.positions.RefreshSignals(key, a.CurrentPrice, a.ATR); err != nil {
			s.logger.Error().Err(err).Str("symbol", key).Msg("position refresh failed")
		}
	}
}

func (s *Server) auditAnalysis(ctx context.Context, symbol string, a analyzer.Analysis) {
	if s.repo == nil {
		return
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return
	}
	rec := &database.AnalysisRecord{
		Symbol:         symbol,
		Trend:          string(a.Trend),
		Confidence:     a.Confidence,
		Volatility:     string(a.Volatility),
		CurrentPrice:   a.CurrentPrice,
		PredictedPrice: a.PredictedPrice,
		Analysis:       raw,
	}
	if err := s.repo.InsertAnalysis(ctx, rec); err != nil {
		logger := logging.FromContext(ctx)
		logger.Error().Err(err).Str("symbol", symbol).Msg("analysis audit insert failed")
	}
}

func (s *Server) auditRecommendations(ctx context.Context, recs map[string]decision.Recommendation) {
	if s.repo == nil {
		return
	}
	for symbol, rec := range recs {
		raw, err := json.Marshal(rec)
		if err != nil {
			continue
		}
		record := &database.RecommendationRecord{
			Symbol:         symbol,
			Action:         string(rec.Action),
			Reason:         rec.Reason,
			RiskLevel:      string(rec.RiskLevel),
			Confidence:     rec.Confidence,
			Recommendation: raw,
		}
		if err := s.repo.InsertRecommendation(ctx, record); err != nil {
			logger := logging.FromContext(ctx)
			logger.Error().Err(err).Str("symbol", symbol).Msg("recommendation audit insert failed")
		}
	}
}

// positionView pairs a position with the reading of its current signal.
type positionView struct {
	position.Position
	Interpretation position.Interpretation `json:"interpretation"`
}

func (s *Server) handleListPositions(c *gin.Context) {
	var collection map[string][]position.Position
	if c.Query("status") == "active" {
		collection = s.positions.Active()
	} else {
		collection = s.positions.All()
	}

	out := map[string][]positionView{}
	for symbol, list := range collection {
		for _, p := range list {
			out[symbol] = append(out[symbol], positionView{
				Position:       p,
				Interpretation: position.Interpret(p.CurrentSignal),
			})
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handlePositionSummary(c *gin.Context) {
	c.JSON(http.StatusOK, s.positions.Summarize())
}

type openPositionRequest struct {
	Symbol       string   `json:"symbol" binding:"required"`
	EntryPrice   float64  `json:"entry_price" binding:"required"`
	PositionType string   `json:"position_type"`
	Quantity     float64  `json:"quantity"`
	TakeProfit   *float64 `json:"take_profit_price"`
	Notes        string   `json:"notes"`
}

func (s *Server) handleOpenPosition(c *gin.Context) {
	var req openPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	positionType := position.Type(strings.ToUpper(req.PositionType))
	if positionType == "" {
		positionType = position.TypeLong
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	p, err := s.positions.Open(req.Symbol, req.EntryPrice, positionType, req.Quantity, req.TakeProfit, req.Notes)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, p)
}

type closePositionRequest struct {
	ClosePrice *float64 `json:"close_price"`
	Reason     string   `json:"reason"`
}

func (s *Server) handleClosePosition(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid position id"})
		return
	}

	var req closePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	closed, err := s.positions.Close(c.Param("symbol"), id, req.ClosePrice, req.Reason)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !closed {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active position with that id"})
		return
	}

	p, _ := s.positions.Get(c.Param("symbol"), id)
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleDeletePosition(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid position id"})
		return
	}

	removed, err := s.positions.Delete(c.Param("symbol"), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "no position with that id"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (s *Server) handleWatchlist(c *gin.Context) {
	c.JSON(http.StatusOK, s.watchlist.Entries())
}

type addWatchlistRequest struct {
	Symbol         string   `json:"symbol" binding:"required"`
	CustomName     string   `json:"custom_name"`
	BuyAlertPrice  *float64 `json:"buy_alert_price"`
	SellAlertPrice *float64 `json:"sell_alert_price"`
}

func (s *Server) handleAddWatchlist(c *gin.Context) {
	var req addWatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.watchlist.Add(req.Symbol, req.CustomName, req.BuyAlertPrice, req.SellAlertPrice); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, s.watchlist.Entries()[strings.ToLower(req.Symbol)])
}

func (s *Server) handleRemoveWatchlist(c *gin.Context) {
	removed, err := s.watchlist.Remove(c.Param("symbol"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "symbol not on watchlist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}

func (s *Server) handlePriceAlerts(c *gin.Context) {
	snapshot, err := s.provider.LoadLatest()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	alerts := s.watchlist.CheckPriceAlerts(snapshot)
	if alerts == nil {
		alerts = []marketdata.PriceAlert{}
	}
	c.JSON(http.StatusOK, alerts)
}
