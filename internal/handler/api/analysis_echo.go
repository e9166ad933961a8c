package api

import (
	"errors"
	"time"

	models "SETPulse/internal/domain/models"
	"SETPulse/internal/service/marketdata"
	svcmetrics "SETPulse/internal/service/metrics"
	"SETPulse/internal/usecase"
	"SETPulse/pkg/cache"
	xhttp "SETPulse/pkg/http"
	xlogger "SETPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Scan tables are expensive to build, so finished runs are served from
// memory for a short window.
const scanCacheTTL = 5 * time.Minute

// AnalysisEchoHandler exposes the analysis engine and the scanner over HTTP.
type AnalysisEchoHandler struct {
	logger    *xlogger.Logger
	analyzer  *usecase.Analyzer
	scanner   *usecase.Scanner
	scanCache cache.Service
}

func NewAnalysisEchoHandler(logger *xlogger.Logger, analyzer *usecase.Analyzer, scanner *usecase.Scanner) *AnalysisEchoHandler {
	return &AnalysisEchoHandler{
		logger:    logger,
		analyzer:  analyzer,
		scanner:   scanner,
		scanCache: cache.NewMemoryCache(cache.WithMemoryMaxSize(128)),
	}
}

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/analyze", h.Analyze)
	g.GET("/patterns", h.Patterns)
	g.GET("/bellcurve", h.BellCurve)
	g.GET("/quote", h.Quote)
	g.GET("/dividends", h.Dividends)
	g.GET("/info", h.Info)
	g.POST("/scan", h.Scan)
	g.POST("/backtest", h.Backtest)
}

func (h *AnalysisEchoHandler) Analyze(c echo.Context) error {
	start := time.Now()
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !marketdata.ValidSymbol(req.Symbol) {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestErrorf("invalid symbol %q", req.Symbol))
	}

	res, err := h.analyzer.Analyze(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "analyze", err)
	}
	svcmetrics.AnalysisLatency.WithLabelValues("analyze").Observe(time.Since(start).Seconds())
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) Patterns(c echo.Context) error {
	req := &models.PatternsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analyzer.Patterns(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "patterns", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) BellCurve(c echo.Context) error {
	req := &models.BellCurveRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analyzer.BellCurve(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "bellcurve", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) Quote(c echo.Context) error {
	req := &models.QuoteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analyzer.Quote(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, "quote", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) Dividends(c echo.Context) error {
	req := &models.QuoteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analyzer.Dividends(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, "dividends", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) Info(c echo.Context) error {
	req := &models.QuoteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analyzer.Info(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, "info", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) Scan(c echo.Context) error {
	start := time.Now()
	req := &models.ScanParams{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ctx := c.Request().Context()
	key := cache.GenerateKeyWithParams("scan", req.Mode, req.Period, req.Interval,
		req.MinFibScore, req.MinRR, len(req.Symbols))
	if len(req.Symbols) == 0 {
		var cached interface{}
		if err := h.scanCache.Get(ctx, key, &cached); err == nil {
			if results, ok := cached.([]models.ScanResult); ok {
				return xhttp.SuccessResponse(c, &ScanResponse{Results: results, Total: len(results), Cached: true})
			}
		}
	}

	results, err := h.scanner.Scan(ctx, *req, nil)
	if err != nil {
		return h.fail(c, "scan", err)
	}
	if len(req.Symbols) == 0 {
		_ = h.scanCache.Set(ctx, key, results, scanCacheTTL)
	}
	svcmetrics.AnalysisLatency.WithLabelValues("scan").Observe(time.Since(start).Seconds())
	return xhttp.SuccessResponse(c, &ScanResponse{Results: results, Total: len(results), Took: time.Since(start).Round(time.Millisecond).String()})
}

func (h *AnalysisEchoHandler) Backtest(c echo.Context) error {
	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analyzer.Backtest(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "backtest", err)
	}
	return xhttp.SuccessResponse(c, res)
}

// ScanResponse wraps the ranked scan table with run metadata.
type ScanResponse struct {
	Results []models.ScanResult `json:"results"`
	Total   int                 `json:"total"`
	Took    string              `json:"took,omitempty"`
	Cached  bool                `json:"cached,omitempty"`
}

// fail translates engine errors into API responses. Thin history is a
// client problem, not a server fault.
func (h *AnalysisEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	svcmetrics.AnalysisErrors.WithLabelValues(endpoint).Inc()
	switch {
	case errors.Is(err, models.ErrInsufficientData):
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("not enough history for this request"))
	case errors.Is(err, models.ErrDegenerate):
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("price series has no variance over the window"))
	default:
		h.logger.Error(endpoint+" usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
}
