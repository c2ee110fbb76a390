package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"
	"FxPulse/internal/service/cache"
	"FxPulse/internal/usecase"
	xhttp "FxPulse/pkg/http"
	xlogger "FxPulse/pkg/logger"
	"FxPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

const ratesCacheKey = "fxpulse:rates"
const snapshotCachePrefix = "fxpulse:snapshot:"
const readCacheTTL = 500 * time.Millisecond

// MarketEchoHandler exposes the engine's read surface over Echo.
type MarketEchoHandler struct {
	logger  *xlogger.Logger
	engine  *usecase.MarketEngine
	candles *usecase.CandlesUseCase
	flusher *usecase.CandleFlusher
	store   domrepo.CandleStore
	cache   cache.BytesCache
	feedUp  func() bool
}

func NewMarketEchoHandler(
	logger *xlogger.Logger,
	engine *usecase.MarketEngine,
	candles *usecase.CandlesUseCase,
	flusher *usecase.CandleFlusher,
	store domrepo.CandleStore,
	c cache.BytesCache,
) *MarketEchoHandler {
	return &MarketEchoHandler{
		logger:  logger,
		engine:  engine,
		candles: candles,
		flusher: flusher,
		store:   store,
		cache:   c,
	}
}

func (h *MarketEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/rates", h.Rates)
	g.GET("/alerts", h.Alerts)
	g.GET("/snapshot", h.Snapshot)
	g.GET("/candles", h.Candles)
	e.GET("/healthz", h.Health)
}

// Rates returns the live synthetic rate table for every supported pair.
// Responses are cached briefly since the table changes many times a second.
func (h *MarketEchoHandler) Rates(c echo.Context) error {
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(ratesCacheKey); err == nil && ok {
			return c.JSONBlob(http.StatusOK, b)
		}
	}
	rates := h.engine.LiveRates()
	resp := xhttp.APIResponse{Status: http.StatusOK, Message: "success", Data: rates}
	b, err := json.Marshal(resp)
	if err != nil {
		h.logger.Error("rates marshal", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if h.cache != nil {
		if err := h.cache.SetBytes(ratesCacheKey, b, readCacheTTL); err != nil {
			h.logger.Warn("rates cache set", xlogger.Error(err))
		}
	}
	return c.JSONBlob(http.StatusOK, b)
}

func (h *MarketEchoHandler) Alerts(c echo.Context) error {
	req := &models.AlertsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	var since time.Time
	if req.Since > 0 {
		since = time.UnixMilli(req.Since)
	}
	alerts := h.engine.RecentAlerts(req.Pair, req.Limit, since)
	return xhttp.ListResponse(c, alerts, int64(len(alerts)))
}

func (h *MarketEchoHandler) Snapshot(c echo.Context) error {
	req := &models.SnapshotRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if _, ok := models.LookupInstrument(req.Pair); !ok {
		return xhttp.NotFoundResponse(c, "unknown pair "+req.Pair)
	}
	key := snapshotCachePrefix + req.Pair + ":" + c.QueryParam("windows")
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(key); err == nil && ok {
			return c.JSONBlob(http.StatusOK, b)
		}
	}
	snap, ok := h.engine.WindowSnapshot(req.Pair, req.Windows)
	if !ok {
		return xhttp.NotFoundResponse(c, "no price history for "+req.Pair)
	}
	resp := xhttp.APIResponse{Status: http.StatusOK, Message: "success", Data: snap}
	b, err := json.Marshal(resp)
	if err != nil {
		h.logger.Error("snapshot marshal", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if h.cache != nil {
		if err := h.cache.SetBytes(key, b, readCacheTTL); err != nil {
			h.logger.Warn("snapshot cache set", xlogger.Error(err))
		}
	}
	return c.JSONBlob(http.StatusOK, b)
}

func (h *MarketEchoHandler) Candles(c echo.Context) error {
	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	now := time.Now().UTC()
	params := usecase.GetCandlesParams{
		Pair:     req.Pair,
		Interval: domrepo.NormalizeInterval(req.Interval),
		From:     util.ParseTimeDefault(req.From, now.Add(-24*time.Hour)),
		To:       util.ParseTimeDefault(req.To, now),
		Limit:    req.Limit,
	}
	res, err := h.candles.GetCandles(c.Request().Context(), params)
	if err != nil {
		h.logger.Error("candles usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("%v", err))
	}
	return xhttp.SuccessResponse(c, res)
}

type healthStatus struct {
	Status      string `json:"status"`
	Feed        bool   `json:"feed_connected"`
	Persistence string `json:"persistence"`
}

// SetFeedStatus wires an optional feed connectivity probe for /healthz.
func (h *MarketEchoHandler) SetFeedStatus(fn func() bool) {
	h.feedUp = fn
}

// Health reports liveness plus the state of persistence and the feed.
// Persistence being down degrades the status but does not fail it,
// since the in-memory engine keeps serving.
func (h *MarketEchoHandler) Health(c echo.Context) error {
	hs := healthStatus{Status: "ok", Persistence: "disabled"}
	if h.feedUp != nil {
		hs.Feed = h.feedUp()
	}
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Health(ctx); err != nil {
			hs.Persistence = "unhealthy"
			hs.Status = "degraded"
		} else {
			hs.Persistence = "ok"
		}
	}
	if h.flusher != nil && h.flusher.Disabled() {
		hs.Persistence = "stopped"
		hs.Status = "degraded"
	}
	return c.JSON(http.StatusOK, hs)
}
