package api

import (
	"fmt"
	"net/http"
	"time"

	models "github.com/pral10/SmartIoT/internal/domain/models"
	domrepo "github.com/pral10/SmartIoT/internal/domain/repository"
	"github.com/pral10/SmartIoT/internal/health"
	"github.com/pral10/SmartIoT/internal/service/ratelimit"
	"github.com/pral10/SmartIoT/internal/usecase"
	xhttp "github.com/pral10/SmartIoT/pkg/http"
	xlogger "github.com/pral10/SmartIoT/pkg/logger"
	"github.com/pral10/SmartIoT/pkg/util"

	"github.com/labstack/echo/v4"
)

// exports are heavier than the chart endpoints, so give each client a small
// refilling budget
const (
	exportBurst  = 3.0
	exportPerSec = 0.2
)

// DashboardHandler serves the sensor dashboard API.
type DashboardHandler struct {
	logger     *xlogger.Logger
	queries    *usecase.QueryService
	thresholds *usecase.ThresholdService
	registry   *health.Registry
	store      domrepo.ReadingStore
	limiter    *ratelimit.Limiter
	connected  func() bool
}

func NewDashboardHandler(
	logger *xlogger.Logger,
	queries *usecase.QueryService,
	thresholds *usecase.ThresholdService,
	registry *health.Registry,
	store domrepo.ReadingStore,
	connected func() bool,
) *DashboardHandler {
	return &DashboardHandler{
		logger:     logger,
		queries:    queries,
		thresholds: thresholds,
		registry:   registry,
		store:      store,
		limiter:    ratelimit.New(),
		connected:  connected,
	}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/readings", h.Readings)
	g.GET("/history", h.History)
	g.GET("/forecast", h.Forecast)
	g.GET("/alerts", h.Alerts)
	g.GET("/config/thresholds", h.GetThresholds)
	g.PUT("/config/thresholds", h.UpdateThresholds)
	g.GET("/devices/health", h.DevicesHealth)
	g.GET("/export", h.Export)
	e.GET("/healthz", h.Healthz)
}

func (h *DashboardHandler) Readings(c echo.Context) error {
	req := &models.ReadingsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.queries.Latest(c.Request().Context(), req.Device, req.N)
	if err != nil {
		h.logger.Error("readings usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, res, int64(len(res)))
}

func (h *DashboardHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	method := domrepo.NormalizeMethod(req.Method)

	res, err := h.queries.AnnotatedHistory(c.Request().Context(), req.Device, req.N, method, req.HorizonMinutes)
	if err != nil {
		h.logger.Error("history usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=5")
	return xhttp.ListResponse(c, res, int64(len(res)))
}

func (h *DashboardHandler) Forecast(c echo.Context) error {
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	method := domrepo.NormalizeMethod(req.Method)

	res, err := h.queries.Forecast(c.Request().Context(), req.Device, method, req.HorizonMinutes)
	if err != nil {
		h.logger.Error("forecast usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardHandler) Alerts(c echo.Context) error {
	req := &models.AlertsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.queries.RecentAlerts(c.Request().Context(), req.Device, req.N)
	if err != nil {
		h.logger.Error("alerts usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, res, int64(len(res)))
}

func (h *DashboardHandler) GetThresholds(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.thresholds.Get(c.Request().Context()))
}

func (h *DashboardHandler) UpdateThresholds(c echo.Context) error {
	req := &models.UpdateThresholdsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	t := models.Thresholds{
		TempHigh:            req.TempHigh,
		TempLow:             req.TempLow,
		HumidityHigh:        req.HumidityHigh,
		HumidityLow:         req.HumidityLow,
		PredictionDeviation: req.PredictionDeviation,
	}
	if err := h.thresholds.Update(c.Request().Context(), t); err != nil {
		h.logger.Error("thresholds update error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	return xhttp.SuccessResponse(c, t)
}

func (h *DashboardHandler) DevicesHealth(c echo.Context) error {
	snaps := h.registry.Snapshots()
	return xhttp.ListResponse(c, snaps, int64(len(snaps)))
}

func (h *DashboardHandler) Export(c echo.Context) error {
	if !h.limiter.Allow(c.RealIP(), exportBurst, exportPerSec) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError(
			"rate_limited", "", "export rate limit exceeded, retry later", http.StatusTooManyRequests))
	}

	req := &models.ExportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	now := time.Now().UTC()
	from := util.ParseTimeDefault(req.From, now.Add(-24*time.Hour))
	to := util.ParseTimeDefault(req.To, now)
	if !from.Before(to) {
		return xhttp.BadRequestResponse(c, "from must be before to")
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s_readings.csv"`, req.Device))
	c.Response().WriteHeader(http.StatusOK)

	n, err := h.queries.ExportCSV(c.Request().Context(), c.Response(), req.Device, from, to, req.Limit)
	if err != nil {
		// headers are already out; log and cut the stream
		h.logger.Error("export error", xlogger.Error(err))
		return err
	}
	h.logger.Info("export served",
		xlogger.String("device", req.Device),
		xlogger.Int("rows", n))
	return nil
}

func (h *DashboardHandler) Healthz(c echo.Context) error {
	ctx := c.Request().Context()
	status := map[string]string{"storage": "ok", "stream": "ok"}
	healthy := true

	if err := h.store.Health(ctx); err != nil {
		status["storage"] = err.Error()
		healthy = false
	}
	if h.connected != nil && !h.connected() {
		status["stream"] = "disconnected"
		healthy = false
	}

	if !healthy {
		return xhttp.ServiceUnavailableResponse(c, status)
	}
	return xhttp.SuccessResponse(c, status)
}
