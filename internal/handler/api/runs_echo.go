package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"ShortScan/internal/domain/models"
	"ShortScan/internal/service/metrics"
	"ShortScan/internal/service/ratelimit"
	xhttp "ShortScan/pkg/http"
	xlogger "ShortScan/pkg/logger"
	"ShortScan/pkg/util"
)

// RunService is the pipeline surface the handler needs.
type RunService interface {
	Run(ctx context.Context, params models.RunParams) (*models.RunReport, error)
	Latest() (*models.RunReport, bool)
}

// RunLimit is the per-client token bucket applied to POST /api/runs.
type RunLimit struct {
	Burst        float64
	RefillPerSec float64
}

// RunsEchoHandler serves run reports and triggers new runs.
type RunsEchoHandler struct {
	logger   *xlogger.Logger
	pipeline RunService
	rl       *ratelimit.Limiter
	limit    RunLimit
	defaults models.ModelParams
}

// NewRunsEchoHandler creates the handler. defaults supplies the seed and worker
// count, which requests cannot override.
func NewRunsEchoHandler(logger *xlogger.Logger, pipeline RunService, defaults models.ModelParams, limit RunLimit) *RunsEchoHandler {
	metrics.Register()
	if logger == nil {
		logger = xlogger.Nop()
	}
	if limit.Burst <= 0 {
		limit = RunLimit{Burst: 2, RefillPerSec: 1.0 / 60}
	}
	return &RunsEchoHandler{logger: logger, pipeline: pipeline, rl: ratelimit.New(), limit: limit, defaults: defaults}
}

func (h *RunsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/runs")
	g.GET("/latest", h.Latest)
	g.GET("/latest/importances", h.LatestImportances)
	g.POST("", h.Create)
}

// Latest returns the last finished run.
func (h *RunsEchoHandler) Latest(c echo.Context) error {
	defer observe("latest", time.Now())
	rep, ok := h.pipeline.Latest()
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no run has finished yet"))
	}
	return xhttp.SuccessResponse(c, rep)
}

// LatestImportances returns the ascending importance list of the last run.
func (h *RunsEchoHandler) LatestImportances(c echo.Context) error {
	defer observe("importances", time.Now())
	rep, ok := h.pipeline.Latest()
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no run has finished yet"))
	}
	return xhttp.SuccessResponse(c, rep.Importances)
}

// Create runs the pipeline synchronously with the request parameters.
func (h *RunsEchoHandler) Create(c echo.Context) error {
	const endpoint = "create"
	defer observe(endpoint, time.Now())

	if !h.rl.Allow(c.RealIP()+":runs", h.limit.Burst, h.limit.RefillPerSec) {
		h.logger.Warn("runs.create rate_limited", xlogger.String("remote", c.RealIP()))
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many runs, retry later"))
	}

	req := &models.RunRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		return xhttp.BadRequestResponse(c, verr)
	}
	params, err := h.params(req)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		return xhttp.AppErrorResponse(c, err)
	}

	rep, err := h.pipeline.Run(c.Request().Context(), params)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("runs.create pipeline error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapRunError(err))
	}
	return xhttp.DataResponse(c, http.StatusCreated, rep)
}

func (h *RunsEchoHandler) params(req *models.RunRequest) (models.RunParams, error) {
	start, ok := util.ParseTime(req.Start)
	if !ok {
		return models.RunParams{}, xhttp.BadRequestError("invalid start date").WithParam("start", req.Start)
	}
	end, ok := util.ParseTime(req.End)
	if !ok {
		return models.RunParams{}, xhttp.BadRequestError("invalid end date").WithParam("end", req.End)
	}
	if start.After(end) {
		return models.RunParams{}, xhttp.BadRequestError("start must not be after end").
			WithParams(map[string]interface{}{"start": req.Start, "end": req.End})
	}
	symbols := make([]string, 0, len(req.Symbols))
	for _, s := range req.Symbols {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		return models.RunParams{}, xhttp.BadRequestError("symbols cannot be empty")
	}
	return models.RunParams{
		Symbols: symbols,
		Start:   start,
		End:     end,
		Model: models.ModelParams{
			Splits:         req.Splits,
			NEstimators:    req.NEstimators,
			MinSamplesLeaf: req.MinSamplesLeaf,
			Seed:           h.defaults.Seed,
			Jobs:           h.defaults.Jobs,
		},
	}, nil
}

// mapRunError turns data-shortage sentinels into 422s; everything else is a 500.
func mapRunError(err error) *xhttp.AppError {
	for _, target := range []error{
		models.ErrNoData,
		models.ErrInsufficientData,
		models.ErrInsufficientSplits,
		models.ErrNoFolds,
	} {
		if errors.Is(err, target) {
			return xhttp.UnprocessableError(err.Error()).WithError(err)
		}
	}
	return xhttp.InternalError("pipeline run failed").WithError(err)
}

func observe(endpoint string, start time.Time) {
	metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
