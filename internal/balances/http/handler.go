package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"golang.org/x/sync/singleflight"

	"github.com/sicofin/sicofin/internal/balances"
	"github.com/sicofin/sicofin/internal/balances/cache"
	"github.com/sicofin/sicofin/internal/balances/rates"
	"github.com/sicofin/sicofin/internal/catalog"
	"github.com/sicofin/sicofin/internal/observability"
	"github.com/sicofin/sicofin/internal/platform/httpx"
)

// Builder produces trial balance reports.
type Builder interface {
	Build(ctx context.Context, query balances.Query) (*balances.TrialBalance, error)
}

// Handler exposes the trial balance endpoints.
type Handler struct {
	engine  Builder
	cache   *cache.Cache
	metrics *observability.Metrics
	logger  *slog.Logger

	buildGroup singleflight.Group
}

// NewHandler wires the handler's collaborators. Cache and metrics may be nil.
func NewHandler(engine Builder, reportCache *cache.Cache, metrics *observability.Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{engine: engine, cache: reportCache, metrics: metrics, logger: logger}
}

// MountRoutes registers the trial balance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/trial-balances", func(r chi.Router) {
		// Builds are expensive; a tighter per-IP budget than the global one.
		r.Use(httprate.Limit(30, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		r.Post("/", h.build)
		r.Post("/export/csv", h.exportCSV)
	})
}

func (h *Handler) build(w http.ResponseWriter, r *http.Request) {
	var query balances.Query
	if err := httpx.DecodeJSON(r, &query); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Request", err.Error())
		return
	}
	if err := query.Validate(); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	payload, err := h.buildPayload(r.Context(), query)
	if err != nil {
		h.respondBuildError(w, query, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// buildPayload returns the serialized report, from cache when possible.
// Identical concurrent queries collapse into a single build.
func (h *Handler) buildPayload(ctx context.Context, query balances.Query) ([]byte, error) {
	digest := query.Hash()
	result, err, _ := h.buildGroup.Do(digest, func() (interface{}, error) {
		if h.cache != nil {
			key, err := h.cache.Key(ctx, digest)
			if err == nil {
				if payload, err := h.cache.Fetch(ctx, key); err == nil {
					h.metrics.ObserveCacheLookup(true)
					return payload, nil
				}
			}
			h.metrics.ObserveCacheLookup(false)
		}

		started := time.Now()
		report, err := h.engine.Build(ctx, query)
		h.metrics.ObserveReportBuild(string(query.TrialBalanceType), time.Since(started), err)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(report)
		if err != nil {
			return nil, err
		}
		if h.cache != nil {
			key, keyErr := h.cache.Key(ctx, digest)
			if keyErr == nil {
				if storeErr := h.cache.Store(ctx, key, payload); storeErr != nil {
					h.logger.Warn("report cache store failed", slog.Any("error", storeErr))
				}
			}
		}
		return payload, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (h *Handler) respondBuildError(w http.ResponseWriter, query balances.Query, err error) {
	var missing *rates.MissingRateError
	switch {
	case errors.Is(err, balances.ErrInvalidQuery):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, catalog.ErrChartNotFound):
		httpx.Problem(w, http.StatusNotFound, "Chart Not Found", err.Error())
	case errors.Is(err, rates.ErrNoPublication), errors.As(err, &missing):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Exchange Rates Unavailable", err.Error())
	default:
		h.logger.Error("trial balance build failed",
			slog.String("type", string(query.TrialBalanceType)),
			slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
