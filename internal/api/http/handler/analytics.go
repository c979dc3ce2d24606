package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	apicontext "github.com/omnistat/platform-server/internal/api/http/context"
	"github.com/omnistat/platform-server/internal/logger"
	"github.com/omnistat/platform-server/internal/model"
)

// AnalyticsService is the aggregation engine the analytics handler exposes.
type AnalyticsService interface {
	RecordEvent(ctx context.Context, event model.Event) (model.Event, error)
	RecordMetric(ctx context.Context, metric model.Metric) (model.Metric, error)
	RecordMetricsBatch(ctx context.Context, metrics []model.Metric) (int, error)
	GetMetrics(ctx context.Context, filter model.MetricFilter) ([]model.Metric, error)
	UsageStats(ctx context.Context, userID uuid.UUID, days int) (model.UsageRecord, error)
	CostBreakdown(ctx context.Context) (model.CostSummary, error)
	DashboardMetrics(ctx context.Context) (model.DashboardSummary, error)
}

// Analytics handles event and metric ingestion plus roll-up routes.
type Analytics struct {
	service        AnalyticsService
	contextManager *apicontext.Manager
	logger         *logger.Logger
}

func NewAnalytics(service AnalyticsService, contextManager *apicontext.Manager, logger *logger.Logger) *Analytics {
	return &Analytics{
		service:        service,
		contextManager: contextManager,
		logger:         logger,
	}
}

type eventRequest struct {
	Type       string          `json:"type"`
	Value      decimal.Decimal `json:"value"`
	Metadata   map[string]any  `json:"metadata"`
	RecordedAt time.Time       `json:"recorded_at"`
}

type metricRequest struct {
	Name       string           `json:"name"`
	Value      float64          `json:"value"`
	Kind       model.MetricKind `json:"kind"`
	Service    string           `json:"service"`
	Endpoint   string           `json:"endpoint"`
	Labels     map[string]any   `json:"labels"`
	UserID     *uuid.UUID       `json:"user_id"`
	RecordedAt time.Time        `json:"recorded_at"`
}

type batchResponse struct {
	Recorded int `json:"recorded"`
}

// RecordEvent ingests one event attributed to the caller.
func (h *Analytics) RecordEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.UserID(r.Context())
	if !ok {
		handleError(w, model.ErrUnauthorized)
		return
	}

	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}

	event, err := h.service.RecordEvent(r.Context(), model.Event{
		UserID:     userID,
		Type:       req.Type,
		Value:      req.Value,
		Metadata:   req.Metadata,
		RecordedAt: req.RecordedAt,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

func (h *Analytics) RecordMetric(w http.ResponseWriter, r *http.Request) {
	var req metricRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}

	metric, err := h.service.RecordMetric(r.Context(), h.metricFromRequest(r, req))
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, metric)
}

func (h *Analytics) RecordMetricsBatch(w http.ResponseWriter, r *http.Request) {
	var reqs []metricRequest
	if err := decodeJSON(r, &reqs); err != nil {
		handleError(w, err)
		return
	}

	metrics := make([]model.Metric, len(reqs))
	for i, req := range reqs {
		metrics[i] = h.metricFromRequest(r, req)
	}

	recorded, err := h.service.RecordMetricsBatch(r.Context(), metrics)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, batchResponse{Recorded: recorded})
}

func (h *Analytics) GetMetrics(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := model.MetricFilter{
		Name:    query.Get("name"),
		Kind:    model.MetricKind(query.Get("kind")),
		Service: query.Get("service"),
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			handleError(w, model.ErrValidation)
			return
		}
		filter.Limit = limit
	}

	metrics, err := h.service.GetMetrics(r.Context(), filter)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, metrics)
}

// UsageStats returns the caller's usage roll-up. Callers can only read
// their own window.
func (h *Analytics) UsageStats(w http.ResponseWriter, r *http.Request) {
	targetID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		handleError(w, model.ErrValidation)
		return
	}

	callerID, ok := h.contextManager.UserID(r.Context())
	if !ok || callerID != targetID {
		handleError(w, model.ErrUnauthorized)
		return
	}

	var days int
	if raw := r.URL.Query().Get("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil {
			handleError(w, model.ErrValidation)
			return
		}
	}

	record, err := h.service.UsageStats(r.Context(), targetID, days)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (h *Analytics) CostBreakdown(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.CostBreakdown(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (h *Analytics) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.DashboardMetrics(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// metricFromRequest attributes the sample to the caller when the body
// does not name a user.
func (h *Analytics) metricFromRequest(r *http.Request, req metricRequest) model.Metric {
	userID := req.UserID
	if userID == nil {
		if callerID, ok := h.contextManager.UserID(r.Context()); ok {
			userID = &callerID
		}
	}

	return model.Metric{
		Name:       req.Name,
		Value:      req.Value,
		Kind:       req.Kind,
		UserID:     userID,
		Service:    req.Service,
		Endpoint:   req.Endpoint,
		Labels:     req.Labels,
		RecordedAt: req.RecordedAt,
	}
}
