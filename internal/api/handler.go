// Package api exposes the command surface over HTTP. It is a thin layer:
// parsing and status mapping here, behavior in the application services.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/order-saga/internal/app"
	"github.com/example/order-saga/internal/bench"
	"github.com/example/order-saga/internal/domain"
	"github.com/example/order-saga/internal/inventory"
	"github.com/example/order-saga/internal/notification"
	"github.com/example/order-saga/internal/orders"
	"github.com/example/order-saga/internal/saga"
	"github.com/example/order-saga/internal/shipping"
)

type Handler struct {
	app          *app.App
	stuckSagaAge time.Duration
	logger       *slog.Logger
}

func NewHandler(application *app.App, stuckSagaAge time.Duration, logger *slog.Logger) *Handler {
	return &Handler{app: application, stuckSagaAge: stuckSagaAge, logger: logger}
}

func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /orders", h.HandleCreateOrder)
	mux.HandleFunc("GET /orders/{id}", h.HandleGetOrder)
	mux.HandleFunc("GET /orders/{id}/shipment", h.HandleGetShipment)
	mux.HandleFunc("POST /inventory", h.HandleCreateInventoryItem)
	mux.HandleFunc("GET /inventory/{productId}", h.HandleGetInventory)
	mux.HandleFunc("GET /notifications/{recipientId}", h.HandleGetNotifications)
	mux.HandleFunc("POST /benchmark/io-simulation", h.HandleRunBenchmark)
	mux.HandleFunc("GET /benchmark/scheduler-info", h.HandleSchedulerInfo)
	mux.HandleFunc("POST /load-test/orders", h.HandleRunLoadTest)
	mux.HandleFunc("GET /sagas/stuck", h.HandleStuckSagas)
	return mux
}

func (h *Handler) HandleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var cmd orders.CreateOrderCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		h.writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}

	order, err := h.app.Orders.CreateOrder(r.Context(), cmd)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) HandleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.app.Orders.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleGetShipment(w http.ResponseWriter, r *http.Request) {
	shipment, err := h.app.Shipping.GetShipment(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, shipment)
}

type createInventoryItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) HandleCreateInventoryItem(w http.ResponseWriter, r *http.Request) {
	var req createInventoryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}
	if req.ProductID == "" {
		h.writeError(w, http.StatusBadRequest, "validation", "product_id is required")
		return
	}

	item, err := h.app.Inventory.CreateInventoryItem(r.Context(), req.ProductID, req.Quantity)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) HandleGetInventory(w http.ResponseWriter, r *http.Request) {
	item, err := h.app.Inventory.GetInventory(r.Context(), r.PathValue("productId"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, item)
}

func (h *Handler) HandleGetNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.app.Notifications.GetByRecipient(r.Context(), r.PathValue("recipientId"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, notifications)
}

type benchmarkRequest struct {
	ConcurrentRequests int    `json:"concurrent_requests"`
	IODelayMs          int    `json:"io_delay_ms"`
	Strategy           string `json:"strategy"`
	PoolSize           int    `json:"pool_size"`
	TimeoutMs          int    `json:"timeout_ms"`
}

func (r benchmarkRequest) options() bench.Options {
	opts := bench.Options{
		Requests: r.ConcurrentRequests,
		IODelay:  time.Duration(r.IODelayMs) * time.Millisecond,
		Strategy: bench.Strategy(r.Strategy),
		PoolSize: r.PoolSize,
	}
	if opts.Requests == 0 {
		opts.Requests = 100
	}
	if r.IODelayMs == 0 {
		opts.IODelay = 100 * time.Millisecond
	}
	if opts.Strategy == "" {
		opts.Strategy = bench.StrategyGoroutine
	}
	return opts
}

func (r benchmarkRequest) timeout() time.Duration {
	if r.TimeoutMs <= 0 {
		return time.Minute
	}
	return time.Duration(r.TimeoutMs) * time.Millisecond
}

func (h *Handler) HandleRunBenchmark(w http.ResponseWriter, r *http.Request) {
	var req benchmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), req.timeout())
	defer cancel()

	result, err := h.app.Runner.Run(ctx, req.options(), nil)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleSchedulerInfo(w http.ResponseWriter, r *http.Request) {
	info, err := bench.CollectSchedulerInfo(r.Context())
	if err != nil {
		h.logger.Error("failed to collect scheduler info", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, info)
}

type loadTestRequest struct {
	RequestCount int    `json:"request_count"`
	ProductID    string `json:"product_id"`
	IODelayMs    int    `json:"io_delay_ms"`
	Strategy     string `json:"strategy"`
	PoolSize     int    `json:"pool_size"`
	TimeoutMs    int    `json:"timeout_ms"`
}

func (h *Handler) HandleRunLoadTest(w http.ResponseWriter, r *http.Request) {
	var req loadTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}
	if req.RequestCount == 0 {
		req.RequestCount = 50
	}
	if req.ProductID == "" {
		req.ProductID = "product-001"
	}

	bm := benchmarkRequest{
		IODelayMs: req.IODelayMs,
		Strategy:  req.Strategy,
		PoolSize:  req.PoolSize,
		TimeoutMs: req.TimeoutMs,
	}
	opts := bm.options()
	if req.IODelayMs == 0 {
		opts.IODelay = 0
	}

	ctx, cancel := context.WithTimeout(r.Context(), bm.timeout())
	defer cancel()

	result, err := h.app.LoadTest(ctx, req.RequestCount, req.ProductID, opts)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleStuckSagas(w http.ResponseWriter, r *http.Request) {
	stuck := h.app.FindStuckSagas(h.stuckSagaAge)
	if stuck == nil {
		stuck = []saga.Record{}
	}
	h.writeJSON(w, http.StatusOK, stuck)
}

// writeDomainError maps the error taxonomy to a status code and a structured
// body; internal details never cross the boundary.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		h.writeError(w, http.StatusBadRequest, "validation", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrOverRelease),
		errors.Is(err, inventory.ErrAlreadyExists):
		h.writeError(w, http.StatusConflict, "precondition", err.Error())
	case errors.Is(err, orders.ErrNotFound),
		errors.Is(err, inventory.ErrNotFound),
		errors.Is(err, shipping.ErrNotFound),
		errors.Is(err, notification.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		h.logger.Error("request failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, kind, message string) {
	h.writeJSON(w, status, map[string]string{"error": message, "kind": kind})
}
