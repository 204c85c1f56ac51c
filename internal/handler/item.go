package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/psiu/items-api/internal/model"
	"github.com/psiu/items-api/internal/objectid"
	"github.com/psiu/items-api/internal/telemetry"
	"github.com/psiu/items-api/internal/usecase"
)

var tracer = otel.Tracer("github.com/psiu/items-api/internal/handler")

// Error codes surfaced to API clients.
const (
	codeValidation       = "VALIDATION_ERROR"
	codeNotFound         = "NOT_FOUND"
	codeInternal         = "INTERNAL_ERROR"
	codeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// errorResponse is the uniform error envelope.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// deleteResponse wraps the soft-deleted item.
type deleteResponse struct {
	Message string      `json:"message"`
	Item    *model.Item `json:"item"`
}

// ItemHandler exposes the item use cases over HTTP.
type ItemHandler struct {
	create  *usecase.CreateItem
	list    *usecase.ListItems
	update  *usecase.UpdateItem
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// NewItemHandler creates an ItemHandler.
func NewItemHandler(create *usecase.CreateItem, list *usecase.ListItems, update *usecase.UpdateItem, logger *slog.Logger, metrics *telemetry.Metrics) *ItemHandler {
	return &ItemHandler{
		create:  create,
		list:    list,
		update:  update,
		logger:  logger,
		metrics: metrics,
	}
}

// Routes returns the chi router with item routes.
func (h *ItemHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.requireValidID)
		r.Get("/", h.GetByID)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
		r.MethodNotAllowed(h.methodNotAllowed)
	})

	return r
}

// requireValidID rejects ids that are not 24-character hex strings before
// they ever reach the repository's fallback logic.
func (h *ItemHandler) requireValidID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !objectid.IsValidHex(id) {
			h.respondJSON(w, http.StatusBadRequest, errorResponse{
				Error:   "Validation Error",
				Message: "invalid id format: must be a 24-character hexadecimal string",
				Code:    codeValidation,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// List returns a page of visible items.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "ItemHandler.List")
	defer span.End()

	q := r.URL.Query()
	status := model.Status(q.Get("status"))
	if status != "" && !status.IsValid() {
		h.respondError(w, http.StatusBadRequest, "Validation Error",
			"invalid status: must be todo, doing or done", codeValidation)
		h.recordMetrics(ctx, "GET", "/api/items", http.StatusBadRequest, start)
		return
	}

	req := usecase.ListRequest{
		Page:   intQueryParam(q.Get("page"), 1),
		Limit:  intQueryParam(q.Get("limit"), 10),
		Status: status,
		Search: q.Get("search"),
	}

	result, err := h.list.Execute(ctx, req)
	if err != nil {
		status := h.mapError(ctx, w, err, "failed to list items")
		h.recordMetrics(ctx, "GET", "/api/items", status, start)
		return
	}

	span.SetAttributes(attribute.Int("item.count", len(result.Items)))
	h.logger.InfoContext(ctx, "items listed",
		slog.Int("count", len(result.Items)),
		slog.Int64("total", result.Total),
	)

	h.respondJSON(w, http.StatusOK, result)
	h.recordMetrics(ctx, "GET", "/api/items", http.StatusOK, start)
}

// Create adds a new item.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "ItemHandler.Create")
	defer span.End()

	input, ok := h.decodeInput(ctx, w, r)
	if !ok {
		h.recordMetrics(ctx, "POST", "/api/items", http.StatusBadRequest, start)
		return
	}

	result, err := h.create.Execute(ctx, input)
	if err != nil {
		status := h.mapError(ctx, w, err, "failed to create item")
		h.recordMetrics(ctx, "POST", "/api/items", status, start)
		return
	}

	span.SetAttributes(attribute.String("item.id", result.ID))
	h.logger.InfoContext(ctx, "item created", slog.String("id", result.ID))

	h.respondJSON(w, http.StatusCreated, result)
	h.recordMetrics(ctx, "POST", "/api/items", http.StatusCreated, start)
}

// GetByID returns a single visible item.
func (h *ItemHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "ItemHandler.GetByID",
		trace.WithAttributes(attribute.String("item.id", id)),
	)
	defer span.End()

	item, err := h.update.FindByID(ctx, id)
	if err != nil {
		status := h.mapError(ctx, w, err, "failed to get item")
		h.recordMetrics(ctx, "GET", "/api/items/{id}", status, start)
		return
	}
	if item == nil {
		h.logger.WarnContext(ctx, "item not found", slog.String("id", id))
		h.respondError(w, http.StatusNotFound, "Not Found", "item "+id+" not found", codeNotFound)
		h.recordMetrics(ctx, "GET", "/api/items/{id}", http.StatusNotFound, start)
		return
	}

	h.respondJSON(w, http.StatusOK, item)
	h.recordMetrics(ctx, "GET", "/api/items/{id}", http.StatusOK, start)
}

// Update applies a partial update to an item.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "ItemHandler.Update",
		trace.WithAttributes(attribute.String("item.id", id)),
	)
	defer span.End()

	input, ok := h.decodeInput(ctx, w, r)
	if !ok {
		h.recordMetrics(ctx, "PUT", "/api/items/{id}", http.StatusBadRequest, start)
		return
	}

	item, err := h.update.Execute(ctx, id, input)
	if err != nil {
		status := h.mapError(ctx, w, err, "failed to update item")
		h.recordMetrics(ctx, "PUT", "/api/items/{id}", status, start)
		return
	}

	h.logger.InfoContext(ctx, "item updated", slog.String("id", id))

	h.respondJSON(w, http.StatusOK, item)
	h.recordMetrics(ctx, "PUT", "/api/items/{id}", http.StatusOK, start)
}

// Delete soft-deletes an item and returns it.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "ItemHandler.Delete",
		trace.WithAttributes(attribute.String("item.id", id)),
	)
	defer span.End()

	item, err := h.update.Delete(ctx, id)
	if err != nil {
		status := h.mapError(ctx, w, err, "failed to delete item")
		h.recordMetrics(ctx, "DELETE", "/api/items/{id}", status, start)
		return
	}

	h.logger.InfoContext(ctx, "item soft-deleted", slog.String("id", id))

	h.respondJSON(w, http.StatusOK, deleteResponse{Message: "item deleted successfully", Item: item})
	h.recordMetrics(ctx, "DELETE", "/api/items/{id}", http.StatusOK, start)
}

// Health returns a health check response.
func (h *ItemHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ItemHandler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, http.StatusMethodNotAllowed, "Method Not Allowed",
		"method "+r.Method+" is not allowed for this endpoint", codeMethodNotAllowed)
}

// decodeInput parses the request body into an ItemInput and strips the
// fields clients may never control directly: availability belongs to the
// delete path and createdAt to the server clock.
func (h *ItemHandler) decodeInput(ctx context.Context, w http.ResponseWriter, r *http.Request) (model.ItemInput, bool) {
	var input model.ItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.WarnContext(ctx, "invalid request body", slog.Any("error", err))
		h.respondError(w, http.StatusBadRequest, "Validation Error", "request body is required", codeValidation)
		return model.ItemInput{}, false
	}
	input.Available = nil
	input.CreatedAt = nil
	if input.IsEmpty() {
		h.respondError(w, http.StatusBadRequest, "Validation Error", "no valid fields in request body", codeValidation)
		return model.ItemInput{}, false
	}
	return input, true
}

// mapError translates domain errors into the uniform error envelope and
// returns the HTTP status it wrote. Internal detail never reaches the
// client.
func (h *ItemHandler) mapError(ctx context.Context, w http.ResponseWriter, err error, logMsg string) int {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		h.logger.WarnContext(ctx, "validation failed", slog.Any("error", err))
		h.respondError(w, http.StatusBadRequest, "Validation Error", ve.Error(), codeValidation)
		return http.StatusBadRequest
	}
	if errors.Is(err, model.ErrNotFound) {
		h.logger.WarnContext(ctx, "item not found", slog.Any("error", err))
		h.respondError(w, http.StatusNotFound, "Not Found", err.Error(), codeNotFound)
		return http.StatusNotFound
	}
	h.logger.ErrorContext(ctx, logMsg, slog.Any("error", err))
	h.respondError(w, http.StatusInternalServerError, "Internal Server Error",
		"an unexpected error occurred", codeInternal)
	return http.StatusInternalServerError
}

func intQueryParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func (h *ItemHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func (h *ItemHandler) respondError(w http.ResponseWriter, status int, name, message, code string) {
	h.respondJSON(w, status, errorResponse{Error: name, Message: message, Code: code})
}

func (h *ItemHandler) recordMetrics(ctx context.Context, method, route string, status int, start time.Time) {
	duration := time.Since(start).Seconds()

	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)

	h.metrics.RequestCounter.Add(ctx, 1, attrs)
	h.metrics.RequestDuration.Record(ctx, duration, attrs)
}
