package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/singladno/marinaobuv-sub001/internal/auth"
	"github.com/singladno/marinaobuv-sub001/internal/category"
	"github.com/singladno/marinaobuv-sub001/internal/category/dto"
	"github.com/singladno/marinaobuv-sub001/internal/category/tree"
	"github.com/singladno/marinaobuv-sub001/pkg/i18n"
	"github.com/singladno/marinaobuv-sub001/pkg/logger"
	"github.com/singladno/marinaobuv-sub001/pkg/middleware"
	"go.uber.org/zap"
)

var errBadRequest = errors.New("bad request")

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

type HTTPHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewHTTPHandler(uc category.UseCase, log logger.ZapLogger) *HTTPHandler {
	return &HTTPHandler{
		uc:     uc,
		logger: log,
	}
}

// NewRouter mounts the category API under /api/v1/categories and a
// /healthz probe running checks.
func NewRouter(h *HTTPHandler, log logger.ZapLogger, checks map[string]HealthCheck) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.MerchantContext)

	r.Get("/healthz", healthz(checks))
	r.Route("/api/v1/categories", h.Routes)
	return r
}

func (h *HTTPHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/tree", h.tree)
	r.Get("/flat", h.flat)
	r.Get("/selection", h.selection)
	r.Get("/expansion", h.expansion)
	r.Get("/search", h.search)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/parents", h.parents)
}

func (h *HTTPHandler) list(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := h.merchant(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filters := &dto.CategoryFilters{
		MerchantID: merchantID,
		Page:       atoiOr(q.Get("page"), 1),
		PageSize:   atoiOr(q.Get("pageSize"), 0),
	}
	if q.Has("parent") {
		parent := q.Get("parent")
		filters.ParentID = &parent
	}
	if raw := q.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			h.writeError(w, r, errBadRequest)
			return
		}
		filters.IsActive = &active
	}

	cats, total, err := h.uc.ListCategories(r.Context(), filters)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats, "total": total})
}

func (h *HTTPHandler) create(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := h.merchant(w, r)
	if !ok {
		return
	}
	var input dto.CreateCategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, r, errBadRequest)
		return
	}
	input.MerchantID = merchantID

	cat, err := h.uc.CreateCategory(r.Context(), &input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

func (h *HTTPHandler) get(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := h.merchant(w, r)
	if !ok {
		return
	}
	cat, err := h.uc.GetCategory(r.Context(), merchantID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (h *HTTPHandler) update(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := h.merchant(w, r)
	if !ok {
		return
	}
	var input dto.UpdateCategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, r, errBadRequest)
		return
	}
	input.ID = chi.URLParam(r, "id")
	input.MerchantID = merchantID

	cat, err := h.uc.UpdateCategory(r.Context(), &input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (h *HTTPHandler) delete(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := h.merchant(w, r)
	if !ok {
		return
	}
	if err := h.uc.DeleteCategory(r.Context(), merchantID, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) tree(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := h.merchant(w, r)
	if !ok {
		return
	}
	nodes, err := h.uc.GetTree(r.Context(), merchantID, r.URL.Query().Get("search"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"nodes": nodes})
}

func (h *HTTPHandler) flat(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := h.merchant(w, r)
	if !ok {
		return
	}
	entries, err := h.uc.Flatten(r.Context(), merchantID, r.URL.Query().Get("exclude"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *HTTPHandler) parents(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := h.merchant(w, r)
	if !ok {
		return
	}
	var mode *tree.ParentMode
	if raw := r.URL.Query().Get("mode"); raw != "" {
		m, err := tree.ParseParentMode(raw)
		if err != nil {
			h.writeError(w, r, errBadRequest)
			return
		}
		mode = &m
	}
	cats, err := h.uc.ValidParents(r.Context(), merchantID, chi.URLParam(r, "id"), mode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

func (h *HTTPHandler) selection(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := h.merchant(w, r)
	if !ok {
		return
	}
	selected, err := h.uc.ReconcileSelection(r.Context(), merchantID, r.URL.Query().Get("previous"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"selectedId": selected})
}

func (h *HTTPHandler) expansion(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := h.merchant(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	expanded, err := h.uc.Expansion(r.Context(), &dto.TreeQuery{
		MerchantID: merchantID,
		Search:     q.Get("search"),
		SelectedID: q.Get("selected"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"expanded": expanded})
}

func (h *HTTPHandler) search(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := h.merchant(w, r)
	if !ok {
		return
	}
	nodes, err := h.uc.SearchTree(r.Context(), merchantID, r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"nodes": nodes})
}

func (h *HTTPHandler) merchant(w http.ResponseWriter, r *http.Request) (string, bool) {
	merchantID := auth.GetMerchantID(r.Context())
	if merchantID == "" {
		h.writeError(w, r, category.ErrMerchantRequired)
		return "", false
	}
	return merchantID, true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := classify(err)
	if errors.Is(err, errBadRequest) {
		kind = errorKind{http: http.StatusBadRequest, messageID: "request.invalid"}
	}
	if kind.http == http.StatusInternalServerError {
		h.logger.Error("category request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, kind.http, map[string]string{
		"code":  kind.messageID,
		"error": i18n.T(kind.messageID, nil, r.Header.Get("Accept-Language")),
	})
}

func healthz(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		report := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				report[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			report[name] = "ok"
		}
		writeJSON(w, status, report)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func atoiOr(s string, fallback int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return fallback
}
