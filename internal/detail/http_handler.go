package detail

import (
	"net/http"

	"bookworld/internal/httpx"
	"bookworld/internal/readinglist"
)

type HTTPHandler struct {
	svc   *Service
	lists *readinglist.Service
}

func NewHTTPHandler(svc *Service, lists *readinglist.Service) *HTTPHandler {
	return &HTTPHandler{svc: svc, lists: lists}
}

type workPath struct {
	ID string `json:"id" validate:"required,workid"`
}

func (h *HTTPHandler) pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	p := workPath{ID: r.PathValue("id")}
	if details := httpx.ValidateStruct(p); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid work id", details)
		return "", false
	}
	return p.ID, true
}

// Get handles GET /works/{id}
// @Summary Work detail
// @Description Load one catalog work and whether it is on the visitor's reading list
// @Tags works
// @Produce json
// @Param id path string true "Work ID (e.g. OL45804W)"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.SuccessResponse
// @Router /works/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	view := h.svc.Load(r.Context(), id, h.lists.For(httpx.VisitorIDFrom(r)))
	status := http.StatusOK
	if view.State == StateNotFound {
		status = http.StatusNotFound
	}
	httpx.JSONStatus(w, r, status, view, nil)
}

// Toggle handles POST /works/{id}/toggle
// @Summary Toggle reading list membership
// @Description Add the work to the visitor's reading list, or remove it if present
// @Tags works
// @Produce json
// @Param id path string true "Work ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /works/{id}/toggle [post]
func (h *HTTPHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	view := newView(id)
	if err := h.svc.Toggle(r.Context(), &view, h.lists.For(httpx.VisitorIDFrom(r))); err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update your list", nil)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{
		"id":      view.ID,
		"in_list": view.InList,
		"label":   view.Label,
	}, nil)
}
