package readinglist

import (
	"net/http"

	"bookworld/internal/httpx"

	"go.uber.org/zap"
)

type HTTPHandler struct {
	service *Service
	log     *zap.Logger
}

func NewHTTPHandler(service *Service, log *zap.Logger) *HTTPHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPHandler{service: service, log: log}
}

type Item struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type entryPath struct {
	ID string `json:"id" validate:"required,workid"`
}

// List handles GET /lists
// @Summary Reading list
// @Description The visitor's reading list, newest addition last
// @Tags lists
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /lists [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.For(httpx.VisitorIDFrom(r)).List(r.Context())
	if err != nil {
		h.log.Error("list reading list", zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		items = append(items, Item{ID: id, URL: "/works/" + id})
	}
	httpx.JSONSuccess(w, r, items, map[string]any{"total": len(items)})
}

// Remove handles DELETE /lists/{id}
// @Summary Remove from reading list
// @Description Remove every occurrence of the work; removing an absent work succeeds
// @Tags lists
// @Param id path string true "Work ID"
// @Success 204
// @Failure 400 {object} httpx.ErrorResponse
// @Router /lists/{id} [delete]
func (h *HTTPHandler) Remove(w http.ResponseWriter, r *http.Request) {
	p := entryPath{ID: r.PathValue("id")}
	if details := httpx.ValidateStruct(p); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid work id", details)
		return
	}

	if err := h.service.For(httpx.VisitorIDFrom(r)).Remove(r.Context(), p.ID); err != nil {
		h.log.Error("remove from reading list", zap.String("work_id", p.ID), zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccessNoContent(w)
}
