package discovery

import (
	"net/http"

	"bookworld/internal/httpx"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// Option is one genre tab or sort choice, linked to the discover URL that
// changes only that filter.
type Option struct {
	Value  string `json:"value"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

type page struct {
	Snapshot
	Genres []Option `json:"genres"`
	Sorts  []Option `json:"sorts"`
}

func newPage(snap Snapshot) page {
	p := page{Snapshot: snap}
	for _, g := range Genres {
		p.Genres = append(p.Genres, Option{
			Value:  g,
			URL:    snap.Filters.WithGenre(g).URL(),
			Active: g == snap.Filters.Genre,
		})
	}
	for _, s := range SortModes {
		p.Sorts = append(p.Sorts, Option{
			Value:  string(s),
			URL:    snap.Filters.WithSort(s).URL(),
			Active: s == snap.Filters.Sort,
		})
	}
	return p
}

// Discover handles GET /discover
// @Summary Discover books
// @Description Search the catalog with free text, a genre tab and a sort mode
// @Tags discover
// @Produce json
// @Param q query string false "Search text"
// @Param genre query string false "Genre tab" default(all)
// @Param sort query string false "Sort mode (rating, new, old, title)" default(rating)
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /discover [get]
func (h *HTTPHandler) Discover(w http.ResponseWriter, r *http.Request) {
	filters, details := FiltersFromValues(r.URL.Query())
	if len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid filters", details)
		return
	}

	snap, stale := h.svc.Search(r.Context(), httpx.VisitorIDFrom(r), filters)
	httpx.JSONSuccess(w, r, newPage(snap), map[string]any{
		"stale": stale,
		"count": len(snap.Results),
	})
}
