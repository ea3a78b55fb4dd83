package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/utafrali/searchfeed/pkg/httputil"

	"github.com/utafrali/searchfeed/internal/domain"
	"github.com/utafrali/searchfeed/internal/export"
	"github.com/utafrali/searchfeed/internal/repository"
	"github.com/utafrali/searchfeed/internal/rewrite"
)

// SearchHandler serves storefront search result sets rewritten by the
// external search service.
type SearchHandler struct {
	exporter *export.Exporter
	catalog  repository.CatalogRepository
	rewriter *rewrite.Rewriter
	logger   *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(exporter *export.Exporter, catalog repository.CatalogRepository, rewriter *rewrite.Rewriter, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		exporter: exporter,
		catalog:  catalog,
		rewriter: rewriter,
		logger:   logger,
	}
}

// Search handles GET /api/v1/search. It computes the storefront's own result
// set for the query window, then lets the rewriter replace it with the
// external service's ranking; an unavailable upstream leaves the storefront
// result untouched.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	shopkey := r.URL.Query().Get("shopkey")
	if shopkey == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "shopkey is required"},
		})
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))

	start := domain.DefaultExportStart
	count := domain.DefaultExportCount
	if v := r.URL.Query().Get("start"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			start = n
		}
	}
	if v := r.URL.Query().Get("count"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			count = n
		}
	}

	sc, err := h.exporter.ResolveContext(r.Context(), shopkey)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	criteria := export.BuildCriteria(export.CriteriaOptions{
		Offset:            &start,
		Limit:             &count,
		ChannelID:         sc.Channel.ID,
		RequireVisibility: true,
	})

	ids, err := h.catalog.SearchIDs(r.Context(), criteria)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	original := rewrite.ResultSet{ProductIDs: ids.IDs, Total: ids.Total}
	result := h.rewriter.Rewrite(r.Context(), shopkey, query, original, start, count)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}
