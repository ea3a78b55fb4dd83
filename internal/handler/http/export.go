package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/utafrali/searchfeed/pkg/httputil"
	"github.com/utafrali/searchfeed/pkg/validator"

	"github.com/utafrali/searchfeed/internal/domain"
	"github.com/utafrali/searchfeed/internal/export"
)

// ExportHandler handles HTTP requests for the feed export endpoint.
type ExportHandler struct {
	exporter *export.Exporter
	logger   *slog.Logger
}

// NewExportHandler creates a new export HTTP handler.
func NewExportHandler(exporter *export.Exporter, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		exporter: exporter,
		logger:   logger,
	}
}

// ExportParams is the validated query-parameter set of an export call.
type ExportParams struct {
	Shopkey   string `validate:"required,len=32,hexadecimal"`
	Start     int    `validate:"gte=0"`
	Count     int    `validate:"gt=0"`
	ProductID string `validate:"omitempty,max=255"`
}

// Export handles GET /export. It answers with the XML feed on success, 400
// on malformed parameters, and 422 with a JSON error list when a targeted
// product could not be exported.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	params := ExportParams{
		Shopkey:   r.URL.Query().Get("shopkey"),
		Start:     domain.DefaultExportStart,
		Count:     domain.DefaultExportCount,
		ProductID: r.URL.Query().Get("productId"),
	}

	if v := r.URL.Query().Get("start"); v != "" {
		start, err := strconv.Atoi(v)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "start must be a valid integer"},
			})
			return
		}
		params.Start = start
	}
	if v := r.URL.Query().Get("count"); v != "" {
		count, err := strconv.Atoi(v)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "count must be a valid integer"},
			})
			return
		}
		params.Count = count
	}

	if err := validator.Validate(params); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	req := &domain.ExportRequest{
		Shopkey:   params.Shopkey,
		Start:     params.Start,
		Count:     params.Count,
		ProductID: params.ProductID,
	}

	result, err := h.exporter.Export(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if result.Failed() {
		httputil.WriteErrorList(w, result.Errors)
		return
	}

	httputil.WriteXML(w, http.StatusOK, result.Feed)
}
