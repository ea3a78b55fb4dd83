package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/searchfeed/pkg/httputil"
	"github.com/utafrali/searchfeed/pkg/validator"

	"github.com/utafrali/searchfeed/internal/repository"
)

// SettingsHandler exposes the per-channel plugin settings and the shopkey
// binding table.
type SettingsHandler struct {
	settings repository.SettingsStore
	logger   *slog.Logger
}

// NewSettingsHandler creates a new settings HTTP handler.
func NewSettingsHandler(settings repository.SettingsStore, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		logger:   logger,
	}
}

// SetSettingRequest is the JSON request body for storing a setting value.
type SetSettingRequest struct {
	Value string `json:"value" validate:"required,max=4096"`
}

// BindShopkeyRequest is the JSON request body for binding a shopkey to a
// sales channel. A missing channel_id binds to the ambient channel.
type BindShopkeyRequest struct {
	Shopkey   string  `json:"shopkey" validate:"required,len=32,hexadecimal"`
	ChannelID *string `json:"channel_id" validate:"omitempty,uuid"`
}

// GetSetting handles GET /api/v1/settings/{channelId}/{key}
func (h *SettingsHandler) GetSetting(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelId")
	key := chi.URLParam(r, "key")

	value, err := h.settings.Get(r.Context(), key, channelID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"key": key, "value": value}})
}

// SetSetting handles PUT /api/v1/settings/{channelId}/{key}
func (h *SettingsHandler) SetSetting(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelId")
	key := chi.URLParam(r, "key")

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req SetSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.settings.Set(r.Context(), key, req.Value, channelID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"key": key, "status": "stored"}})
}

// BindShopkey handles POST /api/v1/shopkeys
func (h *SettingsHandler) BindShopkey(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req BindShopkeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.settings.BindShopkey(r.Context(), req.Shopkey, req.ChannelID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: map[string]string{"shopkey": req.Shopkey, "status": "bound"}})
}
