package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSettingsRouter(settings *mockSettingsStore) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewSettingsHandler(settings, logger)

	r := chi.NewRouter()
	r.Get("/api/v1/settings/{channelId}/{key}", h.GetSetting)
	r.Put("/api/v1/settings/{channelId}/{key}", h.SetSetting)
	r.Post("/api/v1/shopkeys", h.BindShopkey)
	return r
}

func TestGetSetting(t *testing.T) {
	settings := new(mockSettingsStore)
	settings.On("Get", mock.Anything, "active", "channel-1").Return("true", nil)
	router := newSettingsRouter(settings)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings/channel-1/active", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "active", resp.Data["key"])
	assert.Equal(t, "true", resp.Data["value"])
}

func TestSetSetting(t *testing.T) {
	t.Run("stores the value", func(t *testing.T) {
		settings := new(mockSettingsStore)
		settings.On("Set", mock.Anything, "active", "true", "channel-1").Return(nil)
		router := newSettingsRouter(settings)

		req := httptest.NewRequest(http.MethodPut, "/api/v1/settings/channel-1/active",
			strings.NewReader(`{"value":"true"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		settings.AssertExpectations(t)
	})

	t.Run("rejects an empty value", func(t *testing.T) {
		settings := new(mockSettingsStore)
		router := newSettingsRouter(settings)

		req := httptest.NewRequest(http.MethodPut, "/api/v1/settings/channel-1/active",
			strings.NewReader(`{"value":""}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		settings.AssertNotCalled(t, "Set")
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		settings := new(mockSettingsStore)
		router := newSettingsRouter(settings)

		req := httptest.NewRequest(http.MethodPut, "/api/v1/settings/channel-1/active",
			strings.NewReader(`{not json`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBindShopkey(t *testing.T) {
	t.Run("binds to a channel", func(t *testing.T) {
		settings := new(mockSettingsStore)
		settings.On("BindShopkey", mock.Anything, testShopkey, mock.Anything).Return(nil)
		router := newSettingsRouter(settings)

		body := `{"shopkey":"` + testShopkey + `","channel_id":"01902f3e-4b7a-7c33-aa45-9f2e1d6b8c01"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/shopkeys", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		settings.AssertExpectations(t)
	})

	t.Run("binds to the ambient channel when channel_id is omitted", func(t *testing.T) {
		settings := new(mockSettingsStore)
		settings.On("BindShopkey", mock.Anything, testShopkey, (*string)(nil)).Return(nil)
		router := newSettingsRouter(settings)

		body := `{"shopkey":"` + testShopkey + `"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/shopkeys", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		settings.AssertExpectations(t)
	})

	t.Run("rejects a malformed shopkey", func(t *testing.T) {
		settings := new(mockSettingsStore)
		router := newSettingsRouter(settings)

		body := `{"shopkey":"not-a-shopkey"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/shopkeys", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		settings.AssertNotCalled(t, "BindShopkey")
	})

	t.Run("rejects a non-uuid channel id", func(t *testing.T) {
		settings := new(mockSettingsStore)
		router := newSettingsRouter(settings)

		body := `{"shopkey":"` + testShopkey + `","channel_id":"not-a-uuid"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/shopkeys", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
