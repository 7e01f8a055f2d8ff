package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookworld/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSuccess_Notifications(t *testing.T) {
	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		notify.FromContext(r.Context()).Error("Error", "Failed to fetch books. Please try again.")
		JSONSuccess(w, r, map[string]string{"state": "empty"}, map[string]any{"url": "/discover"})
	}), RequestIDMiddleware, NotificationsMiddleware)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/discover", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Success bool `json:"success"`
		Meta    struct {
			RequestID     string                `json:"request_id"`
			URL           string                `json:"url"`
			Notifications []notify.Notification `json:"notifications"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.Meta.RequestID)
	assert.Equal(t, "/discover", body.Meta.URL)
	require.Len(t, body.Meta.Notifications, 1)
	assert.Equal(t, notify.VariantDestructive, body.Meta.Notifications[0].Variant)
}

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", []ErrorDetail{{Field: "sort", Message: "bad"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"VALIDATION_ERROR","message":"Invalid input","details":[{"field":"sort","message":"bad"}]}}`, w.Body.String())
}

func TestJSONStatus_NotFoundStillRendersData(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/works/OLxW", nil)

	JSONStatus(w, r, http.StatusNotFound, map[string]string{"state": "not_found"}, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"data":{"state":"not_found"}}`, w.Body.String())
}
