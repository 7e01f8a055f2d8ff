package httpx

import (
	"encoding/json"
	"net/http"

	"bookworld/internal/notify"
)

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Success bool              `json:"success"`
	Error   ErrorResponseBody `json:"error"`
	Meta    interface{}       `json:"meta,omitempty"`
}

type ErrorResponseBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// buildMeta merges request_id, pending notifications and handler meta.
func buildMeta(r *http.Request, customMeta map[string]any) map[string]any {
	meta := make(map[string]any, len(customMeta)+2)
	if requestID := RequestIDFrom(r); requestID != "" {
		meta["request_id"] = requestID
	}
	if pending := notify.FromContext(r.Context()).Drain(); len(pending) > 0 {
		meta["notifications"] = pending
	}
	for k, v := range customMeta {
		meta[k] = v
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func JSONSuccess(w http.ResponseWriter, r *http.Request, data interface{}, meta map[string]any) {
	JSONStatus(w, r, http.StatusOK, data, meta)
}

// JSONStatus writes a success envelope with a non-200 status, such as a
// detail page rendered in its not-found state.
func JSONStatus(w http.ResponseWriter, r *http.Request, status int, data interface{}, meta map[string]any) {
	m := buildMeta(r, meta)
	resp := SuccessResponse{Success: status < http.StatusBadRequest, Data: data}
	if m != nil {
		resp.Meta = m
	}
	writeJSON(w, status, resp)
}

func JSONSuccessNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func JSONError(w http.ResponseWriter, r *http.Request, statusCode int, code string, message string, details []ErrorDetail) {
	resp := ErrorResponse{
		Success: false,
		Error: ErrorResponseBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	if m := buildMeta(r, nil); m != nil {
		resp.Meta = m
	}
	writeJSON(w, statusCode, resp)
}
