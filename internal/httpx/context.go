package httpx

import (
	"context"
	"net/http"
)

type contextKey string

const (
	visitorIDKey    contextKey = "visitorID"
	visitorFreshKey contextKey = "visitorFresh"
	requestIDKey    contextKey = "requestID"
)

// VisitorIDFrom retrieves the visitor ID from the request context.
func VisitorIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(visitorIDKey).(string); ok {
		return v
	}
	return ""
}

// ContextWithVisitor returns a new context with the visitor ID.
func ContextWithVisitor(ctx context.Context, visitorID string) context.Context {
	return context.WithValue(ctx, visitorIDKey, visitorID)
}

// VisitorIsNew reports whether the visitor ID was minted for this request
// because no valid cookie came with it.
func VisitorIsNew(r *http.Request) bool {
	fresh, _ := r.Context().Value(visitorFreshKey).(bool)
	return fresh
}

// RequestIDFrom retrieves the request ID from the request context.
func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}
