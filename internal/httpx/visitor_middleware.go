package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const (
	VisitorCookieName = "bw_visitor"
	visitorMaxAge     = 400 * 24 * time.Hour
)

// VisitorMiddleware pins each browser to a visitor ID carried in a signed
// cookie. The ID scopes the visitor's persisted reading list.
type VisitorMiddleware struct {
	codec  *securecookie.SecureCookie
	secure bool
}

func NewVisitorMiddleware(hashKey []byte, secure bool) *VisitorMiddleware {
	codec := securecookie.New(hashKey, nil)
	codec.MaxAge(int(visitorMaxAge.Seconds()))
	return &VisitorMiddleware{codec: codec, secure: secure}
}

func (v *VisitorMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		visitorID := v.decode(r)
		fresh := visitorID == ""
		if fresh {
			visitorID = uuid.NewString()
			if encoded, err := v.codec.Encode(VisitorCookieName, visitorID); err == nil {
				http.SetCookie(w, &http.Cookie{
					Name:     VisitorCookieName,
					Value:    encoded,
					Path:     "/",
					MaxAge:   int(visitorMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   v.secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
		}

		noteVisitor(w, visitorID)
		ctx := ContextWithVisitor(r.Context(), visitorID)
		if fresh {
			ctx = context.WithValue(ctx, visitorFreshKey, true)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (v *VisitorMiddleware) decode(r *http.Request) string {
	c, err := r.Cookie(VisitorCookieName)
	if err != nil {
		return ""
	}
	var visitorID string
	if err := v.codec.Decode(VisitorCookieName, c.Value, &visitorID); err != nil {
		return ""
	}
	if _, err := uuid.Parse(visitorID); err != nil {
		return ""
	}
	return visitorID
}
