package api

import (
	"context"
	"net/http"
	"net/url"
)

// SessionCookie carries the dashboard session token.
const SessionCookie = "session"

type userIDKey struct{}

func withUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

func userIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}

// requireSession resolves the session cookie to a user, or answers 401.
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil || cookie.Value == "" {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		userID, err := h.Sessions.VerifySession(cookie.Value)
		if err != nil {
			h.requestLogger(r).Debug("Rejected session", "error", err)
			respondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
	})
}

// requireSameOrigin rejects state-changing requests that did not come from
// the dashboard. The Referer origin stands in when Origin is absent.
func (h *Handler) requireSameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		if requestOrigin(r) != h.FrontendURL {
			h.requestLogger(r).Warn("Rejected cross-origin request", "origin", r.Header.Get("Origin"), "referer", r.Header.Get("Referer"))
			respondWithError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestOrigin(r *http.Request) string {
	if origin := r.Header.Get("Origin"); origin != "" {
		return origin
	}
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Scheme == "" || ref.Host == "" {
		return ""
	}
	return ref.Scheme + "://" + ref.Host
}
