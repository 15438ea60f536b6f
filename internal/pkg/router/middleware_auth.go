package router

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shandysiswandi/pawhaven/internal/pkg/jwt"
)

// routeSet holds "METHOD /pattern" keys.
type routeSet map[string]struct{}

func newRouteSet(byMethod map[string][]string) routeSet {
	rs := routeSet{
		http.MethodGet + " /":       {},
		http.MethodGet + " /health": {},
	}
	for method, patterns := range byMethod {
		for _, p := range patterns {
			rs[method+" "+p] = struct{}{}
		}
	}
	return rs
}

func (rs routeSet) has(method, pattern string) bool {
	_, ok := rs[method+" "+pattern]
	return ok
}

// bearerToken returns the credentials of an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

// middlewareAuthentication requires a valid access token on every route not in
// public. Tokens minted for another audience, such as sign-in challenges, fail
// verification here.
func middlewareAuthentication(verifier jwt.JWT, public routeSet) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if public.has(r.Method, matchedRoutePath(r)) {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				writeJSON(w, errorResponse{Message: "Authentication required"}, http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(token)
			if errors.Is(err, jwt.ErrTokenExpired) {
				writeJSON(w, errorResponse{Message: "Access token has expired"}, http.StatusUnauthorized)
				return
			}
			if err != nil {
				slog.DebugContext(r.Context(), "rejected access token", "error", err)
				writeJSON(w, errorResponse{Message: "Invalid or expired token"}, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(jwt.NewContext(r.Context(), claims)))
		})
	}
}
