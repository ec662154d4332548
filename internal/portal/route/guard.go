package route

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/nhatro/ownerportal/internal/portal/session"
	"github.com/nhatro/ownerportal/pkg/httpx"
	"github.com/nhatro/ownerportal/pkg/slogx"
)

type ctxKey struct{}

// WithUser stores the authorized operator in ctx.
func WithUser(ctx context.Context, u session.UserIdentity) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFromContext returns the operator Guard admitted.
func UserFromContext(ctx context.Context) (session.UserIdentity, bool) {
	u, ok := ctx.Value(ctxKey{}).(session.UserIdentity)
	return u, ok
}

// Views renders the non-Allow outcomes of a page navigation.
type Views interface {
	Pending(w http.ResponseWriter, r *http.Request)
	Denied(w http.ResponseWriter, r *http.Request)
}

// Guard gates page handlers. Pending and Deny render views, RedirectToLogin
// answers 303 to LoginPath.
func Guard(a *Authorizer, views Views) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, snap := a.Authorize()
			log := slogx.FromContext(r.Context())

			switch decision {
			case Allow:
				next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), *snap.User)))
			case Pending:
				views.Pending(w, r)
			case Deny:
				log.Warn("navigation denied", slog.String("path", r.URL.Path))
				views.Denied(w, r)
			default:
				httpx.NoCache(w)
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			}
		})
	}
}

// GuardAPI gates JSON endpoints with status codes instead of views.
func GuardAPI(a *Authorizer) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, snap := a.Authorize()

			switch decision {
			case Allow:
				next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), *snap.User)))
			case Pending:
				w.Header().Set("Retry-After", "1")
				httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"error": "session_pending",
				})
			case Deny:
				httpx.WriteJSON(w, http.StatusForbidden, map[string]string{
					"error": "access_denied",
				})
			default:
				httpx.WriteJSON(w, http.StatusUnauthorized, map[string]string{
					"error":    "unauthenticated",
					"redirect": LoginPath,
				})
			}
		})
	}
}
