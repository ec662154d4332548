package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/nhatro/ownerportal/internal/portal/route"
	"github.com/nhatro/ownerportal/internal/portal/session"
	"github.com/nhatro/ownerportal/internal/portal/store"
	"github.com/nhatro/ownerportal/pkg/authsdk"
	"github.com/nhatro/ownerportal/pkg/httpx"
	"github.com/nhatro/ownerportal/pkg/slogx"

	_ "github.com/nhatro/ownerportal/api/portal" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	gate       *session.Gate
	authorizer *route.Authorizer
	api        *authsdk.Session
	store      store.Store
	views      *Views

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	// LoginLimit throttles login attempts per client IP and email.
	LoginLimit httpx.RateLimitConfig
}

func NewRouter(
	gate *session.Gate,
	api *authsdk.Session,
	st store.Store,
	views *Views,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		gate:         gate,
		authorizer:   route.NewAuthorizer(gate),
		api:          api,
		store:        st,
		views:        views,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		LoginLimit:   httpx.LoginLimit,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerPages()
	r.registerAuth()
	r.registerSession()
	r.registerAPI()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Owner Portal API
//	@version		0.1.0
//	@description	Owner console for the rental management backend.
//	@description
//	@description	Only accounts with the owner role may sign in. The console keeps a single session per process and
//	@description	forwards data calls under /api/ to the backend with that session's bearer token.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerPages() {
	console := httpx.Chain(http.HandlerFunc(r.handleConsole),
		route.Guard(r.authorizer, r.views),
	)

	r.Mux.Handle("GET /{$}", console)
	for _, path := range route.Protected {
		if path == "/" {
			continue
		}
		r.Mux.Handle("GET "+path, console)
	}

	// Anything else lands on the login form
	r.Mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		httpx.NoCache(w)
		http.Redirect(w, req, route.LoginPath, http.StatusSeeOther)
	})
}

func (r *Router) handleConsole(w http.ResponseWriter, req *http.Request) {
	user, _ := route.UserFromContext(req.Context())
	r.views.Console(w, req, user)
}

func (r *Router) registerAuth() {
	h := &LoginHandler{
		Gate:       r.gate,
		Authorizer: r.authorizer,
		Views:      r.views,
		FormToken:  r.views.FormToken(),
	}

	r.Mux.HandleFunc("GET "+route.LoginPath, h.HandleForm)

	// Rate limited by IP + email form field to slow password guessing
	r.Mux.Handle("POST "+route.LoginPath,
		httpx.Chain(http.HandlerFunc(h.HandleSubmit),
			httpx.RateLimitByIPAndFormField(r.LoginLimit, "email"),
		),
	)

	r.Mux.HandleFunc("POST /logout", h.HandleLogout)
}

func (r *Router) registerSession() {
	h := &SessionHandler{Gate: r.gate, Authorizer: r.authorizer}

	r.Mux.HandleFunc("GET /v1/session", h.HandleGet)
	r.Mux.Handle("POST /v1/session",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.RateLimitByIP(r.LoginLimit),
		),
	)
	r.Mux.HandleFunc("DELETE /v1/session", h.HandleDelete)
}

func (r *Router) registerAPI() {
	r.Mux.Handle("/api/{path...}",
		httpx.Chain(&APIProxy{Session: r.api},
			sameOrigin,
			route.GuardAPI(r.authorizer),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.HandleFunc("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.HandleFunc("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.gate.Restored()))
}
