package http

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/nhatro/ownerportal/pkg/authsdk"
	"github.com/nhatro/ownerportal/pkg/httpx"
	"github.com/nhatro/ownerportal/pkg/slogx"
)

// forwardedRequestHeaders are copied to the backend.
var forwardedRequestHeaders = []string{"Accept", "Accept-Language", "Content-Type", "X-Request-ID"}

// forwardedResponseHeaders are copied back to the console.
var forwardedResponseHeaders = []string{"Content-Type", "Content-Disposition", "Content-Language", "Location"}

// APIProxy forwards console data calls to the backend with the session's
// bearer credential.
type APIProxy struct {
	Session *authsdk.Session
}

// ServeHTTP godoc
//
//	@Summary		Backend API
//	@Description	Forwards the request to the backend API under the same path, attaching the session's bearer token.
//	@Description	A 401 from the backend ends the console session; the caller gets 401 with a redirect hint.
//	@Description	Requests other than GET, HEAD and OPTIONS must be same-origin and carry a JSON body type or X-Requested-With.
//	@Tags			API
//	@Produce		json
//	@Param			path	path		string	true	"Backend path, e.g. rooms"
//	@Success		200		{object}	map[string]interface{}
//	@Failure		401		{object}	ErrorResponse	"Session ended"
//	@Failure		403		{object}	ErrorResponse	"Cross-site request"
//	@Failure		415		{object}	ErrorResponse	"Not JSON and no X-Requested-With"
//	@Failure		502		{object}	ErrorResponse	"Backend unreachable"
//	@Router			/api/{path} [get]
func (p *APIProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	path := "/" + r.PathValue("path")
	if r.URL.RawQuery != "" {
		path += "?" + r.URL.RawQuery
	}

	headers := make(http.Header)
	for _, name := range forwardedRequestHeaders {
		if v := r.Header.Values(name); len(v) > 0 {
			headers[name] = v
		}
	}

	var body io.Reader
	if r.ContentLength != 0 {
		body = r.Body
	}

	resp, err := p.Session.Do(r.Context(), r.Method, path, body, headers)
	if errors.Is(err, authsdk.ErrUnauthorized) {
		httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthenticated",
			Message: "Your session has ended. Please sign in again.",
		})
		return
	}
	if err != nil {
		log.Warn("backend call failed", slog.String("path", path), slog.Any("error", err))
		httpx.WriteJSON(w, http.StatusBadGateway, ErrorResponse{Error: "backend_unavailable"})
		return
	}
	defer resp.Body.Close()

	for _, name := range forwardedResponseHeaders {
		if v := resp.Header.Values(name); len(v) > 0 {
			w.Header()[name] = v
		}
	}
	httpx.NoCache(w)
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Debug("copying backend response interrupted", slog.Any("error", err))
	}
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}
