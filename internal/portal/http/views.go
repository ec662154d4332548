package http

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/nhatro/ownerportal/internal/portal/route"
	"github.com/nhatro/ownerportal/internal/portal/session"
	"github.com/nhatro/ownerportal/pkg/httpx"
	"github.com/nhatro/ownerportal/pkg/slogx"
)

//go:embed templates/*.html
var templateFS embed.FS

type navItem struct {
	Path   string
	Label  string
	Active bool
}

var sections = []navItem{
	{Path: "/dashboard", Label: "Dashboard"},
	{Path: "/rooms", Label: "Rooms"},
	{Path: "/tenants", Label: "Bookings"},
	{Path: "/contracts", Label: "Contracts"},
	{Path: "/payments", Label: "Payments"},
	{Path: "/vehicles", Label: "Vehicles"},
	{Path: "/bills", Label: "Bills"},
}

type loginPage struct {
	Title     string
	FormToken string
	Email     string
	Message   string
	Fields    map[string]string
}

type consolePage struct {
	Title     string
	Section   string
	FormToken string
	User      session.UserIdentity
	Nav       []navItem
}

type simplePage struct {
	Title string
}

var _ route.Views = (*Views)(nil)

// Views renders the console's HTML pages. It implements route.Views.
type Views struct {
	pages     map[string]*template.Template
	formToken string
}

// NewViews parses the embedded templates. formToken is written into every
// form and must come back on every form post.
func NewViews(formToken string) (*Views, error) {
	v := &Views{pages: make(map[string]*template.Template), formToken: formToken}
	for _, page := range []string{"login.html", "loading.html", "forbidden.html", "console.html"} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, err
		}
		v.pages[page] = t
	}
	return v, nil
}

// FormToken is the value every form post must carry.
func (v *Views) FormToken() string {
	return v.formToken
}

func (v *Views) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	var buf bytes.Buffer
	if err := v.pages[page].ExecuteTemplate(&buf, page, data); err != nil {
		slogx.FromContext(r.Context()).Error("rendering page failed", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	httpx.NoCache(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// Pending is shown while the session is being restored. The browser retries
// after a second.
func (v *Views) Pending(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "1")
	w.Header().Set("Refresh", "1")
	v.render(w, r, http.StatusServiceUnavailable, "loading.html", simplePage{Title: "Loading"})
}

// Denied is the full-page access-denied view.
func (v *Views) Denied(w http.ResponseWriter, r *http.Request) {
	v.render(w, r, http.StatusForbidden, "forbidden.html", simplePage{Title: "Access denied"})
}

// Login renders the login form.
func (v *Views) Login(w http.ResponseWriter, r *http.Request, status int, page loginPage) {
	page.Title = "Sign in"
	page.FormToken = v.formToken
	v.render(w, r, status, "login.html", page)
}

// Console renders a console section for the signed-in operator.
func (v *Views) Console(w http.ResponseWriter, r *http.Request, user session.UserIdentity) {
	path := r.URL.Path
	if path == "/" {
		path = route.LandingPath
	}

	page := consolePage{
		Title:     "Dashboard",
		Section:   "dashboard",
		FormToken: v.formToken,
		User:      user,
		Nav:       make([]navItem, len(sections)),
	}
	for i, item := range sections {
		item.Active = item.Path == path
		if item.Active {
			page.Title = item.Label
			page.Section = item.Path[1:]
		}
		page.Nav[i] = item
	}

	v.render(w, r, http.StatusOK, "console.html", page)
}
