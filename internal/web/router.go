// Package web implements the appliance's HTTP surface: request routing
// against the shared session, page rendering and the HTTP/1.0 wire format.
package web

import (
	"net/http"
	"net/url"
	"time"

	"github.com/sweeney/netpowerswitch/internal/logic"
)

// Paths with special handling. Every other path renders the login or
// control page depending on the session.
const (
	StylePath  = "/style.css"
	TogglePath = "/toggle"
)

const (
	contentTypeHTML = "text/html"
	contentTypeCSS  = "text/css"
)

// Request is the parsed view of one inbound request.
type Request struct {
	Method string
	Path   string
	Form   url.Values // form-encoded body fields; nil unless POST
}

// Response is what gets written back on the connection.
type Response struct {
	Status      int
	ContentType string // omitted from the headers when empty
	Body        []byte
}

// Result is a Response plus the side effect routing applied, if any.
type Result struct {
	Response
	Toggled bool
	On      bool // output state after routing
}

// Router decides the response to a request and applies its effects on
// the session and the output.
type Router struct {
	guard  *logic.SessionGuard
	output *logic.Output
	pages  *Templates
}

// NewRouter creates a Router.
func NewRouter(guard *logic.SessionGuard, output *logic.Output, pages *Templates) *Router {
	return &Router{guard: guard, output: output, pages: pages}
}

// Route handles req at now. The stylesheet is served without a session;
// otherwise an unauthenticated caller gets the login page unless it
// submits the right password, and an authenticated caller gets the
// control page, toggling first when the path is TogglePath.
func (r *Router) Route(req Request, now time.Time) Result {
	if req.Path == StylePath {
		css, found := r.pages.Asset(StylePath[1:])
		if !found {
			return Result{Response: Response{Status: http.StatusNotFound}}
		}
		return Result{Response: ok(contentTypeCSS, css), On: r.output.Read()}
	}

	if !r.guard.IsAuthenticated(now) {
		if req.Method == http.MethodPost && req.Form.Has("password") &&
			r.guard.Authenticate(req.Form.Get("password"), now) {
			on := r.output.Read()
			return Result{Response: r.control(on), On: on}
		}
		return Result{Response: ok(contentTypeHTML, r.pages.RenderLogin()), On: r.output.Read()}
	}

	r.guard.Refresh(now)
	if req.Path == TogglePath {
		on := r.output.Toggle()
		return Result{Response: r.control(on), Toggled: true, On: on}
	}
	on := r.output.Read()
	return Result{Response: r.control(on), On: on}
}

func (r *Router) control(on bool) Response {
	return ok(contentTypeHTML, r.pages.RenderControl(logic.StateOf(on)))
}

func ok(contentType string, body []byte) Response {
	return Response{Status: http.StatusOK, ContentType: contentType, Body: body}
}
