// Package router is the HTTP surface shared by every module: httprouter for
// matching, a fixed middleware stack and JSON envelopes for results.
package router

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/pawhaven/internal/pkg/config"
	"github.com/shandysiswandi/pawhaven/internal/pkg/instrument"
	"github.com/shandysiswandi/pawhaven/internal/pkg/jwt"
	"github.com/shandysiswandi/pawhaven/internal/pkg/uid"
)

// Handler returns a result to be wrapped in the success envelope, or an
// error to be mapped onto the error envelope.
type Handler func(r *Request) (any, error)

// Config holds what the router needs to build its middleware stack.
type Config struct {
	Config     config.Config
	UUID       uid.StringID
	JWT        jwt.JWT
	Instrument instrument.Instrumentation

	// PublicEndpoints maps an HTTP method to the route patterns reachable
	// without an access token.
	PublicEndpoints map[string][]string
}

// Router is an http.Handler. Every endpoint registered through it runs
// behind the same middleware stack.
type Router struct {
	mux   *httprouter.Router
	stack []Middleware
}

func NewRouter(cfg Config) *Router {
	mux := &httprouter.Router{
		RedirectTrailingSlash:  true,
		RedirectFixedPath:      true,
		HandleMethodNotAllowed: true,
		HandleOPTIONS:          true,
		SaveMatchedRoutePath:   true,
		NotFound: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, errorResponse{Message: "Endpoint not found"}, http.StatusNotFound)
		}),
		MethodNotAllowed: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, errorResponse{Message: "Method not allowed"}, http.StatusMethodNotAllowed)
		}),
	}

	static := func(msg string) httprouter.Handle {
		return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
			writeJSON(w, map[string]string{"message": msg}, http.StatusOK)
		}
	}
	mux.GET("/", static("Welcome to PawHaven API"))
	mux.GET("/health", static("OK"))

	// outermost first
	return &Router{
		mux: mux,
		stack: []Middleware{
			middlewareRecoverer,
			middlewareIP,
			middlewareCorrelationID(cfg.UUID),
			middlewareObservability(cfg.Config, cfg.Instrument),
			middlewareMaintenance(cfg.Config),
			middlewareAuthentication(cfg.JWT, newRouteSet(cfg.PublicEndpoints)),
		},
	}
}

func (r *Router) GET(path string, h Handler, mws ...Middleware) {
	r.handle(http.MethodGet, path, h, mws)
}

func (r *Router) POST(path string, h Handler, mws ...Middleware) {
	r.handle(http.MethodPost, path, h, mws)
}

func (r *Router) handle(method, path string, h Handler, extra []Middleware) {
	final := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		resp, err := h(&Request{Request: req})
		if err == nil {
			encodeSuccess(w, resp)
			return
		}

		if rec, ok := w.(interface{ SetError(error) }); ok {
			rec.SetError(err)
		}
		encodeError(w, err)
	})

	mws := make([]Middleware, 0, len(r.stack)+len(extra))
	mws = append(append(mws, r.stack...), extra...)

	r.mux.Handler(method, path, Chain(final, mws...))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}
