package wctx

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouteInfo represents a single registered route for debugging purposes.
type RouteInfo struct {
	Method  string `json:"method"`
	Pattern string `json:"pattern"`
}

// AttributeInfo describes a container attribute for debugging purposes.
type AttributeInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Disposable bool   `json:"disposable"`
}

// RegisterDebugRoutes exposes the debug endpoints when enabled:
// GET /debug/routes lists every route registered on the router,
// GET /debug/components lists the root context component names, and
// GET /debug/attributes lists the container attributes.
func RegisterDebugRoutes(r chi.Router, c *Container, enabled bool) {
	if !enabled || r == nil {
		return
	}

	r.Get("/debug/routes", func(w http.ResponseWriter, req *http.Request) {
		routes := enumerateRoutes(r)
		RespondCollection(w, "route", routes, len(routes))
	})

	r.Get("/debug/components", func(w http.ResponseWriter, req *http.Request) {
		appctx, ok := RootContext(c)
		if !ok {
			RespondError(w, http.StatusServiceUnavailable, "root context not initialized")
			return
		}
		names := appctx.ComponentNames()
		RespondCollection(w, "component", names, len(names))
	})

	r.Get("/debug/attributes", func(w http.ResponseWriter, req *http.Request) {
		names := c.AttributeNames()
		attrs := make([]AttributeInfo, 0, len(names))
		for _, name := range names {
			value, ok := c.Attribute(name)
			if !ok {
				continue
			}
			_, disposable := value.(Disposable)
			attrs = append(attrs, AttributeInfo{
				Name:       name,
				Type:       fmt.Sprintf("%T", value),
				Disposable: disposable,
			})
		}
		RespondCollection(w, "attribute", attrs, len(attrs))
	})
}

func enumerateRoutes(r chi.Router) []RouteInfo {
	routes := make([]RouteInfo, 0)
	_ = chi.Walk(r, func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		routes = append(routes, RouteInfo{Method: method, Pattern: route})
		return nil
	})
	return routes
}
