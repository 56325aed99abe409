// package server contains middleware & handlers for the music proxy web service
package server

import (
	"net/http"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, recovery, CORS, rate limiting, etc.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the music proxy service.
// Implementations handle specific endpoints (auth, catalog, health).
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// wrappedHandler applies extra middleware to a single [Handler] without
// touching the router-wide stack.
type wrappedHandler struct {
	Handler
	wrapped http.Handler
}

func (h *wrappedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.wrapped.ServeHTTP(w, r)
}

// WithMiddleware wraps a [Handler] with handler-specific middleware,
// applied in reverse order (last added wraps first).
func WithMiddleware(handler Handler, middleware ...Middleware) Handler {
	wrapped := http.Handler(handler)
	for i := len(middleware) - 1; i >= 0; i-- {
		wrapped = middleware[i](wrapped)
	}

	return &wrappedHandler{Handler: handler, wrapped: wrapped}
}
