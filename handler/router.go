package handler

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"cart-catalog/logger"
)

type RouterOptions struct {
	GraphQLEndpoint string
	AllowedOrigins  []string
}

// NewRouter wires routes, CORS and request logging. CORS and logging wrap
// the router itself so preflight and unmatched requests pass through them.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := mux.NewRouter()
	h.RegisterRoutes(r, opts.GraphQLEndpoint)

	var handler http.Handler = r
	handler = cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})(handler)
	return logger.Middleware(h.log)(handler)
}
