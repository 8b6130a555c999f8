package handler

import (
	"io"
	"net/http"

	"cart-catalog/graph"
)

// GraphQLSchema serves the SDL for client code generation.
func (h *Handler) GraphQLSchema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, graph.SDL)
}
