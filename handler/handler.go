package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"cart-catalog/graph"
	"cart-catalog/service"
	"cart-catalog/store"
)

// Handler is the HTTP layer that talks to service.ServiceInterface
type Handler struct {
	svc service.ServiceInterface
	gql http.Handler
	log *slog.Logger
}

// NewHandler returns a Handler instance
func NewHandler(s service.ServiceInterface, log *slog.Logger) *Handler {
	return &Handler{svc: s, gql: graph.NewServer(s, log), log: log}
}

// RegisterRoutes registers all routes on the provided router
func (h *Handler) RegisterRoutes(r *mux.Router, graphqlEndpoint string) {
	r.Use(h.recoverer)

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	// GraphQL
	r.Handle(graphqlEndpoint, h.gql).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc(graphqlEndpoint+"/schema.graphql", h.GraphQLSchema).Methods(http.MethodGet)

	// Products
	r.HandleFunc("/products", h.ListProducts).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}", h.UpdateProduct).Methods(http.MethodPut)

	// Carts
	r.HandleFunc("/carts", h.ListCarts).Methods(http.MethodGet)
	r.HandleFunc("/carts/{id}", h.GetCart).Methods(http.MethodGet)
	r.HandleFunc("/carts/{id}/lines", h.AddToCart).Methods(http.MethodPost)
	r.HandleFunc("/carts/{id}/lines", h.ClearCart).Methods(http.MethodDelete)
}

// --- request shapes ---
type updateProductReq struct {
	Title string          `json:"title"`
	Stock int             `json:"stock"`
	Price decimal.Decimal `json:"price"`
}

type addToCartReq struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

// ErrorResponse is the body of every non-2xx REST response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// --- helpers ---
func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, errCode, msg string) {
	writeJSON(w, code, ErrorResponse{Error: errCode, Message: msg})
}

// writeServiceErr maps engine errors to status codes. Unknown errors are
// logged and reported without detail.
func (h *Handler) writeServiceErr(w http.ResponseWriter, err error) {
	var (
		nf *store.NotFoundError
		ve *service.ValidationError
	)
	switch {
	case errors.As(err, &nf):
		code := "PRODUCT_NOT_FOUND"
		if nf.Entity == store.EntityCart {
			code = "CART_NOT_FOUND"
		}
		writeErr(w, http.StatusNotFound, code, nf.Error())
	case errors.As(err, &ve):
		writeErr(w, http.StatusBadRequest, "INVALID_INPUT", ve.Error())
	default:
		h.log.Error("request failed", slog.Any("err", err))
		writeErr(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
	}
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				h.log.Error("panic serving request", slog.Any("panic", v), slog.String("path", r.URL.Path))
				writeErr(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// --- Handler ---

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListProducts handles GET /products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Products(r.Context()))
}

// UpdateProduct handles PUT /products/{id}
// body: { "title": "...", "stock": 10, "price": "1.99" }
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req updateProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "INVALID_INPUT", "invalid json")
		return
	}
	p, err := h.svc.UpdateProduct(r.Context(), service.ProductInput{
		ID:    mux.Vars(r)["id"],
		Title: req.Title,
		Stock: req.Stock,
		Price: req.Price,
	})
	if err != nil {
		h.writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListCarts handles GET /carts
func (h *Handler) ListCarts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Carts(r.Context()))
}

// GetCart handles GET /carts/{id}
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Cart(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// AddToCart handles POST /carts/{id}/lines
// body: { "productId": "...", "qty": 2 }
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "INVALID_INPUT", "invalid json")
		return
	}
	c, err := h.svc.AddProductToCart(r.Context(), service.AddToCartInput{
		CartID:    mux.Vars(r)["id"],
		ProductID: req.ProductID,
		Qty:       req.Qty,
	})
	if err != nil {
		h.writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ClearCart handles DELETE /carts/{id}/lines
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.ClearCart(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
