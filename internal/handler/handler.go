// Package handler exposes the sale use cases over HTTP.
package handler

import (
	"net/http"

	"github.com/devstore/sales-api/internal/domain/sale"
)

// Handler holds the HTTP endpoints for the sales API, delegating all business
// logic to the sale service.
type Handler struct {
	sales *sale.Service
}

// NewHandler constructs a Handler around the sale service.
func NewHandler(sales *sale.Service) *Handler {
	return &Handler{sales: sales}
}

// Routes returns a mux with every sale endpoint registered under /api/sales.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sales", h.createSale)
	mux.HandleFunc("GET /api/sales", h.listSales)
	mux.HandleFunc("GET /api/sales/{id}", h.getSale)
	mux.HandleFunc("PUT /api/sales/{id}", h.updateSale)
	mux.HandleFunc("DELETE /api/sales/{id}", h.deleteSale)
	return mux
}
