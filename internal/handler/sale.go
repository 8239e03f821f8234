package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/devstore/sales-api/internal/domain/sale"
)

// createSaleRequest mirrors the POST /api/sales body.
type createSaleRequest struct {
	Number       string            `json:"number"`
	CustomerID   uuid.UUID         `json:"customerId"`
	CustomerName string            `json:"customerName"`
	BranchID     uuid.UUID         `json:"branchId"`
	BranchName   string            `json:"branchName"`
	Items        []saleItemRequest `json:"items"`
}

// updateSaleRequest mirrors the PUT /api/sales/{id} body.
type updateSaleRequest struct {
	CustomerID   uuid.UUID         `json:"customerId"`
	CustomerName string            `json:"customerName"`
	BranchID     uuid.UUID         `json:"branchId"`
	BranchName   string            `json:"branchName"`
	Items        []saleItemRequest `json:"items"`
}

type saleItemRequest struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

func toItemRequests(items []saleItemRequest) []sale.SaleItemRequest {
	out := make([]sale.SaleItemRequest, len(items))
	for i, it := range items {
		out[i] = sale.SaleItemRequest{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
	}
	return out
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req createSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	created, err := h.sales.CreateSale(r.Context(), sale.CreateSaleRequest{
		Number:       req.Number,
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		BranchID:     req.BranchID,
		BranchName:   req.BranchName,
		Items:        toItemRequests(req.Items),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, apiResponse{
		Success: true,
		Message: "Sale created successfully",
		Data:    map[string]string{"id": created.ID.String()},
	})
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, sale.ErrNotFound)
		return
	}

	found, err := h.sales.GetSale(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Data:    toSaleResponse(found),
	})
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	params := sale.ListParams{
		Page:     1,
		PageSize: 10,
		OrderBy:  r.URL.Query().Get("orderBy"),
	}

	var violations []sale.FieldError
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			violations = append(violations, sale.FieldError{
				PropertyName: "Page", ErrorMessage: "'Page' must be greater than '0'.",
			})
		} else {
			params.Page = n
		}
	}
	if v := r.URL.Query().Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			violations = append(violations, sale.FieldError{
				PropertyName: "PageSize", ErrorMessage: "'Page Size' must be greater than '0'.",
			})
		} else {
			params.PageSize = n
		}
	}
	if len(violations) > 0 {
		writeValidationErrors(w, violations)
		return
	}

	page, err := h.sales.ListSales(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPagedResponse(page))
}

func (h *Handler) updateSale(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, sale.ErrNotFound)
		return
	}

	var req updateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	err = h.sales.UpdateSale(r.Context(), id, sale.UpdateSaleRequest{
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		BranchID:     req.BranchID,
		BranchName:   req.BranchName,
		Items:        toItemRequests(req.Items),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteSale(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, sale.ErrNotFound)
		return
	}

	if err := h.sales.DeleteSale(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
