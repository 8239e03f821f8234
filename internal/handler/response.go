package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/devstore/sales-api/internal/domain/sale"
	"github.com/devstore/sales-api/pkg/paging"
)

// apiResponse is the common envelope for non-paginated responses.
type apiResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  []sale.FieldError `json:"errors,omitempty"`
}

// pagedResponse is the envelope for paginated list responses.
type pagedResponse struct {
	Success         bool   `json:"success"`
	Data            any    `json:"data"`
	CurrentPage     int    `json:"currentPage"`
	TotalPages      int    `json:"totalPages"`
	TotalItems      int    `json:"totalCount"`
	PageSize        int    `json:"pageSize"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
	HasNextPage     bool   `json:"hasNextPage"`
	Message         string `json:"message,omitempty"`
}

// saleResponse is the wire representation of a sale with its items.
type saleResponse struct {
	ID           string             `json:"id"`
	Number       string             `json:"number"`
	CustomerID   string             `json:"customerId"`
	CustomerName string             `json:"customerName"`
	BranchID     string             `json:"branchId"`
	BranchName   string             `json:"branchName"`
	Amount       decimal.Decimal    `json:"amount"`
	IsCancelled  bool               `json:"isCancelled"`
	CreatedAt    time.Time          `json:"createdAt"`
	Items        []saleItemResponse `json:"items"`
}

type saleItemResponse struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Discount    decimal.Decimal `json:"discount"`
	Amount      decimal.Decimal `json:"amount"`
}

func toSaleResponse(s *sale.Sale) saleResponse {
	items := make([]saleItemResponse, 0, len(s.Items))
	for _, item := range s.Items {
		if item.Cancelled {
			continue
		}
		items = append(items, saleItemResponse{
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Discount:    item.Discount,
			Amount:      item.Amount,
		})
	}
	return saleResponse{
		ID:           s.ID.String(),
		Number:       s.Number,
		CustomerID:   s.CustomerID.String(),
		CustomerName: s.CustomerName,
		BranchID:     s.BranchID.String(),
		BranchName:   s.BranchName,
		Amount:       s.Amount,
		IsCancelled:  s.Cancelled,
		CreatedAt:    s.CreatedAt,
		Items:        items,
	}
}

func toPagedResponse(page *paging.Page[sale.Sale]) pagedResponse {
	data := make([]saleResponse, len(page.Items))
	for i := range page.Items {
		data[i] = toSaleResponse(&page.Items[i])
	}
	return pagedResponse{
		Success:         true,
		Data:            data,
		CurrentPage:     page.CurrentPage,
		TotalPages:      page.TotalPages(),
		TotalItems:      page.TotalItems,
		PageSize:        page.PageSize,
		HasPreviousPage: page.HasPrevious(),
		HasNextPage:     page.HasNext(),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeValidationErrors(w http.ResponseWriter, violations []sale.FieldError) {
	writeJSON(w, http.StatusBadRequest, apiResponse{
		Success: false,
		Errors:  violations,
	})
}

// writeError maps domain errors to HTTP responses. Anything unclassified is a
// generic 500 with no internal detail on the wire.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *sale.ValidationError
	if errors.As(err, &vErr) {
		writeValidationErrors(w, vErr.Violations)
		return
	}

	if errors.Is(err, sale.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, apiResponse{
			Success: false,
			Message: "Sale not found",
		})
		return
	}

	zctx.From(r.Context()).Error("Request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, apiResponse{
		Success: false,
		Message: "An unexpected error occurred",
	})
}
