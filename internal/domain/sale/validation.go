package sale

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// FieldError is a single rule violation, serialized on the wire as
// {propertyName, errorMessage}.
type FieldError struct {
	PropertyName string `json:"propertyName"`
	ErrorMessage string `json:"errorMessage"`
}

// ValidationError carries every violation found, not just the first.
type ValidationError struct {
	Violations []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.ErrorMessage
	}
	return strings.Join(msgs, ", ")
}

// Validate runs the aggregate-level rule set: sale fields, the non-empty
// item rule (counting live items only) and the per-item domain rules.
// It returns the full violation list and never raises, so callers can
// inspect partial results.
func (s *Sale) Validate() []FieldError {
	var violations []FieldError

	if s.Number == "" {
		violations = append(violations, FieldError{"Number", "Sale number is required."})
	} else if utf8.RuneCountInString(s.Number) > 50 {
		violations = append(violations, FieldError{"Number", "Sale number must be at most 50 characters."})
	}

	if s.CustomerID == uuid.Nil {
		violations = append(violations, FieldError{"CustomerId", "CustomerId is required."})
	}
	if s.CustomerName == "" {
		violations = append(violations, FieldError{"CustomerName", "Customer name is required."})
	} else if utf8.RuneCountInString(s.CustomerName) > 200 {
		violations = append(violations, FieldError{"CustomerName", "Customer name must be at most 200 characters."})
	}

	if s.BranchID == uuid.Nil {
		violations = append(violations, FieldError{"BranchId", "BranchId is required."})
	}
	if s.BranchName == "" {
		violations = append(violations, FieldError{"BranchName", "Branch name is required."})
	} else if utf8.RuneCountInString(s.BranchName) > 200 {
		violations = append(violations, FieldError{"BranchName", "Branch name must be at most 200 characters."})
	}

	if s.liveItemCount() == 0 {
		violations = append(violations, FieldError{"Items", "At least one sale item is required."})
	}

	for _, item := range s.Items {
		violations = append(violations, item.Validate()...)
	}

	return violations
}

// Validate runs the item-level domain rule set. The messages here differ
// from the request-boundary rule set; both are part of the observable
// contract and are kept verbatim.
func (s *SaleItem) Validate() []FieldError {
	var violations []FieldError

	if s.ProductID == uuid.Nil {
		violations = append(violations, FieldError{"ProductId", "Product cannot be empty"})
	}
	if s.ProductName == "" {
		violations = append(violations, FieldError{"ProductName", "Product name cannot be empty"})
	}
	if s.Quantity <= 0 {
		violations = append(violations, FieldError{"Quantity", "Quantity must be greater than 0"})
	}
	if s.Quantity > 20 {
		violations = append(violations, FieldError{"Quantity", "Quantity must be less than 20"})
	}

	return violations
}

// validateCreateRequest is the request-boundary rule set for sale creation.
// Name fields allow up to 200 characters on this path.
func validateCreateRequest(req CreateSaleRequest) []FieldError {
	var violations []FieldError

	if req.Number == "" {
		violations = append(violations, FieldError{"Number", "Sale number is required."})
	} else if utf8.RuneCountInString(req.Number) > 50 {
		violations = append(violations, FieldError{"Number", "Sale number must be at most 50 characters."})
	}

	if req.CustomerID == uuid.Nil {
		violations = append(violations, FieldError{"CustomerId", "CustomerId is required."})
	}
	if req.CustomerName == "" {
		violations = append(violations, FieldError{"CustomerName", "Customer name is required."})
	} else if utf8.RuneCountInString(req.CustomerName) > 200 {
		violations = append(violations, FieldError{"CustomerName", "Customer name must be at most 200 characters."})
	}

	if req.BranchID == uuid.Nil {
		violations = append(violations, FieldError{"BranchId", "BranchId is required."})
	}
	if req.BranchName == "" {
		violations = append(violations, FieldError{"BranchName", "Branch name is required."})
	} else if utf8.RuneCountInString(req.BranchName) > 200 {
		violations = append(violations, FieldError{"BranchName", "Branch name must be at most 200 characters."})
	}

	if len(req.Items) == 0 {
		violations = append(violations, FieldError{"Items", "At least one sale item is required."})
	}

	for _, item := range req.Items {
		violations = append(violations, validateItemRequest(item, 200,
			"Product name must be at most 200 characters.")...)
	}

	return violations
}

// validateUpdateRequest is the request-boundary rule set for sale updates.
// This path historically caps name fields at 100 characters; the divergence
// from the create path is deliberate and preserved.
func validateUpdateRequest(id uuid.UUID, req UpdateSaleRequest) []FieldError {
	var violations []FieldError

	if id == uuid.Nil {
		violations = append(violations, FieldError{"Id", "Sale Id is required."})
	}

	if req.CustomerID == uuid.Nil {
		violations = append(violations, FieldError{"CustomerId", "CustomerId is required."})
	}
	if req.CustomerName == "" {
		violations = append(violations, FieldError{"CustomerName", "Customer name is required."})
	} else if utf8.RuneCountInString(req.CustomerName) > 100 {
		violations = append(violations, FieldError{"CustomerName", "Customer name cannot exceed 100 characters."})
	}

	if req.BranchID == uuid.Nil {
		violations = append(violations, FieldError{"BranchId", "BranchId is required."})
	}
	if req.BranchName == "" {
		violations = append(violations, FieldError{"BranchName", "Branch name is required."})
	} else if utf8.RuneCountInString(req.BranchName) > 100 {
		violations = append(violations, FieldError{"BranchName", "Branch name cannot exceed 100 characters."})
	}

	if len(req.Items) == 0 {
		violations = append(violations, FieldError{"Items", "At least one sale item is required."})
	}

	for _, item := range req.Items {
		violations = append(violations, validateItemRequest(item, 100,
			"Product name cannot exceed 100 characters.")...)
	}

	return violations
}

// validateItemRequest holds the rules shared by both request-boundary item
// rule sets; only the product name length cap and its message differ.
func validateItemRequest(item SaleItemRequest, nameMax int, nameMaxMsg string) []FieldError {
	var violations []FieldError

	if item.ProductID == uuid.Nil {
		violations = append(violations, FieldError{"ProductId", "ProductId is required."})
	}
	if item.ProductName == "" {
		violations = append(violations, FieldError{"ProductName", "Product name is required."})
	} else if utf8.RuneCountInString(item.ProductName) > nameMax {
		violations = append(violations, FieldError{"ProductName", nameMaxMsg})
	}

	if item.Quantity <= 0 {
		violations = append(violations, FieldError{"Quantity", "Quantity must be greater than 0."})
	} else if item.Quantity > 20 {
		violations = append(violations, FieldError{"Quantity", "Quantity must be 20 or less."})
	}

	if !item.UnitPrice.IsPositive() {
		violations = append(violations, FieldError{"UnitPrice", "Unit price must be greater than 0."})
	}

	return violations
}
