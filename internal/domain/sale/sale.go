package sale

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Quantity-tier discount rates. Tiers are keyed on the line item quantity:
// 1-3 no discount, 4-9 ten percent, 10-20 twenty percent of the gross amount.
var (
	tenPercent    = decimal.NewFromFloat(0.10)
	twentyPercent = decimal.NewFromFloat(0.20)
)

// SaleItem is a single line of a sale. Discount and Amount are derived:
// Amount always equals UnitPrice*Quantity - Discount after construction or
// recalculation.
type SaleItem struct {
	ID          uuid.UUID
	SaleID      uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	Amount      decimal.Decimal
	Cancelled   bool
	DeletedAt   *time.Time
}

// NewSaleItem builds a line item, applies the quantity-tier discount, and
// validates the result. Construction fails atomically: an invalid item is
// never returned.
func NewSaleItem(productID uuid.UUID, productName string, quantity int, unitPrice decimal.Decimal) (*SaleItem, error) {
	item := &SaleItem{
		ID:          uuid.New(),
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}
	item.ApplyDiscount()
	item.CalculateAmount()

	if violations := item.Validate(); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}
	return item, nil
}

// ApplyDiscount sets the discount from the current (gross) amount based on
// the quantity tier. Quantities of 1-3 keep a zero discount.
func (s *SaleItem) ApplyDiscount() {
	if s.Quantity >= 4 && s.Quantity < 10 {
		s.Discount = s.Amount.Mul(tenPercent)
	}
	if s.Quantity >= 10 && s.Quantity <= 20 {
		s.Discount = s.Amount.Mul(twentyPercent)
	}
}

// CalculateAmount recomputes the net amount from unit price, quantity and the
// current discount.
func (s *SaleItem) CalculateAmount() {
	s.Amount = s.UnitPrice.Mul(decimal.NewFromInt(int64(s.Quantity))).Sub(s.Discount)
}

// Remove soft-deletes the item. Calling it again only overwrites the
// deletion timestamp.
func (s *SaleItem) Remove() {
	s.Cancelled = true
	now := time.Now().UTC()
	s.DeletedAt = &now
}

// Sale is the aggregate root owning its line items. Amount is derived:
// it always equals the sum of the amounts of non-cancelled items.
type Sale struct {
	ID           uuid.UUID
	Number       string
	CustomerID   uuid.UUID
	CustomerName string
	BranchID     uuid.UUID
	BranchName   string
	Amount       decimal.Decimal
	Items        []*SaleItem
	Cancelled    bool
	CreatedAt    time.Time
	DeletedAt    *time.Time
}

// NewSale builds a sale, appends every supplied item (recomputing the total
// on each append) and validates the whole aggregate. On any violation no
// sale is returned.
func NewSale(number string, customerID uuid.UUID, customerName string, branchID uuid.UUID, branchName string, items []*SaleItem) (*Sale, error) {
	s := &Sale{
		ID:           uuid.New(),
		Number:       number,
		CustomerID:   customerID,
		CustomerName: customerName,
		BranchID:     branchID,
		BranchName:   branchName,
		Amount:       decimal.Zero,
		CreatedAt:    time.Now().UTC(),
	}

	for _, item := range items {
		s.AddItem(item)
	}

	if violations := s.Validate(); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}
	return s, nil
}

// AddItem appends the item to the list and recomputes the total amount.
func (s *Sale) AddItem(item *SaleItem) {
	item.SaleID = s.ID
	s.Items = append(s.Items, item)
	s.CalculateTotalAmount()
}

// RemoveItem removes the item from the list (a structural removal, not a
// soft delete) and recomputes the total amount.
func (s *Sale) RemoveItem(item *SaleItem) {
	for i, it := range s.Items {
		if it == item || it.ID == item.ID {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			break
		}
	}
	s.CalculateTotalAmount()
}

// CalculateTotalAmount recomputes the total as the sum over non-cancelled
// items.
func (s *Sale) CalculateTotalAmount() {
	total := decimal.Zero
	for _, item := range s.Items {
		if !item.Cancelled {
			total = total.Add(item.Amount)
		}
	}
	s.Amount = total
}

// Update replaces the scalar fields and, when newItems is non-empty, the
// item set. Existing items are soft-deleted and stay in the list; the new
// items are appended and the total recomputed over non-cancelled items only.
// An empty newItems leaves the item list and total untouched.
func (s *Sale) Update(customerID uuid.UUID, customerName string, branchID uuid.UUID, branchName string, newItems []*SaleItem) error {
	s.CustomerID = customerID
	s.CustomerName = customerName
	s.BranchID = branchID
	s.BranchName = branchName

	if len(newItems) == 0 {
		return nil
	}

	for _, item := range s.Items {
		item.Remove()
	}
	for _, item := range newItems {
		s.AddItem(item)
	}

	if violations := s.Validate(); len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// Cancel soft-deletes the sale only. Cancelling the remaining live items is
// a separate step owned by the delete flow.
func (s *Sale) Cancel() {
	s.Cancelled = true
	now := time.Now().UTC()
	s.DeletedAt = &now
}

// liveItemCount counts items that have not been soft-deleted.
func (s *Sale) liveItemCount() int {
	n := 0
	for _, item := range s.Items {
		if !item.Cancelled {
			n++
		}
	}
	return n
}
