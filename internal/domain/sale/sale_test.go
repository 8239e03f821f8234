package sale

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helpers ---

func mustItem(t *testing.T, quantity int, unitPrice string) *SaleItem {
	t.Helper()
	item, err := NewSaleItem(uuid.New(), "Lager 350ml", quantity, decimal.RequireFromString(unitPrice))
	require.NoError(t, err)
	return item
}

func mustSale(t *testing.T, items ...*SaleItem) *Sale {
	t.Helper()
	s, err := NewSale("SALE-001", uuid.New(), "Ana Souza", uuid.New(), "Downtown", items)
	require.NoError(t, err)
	return s
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got),
		"want %s, got %s", want, got.String())
}

// --- SaleItem ---

func TestNewSaleItem_NoDiscountTier(t *testing.T) {
	for quantity := 1; quantity <= 3; quantity++ {
		item := mustItem(t, quantity, "10.00")

		assert.True(t, item.Discount.IsZero(), "quantity %d", quantity)
		gross := decimal.RequireFromString("10.00").Mul(decimal.NewFromInt(int64(quantity)))
		assert.True(t, gross.Equal(item.Amount), "quantity %d", quantity)
	}
}

func TestNewSaleItem_TenPercentTier(t *testing.T) {
	for quantity := 4; quantity <= 9; quantity++ {
		item := mustItem(t, quantity, "10.00")

		gross := decimal.RequireFromString("10.00").Mul(decimal.NewFromInt(int64(quantity)))
		wantDiscount := gross.Mul(decimal.RequireFromString("0.10"))
		assert.True(t, wantDiscount.Equal(item.Discount), "quantity %d", quantity)
		assert.True(t, gross.Sub(wantDiscount).Equal(item.Amount), "quantity %d", quantity)
	}
}

func TestNewSaleItem_TwentyPercentTier(t *testing.T) {
	for quantity := 10; quantity <= 20; quantity++ {
		item := mustItem(t, quantity, "10.00")

		gross := decimal.RequireFromString("10.00").Mul(decimal.NewFromInt(int64(quantity)))
		wantDiscount := gross.Mul(decimal.RequireFromString("0.20"))
		assert.True(t, wantDiscount.Equal(item.Discount), "quantity %d", quantity)
		assert.True(t, gross.Sub(wantDiscount).Equal(item.Amount), "quantity %d", quantity)
	}
}

func TestNewSaleItem_AmountIdentity(t *testing.T) {
	for quantity := 1; quantity <= 20; quantity++ {
		item := mustItem(t, quantity, "7.35")

		gross := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		assert.True(t, gross.Sub(item.Discount).Equal(item.Amount), "quantity %d", quantity)
	}
}

func TestNewSaleItem_QuantityOutOfRange(t *testing.T) {
	for _, quantity := range []int{-1, 0, 21, 100} {
		_, err := NewSaleItem(uuid.New(), "Lager 350ml", quantity, decimal.RequireFromString("10.00"))

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr, "quantity %d", quantity)
	}
}

func TestNewSaleItem_InvalidFields(t *testing.T) {
	_, err := NewSaleItem(uuid.Nil, "", 1, decimal.RequireFromString("10.00"))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	messages := make([]string, len(vErr.Violations))
	for i, v := range vErr.Violations {
		messages[i] = v.ErrorMessage
	}
	assert.Contains(t, messages, "Product cannot be empty")
	assert.Contains(t, messages, "Product name cannot be empty")
}

func TestSaleItem_RemoveIsIdempotent(t *testing.T) {
	item := mustItem(t, 2, "10.00")

	item.Remove()
	require.True(t, item.Cancelled)
	require.NotNil(t, item.DeletedAt)

	item.Remove()
	assert.True(t, item.Cancelled)
	assert.NotNil(t, item.DeletedAt)
}

// --- Sale ---

func TestNewSale_TotalAmount(t *testing.T) {
	s := mustSale(t,
		mustItem(t, 2, "10.00"), // 20.00, no discount
		mustItem(t, 5, "10.00"), // 50.00 - 5.00
	)

	assertDecimal(t, "65.00", s.Amount)
	assert.Len(t, s.Items, 2)
}

func TestNewSale_NoItems(t *testing.T) {
	_, err := NewSale("SALE-001", uuid.New(), "Ana Souza", uuid.New(), "Downtown", nil)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Violations, 1)
	assert.Equal(t, "At least one sale item is required.", vErr.Violations[0].ErrorMessage)
}

func TestNewSale_InvalidFields(t *testing.T) {
	_, err := NewSale("", uuid.Nil, "", uuid.Nil, "", []*SaleItem{mustItem(t, 1, "5.00")})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	messages := make([]string, len(vErr.Violations))
	for i, v := range vErr.Violations {
		messages[i] = v.ErrorMessage
	}
	assert.Contains(t, messages, "Sale number is required.")
	assert.Contains(t, messages, "CustomerId is required.")
	assert.Contains(t, messages, "Customer name is required.")
	assert.Contains(t, messages, "BranchId is required.")
	assert.Contains(t, messages, "Branch name is required.")
}

func TestSale_AddAndRemoveItem(t *testing.T) {
	s := mustSale(t, mustItem(t, 2, "10.00"))
	assertDecimal(t, "20.00", s.Amount)

	extra := mustItem(t, 1, "5.00")
	s.AddItem(extra)
	assertDecimal(t, "25.00", s.Amount)
	assert.Equal(t, s.ID, extra.SaleID)

	s.RemoveItem(extra)
	assertDecimal(t, "20.00", s.Amount)
	assert.Len(t, s.Items, 1)
}

func TestSale_UpdateReplacesItems(t *testing.T) {
	old := mustItem(t, 6, "100.00") // discount 60.00, amount 540.00
	s := mustSale(t, old)
	assertDecimal(t, "540.00", s.Amount)

	replacement := mustItem(t, 20, "50.00") // discount 200.00, amount 800.00
	assertDecimal(t, "200.00", replacement.Discount)
	assertDecimal(t, "800.00", replacement.Amount)

	customerID, branchID := uuid.New(), uuid.New()
	err := s.Update(customerID, "Carlos Lima", branchID, "Harbor", []*SaleItem{replacement})
	require.NoError(t, err)

	// The old item is soft-deleted but stays in the list.
	require.Len(t, s.Items, 2)
	assert.True(t, old.Cancelled)
	assert.NotNil(t, old.DeletedAt)
	assert.False(t, replacement.Cancelled)

	assertDecimal(t, "800.00", s.Amount)
	assert.Equal(t, customerID, s.CustomerID)
	assert.Equal(t, "Carlos Lima", s.CustomerName)
	assert.Equal(t, branchID, s.BranchID)
	assert.Equal(t, "Harbor", s.BranchName)
}

func TestSale_UpdateWithEmptyItemsKeepsItems(t *testing.T) {
	item := mustItem(t, 2, "10.00")
	s := mustSale(t, item)

	customerID, branchID := uuid.New(), uuid.New()
	err := s.Update(customerID, "Carlos Lima", branchID, "Harbor", nil)
	require.NoError(t, err)

	assert.Len(t, s.Items, 1)
	assert.False(t, item.Cancelled)
	assertDecimal(t, "20.00", s.Amount)
	assert.Equal(t, "Carlos Lima", s.CustomerName)
	assert.Equal(t, "Harbor", s.BranchName)
}

func TestSale_CancelLeavesItemsAlone(t *testing.T) {
	item := mustItem(t, 2, "10.00")
	s := mustSale(t, item)

	s.Cancel()

	assert.True(t, s.Cancelled)
	assert.NotNil(t, s.DeletedAt)
	assert.False(t, item.Cancelled)
	assert.Nil(t, item.DeletedAt)
}
