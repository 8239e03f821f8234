//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/google/uuid"
)

// amountEquals compares decimal strings numerically, since the API does not
// normalize trailing zeros ("24.3" and "24.3000" are the same amount).
func amountEquals(t *testing.T, want string, got string) bool {
	t.Helper()
	w, err := strconv.ParseFloat(want, 64)
	if err != nil {
		t.Fatalf("parse %q: %v", want, err)
	}
	g, err := strconv.ParseFloat(got, 64)
	if err != nil {
		t.Fatalf("parse %q: %v", got, err)
	}
	return w == g
}

func createdSaleID(t *testing.T, resp *http.Response) string {
	t.Helper()
	body := decodeJSON[apiResponse](t, resp)
	if !body.Success {
		t.Fatalf("expected success response, got %+v", body)
	}

	var data struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if _, err := uuid.Parse(data.ID); err != nil {
		t.Fatalf("returned id %q is not a UUID: %v", data.ID, err)
	}
	return data.ID
}

func TestListSales_Seeded(t *testing.T) {
	resp := doGet(t, "/api/sales?page=1&pageSize=10")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	page := decodeJSON[pagedResponse](t, resp)
	if !page.Success {
		t.Fatal("expected success=true")
	}
	if page.CurrentPage != 1 || page.PageSize != 10 {
		t.Fatalf("unexpected paging: %+v", page)
	}
	if page.TotalItems < 2 {
		t.Fatalf("expected at least 2 seeded sales, got %d", page.TotalItems)
	}

	numbers := make(map[string]saleResponse, len(page.Data))
	for _, s := range page.Data {
		numbers[s.Number] = s
	}
	seeded, ok := numbers["SALE-0002"]
	if !ok {
		t.Fatal("seeded sale SALE-0002 not in list")
	}
	// 12 x 4.50 lands in the 20% tier.
	if !amountEquals(t, "43.20", seeded.Amount) {
		t.Errorf("SALE-0002 amount: got %s, want 43.20", seeded.Amount)
	}
}

func TestListSales_InvalidPage(t *testing.T) {
	resp := doGet(t, "/api/sales?page=0")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	body := decodeJSON[apiResponse](t, resp)
	if len(body.Errors) == 0 {
		t.Fatal("expected validation errors")
	}
	if body.Errors[0].ErrorMessage != "'Page' must be greater than '0'." {
		t.Errorf("unexpected message: %q", body.Errors[0].ErrorMessage)
	}
}

func TestCreateAndGetSale(t *testing.T) {
	req := createSaleRequest{
		Number:       "SALE-IT-001",
		CustomerID:   uuid.NewString(),
		CustomerName: "Integration Customer",
		BranchID:     uuid.NewString(),
		BranchName:   "Integration Branch",
		Items: []saleItemRequest{
			{ProductID: uuid.NewString(), ProductName: "Stout 500ml", Quantity: 10, UnitPrice: "8.00"},
		},
	}

	resp := doJSON(t, http.MethodPost, "/api/sales", req)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	id := createdSaleID(t, resp)

	getResp := doGet(t, "/api/sales/"+id)
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", getResp.StatusCode)
	}

	envelope := decodeJSON[struct {
		Success bool         `json:"success"`
		Data    saleResponse `json:"data"`
	}](t, getResp)

	got := envelope.Data
	if got.Number != "SALE-IT-001" {
		t.Errorf("number: got %q", got.Number)
	}
	if len(got.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got.Items))
	}
	// 10 x 8.00 = 80.00, 20% tier discount 16.00.
	if !amountEquals(t, "16.00", got.Items[0].Discount) {
		t.Errorf("discount: got %s, want 16.00", got.Items[0].Discount)
	}
	if !amountEquals(t, "64.00", got.Amount) {
		t.Errorf("amount: got %s, want 64.00", got.Amount)
	}
}

func TestCreateSale_ValidationErrors(t *testing.T) {
	req := createSaleRequest{
		Number: "SALE-IT-BAD",
		Items: []saleItemRequest{
			{ProductID: uuid.NewString(), ProductName: "Stout 500ml", Quantity: 21, UnitPrice: "8.00"},
		},
	}

	resp := doJSON(t, http.MethodPost, "/api/sales", req)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	body := decodeJSON[apiResponse](t, resp)
	messages := make(map[string]bool, len(body.Errors))
	for _, e := range body.Errors {
		messages[e.ErrorMessage] = true
	}
	for _, want := range []string{
		"CustomerId is required.",
		"Customer name is required.",
		"Quantity must be 20 or less.",
	} {
		if !messages[want] {
			t.Errorf("missing validation message %q in %v", want, body.Errors)
		}
	}
}

func TestGetSale_NotFound(t *testing.T) {
	resp := doGet(t, "/api/sales/"+uuid.NewString())
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	body := decodeJSON[apiResponse](t, resp)
	if body.Message != "Sale not found" {
		t.Errorf("message: got %q", body.Message)
	}
}

func TestUpdateSale_ReplacesItems(t *testing.T) {
	create := createSaleRequest{
		Number:       "SALE-IT-002",
		CustomerID:   uuid.NewString(),
		CustomerName: "Before Update",
		BranchID:     uuid.NewString(),
		BranchName:   "Old Branch",
		Items: []saleItemRequest{
			{ProductID: uuid.NewString(), ProductName: "Pilsner 350ml", Quantity: 2, UnitPrice: "5.00"},
		},
	}
	resp := doJSON(t, http.MethodPost, "/api/sales", create)
	id := createdSaleID(t, resp)
	resp.Body.Close()

	update := updateSaleRequest{
		CustomerID:   uuid.NewString(),
		CustomerName: "After Update",
		BranchID:     uuid.NewString(),
		BranchName:   "New Branch",
		Items: []saleItemRequest{
			{ProductID: uuid.NewString(), ProductName: "Weiss 500ml", Quantity: 4, UnitPrice: "10.00"},
		},
	}
	putResp := doJSON(t, http.MethodPut, "/api/sales/"+id, update)
	defer putResp.Body.Close()
	if putResp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", putResp.StatusCode)
	}

	getResp := doGet(t, "/api/sales/"+id)
	defer getResp.Body.Close()
	envelope := decodeJSON[struct {
		Data saleResponse `json:"data"`
	}](t, getResp)

	got := envelope.Data
	if got.CustomerName != "After Update" || got.BranchName != "New Branch" {
		t.Errorf("scalars not updated: %+v", got)
	}
	// Replaced items only; the old soft-deleted line must not be served.
	if len(got.Items) != 1 {
		t.Fatalf("expected 1 live item, got %d", len(got.Items))
	}
	if got.Items[0].ProductName != "Weiss 500ml" {
		t.Errorf("item: got %q", got.Items[0].ProductName)
	}
	// 4 x 10.00 = 40.00, 10% tier.
	if !amountEquals(t, "36.00", got.Amount) {
		t.Errorf("amount: got %s, want 36.00", got.Amount)
	}
}

func TestUpdateSale_ValidationErrors(t *testing.T) {
	update := updateSaleRequest{
		CustomerID:   uuid.NewString(),
		CustomerName: "Valid Name",
		BranchID:     uuid.NewString(),
		BranchName:   "Valid Branch",
	}
	resp := doJSON(t, http.MethodPut, "/api/sales/"+uuid.NewString(), update)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	body := decodeJSON[apiResponse](t, resp)
	found := false
	for _, e := range body.Errors {
		if e.ErrorMessage == "At least one sale item is required." {
			found = true
		}
	}
	if !found {
		t.Errorf("missing item-required message in %v", body.Errors)
	}
}

func TestDeleteSale(t *testing.T) {
	create := createSaleRequest{
		Number:       "SALE-IT-003",
		CustomerID:   uuid.NewString(),
		CustomerName: "To Delete",
		BranchID:     uuid.NewString(),
		BranchName:   "Branch",
		Items: []saleItemRequest{
			{ProductID: uuid.NewString(), ProductName: "Porter 350ml", Quantity: 1, UnitPrice: "6.00"},
		},
	}
	resp := doJSON(t, http.MethodPost, "/api/sales", create)
	id := createdSaleID(t, resp)
	resp.Body.Close()

	delResp := doJSON(t, http.MethodDelete, "/api/sales/"+id, nil)
	defer delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", delResp.StatusCode)
	}

	getResp := doGet(t, "/api/sales/"+id)
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", getResp.StatusCode)
	}
}

func TestDeleteSale_NotFound(t *testing.T) {
	resp := doJSON(t, http.MethodDelete, "/api/sales/"+uuid.NewString(), nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
