package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicely/internal/core/apperror"
	"invoicely/internal/core/id"
	"invoicely/internal/core/types"
	"invoicely/internal/domain/auth"
	"invoicely/internal/domain/purchase"
	"invoicely/internal/domain/reports"
	"invoicely/internal/domain/stock"
	"invoicely/internal/infrastructure/syncstatus"
	"invoicely/pkg/logger"
)

// fakeBackend stands in for the REST backend behind every domain service.
type fakeBackend struct {
	products     map[id.Ref]stock.Product
	adjustCalls  []stock.AdjustStockPayload
	created      []purchase.Payload
	purchasesErr error
	emailed      []reports.EmailRequest
	registered   []auth.RegisterPayload
}

func newFakeBackend() *fakeBackend {
	threshold := types.NewQuantityFromInt(5)
	return &fakeBackend{products: map[id.Ref]stock.Product{
		"1": {ID: "1", Name: "Bolts", CurrentStock: types.NewQuantityFromInt(10), LowStockThreshold: &threshold},
		"2": {ID: "2", Name: "Nuts", CurrentStock: types.NewQuantityFromInt(3), LowStockThreshold: &threshold},
	}}
}

func (f *fakeBackend) GetProduct(_ context.Context, productID id.Ref) (stock.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return stock.Product{}, apperror.NewUpstream(http.StatusNotFound, "Not found.")
	}
	return p, nil
}

func (f *fakeBackend) ListProducts(context.Context) ([]stock.Product, error) {
	return []stock.Product{f.products["1"], f.products["2"]}, nil
}

func (f *fakeBackend) ListMovements(context.Context, id.Ref) ([]stock.Movement, error) {
	return []stock.Movement{}, nil
}

func (f *fakeBackend) AdjustStock(_ context.Context, productID id.Ref, payload stock.AdjustStockPayload) (stock.Product, error) {
	f.adjustCalls = append(f.adjustCalls, payload)
	p := f.products[productID]
	p.CurrentStock = p.CurrentStock.Add(stock.SignedDelta(payload.AdjustmentType, payload.Quantity))
	return p, nil
}

func (f *fakeBackend) ListSuppliers(context.Context) ([]purchase.Supplier, error) {
	return []purchase.Supplier{{ID: "3", Name: "Acme"}}, nil
}

func (f *fakeBackend) ListPurchases(context.Context) ([]purchase.Purchase, error) {
	if f.purchasesErr != nil {
		return nil, f.purchasesErr
	}
	return nil, nil
}

func (f *fakeBackend) CreatePurchase(_ context.Context, p purchase.Payload) (purchase.Purchase, error) {
	f.created = append(f.created, p)
	return purchase.Purchase{ID: "12", TotalAmount: p.TotalAmount}, nil
}

func (f *fakeBackend) UpdatePurchase(_ context.Context, purchaseID id.Ref, p purchase.Payload) (purchase.Purchase, error) {
	return purchase.Purchase{ID: purchaseID}, nil
}

func (f *fakeBackend) EmailReport(_ context.Context, req reports.EmailRequest) error {
	f.emailed = append(f.emailed, req)
	return nil
}

func (f *fakeBackend) RequestOTP(context.Context, string) error        { return nil }
func (f *fakeBackend) VerifyOTP(context.Context, string, string) error { return nil }

func (f *fakeBackend) Register(_ context.Context, p auth.RegisterPayload) (auth.Account, error) {
	f.registered = append(f.registered, p)
	return auth.Account{UserID: "21", OrganizationID: "4", Email: p.Email}, nil
}

type fixedStatus struct{ s syncstatus.Status }

func (f fixedStatus) Latest() syncstatus.Status { return f.s }

type testServer struct {
	router  http.Handler
	backend *fakeBackend
}

func newTestServer(t *testing.T, status syncstatus.Status) *testServer {
	t.Helper()
	b := newFakeBackend()
	router := NewRouter(RouterConfig{
		Logger:        logger.NewNop(),
		SessionParser: auth.ParseSession,
		Inventory:     stock.NewService(b),
		Purchases:     purchase.NewService(b),
		Reports:       reports.NewService(b),
		Registration:  auth.NewRegistrationService(b, auth.NewMemoryStore(time.Hour)),
		SyncStatus:    fixedStatus{s: status},
		Version:       "test",
	})
	return &testServer{router: router, backend: b}
}

func token(t *testing.T, org string) string {
	t.Helper()
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		TokenType:        "access",
		UserID:           "7",
		OrganizationID:   id.Ref(org),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

func (s *testServer) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestTaxCalculate(t *testing.T) {
	s := newTestServer(t, syncstatus.Status{})

	w := s.do(t, http.MethodPost, "/api/v1/tax/calculate", "", `{
		"items": [{"quantity": "2", "rate": 100, "gst_rate": "18"}, {"quantity": "abc", "rate": 50, "gst_rate": 5}],
		"is_interstate": false,
		"other_charges": "",
		"discount_amount": null
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "200.00", body["subtotal"])
	assert.Equal(t, "36.00", body["total_gst"])
	assert.Equal(t, "18.00", body["cgst"])
	assert.Equal(t, "18.00", body["sgst"])
	assert.Equal(t, "0.00", body["igst"])
	assert.Equal(t, "236.00", body["total"])
	assert.Len(t, body["items"], 2)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	s := newTestServer(t, syncstatus.Status{})

	w := s.do(t, http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperror.CodeUnauthorized, decode(t, w)["code"])

	w = s.do(t, http.MethodGet, "/api/v1/products", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/products", token(t, ""), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListProducts(t *testing.T) {
	s := newTestServer(t, syncstatus.Status{})

	w := s.do(t, http.MethodGet, "/api/v1/products", token(t, "4"), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.EqualValues(t, 2, body["count"])
	summary := body["summary"].(map[string]any)
	assert.EqualValues(t, 1, summary["ok"])
	assert.EqualValues(t, 1, summary["low"])
}

func TestAdjustStock_PreviewDoesNotSubmit(t *testing.T) {
	s := newTestServer(t, syncstatus.Status{})

	w := s.do(t, http.MethodPost, "/api/v1/products/1/adjust-stock/preview", token(t, "4"),
		map[string]any{"adjustment_type": "adjustment_out", "quantity": "15"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.EqualValues(t, -5, body["new_stock"])
	assert.Equal(t, "out", body["status"])
	assert.Empty(t, s.backend.adjustCalls)
}

func TestAdjustStock_Submits(t *testing.T) {
	s := newTestServer(t, syncstatus.Status{})

	w := s.do(t, http.MethodPost, "/api/v1/products/1/adjust-stock", token(t, "4"),
		map[string]any{"adjustment_type": "purchase", "quantity": 2.5, "notes": " restock "})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Len(t, s.backend.adjustCalls, 1)
	assert.Equal(t, "restock", s.backend.adjustCalls[0].Notes)
	assert.EqualValues(t, 12.5, decode(t, w)["new_stock"])
}

func TestAdjustStock_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"missing type", map[string]any{"quantity": "1"}, "adjustment_type"},
		{"zero quantity", map[string]any{"adjustment_type": "sale", "quantity": "0"}, "quantity"},
		{"unknown type", map[string]any{"adjustment_type": "theft", "quantity": "1"}, "adjustment_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, syncstatus.Status{})
			w := s.do(t, http.MethodPost, "/api/v1/products/1/adjust-stock", token(t, "4"), tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			body := decode(t, w)
			assert.Equal(t, apperror.CodeValidation, body["code"])
			assert.Equal(t, tt.field, body["details"].(map[string]any)["field"])
			assert.Empty(t, s.backend.adjustCalls)
		})
	}
}

func TestCreatePurchase(t *testing.T) {
	s := newTestServer(t, syncstatus.Status{})

	w := s.do(t, http.MethodPost, "/api/v1/purchases", token(t, "4"), `{
		"supplier": 3,
		"purchase_date": "2026-04-01",
		"items": [{"product": 9, "description": "Bolts", "quantity": 2, "rate": "100", "gst_rate": 18}],
		"is_interstate": true
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	totals := decode(t, w)["totals"].(map[string]any)
	assert.Equal(t, "36.00", totals["igst"])
	assert.Equal(t, "0.00", totals["cgst"])
	require.Len(t, s.backend.created, 1)
	assert.Equal(t, "236.00", s.backend.created[0].TotalAmount.StringFixed(2))
}

func TestCreatePurchase_ValidationBeforeBackend(t *testing.T) {
	s := newTestServer(t, syncstatus.Status{})

	w := s.do(t, http.MethodPost, "/api/v1/purchases", token(t, "4"), `{"purchase_date": "2026-04-01", "items": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, s.backend.created)
}

func TestListPurchases_BackendErrorMessage(t *testing.T) {
	s := newTestServer(t, syncstatus.Status{})
	s.backend.purchasesErr = apperror.NewUpstream(http.StatusBadRequest, "Organization is suspended")

	w := s.do(t, http.MethodGet, "/api/v1/purchases", token(t, "4"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Organization is suspended", decode(t, w)["message"])
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t, syncstatus.Status{})

	w := s.do(t, http.MethodPost, "/api/v1/reports/export?format=csv", token(t, "4"), `{
		"report_name": "Purchase Register",
		"rows": [{"supplier": "Acme", "total": 236}, {"supplier": "Bolt Co", "total": 50.5}],
		"filter": "row.total > 100.0"
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, "supplier,total\nAcme,236.00\n", w.Body.String())
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="purchase_register.csv"`)
}

func TestExport_RejectsUnknownFormat(t *testing.T) {
	s := newTestServer(t, syncstatus.Status{})

	w := s.do(t, http.MethodPost, "/api/v1/reports/export?format=pdf", token(t, "4"),
		`{"report_name": "x", "rows": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEmailReport(t *testing.T) {
	s := newTestServer(t, syncstatus.Status{})

	w := s.do(t, http.MethodPost, "/api/v1/reports/email", token(t, "4"), `{
		"report_name": "Stock",
		"report_data": [{"product": "Bolts", "stock": 10}],
		"recipient_email": "owner@example.com",
		"date_filter": {"from": "2026-01-01"}
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, s.backend.emailed, 1)
	assert.Equal(t, "owner@example.com", s.backend.emailed[0].RecipientEmail)
}

func TestEmailReport_MessageUsesTrimmedRecipient(t *testing.T) {
	s := newTestServer(t, syncstatus.Status{})

	w := s.do(t, http.MethodPost, "/api/v1/reports/email", token(t, "4"), `{
		"report_name": "Stock",
		"report_data": [{"product": "Bolts", "stock": 10}],
		"recipient_email": "  owner@example.com "
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Report sent to owner@example.com", decode(t, w)["message"])
	require.Len(t, s.backend.emailed, 1)
	assert.Equal(t, "owner@example.com", s.backend.emailed[0].RecipientEmail)
}

func TestRegistrationFlow(t *testing.T) {
	s := newTestServer(t, syncstatus.Status{})

	w := s.do(t, http.MethodPost, "/api/v1/auth/registrations", "", map[string]any{
		"full_name":         "Asha Rao",
		"email":             "asha@example.com",
		"phone":             "+1 650 253 0000",
		"organization_name": "Rao Traders",
		"password":          "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	regID := decode(t, w)["id"].(string)

	w = s.do(t, http.MethodPost, "/api/v1/auth/registrations/"+regID+"/complete", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/registrations/"+regID+"/otp", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "otp_sent", decode(t, w)["step"])

	w = s.do(t, http.MethodPost, "/api/v1/auth/registrations/"+regID+"/verify", "", map[string]string{"otp": "123456"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/auth/registrations/"+regID+"/complete", "", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, s.backend.registered, 1)
	assert.Equal(t, "+16502530000", s.backend.registered[0].Phone)
}

func TestRegistration_BadID(t *testing.T) {
	s := newTestServer(t, syncstatus.Status{})
	w := s.do(t, http.MethodPost, "/api/v1/auth/registrations/not-a-uuid/otp", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSession(t *testing.T) {
	s := newTestServer(t, syncstatus.Status{})
	w := s.do(t, http.MethodGet, "/api/v1/auth/session", token(t, "4"), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "7", body["user_id"])
	assert.Equal(t, "4", body["organization_id"])
}

func TestSyncStatusAndReadiness(t *testing.T) {
	s := newTestServer(t, syncstatus.Status{})
	w := s.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	s = newTestServer(t, syncstatus.Status{State: syncstatus.StateSyncing, PendingChanges: 2, CheckedAt: time.Now()})
	w = s.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/sync/status", token(t, "4"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "syncing", decode(t, w)["state"])

	w = s.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
