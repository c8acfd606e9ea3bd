package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"photo-prints-backend/internal/cart"
	"photo-prints-backend/internal/checkout"
	"photo-prints-backend/internal/geocode"
	"photo-prints-backend/internal/handlers"
	"photo-prints-backend/internal/models"
	"photo-prints-backend/internal/transform"
)

type stubPayments struct{}

func (stubPayments) CreateOrder(ctx context.Context, amountUSD float64, description string) (string, error) {
	return "PROVIDER-1", nil
}

func (stubPayments) Capture(ctx context.Context, providerOrderID string) (string, error) {
	return "PAYMENT-1", nil
}

type memDrafts struct {
	saved map[uuid.UUID]json.RawMessage
}

func (m *memDrafts) SaveDraft(cartID uuid.UUID, payload json.RawMessage) error {
	m.saved[cartID] = payload
	return nil
}

func (m *memDrafts) GetDraft(cartID uuid.UUID) (json.RawMessage, error) {
	draft, ok := m.saved[cartID]
	if !ok {
		return nil, fmt.Errorf("no draft for cart %s", cartID)
	}
	return draft, nil
}

func (m *memDrafts) DeleteDraft(cartID uuid.UUID) error {
	delete(m.saved, cartID)
	return nil
}

type stubGeocoder struct{}

func (stubGeocoder) Reverse(ctx context.Context, lat, lng float64) (geocode.Place, error) {
	return geocode.Place{Street: "Corniche Road", City: "Abu Dhabi", Emirate: "Abu Dhabi"}, nil
}

func newCheckoutRouter(submitURL string) (*gin.Engine, *cart.Store) {
	gin.SetMode(gin.TestMode)
	store := cart.NewStore()
	manager := checkout.NewManager(stubPayments{}, stubGeocoder{}, nil, submitURL)
	h := handlers.NewCheckoutHandler(store, manager)

	router := gin.New()
	api := router.Group("/api/v1")
	api.GET("/carts/:cart_id/checkout", h.GetCheckout)
	api.PUT("/carts/:cart_id/checkout/address", h.PutAddress)
	api.POST("/carts/:cart_id/checkout/location", h.PostLocation)
	api.POST("/carts/:cart_id/checkout/capture", h.PostCapture)
	api.POST("/carts/:cart_id/checkout/submit", h.PostSubmit)
	return router, store
}

// editedCart seeds a cart whose single entry already carries an edit, so
// assembly succeeds.
func editedCart(t *testing.T, store *cart.Store) *cart.Cart {
	t.Helper()
	c := store.Create(models.Size4x6, models.PaperLuster)
	ids := c.Add([]cart.UploadedFile{{Filename: "a.png", Data: pngBytes(t, 300, 200)}})
	session, err := c.BeginEdit(ids[0])
	require.NoError(t, err)
	require.NoError(t, c.ApplyEdit(session, transform.Rect{X: 0, Y: 0, Width: 120, Height: 80}, 0))
	return c
}

func putAddress(t *testing.T, router *gin.Engine, cartID string) models.CheckoutResponse {
	t.Helper()
	body := `{"name":"Amal","phone":"+971501234567","street":"Al Wasl Road 12","city":"Dubai","emirate":"Dubai"}`
	req, _ := http.NewRequest("PUT", fmt.Sprintf("/api/v1/carts/%s/checkout/address", cartID), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.CheckoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCheckout_AddressUnlocksPayment(t *testing.T) {
	router, store := newCheckoutRouter("http://unused")
	c := editedCart(t, store)

	req, _ := http.NewRequest("GET", fmt.Sprintf("/api/v1/carts/%s/checkout", c.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.CheckoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "editing_address", resp.State)

	resp = putAddress(t, router, c.ID.String())
	assert.Equal(t, "awaiting_payment", resp.State)
	assert.True(t, resp.AddressComplete)
}

func TestCheckout_LocationPickFillsAddress(t *testing.T) {
	router, store := newCheckoutRouter("http://unused")
	c := editedCart(t, store)

	body := `{"lat":24.4539,"lng":54.3773}`
	req, _ := http.NewRequest("POST", fmt.Sprintf("/api/v1/carts/%s/checkout/location", c.ID), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.CheckoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Corniche Road", resp.Address.Street)
	assert.Equal(t, "Abu Dhabi", resp.Address.City)
	assert.Contains(t, resp.Address.LocationURL, "google.com/maps")
}

func TestCheckout_CaptureBeforeAddress(t *testing.T) {
	router, store := newCheckoutRouter("http://unused")
	c := editedCart(t, store)

	req, _ := http.NewRequest("POST", fmt.Sprintf("/api/v1/carts/%s/checkout/capture", c.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "address incomplete")
}

func TestCheckout_CaptureRequiresEditedEntries(t *testing.T) {
	router, store := newCheckoutRouter("http://unused")
	c := store.Create(models.Size4x6, models.PaperLuster)
	c.Add([]cart.UploadedFile{{Filename: "raw.png", Data: pngBytes(t, 100, 100)}})
	putAddress(t, router, c.ID.String())

	req, _ := http.NewRequest("POST", fmt.Sprintf("/api/v1/carts/%s/checkout/capture", c.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "cart not ready")
}

func TestCheckout_SubmitBeforePayment(t *testing.T) {
	router, store := newCheckoutRouter("http://unused")
	c := editedCart(t, store)
	putAddress(t, router, c.ID.String())

	req, _ := http.NewRequest("POST", fmt.Sprintf("/api/v1/carts/%s/checkout/submit", c.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "payment required")
}

func TestCheckout_FullFlow(t *testing.T) {
	intake := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))
		// One 4X6 luster print: 5 AED, plus 29 delivery.
		assert.Equal(t, "34.00", r.FormValue("totalAmount"))
		assert.Equal(t, "PAYMENT-1", r.FormValue("paymentId"))
		assert.Equal(t, "Luster", r.FormValue("paperType"))
		assert.Len(t, r.MultipartForm.File["images"], 1)
		fmt.Fprint(w, `{"order_id":"ORDER-9"}`)
	}))
	defer intake.Close()

	router, store := newCheckoutRouter(intake.URL)
	c := editedCart(t, store)
	putAddress(t, router, c.ID.String())

	req, _ := http.NewRequest("POST", fmt.Sprintf("/api/v1/carts/%s/checkout/capture", c.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var capture models.CaptureResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &capture))
	assert.Equal(t, "PAYMENT-1", capture.PaymentID)
	// 34 AED at 0.27.
	assert.Equal(t, 9.18, capture.AmountUSD)

	req, _ = http.NewRequest("POST", fmt.Sprintf("/api/v1/carts/%s/checkout/submit", c.ID), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var submit models.SubmitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submit))
	assert.Equal(t, "ORDER-9", submit.OrderID)
	assert.Equal(t, 34.0, submit.Total)
	assert.Equal(t, "submitted", submit.Status)
}

func TestCheckout_DraftServedAfterCartLoss(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := cart.NewStore()
	drafts := &memDrafts{saved: make(map[uuid.UUID]json.RawMessage)}
	manager := checkout.NewManager(stubPayments{}, stubGeocoder{}, drafts, "http://unused")
	h := handlers.NewCheckoutHandler(store, manager)

	router := gin.New()
	router.GET("/api/v1/carts/:cart_id/checkout", h.GetCheckout)

	c := editedCart(t, store)

	// The first touch persists the draft snapshot.
	req, _ := http.NewRequest("GET", fmt.Sprintf("/api/v1/carts/%s/checkout", c.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, drafts.saved, 1)

	// After the live cart is gone (e.g. a restart) the draft comes back.
	store.Delete(c.ID)
	req, _ = http.NewRequest("GET", fmt.Sprintf("/api/v1/carts/%s/checkout", c.ID), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.DraftResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, c.ID.String(), resp.CartID)

	var snapshot models.OrderPayload
	require.NoError(t, json.Unmarshal(resp.Draft, &snapshot))
	require.Len(t, snapshot.Items, 1)
	assert.Equal(t, "a.png", snapshot.Items[0].Filename)

	// No draft and no cart is still a 404.
	req, _ = http.NewRequest("GET", fmt.Sprintf("/api/v1/carts/%s/checkout", uuid.New()), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckout_SubmitFailureIsRetryable(t *testing.T) {
	intake := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "intake down", http.StatusBadGateway)
	}))
	defer intake.Close()

	router, store := newCheckoutRouter(intake.URL)
	c := editedCart(t, store)
	putAddress(t, router, c.ID.String())

	req, _ := http.NewRequest("POST", fmt.Sprintf("/api/v1/carts/%s/checkout/capture", c.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("POST", fmt.Sprintf("/api/v1/carts/%s/checkout/submit", c.ID), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "retried")

	// Payment survives the failure.
	req, _ = http.NewRequest("GET", fmt.Sprintf("/api/v1/carts/%s/checkout", c.ID), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var resp models.CheckoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "failed", resp.State)
	assert.Equal(t, "PAYMENT-1", resp.PaymentID)
}
