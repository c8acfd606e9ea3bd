// Package checkout drives the address-to-submission state machine: address
// editing, payment capture gating, the multipart order submission, and the
// durable draft lifecycle.
package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"photo-prints-backend/internal/geocode"
	"photo-prints-backend/internal/models"
	"photo-prints-backend/internal/pricing"
)

type State string

const (
	StateEditingAddress  State = "editing_address"
	StateAwaitingPayment State = "awaiting_payment"
	StateSubmitting      State = "submitting"
	StateSucceeded       State = "succeeded"
	StateFailed          State = "failed"
)

type PaymentProvider interface {
	CreateOrder(ctx context.Context, amountUSD float64, description string) (string, error)
	Capture(ctx context.Context, providerOrderID string) (string, error)
}

type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (geocode.Place, error)
}

type DraftStore interface {
	SaveDraft(cartID uuid.UUID, payload json.RawMessage) error
	GetDraft(cartID uuid.UUID) (json.RawMessage, error)
	DeleteDraft(cartID uuid.UUID) error
}

// Checkout is one cart's progress through address entry, payment, and
// submission. All mutation is serialized by the mutex; the capture and
// submit flags keep duplicate external calls from overlapping.
type Checkout struct {
	CartID uuid.UUID

	mu           sync.Mutex
	state        State
	address      models.Address
	paymentID    string
	orderID      string
	capturing    bool
	submitting   bool
	draftCleared bool

	manager *Manager
}

// Manager owns the checkouts and their shared collaborators.
type Manager struct {
	mu     sync.Mutex
	byCart map[uuid.UUID]*Checkout

	payments   PaymentProvider
	geocoder   Geocoder
	drafts     DraftStore
	submitURL  string
	httpClient *http.Client
}

func NewManager(payments PaymentProvider, geocoder Geocoder, drafts DraftStore, submitURL string) *Manager {
	return &Manager{
		byCart:    make(map[uuid.UUID]*Checkout),
		payments:  payments,
		geocoder:  geocoder,
		drafts:    drafts,
		submitURL: submitURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// For returns the checkout for a cart, creating it on first use.
func (m *Manager) For(cartID uuid.UUID) *Checkout {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.byCart[cartID]; ok {
		return c
	}
	c := &Checkout{
		CartID:  cartID,
		state:   StateEditingAddress,
		manager: m,
	}
	m.byCart[cartID] = c
	return c
}

func (m *Manager) Delete(cartID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byCart, cartID)
}

// SaveDraft overwrites the durable draft for a cart. Draft persistence is
// best-effort: a missing store never blocks checkout.
func (m *Manager) SaveDraft(cartID uuid.UUID, snapshot *models.OrderPayload) error {
	if m.drafts == nil {
		return nil
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	return m.drafts.SaveDraft(cartID, raw)
}

// Draft returns the durable draft payload for a cart, if one survives.
func (m *Manager) Draft(cartID uuid.UUID) (json.RawMessage, error) {
	if m.drafts == nil {
		return nil, nil
	}
	return m.drafts.GetDraft(cartID)
}

// Response returns a snapshot of the checkout for the API surface.
func (c *Checkout) Response() models.CheckoutResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.CheckoutResponse{
		CartID:          c.CartID.String(),
		State:           string(c.state),
		Address:         c.address,
		AddressComplete: c.address.Complete(),
		PaymentID:       c.paymentID,
	}
}

// SetAddress merges the provided fields and recomputes completeness in the
// same update. The checkout flips between editing_address and
// awaiting_payment as the last required field fills or empties.
func (c *Checkout) SetAddress(update models.AddressRequest) models.Address {
	c.mu.Lock()
	defer c.mu.Unlock()

	if update.Name != nil {
		c.address.Name = *update.Name
	}
	if update.Phone != nil {
		c.address.Phone = *update.Phone
	}
	if update.Street != nil {
		c.address.Street = *update.Street
	}
	if update.City != nil {
		c.address.City = *update.City
	}
	if update.Emirate != nil {
		c.address.Emirate = *update.Emirate
	}
	c.recomputeStateLocked()
	return c.address
}

// PickLocation reverse-geocodes a map pick and merges the fragments into the
// address. A failed lookup falls back to synthesized placeholders rather
// than failing the selection.
func (c *Checkout) PickLocation(ctx context.Context, lat, lng float64) models.Address {
	var place geocode.Place
	if c.manager.geocoder != nil {
		if resolved, err := c.manager.geocoder.Reverse(ctx, lat, lng); err == nil {
			place = resolved
		}
	}
	if place.Street == "" {
		place.Street = fmt.Sprintf("Pinned location (%.5f, %.5f)", lat, lng)
	}
	if place.City == "" {
		place.City = "Unknown city"
	}
	if place.Emirate == "" {
		place.Emirate = "Unknown emirate"
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.address.Street = place.Street
	c.address.City = place.City
	c.address.Emirate = place.Emirate
	c.address.Lat = lat
	c.address.Lng = lng
	c.address.LocationURL = fmt.Sprintf("https://www.google.com/maps?q=%f,%f", lat, lng)
	c.recomputeStateLocked()
	return c.address
}

func (c *Checkout) recomputeStateLocked() {
	switch c.state {
	case StateEditingAddress:
		if c.address.Complete() {
			c.state = StateAwaitingPayment
		}
	case StateAwaitingPayment:
		if !c.address.Complete() {
			c.state = StateEditingAddress
		}
	}
}

// Capture charges the shopper through the payment provider for the AED
// amount (delivery included) and records the payment id. It is rejected
// while the address is incomplete, idempotent once a payment exists, and
// guarded against concurrent attempts.
func (c *Checkout) Capture(ctx context.Context, amountAED float64, description string) (string, float64, error) {
	c.mu.Lock()
	if missing := c.missingFieldsLocked(); len(missing) > 0 {
		c.mu.Unlock()
		return "", 0, &AddressIncompleteError{Missing: missing}
	}
	if c.paymentID != "" {
		paymentID := c.paymentID
		c.mu.Unlock()
		return paymentID, pricing.ToUSD(amountAED), nil
	}
	if c.capturing {
		c.mu.Unlock()
		return "", 0, ErrCaptureInFlight
	}
	c.capturing = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.capturing = false
		c.mu.Unlock()
	}()

	amountUSD := pricing.ToUSD(amountAED)
	providerOrderID, err := c.manager.payments.CreateOrder(ctx, amountUSD, description)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create payment order: %w", err)
	}
	paymentID, err := c.manager.payments.Capture(ctx, providerOrderID)
	if err != nil {
		return "", 0, fmt.Errorf("failed to capture payment: %w", err)
	}

	c.mu.Lock()
	c.paymentID = paymentID
	c.state = StateSubmitting
	c.mu.Unlock()
	return paymentID, amountUSD, nil
}

func (c *Checkout) missingFieldsLocked() []string {
	var missing []string
	fields := []struct {
		name  string
		value string
	}{
		{"name", c.address.Name},
		{"phone", c.address.Phone},
		{"street", c.address.Street},
		{"city", c.address.City},
		{"emirate", c.address.Emirate},
	}
	for _, field := range fields {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	return missing
}

// Submit posts the multipart order submission. The flat delivery fee is
// added here, never earlier. Failure preserves everything for a retry;
// success clears the draft exactly once.
func (c *Checkout) Submit(ctx context.Context, payload *models.OrderPayload, items []models.SubmissionItem) (string, float64, error) {
	c.mu.Lock()
	if c.state == StateSucceeded {
		orderID := c.orderID
		c.mu.Unlock()
		return orderID, pricing.WithDelivery(payload.TotalAmount), nil
	}
	if c.paymentID == "" {
		c.mu.Unlock()
		return "", 0, ErrNotPaid
	}
	if c.submitting {
		c.mu.Unlock()
		return "", 0, ErrSubmitInFlight
	}
	if missing := c.missingFieldsLocked(); len(missing) > 0 {
		c.mu.Unlock()
		return "", 0, &AddressIncompleteError{Missing: missing}
	}
	c.submitting = true
	c.state = StateSubmitting
	address := c.address
	paymentID := c.paymentID
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	total := pricing.WithDelivery(payload.TotalAmount)
	body, contentType, err := buildSubmission(payload, items, address, paymentID, total)
	if err != nil {
		c.fail()
		return "", 0, &SubmissionError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.manager.submitURL, body)
	if err != nil {
		c.fail()
		return "", 0, &SubmissionError{Err: err}
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.manager.httpClient.Do(req)
	if err != nil {
		c.fail()
		return "", 0, &SubmissionError{Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.fail()
		return "", 0, &SubmissionError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var accepted struct {
		OrderID string `json:"order_id"`
	}
	_ = json.Unmarshal(respBody, &accepted)

	c.mu.Lock()
	c.state = StateSucceeded
	c.orderID = accepted.OrderID
	clearDraft := !c.draftCleared
	if clearDraft {
		c.draftCleared = true
	}
	c.mu.Unlock()

	if clearDraft && c.manager.drafts != nil {
		if err := c.manager.drafts.DeleteDraft(c.CartID); err != nil {
			// The order is already accepted; a stale draft is harmless.
			return accepted.OrderID, total, nil
		}
	}
	return accepted.OrderID, total, nil
}

func (c *Checkout) fail() {
	c.mu.Lock()
	c.state = StateFailed
	c.mu.Unlock()
}

func buildSubmission(payload *models.OrderPayload, items []models.SubmissionItem, address models.Address, paymentID string, total float64) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := map[string]string{
		"paperType":       string(payload.PaperType),
		"totalAmount":     fmt.Sprintf("%.2f", total),
		"discountPercent": fmt.Sprintf("%d", payload.DiscountPercent),
		"promoCode":       payload.PromoCode,
		"paymentId":       paymentID,
		"name":            address.Name,
		"phone":           address.Phone,
		"street":          address.Street,
		"city":            address.City,
		"emirate":         address.Emirate,
		"locationUrl":     address.LocationURL,
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}

	writeItemMeta := func(index int, item models.SubmissionItem) error {
		if err := writer.WriteField(fmt.Sprintf("quantity_%d", index), fmt.Sprintf("%d", item.Quantity)); err != nil {
			return fmt.Errorf("failed to write quantity: %w", err)
		}
		if err := writer.WriteField(fmt.Sprintf("size_%d", index), string(item.Size)); err != nil {
			return fmt.Errorf("failed to write size: %w", err)
		}
		return nil
	}

	// The intake endpoint walks the file parts before the URL fields, so
	// indices are assigned files-first regardless of item order.
	index := 0
	for _, item := range items {
		if item.Data == nil {
			continue
		}
		part, err := writer.CreateFormFile("images", item.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := part.Write(item.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write image data: %w", err)
		}
		if err := writeItemMeta(index, item); err != nil {
			return nil, "", err
		}
		index++
	}
	for _, item := range items {
		if item.Data != nil || item.URL == "" {
			continue
		}
		if err := writer.WriteField("imageUrls", item.URL); err != nil {
			return nil, "", fmt.Errorf("failed to write image url: %w", err)
		}
		if err := writeItemMeta(index, item); err != nil {
			return nil, "", err
		}
		index++
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}
