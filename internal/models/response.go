package models

import (
	"encoding/json"
	"time"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type CatalogResponse struct {
	Sizes      []PrintSize           `json:"sizes"`
	Papers     []PaperType           `json:"papers"`
	Quantities []int                 `json:"quantities"`
	Prices     map[PrintSize]float64 `json:"prices"`
	GlossyFee  float64               `json:"glossy_fee"`
	Delivery   float64               `json:"delivery_fee"`
	Currency   string                `json:"currency"`
}

type CartResponse struct {
	CartID      string          `json:"cart_id"`
	DefaultSize PrintSize       `json:"default_size"`
	PaperType   PaperType       `json:"paper_type"`
	Entries     []EntryResponse `json:"entries"`
	Promo       PromoState      `json:"promo"`
	Totals      TotalsResponse  `json:"totals"`
}

type EntryResponse struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Size      PrintSize `json:"size"`
	Quantity  int       `json:"quantity"`
	Edited    bool      `json:"edited"`
	UnitPrice float64   `json:"unit_price"`
	LineTotal float64   `json:"line_total"`
}

type TotalsResponse struct {
	Aggregate       float64 `json:"aggregate"`
	DiscountPercent int     `json:"discount_percent"`
	Total           float64 `json:"total"` // discounted, pre-delivery
	Currency        string  `json:"currency"`
}

type UploadImagesResponse struct {
	CartID  string            `json:"cart_id"`
	Entries []EntryResponse   `json:"entries"`
	Errors  []UploadErrorInfo `json:"errors,omitempty"`
}

type UploadErrorInfo struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

type CheckoutResponse struct {
	CartID          string  `json:"cart_id"`
	State           string  `json:"state"`
	Address         Address `json:"address"`
	AddressComplete bool    `json:"address_complete"`
	PaymentID       string  `json:"payment_id,omitempty"`
}

type CaptureResponse struct {
	PaymentID string  `json:"payment_id"`
	AmountUSD float64 `json:"amount_usd"`
}

type SubmitResponse struct {
	OrderID   string  `json:"order_id,omitempty"`
	PaymentID string  `json:"payment_id"`
	Total     float64 `json:"total"` // includes delivery
	Status    string  `json:"status"`
}

// DraftResponse is served when the live cart is gone but its durable draft
// survives a restart.
type DraftResponse struct {
	CartID string          `json:"cart_id"`
	Draft  json.RawMessage `json:"draft"`
}

type OrderIntakeResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// Admin listing shapes match the storefront's admin dashboard contract.

type AdminOrderListResponse struct {
	Orders []AdminOrder `json:"orders"`
}

type AdminOrder struct {
	ID          string            `json:"_id"`
	Name        string            `json:"name"`
	Phone       string            `json:"phone"`
	Street      string            `json:"street"`
	City        string            `json:"city"`
	Emirate     string            `json:"emirate"`
	PaperType   string            `json:"paperType"`
	TotalAmount float64           `json:"totalAmount"`
	PaymentID   string            `json:"paymentId"`
	CreatedAt   time.Time         `json:"createdAt"`
	Images      []AdminOrderImage `json:"images"`
}

type AdminOrderImage struct {
	Path         string        `json:"path"`
	OriginalName string        `json:"originalname"`
	Doc          AdminImageDoc `json:"_doc"`
}

type AdminImageDoc struct {
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}
