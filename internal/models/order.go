package models

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Address is the delivery address collected during checkout. It is complete
// when every required text field is non-empty after trimming.
type Address struct {
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	Street      string  `json:"street"`
	City        string  `json:"city"`
	Emirate     string  `json:"emirate"`
	LocationURL string  `json:"locationUrl,omitempty"`
	Lat         float64 `json:"lat,omitempty"`
	Lng         float64 `json:"lng,omitempty"`
}

func (a Address) Complete() bool {
	for _, field := range []string{a.Name, a.Phone, a.Street, a.City, a.Emirate} {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}

// PromoState is the outcome of the most recent promo-code apply attempt.
// DiscountPercent is zero unless the last applied code matched the table.
type PromoState struct {
	Code            string `json:"code"`
	DiscountPercent int    `json:"discount_percent"`
	Message         string `json:"message"`
}

// OrderPayload is the immutable snapshot handed from the cart to checkout.
// A changed cart requires assembling a new payload.
type OrderPayload struct {
	Items           []OrderPayloadItem `json:"items"`
	PaperType       PaperType          `json:"paperType"`
	TotalAmount     float64            `json:"totalAmount"` // discounted aggregate, pre-delivery
	DiscountPercent int                `json:"discountPercent"`
	PromoCode       string             `json:"promoCode,omitempty"`
}

type OrderPayloadItem struct {
	ImageID  string    `json:"image_id"`
	Filename string    `json:"filename"`
	Size     PrintSize `json:"size"`
	Quantity int       `json:"quantity"`
	Edited   bool      `json:"edited"`
}

// SubmissionItem carries one item's binary image data for the multipart
// submission. URL is the remote fallback when no local bytes exist.
type SubmissionItem struct {
	Filename string
	Data     []byte
	URL      string
	Size     PrintSize
	Quantity int
}

// Order is a submitted order as persisted by the intake endpoint.
type Order struct {
	ID              uuid.UUID
	Name            string
	Phone           string
	Street          string
	City            string
	Emirate         string
	LocationURL     sql.NullString
	PaperType       string
	TotalAmount     float64
	DiscountPercent int
	PromoCode       sql.NullString
	PaymentID       string
	CreatedAt       time.Time
}

type OrderImage struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	Filename    string
	StoragePath string
	ImageURL    sql.NullString
	PrintSize   string
	Quantity    int
	CreatedAt   time.Time
}
