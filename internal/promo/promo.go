// Package promo resolves promo codes against the fixed discount table.
package promo

import (
	"fmt"
	"strings"

	"photo-prints-backend/internal/models"
)

var discounts = map[string]int{
	"HALFOFF": 50,
	"FREE":    100,
	"QUARTER": 25,
}

const invalidMessage = "Invalid promo code."

// Apply resolves a user-entered code, case-insensitively. An unmatched code
// resets the discount to zero: a prior successful discount does not survive
// a failed attempt.
func Apply(code string) models.PromoState {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	percent, ok := discounts[normalized]
	if !ok {
		return models.PromoState{Code: normalized, Message: invalidMessage}
	}
	return models.PromoState{
		Code:            normalized,
		DiscountPercent: percent,
		Message:         fmt.Sprintf("%d%% discount applied!", percent),
	}
}
