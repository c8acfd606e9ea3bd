// Package pricing computes per-item and aggregate prices in AED.
package pricing

import (
	"math"

	"photo-prints-backend/internal/models"
)

const (
	// GlossySurcharge is added per print on glossy paper.
	GlossySurcharge = 2

	// DeliveryFee is a flat surcharge added once, at submission time only.
	DeliveryFee = 29

	// AEDToUSD is the fixed conversion rate applied at payment time.
	AEDToUSD = 0.27

	// defaultBasePrice covers sizes missing from the table.
	defaultBasePrice = 5
)

var basePrice = map[models.PrintSize]float64{
	models.Size3x5:  3,
	models.Size4x6:  5,
	models.Size5x7:  7,
	models.Size8x10: 10,
	models.Size4x4:  4,
	models.Size8x8:  12,
}

// BasePrices returns a copy of the size price table.
func BasePrices() map[models.PrintSize]float64 {
	prices := make(map[models.PrintSize]float64, len(basePrice))
	for size, price := range basePrice {
		prices[size] = price
	}
	return prices
}

// PriceOf returns the unit price for one print of the given size on the given paper.
func PriceOf(size models.PrintSize, paper models.PaperType) float64 {
	price, ok := basePrice[size]
	if !ok {
		price = defaultBasePrice
	}
	if paper == models.PaperGlossy {
		price += GlossySurcharge
	}
	return price
}

// LineTotal is the unit price multiplied by quantity.
func LineTotal(size models.PrintSize, paper models.PaperType, quantity int) float64 {
	return PriceOf(size, paper) * float64(quantity)
}

// Line is the minimal input to an aggregate calculation.
type Line struct {
	Size     models.PrintSize
	Quantity int
}

// Aggregate sums line totals across all lines.
func Aggregate(lines []Line, paper models.PaperType) float64 {
	var total float64
	for _, line := range lines {
		total += LineTotal(line.Size, paper, line.Quantity)
	}
	return total
}

// Discounted applies a percentage discount and rounds to 2 decimal places.
func Discounted(aggregate float64, discountPercent int) float64 {
	return Round2(aggregate - aggregate*float64(discountPercent)/100)
}

// WithDelivery adds the flat delivery fee to a discounted total.
func WithDelivery(total float64) float64 {
	return Round2(total + DeliveryFee)
}

// ToUSD converts an AED amount at the fixed rate, rounded to cents.
func ToUSD(aed float64) float64 {
	return Round2(aed * AEDToUSD)
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
