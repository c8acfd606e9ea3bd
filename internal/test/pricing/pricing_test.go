package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"photo-prints-backend/internal/models"
	"photo-prints-backend/internal/pricing"
)

func TestPriceOf_BaseTable(t *testing.T) {
	assert.Equal(t, 3.0, pricing.PriceOf(models.Size3x5, models.PaperLuster))
	assert.Equal(t, 5.0, pricing.PriceOf(models.Size4x6, models.PaperLuster))
	assert.Equal(t, 7.0, pricing.PriceOf(models.Size5x7, models.PaperLuster))
	assert.Equal(t, 10.0, pricing.PriceOf(models.Size8x10, models.PaperLuster))
	assert.Equal(t, 4.0, pricing.PriceOf(models.Size4x4, models.PaperLuster))
	assert.Equal(t, 12.0, pricing.PriceOf(models.Size8x8, models.PaperLuster))
}

func TestPriceOf_UnknownSizeFallsBack(t *testing.T) {
	assert.Equal(t, 5.0, pricing.PriceOf(models.PrintSize("11X14"), models.PaperLuster))
}

func TestPriceOf_GlossySurcharge(t *testing.T) {
	assert.Equal(t, 7.0, pricing.PriceOf(models.Size4x6, models.PaperGlossy))
	assert.Equal(t, 5.0, pricing.PriceOf(models.Size3x5, models.PaperGlossy))
}

func TestLineTotal(t *testing.T) {
	assert.Equal(t, 15.0, pricing.LineTotal(models.Size4x6, models.PaperLuster, 3))
	assert.Equal(t, 70.0, pricing.LineTotal(models.Size5x7, models.PaperLuster, 10))
}

func TestAggregate(t *testing.T) {
	lines := []pricing.Line{
		{Size: models.Size4x6, Quantity: 3},  // 15
		{Size: models.Size8x10, Quantity: 1}, // 10
	}
	assert.Equal(t, 25.0, pricing.Aggregate(lines, models.PaperLuster))

	// Glossy adds 2 per print: (5+2)*3 + (10+2)*1 = 33
	assert.Equal(t, 33.0, pricing.Aggregate(lines, models.PaperGlossy))
}

func TestDiscounted(t *testing.T) {
	assert.Equal(t, 50.0, pricing.Discounted(100, 50))
	assert.Equal(t, 0.0, pricing.Discounted(100, 100))
	assert.Equal(t, 23.25, pricing.Discounted(31, 25))
	assert.Equal(t, 31.0, pricing.Discounted(31, 0))
}

func TestWithDelivery(t *testing.T) {
	assert.Equal(t, 52.25, pricing.WithDelivery(23.25))
	assert.Equal(t, 29.0, pricing.WithDelivery(0))
}

func TestToUSD(t *testing.T) {
	assert.Equal(t, 14.11, pricing.ToUSD(52.25))
	assert.Equal(t, 27.0, pricing.ToUSD(100))
}

func TestBasePrices_ReturnsCopy(t *testing.T) {
	prices := pricing.BasePrices()
	prices[models.Size4x6] = 999
	assert.Equal(t, 5.0, pricing.PriceOf(models.Size4x6, models.PaperLuster))
}

// Glossy 8X8 at quantity 2 plus a 5X7: (12+2)*2 + (7+2)*1 = 37,
// QUARTER takes it to 27.75, delivery lands at 56.75.
func TestEndToEndPricing(t *testing.T) {
	lines := []pricing.Line{
		{Size: models.Size8x8, Quantity: 2},
		{Size: models.Size5x7, Quantity: 1},
	}
	aggregate := pricing.Aggregate(lines, models.PaperGlossy)
	assert.Equal(t, 37.0, aggregate)

	discounted := pricing.Discounted(aggregate, 25)
	assert.Equal(t, 27.75, discounted)

	assert.Equal(t, 56.75, pricing.WithDelivery(discounted))
}
