package cart

import (
	"github.com/google/uuid"

	"photo-prints-backend/internal/models"
)

// Assemble produces the immutable order payload handed to checkout. Every
// entry must carry an edited image; totals are recomputed here rather than
// reused from an earlier reactive value, and the promo code is stamped only
// when a discount is active. A changed cart requires re-assembly.
func (c *Cart) Assemble() (*models.OrderPayload, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var missing []uuid.UUID
	for _, entry := range c.entries {
		if entry.Edited == nil {
			missing = append(missing, entry.ID)
		}
	}
	if len(missing) > 0 {
		return nil, &IncompleteEditError{EntryIDs: missing}
	}

	items := make([]models.OrderPayloadItem, len(c.entries))
	for i, entry := range c.entries {
		items[i] = models.OrderPayloadItem{
			ImageID:  entry.ID.String(),
			Filename: entry.Filename,
			Size:     entry.Size,
			Quantity: entry.Quantity,
			Edited:   true,
		}
	}

	totals := c.totalsLocked()
	payload := &models.OrderPayload{
		Items:           items,
		PaperType:       c.paperType,
		TotalAmount:     totals.Total,
		DiscountPercent: c.promoState.DiscountPercent,
	}
	if c.promoState.DiscountPercent > 0 {
		payload.PromoCode = c.promoState.Code
	}
	return payload, nil
}

// Snapshot builds a payload-shaped view of the cart without the edit
// requirement. It backs the durable draft so a reload during address entry
// does not lose the cart; it is never submitted.
func (c *Cart) Snapshot() *models.OrderPayload {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]models.OrderPayloadItem, len(c.entries))
	for i, entry := range c.entries {
		items[i] = models.OrderPayloadItem{
			ImageID:  entry.ID.String(),
			Filename: entry.Filename,
			Size:     entry.Size,
			Quantity: entry.Quantity,
			Edited:   entry.Edited != nil,
		}
	}

	totals := c.totalsLocked()
	snapshot := &models.OrderPayload{
		Items:           items,
		PaperType:       c.paperType,
		TotalAmount:     totals.Total,
		DiscountPercent: c.promoState.DiscountPercent,
	}
	if c.promoState.DiscountPercent > 0 {
		snapshot.PromoCode = c.promoState.Code
	}
	return snapshot
}

// SubmissionItems returns the binary payload for the multipart submission,
// one item per entry in insertion order. Entries use their edited bytes;
// callers should assemble first so every entry has them.
func (c *Cart) SubmissionItems() []models.SubmissionItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]models.SubmissionItem, len(c.entries))
	for i, entry := range c.entries {
		items[i] = models.SubmissionItem{
			Filename: entry.Filename,
			Data:     entry.Current(),
			Size:     entry.Size,
			Quantity: entry.Quantity,
		}
	}
	return items
}
