// Package cart owns the per-session image entry registry: uploaded photos,
// their per-item size/quantity selections, crop/rotate edit sessions, the
// page-level paper selection, and the promo state.
package cart

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"photo-prints-backend/internal/models"
	"photo-prints-backend/internal/pricing"
	"photo-prints-backend/internal/promo"
	"photo-prints-backend/internal/transform"
)

// Entry is one uploaded photograph plus its configuration and edit state.
// The id is stable for the entry's lifetime; downstream code must join on it,
// never on position, since removal shifts positions.
type Entry struct {
	ID       uuid.UUID
	Filename string
	Source   []byte // immutable original, never mutated in place
	Edited   []byte // nil until an edit is applied
	Size     models.PrintSize
	Quantity int
}

// Current returns the edited image when present, else the source.
func (e *Entry) Current() []byte {
	if e.Edited != nil {
		return e.Edited
	}
	return e.Source
}

// EditSession is a scoped, cancelable crop/rotate operation on one entry.
// It references the entry's image as of BeginEdit and the aspect ratio
// implied by the entry's size at that moment.
type EditSession struct {
	ID      uuid.UUID
	EntryID uuid.UUID
	Base    []byte
	Aspect  float64
	closed  bool
}

// UploadedFile is one incoming file from the upload collaborator.
type UploadedFile struct {
	Filename string
	Data     []byte
}

type Cart struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu          sync.Mutex
	entries     []*Entry
	sessions    map[uuid.UUID]*EditSession
	defaultSize models.PrintSize
	paperType   models.PaperType
	promoState  models.PromoState
}

func New(defaultSize models.PrintSize, paper models.PaperType) *Cart {
	return &Cart{
		ID:          uuid.New(),
		CreatedAt:   time.Now(),
		sessions:    make(map[uuid.UUID]*EditSession),
		defaultSize: defaultSize,
		paperType:   paper,
	}
}

// Add appends one entry per file in insertion order, defaulted to the cart's
// current default size and quantity 1. The original raster is retained as-is.
func (c *Cart) Add(files []UploadedFile) []uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(files))
	for _, file := range files {
		entry := &Entry{
			ID:       uuid.New(),
			Filename: file.Filename,
			Source:   file.Data,
			Size:     c.defaultSize,
			Quantity: 1,
		}
		c.entries = append(c.entries, entry)
		ids = append(ids, entry.ID)
	}
	return ids
}

// Remove deletes one entry and releases its buffers. Open edit sessions on
// the entry are discarded.
func (c *Cart) Remove(id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, entry := range c.entries {
		if entry.ID != id {
			continue
		}
		c.entries = append(c.entries[:i], c.entries[i+1:]...)
		entry.Source = nil
		entry.Edited = nil
		for sessionID, session := range c.sessions {
			if session.EntryID == id {
				session.closed = true
				delete(c.sessions, sessionID)
			}
		}
		return nil
	}
	return ErrEntryNotFound
}

// SetSize updates one entry's print size. Changing size after an edit clears
// the edited image: the crop was made against the old aspect ratio and must
// be redone before assembly.
func (c *Cart) SetSize(id uuid.UUID, size models.PrintSize) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.find(id)
	if entry == nil {
		return ErrEntryNotFound
	}
	if _, ok := models.ParsePrintSize(string(size)); !ok {
		return ErrInvalidSize
	}
	if entry.Size != size {
		entry.Size = size
		entry.Edited = nil
	}
	return nil
}

// SetQuantity updates one entry's quantity. A value outside the fixed
// enumeration is rejected and the previous value retained.
func (c *Cart) SetQuantity(id uuid.UUID, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.find(id)
	if entry == nil {
		return ErrEntryNotFound
	}
	if !models.ValidQuantity(quantity) {
		return ErrInvalidQuantity
	}
	entry.Quantity = quantity
	return nil
}

// BeginEdit opens a scoped edit on the entry's current image (edited version
// if present, else source) at the aspect ratio implied by its current size.
func (c *Cart) BeginEdit(id uuid.UUID) (*EditSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.find(id)
	if entry == nil {
		return nil, ErrEntryNotFound
	}
	session := &EditSession{
		ID:      uuid.New(),
		EntryID: id,
		Base:    entry.Current(),
		Aspect:  transform.AspectRatio(entry.Size),
	}
	c.sessions[session.ID] = session
	return session, nil
}

// ApplyEdit runs the crop/rotate transform for the session. On success the
// entry's edited image is replaced and the session closes; on failure the
// session stays open so the caller can retry.
func (c *Cart) ApplyEdit(session *EditSession, rect transform.Rect, rotationDeg int) error {
	c.mu.Lock()
	if session.closed || c.sessions[session.ID] == nil {
		c.mu.Unlock()
		return ErrSessionClosed
	}
	base := session.Base
	c.mu.Unlock()

	// The transform itself runs outside the lock so edits on other entries
	// are not blocked.
	edited, err := transform.CropRotate(base, rect, rotationDeg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if session.closed || c.sessions[session.ID] == nil {
		return ErrSessionClosed
	}
	entry := c.find(session.EntryID)
	if entry == nil {
		return ErrEntryNotFound
	}
	entry.Edited = edited
	session.closed = true
	delete(c.sessions, session.ID)
	return nil
}

// CancelEdit discards a session without applying; pending work has no effect.
func (c *Cart) CancelEdit(session *EditSession) {
	c.mu.Lock()
	defer c.mu.Unlock()
	session.closed = true
	delete(c.sessions, session.ID)
}

// RevertEdit clears the edited image, restoring the original source for
// display and submission. Reverting twice equals reverting once.
func (c *Cart) RevertEdit(id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.find(id)
	if entry == nil {
		return ErrEntryNotFound
	}
	entry.Edited = nil
	return nil
}

// Entry returns a snapshot copy of one entry's state.
func (c *Cart) Entry(id uuid.UUID) (Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.find(id)
	if entry == nil {
		return Entry{}, ErrEntryNotFound
	}
	return *entry, nil
}

// Entries returns snapshot copies in insertion order.
func (c *Cart) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Entry, len(c.entries))
	for i, entry := range c.entries {
		out[i] = *entry
	}
	return out
}

// SetSelection updates the page-level paper type and/or default size. The
// default size applies to newly uploaded entries only.
func (c *Cart) SetSelection(paper *models.PaperType, defaultSize *models.PrintSize) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if paper != nil {
		if _, ok := models.ParsePaperType(string(*paper)); !ok {
			return ErrInvalidPaper
		}
		c.paperType = *paper
	}
	if defaultSize != nil {
		if _, ok := models.ParsePrintSize(string(*defaultSize)); !ok {
			return ErrInvalidSize
		}
		c.defaultSize = *defaultSize
	}
	return nil
}

func (c *Cart) Selection() (models.PaperType, models.PrintSize) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paperType, c.defaultSize
}

// ApplyPromo resolves a code and replaces the promo state. An invalid code
// clears any previously applied discount.
func (c *Cart) ApplyPromo(code string) models.PromoState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.promoState = promo.Apply(code)
	return c.promoState
}

func (c *Cart) Promo() models.PromoState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.promoState
}

// Totals recomputes the aggregate and discounted totals from current
// selections. Nothing is cached: any entry, paper, or discount change is
// reflected on the next call.
func (c *Cart) Totals() models.TotalsResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalsLocked()
}

func (c *Cart) totalsLocked() models.TotalsResponse {
	lines := make([]pricing.Line, len(c.entries))
	for i, entry := range c.entries {
		lines[i] = pricing.Line{Size: entry.Size, Quantity: entry.Quantity}
	}
	aggregate := pricing.Aggregate(lines, c.paperType)
	return models.TotalsResponse{
		Aggregate:       aggregate,
		DiscountPercent: c.promoState.DiscountPercent,
		Total:           pricing.Discounted(aggregate, c.promoState.DiscountPercent),
		Currency:        "AED",
	}
}

func (c *Cart) find(id uuid.UUID) *Entry {
	for _, entry := range c.entries {
		if entry.ID == id {
			return entry
		}
	}
	return nil
}
