package cart_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"photo-prints-backend/internal/cart"
	"photo-prints-backend/internal/models"
	"photo-prints-backend/internal/transform"
)

func testImage(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 120, G: 120, B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newCartWithEntries(t *testing.T, count int) (*cart.Cart, []cart.UploadedFile) {
	t.Helper()
	files := make([]cart.UploadedFile, count)
	for i := range files {
		files[i] = cart.UploadedFile{Filename: "photo.png", Data: testImage(t, 200, 150)}
	}
	c := cart.New(models.Size4x6, models.PaperLuster)
	return c, files
}

func TestAdd_DefaultsApplied(t *testing.T) {
	c, files := newCartWithEntries(t, 2)
	ids := c.Add(files)
	require.Len(t, ids, 2)

	for _, id := range ids {
		entry, err := c.Entry(id)
		require.NoError(t, err)
		assert.Equal(t, models.Size4x6, entry.Size)
		assert.Equal(t, 1, entry.Quantity)
		assert.Nil(t, entry.Edited)
	}
}

func TestRemove_PreservesOtherIDs(t *testing.T) {
	c, files := newCartWithEntries(t, 3)
	ids := c.Add(files)

	require.NoError(t, c.Remove(ids[1]))

	entries := c.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, ids[0], entries[0].ID)
	assert.Equal(t, ids[2], entries[1].ID)

	assert.ErrorIs(t, c.Remove(ids[1]), cart.ErrEntryNotFound)
}

func TestSetQuantity_InvalidValueRetained(t *testing.T) {
	c, files := newCartWithEntries(t, 1)
	ids := c.Add(files)

	require.NoError(t, c.SetQuantity(ids[0], 20))

	err := c.SetQuantity(ids[0], 7)
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)

	entry, err := c.Entry(ids[0])
	require.NoError(t, err)
	assert.Equal(t, 20, entry.Quantity)
}

func TestSetSize_ChangeClearsEdit(t *testing.T) {
	c, files := newCartWithEntries(t, 1)
	ids := c.Add(files)

	session, err := c.BeginEdit(ids[0])
	require.NoError(t, err)
	require.NoError(t, c.ApplyEdit(session, transform.Rect{X: 0, Y: 0, Width: 100, Height: 100}, 0))

	entry, _ := c.Entry(ids[0])
	require.NotNil(t, entry.Edited)

	// Same size is a no-op and keeps the edit.
	require.NoError(t, c.SetSize(ids[0], models.Size4x6))
	entry, _ = c.Entry(ids[0])
	assert.NotNil(t, entry.Edited)

	// A different size invalidates the crop.
	require.NoError(t, c.SetSize(ids[0], models.Size5x7))
	entry, _ = c.Entry(ids[0])
	assert.Nil(t, entry.Edited)
	assert.Equal(t, models.Size5x7, entry.Size)
}

func TestApplyEdit_ClosesSession(t *testing.T) {
	c, files := newCartWithEntries(t, 1)
	ids := c.Add(files)

	session, err := c.BeginEdit(ids[0])
	require.NoError(t, err)
	require.NoError(t, c.ApplyEdit(session, transform.Rect{X: 0, Y: 0, Width: 80, Height: 60}, 0))

	err = c.ApplyEdit(session, transform.Rect{X: 0, Y: 0, Width: 80, Height: 60}, 0)
	assert.ErrorIs(t, err, cart.ErrSessionClosed)
}

func TestApplyEdit_FailureLeavesSessionOpen(t *testing.T) {
	c, files := newCartWithEntries(t, 1)
	ids := c.Add(files)

	session, err := c.BeginEdit(ids[0])
	require.NoError(t, err)

	// Fully outside the image; the entry must be untouched and the session retryable.
	err = c.ApplyEdit(session, transform.Rect{X: 900, Y: 900, Width: 50, Height: 50}, 0)
	var emptyErr *transform.EmptyResultError
	require.ErrorAs(t, err, &emptyErr)

	entry, _ := c.Entry(ids[0])
	assert.Nil(t, entry.Edited)

	require.NoError(t, c.ApplyEdit(session, transform.Rect{X: 0, Y: 0, Width: 50, Height: 50}, 0))
	entry, _ = c.Entry(ids[0])
	assert.NotNil(t, entry.Edited)
}

func TestRevertEdit_Idempotent(t *testing.T) {
	c, files := newCartWithEntries(t, 1)
	ids := c.Add(files)

	original, _ := c.Entry(ids[0])
	source := original.Source

	session, _ := c.BeginEdit(ids[0])
	require.NoError(t, c.ApplyEdit(session, transform.Rect{X: 0, Y: 0, Width: 100, Height: 100}, 90))

	require.NoError(t, c.RevertEdit(ids[0]))
	entry, _ := c.Entry(ids[0])
	assert.Nil(t, entry.Edited)
	assert.True(t, bytes.Equal(source, entry.Source))

	// Second revert changes nothing.
	require.NoError(t, c.RevertEdit(ids[0]))
	entry, _ = c.Entry(ids[0])
	assert.Nil(t, entry.Edited)
	assert.True(t, bytes.Equal(source, entry.Source))
}

func TestTotals_Recomputed(t *testing.T) {
	c, files := newCartWithEntries(t, 2)
	ids := c.Add(files)

	// Two 4X6 luster prints, quantity 1 each.
	totals := c.Totals()
	assert.Equal(t, 10.0, totals.Aggregate)
	assert.Equal(t, 10.0, totals.Total)

	require.NoError(t, c.SetQuantity(ids[0], 5))
	glossy := models.PaperGlossy
	require.NoError(t, c.SetSelection(&glossy, nil))

	// (5+2)*5 + (5+2)*1 = 42
	totals = c.Totals()
	assert.Equal(t, 42.0, totals.Aggregate)

	state := c.ApplyPromo("HALFOFF")
	assert.Equal(t, 50, state.DiscountPercent)
	totals = c.Totals()
	assert.Equal(t, 21.0, totals.Total)

	// A failed code wipes the earlier discount.
	state = c.ApplyPromo("BOGUS")
	assert.Equal(t, 0, state.DiscountPercent)
	totals = c.Totals()
	assert.Equal(t, 42.0, totals.Total)
}

func TestAssemble_RequiresEdits(t *testing.T) {
	c, files := newCartWithEntries(t, 3)
	ids := c.Add(files)

	session, _ := c.BeginEdit(ids[0])
	require.NoError(t, c.ApplyEdit(session, transform.Rect{X: 0, Y: 0, Width: 100, Height: 100}, 0))

	_, err := c.Assemble()
	var incomplete *cart.IncompleteEditError
	require.ErrorAs(t, err, &incomplete)
	assert.ElementsMatch(t, ids[1:], incomplete.EntryIDs)
}

func TestAssemble_Payload(t *testing.T) {
	c, files := newCartWithEntries(t, 2)
	ids := c.Add(files)

	for _, id := range ids {
		session, err := c.BeginEdit(id)
		require.NoError(t, err)
		require.NoError(t, c.ApplyEdit(session, transform.Rect{X: 0, Y: 0, Width: 100, Height: 100}, 0))
	}
	require.NoError(t, c.SetQuantity(ids[1], 10))
	c.ApplyPromo("QUARTER")

	payload, err := c.Assemble()
	require.NoError(t, err)
	require.Len(t, payload.Items, 2)
	assert.Equal(t, models.PaperLuster, payload.PaperType)
	assert.Equal(t, 25, payload.DiscountPercent)
	assert.Equal(t, "QUARTER", payload.PromoCode)
	// 5*1 + 5*10 = 55, minus 25% = 41.25
	assert.Equal(t, 41.25, payload.TotalAmount)

	items := c.SubmissionItems()
	require.Len(t, items, 2)
	for _, item := range items {
		assert.NotEmpty(t, item.Data)
	}
}

func TestStore(t *testing.T) {
	store := cart.NewStore()
	created := store.Create("", "")

	// Unset selections fall back to the storefront defaults.
	paper, size := created.Selection()
	assert.Equal(t, models.PaperLuster, paper)
	assert.Equal(t, models.Size4x6, size)

	found, ok := store.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, created.ID, found.ID)

	store.Delete(created.ID)
	_, ok = store.Get(created.ID)
	assert.False(t, ok)
}
