package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"photo-prints-backend/internal/cart"
	"photo-prints-backend/internal/models"
	"photo-prints-backend/internal/pricing"
	"photo-prints-backend/internal/transform"
)

type CartsHandler struct {
	store *cart.Store
}

func NewCartsHandler(store *cart.Store) *CartsHandler {
	return &CartsHandler{
		store: store,
	}
}

// CreateCart godoc
// @Summary     Create a shopping cart
// @Description Opens a new cart session, optionally seeded with a default print size and paper type from the product page
// @Tags        carts
// @Accept      json
// @Produce     json
// @Param       request body models.CreateCartRequest false "Seed selection (optional)"
// @Success     200 {object} models.CartResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /carts [post]
func (h *CartsHandler) CreateCart(c *gin.Context) {
	var req models.CreateCartRequest
	// JSON body is optional
	_ = c.ShouldBindJSON(&req)

	var defaultSize models.PrintSize
	if req.DefaultSize != "" {
		size, ok := models.ParsePrintSize(req.DefaultSize)
		if !ok {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unknown print size", Message: req.DefaultSize})
			return
		}
		defaultSize = size
	}

	var paper models.PaperType
	if req.PaperType != "" {
		parsed, ok := models.ParsePaperType(req.PaperType)
		if !ok {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unknown paper type", Message: req.PaperType})
			return
		}
		paper = parsed
	}

	created := h.store.Create(defaultSize, paper)
	c.JSON(http.StatusOK, h.cartResponse(created))
}

// GetCart godoc
// @Summary     Get cart contents
// @Description Returns the cart's entries, selections, promo state, and freshly computed totals
// @Tags        carts
// @Accept      json
// @Produce     json
// @Param       cart_id path string true "Cart ID (UUID)"
// @Success     200 {object} models.CartResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /carts/{cart_id} [get]
func (h *CartsHandler) GetCart(c *gin.Context) {
	current, ok := h.cartFromPath(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.cartResponse(current))
}

// UploadImages godoc
// @Summary     Upload photos into the cart
// @Description Adds one entry per uploaded file, defaulted to the cart's current default size and quantity 1. Files the raster decoder rejects are reported per file and skipped.
// @Tags        carts
// @Accept      multipart/form-data
// @Produce     json
// @Param       cart_id path string true "Cart ID (UUID)"
// @Param       images formData file true "Photos (multiple files allowed)"
// @Success     200 {object} models.UploadImagesResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /carts/{cart_id}/images [post]
func (h *CartsHandler) UploadImages(c *gin.Context) {
	current, ok := h.cartFromPath(c)
	if !ok {
		return
	}

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}

	form := c.Request.MultipartForm
	if form == nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: "multipart form is nil",
		})
		return
	}

	// Try multiple common field names
	var files []*multipart.FileHeader
	fieldNames := []string{"images", "image", "files", "file", "photos", "photo"}
	for _, fieldName := range fieldNames {
		if f := form.File[fieldName]; len(f) > 0 {
			files = f
			break
		}
	}

	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "no files uploaded",
			Message: fmt.Sprintf("please provide files with one of these field names: %v", fieldNames),
		})
		return
	}

	uploads := make([]cart.UploadedFile, 0, len(files))
	uploadErrors := make([]models.UploadErrorInfo, 0)
	for _, file := range files {
		src, err := file.Open()
		if err != nil {
			uploadErrors = append(uploadErrors, models.UploadErrorInfo{
				Filename: file.Filename,
				Error:    fmt.Sprintf("failed to open file: %v", err),
			})
			continue
		}

		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			uploadErrors = append(uploadErrors, models.UploadErrorInfo{
				Filename: file.Filename,
				Error:    fmt.Sprintf("failed to read file data: %v", err),
			})
			continue
		}

		if err := transform.ValidateSource(data); err != nil {
			uploadErrors = append(uploadErrors, models.UploadErrorInfo{
				Filename: file.Filename,
				Error:    err.Error(),
			})
			continue
		}

		uploads = append(uploads, cart.UploadedFile{Filename: file.Filename, Data: data})
	}

	ids := current.Add(uploads)

	paper, _ := current.Selection()
	entries := make([]models.EntryResponse, 0, len(ids))
	for _, id := range ids {
		entry, err := current.Entry(id)
		if err != nil {
			continue
		}
		entries = append(entries, entryResponse(entry, paper))
	}

	if len(entries) == 0 && len(uploadErrors) > 0 {
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:   "failed to add any files",
			Message: fmt.Sprintf("%v", uploadErrors),
		})
		return
	}

	c.JSON(http.StatusOK, models.UploadImagesResponse{
		CartID:  current.ID.String(),
		Entries: entries,
		Errors:  uploadErrors,
	})
}

// DeleteImage godoc
// @Summary     Remove a photo from the cart
// @Description Deletes one entry by id. Other entries keep their ids; positions shift but identity does not.
// @Tags        carts
// @Accept      json
// @Produce     json
// @Param       cart_id path string true "Cart ID (UUID)"
// @Param       image_id path string true "Image entry ID (UUID)"
// @Success     200 {object} map[string]string "message"
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /carts/{cart_id}/images/{image_id} [delete]
func (h *CartsHandler) DeleteImage(c *gin.Context) {
	current, ok := h.cartFromPath(c)
	if !ok {
		return
	}
	imageID, ok := h.imageIDFromPath(c)
	if !ok {
		return
	}

	if err := current.Remove(imageID); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "image not found", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "image removed"})
}

// UpdateImage godoc
// @Summary     Update a photo's size or quantity
// @Description Updates one entry's print size and/or quantity. A quantity outside the fixed enumeration is rejected and the previous value retained. Changing size clears a prior edit.
// @Tags        carts
// @Accept      json
// @Produce     json
// @Param       cart_id path string true "Cart ID (UUID)"
// @Param       image_id path string true "Image entry ID (UUID)"
// @Param       request body models.UpdateImageRequest true "Fields to update"
// @Success     200 {object} models.EntryResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /carts/{cart_id}/images/{image_id} [patch]
func (h *CartsHandler) UpdateImage(c *gin.Context) {
	current, ok := h.cartFromPath(c)
	if !ok {
		return
	}
	imageID, ok := h.imageIDFromPath(c)
	if !ok {
		return
	}

	var req models.UpdateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	if req.Size != nil {
		size, parsed := models.ParsePrintSize(*req.Size)
		if !parsed {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unknown print size", Message: *req.Size})
			return
		}
		if err := current.SetSize(imageID, size); err != nil {
			h.cartError(c, err)
			return
		}
	}

	if req.Quantity != nil {
		if err := current.SetQuantity(imageID, *req.Quantity); err != nil {
			h.cartError(c, err)
			return
		}
	}

	entry, err := current.Entry(imageID)
	if err != nil {
		h.cartError(c, err)
		return
	}
	paper, _ := current.Selection()
	c.JSON(http.StatusOK, entryResponse(entry, paper))
}

// GetImagePreview godoc
// @Summary     Preview a photo
// @Description Returns the entry's current raster bytes: the edited image when present, else the original upload
// @Tags        carts
// @Produce     image/jpeg
// @Param       cart_id path string true "Cart ID (UUID)"
// @Param       image_id path string true "Image entry ID (UUID)"
// @Success     200 {file} binary
// @Failure     404 {object} models.ErrorResponse
// @Router      /carts/{cart_id}/images/{image_id}/preview [get]
func (h *CartsHandler) GetImagePreview(c *gin.Context) {
	current, ok := h.cartFromPath(c)
	if !ok {
		return
	}
	imageID, ok := h.imageIDFromPath(c)
	if !ok {
		return
	}

	entry, err := current.Entry(imageID)
	if err != nil {
		h.cartError(c, err)
		return
	}

	data := entry.Edited
	if data == nil {
		data = entry.Source
	}
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}

// EditImage godoc
// @Summary     Crop and rotate a photo
// @Description Applies a crop rectangle (in the rotated image's coordinate space) and rotation to the entry's current image. On failure the entry is left untouched and the edit may be retried.
// @Tags        carts
// @Accept      json
// @Produce     json
// @Param       cart_id path string true "Cart ID (UUID)"
// @Param       image_id path string true "Image entry ID (UUID)"
// @Param       request body models.EditImageRequest true "Crop rectangle and rotation"
// @Success     200 {object} models.EntryResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /carts/{cart_id}/images/{image_id}/edit [post]
func (h *CartsHandler) EditImage(c *gin.Context) {
	current, ok := h.cartFromPath(c)
	if !ok {
		return
	}
	imageID, ok := h.imageIDFromPath(c)
	if !ok {
		return
	}

	var req models.EditImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	session, err := current.BeginEdit(imageID)
	if err != nil {
		h.cartError(c, err)
		return
	}

	rect := transform.Rect{X: req.X, Y: req.Y, Width: req.Width, Height: req.Height}
	if err := current.ApplyEdit(session, rect, req.Rotation); err != nil {
		// The edit is one request here, so an open session has no caller
		// left to resume it.
		current.CancelEdit(session)

		var invalidSource *transform.InvalidSourceError
		var emptyResult *transform.EmptyResultError
		if errors.As(err, &invalidSource) || errors.As(err, &emptyResult) {
			c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Error: "edit failed", Message: err.Error()})
			return
		}
		h.cartError(c, err)
		return
	}

	entry, err := current.Entry(imageID)
	if err != nil {
		h.cartError(c, err)
		return
	}
	paper, _ := current.Selection()
	c.JSON(http.StatusOK, entryResponse(entry, paper))
}

// RevertImage godoc
// @Summary     Revert a photo's edit
// @Description Clears the edited image, restoring the original upload. Reverting twice equals reverting once.
// @Tags        carts
// @Accept      json
// @Produce     json
// @Param       cart_id path string true "Cart ID (UUID)"
// @Param       image_id path string true "Image entry ID (UUID)"
// @Success     200 {object} models.EntryResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /carts/{cart_id}/images/{image_id}/revert [post]
func (h *CartsHandler) RevertImage(c *gin.Context) {
	current, ok := h.cartFromPath(c)
	if !ok {
		return
	}
	imageID, ok := h.imageIDFromPath(c)
	if !ok {
		return
	}

	if err := current.RevertEdit(imageID); err != nil {
		h.cartError(c, err)
		return
	}

	entry, err := current.Entry(imageID)
	if err != nil {
		h.cartError(c, err)
		return
	}
	paper, _ := current.Selection()
	c.JSON(http.StatusOK, entryResponse(entry, paper))
}

// UpdateSelection godoc
// @Summary     Update paper type or default size
// @Description Updates the page-level selection. The default size applies to newly uploaded photos only; the paper type reprices every entry.
// @Tags        carts
// @Accept      json
// @Produce     json
// @Param       cart_id path string true "Cart ID (UUID)"
// @Param       request body models.SelectionRequest true "Selection fields"
// @Success     200 {object} models.CartResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /carts/{cart_id}/selection [put]
func (h *CartsHandler) UpdateSelection(c *gin.Context) {
	current, ok := h.cartFromPath(c)
	if !ok {
		return
	}

	var req models.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	var paper *models.PaperType
	if req.PaperType != nil {
		parsed, ok := models.ParsePaperType(*req.PaperType)
		if !ok {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unknown paper type", Message: *req.PaperType})
			return
		}
		paper = &parsed
	}

	var defaultSize *models.PrintSize
	if req.DefaultSize != nil {
		parsed, ok := models.ParsePrintSize(*req.DefaultSize)
		if !ok {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unknown print size", Message: *req.DefaultSize})
			return
		}
		defaultSize = &parsed
	}

	if err := current.SetSelection(paper, defaultSize); err != nil {
		h.cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.cartResponse(current))
}

// ApplyPromo godoc
// @Summary     Apply a promo code
// @Description Resolves the code case-insensitively. An unmatched code clears any previously applied discount and reports an invalid-code message; this never blocks further actions.
// @Tags        carts
// @Accept      json
// @Produce     json
// @Param       cart_id path string true "Cart ID (UUID)"
// @Param       request body models.PromoRequest true "Promo code"
// @Success     200 {object} models.PromoState
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /carts/{cart_id}/promo [post]
func (h *CartsHandler) ApplyPromo(c *gin.Context) {
	current, ok := h.cartFromPath(c)
	if !ok {
		return
	}

	var req models.PromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, current.ApplyPromo(req.Code))
}

// GetTotals godoc
// @Summary     Cart totals
// @Description Recomputes the aggregate and discounted totals from current entries, paper selection, and discount. Delivery is not included; it is added at submission time.
// @Tags        carts
// @Accept      json
// @Produce     json
// @Param       cart_id path string true "Cart ID (UUID)"
// @Success     200 {object} models.TotalsResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /carts/{cart_id}/totals [get]
func (h *CartsHandler) GetTotals(c *gin.Context) {
	current, ok := h.cartFromPath(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, current.Totals())
}

func (h *CartsHandler) cartFromPath(c *gin.Context) (*cart.Cart, bool) {
	cartIDStr := c.Param("cart_id")
	cartID, err := uuid.Parse(cartIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid cart id"})
		return nil, false
	}

	current, ok := h.store.Get(cartID)
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "cart not found"})
		return nil, false
	}
	return current, true
}

func (h *CartsHandler) imageIDFromPath(c *gin.Context) (uuid.UUID, bool) {
	imageID, err := uuid.Parse(c.Param("image_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid image id"})
		return uuid.Nil, false
	}
	return imageID, true
}

func (h *CartsHandler) cartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrEntryNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "image not found", Message: err.Error()})
	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, cart.ErrInvalidSize), errors.Is(err, cart.ErrInvalidPaper):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid selection", Message: err.Error()})
	case errors.Is(err, cart.ErrSessionClosed):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: "edit session closed", Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "cart operation failed", Message: err.Error()})
	}
}

func (h *CartsHandler) cartResponse(current *cart.Cart) models.CartResponse {
	paper, defaultSize := current.Selection()
	entries := current.Entries()

	entryResponses := make([]models.EntryResponse, len(entries))
	for i, entry := range entries {
		entryResponses[i] = entryResponse(entry, paper)
	}

	return models.CartResponse{
		CartID:      current.ID.String(),
		DefaultSize: defaultSize,
		PaperType:   paper,
		Entries:     entryResponses,
		Promo:       current.Promo(),
		Totals:      current.Totals(),
	}
}

func entryResponse(entry cart.Entry, paper models.PaperType) models.EntryResponse {
	return models.EntryResponse{
		ID:        entry.ID.String(),
		Filename:  entry.Filename,
		Size:      entry.Size,
		Quantity:  entry.Quantity,
		Edited:    entry.Edited != nil,
		UnitPrice: pricing.PriceOf(entry.Size, paper),
		LineTotal: pricing.LineTotal(entry.Size, paper, entry.Quantity),
	}
}
