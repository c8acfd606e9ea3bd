package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"photo-prints-backend/internal/cart"
	"photo-prints-backend/internal/checkout"
	"photo-prints-backend/internal/models"
	"photo-prints-backend/internal/pricing"
)

type CheckoutHandler struct {
	store   *cart.Store
	manager *checkout.Manager
}

func NewCheckoutHandler(store *cart.Store, manager *checkout.Manager) *CheckoutHandler {
	return &CheckoutHandler{
		store:   store,
		manager: manager,
	}
}

// GetCheckout godoc
// @Summary     Checkout state
// @Description Returns the cart's checkout state, address, and payment id, and refreshes the durable draft. When the live cart is gone but a draft survives, the draft payload is served instead so the storefront can rebuild the session.
// @Tags        checkout
// @Accept      json
// @Produce     json
// @Param       cart_id path string true "Cart ID (UUID)"
// @Success     200 {object} models.CheckoutResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /carts/{cart_id}/checkout [get]
func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	cartID, err := uuid.Parse(c.Param("cart_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid cart id"})
		return
	}

	current, ok := h.store.Get(cartID)
	if !ok {
		if draft, err := h.manager.Draft(cartID); err == nil && draft != nil {
			c.JSON(http.StatusOK, models.DraftResponse{CartID: cartID.String(), Draft: draft})
			return
		}
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "cart not found"})
		return
	}

	ck := h.manager.For(cartID)
	h.saveDraft(current)
	c.JSON(http.StatusOK, ck.Response())
}

// PutAddress godoc
// @Summary     Update the delivery address
// @Description Merges the provided address fields. Completeness is recomputed in the same update, so filling the last required field unlocks payment immediately.
// @Tags        checkout
// @Accept      json
// @Produce     json
// @Param       cart_id path string true "Cart ID (UUID)"
// @Param       request body models.AddressRequest true "Address fields to merge"
// @Success     200 {object} models.CheckoutResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /carts/{cart_id}/checkout/address [put]
func (h *CheckoutHandler) PutAddress(c *gin.Context) {
	current, ok := h.cartFromPath(c)
	if !ok {
		return
	}

	var req models.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	ck := h.manager.For(current.ID)
	ck.SetAddress(req)
	h.saveDraft(current)
	c.JSON(http.StatusOK, ck.Response())
}

// PostLocation godoc
// @Summary     Pick a delivery location on the map
// @Description Reverse-geocodes the coordinates and fills the street, city, and emirate fields. When the lookup fails, placeholder fragments are synthesized so the pick still lands.
// @Tags        checkout
// @Accept      json
// @Produce     json
// @Param       cart_id path string true "Cart ID (UUID)"
// @Param       request body models.LocationRequest true "Coordinates"
// @Success     200 {object} models.CheckoutResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /carts/{cart_id}/checkout/location [post]
func (h *CheckoutHandler) PostLocation(c *gin.Context) {
	current, ok := h.cartFromPath(c)
	if !ok {
		return
	}

	var req models.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	ck := h.manager.For(current.ID)
	ck.PickLocation(c.Request.Context(), req.Lat, req.Lng)
	h.saveDraft(current)
	c.JSON(http.StatusOK, ck.Response())
}

// PostCapture godoc
// @Summary     Capture payment
// @Description Assembles the order (every photo must be edited), adds the delivery fee, converts AED to USD, and charges through the payment provider. Idempotent once a payment exists.
// @Tags        checkout
// @Accept      json
// @Produce     json
// @Param       cart_id path string true "Cart ID (UUID)"
// @Success     200 {object} models.CaptureResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /carts/{cart_id}/checkout/capture [post]
func (h *CheckoutHandler) PostCapture(c *gin.Context) {
	current, ok := h.cartFromPath(c)
	if !ok {
		return
	}

	payload, err := current.Assemble()
	if err != nil {
		var incomplete *cart.IncompleteEditError
		if errors.As(err, &incomplete) {
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: "cart not ready", Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to assemble order", Message: err.Error()})
		return
	}

	ck := h.manager.For(current.ID)
	amountAED := pricing.WithDelivery(payload.TotalAmount)
	description := fmt.Sprintf("Photo order - AED %.2f", amountAED)

	paymentID, amountUSD, err := ck.Capture(c.Request.Context(), amountAED, description)
	if err != nil {
		var incomplete *checkout.AddressIncompleteError
		switch {
		case errors.As(err, &incomplete):
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: "address incomplete", Message: err.Error()})
		case errors.Is(err, checkout.ErrCaptureInFlight):
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: "capture in progress", Message: err.Error()})
		default:
			c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "payment failed", Message: err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, models.CaptureResponse{
		PaymentID: paymentID,
		AmountUSD: amountUSD,
	})
}

// PostSubmit godoc
// @Summary     Submit the order
// @Description Posts the assembled order and its images to the order intake endpoint. Requires a captured payment. A failed submission keeps the cart and payment intact for a retry.
// @Tags        checkout
// @Accept      json
// @Produce     json
// @Param       cart_id path string true "Cart ID (UUID)"
// @Success     200 {object} models.SubmitResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /carts/{cart_id}/checkout/submit [post]
func (h *CheckoutHandler) PostSubmit(c *gin.Context) {
	current, ok := h.cartFromPath(c)
	if !ok {
		return
	}

	payload, err := current.Assemble()
	if err != nil {
		var incomplete *cart.IncompleteEditError
		if errors.As(err, &incomplete) {
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: "cart not ready", Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to assemble order", Message: err.Error()})
		return
	}

	ck := h.manager.For(current.ID)
	orderID, total, err := ck.Submit(c.Request.Context(), payload, current.SubmissionItems())
	if err != nil {
		var incomplete *checkout.AddressIncompleteError
		var submission *checkout.SubmissionError
		switch {
		case errors.Is(err, checkout.ErrNotPaid):
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: "payment required", Message: err.Error()})
		case errors.Is(err, checkout.ErrSubmitInFlight):
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: "submission in progress", Message: err.Error()})
		case errors.As(err, &incomplete):
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: "address incomplete", Message: err.Error()})
		case errors.As(err, &submission):
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "submission failed",
				Message: fmt.Sprintf("%v - the order was kept and can be retried", submission),
			})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "submission failed", Message: err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, models.SubmitResponse{
		OrderID:   orderID,
		PaymentID: ck.Response().PaymentID,
		Total:     total,
		Status:    "submitted",
	})
}

func (h *CheckoutHandler) cartFromPath(c *gin.Context) (*cart.Cart, bool) {
	cartID, err := uuid.Parse(c.Param("cart_id"))
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

func (h *CheckoutHandler) saveDraft(current *cart.Cart) {
	if err := h.manager.SaveDraft(current.ID, current.Snapshot()); err != nil {
		// Draft persistence is best-effort; checkout continues without it.
		log.Printf("Warning: failed to save draft for cart %s: %v", current.ID, err)
	}
}
