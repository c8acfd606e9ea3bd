package handlers

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"photo-prints-backend/internal/models"
	"photo-prints-backend/internal/realtime"
)

// OrderStore persists submitted orders and serves the admin listing.
type OrderStore interface {
	CreateOrder(order *models.Order, images []models.OrderImage) error
	ListOrders() ([]models.Order, error)
	GetOrderImages(orderID uuid.UUID) ([]models.OrderImage, error)
}

// ImageStore holds submitted image blobs.
type ImageStore interface {
	UploadOrderImage(orderID uuid.UUID, filename string, data []byte, contentType string) (string, string, error)
}

// EventPublisher announces accepted orders to the admin dashboard.
type EventPublisher interface {
	PublishOrderEvent(orderID uuid.UUID, event string, payload map[string]interface{}) error
}

type OrdersHandler struct {
	dbClient       OrderStore
	storageClient  ImageStore
	realtimeClient EventPublisher
}

func NewOrdersHandler(dbClient OrderStore, storageClient ImageStore, realtimeClient EventPublisher) *OrdersHandler {
	return &OrdersHandler{
		dbClient:       dbClient,
		storageClient:  storageClient,
		realtimeClient: realtimeClient,
	}
}

// IntakeOrder godoc
// @Summary     Receive a submitted order
// @Description Accepts the multipart order submission: address fields, payment id, totals, and one file part per photo (or an imageUrls field for remote images). Images are stored and the order persisted in one transaction.
// @Tags        orders
// @Accept      multipart/form-data
// @Produce     json
// @Success     200 {object} models.OrderIntakeResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /order [post]
func (h *OrdersHandler) IntakeOrder(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database not available",
			Message: "order intake requires a database connection",
		})
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

	value := func(name string) string {
		if v := form.Value[name]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	name := value("name")
	phone := value("phone")
	paymentID := value("paymentId")
	if name == "" || phone == "" || paymentID == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "missing required fields",
			Message: "name, phone, and paymentId are required",
		})
		return
	}

	totalAmount, err := strconv.ParseFloat(value("totalAmount"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid totalAmount",
			Message: err.Error(),
		})
		return
	}
	discountPercent, _ := strconv.Atoi(value("discountPercent"))

	files := form.File["images"]
	imageURLs := form.Value["imageUrls"]
	if len(files) == 0 && len(imageURLs) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "no images in order",
			Message: "provide image files or imageUrls",
		})
		return
	}

	orderID := uuid.New()
	order := &models.Order{
		ID:              orderID,
		Name:            name,
		Phone:           phone,
		Street:          value("street"),
		City:            value("city"),
		Emirate:         value("emirate"),
		LocationURL:     nullString(value("locationUrl")),
		PaperType:       value("paperType"),
		TotalAmount:     totalAmount,
		DiscountPercent: discountPercent,
		PromoCode:       nullString(value("promoCode")),
		PaymentID:       paymentID,
	}

	images := make([]models.OrderImage, 0, len(files)+len(imageURLs))
	index := 0
	for _, file := range files {
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "failed to open file",
				Message: fmt.Sprintf("%s: %v", file.Filename, err),
			})
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "failed to read file data",
				Message: fmt.Sprintf("%s: %v", file.Filename, err),
			})
			return
		}

		storagePath := fmt.Sprintf("orders/%s/%s", orderID, file.Filename)
		var publicURL string
		if h.storageClient != nil {
			path, url, err := h.storageClient.UploadOrderImage(orderID, file.Filename, data, http.DetectContentType(data))
			if err != nil {
				log.Printf("Warning: failed to upload %s to storage: %v", file.Filename, err)
			} else {
				storagePath = path
				publicURL = url
			}
		}

		images = append(images, models.OrderImage{
			ID:          uuid.New(),
			OrderID:     orderID,
			Filename:    file.Filename,
			StoragePath: storagePath,
			ImageURL:    nullString(publicURL),
			PrintSize:   itemField(form.Value, "size", index, "4X6"),
			Quantity:    itemQuantity(form.Value, index),
		})
		index++
	}

	for _, url := range imageURLs {
		images = append(images, models.OrderImage{
			ID:          uuid.New(),
			OrderID:     orderID,
			Filename:    url,
			StoragePath: url,
			ImageURL:    nullString(url),
			PrintSize:   itemField(form.Value, "size", index, "4X6"),
			Quantity:    itemQuantity(form.Value, index),
		})
		index++
	}

	if err := h.dbClient.CreateOrder(order, images); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to save order",
			Message: err.Error(),
		})
		return
	}

	if h.realtimeClient != nil {
		payload := realtime.OrderSubmittedPayload(orderID, totalAmount, len(images))
		if err := h.realtimeClient.PublishOrderEvent(orderID, "order_submitted", payload); err != nil {
			log.Printf("Warning: failed to publish order event: %v", err)
		}
	}

	c.JSON(http.StatusOK, models.OrderIntakeResponse{
		OrderID: orderID.String(),
		Status:  "received",
	})
}

// ListOrders godoc
// @Summary     List submitted orders
// @Description Returns every order with its address, payment id, and image metadata for the admin dashboard. Requires an admin bearer token.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.AdminOrderListResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /orders [get]
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database not available",
			Message: "order listing requires a database connection",
		})
		return
	}

	orders, err := h.dbClient.ListOrders()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list orders",
			Message: err.Error(),
		})
		return
	}

	adminOrders := make([]models.AdminOrder, 0, len(orders))
	for _, order := range orders {
		images, err := h.dbClient.GetOrderImages(order.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to load order images",
				Message: err.Error(),
			})
			return
		}

		adminImages := make([]models.AdminOrderImage, len(images))
		for i, image := range images {
			path := image.StoragePath
			if image.ImageURL.Valid && image.ImageURL.String != "" {
				path = image.ImageURL.String
			}
			adminImages[i] = models.AdminOrderImage{
				Path:         path,
				OriginalName: image.Filename,
				Doc: models.AdminImageDoc{
					Size:     image.PrintSize,
					Quantity: image.Quantity,
				},
			}
		}

		adminOrders = append(adminOrders, models.AdminOrder{
			ID:          order.ID.String(),
			Name:        order.Name,
			Phone:       order.Phone,
			Street:      order.Street,
			City:        order.City,
			Emirate:     order.Emirate,
			PaperType:   order.PaperType,
			TotalAmount: order.TotalAmount,
			PaymentID:   order.PaymentID,
			CreatedAt:   order.CreatedAt,
			Images:      adminImages,
		})
	}

	c.JSON(http.StatusOK, models.AdminOrderListResponse{Orders: adminOrders})
}

func itemField(values map[string][]string, prefix string, index int, fallback string) string {
	if v := values[fmt.Sprintf("%s_%d", prefix, index)]; len(v) > 0 && v[0] != "" {
		return v[0]
	}
	return fallback
}

func itemQuantity(values map[string][]string, index int) int {
	if v := values[fmt.Sprintf("quantity_%d", index)]; len(v) > 0 {
		if qty, err := strconv.Atoi(v[0]); err == nil && qty > 0 {
			return qty
		}
	}
	return 1
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
