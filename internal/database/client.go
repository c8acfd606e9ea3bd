package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"photo-prints-backend/internal/models"
)

type Client struct {
	db *sql.DB
}

func NewClient(connectionString string) (*Client, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{db: db}, nil
}

// CreateOrder inserts the order and its images in one transaction.
func (d *Client) CreateOrder(order *models.Order, images []models.OrderImage) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO orders (id, name, phone, street, city, emirate, location_url, paper_type, total_amount, discount_percent, promo_code, payment_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, order.ID, order.Name, order.Phone, order.Street, order.City, order.Emirate,
		order.LocationURL, order.PaperType, order.TotalAmount, order.DiscountPercent,
		order.PromoCode, order.PaymentID)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, image := range images {
		_, err = tx.Exec(`
			INSERT INTO order_images (id, order_id, filename, storage_path, image_url, print_size, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, image.ID, image.OrderID, image.Filename, image.StoragePath,
			image.ImageURL, image.PrintSize, image.Quantity)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert order image: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

func (d *Client) ListOrders() ([]models.Order, error) {
	rows, err := d.db.Query(`
		SELECT id, name, phone, street, city, emirate, location_url, paper_type, total_amount, discount_percent, promo_code, payment_id, created_at
		FROM orders
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var order models.Order
		err := rows.Scan(
			&order.ID, &order.Name, &order.Phone, &order.Street, &order.City,
			&order.Emirate, &order.LocationURL, &order.PaperType, &order.TotalAmount,
			&order.DiscountPercent, &order.PromoCode, &order.PaymentID, &order.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, nil
}

func (d *Client) GetOrderImages(orderID uuid.UUID) ([]models.OrderImage, error) {
	rows, err := d.db.Query(`
		SELECT id, order_id, filename, storage_path, image_url, print_size, quantity, created_at
		FROM order_images
		WHERE order_id = $1
		ORDER BY created_at ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order images: %w", err)
	}
	defer rows.Close()

	var images []models.OrderImage
	for rows.Next() {
		var image models.OrderImage
		err := rows.Scan(
			&image.ID, &image.OrderID, &image.Filename, &image.StoragePath,
			&image.ImageURL, &image.PrintSize, &image.Quantity, &image.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order image: %w", err)
		}
		images = append(images, image)
	}

	return images, nil
}

// SaveDraft overwrites the single draft record for a cart.
func (d *Client) SaveDraft(cartID uuid.UUID, payload json.RawMessage) error {
	_, err := d.db.Exec(`
		INSERT INTO draft_orders (cart_id, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (cart_id) DO UPDATE SET payload = $2, updated_at = NOW()
	`, cartID, payload)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

func (d *Client) GetDraft(cartID uuid.UUID) (json.RawMessage, error) {
	var payload json.RawMessage
	err := d.db.QueryRow(`
		SELECT payload FROM draft_orders WHERE cart_id = $1
	`, cartID).Scan(&payload)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return payload, nil
}

func (d *Client) DeleteDraft(cartID uuid.UUID) error {
	_, err := d.db.Exec(`
		DELETE FROM draft_orders WHERE cart_id = $1
	`, cartID)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

func (d *Client) Close() error {
	return d.db.Close()
}
