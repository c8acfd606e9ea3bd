// Package realtime publishes order lifecycle events for the admin dashboard.
package realtime

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"
)

type Client struct {
	client *supabase.Client
}

func NewClient(supabaseURL, publishableKey string) (*Client, error) {
	client, err := supabase.NewClient(supabaseURL, publishableKey, nil)
	if err != nil {
		return nil, err
	}
	return &Client{client: client}, nil
}

// PublishEvent records the event in the order_events table through
// PostgREST. Dashboards subscribed to postgres_changes on order_events
// receive it without a separate broadcast call.
func (r *Client) PublishEvent(channel string, event string, payload map[string]interface{}) error {
	row := map[string]interface{}{
		"channel": channel,
		"event":   event,
		"payload": payload,
	}
	_, _, err := r.client.From("order_events").Insert(row, false, "", "minimal", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to publish %s on %s: %w", event, channel, err)
	}
	return nil
}

func (r *Client) PublishOrderEvent(orderID uuid.UUID, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("order:%s", orderID.String())
	return r.PublishEvent(channel, event, payload)
}

func OrderSubmittedPayload(orderID uuid.UUID, totalAmount float64, imageCount int) map[string]interface{} {
	return map[string]interface{}{
		"order_id":    orderID.String(),
		"status":      "submitted",
		"total":       totalAmount,
		"image_count": imageCount,
	}
}

func OrderFailedPayload(orderID uuid.UUID, errorMsg string) map[string]interface{} {
	return map[string]interface{}{
		"order_id": orderID.String(),
		"status":   "failed",
		"error":    errorMsg,
	}
}
