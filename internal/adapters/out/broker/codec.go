package broker

import (
	"encoding/json"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// statusMessage is the wire form of order.StatusChanged. ETA travels in
// milliseconds so a round trip does not change the value seen by clients.
type statusMessage struct {
	Tenant     string    `json:"tenant"`
	ResourceID string    `json:"resource_id"`
	OrderID    string    `json:"order_id"`
	ItemID     string    `json:"item_id,omitempty"`
	Scope      string    `json:"scope"`
	Status     string    `json:"status"`
	ETAMillis  int64     `json:"eta_ms"`
	Estimate   int64     `json:"estimate_ms,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func encode(event order.StatusChanged) ([]byte, error) {
	msg := statusMessage{
		Tenant:     event.Tenant.String(),
		ResourceID: event.ResourceID.String(),
		OrderID:    event.OrderID.String(),
		Scope:      string(event.Scope),
		Status:     event.Status.String(),
		ETAMillis:  event.ETA.Milliseconds(),
		Estimate:   event.Estimate.Milliseconds(),
		Timestamp:  event.At.UTC(),
	}
	if event.ItemID != nil {
		msg.ItemID = event.ItemID.String()
	}
	return json.Marshal(msg)
}

func decode(body []byte) (order.StatusChanged, error) {
	var msg statusMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return order.StatusChanged{}, fmt.Errorf("decode status message: %w", err)
	}

	tenant, err := kernel.NewTenantID(msg.Tenant)
	if err != nil {
		return order.StatusChanged{}, err
	}
	resourceID, err := kernel.UUIDFromString(msg.ResourceID)
	if err != nil {
		return order.StatusChanged{}, err
	}
	orderID, err := kernel.UUIDFromString(msg.OrderID)
	if err != nil {
		return order.StatusChanged{}, err
	}
	status, err := order.ParseStatus(msg.Status)
	if err != nil {
		return order.StatusChanged{}, err
	}

	event := order.StatusChanged{
		Tenant:     tenant,
		ResourceID: resourceID,
		OrderID:    orderID,
		Scope:      order.Scope(msg.Scope),
		Status:     status,
		ETA:        time.Duration(msg.ETAMillis) * time.Millisecond,
		Estimate:   time.Duration(msg.Estimate) * time.Millisecond,
		At:         msg.Timestamp.UTC(),
	}
	if msg.ItemID != "" {
		itemID, itemErr := kernel.UUIDFromString(msg.ItemID)
		if itemErr != nil {
			return order.StatusChanged{}, itemErr
		}
		event.ItemID = &itemID
	}
	return event, nil
}
