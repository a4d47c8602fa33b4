package realtime

import (
	"time"

	"orderflow/internal/core/domain/model/eta"
	"orderflow/internal/core/domain/model/order"
)

// Message is the JSON frame written to WebSocket and SSE clients.
type Message struct {
	Seq        uint64    `json:"seq"`
	ResourceID string    `json:"resource_id"`
	OrderID    string    `json:"order_id"`
	ItemID     string    `json:"item_id,omitempty"`
	Scope      string    `json:"scope"`
	Status     string    `json:"status"`
	ETASecs    int64     `json:"eta_secs"`
	Timestamp  time.Time `json:"timestamp"`
}

func newMessage(seq uint64, event order.StatusChanged) Message {
	msg := Message{
		Seq:        seq,
		ResourceID: event.ResourceID.String(),
		OrderID:    event.OrderID.String(),
		Scope:      string(event.Scope),
		Status:     event.Status.String(),
		ETASecs:    eta.Seconds(event.ETA),
		Timestamp:  event.At.UTC(),
	}
	if event.ItemID != nil {
		msg.ItemID = event.ItemID.String()
	}
	return msg
}
