package http

import (
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/eta"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/pkg/errs"
)

type LineRequest struct {
	MenuItemID  string   `json:"menu_item_id"`
	Quantity    int      `json:"quantity"`
	ModifierIDs []string `json:"modifier_ids,omitempty"`
}

type CreateOrderRequest struct {
	Items []LineRequest `json:"items"`
}

type CreateOrderResponse struct {
	OrderID string `json:"order_id"`
}

type BatchEntryRequest struct {
	OpID  string        `json:"op_id"`
	Items []LineRequest `json:"items"`
}

type BatchRequest struct {
	Orders []BatchEntryRequest `json:"orders"`
}

type BatchEntryResponse struct {
	OpID      string `json:"op_id"`
	OrderID   string `json:"order_id,omitempty"`
	Error     *Error `json:"error,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

type BatchResponse struct {
	Results []BatchEntryResponse `json:"results"`
}

type TransitionResponse struct {
	OrderID string `json:"order_id"`
	ItemID  string `json:"item_id,omitempty"`
	Status  string `json:"status"`
	ETASecs int64  `json:"eta_secs"`
}

type ActiveOrder struct {
	OrderID       string     `json:"order_id"`
	ResourceID    string     `json:"resource_id"`
	ResourceLabel string     `json:"resource_label"`
	Status        string     `json:"status"`
	ItemCount     int        `json:"item_count"`
	Total         string     `json:"total"`
	PlacedAt      time.Time  `json:"placed_at"`
	AcceptedAt    *time.Time `json:"accepted_at,omitempty"`
	ETASecs       int64      `json:"eta_secs"`
}

type OrderItem struct {
	ItemID     string   `json:"item_id"`
	MenuItemID string   `json:"menu_item_id"`
	Name       string   `json:"name"`
	UnitPrice  string   `json:"unit_price"`
	Quantity   int      `json:"quantity"`
	LineTotal  string   `json:"line_total"`
	Modifiers  []string `json:"modifiers"`
	Status     string   `json:"status"`
}

type Timeline struct {
	PlacedAt   *time.Time `json:"placed_at,omitempty"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	ReadyAt    *time.Time `json:"ready_at,omitempty"`
	ServedAt   *time.Time `json:"served_at,omitempty"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
}

type OrderDetail struct {
	OrderID       string      `json:"order_id"`
	ResourceID    string      `json:"resource_id"`
	ResourceLabel string      `json:"resource_label"`
	Status        string      `json:"status"`
	Total         string      `json:"total"`
	ETASecs       int64       `json:"eta_secs"`
	Timeline      Timeline    `json:"timeline"`
	Items         []OrderItem `json:"items"`
}

type Snapshot struct {
	Orders []ActiveOrder `json:"orders"`
}

func toLineRequests(items []LineRequest) ([]services.LineRequest, error) {
	lines := make([]services.LineRequest, 0, len(items))
	for _, item := range items {
		menuItemID, err := kernel.UUIDFromString(item.MenuItemID)
		if err != nil {
			return nil, errs.NewValueIsInvalidErrorWithCause("menu_item_id", err)
		}

		modifierIDs := make([]kernel.UUID, 0, len(item.ModifierIDs))
		for _, raw := range item.ModifierIDs {
			id, modErr := kernel.UUIDFromString(raw)
			if modErr != nil {
				return nil, errs.NewValueIsInvalidErrorWithCause("modifier_ids", modErr)
			}
			modifierIDs = append(modifierIDs, id)
		}

		lines = append(lines, services.LineRequest{
			MenuItemID:  menuItemID,
			Quantity:    item.Quantity,
			ModifierIDs: modifierIDs,
		})
	}
	return lines, nil
}

func toBatchEntries(orders []BatchEntryRequest) ([]commands.BatchEntry, error) {
	entries := make([]commands.BatchEntry, 0, len(orders))
	for _, o := range orders {
		lines, err := toLineRequests(o.Items)
		if err != nil {
			return nil, err
		}
		entries = append(entries, commands.BatchEntry{OpID: o.OpID, Lines: lines})
	}
	return entries, nil
}

func fromBatchResults(results []commands.BatchResult) BatchResponse {
	resp := BatchResponse{Results: make([]BatchEntryResponse, 0, len(results))}
	for _, r := range results {
		entry := BatchEntryResponse{OpID: r.OpID, Duplicate: r.Duplicate}
		if r.OrderID != nil {
			entry.OrderID = r.OrderID.String()
		}
		if r.Err != nil {
			body := errorBody(r.Err)
			entry.Error = &body
		}
		resp.Results = append(resp.Results, entry)
	}
	return resp
}

func fromActiveOrders(views []queries.ActiveOrderView) []ActiveOrder {
	orders := make([]ActiveOrder, 0, len(views))
	for _, v := range views {
		orders = append(orders, ActiveOrder{
			OrderID:       v.ID.String(),
			ResourceID:    v.ResourceID.String(),
			ResourceLabel: v.ResourceLabel,
			Status:        v.Status.String(),
			ItemCount:     v.ItemCount,
			Total:         v.Total.String(),
			PlacedAt:      v.PlacedAt,
			AcceptedAt:    v.AcceptedAt,
			ETASecs:       eta.Seconds(v.ETA),
		})
	}
	return orders
}

func fromOrderView(v queries.OrderView) OrderDetail {
	items := make([]OrderItem, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, OrderItem{
			ItemID:     item.ID.String(),
			MenuItemID: item.MenuItemID.String(),
			Name:       item.Name,
			UnitPrice:  item.UnitPrice.String(),
			Quantity:   item.Quantity,
			LineTotal:  item.LineTotal.String(),
			Modifiers:  item.Modifiers,
			Status:     item.Status.String(),
		})
	}

	return OrderDetail{
		OrderID:       v.ID.String(),
		ResourceID:    v.ResourceID.String(),
		ResourceLabel: v.ResourceLabel,
		Status:        v.Status.String(),
		Total:         v.Total.String(),
		ETASecs:       eta.Seconds(v.ETA),
		Timeline: Timeline{
			PlacedAt:   v.Timeline.PlacedAt,
			AcceptedAt: v.Timeline.AcceptedAt,
			StartedAt:  v.Timeline.StartedAt,
			ReadyAt:    v.Timeline.ReadyAt,
			ServedAt:   v.Timeline.ServedAt,
			ClosedAt:   v.Timeline.ClosedAt,
		},
		Items: items,
	}
}
