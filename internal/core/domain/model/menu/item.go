package menu

import (
	"orderflow/internal/core/domain/model/kernel"
)

// Modifier is an optional add-on priced as a delta over the item base price.
type Modifier struct {
	ID     kernel.UUID
	Name   string
	Delta  kernel.Money
	Active bool
}

// Item is a menu entry as currently published by the tenant.
type Item struct {
	ID        kernel.UUID
	Name      string
	BasePrice kernel.Money
	Active    bool
	Modifiers []Modifier
}

// Modifier looks up one of the item's own modifiers.
func (i Item) Modifier(id kernel.UUID) (Modifier, bool) {
	for _, m := range i.Modifiers {
		if m.ID.IsEqual(id) {
			return m, true
		}
	}
	return Modifier{}, false
}
