package order

import (
	"errors"
	"fmt"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrLineSnapshotIsNotConstructed = errors.New("LineSnapshot must be created via NewLineSnapshot")

// ModifierSnapshot is the chosen modifier as it was priced at order time.
type ModifierSnapshot struct {
	ModifierID kernel.UUID
	Name       string
	Delta      kernel.Money
}

// LineSnapshot freezes what the guest saw: menu item name, base price and
// the selected modifiers. UnitPrice is base + sum(deltas).
type LineSnapshot struct {
	menuItemID kernel.UUID
	name       string
	basePrice  kernel.Money
	modifiers  []ModifierSnapshot
	unitPrice  kernel.Money

	guard guard.ConstructorGuard
}

// NewLineSnapshot freezes a menu item and its chosen modifiers into a line.
// The unit price is the base price plus every modifier delta and must not be
// negative.
func NewLineSnapshot(
	menuItemID kernel.UUID,
	name string,
	basePrice kernel.Money,
	modifiers []ModifierSnapshot,
) (LineSnapshot, error) {
	if err := menuItemID.Validate(); err != nil {
		return LineSnapshot{}, err
	}
	if strings.TrimSpace(name) == "" {
		return LineSnapshot{}, errs.NewValueIsRequiredError("item name")
	}
	if basePrice.IsNegative() {
		return LineSnapshot{}, errs.NewValueIsInvalidErrorWithCause("base price", fmt.Errorf("%s is negative", basePrice))
	}

	unit := basePrice
	mods := make([]ModifierSnapshot, len(modifiers))
	for i, m := range modifiers {
		if err := m.ModifierID.Validate(); err != nil {
			return LineSnapshot{}, err
		}
		unit = unit.Add(m.Delta)
		mods[i] = m
	}
	if unit.IsNegative() {
		return LineSnapshot{}, errs.NewValueIsInvalidErrorWithCause("unit price", fmt.Errorf("%s is negative", unit))
	}

	return LineSnapshot{
		menuItemID: menuItemID,
		name:       name,
		basePrice:  basePrice,
		modifiers:  mods,
		unitPrice:  unit,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (s LineSnapshot) Validate() error {
	return s.guard.Validate(ErrLineSnapshotIsNotConstructed)
}

func (s LineSnapshot) MenuItemID() kernel.UUID { return s.menuItemID }
func (s LineSnapshot) Name() string            { return s.name }
func (s LineSnapshot) BasePrice() kernel.Money { return s.basePrice }
func (s LineSnapshot) UnitPrice() kernel.Money { return s.unitPrice }

// Modifiers returns a copy so callers cannot edit the snapshot.
func (s LineSnapshot) Modifiers() []ModifierSnapshot {
	out := make([]ModifierSnapshot, len(s.modifiers))
	copy(out, s.modifiers)
	return out
}
