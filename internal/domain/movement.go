package domain

import "time"

type MovementKind string

const (
	MovementIn  MovementKind = "IN"
	MovementOut MovementKind = "OUT"
)

// StockMovement is one immutable, signed stock change for an ingredient.
// Inbound movements carry a positive quantity, outbound a negative one.
// Movements are only ever appended, never updated or deleted.
type StockMovement struct {
	ID           string
	IngredientID string
	Quantity     float64
	Unit         Unit
	Kind         MovementKind
	CreatedAt    time.Time
}

// KindForQuantity derives the movement kind from the sign of a quantity.
func KindForQuantity(qty float64) MovementKind {
	if qty < 0 {
		return MovementOut
	}
	return MovementIn
}
