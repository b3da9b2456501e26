package domain

import "time"

// Unit is the unit of measure a quantity is expressed in. Movements for the
// same ingredient must all share one unit; nothing in the system converts.
type Unit string

const (
	UnitKG    Unit = "KG"
	UnitG     Unit = "G"
	UnitL     Unit = "L"
	UnitPiece Unit = "PIECE"
)

func (u Unit) Valid() bool {
	switch u {
	case UnitKG, UnitG, UnitL, UnitPiece:
		return true
	}
	return false
}

type IngredientCategory string

const (
	CategoryVegetable IngredientCategory = "VEGETABLE"
	CategoryAnimal    IngredientCategory = "ANIMAL"
	CategoryDairy     IngredientCategory = "DAIRY"
	CategoryOther     IngredientCategory = "OTHER"
)

func (c IngredientCategory) Valid() bool {
	switch c {
	case CategoryVegetable, CategoryAnimal, CategoryDairy, CategoryOther:
		return true
	}
	return false
}

// Ingredient is a catalog entry. Stock is intentionally not a field: it is
// derived from the movement ledger.
type Ingredient struct {
	ID       string
	Name     string
	Category IngredientCategory
	Price    float64
	Unit     Unit
}

// StockLevel is a derived, point-in-time stock reading for one ingredient.
type StockLevel struct {
	IngredientID string
	Quantity     float64
	Unit         Unit
	AsOf         time.Time
}
