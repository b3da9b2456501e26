package domain

type DishCategory string

const (
	DishStarter DishCategory = "STARTER"
	DishMain    DishCategory = "MAIN"
	DishDessert DishCategory = "DESSERT"
)

func (c DishCategory) Valid() bool {
	switch c {
	case DishStarter, DishMain, DishDessert:
		return true
	}
	return false
}

// RecipeLine is one ingredient requirement for a single unit of a dish.
type RecipeLine struct {
	IngredientID string
	Quantity     float64
	Unit         Unit
}

// Dish is a catalog entry with its fixed recipe.
type Dish struct {
	ID       string
	Name     string
	Category DishCategory
	Price    float64
	Recipe   []RecipeLine
}
