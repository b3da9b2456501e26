package app

import (
	"context"
	"sort"

	"github.com/Antonio-Andrianina/TD-Ingredients/internal/domain"
)

// requirement is the aggregated quantity of one ingredient an order consumes.
type requirement struct {
	IngredientID string
	Quantity     float64
	Unit         domain.Unit
}

// expandRequirements resolves each ordered dish to its recipe and aggregates
// the required quantities per ingredient. The result is sorted by ascending
// ingredient id so downstream checks are deterministic.
func expandRequirements(ctx context.Context, catalog CatalogRepository, lines []OrderLineInput) ([]requirement, []domain.OrderLine, error) {
	needed := make(map[string]*requirement)
	orderLines := make([]domain.OrderLine, 0, len(lines))

	for _, line := range lines {
		dish, err := catalog.DishByID(ctx, line.DishID)
		if err != nil {
			return nil, nil, err
		}
		orderLines = append(orderLines, domain.OrderLine{
			DishID:    dish.ID,
			DishName:  dish.Name,
			UnitPrice: dish.Price,
			Quantity:  line.Quantity,
		})

		for _, rl := range dish.Recipe {
			req, ok := needed[rl.IngredientID]
			if !ok {
				req = &requirement{IngredientID: rl.IngredientID, Unit: rl.Unit}
				needed[rl.IngredientID] = req
			}
			if req.Unit != rl.Unit {
				return nil, nil, domain.ErrUnitMismatch
			}
			req.Quantity += rl.Quantity * float64(line.Quantity)
		}
	}

	out := make([]requirement, 0, len(needed))
	for _, req := range needed {
		out = append(out, *req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IngredientID < out[j].IngredientID })
	return out, orderLines, nil
}

// checkSufficiency reads the committed ledger level of every required
// ingredient and collects every shortage. The read is unbounded so it observes
// every committed deduction, whatever timestamp the writer stamped on it.
// Exact equality passes: stock may reach exactly zero.
func checkSufficiency(ctx context.Context, ledger LedgerRepository, requirements []requirement) error {
	var shortages []domain.Shortage
	for _, req := range requirements {
		level, err := ledger.CurrentLevel(ctx, req.IngredientID)
		if err != nil {
			return err
		}
		if level.Unit != "" && level.Unit != req.Unit {
			return domain.ErrUnitMismatch
		}
		if req.Quantity > level.Quantity {
			shortages = append(shortages, domain.Shortage{
				IngredientID: req.IngredientID,
				Required:     req.Quantity,
				Available:    level.Quantity,
				Unit:         req.Unit,
			})
		}
	}
	if len(shortages) > 0 {
		return &domain.InsufficientStockError{Shortages: shortages}
	}
	return nil
}
