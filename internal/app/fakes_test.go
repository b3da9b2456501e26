package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Antonio-Andrianina/TD-Ingredients/internal/domain"
)

type fakeLedger struct {
	movements map[string][]domain.StockMovement
	lockErr   error
	insertErr error
	locks     [][]string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{movements: make(map[string][]domain.StockMovement)}
}

func (f *fakeLedger) LockIngredients(_ context.Context, ids []string) error {
	recorded := make([]string, len(ids))
	copy(recorded, ids)
	f.locks = append(f.locks, recorded)
	return f.lockErr
}

func (f *fakeLedger) LevelAt(_ context.Context, ingredientID string, at time.Time) (domain.StockLevel, error) {
	var qty float64
	units := make(map[domain.Unit]struct{})
	var unit domain.Unit
	for _, m := range f.movements[ingredientID] {
		if m.CreatedAt.After(at) {
			continue
		}
		qty += m.Quantity
		units[m.Unit] = struct{}{}
		unit = m.Unit
	}
	if len(units) > 1 {
		return domain.StockLevel{}, domain.ErrUnitMismatch
	}
	return domain.StockLevel{IngredientID: ingredientID, Quantity: qty, Unit: unit, AsOf: at}, nil
}

func (f *fakeLedger) CurrentLevel(_ context.Context, ingredientID string) (domain.StockLevel, error) {
	var qty float64
	units := make(map[domain.Unit]struct{})
	var unit domain.Unit
	for _, m := range f.movements[ingredientID] {
		qty += m.Quantity
		units[m.Unit] = struct{}{}
		unit = m.Unit
	}
	if len(units) > 1 {
		return domain.StockLevel{}, domain.ErrUnitMismatch
	}
	return domain.StockLevel{IngredientID: ingredientID, Quantity: qty, Unit: unit}, nil
}

func (f *fakeLedger) InsertMovement(_ context.Context, m domain.StockMovement) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.movements[m.IngredientID] = append(f.movements[m.IngredientID], m)
	return nil
}

func (f *fakeLedger) InsertMovements(ctx context.Context, ms []domain.StockMovement) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	for _, m := range ms {
		if err := f.InsertMovement(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeLedger) MovementsByIngredient(_ context.Context, ingredientID string) ([]domain.StockMovement, error) {
	out := make([]domain.StockMovement, len(f.movements[ingredientID]))
	copy(out, f.movements[ingredientID])
	return out, nil
}

func (f *fakeLedger) seed(ingredientID string, qty float64, unit domain.Unit, at time.Time) {
	f.movements[ingredientID] = append(f.movements[ingredientID], domain.StockMovement{
		ID:           fmt.Sprintf("seed-%s-%d", ingredientID, len(f.movements[ingredientID])),
		IngredientID: ingredientID,
		Quantity:     qty,
		Unit:         unit,
		Kind:         domain.KindForQuantity(qty),
		CreatedAt:    at,
	})
}

func (f *fakeLedger) snapshot() map[string][]domain.StockMovement {
	snap := make(map[string][]domain.StockMovement, len(f.movements))
	for k, v := range f.movements {
		cp := make([]domain.StockMovement, len(v))
		copy(cp, v)
		snap[k] = cp
	}
	return snap
}

// fakeOrderStore emulates the transactional store: WithTx snapshots both the
// orders and the shared ledger, and restores them when fn fails.
type fakeOrderStore struct {
	ledger    *fakeLedger
	orders    map[string]domain.Order
	seq       int
	createErr error
}

func newFakeOrderStore(ledger *fakeLedger) *fakeOrderStore {
	return &fakeOrderStore{ledger: ledger, orders: make(map[string]domain.Order)}
}

func (f *fakeOrderStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	ordersSnap := make(map[string]domain.Order, len(f.orders))
	for k, v := range f.orders {
		ordersSnap[k] = v
	}
	var ledgerSnap map[string][]domain.StockMovement
	if f.ledger != nil {
		ledgerSnap = f.ledger.snapshot()
	}

	if err := fn(ctx); err != nil {
		f.orders = ordersSnap
		if f.ledger != nil {
			f.ledger.movements = ledgerSnap
		}
		return err
	}
	return nil
}

func (f *fakeOrderStore) NextReference(_ context.Context) (string, error) {
	f.seq++
	return fmt.Sprintf("ORD%05d", f.seq), nil
}

func (f *fakeOrderStore) CreateOrder(_ context.Context, order domain.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.orders[order.Reference] = order
	return nil
}

func (f *fakeOrderStore) FindByReference(_ context.Context, reference string) (domain.Order, error) {
	order, ok := f.orders[reference]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

func (f *fakeOrderStore) GetOrderForUpdate(ctx context.Context, reference string) (domain.Order, error) {
	return f.FindByReference(ctx, reference)
}

func (f *fakeOrderStore) UpdateStatus(_ context.Context, reference string, status domain.OrderStatus) error {
	order, ok := f.orders[reference]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Status = status
	f.orders[reference] = order
	return nil
}

type fakeCatalog struct {
	dishes      map[string]domain.Dish
	ingredients map[string]domain.Ingredient
	dishLookups int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		dishes:      make(map[string]domain.Dish),
		ingredients: make(map[string]domain.Ingredient),
	}
}

func (f *fakeCatalog) DishByID(_ context.Context, id string) (domain.Dish, error) {
	f.dishLookups++
	dish, ok := f.dishes[id]
	if !ok {
		return domain.Dish{}, domain.ErrDishNotFound
	}
	return dish, nil
}

func (f *fakeCatalog) IngredientByID(_ context.Context, id string) (domain.Ingredient, error) {
	ing, ok := f.ingredients[id]
	if !ok {
		return domain.Ingredient{}, domain.ErrIngredientNotFound
	}
	return ing, nil
}

type capturePublisher struct {
	orders    []domain.Order
	movements [][]domain.StockMovement
	err       error
}

func (c *capturePublisher) OrderCommitted(_ context.Context, order domain.Order) error {
	if c.err != nil {
		return c.err
	}
	c.orders = append(c.orders, order)
	return nil
}

func (c *capturePublisher) MovementsAppended(_ context.Context, movements []domain.StockMovement) error {
	if c.err != nil {
		return c.err
	}
	c.movements = append(c.movements, movements)
	return nil
}
