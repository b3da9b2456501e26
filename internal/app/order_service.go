package app

import (
	"context"
	"log"
	"time"

	"github.com/Antonio-Andrianina/TD-Ingredients/internal/clock"
	"github.com/Antonio-Andrianina/TD-Ingredients/internal/domain"
)

type OrderRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	NextReference(ctx context.Context) (string, error)
	CreateOrder(ctx context.Context, order domain.Order) error
	FindByReference(ctx context.Context, reference string) (domain.Order, error)
	GetOrderForUpdate(ctx context.Context, reference string) (domain.Order, error)
	UpdateStatus(ctx context.Context, reference string, status domain.OrderStatus) error
}

type LedgerRepository interface {
	LockIngredients(ctx context.Context, ids []string) error
	LevelAt(ctx context.Context, ingredientID string, at time.Time) (domain.StockLevel, error)
	CurrentLevel(ctx context.Context, ingredientID string) (domain.StockLevel, error)
	InsertMovement(ctx context.Context, movement domain.StockMovement) error
	InsertMovements(ctx context.Context, movements []domain.StockMovement) error
	MovementsByIngredient(ctx context.Context, ingredientID string) ([]domain.StockMovement, error)
}

type CatalogRepository interface {
	DishByID(ctx context.Context, id string) (domain.Dish, error)
	IngredientByID(ctx context.Context, id string) (domain.Ingredient, error)
}

// EventPublisher receives committed facts for the audit stream. Publishing is
// best effort and happens strictly after commit.
type EventPublisher interface {
	OrderCommitted(ctx context.Context, order domain.Order) error
	MovementsAppended(ctx context.Context, movements []domain.StockMovement) error
}

// OrderService coordinates order submission: validate against the stock
// ledger, deduct and persist in one transaction.
type OrderService struct {
	repo    OrderRepository
	ledger  LedgerRepository
	catalog CatalogRepository
	clock   clock.Clock
	events  EventPublisher
	logger  *log.Logger
}

func NewOrderService(repo OrderRepository, ledger LedgerRepository, catalog CatalogRepository, clk clock.Clock, opts ...OrderServiceOption) *OrderService {
	svc := &OrderService{
		repo:    repo,
		ledger:  ledger,
		catalog: catalog,
		clock:   clk,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type OrderServiceOption func(*OrderService)

// WithOrderEvents publishes committed orders and their stock deductions.
func WithOrderEvents(pub EventPublisher) OrderServiceOption {
	return func(s *OrderService) {
		s.events = pub
	}
}

// WithOrderLogger overrides the default logger.
func WithOrderLogger(logger *log.Logger) OrderServiceOption {
	return func(s *OrderService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type OrderLineInput struct {
	DishID   string
	Quantity int
}

type SubmitOrderInput struct {
	Type  domain.OrderType
	Lines []OrderLineInput
}

// SubmitOrder validates the order against current stock, appends one outbound
// movement per required ingredient and persists the order, all inside a
// single transaction. On any failure nothing is written.
func (s *OrderService) SubmitOrder(ctx context.Context, in SubmitOrderInput) (domain.Order, error) {
	if len(in.Lines) == 0 {
		return domain.Order{}, domain.ErrInvalidOrder
	}
	for _, line := range in.Lines {
		if line.Quantity <= 0 {
			return domain.Order{}, domain.ErrInvalidOrder
		}
	}
	orderType := in.Type
	if orderType == "" {
		orderType = domain.OrderDineIn
	}
	if !orderType.Valid() {
		return domain.Order{}, domain.ErrInvalidOrderType
	}

	requirements, orderLines, err := expandRequirements(ctx, s.catalog, in.Lines)
	if err != nil {
		return domain.Order{}, err
	}

	var (
		order     domain.Order
		movements []domain.StockMovement
	)

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		ids := make([]string, 0, len(requirements))
		for _, req := range requirements {
			ids = append(ids, req.IngredientID)
		}
		if err := s.ledger.LockIngredients(txCtx, ids); err != nil {
			return err
		}

		// The clock is read only after the locks are held, so these movements
		// are stamped after any deduction this transaction had to wait for.
		now := s.clock.Now()

		// Re-check stock under the locks. The read is unbounded: a contending
		// order committed before this point is observed here regardless of the
		// timestamp it carried.
		if err := checkSufficiency(txCtx, s.ledger, requirements); err != nil {
			return err
		}

		reference, err := s.repo.NextReference(txCtx)
		if err != nil {
			return err
		}

		outs := make([]domain.StockMovement, 0, len(requirements))
		for _, req := range requirements {
			outs = append(outs, domain.StockMovement{
				ID:           newUUID(),
				IngredientID: req.IngredientID,
				Quantity:     -req.Quantity,
				Unit:         req.Unit,
				Kind:         domain.MovementOut,
				CreatedAt:    now,
			})
		}
		if err := s.ledger.InsertMovements(txCtx, outs); err != nil {
			return err
		}
		movements = outs

		order = domain.Order{
			ID:        newUUID(),
			Reference: reference,
			Type:      orderType,
			Status:    domain.StatusCreated,
			CreatedAt: now,
			Lines:     orderLines,
		}
		return s.repo.CreateOrder(txCtx, order)
	})
	if err != nil {
		if domain.Known(err) {
			return domain.Order{}, err
		}
		return domain.Order{}, &domain.PersistenceError{Op: "submit order", Err: err}
	}

	s.publish(ctx, order, movements)
	return order, nil
}

// GetOrder retrieves a committed order and its lines by reference.
func (s *OrderService) GetOrder(ctx context.Context, reference string) (domain.Order, error) {
	order, err := s.repo.FindByReference(ctx, reference)
	if err != nil {
		if domain.Known(err) {
			return domain.Order{}, err
		}
		return domain.Order{}, &domain.PersistenceError{Op: "find order", Err: err}
	}
	return order, nil
}

// UpdateStatus moves an order to a new status. A delivered order is frozen:
// any further change fails with OrderImmutableError.
func (s *OrderService) UpdateStatus(ctx context.Context, reference string, status domain.OrderStatus) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, domain.ErrInvalidStatus
	}

	var order domain.Order
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetOrderForUpdate(txCtx, reference)
		if err != nil {
			return err
		}
		if current.Status.Terminal() {
			return &domain.OrderImmutableError{Reference: current.Reference, Status: current.Status}
		}
		if err := s.repo.UpdateStatus(txCtx, reference, status); err != nil {
			return err
		}
		order = current
		order.Status = status
		return nil
	})
	if err != nil {
		if domain.Known(err) {
			return domain.Order{}, err
		}
		return domain.Order{}, &domain.PersistenceError{Op: "update order status", Err: err}
	}
	return order, nil
}

func (s *OrderService) publish(ctx context.Context, order domain.Order, movements []domain.StockMovement) {
	if s.events == nil {
		return
	}
	if err := s.events.OrderCommitted(ctx, order); err != nil {
		s.logger.Printf("WARN: publish order %s: %v", order.Reference, err)
	}
	if err := s.events.MovementsAppended(ctx, movements); err != nil {
		s.logger.Printf("WARN: publish movements for order %s: %v", order.Reference, err)
	}
}
