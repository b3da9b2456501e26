package app

import (
	"context"
	"log"
	"time"

	"github.com/Antonio-Andrianina/TD-Ingredients/internal/clock"
	"github.com/Antonio-Andrianina/TD-Ingredients/internal/domain"
)

// StockService exposes the stock ledger: point-in-time levels, restocking and
// the audit trail of movements.
type StockService struct {
	ledger  LedgerRepository
	catalog CatalogRepository
	clock   clock.Clock
	events  EventPublisher
	logger  *log.Logger
}

func NewStockService(ledger LedgerRepository, catalog CatalogRepository, clk clock.Clock, opts ...StockServiceOption) *StockService {
	svc := &StockService{
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

type StockServiceOption func(*StockService)

// WithStockEvents publishes appended movements to the audit stream.
func WithStockEvents(pub EventPublisher) StockServiceOption {
	return func(s *StockService) {
		s.events = pub
	}
}

// WithStockLogger overrides the default logger.
func WithStockLogger(logger *log.Logger) StockServiceOption {
	return func(s *StockService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// LevelAt returns the ingredient's stock as of the given instant, defaulting
// to now. The read is pure: folding the movement log has no side effects.
func (s *StockService) LevelAt(ctx context.Context, ingredientID string, at *time.Time) (domain.StockLevel, error) {
	ing, err := s.catalog.IngredientByID(ctx, ingredientID)
	if err != nil {
		return domain.StockLevel{}, s.wrap("get ingredient", err)
	}

	asOf := s.clock.Now()
	if at != nil {
		asOf = at.UTC()
	}

	level, err := s.ledger.LevelAt(ctx, ingredientID, asOf)
	if err != nil {
		return domain.StockLevel{}, s.wrap("read stock level", err)
	}
	// An ingredient with no movements yet reports its catalog unit.
	if level.Unit == "" {
		level.Unit = ing.Unit
	}
	return level, nil
}

type RestockInput struct {
	IngredientID string
	Quantity     float64
	Unit         domain.Unit
	// At backdates the movement; nil means now.
	At *time.Time
}

// Restock appends one inbound movement for the ingredient.
func (s *StockService) Restock(ctx context.Context, in RestockInput) (domain.StockMovement, error) {
	if in.Quantity <= 0 {
		return domain.StockMovement{}, domain.ErrInvalidQuantity
	}
	if !in.Unit.Valid() {
		return domain.StockMovement{}, domain.ErrInvalidUnit
	}
	if _, err := s.catalog.IngredientByID(ctx, in.IngredientID); err != nil {
		return domain.StockMovement{}, s.wrap("get ingredient", err)
	}

	createdAt := s.clock.Now()
	if in.At != nil {
		createdAt = in.At.UTC()
	}

	movement := domain.StockMovement{
		ID:           newUUID(),
		IngredientID: in.IngredientID,
		Quantity:     in.Quantity,
		Unit:         in.Unit,
		Kind:         domain.MovementIn,
		CreatedAt:    createdAt,
	}
	if err := s.ledger.InsertMovement(ctx, movement); err != nil {
		return domain.StockMovement{}, s.wrap("insert movement", err)
	}

	if s.events != nil {
		if err := s.events.MovementsAppended(ctx, []domain.StockMovement{movement}); err != nil {
			s.logger.Printf("WARN: publish restock for ingredient %s: %v", in.IngredientID, err)
		}
	}
	return movement, nil
}

// Movements returns the full audit trail for one ingredient in append order.
func (s *StockService) Movements(ctx context.Context, ingredientID string) ([]domain.StockMovement, error) {
	if _, err := s.catalog.IngredientByID(ctx, ingredientID); err != nil {
		return nil, s.wrap("get ingredient", err)
	}
	movements, err := s.ledger.MovementsByIngredient(ctx, ingredientID)
	if err != nil {
		return nil, s.wrap("list movements", err)
	}
	return movements, nil
}

func (s *StockService) wrap(op string, err error) error {
	if domain.Known(err) {
		return err
	}
	return &domain.PersistenceError{Op: op, Err: err}
}
