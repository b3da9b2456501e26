package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Antonio-Andrianina/TD-Ingredients/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerRepository owns the append-only stock_movements table. Movements are
// only ever inserted; stock is always derived by summation.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

func (r *LedgerRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// LockIngredients takes row locks on the given ingredients in ascending id
// order, so concurrent submissions contending for the same stock serialize
// instead of both passing the sufficiency check.
func (r *LedgerRepository) LockIngredients(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)

	const query = `SELECT id FROM ingredients WHERE id = ANY($1) ORDER BY id FOR UPDATE`

	rows, err := queryTarget(ctx, r.pool).Query(ctx, query, sorted)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("lock ingredients: %w", err)
	}
	defer rows.Close()

	locked := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan locked ingredient: %w", err)
		}
		locked++
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("lock ingredients: %w", err)
	}
	if locked != len(sorted) {
		return domain.ErrIngredientNotFound
	}
	return nil
}

// LevelAt folds the movement log for one ingredient up to the given instant.
// A mix of units among the summed movements is a data-integrity failure.
func (r *LedgerRepository) LevelAt(ctx context.Context, ingredientID string, at time.Time) (domain.StockLevel, error) {
	const query = `
SELECT COALESCE(SUM(quantity), 0), COUNT(DISTINCT unit), COALESCE(MIN(unit), '')
FROM stock_movements
WHERE ingredient_id = $1 AND created_at <= $2`

	return r.foldLevel(ctx, ingredientID, at, query, ingredientID, at)
}

// CurrentLevel folds the entire movement log for one ingredient, with no
// timestamp bound. Sufficiency checks use this so a deduction committed by a
// contending transaction counts even when it carries an earlier created_at.
func (r *LedgerRepository) CurrentLevel(ctx context.Context, ingredientID string) (domain.StockLevel, error) {
	const query = `
SELECT COALESCE(SUM(quantity), 0), COUNT(DISTINCT unit), COALESCE(MIN(unit), '')
FROM stock_movements
WHERE ingredient_id = $1`

	return r.foldLevel(ctx, ingredientID, time.Time{}, query, ingredientID)
}

func (r *LedgerRepository) foldLevel(ctx context.Context, ingredientID string, asOf time.Time, query string, args ...any) (domain.StockLevel, error) {
	var qty float64
	var distinctUnits int
	var unit string
	err := queryTarget(ctx, r.pool).QueryRow(ctx, query, args...).
		Scan(&qty, &distinctUnits, &unit)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.StockLevel{}, domain.ErrInvalidID
		}
		return domain.StockLevel{}, fmt.Errorf("sum movements: %w", err)
	}
	if distinctUnits > 1 {
		return domain.StockLevel{}, domain.ErrUnitMismatch
	}
	return domain.StockLevel{
		IngredientID: ingredientID,
		Quantity:     qty,
		Unit:         domain.Unit(unit),
		AsOf:         asOf,
	}, nil
}

func (r *LedgerRepository) InsertMovement(ctx context.Context, m domain.StockMovement) error {
	const stmt = `
INSERT INTO stock_movements (id, ingredient_id, quantity, unit, kind, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := queryTarget(ctx, r.pool).Exec(ctx, stmt,
		m.ID, m.IngredientID, m.Quantity, m.Unit, m.Kind, m.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrIngredientNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// InsertMovements appends all movements or none of them. Outside an ambient
// transaction it opens its own, so a multi-ingredient deduction can never
// partially apply.
func (r *LedgerRepository) InsertMovements(ctx context.Context, movements []domain.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return withTx(ctx, r.pool, func(txCtx context.Context) error {
		const stmt = `
INSERT INTO stock_movements (id, ingredient_id, quantity, unit, kind, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

		batch := &pgx.Batch{}
		for _, m := range movements {
			batch.Queue(stmt, m.ID, m.IngredientID, m.Quantity, m.Unit, m.Kind, m.CreatedAt)
		}

		results := queryTarget(txCtx, r.pool).SendBatch(txCtx, batch)
		for range movements {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				if isForeignKeyViolation(err) {
					return domain.ErrIngredientNotFound
				}
				if isInvalidUUID(err) {
					return domain.ErrInvalidID
				}
				return fmt.Errorf("insert movement batch: %w", err)
			}
		}
		return results.Close()
	})
}

// MovementsByIngredient returns the full movement stream for an ingredient in
// append order, for audit and export.
func (r *LedgerRepository) MovementsByIngredient(ctx context.Context, ingredientID string) ([]domain.StockMovement, error) {
	const query = `
SELECT id, ingredient_id, quantity, unit, kind, created_at
FROM stock_movements
WHERE ingredient_id = $1
ORDER BY created_at, id`

	rows, err := queryTarget(ctx, r.pool).Query(ctx, query, ingredientID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var out []domain.StockMovement
	for rows.Next() {
		var m domain.StockMovement
		if err := rows.Scan(&m.ID, &m.IngredientID, &m.Quantity, &m.Unit, &m.Kind, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, err
	}
	return out, nil
}
