package postgres

import (
	"context"
	"fmt"

	"github.com/Antonio-Andrianina/TD-Ingredients/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// NextReference draws the next order reference from a dedicated sequence.
// Sequence values are never reused, so references stay unique even when the
// enclosing transaction rolls back.
func (r *OrderRepository) NextReference(ctx context.Context) (string, error) {
	var n int64
	err := queryTarget(ctx, r.pool).QueryRow(ctx, `SELECT nextval('order_reference_seq')`).Scan(&n)
	if err != nil {
		return "", fmt.Errorf("next order reference: %w", err)
	}
	return fmt.Sprintf("ORD%05d", n), nil
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	const orderStmt = `
INSERT INTO orders (id, reference, order_type, status, created_at)
VALUES ($1, $2, $3, $4, $5)`

	q := queryTarget(ctx, r.pool)
	_, err := q.Exec(ctx, orderStmt, order.ID, order.Reference, order.Type, order.Status, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	const lineStmt = `
INSERT INTO order_lines (order_id, position, dish_id, dish_name, unit_price, quantity)
VALUES ($1, $2, $3, $4, $5, $6)`

	for i, line := range order.Lines {
		if _, err := q.Exec(ctx, lineStmt, order.ID, i, line.DishID, line.DishName, line.UnitPrice, line.Quantity); err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrDishNotFound
			}
			return fmt.Errorf("create order line: %w", err)
		}
	}
	return nil
}

func (r *OrderRepository) FindByReference(ctx context.Context, reference string) (domain.Order, error) {
	const query = `SELECT id, reference, order_type, status, created_at FROM orders WHERE reference = $1`

	q := queryTarget(ctx, r.pool)
	var o domain.Order
	err := q.QueryRow(ctx, query, reference).
		Scan(&o.ID, &o.Reference, &o.Type, &o.Status, &o.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}

	lines, err := r.linesByOrderID(ctx, o.ID)
	if err != nil {
		return domain.Order{}, err
	}
	o.Lines = lines
	return o, nil
}

// GetOrderForUpdate locks the order row for the rest of the transaction, so
// status transitions on the same order serialize.
func (r *OrderRepository) GetOrderForUpdate(ctx context.Context, reference string) (domain.Order, error) {
	const query = `
SELECT id, reference, order_type, status, created_at
FROM orders
WHERE reference = $1
FOR UPDATE`

	var o domain.Order
	err := queryTarget(ctx, r.pool).QueryRow(ctx, query, reference).
		Scan(&o.ID, &o.Reference, &o.Type, &o.Status, &o.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order for update: %w", err)
	}
	return o, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, reference string, status domain.OrderStatus) error {
	const stmt = `UPDATE orders SET status = $2 WHERE reference = $1`

	tag, err := queryTarget(ctx, r.pool).Exec(ctx, stmt, reference, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) linesByOrderID(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	const query = `
SELECT dish_id, dish_name, unit_price, quantity
FROM order_lines
WHERE order_id = $1
ORDER BY position`

	rows, err := queryTarget(ctx, r.pool).Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.DishID, &l.DishName, &l.UnitPrice, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
