package postgres

import (
	"context"
	"fmt"

	"github.com/Antonio-Andrianina/TD-Ingredients/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *CatalogRepository) CreateIngredient(ctx context.Context, ing domain.Ingredient) error {
	const stmt = `
INSERT INTO ingredients (id, name, category, price, unit)
VALUES ($1, $2, $3, $4, $5)`

	_, err := queryTarget(ctx, r.pool).Exec(ctx, stmt, ing.ID, ing.Name, ing.Category, ing.Price, ing.Unit)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrIngredientAlreadyExists
		}
		return fmt.Errorf("create ingredient: %w", err)
	}
	return nil
}

func (r *CatalogRepository) IngredientByID(ctx context.Context, id string) (domain.Ingredient, error) {
	const query = `SELECT id, name, category, price, unit FROM ingredients WHERE id = $1`

	var ing domain.Ingredient
	err := queryTarget(ctx, r.pool).QueryRow(ctx, query, id).
		Scan(&ing.ID, &ing.Name, &ing.Category, &ing.Price, &ing.Unit)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Ingredient{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Ingredient{}, domain.ErrIngredientNotFound
		}
		return domain.Ingredient{}, fmt.Errorf("get ingredient: %w", err)
	}
	return ing, nil
}

func (r *CatalogRepository) ListIngredients(ctx context.Context) ([]domain.Ingredient, error) {
	const query = `SELECT id, name, category, price, unit FROM ingredients ORDER BY name`

	rows, err := queryTarget(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()

	var out []domain.Ingredient
	for rows.Next() {
		var ing domain.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.Category, &ing.Price, &ing.Unit); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		out = append(out, ing)
	}
	return out, rows.Err()
}

func (r *CatalogRepository) CreateDish(ctx context.Context, dish domain.Dish) error {
	return withTx(ctx, r.pool, func(txCtx context.Context) error {
		const dishStmt = `
INSERT INTO dishes (id, name, category, selling_price)
VALUES ($1, $2, $3, $4)`

		q := queryTarget(txCtx, r.pool)
		if _, err := q.Exec(txCtx, dishStmt, dish.ID, dish.Name, dish.Category, dish.Price); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDishAlreadyExists
			}
			return fmt.Errorf("create dish: %w", err)
		}

		const lineStmt = `
INSERT INTO dish_ingredients (dish_id, ingredient_id, quantity, unit)
VALUES ($1, $2, $3, $4)`

		for _, line := range dish.Recipe {
			if _, err := q.Exec(txCtx, lineStmt, dish.ID, line.IngredientID, line.Quantity, line.Unit); err != nil {
				if isForeignKeyViolation(err) {
					return domain.ErrIngredientNotFound
				}
				if isInvalidUUID(err) {
					return domain.ErrInvalidID
				}
				return fmt.Errorf("create recipe line: %w", err)
			}
		}
		return nil
	})
}

func (r *CatalogRepository) DishByID(ctx context.Context, id string) (domain.Dish, error) {
	const query = `SELECT id, name, category, selling_price FROM dishes WHERE id = $1`

	q := queryTarget(ctx, r.pool)
	var dish domain.Dish
	err := q.QueryRow(ctx, query, id).Scan(&dish.ID, &dish.Name, &dish.Category, &dish.Price)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Dish{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Dish{}, domain.ErrDishNotFound
		}
		return domain.Dish{}, fmt.Errorf("get dish: %w", err)
	}

	const recipeQuery = `
SELECT ingredient_id, quantity, unit
FROM dish_ingredients
WHERE dish_id = $1
ORDER BY ingredient_id`

	rows, err := q.Query(ctx, recipeQuery, id)
	if err != nil {
		return domain.Dish{}, fmt.Errorf("get recipe: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.RecipeLine
		if err := rows.Scan(&line.IngredientID, &line.Quantity, &line.Unit); err != nil {
			return domain.Dish{}, fmt.Errorf("scan recipe line: %w", err)
		}
		dish.Recipe = append(dish.Recipe, line)
	}
	return dish, rows.Err()
}

func (r *CatalogRepository) ListDishes(ctx context.Context) ([]domain.Dish, error) {
	const query = `SELECT id, name, category, selling_price FROM dishes ORDER BY name`

	q := queryTarget(ctx, r.pool)
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list dishes: %w", err)
	}
	defer rows.Close()

	var dishes []domain.Dish
	index := make(map[string]int)
	for rows.Next() {
		var dish domain.Dish
		if err := rows.Scan(&dish.ID, &dish.Name, &dish.Category, &dish.Price); err != nil {
			return nil, fmt.Errorf("scan dish: %w", err)
		}
		index[dish.ID] = len(dishes)
		dishes = append(dishes, dish)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(dishes) == 0 {
		return nil, nil
	}

	const recipeQuery = `
SELECT dish_id, ingredient_id, quantity, unit
FROM dish_ingredients
ORDER BY dish_id, ingredient_id`

	recipeRows, err := q.Query(ctx, recipeQuery)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer recipeRows.Close()

	for recipeRows.Next() {
		var dishID string
		var line domain.RecipeLine
		if err := recipeRows.Scan(&dishID, &line.IngredientID, &line.Quantity, &line.Unit); err != nil {
			return nil, fmt.Errorf("scan recipe line: %w", err)
		}
		if i, ok := index[dishID]; ok {
			dishes[i].Recipe = append(dishes[i].Recipe, line)
		}
	}
	return dishes, recipeRows.Err()
}
