package app

import (
	"context"

	"github.com/Antonio-Andrianina/TD-Ingredients/internal/domain"
)

// CatalogAdminRepository is the write-side of the catalog, used for seeding
// and administering dishes and ingredients.
type CatalogAdminRepository interface {
	CatalogRepository
	CreateIngredient(ctx context.Context, ingredient domain.Ingredient) error
	ListIngredients(ctx context.Context) ([]domain.Ingredient, error)
	CreateDish(ctx context.Context, dish domain.Dish) error
	ListDishes(ctx context.Context) ([]domain.Dish, error)
}

type CatalogService struct {
	repo CatalogAdminRepository
}

func NewCatalogService(repo CatalogAdminRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

type CreateIngredientInput struct {
	Name     string
	Category domain.IngredientCategory
	Price    float64
	Unit     domain.Unit
}

func (s *CatalogService) CreateIngredient(ctx context.Context, in CreateIngredientInput) (domain.Ingredient, error) {
	if in.Name == "" {
		return domain.Ingredient{}, domain.ErrNameRequired
	}
	if !in.Category.Valid() {
		in.Category = domain.CategoryOther
	}
	if in.Price < 0 {
		return domain.Ingredient{}, domain.ErrInvalidPrice
	}
	if !in.Unit.Valid() {
		return domain.Ingredient{}, domain.ErrInvalidUnit
	}

	ing := domain.Ingredient{
		ID:       newUUID(),
		Name:     in.Name,
		Category: in.Category,
		Price:    in.Price,
		Unit:     in.Unit,
	}
	if err := s.repo.CreateIngredient(ctx, ing); err != nil {
		return domain.Ingredient{}, wrapCatalog("create ingredient", err)
	}
	return ing, nil
}

func (s *CatalogService) ListIngredients(ctx context.Context) ([]domain.Ingredient, error) {
	out, err := s.repo.ListIngredients(ctx)
	if err != nil {
		return nil, wrapCatalog("list ingredients", err)
	}
	return out, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id string) (domain.Ingredient, error) {
	ing, err := s.repo.IngredientByID(ctx, id)
	if err != nil {
		return domain.Ingredient{}, wrapCatalog("get ingredient", err)
	}
	return ing, nil
}

type RecipeLineInput struct {
	IngredientID string
	Quantity     float64
	Unit         domain.Unit
}

type CreateDishInput struct {
	Name     string
	Category domain.DishCategory
	Price    float64
	Recipe   []RecipeLineInput
}

func (s *CatalogService) CreateDish(ctx context.Context, in CreateDishInput) (domain.Dish, error) {
	if in.Name == "" {
		return domain.Dish{}, domain.ErrNameRequired
	}
	if !in.Category.Valid() {
		return domain.Dish{}, domain.ErrInvalidCategory
	}
	if in.Price < 0 {
		return domain.Dish{}, domain.ErrInvalidPrice
	}
	if len(in.Recipe) == 0 {
		return domain.Dish{}, domain.ErrEmptyRecipe
	}

	dish := domain.Dish{
		ID:       newUUID(),
		Name:     in.Name,
		Category: in.Category,
		Price:    in.Price,
	}
	for _, line := range in.Recipe {
		if line.Quantity <= 0 {
			return domain.Dish{}, domain.ErrInvalidQuantity
		}
		if !line.Unit.Valid() {
			return domain.Dish{}, domain.ErrInvalidUnit
		}
		dish.Recipe = append(dish.Recipe, domain.RecipeLine{
			IngredientID: line.IngredientID,
			Quantity:     line.Quantity,
			Unit:         line.Unit,
		})
	}

	if err := s.repo.CreateDish(ctx, dish); err != nil {
		return domain.Dish{}, wrapCatalog("create dish", err)
	}
	return dish, nil
}

func (s *CatalogService) ListDishes(ctx context.Context) ([]domain.Dish, error) {
	out, err := s.repo.ListDishes(ctx)
	if err != nil {
		return nil, wrapCatalog("list dishes", err)
	}
	return out, nil
}

func (s *CatalogService) GetDish(ctx context.Context, id string) (domain.Dish, error) {
	dish, err := s.repo.DishByID(ctx, id)
	if err != nil {
		return domain.Dish{}, wrapCatalog("get dish", err)
	}
	return dish, nil
}

func wrapCatalog(op string, err error) error {
	if domain.Known(err) {
		return err
	}
	return &domain.PersistenceError{Op: op, Err: err}
}
