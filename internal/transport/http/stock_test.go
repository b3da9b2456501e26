package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Antonio-Andrianina/TD-Ingredients/internal/app"
	"github.com/Antonio-Andrianina/TD-Ingredients/internal/domain"
)

type stubStockService struct {
	levelAt   func(ctx context.Context, ingredientID string, at *time.Time) (domain.StockLevel, error)
	restock   func(ctx context.Context, in app.RestockInput) (domain.StockMovement, error)
	movements func(ctx context.Context, ingredientID string) ([]domain.StockMovement, error)
}

func (s *stubStockService) LevelAt(ctx context.Context, ingredientID string, at *time.Time) (domain.StockLevel, error) {
	return s.levelAt(ctx, ingredientID, at)
}

func (s *stubStockService) Restock(ctx context.Context, in app.RestockInput) (domain.StockMovement, error) {
	return s.restock(ctx, in)
}

func (s *stubStockService) Movements(ctx context.Context, ingredientID string) ([]domain.StockMovement, error) {
	return s.movements(ctx, ingredientID)
}

type stubIngredientAdmin struct {
	create func(ctx context.Context, in app.CreateIngredientInput) (domain.Ingredient, error)
	list   func(ctx context.Context) ([]domain.Ingredient, error)
}

func (s *stubIngredientAdmin) CreateIngredient(ctx context.Context, in app.CreateIngredientInput) (domain.Ingredient, error) {
	return s.create(ctx, in)
}

func (s *stubIngredientAdmin) ListIngredients(ctx context.Context) ([]domain.Ingredient, error) {
	return s.list(ctx)
}

func TestHandleIngredients(t *testing.T) {
	t.Run("creates ingredient", func(t *testing.T) {
		svc := &stubIngredientAdmin{
			create: func(_ context.Context, in app.CreateIngredientInput) (domain.Ingredient, error) {
				return domain.Ingredient{
					ID:       "ing-1",
					Name:     in.Name,
					Category: in.Category,
					Price:    in.Price,
					Unit:     in.Unit,
				}, nil
			},
		}

		body := `{"name":"Laitue","category":"VEGETABLE","price":1200,"unit":"KG"}`
		req := httptest.NewRequest(http.MethodPost, "/ingredients", strings.NewReader(body))
		rec := httptest.NewRecorder()

		HandleIngredients(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp ingredientResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.ID != "ing-1" || resp.Name != "Laitue" || resp.Unit != "KG" {
			t.Fatalf("unexpected response: %+v", resp)
		}
	})

	t.Run("missing name is 400", func(t *testing.T) {
		svc := &stubIngredientAdmin{
			create: func(_ context.Context, _ app.CreateIngredientInput) (domain.Ingredient, error) {
				return domain.Ingredient{}, domain.ErrNameRequired
			},
		}

		body := `{"category":"VEGETABLE","price":1200,"unit":"KG"}`
		req := httptest.NewRequest(http.MethodPost, "/ingredients", strings.NewReader(body))
		rec := httptest.NewRecorder()

		HandleIngredients(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("duplicate name is 409", func(t *testing.T) {
		svc := &stubIngredientAdmin{
			create: func(_ context.Context, _ app.CreateIngredientInput) (domain.Ingredient, error) {
				return domain.Ingredient{}, domain.ErrIngredientAlreadyExists
			},
		}

		body := `{"name":"Laitue","category":"VEGETABLE","price":1200,"unit":"KG"}`
		req := httptest.NewRequest(http.MethodPost, "/ingredients", strings.NewReader(body))
		rec := httptest.NewRecorder()

		HandleIngredients(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected status 409, got %d", rec.Code)
		}
	})

	t.Run("lists ingredients", func(t *testing.T) {
		svc := &stubIngredientAdmin{
			list: func(_ context.Context) ([]domain.Ingredient, error) {
				return []domain.Ingredient{
					{ID: "ing-1", Name: "Laitue", Category: domain.CategoryVegetable, Price: 1200, Unit: domain.UnitKG},
					{ID: "ing-2", Name: "Poulet", Category: domain.CategoryAnimal, Price: 9000, Unit: domain.UnitKG},
				}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/ingredients", nil)
		rec := httptest.NewRecorder()

		HandleIngredients(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var resp []ingredientResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp) != 2 {
			t.Fatalf("expected 2 ingredients, got %d", len(resp))
		}
	})
}

func TestHandleIngredientStock(t *testing.T) {
	asOf := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("current stock level", func(t *testing.T) {
		svc := &stubStockService{
			levelAt: func(_ context.Context, ingredientID string, at *time.Time) (domain.StockLevel, error) {
				if ingredientID != "ing-1" {
					t.Fatalf("expected ingredient ing-1, got %q", ingredientID)
				}
				if at != nil {
					t.Fatalf("expected nil timestamp, got %v", at)
				}
				return domain.StockLevel{IngredientID: "ing-1", Quantity: 99.6, Unit: domain.UnitKG, AsOf: asOf}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/ingredients/ing-1/stock", nil)
		rec := httptest.NewRecorder()

		HandleIngredientStock(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp stockLevelResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Quantity != 99.6 || resp.Unit != "KG" {
			t.Fatalf("unexpected response: %+v", resp)
		}
	})

	t.Run("historical stock level", func(t *testing.T) {
		want := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
		svc := &stubStockService{
			levelAt: func(_ context.Context, _ string, at *time.Time) (domain.StockLevel, error) {
				if at == nil || !at.Equal(want) {
					t.Fatalf("expected at=%v, got %v", want, at)
				}
				return domain.StockLevel{IngredientID: "ing-1", Quantity: 100, Unit: domain.UnitKG, AsOf: want}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/ingredients/ing-1/stock?at=2025-02-01T00:00:00Z", nil)
		rec := httptest.NewRecorder()

		HandleIngredientStock(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("malformed timestamp is 400", func(t *testing.T) {
		svc := &stubStockService{
			levelAt: func(_ context.Context, _ string, _ *time.Time) (domain.StockLevel, error) {
				t.Fatal("service should not be called")
				return domain.StockLevel{}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/ingredients/ing-1/stock?at=yesterday", nil)
		rec := httptest.NewRecorder()

		HandleIngredientStock(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("unknown ingredient is 404", func(t *testing.T) {
		svc := &stubStockService{
			levelAt: func(_ context.Context, _ string, _ *time.Time) (domain.StockLevel, error) {
				return domain.StockLevel{}, domain.ErrIngredientNotFound
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/ingredients/ghost/stock", nil)
		rec := httptest.NewRecorder()

		HandleIngredientStock(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("restocks ingredient", func(t *testing.T) {
		svc := &stubStockService{
			restock: func(_ context.Context, in app.RestockInput) (domain.StockMovement, error) {
				if in.IngredientID != "ing-1" || in.Quantity != 25 || in.Unit != domain.UnitKG {
					t.Fatalf("unexpected input: %+v", in)
				}
				return domain.StockMovement{
					ID:           "mv-1",
					IngredientID: in.IngredientID,
					Quantity:     in.Quantity,
					Unit:         in.Unit,
					Kind:         domain.MovementIn,
					CreatedAt:    asOf,
				}, nil
			},
		}

		body := `{"quantity":25,"unit":"KG"}`
		req := httptest.NewRequest(http.MethodPost, "/ingredients/ing-1/movements", strings.NewReader(body))
		rec := httptest.NewRecorder()

		HandleIngredientStock(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp movementResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Kind != "IN" || resp.Quantity != 25 {
			t.Fatalf("unexpected response: %+v", resp)
		}
	})

	t.Run("restock with zero quantity is 400", func(t *testing.T) {
		svc := &stubStockService{
			restock: func(_ context.Context, _ app.RestockInput) (domain.StockMovement, error) {
				return domain.StockMovement{}, domain.ErrInvalidQuantity
			},
		}

		body := `{"quantity":0,"unit":"KG"}`
		req := httptest.NewRequest(http.MethodPost, "/ingredients/ing-1/movements", strings.NewReader(body))
		rec := httptest.NewRecorder()

		HandleIngredientStock(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("lists movements", func(t *testing.T) {
		svc := &stubStockService{
			movements: func(_ context.Context, _ string) ([]domain.StockMovement, error) {
				return []domain.StockMovement{
					{ID: "mv-1", IngredientID: "ing-1", Quantity: 100, Unit: domain.UnitKG, Kind: domain.MovementIn, CreatedAt: asOf},
					{ID: "mv-2", IngredientID: "ing-1", Quantity: -0.4, Unit: domain.UnitKG, Kind: domain.MovementOut, CreatedAt: asOf.Add(time.Hour)},
				}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/ingredients/ing-1/movements", nil)
		rec := httptest.NewRecorder()

		HandleIngredientStock(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var resp []movementResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp) != 2 || resp[1].Kind != "OUT" {
			t.Fatalf("unexpected response: %+v", resp)
		}
	})

	t.Run("unknown subresource is 404", func(t *testing.T) {
		svc := &stubStockService{}
		req := httptest.NewRequest(http.MethodGet, "/ingredients/ing-1/history", nil)
		rec := httptest.NewRecorder()

		HandleIngredientStock(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})
}
