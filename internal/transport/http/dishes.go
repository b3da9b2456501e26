package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Antonio-Andrianina/TD-Ingredients/internal/app"
	"github.com/Antonio-Andrianina/TD-Ingredients/internal/domain"
)

// DishAdmin administers the dish catalog.
type DishAdmin interface {
	CreateDish(ctx context.Context, in app.CreateDishInput) (domain.Dish, error)
	ListDishes(ctx context.Context) ([]domain.Dish, error)
}

// HandleDishes routes POST and GET /dishes.
func HandleDishes(svc DishAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req createDishRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			in := app.CreateDishInput{
				Name:     req.Name,
				Category: domain.DishCategory(req.Category),
				Price:    req.Price,
			}
			for _, line := range req.Recipe {
				in.Recipe = append(in.Recipe, app.RecipeLineInput{
					IngredientID: line.IngredientID,
					Quantity:     line.Quantity,
					Unit:         domain.Unit(line.Unit),
				})
			}

			dish, err := svc.CreateDish(r.Context(), in)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, toDishResponse(dish))

		case http.MethodGet:
			dishes, err := svc.ListDishes(r.Context())
			if err != nil {
				writeDomainError(w, err)
				return
			}
			out := make([]dishResponse, 0, len(dishes))
			for _, dish := range dishes {
				out = append(out, toDishResponse(dish))
			}
			writeJSON(w, http.StatusOK, out)

		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

type createDishRequest struct {
	Name     string              `json:"name"`
	Category string              `json:"category"`
	Price    float64             `json:"price"`
	Recipe   []recipeLineRequest `json:"recipe"`
}

type recipeLineRequest struct {
	IngredientID string  `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
}

type dishResponse struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	Category string               `json:"category"`
	Price    float64              `json:"price"`
	Recipe   []recipeLineResponse `json:"recipe"`
}

type recipeLineResponse struct {
	IngredientID string  `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
}

func toDishResponse(dish domain.Dish) dishResponse {
	resp := dishResponse{
		ID:       dish.ID,
		Name:     dish.Name,
		Category: string(dish.Category),
		Price:    dish.Price,
	}
	for _, line := range dish.Recipe {
		resp.Recipe = append(resp.Recipe, recipeLineResponse{
			IngredientID: line.IngredientID,
			Quantity:     line.Quantity,
			Unit:         string(line.Unit),
		})
	}
	return resp
}
