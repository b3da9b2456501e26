package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/Antonio-Andrianina/TD-Ingredients/internal/app"
	"github.com/Antonio-Andrianina/TD-Ingredients/internal/domain"
)

// StockReader exposes ledger reads and restocking.
type StockReader interface {
	LevelAt(ctx context.Context, ingredientID string, at *time.Time) (domain.StockLevel, error)
	Restock(ctx context.Context, in app.RestockInput) (domain.StockMovement, error)
	Movements(ctx context.Context, ingredientID string) ([]domain.StockMovement, error)
}

// IngredientAdmin administers the ingredient catalog.
type IngredientAdmin interface {
	CreateIngredient(ctx context.Context, in app.CreateIngredientInput) (domain.Ingredient, error)
	ListIngredients(ctx context.Context) ([]domain.Ingredient, error)
}

// HandleIngredients routes POST and GET /ingredients.
func HandleIngredients(svc IngredientAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req createIngredientRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			ing, err := svc.CreateIngredient(r.Context(), app.CreateIngredientInput{
				Name:     req.Name,
				Category: domain.IngredientCategory(req.Category),
				Price:    req.Price,
				Unit:     domain.Unit(req.Unit),
			})
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, toIngredientResponse(ing))

		case http.MethodGet:
			ingredients, err := svc.ListIngredients(r.Context())
			if err != nil {
				writeDomainError(w, err)
				return
			}
			out := make([]ingredientResponse, 0, len(ingredients))
			for _, ing := range ingredients {
				out = append(out, toIngredientResponse(ing))
			}
			writeJSON(w, http.StatusOK, out)

		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleIngredientStock routes the per-ingredient subresources:
// GET /ingredients/{id}/stock, POST and GET /ingredients/{id}/movements.
func HandleIngredientStock(svc StockReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ingredientID, sub, ok := parseIngredientPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch {
		case sub == "stock" && r.Method == http.MethodGet:
			var at *time.Time
			if raw := r.URL.Query().Get("at"); raw != "" {
				parsed, err := time.Parse(time.RFC3339, raw)
				if err != nil {
					writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid 'at' timestamp, expected RFC 3339")
					return
				}
				at = &parsed
			}

			level, err := svc.LevelAt(r.Context(), ingredientID, at)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, stockLevelResponse{
				IngredientID: level.IngredientID,
				Quantity:     level.Quantity,
				Unit:         string(level.Unit),
				AsOf:         level.AsOf,
			})

		case sub == "movements" && r.Method == http.MethodPost:
			var req restockRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			movement, err := svc.Restock(r.Context(), app.RestockInput{
				IngredientID: ingredientID,
				Quantity:     req.Quantity,
				Unit:         domain.Unit(req.Unit),
				At:           req.At,
			})
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, toMovementResponse(movement))

		case sub == "movements" && r.Method == http.MethodGet:
			movements, err := svc.Movements(r.Context(), ingredientID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			out := make([]movementResponse, 0, len(movements))
			for _, m := range movements {
				out = append(out, toMovementResponse(m))
			}
			writeJSON(w, http.StatusOK, out)

		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func parseIngredientPath(path string) (id, sub string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 || parts[0] != "ingredients" || parts[1] == "" {
		return "", "", false
	}
	if parts[2] != "stock" && parts[2] != "movements" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

type createIngredientRequest struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Unit     string  `json:"unit"`
}

type ingredientResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Unit     string  `json:"unit"`
}

func toIngredientResponse(ing domain.Ingredient) ingredientResponse {
	return ingredientResponse{
		ID:       ing.ID,
		Name:     ing.Name,
		Category: string(ing.Category),
		Price:    ing.Price,
		Unit:     string(ing.Unit),
	}
}

type restockRequest struct {
	Quantity float64    `json:"quantity"`
	Unit     string     `json:"unit"`
	At       *time.Time `json:"at,omitempty"`
}

type stockLevelResponse struct {
	IngredientID string    `json:"ingredient_id"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit"`
	AsOf         time.Time `json:"as_of"`
}

type movementResponse struct {
	ID           string    `json:"id"`
	IngredientID string    `json:"ingredient_id"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit"`
	Kind         string    `json:"kind"`
	CreatedAt    time.Time `json:"created_at"`
}

func toMovementResponse(m domain.StockMovement) movementResponse {
	return movementResponse{
		ID:           m.ID,
		IngredientID: m.IngredientID,
		Quantity:     m.Quantity,
		Unit:         string(m.Unit),
		Kind:         string(m.Kind),
		CreatedAt:    m.CreatedAt,
	}
}
