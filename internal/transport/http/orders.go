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

// OrderSubmitter is the minimal interface needed to submit an order.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, in app.SubmitOrderInput) (domain.Order, error)
}

// OrderReader retrieves and mutates committed orders by reference.
type OrderReader interface {
	GetOrder(ctx context.Context, reference string) (domain.Order, error)
	UpdateStatus(ctx context.Context, reference string, status domain.OrderStatus) (domain.Order, error)
}

// HandleCreateOrder returns an HTTP handler for POST /orders.
func HandleCreateOrder(svc OrderSubmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createOrderRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		in := app.SubmitOrderInput{Type: domain.OrderType(req.Type)}
		for _, line := range req.Lines {
			in.Lines = append(in.Lines, app.OrderLineInput{
				DishID:   line.DishID,
				Quantity: line.Quantity,
			})
		}

		order, err := svc.SubmitOrder(r.Context(), in)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toOrderResponse(order))
	}
}

// HandleOrderByReference routes GET /orders/{ref} and POST /orders/{ref}/status.
func HandleOrderByReference(svc OrderReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reference, action, ok := parseOrderPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch {
		case action == "" && r.Method == http.MethodGet:
			order, err := svc.GetOrder(r.Context(), reference)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, toOrderResponse(order))

		case action == "status" && r.Method == http.MethodPost:
			var req updateStatusRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			order, err := svc.UpdateStatus(r.Context(), reference, domain.OrderStatus(req.Status))
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, toOrderResponse(order))

		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func parseOrderPath(path string) (reference, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(parts) == 2 && parts[0] == "orders" && parts[1] != "":
		return parts[1], "", true
	case len(parts) == 3 && parts[0] == "orders" && parts[1] != "":
		return parts[1], parts[2], true
	}
	return "", "", false
}

type createOrderRequest struct {
	Type  string             `json:"type"`
	Lines []orderLineRequest `json:"lines"`
}

type orderLineRequest struct {
	DishID   string `json:"dish_id"`
	Quantity int    `json:"quantity"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type orderResponse struct {
	Reference    string              `json:"reference"`
	Type         string              `json:"type"`
	Status       string              `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
	Lines        []orderLineResponse `json:"lines"`
	TotalExclTax float64             `json:"total_excl_tax"`
	TotalInclTax float64             `json:"total_incl_tax"`
}

type orderLineResponse struct {
	DishID    string  `json:"dish_id"`
	DishName  string  `json:"dish_name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

func toOrderResponse(order domain.Order) orderResponse {
	resp := orderResponse{
		Reference:    order.Reference,
		Type:         string(order.Type),
		Status:       string(order.Status),
		CreatedAt:    order.CreatedAt,
		TotalExclTax: order.TotalExclTax(),
		TotalInclTax: order.TotalInclTax(),
	}
	for _, l := range order.Lines {
		resp.Lines = append(resp.Lines, orderLineResponse{
			DishID:    l.DishID,
			DishName:  l.DishName,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}
	return resp
}
