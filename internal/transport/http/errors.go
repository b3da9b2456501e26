package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Antonio-Andrianina/TD-Ingredients/internal/domain"
)

const (
	codeMethodNotAllowed    = "method_not_allowed"
	codeNotFound            = "not_found"
	codeInvalidRequestBody  = "invalid_request_body"
	codeInvalidOrder        = "invalid_order"
	codeInvalidQuantity     = "invalid_quantity"
	codeInvalidStatus       = "invalid_status"
	codeInvalidOrderType    = "invalid_order_type"
	codeInvalidCategory     = "invalid_category"
	codeInvalidUnit         = "invalid_unit"
	codeInvalidPrice        = "invalid_price"
	codeInvalidID           = "invalid_id"
	codeNameRequired        = "name_required"
	codeEmptyRecipe         = "empty_recipe"
	codeDishNotFound        = "dish_not_found"
	codeIngredientNotFound  = "ingredient_not_found"
	codeOrderNotFound       = "order_not_found"
	codeInsufficientStock   = "insufficient_stock"
	codeOrderDelivered      = "order_delivered"
	codeUnitMismatch        = "unit_mismatch"
	codeAlreadyExists       = "already_exists"
	codePersistenceFailure  = "persistence_failure"
	codeForbidden           = "forbidden"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeDomainError maps the service error taxonomy onto HTTP statuses.
// Unknown errors are reported as opaque internal errors.
func writeDomainError(w http.ResponseWriter, err error) {
	var insufficient *domain.InsufficientStockError
	var immutable *domain.OrderImmutableError
	var persistence *domain.PersistenceError

	switch {
	case errors.Is(err, domain.ErrInvalidOrder):
		writeError(w, http.StatusBadRequest, codeInvalidOrder, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case errors.Is(err, domain.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, codeInvalidStatus, err.Error())
	case errors.Is(err, domain.ErrInvalidOrderType):
		writeError(w, http.StatusBadRequest, codeInvalidOrderType, err.Error())
	case errors.Is(err, domain.ErrInvalidCategory):
		writeError(w, http.StatusBadRequest, codeInvalidCategory, err.Error())
	case errors.Is(err, domain.ErrInvalidUnit):
		writeError(w, http.StatusBadRequest, codeInvalidUnit, err.Error())
	case errors.Is(err, domain.ErrInvalidPrice):
		writeError(w, http.StatusBadRequest, codeInvalidPrice, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrNameRequired):
		writeError(w, http.StatusBadRequest, codeNameRequired, err.Error())
	case errors.Is(err, domain.ErrEmptyRecipe):
		writeError(w, http.StatusBadRequest, codeEmptyRecipe, err.Error())
	case errors.Is(err, domain.ErrDishNotFound):
		writeError(w, http.StatusNotFound, codeDishNotFound, err.Error())
	case errors.Is(err, domain.ErrIngredientNotFound):
		writeError(w, http.StatusNotFound, codeIngredientNotFound, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
	case errors.Is(err, domain.ErrIngredientAlreadyExists), errors.Is(err, domain.ErrDishAlreadyExists):
		writeError(w, http.StatusConflict, codeAlreadyExists, err.Error())
	case errors.As(err, &insufficient):
		writeError(w, http.StatusConflict, codeInsufficientStock, err.Error())
	case errors.As(err, &immutable):
		writeError(w, http.StatusConflict, codeOrderDelivered, err.Error())
	case errors.Is(err, domain.ErrUnitMismatch):
		writeError(w, http.StatusInternalServerError, codeUnitMismatch, err.Error())
	case errors.As(err, &persistence):
		writeError(w, http.StatusServiceUnavailable, codePersistenceFailure, "storage unavailable, retry later")
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
