package updateorderstatus

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/corray333/backend-labs/pos/internal/service/models/order"
	"github.com/corray333/backend-labs/pos/internal/transport/http/auth"
	"github.com/corray333/backend-labs/pos/internal/transport/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type service interface {
	UpdateStatus(ctx context.Context, model order.UpdateStatusModel) error
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending preparing ready served cancelled"`
}

func (r *updateStatusRequest) Validate() error {
	return validator.New().Struct(r)
}

// UpdateOrderStatus acknowledges the change without returning the order.
func UpdateOrderStatus(w http.ResponseWriter, r *http.Request, service service) {
	s, _ := auth.SessionFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(w, http.StatusBadRequest, "Invalid order id")

		return
	}

	req := updateStatusRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")

		return
	}
	if err := req.Validate(); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid status")

		return
	}

	err = service.UpdateStatus(r.Context(), order.UpdateStatusModel{
		ClientID: s.ClientID,
		OrderID:  id,
		Status:   req.Status,
	})
	if err != nil {
		response.ServiceError(w, r, err)

		return
	}

	response.Message(w, http.StatusOK, "Order status updated")
}
