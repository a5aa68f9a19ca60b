package createorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/pos/internal/service/models/order"
	"github.com/corray333/backend-labs/pos/internal/transport/http/auth"
	"github.com/corray333/backend-labs/pos/internal/transport/http/response"
	"github.com/go-playground/validator/v10"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, model order.CreateOrderModel) (order.Order, error)
}

// itemInCreateOrderRequest represents an item in a create order request.
type itemInCreateOrderRequest struct {
	ProductID int64 `json:"product_id" validate:"gt=0"`
	Quantity  int   `json:"quantity"   validate:"gte=1"`
}

// createOrderRequest represents a create order request.
type createOrderRequest struct {
	TableNumber int                        `json:"table_number" validate:"gte=1,lte=100"`
	Comment     string                     `json:"comment"      validate:"max=500"`
	Items       []itemInCreateOrderRequest `json:"items"        validate:"required,min=1,dive"`
}

// Validate validates the create order request.
func (r *createOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

func (r *createOrderRequest) toModel(clientID, userID int64) order.CreateOrderModel {
	items := make([]order.CreateItemModel, len(r.Items))
	for i, item := range r.Items {
		items[i] = order.CreateItemModel{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	return order.CreateOrderModel{
		ClientID:    clientID,
		TableNumber: r.TableNumber,
		Comment:     r.Comment,
		CreatedBy:   userID,
		Items:       items,
	}
}

// CreateOrder handles the create order request.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	s, _ := auth.SessionFromContext(r.Context())

	req := createOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Error decoding request body for create order", "error", err)
		response.Error(w, http.StatusBadRequest, "Invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		slog.Error("Error validating request body for create order", "error", err)
		response.Error(w, http.StatusBadRequest, err.Error())

		return
	}

	created, err := service.CreateOrder(r.Context(), req.toModel(s.ClientID, s.UserID))
	if err != nil {
		response.ServiceError(w, r, err)

		return
	}

	response.JSON(w, http.StatusCreated, created)
}
