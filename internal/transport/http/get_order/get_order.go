package getorder

import (
	"context"
	"net/http"
	"strconv"

	"github.com/corray333/backend-labs/pos/internal/service/models/order"
	"github.com/corray333/backend-labs/pos/internal/transport/http/auth"
	"github.com/corray333/backend-labs/pos/internal/transport/http/response"
	"github.com/go-chi/chi/v5"
)

type service interface {
	GetOrder(ctx context.Context, clientID, id int64) (order.Order, error)
}

func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	s, _ := auth.SessionFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(w, http.StatusBadRequest, "Invalid order id")

		return
	}

	o, err := service.GetOrder(r.Context(), s.ClientID, id)
	if err != nil {
		response.ServiceError(w, r, err)

		return
	}

	response.JSON(w, http.StatusOK, o)
}
