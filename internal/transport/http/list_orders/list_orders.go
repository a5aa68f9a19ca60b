package listorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/pos/internal/service/models/order"
	"github.com/corray333/backend-labs/pos/internal/transport/http/auth"
	"github.com/corray333/backend-labs/pos/internal/transport/http/response"
	"github.com/gorilla/schema"
)

type service interface {
	ListOrders(ctx context.Context, model order.ListOrdersModel) ([]order.Order, error)
}

type queryOrdersRequest struct {
	Status      string `schema:"status"`
	Category    string `schema:"category"`
	TableNumber int    `schema:"table"`
	Limit       int    `schema:"limit"`
	Offset      int    `schema:"offset"`
}

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}()

func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	s, _ := auth.SessionFromContext(r.Context())

	query := &queryOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		slog.Error("Error decoding request", "error", err)
		response.Error(w, http.StatusBadRequest, err.Error())

		return
	}

	orders, err := service.ListOrders(r.Context(), order.ListOrdersModel{
		ClientID:    s.ClientID,
		Status:      query.Status,
		Category:    query.Category,
		TableNumber: query.TableNumber,
		Limit:       query.Limit,
		Offset:      query.Offset,
	})
	if err != nil {
		response.ServiceError(w, r, err)

		return
	}

	response.JSON(w, http.StatusOK, orders)
}
