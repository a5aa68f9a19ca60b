package tables

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/corray333/backend-labs/pos/internal/service/models/table"
	"github.com/corray333/backend-labs/pos/internal/transport/http/auth"
	"github.com/corray333/backend-labs/pos/internal/transport/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

type service interface {
	List(ctx context.Context, clientID int64, status string) ([]table.Table, error)
	Get(ctx context.Context, clientID int64, number int) (table.Table, error)
	Create(ctx context.Context, model table.CreateTableModel) (table.Table, error)
	UpdateStatus(ctx context.Context, clientID int64, number int, status string) (table.Table, error)
	Delete(ctx context.Context, clientID int64, number int) error
}

type listTablesRequest struct {
	Status string `schema:"status"`
}

type createTableRequest struct {
	Number   int    `json:"number"   validate:"gte=1,lte=100"`
	Capacity int    `json:"capacity" validate:"omitempty,gte=1,lte=50"`
	Status   string `json:"status"   validate:"omitempty,oneof=available occupied reserved"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available occupied reserved"`
}

var (
	validate = validator.New()
	decoder  = func() *schema.Decoder {
		d := schema.NewDecoder()
		d.IgnoreUnknownKeys(true)

		return d
	}()
)

func tableNumber(w http.ResponseWriter, r *http.Request) (int, bool) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number < 1 || number > 100 {
		response.Error(w, http.StatusBadRequest, "Table number must be between 1 and 100")

		return 0, false
	}

	return number, true
}

func List(w http.ResponseWriter, r *http.Request, service service) {
	s, _ := auth.SessionFromContext(r.Context())

	query := &listTablesRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())

		return
	}

	tables, err := service.List(r.Context(), s.ClientID, query.Status)
	if err != nil {
		response.ServiceError(w, r, err)

		return
	}

	response.JSON(w, http.StatusOK, tables)
}

func Get(w http.ResponseWriter, r *http.Request, service service) {
	s, _ := auth.SessionFromContext(r.Context())

	number, ok := tableNumber(w, r)
	if !ok {
		return
	}

	t, err := service.Get(r.Context(), s.ClientID, number)
	if err != nil {
		response.ServiceError(w, r, err)

		return
	}

	response.JSON(w, http.StatusOK, t)
}

func Create(w http.ResponseWriter, r *http.Request, service service) {
	s, _ := auth.SessionFromContext(r.Context())

	req := createTableRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")

		return
	}
	if err := validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())

		return
	}

	created, err := service.Create(r.Context(), table.CreateTableModel{
		ClientID: s.ClientID,
		Number:   req.Number,
		Capacity: req.Capacity,
		Status:   req.Status,
	})
	if err != nil {
		response.ServiceError(w, r, err)

		return
	}

	response.JSON(w, http.StatusCreated, created)
}

func UpdateStatus(w http.ResponseWriter, r *http.Request, service service) {
	s, _ := auth.SessionFromContext(r.Context())

	number, ok := tableNumber(w, r)
	if !ok {
		return
	}

	req := updateStatusRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")

		return
	}
	if err := validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid status")

		return
	}

	updated, err := service.UpdateStatus(r.Context(), s.ClientID, number, req.Status)
	if err != nil {
		response.ServiceError(w, r, err)

		return
	}

	response.JSON(w, http.StatusOK, updated)
}

func Delete(w http.ResponseWriter, r *http.Request, service service) {
	s, _ := auth.SessionFromContext(r.Context())

	number, ok := tableNumber(w, r)
	if !ok {
		return
	}

	if err := service.Delete(r.Context(), s.ClientID, number); err != nil {
		response.ServiceError(w, r, err)

		return
	}

	response.Message(w, http.StatusOK, "Table deleted")
}
