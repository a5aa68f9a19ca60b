package products

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/corray333/backend-labs/pos/internal/service/models/product"
	"github.com/corray333/backend-labs/pos/internal/transport/http/auth"
	"github.com/corray333/backend-labs/pos/internal/transport/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/shopspring/decimal"
)

type service interface {
	List(ctx context.Context, clientID int64, category string, available *bool) ([]product.Product, error)
	Create(ctx context.Context, model product.CreateProductModel) (product.Product, error)
	UpdatePrice(ctx context.Context, clientID, id int64, price decimal.Decimal) (product.Product, error)
	Get(ctx context.Context, clientID, id int64) (product.Product, error)
	ToggleAvailable(ctx context.Context, clientID, id int64) (product.Product, error)
}

type listProductsRequest struct {
	Category  string `schema:"category"`
	Available *bool  `schema:"available"`
}

type createProductRequest struct {
	Name      string          `json:"name"      validate:"required,max=200"`
	Price     decimal.Decimal `json:"price"`
	Category  string          `json:"category"  validate:"required,oneof=kitchen bar"`
	Available *bool           `json:"available"`
}

type updatePriceRequest struct {
	Price decimal.Decimal `json:"price"`
}

var (
	validate = validator.New()
	decoder  = func() *schema.Decoder {
		d := schema.NewDecoder()
		d.IgnoreUnknownKeys(true)

		return d
	}()
)

func List(w http.ResponseWriter, r *http.Request, service service) {
	s, _ := auth.SessionFromContext(r.Context())

	query := &listProductsRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())

		return
	}

	products, err := service.List(r.Context(), s.ClientID, query.Category, query.Available)
	if err != nil {
		response.ServiceError(w, r, err)

		return
	}

	response.JSON(w, http.StatusOK, products)
}

func Create(w http.ResponseWriter, r *http.Request, service service) {
	s, _ := auth.SessionFromContext(r.Context())

	req := createProductRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")

		return
	}
	if err := validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())

		return
	}

	created, err := service.Create(r.Context(), product.CreateProductModel{
		ClientID:  s.ClientID,
		Name:      req.Name,
		Price:     req.Price,
		Category:  req.Category,
		Available: req.Available,
	})
	if err != nil {
		response.ServiceError(w, r, err)

		return
	}

	response.JSON(w, http.StatusCreated, created)
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(w, http.StatusBadRequest, "Invalid product id")

		return 0, false
	}

	return id, true
}

func Get(w http.ResponseWriter, r *http.Request, service service) {
	s, _ := auth.SessionFromContext(r.Context())

	id, ok := productID(w, r)
	if !ok {
		return
	}

	p, err := service.Get(r.Context(), s.ClientID, id)
	if err != nil {
		response.ServiceError(w, r, err)

		return
	}

	response.JSON(w, http.StatusOK, p)
}

// ToggleAvailable flips the availability flag and returns the product.
func ToggleAvailable(w http.ResponseWriter, r *http.Request, service service) {
	s, _ := auth.SessionFromContext(r.Context())

	id, ok := productID(w, r)
	if !ok {
		return
	}

	p, err := service.ToggleAvailable(r.Context(), s.ClientID, id)
	if err != nil {
		response.ServiceError(w, r, err)

		return
	}

	response.JSON(w, http.StatusOK, p)
}

func UpdatePrice(w http.ResponseWriter, r *http.Request, service service) {
	s, _ := auth.SessionFromContext(r.Context())

	id, ok := productID(w, r)
	if !ok {
		return
	}

	req := updatePriceRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")

		return
	}

	updated, err := service.UpdatePrice(r.Context(), s.ClientID, id, req.Price)
	if err != nil {
		response.ServiceError(w, r, err)

		return
	}

	response.JSON(w, http.StatusOK, updated)
}
