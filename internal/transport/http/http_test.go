package httptransport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/corray333/backend-labs/pos/internal/service/models/order"
	"github.com/corray333/backend-labs/pos/internal/service/models/orderitem"
	"github.com/corray333/backend-labs/pos/internal/service/models/poserr"
	"github.com/corray333/backend-labs/pos/internal/service/models/product"
	"github.com/corray333/backend-labs/pos/internal/service/models/session"
	"github.com/corray333/backend-labs/pos/internal/service/models/table"
	"github.com/corray333/backend-labs/pos/internal/transport/http/auth"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockOrders struct{ mock.Mock }

func (m *mockOrders) CreateOrder(ctx context.Context, model order.CreateOrderModel) (order.Order, error) {
	args := m.Called(ctx, model)
	return args.Get(0).(order.Order), args.Error(1)
}

func (m *mockOrders) UpdateStatus(ctx context.Context, model order.UpdateStatusModel) error {
	return m.Called(ctx, model).Error(0)
}

func (m *mockOrders) ListOrders(ctx context.Context, model order.ListOrdersModel) ([]order.Order, error) {
	args := m.Called(ctx, model)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *mockOrders) GetOrder(ctx context.Context, clientID, id int64) (order.Order, error) {
	args := m.Called(ctx, clientID, id)
	return args.Get(0).(order.Order), args.Error(1)
}

type mockTables struct{ mock.Mock }

func (m *mockTables) List(ctx context.Context, clientID int64, status string) ([]table.Table, error) {
	args := m.Called(ctx, clientID, status)
	return args.Get(0).([]table.Table), args.Error(1)
}

func (m *mockTables) Get(ctx context.Context, clientID int64, number int) (table.Table, error) {
	args := m.Called(ctx, clientID, number)
	return args.Get(0).(table.Table), args.Error(1)
}

func (m *mockTables) Create(ctx context.Context, model table.CreateTableModel) (table.Table, error) {
	args := m.Called(ctx, model)
	return args.Get(0).(table.Table), args.Error(1)
}

func (m *mockTables) UpdateStatus(ctx context.Context, clientID int64, number int, status string) (table.Table, error) {
	args := m.Called(ctx, clientID, number, status)
	return args.Get(0).(table.Table), args.Error(1)
}

func (m *mockTables) Delete(ctx context.Context, clientID int64, number int) error {
	return m.Called(ctx, clientID, number).Error(0)
}

type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) List(ctx context.Context, clientID int64, category string, available *bool) ([]product.Product, error) {
	args := m.Called(ctx, clientID, category, available)
	return args.Get(0).([]product.Product), args.Error(1)
}

func (m *mockCatalog) Create(ctx context.Context, model product.CreateProductModel) (product.Product, error) {
	args := m.Called(ctx, model)
	return args.Get(0).(product.Product), args.Error(1)
}

func (m *mockCatalog) UpdatePrice(ctx context.Context, clientID, id int64, price decimal.Decimal) (product.Product, error) {
	args := m.Called(ctx, clientID, id, price)
	return args.Get(0).(product.Product), args.Error(1)
}

func (m *mockCatalog) Get(ctx context.Context, clientID, id int64) (product.Product, error) {
	args := m.Called(ctx, clientID, id)
	return args.Get(0).(product.Product), args.Error(1)
}

func (m *mockCatalog) ToggleAvailable(ctx context.Context, clientID, id int64) (product.Product, error) {
	args := m.Called(ctx, clientID, id)
	return args.Get(0).(product.Product), args.Error(1)
}

type env struct {
	orders   *mockOrders
	tables   *mockTables
	catalog  *mockCatalog
	verifier *auth.Verifier
	handler  http.Handler
}

func newEnv(t *testing.T) *env {
	t.Helper()

	e := &env{
		orders:   &mockOrders{},
		tables:   &mockTables{},
		catalog:  &mockCatalog{},
		verifier: auth.NewVerifier("secret"),
	}

	transport := NewHTTPTransport(e.orders, e.tables, e.catalog, e.verifier, nil)
	transport.RegisterRoutes()
	e.handler = transport.Handler()

	return e
}

func (e *env) do(t *testing.T, role session.Role, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		token, err := e.verifier.Sign(session.Session{UserID: 9, ClientID: 1, Role: role}, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	return rec
}

func TestHealthAndNotFound(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, "", http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"OK"`)

	rec = e.do(t, "", http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Route not found"}`, rec.Body.String())
}

func TestCreateOrder(t *testing.T) {
	e := newEnv(t)

	created := order.Order{
		ID:          77,
		ClientID:    1,
		TableNumber: 5,
		CreatedBy:   9,
		TotalPrice:  decimal.NewFromInt(300),
		Status:      order.StatusPending,
		Items: []orderitem.OrderItem{
			{ID: 1, OrderID: 77, ProductID: 3, ProductName: "Pizza", Quantity: 2, Price: decimal.NewFromInt(150), Category: product.CategoryKitchen},
		},
	}
	e.orders.On("CreateOrder", mock.Anything, order.CreateOrderModel{
		ClientID:    1,
		TableNumber: 5,
		Comment:     "no onions",
		CreatedBy:   9,
		Items:       []order.CreateItemModel{{ProductID: 3, Quantity: 2}},
	}).Return(created, nil).Once()

	rec := e.do(t, session.RoleCashier, http.MethodPost, "/api/orders",
		`{"table_number":5,"comment":"no onions","items":[{"product_id":3,"quantity":2}]}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"total_price":"300.00"`)
	assert.Contains(t, rec.Body.String(), `"product_name":"Pizza"`)
	assert.Contains(t, rec.Body.String(), `"price":"150.00"`)
	e.orders.AssertExpectations(t)
}

func TestCreateOrder_Rejections(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name string
		role session.Role
		body string
		want int
	}{
		{"no token", "", `{"table_number":5,"items":[{"product_id":3,"quantity":1}]}`, http.StatusUnauthorized},
		{"kitchen cannot create", session.RoleKitchen, `{"table_number":5,"items":[{"product_id":3,"quantity":1}]}`, http.StatusForbidden},
		{"empty items", session.RoleCashier, `{"table_number":5,"items":[]}`, http.StatusBadRequest},
		{"zero quantity", session.RoleCashier, `{"table_number":5,"items":[{"product_id":3,"quantity":0}]}`, http.StatusBadRequest},
		{"table out of range", session.RoleCashier, `{"table_number":101,"items":[{"product_id":3,"quantity":1}]}`, http.StatusBadRequest},
		{"malformed body", session.RoleAdmin, `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, tt.role, http.MethodPost, "/api/orders", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	e.orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	e := newEnv(t)
	e.orders.On("CreateOrder", mock.Anything, mock.Anything).
		Return(order.Order{}, poserr.ErrProductNotFound).Once()

	rec := e.do(t, session.RoleCashier, http.MethodPost, "/api/orders",
		`{"table_number":5,"items":[{"product_id":999,"quantity":1}]}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"product not found"}`, rec.Body.String())
}

func TestUpdateOrderStatus(t *testing.T) {
	e := newEnv(t)
	e.orders.On("UpdateStatus", mock.Anything, order.UpdateStatusModel{ClientID: 1, OrderID: 77, Status: "ready"}).
		Return(nil).Once()
	e.orders.On("UpdateStatus", mock.Anything, order.UpdateStatusModel{ClientID: 1, OrderID: 78, Status: "ready"}).
		Return(poserr.ErrOrderNotFound).Once()
	e.orders.On("UpdateStatus", mock.Anything, order.UpdateStatusModel{ClientID: 1, OrderID: 79, Status: "pending"}).
		Return(poserr.ErrInvalidTransition).Once()

	rec := e.do(t, session.RoleKitchen, http.MethodPut, "/api/orders/77/status", `{"status":"ready"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Order status updated"}`, rec.Body.String())

	rec = e.do(t, session.RoleBar, http.MethodPut, "/api/orders/78/status", `{"status":"ready"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, session.RoleAdmin, http.MethodPut, "/api/orders/79/status", `{"status":"pending"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(t, session.RoleKitchen, http.MethodPut, "/api/orders/77/status", `{"status":"eaten"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, session.RoleCashier, http.MethodPut, "/api/orders/77/status", `{"status":"ready"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	e.orders.AssertExpectations(t)
}

func TestListAndGetOrders(t *testing.T) {
	e := newEnv(t)
	e.orders.On("ListOrders", mock.Anything, order.ListOrdersModel{ClientID: 1, Status: "ready", Category: "bar"}).
		Return([]order.Order{}, nil).Once()
	e.orders.On("ListOrders", mock.Anything, order.ListOrdersModel{ClientID: 1, TableNumber: 5, Limit: 20, Offset: 40}).
		Return([]order.Order{}, nil).Once()
	e.orders.On("GetOrder", mock.Anything, int64(1), int64(5)).Return(order.Order{ID: 5}, nil).Once()
	e.orders.On("GetOrder", mock.Anything, int64(1), int64(6)).Return(order.Order{}, poserr.ErrOrderNotFound).Once()

	rec := e.do(t, session.RoleBar, http.MethodGet, "/api/orders?status=ready&category=bar", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, rec.Body.String())

	rec = e.do(t, session.RoleBar, http.MethodGet, "/api/orders?table=5&limit=20&offset=40", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, session.RoleBar, http.MethodGet, "/api/orders?limit=ten", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, session.RoleBar, http.MethodGet, "/api/orders/5", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, session.RoleBar, http.MethodGet, "/api/orders/6", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, session.RoleBar, http.MethodGet, "/api/orders/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	e.orders.AssertExpectations(t)
}

func TestTables(t *testing.T) {
	e := newEnv(t)
	e.tables.On("Create", mock.Anything, table.CreateTableModel{ClientID: 1, Number: 5}).
		Return(table.Table{ID: 1, ClientID: 1, Number: 5, Capacity: 4, Status: table.StatusAvailable}, nil).Once()
	e.tables.On("Create", mock.Anything, table.CreateTableModel{ClientID: 1, Number: 6}).
		Return(table.Table{}, poserr.ErrTableExists).Once()
	e.tables.On("UpdateStatus", mock.Anything, int64(1), 5, "reserved").
		Return(table.Table{Number: 5, Status: table.StatusReserved}, nil).Once()
	e.tables.On("Delete", mock.Anything, int64(1), 5).Return(nil).Once()

	rec := e.do(t, session.RoleAdmin, http.MethodPost, "/api/tables", `{"number":5}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, session.RoleAdmin, http.MethodPost, "/api/tables", `{"number":6}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(t, session.RoleCashier, http.MethodPost, "/api/tables", `{"number":7}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, session.RoleCashier, http.MethodPut, "/api/tables/5/status", `{"status":"reserved"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, session.RoleCashier, http.MethodPut, "/api/tables/0/status", `{"status":"reserved"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, session.RoleAdmin, http.MethodDelete, "/api/tables/5", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	e.tables.AssertExpectations(t)
}

func TestProducts(t *testing.T) {
	e := newEnv(t)
	available := true
	e.catalog.On("List", mock.Anything, int64(1), "bar", &available).Return([]product.Product{}, nil).Once()
	e.catalog.On("UpdatePrice", mock.Anything, int64(1), int64(3), decimal.RequireFromString("9.90")).
		Return(product.Product{ID: 3, Price: decimal.RequireFromString("9.90")}, nil).Once()

	rec := e.do(t, session.RoleKitchen, http.MethodGet, "/api/products?category=bar&available=true", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, session.RoleAdmin, http.MethodPut, "/api/products/3/price", `{"price":"9.90"}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(t, session.RoleCashier, http.MethodPost, "/api/products", `{"name":"Tea","price":"2","category":"bar"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	e.catalog.AssertExpectations(t)
}

func TestProductGetAndToggle(t *testing.T) {
	e := newEnv(t)
	e.catalog.On("Get", mock.Anything, int64(1), int64(3)).
		Return(product.Product{ID: 3, Name: "Tea", Price: decimal.RequireFromString("2"), Available: true}, nil).Once()
	e.catalog.On("Get", mock.Anything, int64(1), int64(4)).
		Return(product.Product{}, poserr.ErrProductNotFound).Once()
	e.catalog.On("ToggleAvailable", mock.Anything, int64(1), int64(3)).
		Return(product.Product{ID: 3, Name: "Tea", Price: decimal.RequireFromString("2")}, nil).Once()

	rec := e.do(t, session.RoleCashier, http.MethodGet, "/api/products/3", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"price":"2.00"`)
	assert.Contains(t, rec.Body.String(), `"available":true`)

	rec = e.do(t, session.RoleCashier, http.MethodGet, "/api/products/4", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, session.RoleCashier, http.MethodPatch, "/api/products/3/toggle", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, session.RoleAdmin, http.MethodPatch, "/api/products/3/toggle", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"available":false`)

	rec = e.do(t, session.RoleAdmin, http.MethodPatch, "/api/products/x/toggle", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	e.catalog.AssertExpectations(t)
}
