package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/corray333/backend-labs/pos/internal/service/models/order"
	"github.com/corray333/backend-labs/pos/internal/service/models/product"
	"github.com/corray333/backend-labs/pos/internal/service/models/session"
	"github.com/corray333/backend-labs/pos/internal/service/models/table"
	"github.com/corray333/backend-labs/pos/internal/transport/http/auth"
	createorder "github.com/corray333/backend-labs/pos/internal/transport/http/create_order"
	getorder "github.com/corray333/backend-labs/pos/internal/transport/http/get_order"
	listorders "github.com/corray333/backend-labs/pos/internal/transport/http/list_orders"
	"github.com/corray333/backend-labs/pos/internal/transport/http/products"
	"github.com/corray333/backend-labs/pos/internal/transport/http/response"
	"github.com/corray333/backend-labs/pos/internal/transport/http/tables"
	updateorderstatus "github.com/corray333/backend-labs/pos/internal/transport/http/update_order_status"
	"github.com/corray333/backend-labs/pos/pkg/http/middleware/ratelimit"
	"github.com/corray333/backend-labs/pos/pkg/http/middleware/trace"
	"github.com/corray333/backend-labs/pos/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type orderService interface {
	CreateOrder(ctx context.Context, model order.CreateOrderModel) (order.Order, error)
	UpdateStatus(ctx context.Context, model order.UpdateStatusModel) error
	ListOrders(ctx context.Context, model order.ListOrdersModel) ([]order.Order, error)
	GetOrder(ctx context.Context, clientID, id int64) (order.Order, error)
}

type tableService interface {
	List(ctx context.Context, clientID int64, status string) ([]table.Table, error)
	Get(ctx context.Context, clientID int64, number int) (table.Table, error)
	Create(ctx context.Context, model table.CreateTableModel) (table.Table, error)
	UpdateStatus(ctx context.Context, clientID int64, number int, status string) (table.Table, error)
	Delete(ctx context.Context, clientID int64, number int) error
}

type catalogService interface {
	List(ctx context.Context, clientID int64, category string, available *bool) ([]product.Product, error)
	Create(ctx context.Context, model product.CreateProductModel) (product.Product, error)
	UpdatePrice(ctx context.Context, clientID, id int64, price decimal.Decimal) (product.Product, error)
	Get(ctx context.Context, clientID, id int64) (product.Product, error)
	ToggleAvailable(ctx context.Context, clientID, id int64) (product.Product, error)
}

type authenticator interface {
	Middleware(next http.Handler) http.Handler
}

type HTTPTransport struct {
	server   *http.Server
	router   *chi.Mux
	orders   orderService
	tables   tableService
	catalog  catalogService
	auth     authenticator
	wsHandle http.Handler
}

// NewHTTPTransport creates the HTTP transport. wsHandler serves /ws and may be nil.
func NewHTTPTransport(
	orders orderService,
	tables tableService,
	catalog catalogService,
	auth authenticator,
	wsHandler http.Handler,
) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	return &HTTPTransport{
		server:   server,
		router:   router,
		orders:   orders,
		tables:   tables,
		catalog:  catalog,
		auth:     auth,
		wsHandle: wsHandler,
	}
}

// Handler exposes the router for tests.
func (h *HTTPTransport) Handler() http.Handler {
	return h.router
}

func (h *HTTPTransport) Run() error {
	slog.Info("Starting HTTP server", "address", h.server.Addr)

	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Get("/health", h.health)

	if h.wsHandle != nil {
		h.router.Handle("/ws", h.wsHandle)
	}

	h.router.Route("/api", func(r chi.Router) {
		r.Use(h.auth.Middleware)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.listOrders)
			r.Get("/{id}", h.getOrder)
			r.With(auth.RequireRoles(session.RoleCashier, session.RoleAdmin)).Post("/", h.createOrder)
			r.With(auth.RequireRoles(session.RoleKitchen, session.RoleBar, session.RoleAdmin)).
				Put("/{id}/status", h.updateOrderStatus)
		})

		r.Route("/tables", func(r chi.Router) {
			r.Get("/", h.listTables)
			r.Get("/{number}", h.getTable)
			r.With(auth.RequireRoles(session.RoleAdmin)).Post("/", h.createTable)
			r.With(auth.RequireRoles(session.RoleCashier, session.RoleAdmin)).
				Put("/{number}/status", h.updateTableStatus)
			r.With(auth.RequireRoles(session.RoleAdmin)).Delete("/{number}", h.deleteTable)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Get("/{id}", h.getProduct)
			r.With(auth.RequireRoles(session.RoleAdmin)).Patch("/{id}/toggle", h.toggleProduct)
			r.With(auth.RequireRoles(session.RoleAdmin)).Post("/", h.createProduct)
			r.With(auth.RequireRoles(session.RoleAdmin)).Put("/{id}/price", h.updateProductPrice)
		})
	})

	h.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "Route not found")
	})
}

func (h *HTTPTransport) health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.orders)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.orders)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.orders)
}

func (h *HTTPTransport) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	updateorderstatus.UpdateOrderStatus(w, r, h.orders)
}

func (h *HTTPTransport) listTables(w http.ResponseWriter, r *http.Request) {
	tables.List(w, r, h.tables)
}

func (h *HTTPTransport) getTable(w http.ResponseWriter, r *http.Request) {
	tables.Get(w, r, h.tables)
}

func (h *HTTPTransport) createTable(w http.ResponseWriter, r *http.Request) {
	tables.Create(w, r, h.tables)
}

func (h *HTTPTransport) updateTableStatus(w http.ResponseWriter, r *http.Request) {
	tables.UpdateStatus(w, r, h.tables)
}

func (h *HTTPTransport) deleteTable(w http.ResponseWriter, r *http.Request) {
	tables.Delete(w, r, h.tables)
}

func (h *HTTPTransport) listProducts(w http.ResponseWriter, r *http.Request) {
	products.List(w, r, h.catalog)
}

func (h *HTTPTransport) getProduct(w http.ResponseWriter, r *http.Request) {
	products.Get(w, r, h.catalog)
}

func (h *HTTPTransport) toggleProduct(w http.ResponseWriter, r *http.Request) {
	products.ToggleAvailable(w, r, h.catalog)
}

func (h *HTTPTransport) createProduct(w http.ResponseWriter, r *http.Request) {
	products.Create(w, r, h.catalog)
}

func (h *HTTPTransport) updateProductPrice(w http.ResponseWriter, r *http.Request) {
	products.UpdatePrice(w, r, h.catalog)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(trace.NewTraceMiddleware("pos-svc"))
	router.Use(logger.NewLoggerMiddleware(slog.Default()))

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	rps := viper.GetFloat64("server.http.rate_limit.rps")
	if rps > 0 {
		router.Use(ratelimit.NewRateLimitMiddleware(rps, viper.GetInt("server.http.rate_limit.burst")))
	}

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:              "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
