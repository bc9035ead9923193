package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/corray333/backend-labs/shop/internal/service/models/cart"
	"github.com/corray333/backend-labs/shop/internal/service/models/order"
	"github.com/corray333/backend-labs/shop/internal/service/models/payment"
	"github.com/corray333/backend-labs/shop/internal/service/models/review"
	"github.com/corray333/backend-labs/shop/internal/service/models/user"
	"github.com/corray333/backend-labs/shop/internal/service/services/authsvc"
	"github.com/corray333/backend-labs/shop/internal/service/services/paymentsvc"
	"github.com/corray333/backend-labs/shop/internal/service/services/productsvc"
	"github.com/corray333/backend-labs/shop/internal/transport/http/docs"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/accounts"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/auth"
	cartv1 "github.com/corray333/backend-labs/shop/internal/transport/http/v1/cart"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/httperr"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/orders"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/payments"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/products"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/reviews"
	"github.com/corray333/backend-labs/shop/pkg/http/middleware/trace"
	"github.com/corray333/backend-labs/shop/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type authService interface {
	SignUp(ctx context.Context, kind user.Kind, in authsvc.SignUpInput) (string, *user.Account, error)
	Login(ctx context.Context, kind user.Kind, email, password string) (string, error)
	Authenticate(ctx context.Context, token string, kind user.Kind) (user.Principal, error)
	GetBuyersOfClient(ctx context.Context, clientID string) ([]user.Buyer, error)
}

type orderService interface {
	PlaceOrder(ctx context.Context, userID string, lines []order.Line) (*order.Order, error)
	GetOrders(ctx context.Context, userID string) ([]order.Order, error)
	GetOrdersByClient(ctx context.Context, clientID string, page, pageSize int) ([]order.ClientOrder, error)
	UpdateStatus(ctx context.Context, orderID, status string) error
	UpdateReturnReason(ctx context.Context, userID, orderID, reason string) error
}

type paymentService interface {
	CreatePayment(ctx context.Context, userID string, in paymentsvc.CreatePaymentInput) (*payment.Payment, error)
	GetPaymentsByUser(ctx context.Context, userID string) ([]payment.Payment, error)
	GetPaymentsByClient(ctx context.Context, clientID string) ([]payment.ClientPayment, error)
	UpdatePaymentStatus(ctx context.Context, paymentID, status string) error
}

type reviewService interface {
	CreateReview(ctx context.Context, userID, productID string, rating int, comment *string) (*review.Review, error)
	GetReviews(ctx context.Context, userID string) ([]review.Review, error)
	UpdateReview(ctx context.Context, userID, reviewID string, patch review.Patch) (*review.Review, error)
	DeleteReview(ctx context.Context, userID, reviewID string) error
}

type cartService interface {
	AddToCart(ctx context.Context, userID, productID string, qty int64) (*cart.Item, error)
	GetCart(ctx context.Context, userID string) ([]cart.Item, error)
}

// Services are the use cases exposed over HTTP.
type Services struct {
	Auth     authService
	Orders   orderService
	Catalog  productsvc.Catalog
	Payments paymentService
	Reviews  reviewService
	Cart     cartService
}

type HTTPTransport struct {
	server   *http.Server
	router   *chi.Mux
	services Services
	gatherer prometheus.Gatherer
}

func NewHTTPTransport(services Services, gatherer prometheus.Gatherer) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	return &HTTPTransport{
		server:   server,
		router:   router,
		services: services,
		gatherer: gatherer,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// Handler returns the router with all registered routes.
func (h *HTTPTransport) Handler() http.Handler {
	return h.router
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httperr.WriteJSON(w, r, http.StatusOK, httperr.Message{Message: "ok"})
	})
	h.router.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	h.router.Get("/swagger/doc.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(docs.OpenAPI)
	})
	h.router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	users := auth.Require(h.services.Auth, user.KindUser)
	clients := auth.Require(h.services.Auth, user.KindClient)

	h.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/users/signup", h.signUp(user.KindUser))
		r.Post("/users/login", h.login(user.KindUser))
		r.With(clients).Get("/users/client", h.listClientBuyers)
		r.Post("/clients/signup", h.signUp(user.KindClient))
		r.Post("/clients/login", h.login(user.KindClient))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.With(clients).Post("/", h.createProduct)
			r.With(clients).Get("/client", h.listClientProducts)
			r.Get("/{id}", h.getProduct)
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(users).Get("/", h.listOrders)
			r.With(users).Post("/", h.placeOrder)
			r.With(clients).Patch("/status", h.updateOrderStatus)
			r.With(clients).Get("/client", h.listClientOrders)
			r.With(users).Patch("/return", h.updateReturnReason)
		})

		r.Route("/payments", func(r chi.Router) {
			r.With(users).Get("/", h.listPayments)
			r.With(users).Post("/", h.createPayment)
			r.With(clients).Get("/client", h.listClientPayments)
			r.With(clients).Patch("/status", h.updatePaymentStatus)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Use(users)
			r.Get("/", h.listReviews)
			r.Post("/", h.createReview)
			r.Patch("/{id}", h.updateReview)
			r.Delete("/{id}", h.deleteReview)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(users)
			r.Get("/", h.getCart)
			r.Post("/", h.addToCart)
		})
	})
}

func (h *HTTPTransport) signUp(kind user.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts.SignUp(w, r, h.services.Auth, kind)
	}
}

func (h *HTTPTransport) login(kind user.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts.Login(w, r, h.services.Auth, kind)
	}
}

func (h *HTTPTransport) listClientBuyers(w http.ResponseWriter, r *http.Request) {
	accounts.ListClientBuyers(w, r, h.services.Auth)
}

func (h *HTTPTransport) listProducts(w http.ResponseWriter, r *http.Request) {
	products.ListProducts(w, r, h.services.Catalog)
}

func (h *HTTPTransport) createProduct(w http.ResponseWriter, r *http.Request) {
	products.CreateProduct(w, r, h.services.Catalog)
}

func (h *HTTPTransport) listClientProducts(w http.ResponseWriter, r *http.Request) {
	products.ListClientProducts(w, r, h.services.Catalog)
}

func (h *HTTPTransport) getProduct(w http.ResponseWriter, r *http.Request) {
	products.GetProduct(w, r, h.services.Catalog)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	orders.ListOrders(w, r, h.services.Orders)
}

func (h *HTTPTransport) placeOrder(w http.ResponseWriter, r *http.Request) {
	orders.PlaceOrder(w, r, h.services.Orders, h.services.Catalog)
}

func (h *HTTPTransport) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orders.UpdateStatus(w, r, h.services.Orders)
}

func (h *HTTPTransport) listClientOrders(w http.ResponseWriter, r *http.Request) {
	orders.ListClientOrders(w, r, h.services.Orders)
}

func (h *HTTPTransport) updateReturnReason(w http.ResponseWriter, r *http.Request) {
	orders.UpdateReturnReason(w, r, h.services.Orders)
}

func (h *HTTPTransport) listPayments(w http.ResponseWriter, r *http.Request) {
	payments.ListPayments(w, r, h.services.Payments)
}

func (h *HTTPTransport) createPayment(w http.ResponseWriter, r *http.Request) {
	payments.CreatePayment(w, r, h.services.Payments)
}

func (h *HTTPTransport) listClientPayments(w http.ResponseWriter, r *http.Request) {
	payments.ListClientPayments(w, r, h.services.Payments)
}

func (h *HTTPTransport) updatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	payments.UpdateStatus(w, r, h.services.Payments)
}

func (h *HTTPTransport) listReviews(w http.ResponseWriter, r *http.Request) {
	reviews.ListReviews(w, r, h.services.Reviews)
}

func (h *HTTPTransport) createReview(w http.ResponseWriter, r *http.Request) {
	reviews.CreateReview(w, r, h.services.Reviews)
}

func (h *HTTPTransport) updateReview(w http.ResponseWriter, r *http.Request) {
	reviews.UpdateReview(w, r, h.services.Reviews)
}

func (h *HTTPTransport) deleteReview(w http.ResponseWriter, r *http.Request) {
	reviews.DeleteReview(w, r, h.services.Reviews)
}

func (h *HTTPTransport) getCart(w http.ResponseWriter, r *http.Request) {
	cartv1.GetCart(w, r, h.services.Cart)
}

func (h *HTTPTransport) addToCart(w http.ResponseWriter, r *http.Request) {
	cartv1.AddToCart(w, r, h.services.Cart)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(trace.NewTraceMiddleware)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))

	if timeout := viper.GetDuration("server.http.request_timeout"); timeout > 0 {
		router.Use(middleware.Timeout(timeout))
	}

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

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:              "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
