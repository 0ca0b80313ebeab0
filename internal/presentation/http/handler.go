package httppresentation

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/tiendago/storefront/internal/application/checkout"
	domorder "github.com/tiendago/storefront/internal/domain/order"
	dompayment "github.com/tiendago/storefront/internal/domain/payment"
	domproduct "github.com/tiendago/storefront/internal/domain/product"
	"github.com/tiendago/storefront/internal/infrastructure/redisx"
	"github.com/tiendago/storefront/internal/observability"
	"github.com/tiendago/storefront/internal/observability/logctx"
)

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
)

type Handler struct {
	createOrder    *checkout.CreateOrderUseCase
	processPayment *checkout.ProcessPaymentUseCase
	queries        *checkout.Queries
	statusCache    *redisx.StatusCache
	log            observability.Logger
	tel            observability.Observability
}

// NewHandler wires the checkout use cases behind the HTTP edge. statusCache
// may be nil; the read endpoints then always hit the repository.
func NewHandler(
	createOrder *checkout.CreateOrderUseCase,
	processPayment *checkout.ProcessPaymentUseCase,
	queries *checkout.Queries,
	statusCache *redisx.StatusCache,
	tel observability.Observability,
) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Handler{
		createOrder:    createOrder,
		processPayment: processPayment,
		queries:        queries,
		statusCache:    statusCache,
		log:            tel.Logger().With(observability.F("component", componentHTTPHandler)),
		tel:            tel,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID, chimiddleware.RealIP)
	r.Use(chimiddleware.Timeout(15 * time.Second))
	r.Use(h.observabilityMiddleware())

	r.Post("/orders", h.handleCreateOrder)
	r.Post("/payments", h.handleProcessPayment)
	r.Get("/orders/{id}", h.handleGetOrder)
	r.Get("/orders/{id}/status", h.handleGetOrderStatus)
	r.Get("/products", h.handleListProducts)
	r.Get("/health", h.handleHealth)

	return r
}

type createOrderRequest struct {
	ProductID      string `json:"product_id"`
	Quantity       int    `json:"quantity"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Address        string `json:"address"`
	City           string `json:"city"`
	PostalCode     string `json:"postal_code"`
	CustomerEmail  string `json:"customer_email"`
	IdempotencyKey string `json:"idempotency_key"`
}

type orderResponse struct {
	OrderID              string `json:"order_id"`
	ProductID            string `json:"product_id"`
	Quantity             int    `json:"quantity"`
	TotalInCents         int64  `json:"total_in_cents"`
	Currency             string `json:"currency"`
	Status               string `json:"status"`
	GatewayTransactionID string `json:"gateway_transaction_id,omitempty"`
	GatewayReference     string `json:"gateway_reference,omitempty"`
	ErrorMessage         string `json:"error_message,omitempty"`
}

func toOrderResponse(o *domorder.Order) orderResponse {
	return orderResponse{
		OrderID:              o.ID,
		ProductID:            o.ProductID,
		Quantity:             o.Quantity,
		TotalInCents:         o.Total.AmountInCents(),
		Currency:             o.Total.Currency(),
		Status:               string(o.Status),
		GatewayTransactionID: o.GatewayTransactionID,
		GatewayReference:     o.GatewayReference,
		ErrorMessage:         o.ErrorMessage,
	}
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, err)
		return
	}

	result, err := h.createOrder.Execute(r.Context(), checkout.CreateOrderInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Shipping: domorder.ShippingInfo{
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			Address:    req.Address,
			City:       req.City,
			PostalCode: req.PostalCode,
		},
		CustomerEmail:  req.CustomerEmail,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		renderDomainError(w, r, err)
		return
	}

	h.cacheStatus(r, result.Order)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toOrderResponse(result.Order))
}

type processPaymentRequest struct {
	OrderID      string `json:"order_id"`
	MethodType   string `json:"method_type"`
	Token        string `json:"token,omitempty"`
	Installments int    `json:"installments,omitempty"`
}

func (h *Handler) handleProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req processPaymentRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, err)
		return
	}

	result, err := h.processPayment.Execute(r.Context(), checkout.ProcessPaymentInput{
		OrderID: req.OrderID,
		Method: dompayment.Method{
			Type:         req.MethodType,
			Token:        req.Token,
			Installments: req.Installments,
		},
	})
	if err != nil {
		renderDomainError(w, r, err)
		return
	}

	h.cacheStatus(r, result.Order)
	render.JSON(w, r, toOrderResponse(result.Order))
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ord, err := h.queries.GetOrder(r.Context(), id)
	if err != nil {
		renderDomainError(w, r, err)
		return
	}

	h.cacheStatus(r, ord)
	render.JSON(w, r, toOrderResponse(ord))
}

type orderStatusResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// handleGetOrderStatus serves status polling during async payment
// finalization. It reads through the cache so pollers do not hit the database
// on every request.
func (h *Handler) handleGetOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if h.statusCache != nil {
		if status, err := h.statusCache.Get(r.Context(), id); err == nil {
			render.JSON(w, r, orderStatusResponse{OrderID: id, Status: string(status)})
			return
		} else if !errors.Is(err, redisx.ErrMiss) {
			logctx.FromOr(r.Context(), h.log).Warn("order_status_cache_read_failed",
				observability.F("order_id", id),
				observability.F("error", err.Error()),
			)
		}
	}

	ord, err := h.queries.GetOrder(r.Context(), id)
	if err != nil {
		renderDomainError(w, r, err)
		return
	}

	h.cacheStatus(r, ord)
	render.JSON(w, r, orderStatusResponse{OrderID: ord.ID, Status: string(ord.Status)})
}

type productResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PriceInCents int64  `json:"price_in_cents"`
	Currency     string `json:"currency"`
	Stock        int    `json:"stock"`
	Category     string `json:"category,omitempty"`
	Description  string `json:"description,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.queries.ListProducts(r.Context())
	if err != nil {
		renderDomainError(w, r, err)
		return
	}

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, productResponse{
			ID:           p.ID,
			Name:         p.Name,
			PriceInCents: p.Price.AmountInCents(),
			Currency:     p.Price.Currency(),
			Stock:        p.Stock,
			Category:     p.Category,
			Description:  p.Description,
			ImageURL:     p.ImageURL,
		})
	}
	render.JSON(w, r, out)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// cacheStatus refreshes the redis status entry best effort.
func (h *Handler) cacheStatus(r *http.Request, o *domorder.Order) {
	if h.statusCache == nil || o == nil {
		return
	}
	if err := h.statusCache.Set(r.Context(), o); err != nil {
		logctx.FromOr(r.Context(), h.log).Warn("order_status_cache_failed",
			observability.F("order_id", o.ID),
			observability.F("error", err.Error()),
		)
	}
}

func renderError(w http.ResponseWriter, r *http.Request, status int, err error) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": err.Error()})
}

func renderDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domorder.ErrNotFound),
		errors.Is(err, domproduct.ErrNotFound):
		renderError(w, r, http.StatusNotFound, err)
	case errors.Is(err, domorder.ErrNotPending):
		renderError(w, r, http.StatusConflict, err)
	case errors.Is(err, domproduct.ErrInsufficientStock),
		errors.Is(err, domproduct.ErrInvalidQuantity),
		errors.Is(err, domorder.ErrInvalidQuantity),
		errors.Is(err, domorder.ErrEmailRequired):
		renderError(w, r, http.StatusUnprocessableEntity, err)
	case errors.Is(err, checkout.ErrValidation):
		renderError(w, r, http.StatusBadRequest, err)
	case errors.Is(err, checkout.ErrRepository):
		renderError(w, r, http.StatusInternalServerError, err)
	default:
		// Gateway failures and anything else that crossed a process boundary.
		renderError(w, r, http.StatusBadGateway, err)
	}
}
