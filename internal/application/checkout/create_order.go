package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	domorder "github.com/tiendago/storefront/internal/domain/order"
	domoutbox "github.com/tiendago/storefront/internal/domain/outbox"
	domproduct "github.com/tiendago/storefront/internal/domain/product"
	"github.com/tiendago/storefront/internal/observability"
	"github.com/tiendago/storefront/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	checkoutService    = "checkout"
	useCaseOrderCreate = "checkout.create_order"
	createSpanName     = "CreateOrder"
	spanPrefix         = "UC."
	publishTimeout     = 300 * time.Millisecond
)

type CreateOrderInput struct {
	ProductID      string
	Quantity       int
	Shipping       domorder.ShippingInfo
	CustomerEmail  string
	IdempotencyKey string
}

type CreateOrderResult struct {
	Order *domorder.Order
}

// CreateOrderUseCase creates a PENDING order: product lookup, stock precheck,
// total computed from the product's current price, then persist.
type CreateOrderUseCase struct {
	orderRepo   domorder.Repository
	productRepo domproduct.Repository
	idGenerator IDGenerator
	publisher   domoutbox.Publisher
	tel         observability.Observability

	log          observability.Logger
	reqCounter   observability.Counter
	durHistogram observability.Histogram
}

func NewCreateOrderUseCase(
	orderRepo domorder.Repository,
	productRepo domproduct.Repository,
	idGen IDGenerator,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *CreateOrderUseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	metrics := tel.Metrics()

	return &CreateOrderUseCase{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		idGenerator:  idGen,
		publisher:    publisher,
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", checkoutService)),
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
	}
}

func (uc *CreateOrderUseCase) Execute(ctx context.Context, cmd CreateOrderInput) (_ *CreateOrderResult, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(
		observability.F("use_case", useCaseOrderCreate),
		observability.F("product_id", cmd.ProductID),
	)

	ctx, span := uc.tel.Tracer().Start(ctx, spanPrefix+createSpanName,
		attribute.String("use_case", useCaseOrderCreate),
		attribute.String("order.product_id", cmd.ProductID),
		attribute.Int("order.quantity", cmd.Quantity),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	var orderID string

	defer func() {
		latency := time.Since(start).Seconds()

		if span != nil {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, statusText)
			} else {
				span.SetStatus(codes.Ok, statusText)
			}
			span.End()
		}

		if uc.reqCounter != nil {
			uc.reqCounter.Add(1,
				observability.L("use_case", useCaseOrderCreate),
				observability.L("outcome", outcome),
			)
		}
		if uc.durHistogram != nil {
			uc.durHistogram.Observe(latency,
				observability.L("use_case", useCaseOrderCreate),
			)
		}

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", latency),
		}
		if orderID != "" {
			fields = append(fields, observability.F("order_id", orderID))
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	if cmd.ProductID == "" {
		outcome, statusText = "error", "PRODUCT_ID_REQUIRED"
		return nil, newValidation("product id is required")
	}
	if cmd.Quantity <= 0 {
		outcome, statusText = "error", "QUANTITY_INVALID"
		return nil, newValidation("quantity must be greater than zero")
	}
	if cmd.CustomerEmail == "" {
		outcome, statusText = "error", "EMAIL_REQUIRED"
		return nil, newValidation("customer email is required")
	}

	if cmd.IdempotencyKey != "" {
		existing, repoErr := uc.orderRepo.FindByIdempotency(ctx, cmd.IdempotencyKey)
		switch {
		case repoErr == nil:
			orderID = existing.ID
			statusText = "IDEMPOTENT_REPLAY"
			span.AddEvent("order.idempotent_replay",
				trace.WithAttributes(attribute.String("order.id", existing.ID)),
			)
			return &CreateOrderResult{Order: existing}, nil
		case errors.Is(repoErr, domorder.ErrNotFound):
			// continue
		default:
			outcome, statusText = "error", "IDEMPOTENCY_LOOKUP_FAILED"
			return nil, wrapRepositoryError(repoErr)
		}
	}

	prod, err := uc.productRepo.FindByID(ctx, cmd.ProductID)
	if err != nil {
		outcome, statusText = "error", "PRODUCT_LOOKUP_FAILED"
		return nil, wrapRepositoryError(err)
	}

	// Availability precheck only; the authoritative stock decrement happens
	// after gateway approval, when the sale actually commits.
	if !prod.HasStock(cmd.Quantity) {
		outcome, statusText = "error", "INSUFFICIENT_STOCK"
		return nil, fmt.Errorf("%w: product %s has %d units, requested %d",
			ErrInsufficientStock, prod.ID, prod.Stock, cmd.Quantity)
	}

	total, err := prod.TotalPrice(cmd.Quantity)
	if err != nil {
		outcome, statusText = "error", "TOTAL_COMPUTE_FAILED"
		return nil, err
	}

	orderID = uc.idGenerator.NewID()
	entity, err := domorder.New(orderID, prod.ID, cmd.Quantity, total, cmd.Shipping, cmd.CustomerEmail, cmd.IdempotencyKey)
	if err != nil {
		outcome, statusText = "error", "DOMAIN_CONSTRUCTION_FAILED"
		return nil, fmt.Errorf("order: construct: %w", err)
	}

	if err := uc.orderRepo.Insert(ctx, entity); err != nil {
		if errors.Is(err, domorder.ErrConflict) && cmd.IdempotencyKey != "" {
			if existing, lookupErr := uc.orderRepo.FindByIdempotency(ctx, cmd.IdempotencyKey); lookupErr == nil {
				orderID = existing.ID
				statusText = "IDEMPOTENT_REPLAY"
				return &CreateOrderResult{Order: existing}, nil
			}
		}
		outcome, statusText = "error", "REPO_INSERT_FAILED"
		return nil, wrapRepositoryError(err)
	}

	if uc.publisher != nil {
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		if pubErr := uc.publisher.Publish(pubCtx, domorder.NewOrderCreatedEvent(entity)); pubErr != nil {
			logger.Warn("event_publish_failed",
				observability.F("event", "order.created"),
				observability.F("error", pubErr.Error()),
			)
		}
		cancel()
	}

	span.AddEvent("order.created",
		trace.WithAttributes(attribute.String("order.id", entity.ID)),
	)

	return &CreateOrderResult{Order: entity}, nil
}
