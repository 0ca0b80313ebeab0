package checkout

import (
	"context"
	"fmt"
	"time"

	domorder "github.com/tiendago/storefront/internal/domain/order"
	domoutbox "github.com/tiendago/storefront/internal/domain/outbox"
	dompayment "github.com/tiendago/storefront/internal/domain/payment"
	domproduct "github.com/tiendago/storefront/internal/domain/product"
	"github.com/tiendago/storefront/internal/observability"
	"github.com/tiendago/storefront/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	useCasePaymentProcess = "checkout.process_payment"
	paymentSpanName       = "ProcessPayment"
	gatewayPeer           = "payment_gateway"
	gatewayEndpoint       = "process_payment"
)

type ProcessPaymentInput struct {
	OrderID string
	Method  dompayment.Method
}

type ProcessPaymentResult struct {
	Order *domorder.Order
}

// ProcessPaymentUseCase drives the full payment protocol for one pending
// order: load, guard, submit to the gateway, branch on the verdict, commit the
// stock decrement, persist both aggregates. The gateway is the source of truth
// for whether the sale commits; stock is re-validated only after approval.
type ProcessPaymentUseCase struct {
	orderRepo   domorder.Repository
	productRepo domproduct.Repository
	gateway     dompayment.Gateway
	gatewayName string
	publisher   domoutbox.Publisher
	tel         observability.Observability

	log          observability.Logger
	reqCounter   observability.Counter
	durHistogram observability.Histogram
	extCounter   observability.Counter
	extHistogram observability.Histogram
}

func NewProcessPaymentUseCase(
	orderRepo domorder.Repository,
	productRepo domproduct.Repository,
	gateway dompayment.Gateway,
	gatewayName string,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *ProcessPaymentUseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	baseLog := tel.Logger().With(
		observability.F("service", checkoutService),
	)
	metrics := tel.Metrics()

	return &ProcessPaymentUseCase{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		gateway:      gateway,
		gatewayName:  gatewayName,
		publisher:    publisher,
		tel:          tel,
		log:          baseLog,
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
		extCounter:   metrics.Counter(observability.MExternalRequests),
		extHistogram: metrics.Histogram(observability.MExternalRequestDuration),
	}
}

// Execute performs the payment flow for the given order id.
//
// A declined payment is a valid business outcome: the order ends DECLINED and
// the use case reports success. Every other deviation marks the order and
// returns an error.
func (uc *ProcessPaymentUseCase) Execute(ctx context.Context, cmd ProcessPaymentInput) (_ *ProcessPaymentResult, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(
		observability.F("use_case", useCasePaymentProcess),
		observability.F("order_id", cmd.OrderID),
	)

	ctx, span := uc.tel.Tracer().Start(ctx, spanPrefix+paymentSpanName,
		attribute.String("use_case", useCasePaymentProcess),
		attribute.String("order.id", cmd.OrderID),
		attribute.String("payment.method_type", cmd.Method.Type),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	var finalStatus domorder.Status

	defer func() {
		latency := time.Since(start).Seconds()

		if span != nil {
			if finalStatus != "" {
				span.SetAttributes(attribute.String("order.status", string(finalStatus)))
			}
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
				observability.L("use_case", useCasePaymentProcess),
				observability.L("outcome", outcome),
			)
		}
		if uc.durHistogram != nil {
			uc.durHistogram.Observe(latency,
				observability.L("use_case", useCasePaymentProcess),
			)
		}

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", latency),
		}
		if finalStatus != "" {
			fields = append(fields, observability.F("order_status", string(finalStatus)))
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

	if cmd.OrderID == "" {
		outcome, statusText = "error", "ORDER_ID_REQUIRED"
		return nil, newValidation("order id is required")
	}

	// 1. Load.
	ord, err := uc.orderRepo.Get(ctx, cmd.OrderID)
	if err != nil {
		outcome, statusText = "error", "ORDER_LOOKUP_FAILED"
		return nil, wrapRepositoryError(err)
	}
	finalStatus = ord.Status

	// 2. Guard: the only state payment may start from is PENDING. No gateway
	// call and no writes happen past this point for a finalized order.
	if !ord.IsPending() {
		outcome, statusText = "error", "ORDER_NOT_PENDING"
		return nil, fmt.Errorf("%w (order %s, status %s)", ErrNotPending, ord.ID, ord.Status)
	}

	// 3. Submit payment.
	resp, gwErr := uc.submitPayment(ctx, ord, cmd.Method)
	if gwErr != nil {
		outcome, statusText = "error", "GATEWAY_FAILED"
		finalStatus = uc.markErrored(ctx, logger, ord, gwErr.Error())
		return nil, gwErr
	}
	span.SetAttributes(attribute.String("gateway.status", string(resp.Status)))

	// 4. Branch on the gateway verdict.
	switch resp.Status {
	case dompayment.StatusApproved, dompayment.StatusPending:
		// A gateway PENDING reserves stock immediately, same as APPROVED.
		// Async payment methods finalize later; there is no compensating
		// path here if they ultimately fail.
		result, aerr := uc.completeApproval(ctx, logger, ord, resp)
		finalStatus = ord.Status
		if aerr != nil {
			outcome, statusText = "error", "APPROVAL_FLOW_FAILED"
			return nil, aerr
		}
		return result, nil

	case dompayment.StatusDeclined:
		if derr := ord.Decline(fmt.Sprintf("Payment was declined by %s", uc.gatewayName)); derr != nil {
			outcome, statusText = "error", "STATE_TRANSITION_FAILED"
			return nil, derr
		}
		finalStatus = ord.Status
		if uerr := uc.orderRepo.Update(ctx, ord); uerr != nil {
			outcome, statusText = "error", "ORDER_UPDATE_FAILED"
			return nil, wrapRepositoryError(uerr)
		}
		statusText = "DECLINED"
		uc.publish(ctx, logger, domorder.NewOrderDeclinedEvent(ord))
		return &ProcessPaymentResult{Order: ord}, nil

	default:
		// Statuses like VOIDED fall through with no transition: the order is
		// persisted as-is, still PENDING.
		finalStatus = ord.Status
		if uerr := uc.orderRepo.Update(ctx, ord); uerr != nil {
			outcome, statusText = "error", "ORDER_UPDATE_FAILED"
			return nil, wrapRepositoryError(uerr)
		}
		statusText = "GATEWAY_STATUS_" + string(resp.Status)
		return &ProcessPaymentResult{Order: ord}, nil
	}
}

// submitPayment calls the gateway and records external-call metrics around it.
func (uc *ProcessPaymentUseCase) submitPayment(ctx context.Context, ord *domorder.Order, method dompayment.Method) (*dompayment.Response, error) {
	req := dompayment.Request{
		AmountInCents: ord.Total.AmountInCents(),
		Currency:      ord.Total.Currency(),
		CustomerEmail: ord.CustomerEmail,
		Reference:     ord.ID,
		Method:        method,
	}

	start := time.Now()
	resp, err := uc.gateway.ProcessPayment(ctx, req)
	callOutcome := "success"
	if err != nil {
		callOutcome = "error"
	}

	if uc.extCounter != nil {
		uc.extCounter.Add(1,
			observability.L("peer", gatewayPeer),
			observability.L("endpoint", gatewayEndpoint),
			observability.L("outcome", callOutcome),
		)
	}
	if uc.extHistogram != nil {
		uc.extHistogram.Observe(time.Since(start).Seconds(),
			observability.L("peer", gatewayPeer),
			observability.L("endpoint", gatewayEndpoint),
		)
	}

	return resp, err
}

// completeApproval runs the stock-decrement-and-commit sequence. Stock is
// checked strictly after gateway approval against the product as it is now,
// which may differ from order creation time.
func (uc *ProcessPaymentUseCase) completeApproval(ctx context.Context, logger observability.Logger, ord *domorder.Order, resp *dompayment.Response) (*ProcessPaymentResult, error) {
	prod, err := uc.productRepo.FindByID(ctx, ord.ProductID)
	if err != nil {
		uc.markErrored(ctx, logger, ord, "Product not found after payment approval")
		return nil, wrapRepositoryError(err)
	}

	if err := prod.DecreaseStock(ord.Quantity); err != nil {
		// The in-memory decrement never left the aggregate; only the order's
		// ERROR status is persisted.
		uc.markErrored(ctx, logger, ord, fmt.Sprintf(
			"Insufficient stock for product %s: requested %d, available %d",
			prod.ID, ord.Quantity, prod.Stock,
		))
		return nil, err
	}

	if err := uc.productRepo.Update(ctx, prod); err != nil {
		uc.markErrored(ctx, logger, ord, fmt.Sprintf("Failed to update product stock: %v", err))
		return nil, wrapRepositoryError(err)
	}

	if err := ord.Approve(resp.ID, resp.Reference); err != nil {
		return nil, err
	}
	if err := uc.orderRepo.Update(ctx, ord); err != nil {
		return nil, wrapRepositoryError(err)
	}

	uc.publish(ctx, logger, domorder.NewOrderApprovedEvent(ord))
	return &ProcessPaymentResult{Order: ord}, nil
}

// markErrored moves the order to ERROR and persists it best effort: a failure
// of this write is logged, not surfaced, so the original error stays primary.
func (uc *ProcessPaymentUseCase) markErrored(ctx context.Context, logger observability.Logger, ord *domorder.Order, reason string) domorder.Status {
	if terr := ord.MarkAsError(reason); terr != nil {
		logger.Warn("order_error_transition_failed",
			observability.F("order_id", ord.ID),
			observability.F("error", terr.Error()),
		)
		return ord.Status
	}
	if uerr := uc.orderRepo.Update(ctx, ord); uerr != nil {
		logger.Warn("order_error_status_persist_failed",
			observability.F("order_id", ord.ID),
			observability.F("error", uerr.Error()),
		)
	}
	uc.publish(ctx, logger, domorder.NewOrderErroredEvent(ord))
	return ord.Status
}

func (uc *ProcessPaymentUseCase) publish(ctx context.Context, logger observability.Logger, e domoutbox.Event) {
	if uc.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := uc.publisher.Publish(pubCtx, e); err != nil {
		logger.Warn("event_publish_failed",
			observability.F("event", e.EventName()),
			observability.F("error", err.Error()),
		)
	}
}
