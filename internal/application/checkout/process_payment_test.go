package checkout

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tiendago/storefront/internal/domain/money"
	domorder "github.com/tiendago/storefront/internal/domain/order"
	domoutbox "github.com/tiendago/storefront/internal/domain/outbox"
	dompayment "github.com/tiendago/storefront/internal/domain/payment"
	domproduct "github.com/tiendago/storefront/internal/domain/product"
)

type fakeOrderRepo struct {
	orders map[string]*domorder.Order

	getErr    error
	insertErr error
	updateErr error

	getCalls    int
	insertCalls int
	updateCalls int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*domorder.Order)}
}

func (r *fakeOrderRepo) Insert(_ context.Context, o *domorder.Order) error {
	r.insertCalls++
	if r.insertErr != nil {
		return r.insertErr
	}
	if _, ok := r.orders[o.ID]; ok {
		return domorder.ErrConflict
	}
	r.orders[o.ID] = o.Clone()
	return nil
}

func (r *fakeOrderRepo) Get(_ context.Context, id string) (*domorder.Order, error) {
	r.getCalls++
	if r.getErr != nil {
		return nil, r.getErr
	}
	o, ok := r.orders[id]
	if !ok {
		return nil, domorder.ErrNotFound
	}
	return o.Clone(), nil
}

func (r *fakeOrderRepo) Update(_ context.Context, o *domorder.Order) error {
	r.updateCalls++
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.orders[o.ID]; !ok {
		return domorder.ErrNotFound
	}
	r.orders[o.ID] = o.Clone()
	return nil
}

func (r *fakeOrderRepo) FindByIdempotency(_ context.Context, key string) (*domorder.Order, error) {
	for _, o := range r.orders {
		if o.IdempotencyKey == key {
			return o.Clone(), nil
		}
	}
	return nil, domorder.ErrNotFound
}

type fakeProductRepo struct {
	products map[string]*domproduct.Product

	findErr   error
	updateErr error

	findCalls   int
	updateCalls int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]*domproduct.Product)}
}

func (r *fakeProductRepo) Save(_ context.Context, p *domproduct.Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id string) (*domproduct.Product, error) {
	r.findCalls++
	if r.findErr != nil {
		return nil, r.findErr
	}
	p, ok := r.products[id]
	if !ok {
		return nil, domproduct.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *domproduct.Product) error {
	r.updateCalls++
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.products[p.ID]; !ok {
		return domproduct.ErrNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) List(_ context.Context) ([]*domproduct.Product, error) {
	out := make([]*domproduct.Product, 0, len(r.products))
	for _, p := range r.products {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

type fakeGateway struct {
	resp *dompayment.Response
	err  error

	calls   int
	lastReq dompayment.Request
}

func (g *fakeGateway) ProcessPayment(_ context.Context, req dompayment.Request) (*dompayment.Response, error) {
	g.calls++
	g.lastReq = req
	if g.err != nil {
		return nil, g.err
	}
	return g.resp, nil
}

type fakePublisher struct {
	events []domoutbox.Event
}

func (p *fakePublisher) Publish(_ context.Context, e domoutbox.Event) error {
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) names() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventName())
	}
	return out
}

type paymentFixture struct {
	uc        *ProcessPaymentUseCase
	orders    *fakeOrderRepo
	products  *fakeProductRepo
	gateway   *fakeGateway
	publisher *fakePublisher
}

// newPaymentFixture wires a PENDING order for 2 units of a product with the
// given stock, against a gateway primed with the given verdict.
func newPaymentFixture(t *testing.T, stock int, verdict dompayment.Status, gwErr error) *paymentFixture {
	t.Helper()

	products := newFakeProductRepo()
	prod, err := domproduct.New("prod-1", "Café de origen 500g", money.MustNew(100000, "COP"), stock)
	if err != nil {
		t.Fatalf("product.New() error = %v", err)
	}
	if err := products.Save(context.Background(), prod); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	orders := newFakeOrderRepo()
	ord, err := domorder.New("ord-1", "prod-1", 2, money.MustNew(200000, "COP"), domorder.ShippingInfo{}, "ana@example.com", "")
	if err != nil {
		t.Fatalf("order.New() error = %v", err)
	}
	if err := orders.Insert(context.Background(), ord); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	gw := &fakeGateway{err: gwErr}
	if gwErr == nil {
		gw.resp = &dompayment.Response{
			ID:        "txn-123",
			Status:    verdict,
			Reference: "ref-abc",
		}
	}

	pub := &fakePublisher{}
	return &paymentFixture{
		uc:        NewProcessPaymentUseCase(orders, products, gw, "cardpay", pub, nil),
		orders:    orders,
		products:  products,
		gateway:   gw,
		publisher: pub,
	}
}

func (f *paymentFixture) storedOrder(t *testing.T) *domorder.Order {
	t.Helper()
	o, ok := f.orders.orders["ord-1"]
	if !ok {
		t.Fatal("order ord-1 missing from repository")
	}
	return o
}

func (f *paymentFixture) storedStock(t *testing.T) int {
	t.Helper()
	p, ok := f.products.products["prod-1"]
	if !ok {
		t.Fatal("product prod-1 missing from repository")
	}
	return p.Stock
}

func TestProcessPaymentApproved(t *testing.T) {
	f := newPaymentFixture(t, 10, dompayment.StatusApproved, nil)

	result, err := f.uc.Execute(context.Background(), ProcessPaymentInput{OrderID: "ord-1"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Order.Status != domorder.StatusApproved {
		t.Fatalf("order status = %s, want APPROVED", result.Order.Status)
	}
	if result.Order.GatewayTransactionID != "txn-123" {
		t.Fatalf("gateway transaction id = %q, want txn-123", result.Order.GatewayTransactionID)
	}
	if got := f.storedStock(t); got != 8 {
		t.Fatalf("persisted stock = %d, want 8", got)
	}
	if stored := f.storedOrder(t); stored.Status != domorder.StatusApproved {
		t.Fatalf("persisted order status = %s, want APPROVED", stored.Status)
	}
	if got := f.publisher.names(); len(got) != 1 || got[0] != "order.approved" {
		t.Fatalf("published events = %v, want [order.approved]", got)
	}
	if f.gateway.lastReq.AmountInCents != 200000 || f.gateway.lastReq.Reference != "ord-1" {
		t.Fatalf("gateway request = %+v", f.gateway.lastReq)
	}
}

func TestProcessPaymentGatewayPendingReservesStock(t *testing.T) {
	f := newPaymentFixture(t, 10, dompayment.StatusPending, nil)

	result, err := f.uc.Execute(context.Background(), ProcessPaymentInput{OrderID: "ord-1"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	// An async PENDING verdict commits the stock decrement just like APPROVED.
	if result.Order.Status != domorder.StatusApproved {
		t.Fatalf("order status = %s, want APPROVED", result.Order.Status)
	}
	if got := f.storedStock(t); got != 8 {
		t.Fatalf("persisted stock = %d, want 8", got)
	}
}

func TestProcessPaymentInsufficientStock(t *testing.T) {
	f := newPaymentFixture(t, 1, dompayment.StatusApproved, nil)

	_, err := f.uc.Execute(context.Background(), ProcessPaymentInput{OrderID: "ord-1"})
	if !errors.Is(err, domproduct.ErrInsufficientStock) {
		t.Fatalf("Execute() error = %v, want ErrInsufficientStock", err)
	}

	stored := f.storedOrder(t)
	if stored.Status != domorder.StatusError {
		t.Fatalf("persisted order status = %s, want ERROR", stored.Status)
	}
	if !strings.Contains(stored.ErrorMessage, "Insufficient stock") {
		t.Fatalf("error message = %q, want insufficient-stock text", stored.ErrorMessage)
	}
	if got := f.storedStock(t); got != 1 {
		t.Fatalf("persisted stock = %d, want 1 (unchanged)", got)
	}
	if f.products.updateCalls != 0 {
		t.Fatalf("product Update called %d times, want 0", f.products.updateCalls)
	}
	if got := f.publisher.names(); len(got) != 1 || got[0] != "order.errored" {
		t.Fatalf("published events = %v, want [order.errored]", got)
	}
}

func TestProcessPaymentDeclined(t *testing.T) {
	f := newPaymentFixture(t, 10, dompayment.StatusDeclined, nil)

	result, err := f.uc.Execute(context.Background(), ProcessPaymentInput{OrderID: "ord-1"})
	if err != nil {
		t.Fatalf("Execute() error = %v, a decline is a valid outcome", err)
	}

	if result.Order.Status != domorder.StatusDeclined {
		t.Fatalf("order status = %s, want DECLINED", result.Order.Status)
	}
	if result.Order.ErrorMessage != "Payment was declined by cardpay" {
		t.Fatalf("error message = %q", result.Order.ErrorMessage)
	}
	// Declines never touch the product aggregate.
	if f.products.findCalls != 0 || f.products.updateCalls != 0 {
		t.Fatalf("product repo touched on decline: find=%d update=%d", f.products.findCalls, f.products.updateCalls)
	}
	if got := f.storedStock(t); got != 10 {
		t.Fatalf("persisted stock = %d, want 10", got)
	}
	if got := f.publisher.names(); len(got) != 1 || got[0] != "order.declined" {
		t.Fatalf("published events = %v, want [order.declined]", got)
	}
}

func TestProcessPaymentGatewayError(t *testing.T) {
	gwErr := errors.New("timeout")
	f := newPaymentFixture(t, 10, "", gwErr)

	_, err := f.uc.Execute(context.Background(), ProcessPaymentInput{OrderID: "ord-1"})
	if !errors.Is(err, gwErr) {
		t.Fatalf("Execute() error = %v, want the gateway error", err)
	}

	stored := f.storedOrder(t)
	if stored.Status != domorder.StatusError {
		t.Fatalf("persisted order status = %s, want ERROR", stored.Status)
	}
	if stored.ErrorMessage != "timeout" {
		t.Fatalf("error message = %q, want the gateway error text", stored.ErrorMessage)
	}
	if f.products.findCalls != 0 {
		t.Fatalf("product repo touched on gateway error: find=%d", f.products.findCalls)
	}
}

func TestProcessPaymentGatewayErrorPersistBestEffort(t *testing.T) {
	gwErr := errors.New("connection reset")
	f := newPaymentFixture(t, 10, "", gwErr)
	f.orders.updateErr = errors.New("db down")

	// The gateway error stays primary even when the ERROR write fails.
	_, err := f.uc.Execute(context.Background(), ProcessPaymentInput{OrderID: "ord-1"})
	if !errors.Is(err, gwErr) {
		t.Fatalf("Execute() error = %v, want the gateway error", err)
	}
}

func TestProcessPaymentNotPending(t *testing.T) {
	f := newPaymentFixture(t, 10, dompayment.StatusApproved, nil)

	ord := f.orders.orders["ord-1"]
	if err := ord.Approve("txn-prev", "ref-prev"); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		_, err := f.uc.Execute(context.Background(), ProcessPaymentInput{OrderID: "ord-1"})
		if !errors.Is(err, domorder.ErrNotPending) {
			t.Fatalf("Execute() error = %v, want ErrNotPending", err)
		}
	}

	// A finalized order never reaches the gateway or the product repo again.
	if f.gateway.calls != 0 {
		t.Fatalf("gateway called %d times, want 0", f.gateway.calls)
	}
	if f.products.findCalls != 0 {
		t.Fatalf("product repo called %d times, want 0", f.products.findCalls)
	}
	if f.orders.updateCalls != 0 {
		t.Fatalf("order Update called %d times, want 0", f.orders.updateCalls)
	}
}

func TestProcessPaymentUnknownGatewayStatus(t *testing.T) {
	f := newPaymentFixture(t, 10, dompayment.StatusVoided, nil)

	result, err := f.uc.Execute(context.Background(), ProcessPaymentInput{OrderID: "ord-1"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	// Unknown verdicts carry through without a state transition.
	if result.Order.Status != domorder.StatusPending {
		t.Fatalf("order status = %s, want PENDING", result.Order.Status)
	}
	if f.orders.updateCalls != 1 {
		t.Fatalf("order Update called %d times, want 1", f.orders.updateCalls)
	}
	if got := f.storedStock(t); got != 10 {
		t.Fatalf("persisted stock = %d, want 10", got)
	}
}

func TestProcessPaymentOrderNotFound(t *testing.T) {
	f := newPaymentFixture(t, 10, dompayment.StatusApproved, nil)

	_, err := f.uc.Execute(context.Background(), ProcessPaymentInput{OrderID: "missing"})
	if !errors.Is(err, domorder.ErrNotFound) {
		t.Fatalf("Execute() error = %v, want ErrNotFound", err)
	}
	if f.gateway.calls != 0 {
		t.Fatalf("gateway called %d times, want 0", f.gateway.calls)
	}
}

func TestProcessPaymentValidation(t *testing.T) {
	f := newPaymentFixture(t, 10, dompayment.StatusApproved, nil)

	_, err := f.uc.Execute(context.Background(), ProcessPaymentInput{})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Execute() error = %v, want ErrValidation", err)
	}
}

func TestProcessPaymentProductGoneAfterApproval(t *testing.T) {
	f := newPaymentFixture(t, 10, dompayment.StatusApproved, nil)
	f.products.findErr = domproduct.ErrNotFound

	_, err := f.uc.Execute(context.Background(), ProcessPaymentInput{OrderID: "ord-1"})
	if !errors.Is(err, domproduct.ErrNotFound) {
		t.Fatalf("Execute() error = %v, want ErrNotFound", err)
	}

	stored := f.storedOrder(t)
	if stored.Status != domorder.StatusError {
		t.Fatalf("persisted order status = %s, want ERROR", stored.Status)
	}
	if stored.ErrorMessage != "Product not found after payment approval" {
		t.Fatalf("error message = %q", stored.ErrorMessage)
	}
}
