package payment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/openbay/auction-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*domain.Order)}
}

func (r *fakeOrderRepo) CreateOrder(o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *o
	r.orders[o.ID] = &copied
	return nil
}

func (r *fakeOrderRepo) GetOrderByID(orderID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (r *fakeOrderRepo) SetPaymentStatus(orderID string, from, to domain.PaymentStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok || o.PaymentStatus != from {
		return false, nil
	}
	o.PaymentStatus = to
	return true, nil
}

func (r *fakeOrderRepo) SetPaymentMethod(orderID string, method domain.PaymentMethod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.PaymentMethod = method
	return nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	attempts []*domain.PaymentAttempt
}

func (r *fakePaymentRepo) RecordAttempt(a *domain.PaymentAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *a
	r.attempts = append(r.attempts, &copied)
	return nil
}

func (r *fakePaymentRepo) FindVerified(orderID, gatewayPaymentID string) (*domain.PaymentAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attempts {
		if a.OrderID == orderID && a.GatewayPaymentID == gatewayPaymentID && a.Outcome == domain.OutcomeVerified {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) AttemptsByOrder(orderID string) ([]*domain.PaymentAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.PaymentAttempt
	for _, a := range r.attempts {
		if a.OrderID == orderID {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) countByOutcome(outcome domain.AttemptOutcome) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.attempts {
		if a.Outcome == outcome {
			n++
		}
	}
	return n
}

// fakeGateway accepts one fixed signature, or anything non-empty in mock mode.
type fakeGateway struct {
	mock     bool
	validSig string
}

func (g *fakeGateway) CreateOrder(orderID string, amount float64, currency string) (*domain.GatewayOrder, error) {
	return &domain.GatewayOrder{
		GatewayOrderID: "gw_order_1",
		OrderID:        orderID,
		Amount:         amount,
		Currency:       currency,
		IsMock:         g.mock,
	}, nil
}

func (g *fakeGateway) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	if g.mock {
		return gatewayOrderID != "" && gatewayPaymentID != ""
	}
	return signature == g.validSig
}

func (g *fakeGateway) IsMock() bool { return g.mock }

type publishedEvent struct {
	Room    string
	Type    domain.EventType
	Payload any
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (b *fakeBroadcaster) Publish(room string, event domain.EventType, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, publishedEvent{Room: room, Type: event, Payload: payload})
}

func (b *fakeBroadcaster) Events() []publishedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]publishedEvent, len(b.events))
	copy(out, b.events)
	return out
}

type fakeAuditPublisher struct{}

func (p *fakeAuditPublisher) PublishJSON(topic, key string, event any) error { return nil }

func pendingOrder(id string) *domain.Order {
	now := time.Now()
	return &domain.Order{
		ID:            id,
		BuyerID:       "buyer-1",
		AuctionID:     "a1",
		Items:         []domain.OrderItem{{ProductID: "p1", Quantity: 1, UnitPrice: 180, Mode: domain.ItemModeAuction}},
		PaymentMethod: domain.MethodOnline,
		PaymentStatus: domain.PaymentPending,
		TotalAmount:   180,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func newPaymentHarness(t *testing.T, gw *fakeGateway) (*Usecase, *fakeOrderRepo, *fakePaymentRepo, *fakeBroadcaster) {
	t.Helper()
	orders := newFakeOrderRepo()
	payments := &fakePaymentRepo{}
	broadcaster := &fakeBroadcaster{}
	uc := NewUsecase(orders, payments, gw, broadcaster, &fakeAuditPublisher{}, nil, "INR")
	return uc, orders, payments, broadcaster
}

func TestCreateGatewayOrder(t *testing.T) {
	gw := &fakeGateway{validSig: "sig"}
	uc, orders, _, _ := newPaymentHarness(t, gw)
	require.NoError(t, orders.CreateOrder(pendingOrder("o1")))

	handle, err := uc.CreateGatewayOrder(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, "gw_order_1", handle.GatewayOrderID)
	assert.Equal(t, 180.0, handle.Amount)
	assert.Equal(t, "INR", handle.Currency)
	assert.False(t, handle.IsMock)

	// A paid order is not payable again.
	flipped, err := orders.SetPaymentStatus("o1", domain.PaymentPending, domain.PaymentPaid)
	require.NoError(t, err)
	require.True(t, flipped)
	_, err = uc.CreateGatewayOrder(context.Background(), "o1")
	assert.ErrorIs(t, err, domain.ErrOrderNotPayable)

	_, err = uc.CreateGatewayOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestCreateGatewayOrder_MockModeSurfaced(t *testing.T) {
	gw := &fakeGateway{mock: true}
	uc, orders, _, _ := newPaymentHarness(t, gw)
	require.NoError(t, orders.CreateOrder(pendingOrder("o1")))

	handle, err := uc.CreateGatewayOrder(context.Background(), "o1")
	require.NoError(t, err)
	assert.True(t, handle.IsMock)
}

func TestVerify_MarksOrderPaidOnce(t *testing.T) {
	gw := &fakeGateway{validSig: "good-sig"}
	uc, orders, payments, broadcaster := newPaymentHarness(t, gw)
	require.NoError(t, orders.CreateOrder(pendingOrder("o1")))

	in := VerifyInput{
		OrderID:          "o1",
		GatewayOrderID:   "gw_order_1",
		GatewayPaymentID: "pay_1",
		GatewaySignature: "good-sig",
	}

	verified, err := uc.Verify(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, verified.AlreadyApplied)
	assert.Equal(t, "pay_1", verified.GatewayPaymentID)

	order, err := orders.GetOrderByID("o1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, 1, payments.countByOutcome(domain.OutcomeVerified))

	events := broadcaster.Events()
	require.Len(t, events, 2)
	assert.Equal(t, domain.OrderRoom("o1"), events[0].Room)
	assert.Equal(t, domain.EventPaymentStatus, events[0].Type)
	assert.Equal(t, domain.EventOrderStatus, events[1].Type)
}

func TestVerify_ReplayReturnsPriorResult(t *testing.T) {
	gw := &fakeGateway{validSig: "good-sig"}
	uc, orders, payments, broadcaster := newPaymentHarness(t, gw)
	require.NoError(t, orders.CreateOrder(pendingOrder("o1")))

	in := VerifyInput{
		OrderID:          "o1",
		GatewayOrderID:   "gw_order_1",
		GatewayPaymentID: "pay_1",
		GatewaySignature: "good-sig",
	}

	first, err := uc.Verify(context.Background(), in)
	require.NoError(t, err)

	second, err := uc.Verify(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, second.AlreadyApplied)
	assert.Equal(t, first.GatewayPaymentID, second.GatewayPaymentID)

	// No second transition, attempt, or broadcast.
	assert.Equal(t, 1, payments.countByOutcome(domain.OutcomeVerified))
	assert.Len(t, broadcaster.Events(), 2)
}

func TestVerify_ConcurrentCallbacksApplyOnce(t *testing.T) {
	gw := &fakeGateway{validSig: "good-sig"}
	uc, orders, payments, _ := newPaymentHarness(t, gw)
	require.NoError(t, orders.CreateOrder(pendingOrder("o1")))

	in := VerifyInput{
		OrderID:          "o1",
		GatewayOrderID:   "gw_order_1",
		GatewayPaymentID: "pay_1",
		GatewaySignature: "good-sig",
	}

	const callbacks = 10
	var wg sync.WaitGroup
	wg.Add(callbacks)
	for i := 0; i < callbacks; i++ {
		go func() {
			defer wg.Done()
			_, _ = uc.Verify(context.Background(), in)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, payments.countByOutcome(domain.OutcomeVerified))
	order, err := orders.GetOrderByID("o1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, order.PaymentStatus)
}

func TestVerify_BadSignatureLeavesOrderPending(t *testing.T) {
	gw := &fakeGateway{validSig: "good-sig"}
	uc, orders, payments, broadcaster := newPaymentHarness(t, gw)
	require.NoError(t, orders.CreateOrder(pendingOrder("o1")))

	_, err := uc.Verify(context.Background(), VerifyInput{
		OrderID:          "o1",
		GatewayOrderID:   "gw_order_1",
		GatewayPaymentID: "pay_1",
		GatewaySignature: "forged",
	})
	assert.ErrorIs(t, err, domain.ErrPaymentSignatureInvalid)

	order, err := orders.GetOrderByID("o1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)
	assert.Equal(t, 1, payments.countByOutcome(domain.OutcomeFailed))
	assert.Empty(t, broadcaster.Events())

	// The same payment id with the right signature still goes through.
	_, err = uc.Verify(context.Background(), VerifyInput{
		OrderID:          "o1",
		GatewayOrderID:   "gw_order_1",
		GatewayPaymentID: "pay_1",
		GatewaySignature: "good-sig",
	})
	assert.NoError(t, err)
}

func TestVerify_MissingIdentifiersRejected(t *testing.T) {
	gw := &fakeGateway{validSig: "good-sig"}
	uc, orders, _, _ := newPaymentHarness(t, gw)
	require.NoError(t, orders.CreateOrder(pendingOrder("o1")))

	_, err := uc.Verify(context.Background(), VerifyInput{OrderID: "o1"})
	assert.ErrorIs(t, err, domain.ErrPaymentSignatureInvalid)

	_, err = uc.Verify(context.Background(), VerifyInput{GatewayPaymentID: "pay_1"})
	assert.ErrorIs(t, err, domain.ErrPaymentSignatureInvalid)
}

func TestRecordFailure_NeverTouchesOrderStatus(t *testing.T) {
	gw := &fakeGateway{validSig: "good-sig"}
	uc, orders, payments, _ := newPaymentHarness(t, gw)
	require.NoError(t, orders.CreateOrder(pendingOrder("o1")))

	for i := 0; i < 3; i++ {
		err := uc.RecordFailure(context.Background(), "o1", FailureDetail{
			Code:        "BAD_CARD",
			Description: "card declined",
			Reason:      "issuer_declined",
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 3, payments.countByOutcome(domain.OutcomeFailed))
	order, err := orders.GetOrderByID("o1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)

	// Failures do not block a later successful verification.
	_, err = uc.Verify(context.Background(), VerifyInput{
		OrderID:          "o1",
		GatewayOrderID:   "gw_order_1",
		GatewayPaymentID: "pay_1",
		GatewaySignature: "good-sig",
	})
	assert.NoError(t, err)

	err = uc.RecordFailure(context.Background(), "missing", FailureDetail{})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestMarkCashOnDelivery(t *testing.T) {
	gw := &fakeGateway{validSig: "good-sig"}
	uc, orders, _, broadcaster := newPaymentHarness(t, gw)
	require.NoError(t, orders.CreateOrder(pendingOrder("o1")))

	require.NoError(t, uc.MarkCashOnDelivery(context.Background(), "o1"))

	order, err := orders.GetOrderByID("o1")
	require.NoError(t, err)
	assert.Equal(t, domain.MethodCashOnDelivery, order.PaymentMethod)
	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)
	assert.Len(t, broadcaster.Events(), 1)

	// Already-paid orders cannot switch to COD.
	paid := pendingOrder("o2")
	paid.PaymentStatus = domain.PaymentPaid
	require.NoError(t, orders.CreateOrder(paid))
	err = uc.MarkCashOnDelivery(context.Background(), "o2")
	assert.ErrorIs(t, err, domain.ErrOrderNotPayable)
}

func TestGetOrder_ReturnsAttempts(t *testing.T) {
	gw := &fakeGateway{mock: true}
	uc, orders, _, _ := newPaymentHarness(t, gw)
	require.NoError(t, orders.CreateOrder(pendingOrder("o1")))

	require.NoError(t, uc.RecordFailure(context.Background(), "o1", FailureDetail{Code: "TIMEOUT"}))
	_, err := uc.Verify(context.Background(), VerifyInput{
		OrderID:          "o1",
		GatewayOrderID:   "order_mock_x",
		GatewayPaymentID: "pay_mock_x",
	})
	require.NoError(t, err)

	order, attempts, err := uc.GetOrder("o1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, order.PaymentStatus)
	assert.Len(t, attempts, 2)
}
