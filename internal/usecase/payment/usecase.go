package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/openbay/auction-service/internal/domain"
	publisher "github.com/openbay/auction-service/internal/infrastructure/kafka"
	"github.com/openbay/auction-service/internal/infrastructure/logger"
	"github.com/openbay/auction-service/internal/infrastructure/metrics"
	"github.com/openbay/auction-service/internal/pkg/keylock"
)

// GatewayClient is the slice of the payment gateway this usecase needs.
type GatewayClient interface {
	CreateOrder(orderID string, amount float64, currency string) (*domain.GatewayOrder, error)
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool
	IsMock() bool
}

// VerifyInput carries one gateway callback.
type VerifyInput struct {
	OrderID          string
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string
}

// FailureDetail is the gateway's structured failure payload, recorded
// verbatim for support and diagnostics.
type FailureDetail struct {
	Code        string
	Description string
	Reason      string
}

// Usecase reconciles gateway callbacks into order state. Verification for a
// given order is single-writer, so the pending->paid transition happens at
// most once even when the gateway delivers the callback twice.
type Usecase struct {
	Orders      domain.OrderRepository
	Payments    domain.PaymentRepository
	Gateway     GatewayClient
	Broadcaster domain.Broadcaster
	Publisher   domain.AuditPublisher
	Metrics     *metrics.AuctionMetrics
	Currency    string

	locks *keylock.KeyedMutex
	now   func() time.Time
}

func NewUsecase(
	orderRepo domain.OrderRepository,
	paymentRepo domain.PaymentRepository,
	gatewayClient GatewayClient,
	broadcaster domain.Broadcaster,
	auditPublisher domain.AuditPublisher,
	auctionMetrics *metrics.AuctionMetrics,
	currency string,
) *Usecase {
	return &Usecase{
		Orders:      orderRepo,
		Payments:    paymentRepo,
		Gateway:     gatewayClient,
		Broadcaster: broadcaster,
		Publisher:   auditPublisher,
		Metrics:     auctionMetrics,
		Currency:    currency,
		locks:       keylock.New(),
		now:         time.Now,
	}
}

// CreateGatewayOrder registers a pending order with the gateway and returns
// the checkout handle. The IsMock flag tells test-environment clients to
// skip the hosted checkout.
func (uc *Usecase) CreateGatewayOrder(ctx context.Context, orderID string) (*domain.GatewayOrder, error) {
	order, err := uc.Orders.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != domain.PaymentPending {
		return nil, fmt.Errorf("%w: order %s is %s", domain.ErrOrderNotPayable, orderID, order.PaymentStatus)
	}

	handle, err := uc.Gateway.CreateOrder(orderID, order.TotalAmount, uc.Currency)
	if err != nil {
		return nil, fmt.Errorf("failed to register order %s with gateway: %w", orderID, err)
	}
	return handle, nil
}

// Verify applies one gateway callback to its order exactly once. A repeat
// of an already-verified (orderID, gatewayPaymentID) pair returns the
// original result with AlreadyApplied set; it is not an error.
func (uc *Usecase) Verify(ctx context.Context, in VerifyInput) (*domain.VerifiedPayment, error) {
	if in.OrderID == "" || in.GatewayPaymentID == "" {
		return nil, fmt.Errorf("%w: missing identifiers", domain.ErrPaymentSignatureInvalid)
	}

	unlock := uc.locks.Lock(in.OrderID)
	defer unlock()

	order, err := uc.Orders.GetOrderByID(in.OrderID)
	if err != nil {
		return nil, err
	}

	if prior, err := uc.Payments.FindVerified(in.OrderID, in.GatewayPaymentID); err != nil {
		return nil, fmt.Errorf("failed to look up prior verification: %w", err)
	} else if prior != nil {
		return &domain.VerifiedPayment{
			OrderID:          prior.OrderID,
			GatewayOrderID:   prior.GatewayOrderID,
			GatewayPaymentID: prior.GatewayPaymentID,
			PaidAt:           prior.CreatedAt,
			AlreadyApplied:   true,
		}, nil
	}

	if order.PaymentStatus == domain.PaymentPaid {
		// Paid through a different payment id. Idempotent no-op for the
		// caller, but nothing new is recorded.
		return nil, fmt.Errorf("%w: order %s", domain.ErrPaymentAlreadyProcessed, in.OrderID)
	}

	if !uc.Gateway.VerifySignature(in.GatewayOrderID, in.GatewayPaymentID, in.GatewaySignature) {
		attempt := &domain.PaymentAttempt{
			ID:               uuid.New().String(),
			OrderID:          in.OrderID,
			GatewayOrderID:   in.GatewayOrderID,
			GatewayPaymentID: in.GatewayPaymentID,
			GatewaySignature: in.GatewaySignature,
			Outcome:          domain.OutcomeFailed,
			FailureReason:    "signature mismatch",
			CreatedAt:        uc.now().UTC(),
		}
		if err := uc.Payments.RecordAttempt(attempt); err != nil {
			logger.Error("failed to record signature failure", map[string]any{"order_id": in.OrderID, "error": err.Error()})
		}
		if uc.Metrics != nil {
			uc.Metrics.RecordPaymentFailed("signature")
		}
		return nil, fmt.Errorf("%w: order %s", domain.ErrPaymentSignatureInvalid, in.OrderID)
	}

	flipped, err := uc.Orders.SetPaymentStatus(in.OrderID, domain.PaymentPending, domain.PaymentPaid)
	if err != nil {
		return nil, fmt.Errorf("failed to mark order %s paid: %w", in.OrderID, err)
	}
	if !flipped {
		return nil, fmt.Errorf("%w: order %s", domain.ErrPaymentAlreadyProcessed, in.OrderID)
	}

	paidAt := uc.now().UTC()
	attempt := &domain.PaymentAttempt{
		ID:               uuid.New().String(),
		OrderID:          in.OrderID,
		GatewayOrderID:   in.GatewayOrderID,
		GatewayPaymentID: in.GatewayPaymentID,
		GatewaySignature: in.GatewaySignature,
		Outcome:          domain.OutcomeVerified,
		CreatedAt:        paidAt,
	}
	if err := uc.Payments.RecordAttempt(attempt); err != nil {
		// Order is paid; the attempt record is the idempotency anchor, so
		// its loss is worth a loud log but must not fail the verification.
		logger.Error("failed to record verified attempt", map[string]any{"order_id": in.OrderID, "error": err.Error()})
	}

	uc.Broadcaster.Publish(domain.OrderRoom(in.OrderID), domain.EventPaymentStatus, domain.PaymentStatusEvent{
		OrderID:       in.OrderID,
		PaymentStatus: domain.PaymentPaid,
	})
	uc.Broadcaster.Publish(domain.OrderRoom(in.OrderID), domain.EventOrderStatus, domain.OrderStatusEvent{
		OrderID: in.OrderID,
		Status:  domain.PaymentPaid,
	})

	go func(event publisher.PaymentEvent) {
		if err := uc.Publisher.PublishJSON(publisher.TopicPayments, event.OrderID, event); err != nil {
			logger.Error("failed to publish payment audit event", map[string]any{"order_id": event.OrderID, "error": err.Error()})
		}
	}(publisher.PaymentEvent{
		OrderID:          in.OrderID,
		GatewayPaymentID: in.GatewayPaymentID,
		Outcome:          string(domain.OutcomeVerified),
		OccurredAt:       paidAt,
	})

	if uc.Metrics != nil {
		uc.Metrics.RecordPaymentVerified()
	}

	return &domain.VerifiedPayment{
		OrderID:          in.OrderID,
		GatewayOrderID:   in.GatewayOrderID,
		GatewayPaymentID: in.GatewayPaymentID,
		PaidAt:           paidAt,
	}, nil
}

// RecordFailure appends a failed attempt for diagnostics. Purely
// observational: the order's payment status never leaves PENDING here, and
// retries may record any number of failures per order.
func (uc *Usecase) RecordFailure(ctx context.Context, orderID string, detail FailureDetail) error {
	if _, err := uc.Orders.GetOrderByID(orderID); err != nil {
		return err
	}

	attempt := &domain.PaymentAttempt{
		ID:            uuid.New().String(),
		OrderID:       orderID,
		Outcome:       domain.OutcomeFailed,
		FailureCode:   detail.Code,
		FailureReason: detail.Reason,
		FailureDetail: detail.Description,
		CreatedAt:     uc.now().UTC(),
	}
	if err := uc.Payments.RecordAttempt(attempt); err != nil {
		return fmt.Errorf("failed to record payment failure for order %s: %w", orderID, err)
	}

	go func(event publisher.PaymentEvent) {
		if err := uc.Publisher.PublishJSON(publisher.TopicPayments, event.OrderID, event); err != nil {
			logger.Error("failed to publish payment audit event", map[string]any{"order_id": event.OrderID, "error": err.Error()})
		}
	}(publisher.PaymentEvent{
		OrderID:    orderID,
		Outcome:    string(domain.OutcomeFailed),
		Reason:     detail.Reason,
		OccurredAt: uc.now().UTC(),
	})

	if uc.Metrics != nil {
		uc.Metrics.RecordPaymentFailed("client_reported")
	}
	return nil
}

// MarkCashOnDelivery flags a pending order as payable on delivery,
// bypassing the gateway entirely. The payment status stays PENDING until
// the courier settles it out of band.
func (uc *Usecase) MarkCashOnDelivery(ctx context.Context, orderID string) error {
	unlock := uc.locks.Lock(orderID)
	defer unlock()

	order, err := uc.Orders.GetOrderByID(orderID)
	if err != nil {
		return err
	}
	if order.PaymentStatus != domain.PaymentPending {
		return fmt.Errorf("%w: order %s is %s", domain.ErrOrderNotPayable, orderID, order.PaymentStatus)
	}

	if err := uc.Orders.SetPaymentMethod(orderID, domain.MethodCashOnDelivery); err != nil {
		return fmt.Errorf("failed to mark order %s as cash on delivery: %w", orderID, err)
	}

	uc.Broadcaster.Publish(domain.OrderRoom(orderID), domain.EventOrderStatus, domain.OrderStatusEvent{
		OrderID: orderID,
		Status:  domain.PaymentPending,
	})
	return nil
}

// GetOrder is the read path used by the payment UI for reconciliation.
func (uc *Usecase) GetOrder(orderID string) (*domain.Order, []*domain.PaymentAttempt, error) {
	order, err := uc.Orders.GetOrderByID(orderID)
	if err != nil {
		return nil, nil, err
	}
	attempts, err := uc.Payments.AttemptsByOrder(orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load payment attempts for order %s: %w", orderID, err)
	}
	return order, attempts, nil
}
