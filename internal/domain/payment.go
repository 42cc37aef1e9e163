package domain

import "time"

type AttemptOutcome string

const (
	OutcomeVerified AttemptOutcome = "VERIFIED"
	OutcomeFailed   AttemptOutcome = "FAILED"
)

// PaymentAttempt is the append-only record of one gateway callback, verified
// or failed. Verified attempts are the idempotency anchor: re-submitting the
// same (OrderID, GatewayPaymentID) pair returns the stored attempt instead
// of re-crediting the order.
type PaymentAttempt struct {
	ID               string
	OrderID          string
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string
	Outcome          AttemptOutcome
	FailureCode      string
	FailureReason    string
	FailureDetail    string
	CreatedAt        time.Time
}

// VerifiedPayment is the result handed back to the caller after a
// successful (or previously applied) verification.
type VerifiedPayment struct {
	OrderID          string
	GatewayOrderID   string
	GatewayPaymentID string
	PaidAt           time.Time
	AlreadyApplied   bool
}

// GatewayOrder is the handle returned by the payment gateway when an order
// is registered for checkout. IsMock marks handles minted by the test-mode
// branch so clients can skip the hosted checkout.
type GatewayOrder struct {
	GatewayOrderID string
	OrderID        string
	Amount         float64
	Currency       string
	IsMock         bool
}
