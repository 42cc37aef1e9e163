package models

import (
	"time"

	"github.com/openbay/auction-service/internal/domain"
)

type PaymentAttemptModel struct {
	ID               string `gorm:"primaryKey;type:uuid"`
	OrderID          string `gorm:"type:uuid;index:idx_order_gateway_payment"`
	GatewayOrderID   string
	GatewayPaymentID string `gorm:"index:idx_order_gateway_payment"`
	GatewaySignature string
	Outcome          domain.AttemptOutcome `gorm:"index"`
	FailureCode      string
	FailureReason    string
	FailureDetail    string
	CreatedAt        time.Time
}
