package mappers

import (
	"github.com/openbay/auction-service/internal/domain"
	"github.com/openbay/auction-service/internal/infrastructure/postgres/models"
)

func ToGORMPaymentAttempt(a *domain.PaymentAttempt) *models.PaymentAttemptModel {
	return &models.PaymentAttemptModel{
		ID:               a.ID,
		OrderID:          a.OrderID,
		GatewayOrderID:   a.GatewayOrderID,
		GatewayPaymentID: a.GatewayPaymentID,
		GatewaySignature: a.GatewaySignature,
		Outcome:          a.Outcome,
		FailureCode:      a.FailureCode,
		FailureReason:    a.FailureReason,
		FailureDetail:    a.FailureDetail,
		CreatedAt:        a.CreatedAt,
	}
}

func ToDomainPaymentAttempt(m *models.PaymentAttemptModel) *domain.PaymentAttempt {
	return &domain.PaymentAttempt{
		ID:               m.ID,
		OrderID:          m.OrderID,
		GatewayOrderID:   m.GatewayOrderID,
		GatewayPaymentID: m.GatewayPaymentID,
		GatewaySignature: m.GatewaySignature,
		Outcome:          m.Outcome,
		FailureCode:      m.FailureCode,
		FailureReason:    m.FailureReason,
		FailureDetail:    m.FailureDetail,
		CreatedAt:        m.CreatedAt,
	}
}
