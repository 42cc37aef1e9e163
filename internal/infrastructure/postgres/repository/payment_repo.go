package repository

import (
	"errors"

	"github.com/openbay/auction-service/internal/domain"
	"github.com/openbay/auction-service/internal/infrastructure/postgres/mappers"
	"github.com/openbay/auction-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultPaymentRepository struct {
	DB *gorm.DB
}

func NewDefaultPaymentRepository(db *gorm.DB) *DefaultPaymentRepository {
	return &DefaultPaymentRepository{DB: db}
}

func (r *DefaultPaymentRepository) RecordAttempt(a *domain.PaymentAttempt) error {
	attemptModel := mappers.ToGORMPaymentAttempt(a)
	if err := r.DB.Create(attemptModel).Error; err != nil {
		return err
	}
	return nil
}

func (r *DefaultPaymentRepository) FindVerified(orderID, gatewayPaymentID string) (*domain.PaymentAttempt, error) {
	var attempt models.PaymentAttemptModel
	err := r.DB.
		Where("order_id = ? AND gateway_payment_id = ? AND outcome = ?",
			orderID, gatewayPaymentID, domain.OutcomeVerified).
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return mappers.ToDomainPaymentAttempt(&attempt), nil
}

func (r *DefaultPaymentRepository) AttemptsByOrder(orderID string) ([]*domain.PaymentAttempt, error) {
	var attemptModels []models.PaymentAttemptModel
	if err := r.DB.
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&attemptModels).Error; err != nil {
		return nil, err
	}

	attempts := make([]*domain.PaymentAttempt, len(attemptModels))
	for i, m := range attemptModels {
		attempts[i] = mappers.ToDomainPaymentAttempt(&m)
	}
	return attempts, nil
}
