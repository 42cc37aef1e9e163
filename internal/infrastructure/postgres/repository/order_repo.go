package repository

import (
	"errors"
	"time"

	"github.com/openbay/auction-service/internal/domain"
	"github.com/openbay/auction-service/internal/infrastructure/postgres/mappers"
	"github.com/openbay/auction-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultOrderRepository struct {
	DB *gorm.DB
}

func NewDefaultOrderRepository(db *gorm.DB) *DefaultOrderRepository {
	return &DefaultOrderRepository{DB: db}
}

func (r *DefaultOrderRepository) CreateOrder(order *domain.Order) error {
	orderModel := mappers.ToGORMOrder(order)
	if err := r.DB.Create(orderModel).Error; err != nil {
		return err
	}
	return nil
}

func (r *DefaultOrderRepository) GetOrderByID(orderID string) (*domain.Order, error) {
	var order models.OrderModel
	if err := r.DB.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return mappers.ToDomainOrder(&order), nil
}

// SetPaymentStatus flips the payment status only when the current value
// matches. Duplicate gateway callbacks fail the guard and leave the order
// untouched.
func (r *DefaultOrderRepository) SetPaymentStatus(orderID string, from, to domain.PaymentStatus) (bool, error) {
	res := r.DB.Model(&models.OrderModel{}).
		Where("id = ? AND payment_status = ?", orderID, from).
		Updates(map[string]any{"payment_status": to, "updated_at": time.Now()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *DefaultOrderRepository) SetPaymentMethod(orderID string, method domain.PaymentMethod) error {
	res := r.DB.Model(&models.OrderModel{}).
		Where("id = ?", orderID).
		Updates(map[string]any{"payment_method": method, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
