package mappers

import (
	"github.com/openbay/auction-service/internal/domain"
	"github.com/openbay/auction-service/internal/infrastructure/postgres/models"
)

func ToGORMOrder(o *domain.Order) *models.OrderModel {
	items := make([]models.OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		items[i] = models.OrderItemModel{
			OrderID:   o.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Mode:      item.Mode,
		}
	}
	return &models.OrderModel{
		ID:            o.ID,
		BuyerID:       o.BuyerID,
		AuctionID:     o.AuctionID,
		Items:         items,
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: o.PaymentStatus,
		TotalAmount:   o.TotalAmount,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func ToDomainOrder(m *models.OrderModel) *domain.Order {
	items := make([]domain.OrderItem, len(m.Items))
	for i, item := range m.Items {
		items[i] = domain.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Mode:      item.Mode,
		}
	}
	return &domain.Order{
		ID:            m.ID,
		BuyerID:       m.BuyerID,
		AuctionID:     m.AuctionID,
		Items:         items,
		PaymentMethod: m.PaymentMethod,
		PaymentStatus: m.PaymentStatus,
		TotalAmount:   m.TotalAmount,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
