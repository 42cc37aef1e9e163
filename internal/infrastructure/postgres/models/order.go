package models

import (
	"time"

	"github.com/openbay/auction-service/internal/domain"
)

type OrderModel struct {
	ID            string               `gorm:"primaryKey;type:uuid"`
	BuyerID       string               `gorm:"type:uuid;index"`
	AuctionID     string               `gorm:"type:uuid;index"`
	Items         []OrderItemModel     `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	PaymentMethod domain.PaymentMethod
	PaymentStatus domain.PaymentStatus `gorm:"index"`
	TotalAmount   float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type OrderItemModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	OrderID   string `gorm:"type:uuid;index"`
	ProductID string `gorm:"type:uuid"`
	Quantity  int32
	UnitPrice float64
	Mode      string
}
