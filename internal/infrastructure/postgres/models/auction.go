package models

import (
	"time"

	"github.com/openbay/auction-service/internal/domain"
)

type AuctionModel struct {
	ID              string `gorm:"primaryKey;type:uuid"`
	ProductID       string `gorm:"type:uuid;index"`
	SellerID        string `gorm:"type:uuid"`
	Title           string
	StartingBid     float64
	CurrentBid      float64
	MinBidIncrement float64
	StartTime       time.Time
	EndTime         time.Time            `gorm:"index:idx_status_end_time"`
	Status          domain.AuctionStatus `gorm:"index:idx_status_end_time"`
	WinnerID        string
	FinalBid        float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
