package models

import "time"

type BidModel struct {
	ID        string       `gorm:"primaryKey;type:uuid"`
	AuctionID string       `gorm:"type:uuid;index:idx_auction_placed"`
	Auction   AuctionModel `gorm:"foreignKey:AuctionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	BidderID  string       `gorm:"type:uuid;index"`
	Amount    float64
	PlacedAt  time.Time `gorm:"index:idx_auction_placed"`
	IsAutoBid bool
}
