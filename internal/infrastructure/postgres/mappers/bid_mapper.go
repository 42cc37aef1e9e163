package mappers

import (
	"github.com/openbay/auction-service/internal/domain"
	"github.com/openbay/auction-service/internal/infrastructure/postgres/models"
)

func ToGORMBid(b *domain.Bid) *models.BidModel {
	return &models.BidModel{
		ID:        b.ID,
		AuctionID: b.AuctionID,
		BidderID:  b.BidderID,
		Amount:    b.Amount,
		PlacedAt:  b.PlacedAt,
		IsAutoBid: b.IsAutoBid,
	}
}

func ToDomainBid(m *models.BidModel) *domain.Bid {
	return &domain.Bid{
		ID:        m.ID,
		AuctionID: m.AuctionID,
		BidderID:  m.BidderID,
		Amount:    m.Amount,
		PlacedAt:  m.PlacedAt,
		IsAutoBid: m.IsAutoBid,
	}
}
