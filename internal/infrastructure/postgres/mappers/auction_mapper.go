package mappers

import (
	"github.com/openbay/auction-service/internal/domain"
	"github.com/openbay/auction-service/internal/infrastructure/postgres/models"
)

func ToGORMAuction(a *domain.Auction) *models.AuctionModel {
	return &models.AuctionModel{
		ID:              a.ID,
		ProductID:       a.ProductID,
		SellerID:        a.SellerID,
		Title:           a.Title,
		StartingBid:     a.StartingBid,
		CurrentBid:      a.CurrentBid,
		MinBidIncrement: a.MinBidIncrement,
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		Status:          a.Status,
		WinnerID:        a.WinnerID,
		FinalBid:        a.FinalBid,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func ToDomainAuction(m *models.AuctionModel) *domain.Auction {
	return &domain.Auction{
		ID:              m.ID,
		ProductID:       m.ProductID,
		SellerID:        m.SellerID,
		Title:           m.Title,
		StartingBid:     m.StartingBid,
		CurrentBid:      m.CurrentBid,
		MinBidIncrement: m.MinBidIncrement,
		StartTime:       m.StartTime,
		EndTime:         m.EndTime,
		Status:          m.Status,
		WinnerID:        m.WinnerID,
		FinalBid:        m.FinalBid,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
