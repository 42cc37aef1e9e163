package repository

import (
	"errors"

	"github.com/openbay/auction-service/internal/domain"
	"github.com/openbay/auction-service/internal/infrastructure/postgres/mappers"
	"github.com/openbay/auction-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultBidRepository struct {
	DB *gorm.DB
}

func NewDefaultBidRepository(db *gorm.DB) *DefaultBidRepository {
	return &DefaultBidRepository{DB: db}
}

// Append commits a bid and raises the auction's current bid in one
// transaction. The conditional update is the ledger's commit guard: the bid
// must clear the stored current bid by the full increment, so a commit that
// lands from another instance between validation and here (or a settlement
// flipping the status off ACTIVE) leaves no matching row and the whole
// commit rolls back with ErrBidConflict. Nothing is ever partially applied.
func (r *DefaultBidRepository) Append(bid *domain.Bid) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.AuctionModel{}).
			Where("id = ? AND status = ? AND current_bid <= ? - min_bid_increment", bid.AuctionID, domain.StatusActive, bid.Amount).
			Updates(map[string]any{"current_bid": bid.Amount, "updated_at": bid.PlacedAt})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrBidConflict
		}
		return tx.Create(mappers.ToGORMBid(bid)).Error
	})
}

func (r *DefaultBidRepository) HighestBid(auctionID string) (*domain.Bid, error) {
	var bidModel models.BidModel
	// Earlier bid wins at equal amount; equal amounts are not admitted in
	// the first place, so this tie-break only matters for imported data.
	err := r.DB.
		Where("auction_id = ?", auctionID).
		Order("amount DESC").
		Order("placed_at ASC").
		First(&bidModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoBids
		}
		return nil, err
	}
	return mappers.ToDomainBid(&bidModel), nil
}

func (r *DefaultBidRepository) History(auctionID string) ([]*domain.Bid, error) {
	var bidModels []models.BidModel
	if err := r.DB.
		Where("auction_id = ?", auctionID).
		Order("placed_at DESC").
		Order("id DESC").
		Find(&bidModels).Error; err != nil {
		return nil, err
	}

	bids := make([]*domain.Bid, len(bidModels))
	for i, m := range bidModels {
		bids[i] = mappers.ToDomainBid(&m)
	}
	return bids, nil
}
