package repository

import (
	"errors"
	"time"

	"github.com/openbay/auction-service/internal/domain"
	"github.com/openbay/auction-service/internal/infrastructure/postgres/mappers"
	"github.com/openbay/auction-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultAuctionRepository struct {
	DB *gorm.DB
}

func NewDefaultAuctionRepository(db *gorm.DB) *DefaultAuctionRepository {
	return &DefaultAuctionRepository{DB: db}
}

func (r *DefaultAuctionRepository) CreateAuction(a *domain.Auction) error {
	auctionModel := mappers.ToGORMAuction(a)
	if err := r.DB.Create(auctionModel).Error; err != nil {
		return err
	}
	return nil
}

func (r *DefaultAuctionRepository) GetAuctionByID(auctionID string) (*domain.Auction, error) {
	var auction models.AuctionModel
	if err := r.DB.First(&auction, "id = ?", auctionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, err
	}
	return mappers.ToDomainAuction(&auction), nil
}

func (r *DefaultAuctionRepository) ListOpenAuctions(now time.Time) ([]*domain.Auction, error) {
	var auctionModels []models.AuctionModel
	if err := r.DB.
		Where("status = ?", domain.StatusActive).
		Where("end_time > ?", now).
		Order("end_time ASC").
		Find(&auctionModels).Error; err != nil {
		return nil, err
	}

	auctions := make([]*domain.Auction, len(auctionModels))
	for i, m := range auctionModels {
		auctions[i] = mappers.ToDomainAuction(&m)
	}
	return auctions, nil
}

func (r *DefaultAuctionRepository) FindDueAuctions(now time.Time) ([]*domain.Auction, error) {
	var auctionModels []models.AuctionModel
	if err := r.DB.
		Where("status = ?", domain.StatusActive).
		Where("end_time <= ?", now).
		Find(&auctionModels).Error; err != nil {
		return nil, err
	}

	auctions := make([]*domain.Auction, len(auctionModels))
	for i, m := range auctionModels {
		auctions[i] = mappers.ToDomainAuction(&m)
	}
	return auctions, nil
}

// MarkEnded is the compare-and-set that makes settlement exactly-once:
// overlapping sweeps race on the ACTIVE guard and only one wins.
func (r *DefaultAuctionRepository) MarkEnded(auctionID string) (bool, error) {
	res := r.DB.Model(&models.AuctionModel{}).
		Where("id = ? AND status = ?", auctionID, domain.StatusActive).
		Updates(map[string]any{"status": domain.StatusEnded, "updated_at": time.Now()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *DefaultAuctionRepository) MarkCancelled(auctionID string) (bool, error) {
	res := r.DB.Model(&models.AuctionModel{}).
		Where("id = ? AND status = ?", auctionID, domain.StatusActive).
		Updates(map[string]any{"status": domain.StatusCancelled, "updated_at": time.Now()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *DefaultAuctionRepository) SetWinner(auctionID, winnerID string, finalBid float64) (bool, error) {
	res := r.DB.Model(&models.AuctionModel{}).
		Where("id = ? AND winner_id = ''", auctionID).
		Updates(map[string]any{
			"winner_id":  winnerID,
			"final_bid":  finalBid,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
