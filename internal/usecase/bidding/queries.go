package bidding

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/openbay/auction-service/internal/domain"
)

// AuctionView is the read-path snapshot handed to clients, with the
// effective state and current floor computed at query time. Reconnecting
// subscribers use it to reconcile missed events.
type AuctionView struct {
	Auction *domain.Auction
	State   domain.AuctionStatus
	Floor   float64
}

// GetAuction returns the auction with its clock-derived state.
func (uc *Usecase) GetAuction(auctionID string) (*AuctionView, error) {
	auction, err := uc.Auctions.GetAuctionByID(auctionID)
	if err != nil {
		return nil, err
	}
	return &AuctionView{
		Auction: auction,
		State:   domain.StateOf(auction, uc.now()),
		Floor:   auction.Floor(),
	}, nil
}

// ListOpenAuctions returns auctions still accepting bids.
func (uc *Usecase) ListOpenAuctions() ([]*AuctionView, error) {
	auctions, err := uc.Auctions.ListOpenAuctions(uc.now())
	if err != nil {
		return nil, err
	}
	views := make([]*AuctionView, len(auctions))
	for i, a := range auctions {
		views[i] = &AuctionView{Auction: a, State: domain.StateOf(a, uc.now()), Floor: a.Floor()}
	}
	return views, nil
}

// History returns the auction's bids, newest first. An auction with no bids
// returns an empty slice, not an error.
func (uc *Usecase) History(auctionID string) ([]*domain.Bid, error) {
	if _, err := uc.Auctions.GetAuctionByID(auctionID); err != nil {
		return nil, err
	}
	bids, err := uc.Bids.History(auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bid history for auction %s: %w", auctionID, err)
	}
	return bids, nil
}

// HighestBid returns the winning bid, or nil when there are no bids yet.
func (uc *Usecase) HighestBid(auctionID string) (*domain.Bid, error) {
	bid, err := uc.Bids.HighestBid(auctionID)
	if err != nil {
		if errors.Is(err, domain.ErrNoBids) {
			return nil, nil
		}
		return nil, err
	}
	return bid, nil
}

// CreateAuction registers a new auction in SCHEDULED/ACTIVE terms: the
// stored status is ACTIVE (open) and the effective state is derived from
// the start time by the clock.
func (uc *Usecase) CreateAuction(a *domain.Auction) error {
	if a.EndTime.Before(a.StartTime) || a.EndTime.Equal(a.StartTime) {
		return fmt.Errorf("auction end time must be after start time")
	}
	if a.StartingBid <= 0 || a.MinBidIncrement <= 0 {
		return fmt.Errorf("starting bid and increment must be positive")
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.Status = domain.StatusActive
	now := uc.now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	return uc.Auctions.CreateAuction(a)
}
