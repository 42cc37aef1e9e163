package bidding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/openbay/auction-service/internal/domain"
	publisher "github.com/openbay/auction-service/internal/infrastructure/kafka"
	"github.com/openbay/auction-service/internal/infrastructure/logger"
	"github.com/openbay/auction-service/internal/infrastructure/metrics"
	"github.com/openbay/auction-service/internal/pkg/keylock"
)

// Policy holds the deployment-configurable admission knobs.
type Policy struct {
	// AllowSelfOutbid lets the current highest bidder raise their own bid.
	// When false such attempts are rejected as redundant.
	AllowSelfOutbid bool
}

// Usecase serializes bid admission per auction: read current highest,
// validate, commit is atomic with respect to other bidders on the same
// auction. Different auctions admit fully in parallel.
type Usecase struct {
	Auctions    domain.AuctionRepository
	Bids        domain.BidRepository
	Broadcaster domain.Broadcaster
	Publisher   domain.AuditPublisher
	Metrics     *metrics.AuctionMetrics
	Policy      Policy

	locks *keylock.KeyedMutex
	now   func() time.Time
}

func NewUsecase(
	auctionRepo domain.AuctionRepository,
	bidRepo domain.BidRepository,
	broadcaster domain.Broadcaster,
	auditPublisher domain.AuditPublisher,
	auctionMetrics *metrics.AuctionMetrics,
	policy Policy,
) *Usecase {
	return &Usecase{
		Auctions:    auctionRepo,
		Bids:        bidRepo,
		Broadcaster: broadcaster,
		Publisher:   auditPublisher,
		Metrics:     auctionMetrics,
		Policy:      policy,
		locks:       keylock.New(),
		now:         time.Now,
	}
}

// PlaceBid admits or rejects one bid attempt. On success the committed bid
// is handed to the broadcaster before returning, so a caller observing
// success knows the bid-update event is enqueued. Losing a race never drops
// the bid silently: the attempt is re-validated once against fresh state,
// then surfaced as ErrBidTooLow carrying the updated floor.
func (uc *Usecase) PlaceBid(ctx context.Context, auctionID, bidderID string, amount float64) (*domain.Bid, error) {
	if auctionID == "" || bidderID == "" {
		return nil, fmt.Errorf("%w: missing auction or bidder id", domain.ErrInvalidBid)
	}

	unlock := uc.locks.Lock(auctionID)
	defer unlock()

	started := uc.now()
	bid, err := uc.admit(ctx, auctionID, bidderID, amount)
	if uc.Metrics != nil {
		uc.Metrics.RecordAdmissionDuration(uc.now().Sub(started).Seconds())
		if err != nil {
			uc.Metrics.RecordBidRejected(rejectionReason(err))
		} else {
			uc.Metrics.RecordBidAccepted()
		}
	}
	return bid, err
}

func (uc *Usecase) admit(ctx context.Context, auctionID, bidderID string, amount float64) (*domain.Bid, error) {
	for attempt := 0; ; attempt++ {
		auction, err := uc.Auctions.GetAuctionByID(auctionID)
		if err != nil {
			return nil, err
		}

		now := uc.now()
		if domain.StateOf(auction, now) != domain.StatusActive {
			return nil, fmt.Errorf("%w: auction %s", domain.ErrAuctionNotActive, auctionID)
		}

		floor := auction.Floor()
		if !domain.MeetsFloor(amount, floor) {
			return nil, fmt.Errorf("%w: minimum acceptable bid is %.2f", domain.ErrBidTooLow, floor)
		}

		if !uc.Policy.AllowSelfOutbid {
			highest, err := uc.Bids.HighestBid(auctionID)
			if err != nil && !errors.Is(err, domain.ErrNoBids) {
				return nil, fmt.Errorf("failed to check highest bid: %w", err)
			}
			if highest != nil && highest.BidderID == bidderID {
				return nil, fmt.Errorf("%w: current highest bid is yours", domain.ErrRedundantBid)
			}
		}

		bid := &domain.Bid{
			ID:        uuid.New().String(),
			AuctionID: auctionID,
			BidderID:  bidderID,
			Amount:    amount,
			PlacedAt:  now.UTC(),
		}

		if err := uc.Bids.Append(bid); err != nil {
			if errors.Is(err, domain.ErrBidConflict) && attempt == 0 {
				// Lost a race against a concurrent commit. Re-validate once
				// against the fresh floor before giving up.
				continue
			}
			if errors.Is(err, domain.ErrBidConflict) {
				fresh, ferr := uc.Auctions.GetAuctionByID(auctionID)
				if ferr == nil {
					return nil, fmt.Errorf("%w: minimum acceptable bid is %.2f", domain.ErrBidTooLow, fresh.Floor())
				}
				return nil, fmt.Errorf("%w: auction moved on", domain.ErrBidTooLow)
			}
			return nil, fmt.Errorf("failed to commit bid on auction %s: %w", auctionID, err)
		}

		// Committed. Enqueue the broadcast before returning.
		uc.Broadcaster.Publish(domain.AuctionRoom(auctionID), domain.EventBidUpdate, domain.BidUpdateEvent{
			AuctionID:  auctionID,
			ProductID:  auction.ProductID,
			CurrentBid: bid.Amount,
			BidderID:   bid.BidderID,
			PlacedAt:   bid.PlacedAt,
		})

		go func(event publisher.BidEvent) {
			if err := uc.Publisher.PublishJSON(publisher.TopicBids, event.AuctionID, event); err != nil {
				logger.Error("failed to publish bid audit event", map[string]any{"auction_id": event.AuctionID, "error": err.Error()})
			}
		}(publisher.BidEvent{
			BidID:     bid.ID,
			AuctionID: bid.AuctionID,
			BidderID:  bid.BidderID,
			Amount:    bid.Amount,
			PlacedAt:  bid.PlacedAt,
		})

		return bid, nil
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrAuctionNotActive):
		return "auction_not_active"
	case errors.Is(err, domain.ErrAuctionNotFound):
		return "auction_not_found"
	case errors.Is(err, domain.ErrRedundantBid):
		return "redundant_bid"
	case errors.Is(err, domain.ErrInvalidBid):
		return "invalid_request"
	case errors.Is(err, domain.ErrBidTooLow):
		return "bid_too_low"
	default:
		return "internal"
	}
}
