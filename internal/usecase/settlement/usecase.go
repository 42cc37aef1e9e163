package settlement

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
)

// Result describes the terminal outcome of one auction.
type Result struct {
	AuctionID string
	WinnerID  string
	FinalBid  float64
	OrderID   string
	HasWinner bool
}

// Usecase closes ended auctions: flips status exactly once, assigns the
// winner from the ledger, materializes the win into a payable order and
// announces the outcome. A close without bids is a valid terminal outcome,
// not an error.
type Usecase struct {
	Auctions    domain.AuctionRepository
	Bids        domain.BidRepository
	Orders      domain.OrderRepository
	Broadcaster domain.Broadcaster
	Publisher   domain.AuditPublisher
	Metrics     *metrics.AuctionMetrics

	now func() time.Time
}

func NewUsecase(
	auctionRepo domain.AuctionRepository,
	bidRepo domain.BidRepository,
	orderRepo domain.OrderRepository,
	broadcaster domain.Broadcaster,
	auditPublisher domain.AuditPublisher,
	auctionMetrics *metrics.AuctionMetrics,
) *Usecase {
	return &Usecase{
		Auctions:    auctionRepo,
		Bids:        bidRepo,
		Orders:      orderRepo,
		Broadcaster: broadcaster,
		Publisher:   auditPublisher,
		Metrics:     auctionMetrics,
		now:         time.Now,
	}
}

// SweepDueAuctions ends every ACTIVE auction whose end time has passed and
// settles it. Safe to run from overlapping tickers or multiple instances:
// the ACTIVE->ENDED compare-and-set admits exactly one winner per auction.
func (uc *Usecase) SweepDueAuctions(ctx context.Context) error {
	due, err := uc.Auctions.FindDueAuctions(uc.now())
	if err != nil {
		return fmt.Errorf("failed to scan due auctions: %w", err)
	}

	for _, auction := range due {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if _, err := uc.Settle(ctx, auction.ID); err != nil {
			logger.Error("failed to settle auction", map[string]any{"auction_id": auction.ID, "error": err.Error()})
		}
	}
	return nil
}

// Settle drives one auction to its terminal state. Idempotent: settling an
// already-ended auction returns the recorded outcome without repeating any
// side effect.
func (uc *Usecase) Settle(ctx context.Context, auctionID string) (*Result, error) {
	ended, err := uc.Auctions.MarkEnded(auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to end auction %s: %w", auctionID, err)
	}
	if !ended {
		// Someone else flipped the status first (or the auction was
		// cancelled). Report the stored outcome; no side effects.
		return uc.storedResult(auctionID)
	}

	highest, err := uc.Bids.HighestBid(auctionID)
	if err != nil && !errors.Is(err, domain.ErrNoBids) {
		return nil, fmt.Errorf("failed to read winning bid for auction %s: %w", auctionID, err)
	}

	auction, err := uc.Auctions.GetAuctionByID(auctionID)
	if err != nil {
		return nil, err
	}

	if highest == nil {
		// Closed without bids.
		uc.announce(auction, &Result{AuctionID: auctionID})
		if uc.Metrics != nil {
			uc.Metrics.RecordSettlement("no_bids")
		}
		return &Result{AuctionID: auctionID}, nil
	}

	if _, err := uc.Auctions.SetWinner(auctionID, highest.BidderID, highest.Amount); err != nil {
		return nil, fmt.Errorf("failed to assign winner for auction %s: %w", auctionID, err)
	}

	order, err := uc.materializeOrder(auction, highest)
	if err != nil {
		// Winner is recorded; order creation failing is recoverable by a
		// manual retry and must not mask the settlement itself.
		logger.Error("failed to create order for auction win", map[string]any{"auction_id": auctionID, "winner_id": highest.BidderID, "error": err.Error()})
	}

	result := &Result{
		AuctionID: auctionID,
		WinnerID:  highest.BidderID,
		FinalBid:  highest.Amount,
		HasWinner: true,
	}
	if order != nil {
		result.OrderID = order.ID
	}

	uc.announce(auction, result)
	if uc.Metrics != nil {
		uc.Metrics.RecordSettlement("winner")
	}
	return result, nil
}

// Cancel is the administrative early-cancel. The CANCELLED status is sticky
// and terminal; bids in the ledger stay recorded but no winner is assigned.
func (uc *Usecase) Cancel(ctx context.Context, auctionID string) error {
	cancelled, err := uc.Auctions.MarkCancelled(auctionID)
	if err != nil {
		return fmt.Errorf("failed to cancel auction %s: %w", auctionID, err)
	}
	if !cancelled {
		auction, gerr := uc.Auctions.GetAuctionByID(auctionID)
		if gerr != nil {
			return gerr
		}
		return fmt.Errorf("%w: auction %s is already %s", domain.ErrAuctionNotActive, auctionID, auction.Status)
	}

	uc.Broadcaster.Publish(domain.AuctionRoom(auctionID), domain.EventNotification, domain.NotificationEvent{
		Message: "auction was cancelled by the seller",
	})
	if uc.Metrics != nil {
		uc.Metrics.RecordCancellation()
	}
	return nil
}

func (uc *Usecase) storedResult(auctionID string) (*Result, error) {
	auction, err := uc.Auctions.GetAuctionByID(auctionID)
	if err != nil {
		return nil, err
	}
	return &Result{
		AuctionID: auctionID,
		WinnerID:  auction.WinnerID,
		FinalBid:  auction.FinalBid,
		HasWinner: auction.HasWinner(),
	}, nil
}

func (uc *Usecase) materializeOrder(auction *domain.Auction, winning *domain.Bid) (*domain.Order, error) {
	now := uc.now().UTC()
	order := &domain.Order{
		ID:        uuid.New().String(),
		BuyerID:   winning.BidderID,
		AuctionID: auction.ID,
		Items: []domain.OrderItem{{
			ProductID: auction.ProductID,
			Quantity:  1,
			UnitPrice: winning.Amount,
			Mode:      domain.ItemModeAuction,
		}},
		PaymentMethod: domain.MethodOnline,
		PaymentStatus: domain.PaymentPending,
		TotalAmount:   winning.Amount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.Orders.CreateOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

func (uc *Usecase) announce(auction *domain.Auction, result *Result) {
	uc.Broadcaster.Publish(domain.AuctionRoom(auction.ID), domain.EventAuctionEnded, domain.AuctionEndedEvent{
		AuctionID: auction.ID,
		ProductID: auction.ProductID,
		WinnerID:  result.WinnerID,
		FinalBid:  result.FinalBid,
		OrderID:   result.OrderID,
	})

	go func(event publisher.SettlementEvent) {
		if err := uc.Publisher.PublishJSON(publisher.TopicSettlements, event.AuctionID, event); err != nil {
			logger.Error("failed to publish settlement audit event", map[string]any{"auction_id": event.AuctionID, "error": err.Error()})
		}
	}(publisher.SettlementEvent{
		AuctionID: auction.ID,
		WinnerID:  result.WinnerID,
		FinalBid:  result.FinalBid,
		OrderID:   result.OrderID,
		EndedAt:   uc.now().UTC(),
	})
}
