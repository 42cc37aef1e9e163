package bidding

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/openbay/auction-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuctionRepo struct {
	mu       sync.Mutex
	auctions map[string]*domain.Auction
}

func newFakeAuctionRepo() *fakeAuctionRepo {
	return &fakeAuctionRepo{auctions: make(map[string]*domain.Auction)}
}

func (r *fakeAuctionRepo) CreateAuction(a *domain.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *a
	r.auctions[a.ID] = &copied
	return nil
}

func (r *fakeAuctionRepo) GetAuctionByID(auctionID string) (*domain.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.auctions[auctionID]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAuctionRepo) ListOpenAuctions(now time.Time) ([]*domain.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Auction
	for _, a := range r.auctions {
		if a.Status == domain.StatusActive && a.EndTime.After(now) {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeAuctionRepo) FindDueAuctions(now time.Time) ([]*domain.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Auction
	for _, a := range r.auctions {
		if a.Status == domain.StatusActive && !a.EndTime.After(now) {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeAuctionRepo) MarkEnded(auctionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.auctions[auctionID]
	if !ok || a.Status != domain.StatusActive {
		return false, nil
	}
	a.Status = domain.StatusEnded
	return true, nil
}

func (r *fakeAuctionRepo) MarkCancelled(auctionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.auctions[auctionID]
	if !ok || a.Status != domain.StatusActive {
		return false, nil
	}
	a.Status = domain.StatusCancelled
	return true, nil
}

func (r *fakeAuctionRepo) SetWinner(auctionID, winnerID string, finalBid float64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.auctions[auctionID]
	if !ok || a.WinnerID != "" {
		return false, nil
	}
	a.WinnerID = winnerID
	a.FinalBid = finalBid
	return true, nil
}

// fakeBidRepo mirrors the production commit guard: the bid only lands when
// it clears the auction's current bid by the full increment while the
// auction is ACTIVE.
type fakeBidRepo struct {
	mu       sync.Mutex
	auctions *fakeAuctionRepo
	bids     map[string][]*domain.Bid
}

func newFakeBidRepo(auctions *fakeAuctionRepo) *fakeBidRepo {
	return &fakeBidRepo{auctions: auctions, bids: make(map[string][]*domain.Bid)}
}

func (r *fakeBidRepo) Append(bid *domain.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auctions.mu.Lock()
	defer r.auctions.mu.Unlock()

	a, ok := r.auctions.auctions[bid.AuctionID]
	if !ok {
		return domain.ErrAuctionNotFound
	}
	if a.Status != domain.StatusActive || bid.Amount < a.CurrentBid+a.MinBidIncrement {
		return domain.ErrBidConflict
	}
	a.CurrentBid = bid.Amount
	copied := *bid
	r.bids[bid.AuctionID] = append(r.bids[bid.AuctionID], &copied)
	return nil
}

// contestedBidRepo injects lost commit races: before each scripted rival
// amount is exhausted, Append raises the auction's current bid to that
// amount and reports a conflict, as if another instance committed between
// validation and commit.
type contestedBidRepo struct {
	*fakeBidRepo
	rivalAmounts []float64
}

func (r *contestedBidRepo) Append(bid *domain.Bid) error {
	r.mu.Lock()
	if len(r.rivalAmounts) > 0 {
		amount := r.rivalAmounts[0]
		r.rivalAmounts = r.rivalAmounts[1:]
		r.mu.Unlock()

		r.auctions.mu.Lock()
		r.auctions.auctions[bid.AuctionID].CurrentBid = amount
		r.auctions.mu.Unlock()
		return domain.ErrBidConflict
	}
	r.mu.Unlock()
	return r.fakeBidRepo.Append(bid)
}

func (r *fakeBidRepo) HighestBid(auctionID string) (*domain.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bids := r.bids[auctionID]
	if len(bids) == 0 {
		return nil, domain.ErrNoBids
	}
	best := bids[0]
	for _, b := range bids[1:] {
		if b.Amount > best.Amount {
			best = b
		}
	}
	copied := *best
	return &copied, nil
}

func (r *fakeBidRepo) History(auctionID string) ([]*domain.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bids := r.bids[auctionID]
	out := make([]*domain.Bid, len(bids))
	for i := range bids {
		copied := *bids[len(bids)-1-i]
		out[i] = &copied
	}
	return out, nil
}

type publishedEvent struct {
	Room    string
	Type    domain.EventType
	Payload any
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (b *fakeBroadcaster) Publish(room string, event domain.EventType, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, publishedEvent{Room: room, Type: event, Payload: payload})
}

func (b *fakeBroadcaster) Events() []publishedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]publishedEvent, len(b.events))
	copy(out, b.events)
	return out
}

type fakeAuditPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *fakeAuditPublisher) PublishJSON(topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func activeAuction(id string, currentBid, increment float64) *domain.Auction {
	now := time.Now()
	return &domain.Auction{
		ID:              id,
		ProductID:       "product-1",
		SellerID:        "seller-1",
		StartingBid:     100,
		CurrentBid:      currentBid,
		MinBidIncrement: increment,
		StartTime:       now.Add(-time.Hour),
		EndTime:         now.Add(time.Hour),
		Status:          domain.StatusActive,
	}
}

func newBiddingHarness(t *testing.T, policy Policy) (*Usecase, *fakeAuctionRepo, *fakeBidRepo, *fakeBroadcaster) {
	t.Helper()
	auctions := newFakeAuctionRepo()
	bids := newFakeBidRepo(auctions)
	broadcaster := &fakeBroadcaster{}
	uc := NewUsecase(auctions, bids, broadcaster, &fakeAuditPublisher{}, nil, policy)
	return uc, auctions, bids, broadcaster
}

func TestPlaceBid_AcceptsAndRaisesCurrentBid(t *testing.T) {
	uc, auctions, _, broadcaster := newBiddingHarness(t, Policy{AllowSelfOutbid: true})
	require.NoError(t, auctions.CreateAuction(activeAuction("a1", 0, 10)))

	bid, err := uc.PlaceBid(context.Background(), "a1", "alice", 110)
	require.NoError(t, err)
	assert.Equal(t, "alice", bid.BidderID)
	assert.Equal(t, 110.0, bid.Amount)

	stored, err := auctions.GetAuctionByID("a1")
	require.NoError(t, err)
	assert.Equal(t, 110.0, stored.CurrentBid)

	events := broadcaster.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventBidUpdate, events[0].Type)
	assert.Equal(t, domain.AuctionRoom("a1"), events[0].Room)
}

func TestPlaceBid_RejectsBelowFloor(t *testing.T) {
	uc, auctions, _, broadcaster := newBiddingHarness(t, Policy{AllowSelfOutbid: true})
	require.NoError(t, auctions.CreateAuction(activeAuction("a1", 200, 10)))

	tests := []struct {
		name   string
		amount float64
	}{
		{"below current bid", 150},
		{"equal to current bid", 200},
		{"above current but below increment", 205},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.PlaceBid(context.Background(), "a1", "bob", tt.amount)
			assert.ErrorIs(t, err, domain.ErrBidTooLow)
		})
	}

	// Floor itself is acceptable.
	_, err := uc.PlaceBid(context.Background(), "a1", "bob", 210)
	require.NoError(t, err)
	assert.Len(t, broadcaster.Events(), 1)
}

func TestPlaceBid_FirstBidFloorIsStartPlusIncrement(t *testing.T) {
	uc, auctions, _, _ := newBiddingHarness(t, Policy{AllowSelfOutbid: true})
	require.NoError(t, auctions.CreateAuction(activeAuction("a1", 0, 25)))

	_, err := uc.PlaceBid(context.Background(), "a1", "alice", 120)
	assert.ErrorIs(t, err, domain.ErrBidTooLow)

	_, err = uc.PlaceBid(context.Background(), "a1", "alice", 125)
	assert.NoError(t, err)
}

func TestPlaceBid_RejectsWhenNotActive(t *testing.T) {
	uc, auctions, _, _ := newBiddingHarness(t, Policy{AllowSelfOutbid: true})

	now := time.Now()
	scheduled := activeAuction("scheduled", 0, 10)
	scheduled.StartTime = now.Add(time.Hour)
	scheduled.EndTime = now.Add(2 * time.Hour)
	require.NoError(t, auctions.CreateAuction(scheduled))

	expired := activeAuction("expired", 0, 10)
	expired.StartTime = now.Add(-2 * time.Hour)
	expired.EndTime = now.Add(-time.Hour)
	require.NoError(t, auctions.CreateAuction(expired))

	cancelled := activeAuction("cancelled", 0, 10)
	cancelled.Status = domain.StatusCancelled
	require.NoError(t, auctions.CreateAuction(cancelled))

	for _, id := range []string{"scheduled", "expired", "cancelled"} {
		_, err := uc.PlaceBid(context.Background(), id, "alice", 1000)
		assert.ErrorIs(t, err, domain.ErrAuctionNotActive, id)
	}

	_, err := uc.PlaceBid(context.Background(), "missing", "alice", 1000)
	assert.ErrorIs(t, err, domain.ErrAuctionNotFound)
}

func TestPlaceBid_SelfOutbidPolicy(t *testing.T) {
	t.Run("allowed", func(t *testing.T) {
		uc, auctions, _, _ := newBiddingHarness(t, Policy{AllowSelfOutbid: true})
		require.NoError(t, auctions.CreateAuction(activeAuction("a1", 0, 10)))

		_, err := uc.PlaceBid(context.Background(), "a1", "alice", 110)
		require.NoError(t, err)
		_, err = uc.PlaceBid(context.Background(), "a1", "alice", 120)
		assert.NoError(t, err)
	})

	t.Run("rejected as redundant", func(t *testing.T) {
		uc, auctions, _, _ := newBiddingHarness(t, Policy{AllowSelfOutbid: false})
		require.NoError(t, auctions.CreateAuction(activeAuction("a1", 0, 10)))

		_, err := uc.PlaceBid(context.Background(), "a1", "alice", 110)
		require.NoError(t, err)
		_, err = uc.PlaceBid(context.Background(), "a1", "alice", 120)
		assert.ErrorIs(t, err, domain.ErrRedundantBid)

		// A different bidder still gets through.
		_, err = uc.PlaceBid(context.Background(), "a1", "bob", 120)
		assert.NoError(t, err)
	})
}

func TestPlaceBid_ConcurrentBiddersKeepLedgerMonotonic(t *testing.T) {
	uc, auctions, bids, _ := newBiddingHarness(t, Policy{AllowSelfOutbid: true})
	require.NoError(t, auctions.CreateAuction(activeAuction("a1", 0, 1)))

	const bidders = 20
	var wg sync.WaitGroup
	wg.Add(bidders)
	for i := 0; i < bidders; i++ {
		go func(i int) {
			defer wg.Done()
			amount := 101 + float64(i)
			_, _ = uc.PlaceBid(context.Background(), "a1", fmt.Sprintf("bidder-%d", i), amount)
		}(i)
	}
	wg.Wait()

	history, err := bids.History("a1")
	require.NoError(t, err)
	require.NotEmpty(t, history)

	// History is newest first. Every accepted bid strictly raised the
	// previous high, so replayed oldest-to-newest the amounts increase.
	for i := len(history) - 1; i > 0; i-- {
		assert.Greater(t, history[i-1].Amount, history[i].Amount)
	}

	stored, err := auctions.GetAuctionByID("a1")
	require.NoError(t, err)
	highest, err := bids.HighestBid("a1")
	require.NoError(t, err)
	assert.Equal(t, highest.Amount, stored.CurrentBid)
}

func TestPlaceBid_LostRaceRetriesOnceAndCommits(t *testing.T) {
	auctions := newFakeAuctionRepo()
	bids := &contestedBidRepo{
		fakeBidRepo:  newFakeBidRepo(auctions),
		rivalAmounts: []float64{140},
	}
	broadcaster := &fakeBroadcaster{}
	uc := NewUsecase(auctions, bids, broadcaster, &fakeAuditPublisher{}, nil, Policy{AllowSelfOutbid: true})
	require.NoError(t, auctions.CreateAuction(activeAuction("a1", 0, 10)))

	// A rival lands 140 between validation and commit. 160 still clears the
	// raised floor of 150, so the silent re-validation commits it.
	bid, err := uc.PlaceBid(context.Background(), "a1", "alice", 160)
	require.NoError(t, err)
	assert.Equal(t, 160.0, bid.Amount)

	stored, err := auctions.GetAuctionByID("a1")
	require.NoError(t, err)
	assert.Equal(t, 160.0, stored.CurrentBid)

	events := broadcaster.Events()
	require.Len(t, events, 1)
	update, ok := events[0].Payload.(domain.BidUpdateEvent)
	require.True(t, ok)
	assert.Equal(t, 160.0, update.CurrentBid)
}

func TestPlaceBid_SecondLostRaceSurfacesFreshFloor(t *testing.T) {
	auctions := newFakeAuctionRepo()
	bids := &contestedBidRepo{
		fakeBidRepo:  newFakeBidRepo(auctions),
		rivalAmounts: []float64{140, 155},
	}
	broadcaster := &fakeBroadcaster{}
	uc := NewUsecase(auctions, bids, broadcaster, &fakeAuditPublisher{}, nil, Policy{AllowSelfOutbid: true})
	require.NoError(t, auctions.CreateAuction(activeAuction("a1", 0, 10)))

	// Two rivals in a row: only one silent retry is spent, then the loss
	// surfaces as a too-low rejection carrying the fresh floor of 165.
	_, err := uc.PlaceBid(context.Background(), "a1", "alice", 160)
	assert.ErrorIs(t, err, domain.ErrBidTooLow)
	assert.Contains(t, err.Error(), "165.00")

	// The losing attempt left no bid and no broadcast behind.
	history, err := bids.History("a1")
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Empty(t, broadcaster.Events())
}

func TestPlaceBid_MissingIdentifiersRejected(t *testing.T) {
	uc, auctions, _, _ := newBiddingHarness(t, Policy{AllowSelfOutbid: true})
	require.NoError(t, auctions.CreateAuction(activeAuction("a1", 0, 10)))

	_, err := uc.PlaceBid(context.Background(), "", "alice", 110)
	assert.ErrorIs(t, err, domain.ErrInvalidBid)

	_, err = uc.PlaceBid(context.Background(), "a1", "", 110)
	assert.ErrorIs(t, err, domain.ErrInvalidBid)
}

func TestPlaceBid_BroadcastEnqueuedBeforeReturn(t *testing.T) {
	uc, auctions, _, broadcaster := newBiddingHarness(t, Policy{AllowSelfOutbid: true})
	require.NoError(t, auctions.CreateAuction(activeAuction("a1", 0, 10)))

	_, err := uc.PlaceBid(context.Background(), "a1", "alice", 110)
	require.NoError(t, err)

	// The bid-update event must be observable the moment PlaceBid returns.
	events := broadcaster.Events()
	require.Len(t, events, 1)
	update, ok := events[0].Payload.(domain.BidUpdateEvent)
	require.True(t, ok)
	assert.Equal(t, 110.0, update.CurrentBid)
	assert.Equal(t, "alice", update.BidderID)
}

func TestHistory_StableOrderAcrossReads(t *testing.T) {
	uc, auctions, _, _ := newBiddingHarness(t, Policy{AllowSelfOutbid: true})
	require.NoError(t, auctions.CreateAuction(activeAuction("a1", 0, 10)))

	for i, amount := range []float64{110, 125, 140} {
		_, err := uc.PlaceBid(context.Background(), "a1", fmt.Sprintf("bidder-%d", i), amount)
		require.NoError(t, err)
	}

	first, err := uc.History("a1")
	require.NoError(t, err)
	second, err := uc.History("a1")
	require.NoError(t, err)

	require.Len(t, first, 3)
	assert.Equal(t, 140.0, first[0].Amount)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestHistory_EmptyForAuctionWithoutBids(t *testing.T) {
	uc, auctions, _, _ := newBiddingHarness(t, Policy{AllowSelfOutbid: true})
	require.NoError(t, auctions.CreateAuction(activeAuction("a1", 0, 10)))

	history, err := uc.History("a1")
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = uc.History("missing")
	assert.ErrorIs(t, err, domain.ErrAuctionNotFound)
}

func TestCreateAuction_Validation(t *testing.T) {
	uc, _, _, _ := newBiddingHarness(t, Policy{AllowSelfOutbid: true})
	now := time.Now()

	bad := &domain.Auction{
		ProductID:       "p1",
		SellerID:        "s1",
		StartingBid:     100,
		MinBidIncrement: 10,
		StartTime:       now.Add(time.Hour),
		EndTime:         now.Add(time.Hour),
	}
	assert.Error(t, uc.CreateAuction(bad))

	bad.EndTime = now.Add(2 * time.Hour)
	bad.StartingBid = 0
	assert.Error(t, uc.CreateAuction(bad))

	bad.StartingBid = 100
	require.NoError(t, uc.CreateAuction(bad))
	assert.NotEmpty(t, bad.ID)
	assert.Equal(t, domain.StatusActive, bad.Status)
}
