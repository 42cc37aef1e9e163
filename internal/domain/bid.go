package domain

import "time"

// Bid is an accepted bid. Immutable once committed; PlacedAt is assigned by
// the ledger at commit time and is monotonic per auction.
type Bid struct {
	ID        string
	AuctionID string
	BidderID  string
	Amount    float64
	PlacedAt  time.Time
	IsAutoBid bool
}
