package domain

import "time"

// AuctionRepository persists auctions. The Mark* methods are conditional
// updates: they return false when the guard did not match, which is how
// exactly-once transitions survive overlapping sweeps and multiple
// scheduler instances.
type AuctionRepository interface {
	CreateAuction(a *Auction) error
	GetAuctionByID(auctionID string) (*Auction, error)
	// ListOpenAuctions returns auctions still accepting bids, soonest-ending first.
	ListOpenAuctions(now time.Time) ([]*Auction, error)
	// FindDueAuctions returns ACTIVE auctions whose end time has passed.
	FindDueAuctions(now time.Time) ([]*Auction, error)
	// MarkEnded flips ACTIVE -> ENDED. False means another sweep got there
	// first, or the auction was cancelled.
	MarkEnded(auctionID string) (bool, error)
	// MarkCancelled flips ACTIVE -> CANCELLED (admin early-cancel).
	MarkCancelled(auctionID string) (bool, error)
	// SetWinner assigns the winner exactly once.
	SetWinner(auctionID, winnerID string, finalBid float64) (bool, error)
}

// BidRepository is the append-only bid ledger. Append commits the bid and
// raises the owning auction's current bid in one atomic step; a commit that
// does not clear the current bid by the full increment fails with
// ErrBidConflict.
type BidRepository interface {
	Append(bid *Bid) error
	// HighestBid returns the winning bid, or ErrNoBids.
	HighestBid(auctionID string) (*Bid, error)
	// History returns bids newest first. Re-querying an unchanged ledger
	// returns the same order.
	History(auctionID string) ([]*Bid, error)
}

// OrderRepository persists orders. SetPaymentStatus is a conditional
// transition so the pending->paid flip happens at most once.
type OrderRepository interface {
	CreateOrder(o *Order) error
	GetOrderByID(orderID string) (*Order, error)
	SetPaymentStatus(orderID string, from, to PaymentStatus) (bool, error)
	SetPaymentMethod(orderID string, method PaymentMethod) error
}

// PaymentRepository records gateway callback attempts.
type PaymentRepository interface {
	RecordAttempt(a *PaymentAttempt) error
	// FindVerified returns the verified attempt for the pair, or nil.
	FindVerified(orderID, gatewayPaymentID string) (*PaymentAttempt, error)
	AttemptsByOrder(orderID string) ([]*PaymentAttempt, error)
}

// Broadcaster fans committed state transitions out to room subscribers.
// Publish enqueues before returning and never blocks the caller on delivery.
type Broadcaster interface {
	Publish(room string, event EventType, payload any)
}

type Message struct {
	Key   []byte
	Value []byte
}

// AuditPublisher is the audit-stream port (Kafka in production). Publishes
// are fire-and-forget from the caller's perspective; a broker outage must
// never fail a bid or a payment.
type AuditPublisher interface {
	PublishJSON(topic, key string, event any) error
}
