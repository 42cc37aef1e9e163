package publisher

import "time"

// Topics carrying the audit trail of committed transitions.
const (
	TopicBids        = "auction-bids"
	TopicSettlements = "auction-settlements"
	TopicPayments    = "payment-events"
)

type BidEvent struct {
	BidID     string    `json:"bid_id"`
	AuctionID string    `json:"auction_id"`
	BidderID  string    `json:"bidder_id"`
	Amount    float64   `json:"amount"`
	PlacedAt  time.Time `json:"placed_at"`
}

type SettlementEvent struct {
	AuctionID string    `json:"auction_id"`
	WinnerID  string    `json:"winner_id,omitempty"`
	FinalBid  float64   `json:"final_bid,omitempty"`
	OrderID   string    `json:"order_id,omitempty"`
	EndedAt   time.Time `json:"ended_at"`
}

type PaymentEvent struct {
	OrderID          string    `json:"order_id"`
	GatewayPaymentID string    `json:"gateway_payment_id,omitempty"`
	Outcome          string    `json:"outcome"`
	Reason           string    `json:"reason,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
}
