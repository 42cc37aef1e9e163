package domain

import "time"

// EventType tags real-time events fanned out to room subscribers.
type EventType string

const (
	EventBidUpdate     EventType = "bid-update"
	EventAuctionEnded  EventType = "auction-ended"
	EventPaymentStatus EventType = "payment:status"
	EventOrderStatus   EventType = "order:status"
	EventNotification  EventType = "notification:new"
)

// BidUpdateEvent announces a newly committed high bid.
type BidUpdateEvent struct {
	AuctionID  string    `json:"auction_id"`
	ProductID  string    `json:"product_id"`
	CurrentBid float64   `json:"current_bid"`
	BidderID   string    `json:"bidder_id"`
	PlacedAt   time.Time `json:"placed_at"`
}

// AuctionEndedEvent announces settlement. WinnerID is empty when the
// auction closed without bids.
type AuctionEndedEvent struct {
	AuctionID string  `json:"auction_id"`
	ProductID string  `json:"product_id"`
	WinnerID  string  `json:"winner_id,omitempty"`
	FinalBid  float64 `json:"final_bid,omitempty"`
	OrderID   string  `json:"order_id,omitempty"`
}

type PaymentStatusEvent struct {
	OrderID       string        `json:"order_id"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}

type OrderStatusEvent struct {
	OrderID string        `json:"order_id"`
	Status  PaymentStatus `json:"status"`
}

type NotificationEvent struct {
	Message string `json:"message"`
}

// Room names. One room per auction and one per order; events inside a room
// are delivered to each subscriber in publish order.
func AuctionRoom(auctionID string) string { return "auction:" + auctionID }
func OrderRoom(orderID string) string     { return "order:" + orderID }
