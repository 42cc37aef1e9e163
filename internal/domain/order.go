package domain

import "time"

type PaymentMethod string

const (
	MethodOnline         PaymentMethod = "ONLINE"
	MethodCashOnDelivery PaymentMethod = "COD"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Order is a payable order. An auction win materializes into an order with a
// single line item priced at the auction's final bid. PaymentStatus is owned
// by the payment reconciler; nothing else moves it off PENDING.
type Order struct {
	ID            string
	BuyerID       string
	AuctionID     string
	Items         []OrderItem
	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus
	TotalAmount   float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderItem is a line item snapshot. Mode records whether the price came
// from a fixed listing or an auction settlement.
type OrderItem struct {
	ProductID string
	Quantity  int32
	UnitPrice float64
	Mode      string
}

const (
	ItemModeFixed   = "FIXED"
	ItemModeAuction = "AUCTION"
)
