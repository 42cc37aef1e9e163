package domain

import "time"

type AuctionStatus string

const (
	StatusScheduled AuctionStatus = "SCHEDULED"
	StatusActive    AuctionStatus = "ACTIVE"
	StatusEnded     AuctionStatus = "ENDED"
	StatusCancelled AuctionStatus = "CANCELLED"
)

// Auction is the bidding state attached to a product listing.
// CurrentBid is zero until the first bid is accepted. The persisted Status
// holds ACTIVE for any open auction; scheduled/active are derived from the
// start and end instants, while ENDED and CANCELLED are sticky once written.
type Auction struct {
	ID              string
	ProductID       string
	SellerID        string
	Title           string
	StartingBid     float64
	CurrentBid      float64
	MinBidIncrement float64
	StartTime       time.Time
	EndTime         time.Time
	Status          AuctionStatus
	WinnerID        string
	FinalBid        float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// StateOf projects the effective lifecycle state of an auction at a given
// instant. Pure function: no I/O, no clock reads. A stored CANCELLED or
// ENDED status is terminal and never reverts, regardless of the clock.
func StateOf(a *Auction, now time.Time) AuctionStatus {
	if a.Status == StatusCancelled || a.Status == StatusEnded {
		return StatusEnded
	}
	if now.Before(a.StartTime) {
		return StatusScheduled
	}
	if now.Before(a.EndTime) {
		return StatusActive
	}
	return StatusEnded
}

// Floor returns the minimum acceptable next bid: the current bid plus the
// increment, or the starting bid plus the increment if nobody has bid yet.
func (a *Auction) Floor() float64 {
	base := a.StartingBid
	if a.CurrentBid > 0 {
		base = a.CurrentBid
	}
	return base + a.MinBidIncrement
}

// HasWinner reports whether settlement assigned a winner.
func (a *Auction) HasWinner() bool {
	return a.WinnerID != ""
}
