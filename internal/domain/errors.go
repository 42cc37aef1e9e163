package domain

import "errors"

// Admission errors: user-correctable, surfaced verbatim with the fresh floor.
var (
	ErrAuctionNotFound  = errors.New("auction not found")
	ErrAuctionNotActive = errors.New("auction is not active")
	ErrInvalidBid       = errors.New("invalid bid details")
	ErrBidTooLow        = errors.New("bid amount below auction floor")
	ErrRedundantBid     = errors.New("bidder already holds the highest bid")
)

// ErrNoBids distinguishes an empty ledger from a lookup failure. Not an
// error on read paths; the effective floor is then the starting bid.
var ErrNoBids = errors.New("no bids recorded for auction")

// ErrBidConflict is the ledger rejecting an out-of-order commit. The
// admission controller retries once against fresh state before surfacing
// the loss as ErrBidTooLow.
var ErrBidConflict = errors.New("concurrent bid committed first")

// Payment errors.
var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrPaymentSignatureInvalid = errors.New("payment signature verification failed")
	ErrPaymentAlreadyProcessed = errors.New("payment already processed")
	ErrGatewayUnavailable      = errors.New("payment gateway unavailable")
	ErrOrderNotPayable         = errors.New("order is not payable")
)
