package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openbay/auction-service/internal/domain"
	"github.com/openbay/auction-service/internal/infrastructure/logger"
	"github.com/openbay/auction-service/internal/usecase/bidding"
)

// JSONResponse sends a structured JSON response.
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// JSONError sends a structured error response.
func JSONError(c *gin.Context, status int, err error, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"error":   err.Error(),
	})
}

// HandleBindError sends a standardized JSON error for binding failures.
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	logger.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain errors to an HTTP status code and message.
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, "order not found"
	case errors.Is(err, domain.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, domain.ErrAuctionNotActive):
		return http.StatusConflict, "auction is not accepting bids"
	case errors.Is(err, domain.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, domain.ErrRedundantBid):
		return http.StatusConflict, "you already hold the highest bid"
	case errors.Is(err, domain.ErrOrderNotPayable):
		return http.StatusConflict, "order is not payable"
	case errors.Is(err, domain.ErrPaymentAlreadyProcessed):
		return http.StatusConflict, "payment already processed"
	case errors.Is(err, domain.ErrPaymentSignatureInvalid):
		return http.StatusBadRequest, "payment signature verification failed"
	case errors.Is(err, domain.ErrGatewayUnavailable):
		return http.StatusBadGateway, "payment gateway unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// Request/Response DTOs

type createAuctionRequest struct {
	ProductID       string  `json:"product_id" binding:"required"`
	SellerID        string  `json:"seller_id" binding:"required"`
	Title           string  `json:"title"`
	StartingBid     float64 `json:"starting_bid" binding:"required,gt=0"`
	MinBidIncrement float64 `json:"min_bid_increment" binding:"required,gt=0"`
	StartTime       string  `json:"start_time" binding:"required"`
	EndTime         string  `json:"end_time" binding:"required"`
}

type auctionResponse struct {
	AuctionID       string  `json:"auction_id"`
	ProductID       string  `json:"product_id"`
	SellerID        string  `json:"seller_id"`
	Title           string  `json:"title,omitempty"`
	StartingBid     float64 `json:"starting_bid"`
	CurrentBid      float64 `json:"current_bid"`
	MinBidIncrement float64 `json:"min_bid_increment"`
	MinNextBid      float64 `json:"min_next_bid"`
	State           string  `json:"state"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	WinnerID        string  `json:"winner_id,omitempty"`
	FinalBid        float64 `json:"final_bid,omitempty"`
}

type placeBidRequest struct {
	BidderID string  `json:"bidder_id" binding:"required"`
	Amount   float64 `json:"amount" binding:"required,gt=0"`
}

type bidResponse struct {
	BidID     string  `json:"bid_id"`
	AuctionID string  `json:"auction_id"`
	BidderID  string  `json:"bidder_id"`
	Amount    float64 `json:"amount"`
	PlacedAt  string  `json:"placed_at"`
}

type orderItemResponse struct {
	ProductID string  `json:"product_id"`
	Quantity  int32   `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Mode      string  `json:"mode"`
}

type orderResponse struct {
	OrderID       string              `json:"order_id"`
	BuyerID       string              `json:"buyer_id"`
	AuctionID     string              `json:"auction_id,omitempty"`
	Items         []orderItemResponse `json:"items"`
	PaymentMethod string              `json:"payment_method"`
	PaymentStatus string              `json:"payment_status"`
	TotalAmount   float64             `json:"total_amount"`
	CreatedAt     string              `json:"created_at"`
}

type verifyPaymentRequest struct {
	GatewayOrderID   string `json:"gateway_order_id" binding:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
	GatewaySignature string `json:"gateway_signature"`
}

type paymentFailureRequest struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

func toAuctionResponse(view *bidding.AuctionView) auctionResponse {
	a := view.Auction
	return auctionResponse{
		AuctionID:       a.ID,
		ProductID:       a.ProductID,
		SellerID:        a.SellerID,
		Title:           a.Title,
		StartingBid:     a.StartingBid,
		CurrentBid:      a.CurrentBid,
		MinBidIncrement: a.MinBidIncrement,
		MinNextBid:      view.Floor,
		State:           string(view.State),
		StartTime:       a.StartTime.UTC().Format(time.RFC3339),
		EndTime:         a.EndTime.UTC().Format(time.RFC3339),
		WinnerID:        a.WinnerID,
		FinalBid:        a.FinalBid,
	}
}

func toBidResponse(b *domain.Bid) bidResponse {
	return bidResponse{
		BidID:     b.ID,
		AuctionID: b.AuctionID,
		BidderID:  b.BidderID,
		Amount:    b.Amount,
		PlacedAt:  b.PlacedAt.UTC().Format(time.RFC3339),
	}
}

func toOrderResponse(o *domain.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = orderItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Mode:      item.Mode,
		}
	}
	return orderResponse{
		OrderID:       o.ID,
		BuyerID:       o.BuyerID,
		AuctionID:     o.AuctionID,
		Items:         items,
		PaymentMethod: string(o.PaymentMethod),
		PaymentStatus: string(o.PaymentStatus),
		TotalAmount:   o.TotalAmount,
		CreatedAt:     o.CreatedAt.UTC().Format(time.RFC3339),
	}
}
