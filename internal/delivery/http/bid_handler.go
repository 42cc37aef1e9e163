package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openbay/auction-service/internal/infrastructure/logger"
	"github.com/openbay/auction-service/internal/usecase/bidding"
)

type BidHandler struct {
	bidding *bidding.Usecase
}

func NewBidHandler(biddingUC *bidding.Usecase) *BidHandler {
	return &BidHandler{bidding: biddingUC}
}

// PlaceBidHandler handles POST /auctions/:auction_id/bids
func (h *BidHandler) PlaceBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req placeBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	bid, err := h.bidding.PlaceBid(c.Request.Context(), auctionID, req.BidderID, req.Amount)
	if err != nil {
		status, message := MapErrorToHTTP(err)
		JSONError(c, status, err, message)
		logger.Warn("PlaceBidHandler: bid rejected", map[string]any{
			"auction_id": auctionID,
			"bidder_id":  req.BidderID,
			"amount":     req.Amount,
			"error":      err.Error(),
		})
		return
	}

	JSONResponse(c, http.StatusCreated, toBidResponse(bid), "bid accepted")
	logger.Info("PlaceBidHandler: bid accepted", map[string]any{
		"bid_id":     bid.ID,
		"auction_id": auctionID,
		"bidder_id":  bid.BidderID,
		"amount":     bid.Amount,
	})
}

// GetBidHistoryHandler handles GET /auctions/:auction_id/bids
func (h *BidHandler) GetBidHistoryHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	bids, err := h.bidding.History(auctionID)
	if err != nil {
		status, message := MapErrorToHTTP(err)
		JSONError(c, status, err, message)
		return
	}

	responses := make([]bidResponse, len(bids))
	for i, bid := range bids {
		responses[i] = toBidResponse(bid)
	}
	JSONResponse(c, http.StatusOK, responses, "bid history retrieved successfully")
}

// GetWinningBidHandler handles GET /auctions/:auction_id/winning
func (h *BidHandler) GetWinningBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	bid, err := h.bidding.HighestBid(auctionID)
	if err != nil {
		status, message := MapErrorToHTTP(err)
		JSONError(c, status, err, message)
		return
	}
	if bid == nil {
		JSONResponse(c, http.StatusOK, nil, "no bids recorded yet")
		return
	}

	JSONResponse(c, http.StatusOK, toBidResponse(bid), "winning bid retrieved successfully")
}
