package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openbay/auction-service/internal/domain"
	"github.com/openbay/auction-service/internal/infrastructure/logger"
	"github.com/openbay/auction-service/internal/usecase/bidding"
	"github.com/openbay/auction-service/internal/usecase/settlement"
)

type AuctionHandler struct {
	bidding    *bidding.Usecase
	settlement *settlement.Usecase
}

func NewAuctionHandler(biddingUC *bidding.Usecase, settlementUC *settlement.Usecase) *AuctionHandler {
	return &AuctionHandler{bidding: biddingUC, settlement: settlementUC}
}

// CreateAuctionHandler handles POST /auctions
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	var req createAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		HandleBindError(c, "CreateAuctionHandler", err)
		return
	}
	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	auction := &domain.Auction{
		ProductID:       req.ProductID,
		SellerID:        req.SellerID,
		Title:           req.Title,
		StartingBid:     req.StartingBid,
		MinBidIncrement: req.MinBidIncrement,
		StartTime:       startTime,
		EndTime:         endTime,
	}
	if err := h.bidding.CreateAuction(auction); err != nil {
		status, message := MapErrorToHTTP(err)
		JSONError(c, status, err, message)
		logger.Error("CreateAuctionHandler: failed to create auction", map[string]any{"product_id": req.ProductID, "error": err.Error()})
		return
	}

	view, err := h.bidding.GetAuction(auction.ID)
	if err != nil {
		status, message := MapErrorToHTTP(err)
		JSONError(c, status, err, message)
		return
	}

	JSONResponse(c, http.StatusCreated, toAuctionResponse(view), "auction created successfully")
	logger.Info("CreateAuctionHandler: auction created", map[string]any{"auction_id": auction.ID, "product_id": auction.ProductID})
}

// GetAuctionHandler handles GET /auctions/:auction_id
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	view, err := h.bidding.GetAuction(auctionID)
	if err != nil {
		status, message := MapErrorToHTTP(err)
		JSONError(c, status, err, message)
		return
	}

	JSONResponse(c, http.StatusOK, toAuctionResponse(view), "auction retrieved successfully")
}

// ListAuctionsHandler handles GET /auctions
func (h *AuctionHandler) ListAuctionsHandler(c *gin.Context) {
	views, err := h.bidding.ListOpenAuctions()
	if err != nil {
		status, message := MapErrorToHTTP(err)
		JSONError(c, status, err, message)
		logger.Error("ListAuctionsHandler: failed to list auctions", map[string]any{"error": err.Error()})
		return
	}

	responses := make([]auctionResponse, len(views))
	for i, view := range views {
		responses[i] = toAuctionResponse(view)
	}
	JSONResponse(c, http.StatusOK, responses, "auctions retrieved successfully")
}

// CancelAuctionHandler handles POST /auctions/:auction_id/cancel
func (h *AuctionHandler) CancelAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	if err := h.settlement.Cancel(c.Request.Context(), auctionID); err != nil {
		status, message := MapErrorToHTTP(err)
		JSONError(c, status, err, message)
		logger.Warn("CancelAuctionHandler: cancel rejected", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	JSONResponse(c, http.StatusOK, gin.H{"auction_id": auctionID}, "auction cancelled")
	logger.Info("CancelAuctionHandler: auction cancelled", map[string]any{"auction_id": auctionID})
}
