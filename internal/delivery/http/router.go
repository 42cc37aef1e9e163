package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openbay/auction-service/internal/infrastructure/broadcast"
	"github.com/openbay/auction-service/internal/usecase/bidding"
	"github.com/openbay/auction-service/internal/usecase/payment"
	"github.com/openbay/auction-service/internal/usecase/settlement"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter configures all Gin routes for the service.
func SetupRouter(
	biddingUC *bidding.Usecase,
	settlementUC *settlement.Usecase,
	paymentUC *payment.Usecase,
	hub *broadcast.Hub,
) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(RequestLoggerMiddleware)

	auctionHandler := NewAuctionHandler(biddingUC, settlementUC)
	bidHandler := NewBidHandler(biddingUC)
	paymentHandler := NewPaymentHandler(paymentUC)
	wsHandler := NewWSHandler(hub, biddingUC, paymentUC)

	auctions := router.Group("/auctions")
	{
		auctions.POST("", auctionHandler.CreateAuctionHandler)
		auctions.GET("", auctionHandler.ListAuctionsHandler)
		auctions.GET("/:auction_id", auctionHandler.GetAuctionHandler)
		auctions.POST("/:auction_id/cancel", auctionHandler.CancelAuctionHandler)
		auctions.POST("/:auction_id/bids", bidHandler.PlaceBidHandler)
		auctions.GET("/:auction_id/bids", bidHandler.GetBidHistoryHandler)
		auctions.GET("/:auction_id/winning", bidHandler.GetWinningBidHandler)
	}

	orders := router.Group("/orders")
	{
		orders.GET("/:order_id", paymentHandler.GetOrderHandler)
		orders.POST("/:order_id/payment/create", paymentHandler.CreatePaymentHandler)
		orders.POST("/:order_id/payment/verify", paymentHandler.VerifyPaymentHandler)
		orders.POST("/:order_id/payment/failed", paymentHandler.PaymentFailedHandler)
		orders.POST("/:order_id/payment/cod", paymentHandler.CashOnDeliveryHandler)
	}

	ws := router.Group("/ws")
	{
		ws.GET("/auctions/:auction_id", wsHandler.SubscribeAuctionHandler)
		ws.GET("/orders/:order_id", wsHandler.SubscribeOrderHandler)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
