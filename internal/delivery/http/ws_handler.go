package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/openbay/auction-service/internal/domain"
	"github.com/openbay/auction-service/internal/infrastructure/broadcast"
	"github.com/openbay/auction-service/internal/infrastructure/logger"
	"github.com/openbay/auction-service/internal/usecase/bidding"
	"github.com/openbay/auction-service/internal/usecase/payment"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSHandler upgrades subscribers into broadcast rooms. Subscribing to a
// missing auction or order is rejected before the upgrade so the client gets
// a proper HTTP status instead of an immediate close.
type WSHandler struct {
	hub      *broadcast.Hub
	bidding  *bidding.Usecase
	payments *payment.Usecase
}

func NewWSHandler(hub *broadcast.Hub, biddingUC *bidding.Usecase, paymentUC *payment.Usecase) *WSHandler {
	return &WSHandler{hub: hub, bidding: biddingUC, payments: paymentUC}
}

// SubscribeAuctionHandler handles GET /ws/auctions/:auction_id
func (h *WSHandler) SubscribeAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	if _, err := h.bidding.GetAuction(auctionID); err != nil {
		status, message := MapErrorToHTTP(err)
		JSONError(c, status, err, message)
		return
	}

	h.subscribe(c, domain.AuctionRoom(auctionID))
}

// SubscribeOrderHandler handles GET /ws/orders/:order_id
func (h *WSHandler) SubscribeOrderHandler(c *gin.Context) {
	orderID := c.Param("order_id")

	if _, _, err := h.payments.GetOrder(orderID); err != nil {
		status, message := MapErrorToHTTP(err)
		JSONError(c, status, err, message)
		return
	}

	h.subscribe(c, domain.OrderRoom(orderID))
}

func (h *WSHandler) subscribe(c *gin.Context, room string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", map[string]any{"room": room, "error": err.Error()})
		return
	}

	client := broadcast.NewClient(uuid.New().String(), room, conn)
	h.hub.Join(client)

	go client.WritePump()
	go client.ReadPump(h.hub)

	logger.Info("websocket subscriber joined", map[string]any{"client_id": client.ID, "room": room})
}
