package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openbay/auction-service/internal/infrastructure/logger"
	"github.com/openbay/auction-service/internal/usecase/payment"
)

type PaymentHandler struct {
	payments *payment.Usecase
}

func NewPaymentHandler(paymentUC *payment.Usecase) *PaymentHandler {
	return &PaymentHandler{payments: paymentUC}
}

// GetOrderHandler handles GET /orders/:order_id
func (h *PaymentHandler) GetOrderHandler(c *gin.Context) {
	orderID := c.Param("order_id")

	order, attempts, err := h.payments.GetOrder(orderID)
	if err != nil {
		status, message := MapErrorToHTTP(err)
		JSONError(c, status, err, message)
		return
	}

	JSONResponse(c, http.StatusOK, gin.H{
		"order":         toOrderResponse(order),
		"attempt_count": len(attempts),
	}, "order retrieved successfully")
}

// CreatePaymentHandler handles POST /orders/:order_id/payment/create
func (h *PaymentHandler) CreatePaymentHandler(c *gin.Context) {
	orderID := c.Param("order_id")

	handle, err := h.payments.CreateGatewayOrder(c.Request.Context(), orderID)
	if err != nil {
		status, message := MapErrorToHTTP(err)
		JSONError(c, status, err, message)
		logger.Warn("CreatePaymentHandler: gateway order rejected", map[string]any{"order_id": orderID, "error": err.Error()})
		return
	}

	JSONResponse(c, http.StatusCreated, gin.H{
		"gateway_order_id": handle.GatewayOrderID,
		"order_id":         handle.OrderID,
		"amount":           handle.Amount,
		"currency":         handle.Currency,
		"is_mock":          handle.IsMock,
	}, "gateway order created")
	logger.Info("CreatePaymentHandler: gateway order created", map[string]any{
		"order_id":         orderID,
		"gateway_order_id": handle.GatewayOrderID,
		"is_mock":          handle.IsMock,
	})
}

// VerifyPaymentHandler handles POST /orders/:order_id/payment/verify
func (h *PaymentHandler) VerifyPaymentHandler(c *gin.Context) {
	orderID := c.Param("order_id")

	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, "VerifyPaymentHandler", err)
		return
	}

	verified, err := h.payments.Verify(c.Request.Context(), payment.VerifyInput{
		OrderID:          orderID,
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		GatewaySignature: req.GatewaySignature,
	})
	if err != nil {
		status, message := MapErrorToHTTP(err)
		JSONError(c, status, err, message)
		logger.Warn("VerifyPaymentHandler: verification failed", map[string]any{"order_id": orderID, "error": err.Error()})
		return
	}

	JSONResponse(c, http.StatusOK, gin.H{
		"order_id":           verified.OrderID,
		"gateway_payment_id": verified.GatewayPaymentID,
		"paid_at":            verified.PaidAt,
		"already_applied":    verified.AlreadyApplied,
	}, "payment verified")
	logger.Info("VerifyPaymentHandler: payment verified", map[string]any{
		"order_id":           orderID,
		"gateway_payment_id": verified.GatewayPaymentID,
		"already_applied":    verified.AlreadyApplied,
	})
}

// PaymentFailedHandler handles POST /orders/:order_id/payment/failed
func (h *PaymentHandler) PaymentFailedHandler(c *gin.Context) {
	orderID := c.Param("order_id")

	var req paymentFailureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, "PaymentFailedHandler", err)
		return
	}

	err := h.payments.RecordFailure(c.Request.Context(), orderID, payment.FailureDetail{
		Code:        req.Code,
		Description: req.Description,
		Reason:      req.Reason,
	})
	if err != nil {
		status, message := MapErrorToHTTP(err)
		JSONError(c, status, err, message)
		return
	}

	JSONResponse(c, http.StatusOK, gin.H{"order_id": orderID}, "payment failure recorded")
	logger.Info("PaymentFailedHandler: failure recorded", map[string]any{"order_id": orderID, "code": req.Code})
}

// CashOnDeliveryHandler handles POST /orders/:order_id/payment/cod
func (h *PaymentHandler) CashOnDeliveryHandler(c *gin.Context) {
	orderID := c.Param("order_id")

	if err := h.payments.MarkCashOnDelivery(c.Request.Context(), orderID); err != nil {
		status, message := MapErrorToHTTP(err)
		JSONError(c, status, err, message)
		return
	}

	JSONResponse(c, http.StatusOK, gin.H{"order_id": orderID}, "order marked cash on delivery")
	logger.Info("CashOnDeliveryHandler: order marked COD", map[string]any{"order_id": orderID})
}
