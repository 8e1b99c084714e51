package api

import (
	"net/http"

	"shop-service/internal/payment"
	"shop-service/internal/render"
	"shop-service/internal/service"
	"shop-service/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// createOrder handles checkout submissions
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	claims := GetClaims(c)
	resp, err := h.orderService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// myOrders lists the caller's own orders
func (h *Handler) myOrders(c *gin.Context) {
	claims := GetClaims(c)

	orders, err := h.orderService.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// listAllOrders lists every order for admin display
func (h *Handler) listAllOrders(c *gin.Context) {
	orders, err := h.orderService.ListAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// transitionOrder moves an order to a new status
func (h *Handler) transitionOrder(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	order, err := h.orderService.Transition(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// deleteOrder hard-deletes an order
func (h *Handler) deleteOrder(c *gin.Context) {
	orderID := c.Param("id")

	trackingCode, err := h.orderService.Delete(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":          "Order deleted",
		"order_id":     orderID,
		"trackingCode": trackingCode,
	})
}

// trackingQR serves a PNG QR image for a tracking code
func (h *Handler) trackingQR(c *gin.Context) {
	code := c.Param("trackingCode")

	if _, err := h.orderService.GetByTracking(c.Request.Context(), code); err != nil {
		respondServiceError(c, err)
		return
	}

	png, err := render.TrackingQR(code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// orderSticker serves the printable shipping label PDF
func (h *Handler) orderSticker(c *gin.Context) {
	order, err := h.orderService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	pdf, err := render.Sticker(order)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.Header("Content-Disposition", "inline; filename=sticker-"+order.TrackingCode+".pdf")
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// paymentWebhook handles the asynchronous gateway callback. The signature
// is verified before any field is trusted; verified callbacks are always
// acknowledged with a plaintext "OK" whatever the processing outcome. A
// failed confirmation is logged and counted, and ConfirmPayment releases
// its dedup marker so a redelivered callback can complete the transition.
func (h *Handler) paymentWebhook(c *gin.Context) {
	n := payment.Notification{
		MerchantID: c.PostForm("merchant_id"),
		OrderID:    c.PostForm("order_id"),
		PaymentID:  c.PostForm("payment_id"),
		Amount:     c.PostForm("payhere_amount"),
		Currency:   c.PostForm("payhere_currency"),
		StatusCode: c.PostForm("status_code"),
		Signature:  c.PostForm("signature"),
	}

	if err := h.payments.VerifyCallback(n); err != nil {
		util.PaymentWebhooksRejectedTotal.WithLabelValues("bad_signature").Inc()
		util.GetLogger().Warn("Rejected payment webhook",
			zap.String("order_id", n.OrderID),
			zap.Error(err))
		c.String(http.StatusBadRequest, "invalid signature")
		return
	}

	if n.StatusCode == payment.StatusCodeSuccess {
		if err := h.orderService.ConfirmPayment(c.Request.Context(), n.OrderID, n.PaymentID); err != nil {
			util.OrdersFailedTotal.WithLabelValues("payment_confirmation").Inc()
			util.GetLogger().Error("Payment confirmation failed",
				zap.String("order_id", n.OrderID),
				zap.String("payment_id", n.PaymentID),
				zap.Error(err))
		}
	} else {
		util.GetLogger().Info("Non-success payment callback",
			zap.String("order_id", n.OrderID),
			zap.String("status_code", n.StatusCode))
	}

	c.String(http.StatusOK, "OK")
}
