package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/storekit/storefront-api/internal/dto"
	"github.com/storekit/storefront-api/internal/middleware"
	"github.com/storekit/storefront-api/internal/model"
	"github.com/storekit/storefront-api/internal/payment"
	"github.com/storekit/storefront-api/internal/service"
)

type PaymentHandler struct {
	gateway      payment.Gateway
	orderService *service.OrderService
}

func NewPaymentHandler(gateway payment.Gateway, orderService *service.OrderService) *PaymentHandler {
	return &PaymentHandler{gateway: gateway, orderService: orderService}
}

func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req dto.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	intent, err := h.gateway.CreateIntent(c.Request.Context(),
		decimal.NewFromFloat(req.Amount), currency,
		map[string]string{"user_id": middleware.GetUserID(c).String()})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment processing failed"})
		return
	}

	c.JSON(http.StatusOK, dto.CreateIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	})
}

func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	var req dto.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	intent, err := h.gateway.GetIntent(c.Request.Context(), req.PaymentIntentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment confirmation failed"})
		return
	}
	if intent.Status != payment.IntentStatusSucceeded {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment not completed"})
		return
	}

	info := model.PaymentInfo{
		ID:     intent.ID,
		Status: payment.IntentStatusSucceeded,
		Method: string(model.PaymentStripe),
	}
	order, err := h.orderService.RecordPayment(c.Request.Context(), req.OrderID, middleware.GetUserID(c), info)
	if err != nil {
		renderOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "payment confirmed",
		"order_id":       order.ID,
		"payment_status": order.PaymentInfo.Status,
	})
}

func (h *PaymentHandler) Methods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"methods": []dto.PaymentMethodResponse{
		{ID: string(model.PaymentCreditCard), Name: "Credit Card", Description: "Pay with Visa, Mastercard, American Express"},
		{ID: string(model.PaymentDebitCard), Name: "Debit Card", Description: "Pay with your debit card"},
		{ID: string(model.PaymentPayPal), Name: "PayPal", Description: "Pay with your PayPal account"},
		{ID: string(model.PaymentCashOnDelivery), Name: "Cash on Delivery", Description: "Pay when you receive your order"},
	}})
}
