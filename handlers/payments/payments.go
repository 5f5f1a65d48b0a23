package payments

import (
	"errors"
	"log"
	"net/http"

	"business-registration-server/mpesa"
	"business-registration-server/payments"

	"github.com/gin-gonic/gin"
)

// Handler exposes the payment orchestration endpoints. The orchestrator is
// injected so the handlers stay thin.
type Handler struct {
	Orchestrator *payments.Orchestrator
}

func NewHandler(o *payments.Orchestrator) *Handler {
	return &Handler{Orchestrator: o}
}

// RegisterPaymentRoutes wires the payment endpoints. The callback must stay on
// the public router: the gateway calls it without credentials.
func RegisterPaymentRoutes(public *gin.Engine, protected *gin.RouterGroup, h *Handler) {
	public.POST("/api/payments/callback", h.MpesaCallback)
	protected.POST("/api/payments/pay", h.InitiatePayment)
	protected.POST("/api/payments/status", h.CheckPaymentStatus)
}

// InitiatePayment starts an STK push for a business's registration fee
func (h *Handler) InitiatePayment(c *gin.Context) {
	var input struct {
		PhoneNumber string `json:"phoneNumber"`
		Amount      int    `json:"amount"`
		BusinessID  uint   `json:"businessId"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Phone number, amount, and business ID are required"})
		return
	}

	if input.PhoneNumber == "" || input.BusinessID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Phone number, amount, and business ID are required"})
		return
	}

	if input.Amount < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Amount must be at least 1 KSH"})
		return
	}

	res, err := h.Orchestrator.Pay(c.Request.Context(), input.PhoneNumber, input.Amount, input.BusinessID)
	if err != nil {
		var validationErr *mpesa.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": validationErr.Message})
			return
		}

		log.Printf("Payment initiation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to initiate payment",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payment initiated successfully",
		"data":    res,
	})
}

// CheckPaymentStatus queries the gateway for the outcome of a prior push
func (h *Handler) CheckPaymentStatus(c *gin.Context) {
	var input struct {
		CheckoutRequestID string `json:"checkoutRequestID"`
	}

	if err := c.ShouldBindJSON(&input); err != nil || input.CheckoutRequestID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Checkout Request ID is required"})
		return
	}

	status, err := h.Orchestrator.PollStatus(c.Request.Context(), input.CheckoutRequestID)
	if err != nil {
		if errors.Is(err, mpesa.ErrNotYetResolved) {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"data": gin.H{
					"CheckoutRequestID": input.CheckoutRequestID,
					"ResultDesc":        "Request processing in progress",
					"pending":           true,
				},
			})
			return
		}

		log.Printf("Status check failed for %s: %v", input.CheckoutRequestID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to check transaction status",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": status})
}

// MpesaCallback receives the gateway's final result push. It always responds
// with the success acknowledgement: the gateway retries aggressively on
// anything else, so internal failures are logged and swallowed.
func (h *Handler) MpesaCallback(c *gin.Context) {
	var envelope payments.CallbackEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		log.Printf("Failed to parse M-Pesa callback: %v", err)
	} else {
		h.Orchestrator.HandleCallback(c.Request.Context(), envelope.Body.StkCallback)
	}

	c.JSON(http.StatusOK, gin.H{
		"ResultCode": 0,
		"ResultDesc": "Success",
	})
}
