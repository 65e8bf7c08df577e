package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulation/internal/fees"
	"github.com/mrlokans/circulation/internal/services"
)

// gatewayTimeout bounds a single call to the payment gateway.
const gatewayTimeout = 30 * time.Second

// Payments collects late fees and issues refunds.
type Payments interface {
	PayLateFees(ctx context.Context, patronID string, bookID uint) (*services.PaymentReceipt, error)
	RefundLateFee(ctx context.Context, transactionID string, amount fees.Money) (string, error)
}

type PaymentsController struct {
	payments Payments
}

func NewPaymentsController(payments Payments) *PaymentsController {
	return &PaymentsController{payments: payments}
}

// RefundRequest is the body of POST /api/refunds.
type RefundRequest struct {
	TransactionID string     `json:"transaction_id"`
	Amount        fees.Money `json:"amount"`
}

// PaymentResponse is the body of a successful late fee payment.
type PaymentResponse struct {
	Success       bool       `json:"success"`
	Message       string     `json:"message"`
	TransactionID string     `json:"transaction_id"`
	Amount        fees.Money `json:"amount"`
}

// Pay handles POST /api/payments
func (pc *PaymentsController) Pay(c *gin.Context) {
	var req LoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, msgInvalidBody)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), gatewayTimeout)
	defer cancel()

	receipt, err := pc.payments.PayLateFees(ctx, req.PatronID, req.BookID)
	if err != nil {
		respondServiceError(c, err, "pay late fees")
		return
	}

	c.JSON(http.StatusOK, PaymentResponse{
		Success:       true,
		Message:       receipt.Message,
		TransactionID: receipt.TransactionID,
		Amount:        receipt.Amount,
	})
}

// Refund handles POST /api/refunds
func (pc *PaymentsController) Refund(c *gin.Context) {
	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, msgInvalidBody)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), gatewayTimeout)
	defer cancel()

	message, err := pc.payments.RefundLateFee(ctx, req.TransactionID, req.Amount)
	if err != nil {
		respondServiceError(c, err, "refund")
		return
	}

	respondMessage(c, http.StatusOK, message)
}
