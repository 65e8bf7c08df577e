package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrlokans/circulation/internal/entities"
	"github.com/mrlokans/circulation/internal/fees"
	"github.com/mrlokans/circulation/internal/payment"
)

// PaymentReceipt describes an approved late fee payment.
type PaymentReceipt struct {
	TransactionID string     `json:"transaction_id"`
	Amount        fees.Money `json:"amount"`
	Message       string     `json:"message"`
}

// PaymentService collects and refunds late fees through a payment.Gateway.
type PaymentService struct {
	circulation *CirculationService
	books       BookStore
	gateway     payment.Gateway
	recorder    EventRecorder
}

func NewPaymentService(circulation *CirculationService, books BookStore, gateway payment.Gateway) *PaymentService {
	return &PaymentService{
		circulation: circulation,
		books:       books,
		gateway:     gateway,
		recorder:    nopRecorder{},
	}
}

func (s *PaymentService) SetRecorder(recorder EventRecorder) {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	s.recorder = recorder
}

// PayLateFees charges the patron whatever is currently owed on bookID.
func (s *PaymentService) PayLateFees(ctx context.Context, patronID string, bookID uint) (*PaymentReceipt, error) {
	if !ValidPatronID(patronID) {
		return nil, validationError(MsgInvalidPatronID)
	}

	fee, err := s.circulation.CalculateFee(patronID, bookID)
	if err != nil {
		return nil, err
	}
	if fee.Amount <= 0 {
		return nil, conflictError(MsgNoLateFees)
	}

	book, err := s.books.GetBookByID(bookID)
	if err != nil {
		return nil, storageError(MsgCatalogLookupFail, err)
	}
	if book == nil {
		return nil, notFoundError(MsgBookNotFound)
	}

	charge, err := s.gateway.ProcessPayment(ctx, patronID, fee.Amount, fmt.Sprintf("Late fees for '%s'", book.Title))
	if err != nil {
		s.recordPayment(patronID, bookID, fee.Amount, "", err.Error())
		return nil, &Error{Kind: KindGateway, Message: "Payment processing error: " + err.Error(), Err: err}
	}
	if !charge.Approved {
		s.recordPayment(patronID, bookID, fee.Amount, "", charge.Message)
		return nil, &Error{Kind: KindDeclined, Message: "Payment failed: " + charge.Message}
	}

	s.recordPayment(patronID, bookID, fee.Amount, charge.TransactionID, "")
	return &PaymentReceipt{
		TransactionID: charge.TransactionID,
		Amount:        fee.Amount,
		Message:       "Payment successful! " + charge.Message,
	}, nil
}

// RefundLateFee returns amount from an earlier late fee payment.
func (s *PaymentService) RefundLateFee(ctx context.Context, transactionID string, amount fees.Money) (string, error) {
	if !strings.HasPrefix(transactionID, payment.TransactionPrefix) {
		return "", validationError(MsgInvalidTransaction)
	}
	if amount <= 0 {
		return "", validationError(MsgRefundNotPositive)
	}
	if amount > fees.MaxFee {
		return "", validationError(MsgRefundExceedsMaxFee)
	}

	refund, err := s.gateway.RefundPayment(ctx, transactionID, amount)
	if err != nil {
		s.recordRefund(transactionID, amount, err.Error())
		return "", &Error{Kind: KindGateway, Message: "Refund processing error: " + err.Error(), Err: err}
	}
	if !refund.Approved {
		s.recordRefund(transactionID, amount, refund.Message)
		return "", &Error{Kind: KindDeclined, Message: "Refund failed: " + refund.Message}
	}

	s.recordRefund(transactionID, amount, "")
	return refund.Message, nil
}

func (s *PaymentService) recordPayment(patronID string, bookID uint, amount fees.Money, txnID, failure string) {
	event := &entities.AuditEvent{
		PatronID:    patronID,
		EventType:   entities.AuditEventPayment,
		Action:      "pay_late_fees",
		Description: fmt.Sprintf("Late fee payment of $%s", amount),
		EntityType:  "payment",
		EntityID:    &bookID,
		Metadata:    fmt.Sprintf(`{"transaction_id":%q,"amount":%s}`, txnID, amount),
		Status:      entities.AuditStatusSuccess,
	}
	if failure != "" {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = failure
	}
	s.recorder.Record(event)
}

func (s *PaymentService) recordRefund(txnID string, amount fees.Money, failure string) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventRefund,
		Action:      "refund_late_fee",
		Description: fmt.Sprintf("Refund of $%s on %s", amount, txnID),
		EntityType:  "payment",
		Status:      entities.AuditStatusSuccess,
	}
	if failure != "" {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = failure
	}
	s.recorder.Record(event)
}
