// Package payment talks to the card processor that collects late fees.
//
// Only a mock processor ships with the service. It follows a small set of
// fixed rules so that demos and end-to-end tests behave predictably.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/circulation/internal/fees"
)

// TransactionPrefix starts every transaction id the processor hands out.
const TransactionPrefix = "txn_"

var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// Charge is the processor's answer to a payment request.
type Charge struct {
	Approved      bool
	TransactionID string
	Message       string
}

// Refund is the processor's answer to a refund request.
type Refund struct {
	Approved bool
	Message  string
}

// Gateway charges and refunds patrons. A returned error means the processor
// could not be reached or failed; a declined request is not an error.
type Gateway interface {
	ProcessPayment(ctx context.Context, patronID string, amount fees.Money, description string) (Charge, error)
	RefundPayment(ctx context.Context, transactionID string, amount fees.Money) (Refund, error)
}

// MockGateway is an in-process Gateway.
type MockGateway struct {
	latency   time.Duration
	maxAmount fees.Money
	newID     func() string
}

// NewMockGateway creates a MockGateway that declines charges above maxAmount
// and waits latency before answering.
func NewMockGateway(latency time.Duration, maxAmount fees.Money) *MockGateway {
	return &MockGateway{
		latency:   latency,
		maxAmount: maxAmount,
		newID: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		},
	}
}

func (g *MockGateway) ProcessPayment(ctx context.Context, patronID string, amount fees.Money, description string) (Charge, error) {
	if err := g.wait(ctx); err != nil {
		return Charge{}, err
	}

	if amount <= 0 {
		return Charge{Message: "Invalid amount: must be greater than 0"}, nil
	}
	if g.maxAmount > 0 && amount > g.maxAmount {
		return Charge{Message: "Payment declined: amount exceeds limit"}, nil
	}
	if len(patronID) != 6 {
		return Charge{Message: "Invalid patron ID format"}, nil
	}

	txnID := fmt.Sprintf("%s%s_%s", TransactionPrefix, patronID, g.newID())
	log.Printf("[PAYMENT] Charged patron %s $%s (%s), transaction %s", patronID, amount, description, txnID)

	return Charge{
		Approved:      true,
		TransactionID: txnID,
		Message:       fmt.Sprintf("Payment of $%s processed successfully", amount),
	}, nil
}

func (g *MockGateway) RefundPayment(ctx context.Context, transactionID string, amount fees.Money) (Refund, error) {
	if err := g.wait(ctx); err != nil {
		return Refund{}, err
	}

	if !strings.HasPrefix(transactionID, TransactionPrefix) {
		return Refund{Message: "Invalid transaction ID"}, nil
	}
	if amount <= 0 {
		return Refund{Message: "Invalid refund amount"}, nil
	}

	refundID := "refund_" + g.newID()
	log.Printf("[PAYMENT] Refunded $%s on %s, refund %s", amount, transactionID, refundID)

	return Refund{
		Approved: true,
		Message:  fmt.Sprintf("Refund of $%s processed successfully. Refund ID: %s", amount, refundID),
	}, nil
}

func (g *MockGateway) wait(ctx context.Context) error {
	if g.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(g.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, ctx.Err())
	case <-timer.C:
		return nil
	}
}
