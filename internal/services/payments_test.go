package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/circulation/internal/fees"
	"github.com/mrlokans/circulation/internal/payment"
)

type gatewayCall struct {
	patronID      string
	transactionID string
	amount        fees.Money
	description   string
}

type fakeGateway struct {
	charge payment.Charge
	refund payment.Refund
	err    error

	payments []gatewayCall
	refunds  []gatewayCall
}

func (g *fakeGateway) ProcessPayment(_ context.Context, patronID string, amount fees.Money, description string) (payment.Charge, error) {
	g.payments = append(g.payments, gatewayCall{patronID: patronID, amount: amount, description: description})
	return g.charge, g.err
}

func (g *fakeGateway) RefundPayment(_ context.Context, transactionID string, amount fees.Money) (payment.Refund, error) {
	g.refunds = append(g.refunds, gatewayCall{transactionID: transactionID, amount: amount})
	return g.refund, g.err
}

func setupPayments(t *testing.T, gw *fakeGateway) (*PaymentService, *memStore) {
	t.Helper()
	store := newMemStore()
	circulation := NewCirculationService(store)
	circulation.SetClock(fixedClock(now))
	return NewPaymentService(circulation, store, gw), store
}

func TestPaymentService_PayLateFees(t *testing.T) {
	gw := &fakeGateway{charge: payment.Charge{Approved: true, TransactionID: "txn_123", Message: "success"}}
	svc, store := setupPayments(t, gw)
	book := store.addBook("The Great Gatsby", "F. Scott Fitzgerald", "9780743273565", 1, 0)
	store.addRecord("123456", book.ID, now.AddDate(0, 0, -23), nil)

	receipt, err := svc.PayLateFees(context.Background(), "123456", book.ID)
	require.NoError(t, err)
	assert.Equal(t, "txn_123", receipt.TransactionID)
	assert.Equal(t, fees.Money(550), receipt.Amount)
	assert.Equal(t, "Payment successful! success", receipt.Message)

	require.Len(t, gw.payments, 1)
	assert.Equal(t, gatewayCall{
		patronID:    "123456",
		amount:      550,
		description: "Late fees for 'The Great Gatsby'",
	}, gw.payments[0])
}

func TestPaymentService_PayLateFeesFailures(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		gw := &fakeGateway{charge: payment.Charge{Message: "card declined"}}
		svc, store := setupPayments(t, gw)
		book := store.addBook("A", "B", "1234567890123", 1, 0)
		store.addRecord("123456", book.ID, now.AddDate(0, 0, -23), nil)

		_, err := svc.PayLateFees(context.Background(), "123456", book.ID)
		assert.Equal(t, KindDeclined, KindOf(err))
		assert.Equal(t, "Payment failed: card declined", MessageOf(err))
		assert.Len(t, gw.payments, 1)
	})

	t.Run("gateway error", func(t *testing.T) {
		gw := &fakeGateway{err: errors.New("network error")}
		svc, store := setupPayments(t, gw)
		book := store.addBook("A", "B", "1234567890123", 1, 0)
		store.addRecord("123456", book.ID, now.AddDate(0, 0, -23), nil)

		_, err := svc.PayLateFees(context.Background(), "123456", book.ID)
		assert.Equal(t, KindGateway, KindOf(err))
		assert.Equal(t, "Payment processing error: network error", MessageOf(err))
	})

	t.Run("invalid patron never reaches the gateway", func(t *testing.T) {
		gw := &fakeGateway{}
		svc, _ := setupPayments(t, gw)

		_, err := svc.PayLateFees(context.Background(), "12345", 1)
		assert.Equal(t, MsgInvalidPatronID, MessageOf(err))
		assert.Empty(t, gw.payments)
	})

	t.Run("nothing owed", func(t *testing.T) {
		gw := &fakeGateway{}
		svc, store := setupPayments(t, gw)
		book := store.addBook("A", "B", "1234567890123", 1, 0)
		store.addRecord("123456", book.ID, now.AddDate(0, 0, -3), nil)

		_, err := svc.PayLateFees(context.Background(), "123456", book.ID)
		assert.Equal(t, MsgNoLateFees, MessageOf(err))
		assert.Empty(t, gw.payments)
	})
}

func TestPaymentService_RefundLateFee(t *testing.T) {
	t.Run("approved", func(t *testing.T) {
		gw := &fakeGateway{refund: payment.Refund{Approved: true, Message: "Refund processed successfully!"}}
		svc, _ := setupPayments(t, gw)

		msg, err := svc.RefundLateFee(context.Background(), "txn_123", 7*fees.Dollar)
		require.NoError(t, err)
		assert.Equal(t, "Refund processed successfully!", msg)
		require.Len(t, gw.refunds, 1)
		assert.Equal(t, "txn_123", gw.refunds[0].transactionID)
		assert.Equal(t, 7*fees.Dollar, gw.refunds[0].amount)
	})

	t.Run("maximum fee is refundable", func(t *testing.T) {
		gw := &fakeGateway{refund: payment.Refund{Approved: true, Message: "ok"}}
		svc, _ := setupPayments(t, gw)

		_, err := svc.RefundLateFee(context.Background(), "txn_123", fees.MaxFee)
		assert.NoError(t, err)
	})

	rejections := []struct {
		name   string
		txnID  string
		amount fees.Money
		want   string
	}{
		{"bad transaction id", "abc_123", 500, MsgInvalidTransaction},
		{"empty transaction id", "", 500, MsgInvalidTransaction},
		{"zero amount", "txn_123", 0, MsgRefundNotPositive},
		{"negative amount", "txn_123", -100, MsgRefundNotPositive},
		{"over the maximum fee", "txn_123", fees.MaxFee + 1, MsgRefundExceedsMaxFee},
	}
	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{}
			svc, _ := setupPayments(t, gw)

			_, err := svc.RefundLateFee(context.Background(), tt.txnID, tt.amount)
			assert.Equal(t, tt.want, MessageOf(err))
			assert.Empty(t, gw.refunds)
		})
	}

	t.Run("declined", func(t *testing.T) {
		gw := &fakeGateway{refund: payment.Refund{Message: "too late"}}
		svc, _ := setupPayments(t, gw)

		_, err := svc.RefundLateFee(context.Background(), "txn_123", 100)
		assert.Equal(t, "Refund failed: too late", MessageOf(err))
	})

	t.Run("gateway error", func(t *testing.T) {
		gw := &fakeGateway{err: errors.New("timeout")}
		svc, _ := setupPayments(t, gw)

		_, err := svc.RefundLateFee(context.Background(), "txn_123", 100)
		assert.Equal(t, "Refund processing error: timeout", MessageOf(err))
	})
}
