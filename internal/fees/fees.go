// Package fees computes late fees for overdue loans.
//
// A loan accrues nothing until the moment it passes its due date. From then on
// every full day late costs 0.50 for the first week and 1.00 per day after
// that, and a single loan never owes more than 15.00.
package fees

import "time"

const (
	// FirstTierDays is how many overdue days are charged at FirstTierRate.
	FirstTierDays = 7

	FirstTierRate  Money = 50 * Cent
	SecondTierRate Money = 1 * Dollar

	// MaxFee caps the late fee of a single loan.
	MaxFee Money = 15 * Dollar
)

const day = 24 * time.Hour

// Fee is derived at query time and never stored.
type Fee struct {
	Amount      Money `json:"fee_amount"`
	DaysOverdue int   `json:"days_overdue"`
}

// IsZero reports whether nothing is owed.
func (f Fee) IsZero() bool {
	return f.Amount == 0
}

// Calculate returns the fee owed at now for a loan due at due.
// Days overdue are whole days, truncated toward zero.
func Calculate(due, now time.Time) Fee {
	if !now.After(due) {
		return Fee{}
	}
	days := int(now.Sub(due) / day)
	return Fee{Amount: ForDays(days), DaysOverdue: days}
}

// ForDays returns the capped tiered fee for a number of overdue days.
func ForDays(days int) Money {
	if days <= 0 {
		return 0
	}
	if days <= FirstTierDays {
		return Money(days) * FirstTierRate
	}

	amount := FirstTierDays*FirstTierRate + Money(days-FirstTierDays)*SecondTierRate
	if amount > MaxFee {
		return MaxFee
	}
	return amount
}
