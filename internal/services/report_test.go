package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/circulation/internal/fees"
)

func setupReport(t *testing.T) (*ReportService, *memStore) {
	t.Helper()
	store := newMemStore()
	svc := NewReportService(store)
	svc.SetClock(fixedClock(now))
	return svc, store
}

func TestReportService_PatronStatusTwoOverdueLoans(t *testing.T) {
	svc, store := setupReport(t)
	a := store.addBook("A", "Author A", "1111111111111", 1, 0)
	b := store.addBook("B", "Author B", "2222222222222", 1, 0)
	store.addRecord("123456", a.ID, now.AddDate(0, 0, -23), nil) // 9 days late
	store.addRecord("123456", b.ID, now.AddDate(0, 0, -44), nil) // 30 days late

	report, err := svc.PatronStatus("123456")
	require.NoError(t, err)

	assert.Equal(t, "123456", report.PatronID)
	assert.Equal(t, 2, report.CurrentlyBorrowedCount)
	assert.Equal(t, fees.Money(2050), report.TotalLateFeesOwed)
	require.Len(t, report.CurrentlyBorrowed, 2)
	assert.Equal(t, "A", report.CurrentlyBorrowed[0].Title)
	assert.Len(t, report.BorrowingHistory, 2)
}

func TestReportService_PatronStatusWithHistory(t *testing.T) {
	svc, store := setupReport(t)
	a := store.addBook("A", "Author A", "1111111111111", 1, 0)
	b := store.addBook("B", "Author B", "2222222222222", 1, 1)
	c := store.addBook("C", "Author C", "3333333333333", 1, 1)
	returnedB := now.AddDate(0, 0, -2)
	returnedC := now.AddDate(0, 0, -1)
	store.addRecord("123456", a.ID, now.AddDate(0, 0, -23), nil)
	store.addRecord("123456", b.ID, now.AddDate(0, 0, -40), &returnedB)
	store.addRecord("123456", c.ID, now.AddDate(0, 0, -30), &returnedC)

	report, err := svc.PatronStatus("123456")
	require.NoError(t, err)

	assert.Equal(t, 1, report.CurrentlyBorrowedCount)
	assert.Equal(t, fees.Money(550), report.TotalLateFeesOwed)
	assert.Len(t, report.BorrowingHistory, 3)
	assert.NotNil(t, report.BorrowingHistory[1].ReturnDate)
}

func TestReportService_PatronStatusNoRecords(t *testing.T) {
	svc, _ := setupReport(t)

	report, err := svc.PatronStatus("999999")
	require.NoError(t, err)
	assert.NotNil(t, report.CurrentlyBorrowed)
	assert.NotNil(t, report.BorrowingHistory)
	assert.Empty(t, report.CurrentlyBorrowed)
	assert.Zero(t, report.TotalLateFeesOwed)
}

func TestReportService_PatronStatusDoesNotMutate(t *testing.T) {
	svc, store := setupReport(t)
	a := store.addBook("A", "Author A", "1111111111111", 1, 0)
	store.addRecord("123456", a.ID, now.AddDate(0, 0, -23), nil)

	first, err := svc.PatronStatus("123456")
	require.NoError(t, err)
	second, err := svc.PatronStatus("123456")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 0, store.books[a.ID].AvailableCopies)
}

func TestReportService_PatronStatusRejectsBadID(t *testing.T) {
	svc, _ := setupReport(t)

	_, err := svc.PatronStatus("12ab56")
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, MsgInvalidPatronID, MessageOf(err))
}

func TestReportService_OverdueLoans(t *testing.T) {
	svc, store := setupReport(t)
	a := store.addBook("A", "Author A", "1111111111111", 2, 0)
	store.addRecord("111111", a.ID, now.AddDate(0, 0, -20), nil) // 6 days late
	store.addRecord("222222", a.ID, now.AddDate(0, 0, -30), nil) // 16 days late
	store.addRecord("333333", a.ID, now.AddDate(0, 0, -3), nil)  // not due

	loans, err := svc.OverdueLoans()
	require.NoError(t, err)
	require.Len(t, loans, 2)
	assert.Equal(t, "222222", loans[0].PatronID)
	assert.Equal(t, fees.Money(1250), loans[0].Fee.Amount)
	assert.Equal(t, "111111", loans[1].PatronID)
	assert.Equal(t, fees.Money(300), loans[1].Fee.Amount)
}
