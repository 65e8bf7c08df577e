package services

import (
	"sort"
	"time"

	"github.com/mrlokans/circulation/internal/fees"
)

// LoanSummary is one open loan in a patron report.
type LoanSummary struct {
	BookID     uint      `json:"book_id"`
	Title      string    `json:"title"`
	BorrowDate time.Time `json:"borrow_date"`
	DueDate    time.Time `json:"due_date"`
	Fee        fees.Fee  `json:"late_fee"`
}

// HistoryEntry is any loan, open or closed, in a patron report.
type HistoryEntry struct {
	BookID     uint       `json:"book_id"`
	Title      string     `json:"title"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date"`
}

type PatronReport struct {
	PatronID               string         `json:"patron_id"`
	CurrentlyBorrowed      []LoanSummary  `json:"curr_borrowed_books"`
	TotalLateFeesOwed      fees.Money     `json:"total_late_fees_owed"`
	CurrentlyBorrowedCount int            `json:"num_books_currently_borrowed"`
	BorrowingHistory       []HistoryEntry `json:"borrowing_history"`
}

// OverdueLoan is an open loan past its due date.
type OverdueLoan struct {
	RecordID uint      `json:"record_id"`
	PatronID string    `json:"patron_id"`
	BookID   uint      `json:"book_id"`
	Title    string    `json:"title"`
	DueDate  time.Time `json:"due_date"`
	Fee      fees.Fee  `json:"late_fee"`
}

// ReportService builds read-only views over borrow records.
type ReportService struct {
	store LoanStore
	now   Clock
}

func NewReportService(store LoanStore) *ReportService {
	return &ReportService{store: store, now: systemClock}
}

func (s *ReportService) SetClock(clock Clock) {
	s.now = clock
}

// PatronStatus reports the patron's open loans with their current fees, the
// total owed and the full borrowing history.
func (s *ReportService) PatronStatus(patronID string) (*PatronReport, error) {
	if !ValidPatronID(patronID) {
		return nil, validationError(MsgInvalidPatronID)
	}

	open, err := s.store.GetPatronOpenRecords(patronID)
	if err != nil {
		return nil, storageError(MsgRecordsLookupFail, err)
	}
	all, err := s.store.GetPatronAllRecords(patronID)
	if err != nil {
		return nil, storageError(MsgRecordsLookupFail, err)
	}

	now := s.now().UTC()
	report := &PatronReport{
		PatronID:          patronID,
		CurrentlyBorrowed: make([]LoanSummary, 0, len(open)),
		BorrowingHistory:  make([]HistoryEntry, 0, len(all)),
	}

	for _, r := range open {
		fee := fees.Calculate(r.DueDate, now)
		report.CurrentlyBorrowed = append(report.CurrentlyBorrowed, LoanSummary{
			BookID:     r.BookID,
			Title:      r.Book.Title,
			BorrowDate: r.BorrowDate,
			DueDate:    r.DueDate,
			Fee:        fee,
		})
		report.TotalLateFeesOwed += fee.Amount
	}
	report.CurrentlyBorrowedCount = len(report.CurrentlyBorrowed)

	for _, r := range all {
		report.BorrowingHistory = append(report.BorrowingHistory, HistoryEntry{
			BookID:     r.BookID,
			Title:      r.Book.Title,
			BorrowDate: r.BorrowDate,
			DueDate:    r.DueDate,
			ReturnDate: r.ReturnDate,
		})
	}

	return report, nil
}

// OverdueLoans lists every open loan past its due date, oldest due first.
// Loans less than a full day late are included with a zero fee; the overdue
// report shows them and the scan skips them.
func (s *ReportService) OverdueLoans() ([]OverdueLoan, error) {
	now := s.now().UTC()
	records, err := s.store.GetOverdueRecords(now)
	if err != nil {
		return nil, storageError(MsgRecordsLookupFail, err)
	}

	loans := make([]OverdueLoan, 0, len(records))
	for _, r := range records {
		loans = append(loans, OverdueLoan{
			RecordID: r.ID,
			PatronID: r.PatronID,
			BookID:   r.BookID,
			Title:    r.Book.Title,
			DueDate:  r.DueDate,
			Fee:      fees.Calculate(r.DueDate, now),
		})
	}
	sort.SliceStable(loans, func(i, j int) bool {
		return loans[i].DueDate.Before(loans[j].DueDate)
	})
	return loans, nil
}
