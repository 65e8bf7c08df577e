package services

import (
	"fmt"
	"log"
	"time"

	"github.com/mrlokans/circulation/internal/entities"
	"github.com/mrlokans/circulation/internal/fees"
)

// MaxOpenLoans is how many books a patron may hold at once.
const MaxOpenLoans = 5

// CirculationService lends books to patrons and takes them back.
type CirculationService struct {
	store    Store
	now      Clock
	recorder EventRecorder
}

func NewCirculationService(store Store) *CirculationService {
	return &CirculationService{
		store:    store,
		now:      systemClock,
		recorder: nopRecorder{},
	}
}

// SetClock replaces the time source. Used by tests and the overdue scan.
func (s *CirculationService) SetClock(clock Clock) {
	s.now = clock
}

func (s *CirculationService) SetRecorder(recorder EventRecorder) {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	s.recorder = recorder
}

// Borrow lends one copy of bookID to patronID for LoanPeriod.
// The checks, the new record and the availability change share one transaction.
func (s *CirculationService) Borrow(patronID string, bookID uint) (string, error) {
	if !ValidPatronID(patronID) {
		return "", validationError(MsgInvalidPatronID)
	}

	now := s.now().UTC()
	var borrowed *entities.Book
	var record *entities.BorrowRecord

	err := s.store.Transaction(func(tx Store) error {
		book, err := tx.GetBookByID(bookID)
		if err != nil {
			return storageError(MsgCatalogLookupFail, err)
		}
		if book == nil {
			return notFoundError(MsgBookNotFound)
		}
		if !book.IsAvailable() {
			return conflictError(MsgNotAvailable)
		}

		open, err := findOpenRecord(tx, patronID, bookID)
		if err != nil {
			return storageError(MsgRecordsLookupFail, err)
		}
		if open != nil {
			return conflictError(MsgAlreadyBorrowed)
		}

		count, err := tx.GetPatronOpenCount(patronID)
		if err != nil {
			return storageError(MsgRecordsLookupFail, err)
		}
		if count >= MaxOpenLoans {
			return conflictError(MsgBorrowLimit)
		}

		rec := &entities.BorrowRecord{
			PatronID:   patronID,
			BookID:     bookID,
			BorrowDate: now,
			DueDate:    entities.DueDateFor(now),
		}
		if err := tx.InsertBorrowRecord(rec); err != nil {
			return storageError(MsgBorrowRecordFailed, err)
		}
		if err := tx.UpdateBookAvailability(bookID, -1); err != nil {
			return storageError(MsgAvailabilityFailed, err)
		}

		borrowed, record = book, rec
		return nil
	})
	if err != nil {
		err = asServiceError(err, MsgBorrowRecordFailed)
		s.recordFailure(entities.AuditEventBorrow, patronID, bookID, err)
		return "", err
	}

	log.Printf("[CIRCULATION] Patron %s borrowed book %d, due %s", patronID, bookID, record.DueDate.Format(time.DateOnly))
	s.recorder.Record(&entities.AuditEvent{
		PatronID:    patronID,
		EventType:   entities.AuditEventBorrow,
		Action:      "borrow",
		Description: fmt.Sprintf("Borrowed %q", borrowed.Title),
		EntityType:  "book",
		EntityID:    &record.BookID,
		Status:      entities.AuditStatusSuccess,
	})

	return fmt.Sprintf("Successfully borrowed %q. Due date: %s.", borrowed.Title, record.DueDate.Format(time.DateOnly)), nil
}

// Return closes the patron's open record for bookID, puts the copy back and
// reports the late fee owed for it.
func (s *CirculationService) Return(patronID string, bookID uint) (string, error) {
	now := s.now().UTC()
	var fee fees.Fee

	err := s.store.Transaction(func(tx Store) error {
		record, err := findOpenRecord(tx, patronID, bookID)
		if err != nil {
			return storageError(MsgRecordsLookupFail, err)
		}
		if record == nil {
			return notFoundError(MsgNotBorrowed)
		}

		if err := tx.UpdateBookAvailability(bookID, 1); err != nil {
			return storageError(MsgAvailabilityFailed, err)
		}

		fee = fees.Calculate(record.DueDate, now)

		if err := tx.UpdateBorrowRecordReturnDate(patronID, bookID, now); err != nil {
			return storageError(MsgReturnDateFailed, err)
		}
		return nil
	})
	if err != nil {
		err = asServiceError(err, MsgReturnDateFailed)
		s.recordFailure(entities.AuditEventReturn, patronID, bookID, err)
		return "", err
	}

	log.Printf("[CIRCULATION] Patron %s returned book %d (%d days late, fee %s)", patronID, bookID, fee.DaysOverdue, fee.Amount)
	s.recorder.Record(&entities.AuditEvent{
		PatronID:    patronID,
		EventType:   entities.AuditEventReturn,
		Action:      "return",
		Description: fmt.Sprintf("Returned book %d, late fee $%s", bookID, fee.Amount),
		EntityType:  "book",
		EntityID:    &bookID,
		Status:      entities.AuditStatusSuccess,
	})

	if fee.IsZero() {
		return MsgReturnedNoFee, nil
	}
	return fmt.Sprintf(
		"You have successfully returned your book. This book is %d days late and you owe $%s in late fees for this book.",
		fee.DaysOverdue, fee.Amount,
	), nil
}

// CalculateFee returns what the patron currently owes for an open loan of
// bookID. No open loan means no fee.
func (s *CirculationService) CalculateFee(patronID string, bookID uint) (fees.Fee, error) {
	record, err := findOpenRecord(s.store, patronID, bookID)
	if err != nil {
		return fees.Fee{}, storageError(MsgRecordsLookupFail, err)
	}
	if record == nil {
		return fees.Fee{}, nil
	}
	return fees.Calculate(record.DueDate, s.now().UTC()), nil
}

func (s *CirculationService) recordFailure(eventType entities.AuditEventType, patronID string, bookID uint, err error) {
	if KindOf(err) == KindStorage {
		log.Printf("[CIRCULATION] %s failed for patron %s, book %d: %v", eventType, patronID, bookID, err)
	}
	s.recorder.Record(&entities.AuditEvent{
		PatronID:   patronID,
		EventType:  eventType,
		Action:     string(eventType),
		EntityType: "book",
		EntityID:   &bookID,
		Status:     entities.AuditStatusFailed,
		ErrorMsg:   MessageOf(err),
	})
}

func findOpenRecord(store LoanStore, patronID string, bookID uint) (*entities.BorrowRecord, error) {
	records, err := store.GetPatronOpenRecords(patronID)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].BookID == bookID {
			return &records[i], nil
		}
	}
	return nil, nil
}
