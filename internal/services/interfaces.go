package services

import (
	"time"

	"github.com/mrlokans/circulation/internal/entities"
)

// BookStore provides catalog accessors.
// Lookups return (nil, nil) when no row matches.
type BookStore interface {
	GetBookByID(id uint) (*entities.Book, error)
	GetBookByISBN(isbn string) (*entities.Book, error)
	GetAllBooks() ([]entities.Book, error)
	InsertBook(book *entities.Book) error
	UpdateBookAvailability(bookID uint, delta int) error
}

// LoanStore provides borrow record accessors. Records come back with their
// Book preloaded so callers can show titles.
type LoanStore interface {
	InsertBorrowRecord(record *entities.BorrowRecord) error
	UpdateBorrowRecordReturnDate(patronID string, bookID uint, returnedAt time.Time) error
	GetPatronOpenRecords(patronID string) ([]entities.BorrowRecord, error)
	GetPatronAllRecords(patronID string) ([]entities.BorrowRecord, error)
	GetPatronOpenCount(patronID string) (int64, error)
	GetOverdueRecords(now time.Time) ([]entities.BorrowRecord, error)
}

// Store is everything the circulation core needs from persistence.
type Store interface {
	BookStore
	LoanStore

	// Transaction runs fn against a Store bound to a single database
	// transaction. Any error returned by fn rolls the transaction back.
	Transaction(fn func(tx Store) error) error
}

// EventRecorder receives audit events for completed operations.
type EventRecorder interface {
	Record(event *entities.AuditEvent)
}

type nopRecorder struct{}

func (nopRecorder) Record(*entities.AuditEvent) {}

// Clock returns the current time. Services stamp records in UTC.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}
