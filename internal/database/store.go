package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/circulation/internal/database/books"
	"github.com/mrlokans/circulation/internal/database/loans"
	"github.com/mrlokans/circulation/internal/entities"
	"github.com/mrlokans/circulation/internal/services"
)

// Store combines the books and loans repositories behind services.Store.
type Store struct {
	db    *gorm.DB
	books *books.Repository
	loans *loans.Repository
}

// NewStore creates a Store over db. db may be a transaction handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:    db,
		books: books.NewRepository(db),
		loans: loans.NewRepository(db),
	}
}

// Store returns a services.Store backed by this database.
func (d *Database) Store() *Store {
	return NewStore(d.DB)
}

// Transaction runs fn inside a gorm transaction. The Store passed to fn
// issues every query on that transaction.
func (s *Store) Transaction(fn func(tx services.Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func (s *Store) GetBookByID(id uint) (*entities.Book, error) {
	return s.books.GetBookByID(id)
}

func (s *Store) GetBookByISBN(isbn string) (*entities.Book, error) {
	return s.books.GetBookByISBN(isbn)
}

func (s *Store) GetAllBooks() ([]entities.Book, error) {
	return s.books.GetAllBooks()
}

func (s *Store) InsertBook(book *entities.Book) error {
	return s.books.InsertBook(book)
}

func (s *Store) UpdateBookAvailability(bookID uint, delta int) error {
	return s.books.UpdateBookAvailability(bookID, delta)
}

func (s *Store) InsertBorrowRecord(record *entities.BorrowRecord) error {
	return s.loans.InsertBorrowRecord(record)
}

func (s *Store) UpdateBorrowRecordReturnDate(patronID string, bookID uint, returnedAt time.Time) error {
	return s.loans.UpdateBorrowRecordReturnDate(patronID, bookID, returnedAt)
}

func (s *Store) GetPatronOpenRecords(patronID string) ([]entities.BorrowRecord, error) {
	return s.loans.GetPatronOpenRecords(patronID)
}

func (s *Store) GetPatronAllRecords(patronID string) ([]entities.BorrowRecord, error) {
	return s.loans.GetPatronAllRecords(patronID)
}

func (s *Store) GetPatronOpenCount(patronID string) (int64, error) {
	return s.loans.GetPatronOpenCount(patronID)
}

func (s *Store) GetOverdueRecords(now time.Time) ([]entities.BorrowRecord, error) {
	return s.loans.GetOverdueRecords(now)
}
