package services

import (
	"errors"
	"sync"
	"time"

	"github.com/mrlokans/circulation/internal/entities"
)

var errStoreDown = errors.New("store down")

// memStore is an in-memory Store. Transactions snapshot the state and restore
// it when fn fails.
type memStore struct {
	mu      sync.Mutex
	books   map[uint]*entities.Book
	records []entities.BorrowRecord
	nextID  uint

	failInsertRecord bool
	failAvailability bool
	failReturnDate   bool
	failReads        bool
}

func newMemStore() *memStore {
	return &memStore{books: map[uint]*entities.Book{}}
}

func (m *memStore) addBook(title, author, isbn string, total, available int) *entities.Book {
	m.nextID++
	b := &entities.Book{ID: m.nextID, Title: title, Author: author, ISBN: isbn, TotalCopies: total, AvailableCopies: available}
	m.books[b.ID] = b
	return b
}

func (m *memStore) addRecord(patronID string, bookID uint, borrowed time.Time, returned *time.Time) {
	m.nextID++
	m.records = append(m.records, entities.BorrowRecord{
		ID:         m.nextID,
		PatronID:   patronID,
		BookID:     bookID,
		BorrowDate: borrowed,
		DueDate:    entities.DueDateFor(borrowed),
		ReturnDate: returned,
	})
}

func (m *memStore) withBook(r entities.BorrowRecord) entities.BorrowRecord {
	if b, ok := m.books[r.BookID]; ok {
		r.Book = *b
	}
	return r
}

func (m *memStore) GetBookByID(id uint) (*entities.Book, error) {
	if m.failReads {
		return nil, errStoreDown
	}
	b, ok := m.books[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) GetBookByISBN(isbn string) (*entities.Book, error) {
	if m.failReads {
		return nil, errStoreDown
	}
	for _, b := range m.books {
		if b.ISBN == isbn {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetAllBooks() ([]entities.Book, error) {
	if m.failReads {
		return nil, errStoreDown
	}
	var books []entities.Book
	for id := uint(1); id <= m.nextID; id++ {
		if b, ok := m.books[id]; ok {
			books = append(books, *b)
		}
	}
	return books, nil
}

func (m *memStore) InsertBook(book *entities.Book) error {
	m.nextID++
	book.ID = m.nextID
	cp := *book
	m.books[book.ID] = &cp
	return nil
}

func (m *memStore) UpdateBookAvailability(bookID uint, delta int) error {
	if m.failAvailability {
		return errStoreDown
	}
	b, ok := m.books[bookID]
	if !ok {
		return errors.New("no such book")
	}
	next := b.AvailableCopies + delta
	if next < 0 || next > b.TotalCopies {
		return errors.New("availability out of range")
	}
	b.AvailableCopies = next
	return nil
}

func (m *memStore) InsertBorrowRecord(record *entities.BorrowRecord) error {
	if m.failInsertRecord {
		return errStoreDown
	}
	m.nextID++
	record.ID = m.nextID
	m.records = append(m.records, *record)
	return nil
}

func (m *memStore) UpdateBorrowRecordReturnDate(patronID string, bookID uint, returnedAt time.Time) error {
	if m.failReturnDate {
		return errStoreDown
	}
	for i := range m.records {
		r := &m.records[i]
		if r.PatronID == patronID && r.BookID == bookID && r.ReturnDate == nil {
			t := returnedAt
			r.ReturnDate = &t
		}
	}
	return nil
}

func (m *memStore) GetPatronOpenRecords(patronID string) ([]entities.BorrowRecord, error) {
	if m.failReads {
		return nil, errStoreDown
	}
	var out []entities.BorrowRecord
	for _, r := range m.records {
		if r.PatronID == patronID && r.IsOpen() {
			out = append(out, m.withBook(r))
		}
	}
	return out, nil
}

func (m *memStore) GetPatronAllRecords(patronID string) ([]entities.BorrowRecord, error) {
	if m.failReads {
		return nil, errStoreDown
	}
	var out []entities.BorrowRecord
	for _, r := range m.records {
		if r.PatronID == patronID {
			out = append(out, m.withBook(r))
		}
	}
	return out, nil
}

func (m *memStore) GetPatronOpenCount(patronID string) (int64, error) {
	open, err := m.GetPatronOpenRecords(patronID)
	return int64(len(open)), err
}

func (m *memStore) GetOverdueRecords(now time.Time) ([]entities.BorrowRecord, error) {
	if m.failReads {
		return nil, errStoreDown
	}
	var out []entities.BorrowRecord
	for _, r := range m.records {
		if r.IsOverdue(now) {
			out = append(out, m.withBook(r))
		}
	}
	return out, nil
}

func (m *memStore) Transaction(fn func(tx Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	books := make(map[uint]entities.Book, len(m.books))
	for id, b := range m.books {
		books[id] = *b
	}
	records := append([]entities.BorrowRecord(nil), m.records...)

	if err := fn(m); err != nil {
		for id, b := range books {
			cp := b
			m.books[id] = &cp
		}
		m.records = records
		return err
	}
	return nil
}

type recorderSpy struct {
	events []*entities.AuditEvent
}

func (r *recorderSpy) Record(event *entities.AuditEvent) {
	r.events = append(r.events, event)
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
