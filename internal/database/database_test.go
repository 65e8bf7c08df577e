package database

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/circulation/internal/database/books"
	"github.com/mrlokans/circulation/internal/entities"
	"github.com/mrlokans/circulation/internal/services"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) *Database {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "library.db")
	db, err := NewDatabaseWithLogger(dbPath, logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDatabase_SeedSampleData(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.SeedSampleData(now))
	require.NoError(t, db.SeedSampleData(now), "seeding twice is a no-op")

	store := db.Store()
	all, err := store.GetAllBooks()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "The Great Gatsby", all[0].Title)

	orwell, err := store.GetBookByISBN("9780451524935")
	require.NoError(t, err)
	require.NotNil(t, orwell)
	assert.Equal(t, 0, orwell.AvailableCopies)

	open, err := store.GetPatronOpenRecords("123456")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, orwell.ID, open[0].BookID)
	assert.Equal(t, "1984", open[0].Book.Title)
	assert.True(t, open[0].BorrowDate.Equal(now.Add(-SampleLoanAge)))
	assert.True(t, open[0].DueDate.Equal(now.Add(-SampleLoanAge).Add(entities.LoanPeriod)))
}

func TestDatabase_Ping(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, db.Ping())
}

func TestStore_TransactionCommits(t *testing.T) {
	db := setupTestDB(t)
	store := db.Store()
	book := &entities.Book{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441172719", TotalCopies: 2, AvailableCopies: 2}
	require.NoError(t, store.InsertBook(book))

	now := time.Now().UTC()
	err := store.Transaction(func(tx services.Store) error {
		if err := tx.InsertBorrowRecord(&entities.BorrowRecord{
			PatronID: "123456", BookID: book.ID, BorrowDate: now, DueDate: entities.DueDateFor(now),
		}); err != nil {
			return err
		}
		return tx.UpdateBookAvailability(book.ID, -1)
	})
	require.NoError(t, err)

	got, err := store.GetBookByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableCopies)

	count, err := store.GetPatronOpenCount("123456")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestStore_TransactionRollsBack(t *testing.T) {
	db := setupTestDB(t)
	store := db.Store()
	book := &entities.Book{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441172719", TotalCopies: 1, AvailableCopies: 0}
	require.NoError(t, store.InsertBook(book))

	now := time.Now().UTC()
	err := store.Transaction(func(tx services.Store) error {
		if err := tx.InsertBorrowRecord(&entities.BorrowRecord{
			PatronID: "123456", BookID: book.ID, BorrowDate: now, DueDate: entities.DueDateFor(now),
		}); err != nil {
			return err
		}
		// Fails: no copies left.
		return tx.UpdateBookAvailability(book.ID, -1)
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, books.ErrAvailabilityOutOfRange))

	count, err := store.GetPatronOpenCount("123456")
	require.NoError(t, err)
	assert.Zero(t, count, "borrow record must be rolled back")
}

func TestCirculation_EndToEnd(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.SeedSampleData(time.Now().UTC()))
	store := db.Store()

	gatsby, err := store.GetBookByISBN("9780743273565")
	require.NoError(t, err)

	svc := services.NewCirculationService(store)
	msg, err := svc.Borrow("654321", gatsby.ID)
	require.NoError(t, err)
	assert.Contains(t, msg, `Successfully borrowed "The Great Gatsby"`)

	_, err = svc.Borrow("654321", gatsby.ID)
	assert.Equal(t, services.MsgAlreadyBorrowed, services.MessageOf(err))

	msg, err = svc.Return("654321", gatsby.ID)
	require.NoError(t, err)
	assert.Equal(t, services.MsgReturnedNoFee, msg)

	got, err := store.GetBookByID(gatsby.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.AvailableCopies)
}

func TestCirculation_ConcurrentBorrowsOfLastCopy(t *testing.T) {
	db := setupTestDB(t)
	store := db.Store()
	book := &entities.Book{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441172719", TotalCopies: 1, AvailableCopies: 1}
	require.NoError(t, store.InsertBook(book))

	svc := services.NewCirculationService(store)
	patrons := []string{"100001", "100002", "100003", "100004"}

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for _, p := range patrons {
		wg.Add(1)
		go func(patronID string) {
			defer wg.Done()
			if _, err := svc.Borrow(patronID, book.ID); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(p)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	got, err := store.GetBookByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableCopies)
}
