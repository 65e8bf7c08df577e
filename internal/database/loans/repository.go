// Package loans provides database operations for borrow records.
//
// Every query preloads the borrowed Book so callers can show titles without
// a second round trip.
package loans

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/circulation/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// InsertBorrowRecord creates a new open borrow record.
func (r *Repository) InsertBorrowRecord(record *entities.BorrowRecord) error {
	return r.db.Omit("Book").Create(record).Error
}

// UpdateBorrowRecordReturnDate closes the patron's open record for bookID.
func (r *Repository) UpdateBorrowRecordReturnDate(patronID string, bookID uint, returnedAt time.Time) error {
	return r.db.Model(&entities.BorrowRecord{}).
		Where("patron_id = ? AND book_id = ? AND return_date IS NULL", patronID, bookID).
		Update("return_date", returnedAt).Error
}

// GetPatronOpenRecords returns the patron's unreturned loans, oldest first.
func (r *Repository) GetPatronOpenRecords(patronID string) ([]entities.BorrowRecord, error) {
	var records []entities.BorrowRecord
	err := r.db.Preload("Book").
		Where("patron_id = ? AND return_date IS NULL", patronID).
		Order("borrow_date ASC, id ASC").
		Find(&records).Error
	return records, err
}

// GetPatronAllRecords returns every loan the patron ever made, newest first.
func (r *Repository) GetPatronAllRecords(patronID string) ([]entities.BorrowRecord, error) {
	var records []entities.BorrowRecord
	err := r.db.Preload("Book").
		Where("patron_id = ?", patronID).
		Order("borrow_date DESC, id DESC").
		Find(&records).Error
	return records, err
}

// GetPatronOpenCount returns how many books the patron currently holds.
func (r *Repository) GetPatronOpenCount(patronID string) (int64, error) {
	var count int64
	err := r.db.Model(&entities.BorrowRecord{}).
		Where("patron_id = ? AND return_date IS NULL", patronID).
		Count(&count).Error
	return count, err
}

// GetOverdueRecords returns open loans whose due date is before now.
// The comparison is done on parsed times since SQLite stores them as text.
func (r *Repository) GetOverdueRecords(now time.Time) ([]entities.BorrowRecord, error) {
	var open []entities.BorrowRecord
	err := r.db.Preload("Book").
		Where("return_date IS NULL").
		Order("due_date ASC, id ASC").
		Find(&open).Error
	if err != nil {
		return nil, err
	}

	overdue := make([]entities.BorrowRecord, 0, len(open))
	for _, rec := range open {
		if rec.IsOverdue(now) {
			overdue = append(overdue, rec)
		}
	}
	return overdue, nil
}
