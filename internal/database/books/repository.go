// Package books provides database operations for the catalog.
//
// This package implements the services.BookStore interface defined in
// internal/services/interfaces.go.
//
// # Interface Implementation
//
//	var _ services.BookStore = (*Repository)(nil)
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBookByISBN("9780451524935")
package books

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/circulation/internal/entities"
)

// ErrAvailabilityOutOfRange is returned when an availability change would
// take a book below zero or above its total copies.
var ErrAvailabilityOutOfRange = errors.New("available copies out of range")

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetBookByID retrieves a book by its ID. Returns (nil, nil) when missing.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetBookByISBN retrieves a book by its ISBN. Returns (nil, nil) when missing.
func (r *Repository) GetBookByISBN(isbn string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("isbn = ?", isbn).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetAllBooks returns the whole catalog ordered by ID.
func (r *Repository) GetAllBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("id ASC").Find(&books).Error
	return books, err
}

// InsertBook creates a new book row and fills in its ID.
func (r *Repository) InsertBook(book *entities.Book) error {
	return r.db.Create(book).Error
}

// UpdateBookAvailability adds delta to the available copies of a book.
// The update only applies while the result stays within [0, total_copies].
func (r *Repository) UpdateBookAvailability(bookID uint, delta int) error {
	result := r.db.Model(&entities.Book{}).
		Where("id = ? AND available_copies + ? >= 0 AND available_copies + ? <= total_copies", bookID, delta, delta).
		Update("available_copies", gorm.Expr("available_copies + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("book %d: %w", bookID, ErrAvailabilityOutOfRange)
	}
	return nil
}

// CountBooks returns the number of books in the catalog.
func (r *Repository) CountBooks() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, err
}
