package services

import (
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/mrlokans/circulation/internal/entities"
)

const (
	maxTitleLength  = 200
	maxAuthorLength = 100
	isbnLength      = 13
)

// CatalogService adds books to the catalog and reads them back.
type CatalogService struct {
	store    BookStore
	recorder EventRecorder
}

// NewCatalogService creates a new CatalogService backed by store.
func NewCatalogService(store BookStore) *CatalogService {
	return &CatalogService{store: store, recorder: nopRecorder{}}
}

// SetRecorder sets where audit events for catalog changes go.
func (s *CatalogService) SetRecorder(recorder EventRecorder) {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	s.recorder = recorder
}

// AddBook validates the input and inserts a new book with every copy available.
// Validation stops at the first failing rule.
func (s *CatalogService) AddBook(title, author, isbn string, totalCopies int) (string, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)

	if err := validateBook(title, author, isbn, totalCopies); err != nil {
		return "", err
	}

	existing, err := s.store.GetBookByISBN(isbn)
	if err != nil {
		return "", storageError(MsgAddBookFailed, err)
	}
	if existing != nil {
		return "", conflictError(MsgDuplicateISBN)
	}

	book := &entities.Book{
		Title:           title,
		Author:          author,
		ISBN:            isbn,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
	}
	if err := s.store.InsertBook(book); err != nil {
		log.Printf("[CATALOG] Failed to insert book %q: %v", title, err)
		return "", storageError(MsgAddBookFailed, err)
	}

	s.recorder.Record(&entities.AuditEvent{
		EventType:   entities.AuditEventCatalog,
		Action:      "add_book",
		Description: fmt.Sprintf("Added %q by %s (%d copies)", title, author, totalCopies),
		EntityType:  "book",
		EntityID:    &book.ID,
		Status:      entities.AuditStatusSuccess,
	})

	return fmt.Sprintf("Book %q has been successfully added to the catalog.", title), nil
}

func validateBook(title, author, isbn string, totalCopies int) error {
	switch {
	case title == "":
		return validationError(MsgTitleRequired)
	case utf8.RuneCountInString(title) > maxTitleLength:
		return validationError(MsgTitleTooLong)
	case author == "":
		return validationError(MsgAuthorRequired)
	case utf8.RuneCountInString(author) > maxAuthorLength:
		return validationError(MsgAuthorTooLong)
	case utf8.RuneCountInString(isbn) != isbnLength:
		return validationError(MsgISBNLength)
	case strings.Contains(isbn, " "):
		return validationError(MsgISBNSpaces)
	case !isDigits(isbn):
		return validationError(MsgISBNDigits)
	case totalCopies <= 0:
		return validationError(MsgCopiesPositive)
	}
	return nil
}

// GetBook returns a single book or a not found error.
func (s *CatalogService) GetBook(id uint) (*entities.Book, error) {
	book, err := s.store.GetBookByID(id)
	if err != nil {
		return nil, storageError(MsgCatalogLookupFail, err)
	}
	if book == nil {
		return nil, notFoundError(MsgBookNotFound)
	}
	return book, nil
}

// ListBooks returns the whole catalog.
func (s *CatalogService) ListBooks() ([]entities.Book, error) {
	books, err := s.store.GetAllBooks()
	if err != nil {
		return nil, storageError(MsgCatalogLookupFail, err)
	}
	if books == nil {
		books = []entities.Book{}
	}
	return books, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidPatronID reports whether id is exactly six ASCII digits.
func ValidPatronID(id string) bool {
	return len(id) == 6 && isDigits(id)
}
