package services

import (
	"strings"

	"github.com/mrlokans/circulation/internal/entities"
)

// Search fields accepted by SearchService.Search.
const (
	SearchByTitle  = "title"
	SearchByAuthor = "author"
	SearchByISBN   = "isbn"
)

type SearchService struct {
	store BookStore
}

func NewSearchService(store BookStore) *SearchService {
	return &SearchService{store: store}
}

// Search scans the catalog. Title and author match case-insensitive
// substrings, ISBN must match exactly and an unknown field matches nothing.
func (s *SearchService) Search(term, field string) ([]entities.Book, error) {
	books, err := s.store.GetAllBooks()
	if err != nil {
		return nil, storageError(MsgCatalogLookupFail, err)
	}

	needle := strings.ToLower(term)
	results := []entities.Book{}
	for _, book := range books {
		var match bool
		switch field {
		case SearchByTitle:
			match = strings.Contains(strings.ToLower(book.Title), needle)
		case SearchByAuthor:
			match = strings.Contains(strings.ToLower(book.Author), needle)
		case SearchByISBN:
			match = book.ISBN == term
		}
		if match {
			results = append(results, book)
		}
	}
	return results, nil
}
