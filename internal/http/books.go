package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulation/internal/entities"
)

// Catalog is the catalog service as seen by the books endpoints.
type Catalog interface {
	AddBook(title, author, isbn string, totalCopies int) (string, error)
	GetBook(id uint) (*entities.Book, error)
	ListBooks() ([]entities.Book, error)
}

type BooksController struct {
	catalog Catalog
}

func NewBooksController(catalog Catalog) *BooksController {
	return &BooksController{catalog: catalog}
}

// AddBookRequest is the body of POST /api/books. TotalCopies is kept raw so
// a fractional or quoted value reaches catalog validation instead of failing
// the whole body.
type AddBookRequest struct {
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	ISBN        string          `json:"isbn"`
	TotalCopies json.RawMessage `json:"total_copies"`
}

// copies returns the integer value of total_copies, or 0 when the field is
// missing or not a JSON integer.
func (r AddBookRequest) copies() int {
	n, err := strconv.Atoi(string(r.TotalCopies))
	if err != nil {
		return 0
	}
	return n
}

// GetAllBooks handles GET /api/books
func (bc *BooksController) GetAllBooks(c *gin.Context) {
	books, err := bc.catalog.ListBooks()
	if err != nil {
		respondServiceError(c, err, "list books")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"books": books,
		"count": len(books),
	})
}

// GetBook handles GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.catalog.GetBook(id)
	if err != nil {
		respondServiceError(c, err, "get book")
		return
	}

	c.JSON(http.StatusOK, book)
}

// AddBook handles POST /api/books
func (bc *BooksController) AddBook(c *gin.Context) {
	var req AddBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, msgInvalidBody)
		return
	}

	message, err := bc.catalog.AddBook(req.Title, req.Author, req.ISBN, req.copies())
	if err != nil {
		respondServiceError(c, err, "add book")
		return
	}

	respondMessage(c, http.StatusCreated, message)
}
