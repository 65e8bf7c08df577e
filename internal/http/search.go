package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulation/internal/entities"
	"github.com/mrlokans/circulation/internal/services"
)

// Searcher finds catalog books by title, author or ISBN.
type Searcher interface {
	Search(term, field string) ([]entities.Book, error)
}

type SearchController struct {
	searcher Searcher
}

func NewSearchController(searcher Searcher) *SearchController {
	return &SearchController{searcher: searcher}
}

// Search handles GET /api/search?q=<term>&type=<title|author|isbn>
// The type defaults to title.
func (sc *SearchController) Search(c *gin.Context) {
	term := c.Query("q")
	field := c.DefaultQuery("type", services.SearchByTitle)

	books, err := sc.searcher.Search(term, field)
	if err != nil {
		respondServiceError(c, err, "search")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query": term,
		"type":  field,
		"books": books,
		"count": len(books),
	})
}
