package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulation/internal/fees"
)

// Circulation is the borrow/return service as seen by the API.
type Circulation interface {
	Borrow(patronID string, bookID uint) (string, error)
	Return(patronID string, bookID uint) (string, error)
	CalculateFee(patronID string, bookID uint) (fees.Fee, error)
}

type CirculationController struct {
	circulation Circulation
}

func NewCirculationController(circulation Circulation) *CirculationController {
	return &CirculationController{circulation: circulation}
}

// LoanRequest is the body of POST /api/borrow and POST /api/return.
type LoanRequest struct {
	PatronID string `json:"patron_id"`
	BookID   uint   `json:"book_id"`
}

// LateFeeResponse is the body of GET /api/late_fee/:patron_id/:book_id.
type LateFeeResponse struct {
	PatronID string `json:"patron_id"`
	BookID   uint   `json:"book_id"`
	fees.Fee
}

// Borrow handles POST /api/borrow
func (cc *CirculationController) Borrow(c *gin.Context) {
	var req LoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, msgInvalidBody)
		return
	}

	message, err := cc.circulation.Borrow(req.PatronID, req.BookID)
	if err != nil {
		respondServiceError(c, err, "borrow")
		return
	}

	respondMessage(c, http.StatusOK, message)
}

// Return handles POST /api/return
func (cc *CirculationController) Return(c *gin.Context) {
	var req LoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, msgInvalidBody)
		return
	}

	message, err := cc.circulation.Return(req.PatronID, req.BookID)
	if err != nil {
		respondServiceError(c, err, "return")
		return
	}

	respondMessage(c, http.StatusOK, message)
}

// LateFee handles GET /api/late_fee/:patron_id/:book_id
// A book that is not borrowed, or not late, owes 0.00.
func (cc *CirculationController) LateFee(c *gin.Context) {
	bookID, ok := parseIDParam(c, "book_id")
	if !ok {
		return
	}
	patronID := c.Param("patron_id")

	fee, err := cc.circulation.CalculateFee(patronID, bookID)
	if err != nil {
		respondServiceError(c, err, "late fee")
		return
	}

	c.JSON(http.StatusOK, LateFeeResponse{PatronID: patronID, BookID: bookID, Fee: fee})
}
