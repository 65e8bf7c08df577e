package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulation/internal/fees"
	"github.com/mrlokans/circulation/internal/services"
)

// PatronReporter builds patron and overdue reports.
type PatronReporter interface {
	PatronStatus(patronID string) (*services.PatronReport, error)
	OverdueLoans() ([]services.OverdueLoan, error)
}

type PatronsController struct {
	reports PatronReporter
}

func NewPatronsController(reports PatronReporter) *PatronsController {
	return &PatronsController{reports: reports}
}

// Status handles GET /api/patrons/:patron_id/status
func (pc *PatronsController) Status(c *gin.Context) {
	report, err := pc.reports.PatronStatus(c.Param("patron_id"))
	if err != nil {
		respondServiceError(c, err, "patron status")
		return
	}

	c.JSON(http.StatusOK, report)
}

// Overdue handles GET /api/overdue
// Lists every open loan past its due date with the fee owed so far.
func (pc *PatronsController) Overdue(c *gin.Context) {
	loans, err := pc.reports.OverdueLoans()
	if err != nil {
		respondServiceError(c, err, "overdue loans")
		return
	}

	var total fees.Money
	for _, loan := range loans {
		total += loan.Fee.Amount
	}

	c.JSON(http.StatusOK, gin.H{
		"loans":           loans,
		"count":           len(loans),
		"total_fees_owed": total,
	})
}
