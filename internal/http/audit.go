package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulation/internal/database/audit"
	"github.com/mrlokans/circulation/internal/entities"
)

// AuditLog reads the circulation audit trail.
type AuditLog interface {
	GetEvents(f audit.Filter) ([]entities.AuditEvent, int64, error)
}

type AuditController struct {
	log AuditLog
}

func NewAuditController(log AuditLog) *AuditController {
	return &AuditController{log: log}
}

// ListEvents handles GET /api/audit?patron_id=&type=&limit=&offset=
func (ac *AuditController) ListEvents(c *gin.Context) {
	limit, offset := parsePagination(c, 50, 500)

	events, total, err := ac.log.GetEvents(audit.Filter{
		PatronID:  c.Query("patron_id"),
		EventType: entities.AuditEventType(c.Query("type")),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		respondInternalError(c, err, "audit events")
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    events,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(events)) < total,
	})
}
