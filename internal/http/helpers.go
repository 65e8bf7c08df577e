package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulation/internal/services"
)

const (
	msgInvalidBody = "Invalid request body."
	msgInternal    = "An unexpected error occurred."
)

// ErrorResponse is the error body of every API failure.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// MessageResponse is the body of operations that answer with a sentence.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data    any   `json:"data"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// statusForKind maps a service failure kind to an HTTP status code.
func statusForKind(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	case services.KindDeclined:
		return http.StatusPaymentRequired
	case services.KindGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes a failed service call. The message shown is the
// service message; the wrapped cause is only logged.
func respondServiceError(c *gin.Context, err error, context string) {
	status := statusForKind(services.KindOf(err))
	if status >= http.StatusInternalServerError {
		log.Printf("Request failed (%s): %v", context, err)
	}
	respondError(c, status, services.MessageOf(err))
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Success: false, Message: message})
}

func respondBadRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, message)
}

// respondInternalError logs the error and hides it from the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	respondError(c, http.StatusInternalServerError, msgInternal)
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, MessageResponse{Success: true, Message: message})
}

// parseIDParam extracts an unsigned integer ID from the URL. On failure it
// responds with 400 and returns false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil {
		respondBadRequest(c, "Invalid "+paramName+".")
		return 0, false
	}
	return uint(id), true
}

// parsePagination reads limit/offset query parameters with bounds.
func parsePagination(c *gin.Context, defaultLimit, maxLimit int) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
