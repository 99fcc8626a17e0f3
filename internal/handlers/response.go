package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/service"
)

var statusByCode = map[service.Code]int{
	service.CodeValidation:            http.StatusBadRequest,
	service.CodeNotFound:              http.StatusNotFound,
	service.CodeConflict:              http.StatusConflict,
	service.CodeInsufficientInventory: http.StatusBadRequest,
}

// respondError writes {message} for client errors and {message, error} for
// everything else. message is the fallback for errors the service did not
// classify.
func respondError(c *gin.Context, err error, message string) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		if status, ok := statusByCode[svcErr.Code]; ok {
			c.JSON(status, gin.H{"message": svcErr.Message})
			return
		}
		message = svcErr.Message
		if svcErr.Err != nil {
			err = svcErr.Err
		}
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": message, "error": err.Error()})
}

// bindJSON decodes the request body, answering 400 on malformed input.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
		return false
	}
	return true
}
