package handlers

import (
	"net/http"
	"strconv"

	"boxoffice/internal/service"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services *service.Services
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{services: services}
}

// sessionID returns the session id set by the session middleware
func sessionID(c *gin.Context) string {
	if v, exists := c.Get("session_id"); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// screeningID parses the :id path parameter
func screeningID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid screening id"})
		return 0, false
	}
	return id, true
}
