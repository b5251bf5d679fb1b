package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TriggerReset applies the user's monthly quota reset. Calling it again inside
// the same cycle is a no-op.
func (s *Server) TriggerReset(c *gin.Context) {
	result, err := s.cycleSvc.TriggerReset(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
