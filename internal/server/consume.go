package server

import (
	"net/http"
	"strconv"

	consumptiondomain "github.com/SyedTahirHussan/codebuff-sub001/internal/consumption/domain"
	"github.com/gin-gonic/gin"
)

type consumeRequest struct {
	Credits int64                           `json:"credits"`
	Usage   consumptiondomain.UsageMetadata `json:"usage"`
}

// Consume charges credits against the owner's grants.
func (s *Server) Consume(c *gin.Context) {
	var req consumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := s.consumeSvc.Consume(c.Request.Context(), consumptiondomain.ConsumeRequest{
		OwnerID: c.Param("owner_id"),
		Credits: req.Credits,
		Usage:   req.Usage,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type delegatedConsumeRequest struct {
	UserID        string                          `json:"user_id"`
	RepositoryURL string                          `json:"repository_url"`
	Credits       int64                           `json:"credits"`
	Usage         consumptiondomain.UsageMetadata `json:"usage"`
}

// ConsumeDelegated charges the organization that owns the given repository
// instead of the acting user.
func (s *Server) ConsumeDelegated(c *gin.Context) {
	var req delegatedConsumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := s.delegationSvc.ResolveAndConsume(c.Request.Context(), req.UserID, req.RepositoryURL, req.Credits, req.Usage)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListUsage returns the owner's usage events, newest first, cursor paginated.
func (s *Server) ListUsage(c *gin.Context) {
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))

	resp, err := s.consumeSvc.List(c.Request.Context(), consumptiondomain.ListUsageRequest{
		OwnerID:   c.Param("owner_id"),
		PageToken: c.Query("page_token"),
		PageSize:  pageSize,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
