package server

import (
	"net/http"

	grantdomain "github.com/SyedTahirHussan/codebuff-sub001/internal/grant/domain"
	"github.com/gin-gonic/gin"
)

// CreateGrant issues credits to an owner, clearing outstanding debt first.
func (s *Server) CreateGrant(c *gin.Context) {
	var req grantdomain.CreateGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := s.grantSvc.GrantTx(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (s *Server) GetGrant(c *gin.Context) {
	grant, err := s.grantSvc.FindByOperationID(c.Request.Context(), c.Param("operation_id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if grant == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Error: "grant_not_found"})
		return
	}

	c.JSON(http.StatusOK, grant)
}

type revokeGrantRequest struct {
	Reason string `json:"reason"`
}

type revokeGrantResponse struct {
	OperationID string `json:"operation_id"`
	Revoked     bool   `json:"revoked"`
}

// RevokeGrant zeroes a grant's remaining balance. Grants that have gone into
// debt are left untouched and reported as not revoked.
func (s *Server) RevokeGrant(c *gin.Context) {
	operationID := c.Param("operation_id")

	var req revokeGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	revoked, err := s.grantSvc.Revoke(c.Request.Context(), operationID, req.Reason)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, revokeGrantResponse{OperationID: operationID, Revoked: revoked})
}

type balanceResponse struct {
	OwnerID string                    `json:"owner_id"`
	Balance int64                     `json:"balance"`
	Grants  []grantdomain.CreditGrant `json:"grants"`
}

// GetBalance returns the owner's eligible balance plus every ledger row for
// audit, revoked and expired rows included.
func (s *Server) GetBalance(c *gin.Context) {
	ownerID := c.Param("owner_id")

	balance, err := s.grantSvc.Balance(c.Request.Context(), ownerID, s.clock.Now())
	if err != nil {
		abortWithError(c, err)
		return
	}

	grants, err := s.grantSvc.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, balanceResponse{OwnerID: ownerID, Balance: balance, Grants: grants})
}
