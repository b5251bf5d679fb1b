package server

import (
	"errors"
	"net/http"

	consumptiondomain "github.com/SyedTahirHussan/codebuff-sub001/internal/consumption/domain"
	cycledomain "github.com/SyedTahirHussan/codebuff-sub001/internal/cycle/domain"
	delegationdomain "github.com/SyedTahirHussan/codebuff-sub001/internal/delegation/domain"
	grantdomain "github.com/SyedTahirHussan/codebuff-sub001/internal/grant/domain"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
}

// abortWithError maps domain sentinels onto HTTP status codes. Unknown errors
// and precondition violations surface as 500.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, grantdomain.ErrInvalidOwner),
		errors.Is(err, grantdomain.ErrInvalidAmount),
		errors.Is(err, grantdomain.ErrInvalidGrantType),
		errors.Is(err, grantdomain.ErrInvalidOperationID),
		errors.Is(err, consumptiondomain.ErrInvalidOwner),
		errors.Is(err, consumptiondomain.ErrInvalidCredits),
		errors.Is(err, cycledomain.ErrInvalidUser),
		errors.Is(err, delegationdomain.ErrNoRepositoryURL),
		errors.Is(err, delegationdomain.ErrMalformedRepositoryURL):
		status = http.StatusBadRequest
	case errors.Is(err, grantdomain.ErrDuplicateOperation):
		status = http.StatusConflict
	case errors.Is(err, delegationdomain.ErrNoOrganizationFound):
		status = http.StatusNotFound
	case errors.Is(err, consumptiondomain.ErrInsufficientGrants):
		status = http.StatusPaymentRequired
	case errors.Is(err, cycledomain.ErrOwnerNotFound):
		status = http.StatusInternalServerError
	}

	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error()})
}
