package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/homilybuild/homily/internal/repository"
	"github.com/homilybuild/homily/internal/service"
	"github.com/homilybuild/homily/internal/wizard"
)

const (
	codeBadRequest      = "BAD_REQUEST"
	codeUnauthenticated = "UNAUTHENTICATED"
	codeNotFound        = "NOT_FOUND"
	codeValidation      = "VALIDATION"
	codeBusy            = "BUSY"
	codeConflict        = "CONFLICT"
	codeGeneration      = "GENERATION_FAILED"
	codePersistence     = "SAVE_FAILED"
	codeInternal        = "INTERNAL"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Blocking is the step whose requirement refused a wizard move.
	Blocking int `json:"blocking,omitempty"`
	// Kind is the generation failure category.
	Kind string `json:"kind,omitempty"`
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Message: message})
}

func badRequest(c *gin.Context, format string, args ...any) {
	abortWithError(c, http.StatusBadRequest, codeBadRequest, fmt.Sprintf(format, args...))
}

func handleServiceError(c *gin.Context, err error) {
	var (
		verr *wizard.ValidationError
		gerr *wizard.GenerationError
		perr *wizard.PersistenceError
	)
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorResponse{
			Code:     codeValidation,
			Message:  verr.Reason,
			Blocking: verr.Blocking,
		})
	case errors.As(err, &gerr):
		c.AbortWithStatusJSON(http.StatusBadGateway, ErrorResponse{
			Code:    codeGeneration,
			Message: gerr.Message,
			Kind:    string(gerr.Kind),
		})
	case errors.As(err, &perr):
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, codePersistence, "Failed to save homily: "+perr.Err.Error())
	case errors.Is(err, service.ErrUnauthenticated):
		abortWithError(c, http.StatusUnauthorized, codeUnauthenticated, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		abortWithError(c, http.StatusNotFound, codeNotFound, err.Error())
	case wizard.IsBusy(err):
		abortWithError(c, http.StatusConflict, codeBusy, err.Error())
	case errors.Is(err, wizard.ErrNotFinalStep), errors.Is(err, wizard.ErrSessionFinished):
		abortWithError(c, http.StatusConflict, codeConflict, err.Error())
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, wizard.ErrNoGeneration):
		abortWithError(c, http.StatusBadRequest, codeBadRequest, inputMessage(err))
	default:
		// logged by accessLogger
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, codeInternal, "An unexpected internal error occurred")
	}
}

// inputMessage strips the "invalid input: " prefix so clients see the
// user-facing part only.
func inputMessage(err error) string {
	return strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": ")
}
