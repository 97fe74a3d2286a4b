package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"owlistic-notes/blocknotes/editor"
	"owlistic-notes/blocknotes/services"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, editor.ErrUnknownBlockType):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNoteNotFound),
		errors.Is(err, editor.ErrBlockNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNotOpen),
		errors.Is(err, editor.ErrNoDocument):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}
