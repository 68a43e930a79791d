package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/subreddits/backend/internal/apperr"
)

// RespondError writes the JSON error envelope for err and aborts the chain.
// Internal errors are attached to the context for the request logger and
// their cause is never shown to the client.
func RespondError(c *gin.Context, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(apperr.HTTPStatus(err), gin.H{
		"error":      apperr.PublicMessage(err),
		"code":       apperr.CodeOf(err),
		"request_id": GetRequestID(c),
	})
}
