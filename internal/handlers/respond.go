package handlers

import (
	"exam-service/internal/apperror"

	"github.com/gin-gonic/gin"
)

func writeError(c *gin.Context, err error) {
	body := gin.H{"message": apperror.Message(err)}
	if tier := apperror.RequiredTierOf(err); tier != "" {
		body["requiredTier"] = tier
	}
	c.JSON(apperror.Status(err), body)
}
