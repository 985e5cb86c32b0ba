package middleware

import (
	"exam-service/internal/service"

	"github.com/gin-gonic/gin"
)

// GateExam allows the request through only when the principal's tier
// dominates the tier of the exam addressed by the :slug route parameter
// (id or slug form). Denials carry the required tier.
func GateExam(access *service.AccessService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := access.AuthorizeExam(c.Request.Context(), PrincipalID(c), c.Param("slug"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// GateCategory gates on the category addressed by the :slug parameter.
func GateCategory(access *service.AccessService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := access.AuthorizeCategory(c.Request.Context(), PrincipalID(c), c.Param("slug"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// GateCategoryByTitle gates on the category addressed by its exact title in
// the :title parameter, the form used by the per-category exam listing.
func GateCategoryByTitle(access *service.AccessService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := access.AuthorizeCategoryByTitle(c.Request.Context(), PrincipalID(c), c.Param("title"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}
