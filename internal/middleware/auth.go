package middleware

import (
	"net/http"
	"strings"

	"exam-service/internal/apperror"
	"exam-service/internal/models"
	"exam-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	principalIDKey = "principalID"
	principalKey   = "principal"
)

// Claims is the token payload issued by the authentication service.
type Claims struct {
	jwt.RegisteredClaims
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Authenticate extracts the principal identity from the bearer token. It
// only establishes who is calling; tier and role checks resolve the user
// record afterwards.
func Authenticate(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), &Claims{}, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}
		claims, ok := token.Claims.(*Claims)
		if !ok || claims.ID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}
		c.Set(principalIDKey, claims.ID)
		c.Next()
	}
}

// PrincipalID returns the authenticated identity set by Authenticate.
func PrincipalID(c *gin.Context) string {
	return c.GetString(principalIDKey)
}

// PrincipalFrom returns the resolved principal, when a resolving middleware
// ran earlier in the chain.
func PrincipalFrom(c *gin.Context) *models.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(*models.Principal); ok {
			return p
		}
	}
	return nil
}

// ResolvePrincipal loads the principal record behind the authenticated
// identity into the request context.
func ResolvePrincipal(access *service.AccessService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := access.Principal(c.Request.Context(), PrincipalID(c))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireRole resolves the principal and rejects anyone whose role is not in
// the allowed set.
func RequireRole(access *service.AccessService, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := access.Principal(c.Request.Context(), PrincipalID(c))
		if err != nil {
			abortWithError(c, err)
			return
		}
		for _, role := range roles {
			if principal.Role == role {
				c.Set(principalKey, principal)
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Insufficient role"})
	}
}

func abortWithError(c *gin.Context, err error) {
	body := gin.H{"message": apperror.Message(err)}
	if tier := apperror.RequiredTierOf(err); tier != "" {
		body["requiredTier"] = tier
	}
	c.AbortWithStatusJSON(apperror.Status(err), body)
}
