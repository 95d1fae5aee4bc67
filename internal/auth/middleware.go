package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ClaimsKey is the gin context key holding the caller's Claims.
const ClaimsKey = "claims"

// TeacherAuth enforces bearer access tokens.
func TeacherAuth(iss *Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := iss.Parse(tokenStr, UseAccess)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// Teacher returns the authenticated teacher's name, or "" if none.
func Teacher(c *gin.Context) string {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return ""
	}
	claims, _ := v.(Claims)
	return claims.Subject
}
