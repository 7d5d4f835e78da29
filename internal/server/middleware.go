package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	authdomain "github.com/vivendahq/vivenda/internal/auth/domain"
)

const principalKey = "principal"

// AuthRequired verifies the bearer token and stores the principal on the
// request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		principal, err := s.authSvc.VerifyToken(strings.TrimSpace(token))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// AdminRequired gates a route to admin principals. Must run after
// AuthRequired.
func (s *Server) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := currentPrincipal(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if !principal.IsAdmin() {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

func currentPrincipal(c *gin.Context) (authdomain.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return authdomain.Principal{}, false
	}
	principal, ok := value.(authdomain.Principal)
	return principal, ok
}
