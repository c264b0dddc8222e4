// Package auth implements the identity gate: a bearer-token middleware
// backed by a pluggable verifier. The gate is defined unconditionally
// but only wired onto routes when auth is enabled in configuration.
package auth

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/cloud-drive-backend/internal/pkg/response"
)

// SubjectKey is the gin context key the gate stores the verified
// subject under.
const SubjectKey = "current_user"

// Verifier validates a bearer token and returns the subject it
// identifies.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// Middleware rejects requests without a well-formed, verifiable bearer
// token, answering with a distinct 401 message per malformation.
func Middleware(verifier Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "Authorization header is expected")
			return
		}

		parts := strings.Fields(header)
		switch {
		case !strings.EqualFold(parts[0], "bearer"):
			response.Unauthorized(c, "Authorization header must start with Bearer")
			return
		case len(parts) == 1:
			response.Unauthorized(c, "Token not found")
			return
		case len(parts) > 2:
			response.Unauthorized(c, "Authorization header must be Bearer token")
			return
		}

		subject, err := verifier.Verify(c.Request.Context(), parts[1])
		if err != nil {
			response.Unauthorized(c, "Invalid token")
			return
		}

		c.Set(SubjectKey, subject)
		c.Next()
	}
}
