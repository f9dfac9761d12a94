package requests

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// GetTokenFromBearer returns the token of an "Authorization: Bearer <token>" header.
func GetTokenFromBearer(reqCtx *gin.Context) (string, bool) {
	authHeader := reqCtx.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
