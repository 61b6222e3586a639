// util/http_util.go
package util

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	logger "github.com/clarita-9850/CMIPS-APPLICATION-sub003/logging"
)

// ClaimsContextKey is where the auth middleware stores the verified claims
// bag for the request.
const ClaimsContextKey = "identityClaims"

func RespondWithError(c *gin.Context, code int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method))
	c.JSON(code, gin.H{"error": message})
}

// GetClaimsFromContext returns the claims bag the auth middleware extracted
// from the upstream-verified bearer token.
func GetClaimsFromContext(c *gin.Context) (map[string]interface{}, error) {
	value, exists := c.Get(ClaimsContextKey)
	if !exists {
		return nil, fmt.Errorf("no identity claims in request context")
	}
	claims, ok := value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected claims type %T", value)
	}
	return claims, nil
}
