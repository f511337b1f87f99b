package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/personal-finance-ledger/internal/platform/auth"
)

// OwnerIDKey is the key used to store the resolved owner id in the context
const OwnerIDKey = "owner_id"

// Owner resolves the caller through provider and aborts with 401 when no owner is present
func Owner(logger *slog.Logger, provider auth.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, err := provider.OwnerID(c.Request)
		if err != nil {
			logger.Warn("Rejected request without owner identity",
				"path", c.Request.URL.Path,
				"correlation_id", GetCorrelationID(c),
			)
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Owner identity is required")
			return
		}

		c.Set(OwnerIDKey, ownerID)
		c.Next()
	}
}

// GetOwnerID retrieves the owner id placed in the context by Owner
func GetOwnerID(c *gin.Context) string {
	return c.GetString(OwnerIDKey)
}
