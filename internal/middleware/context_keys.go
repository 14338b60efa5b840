package middleware

import "github.com/gin-gonic/gin"

// adminIDKey is the key used to store the authenticated admin's identifier
// in the request context.
const adminIDKey = contextKey("adminID")

// GetAdminIDFromContext retrieves the authenticated admin identifier from the
// Gin context. It returns the identifier and a boolean indicating if it was
// found.
func GetAdminIDFromContext(c *gin.Context) (string, bool) {
	adminIDVal, exists := c.Get(string(adminIDKey))
	if !exists {
		// check in the request context as well
		ctxVal := c.Request.Context().Value(adminIDKey)
		if ctxVal != nil {
			return ctxVal.(string), true
		}
		return "", false
	}

	adminID, ok := adminIDVal.(string)
	if !ok {
		// This should not happen if the auth middleware sets it correctly.
		return "", false
	}

	return adminID, true
}
