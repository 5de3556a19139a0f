package middleware

import "github.com/gin-gonic/gin"

// ContextKeyIdentityID is the gin context key holding the authenticated identity id
const ContextKeyIdentityID = "identity_id"

// SetIdentityID stores the authenticated identity id on the request context
func SetIdentityID(c *gin.Context, id string) {
	c.Set(ContextKeyIdentityID, id)
}

// GetIdentityID returns the authenticated identity id, if any
func GetIdentityID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextKeyIdentityID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
