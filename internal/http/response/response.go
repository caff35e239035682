package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func Error(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"ok": false, "error": err.Error()})
}

// NoData is the explicit empty-scope shape: a request whose scope holds no
// usable sample gets this, never a zero-filled comparison.
func NoData(c *gin.Context, reason string) {
	c.JSON(http.StatusOK, gin.H{"ok": false, "noData": true, "error": reason})
}
