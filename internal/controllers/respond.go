package controllers

import "github.com/gin-gonic/gin"

// fail writes the structured error envelope every handler uses instead of
// leaking raw storage errors to the client.
func fail(c *gin.Context, status int, kind, message string) {
	c.JSON(status, gin.H{"success": false, "error": kind, "message": message})
}

func ok(c *gin.Context, status int, data gin.H) {
	out := gin.H{"success": true}
	for k, v := range data {
		out[k] = v
	}
	c.JSON(status, out)
}
