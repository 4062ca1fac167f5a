package middleware

import "github.com/gin-gonic/gin"

const cacheHeader = "X-Cache"

// SetCacheHit reports whether the response was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	if c == nil {
		return
	}
	if hit {
		c.Header(cacheHeader, "HIT")
		return
	}
	c.Header(cacheHeader, "MISS")
}
