// internal/api/auth_middleware.go
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyHeader 共享密钥请求头
const APIKeyHeader = "X-API-Key"

// APIKeyAuthMiddleware 校验每个请求携带的共享密钥
// 密钥缺失或不匹配时在任何核心逻辑执行前拒绝请求
func APIKeyAuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 服务端未配置密钥属于配置错误，不能放行
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    ErrorInternalError,
					"message": "服务端未配置API密钥",
				},
			})
			return
		}

		provided := c.GetHeader(APIKeyHeader)
		if provided == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    ErrorUnauthorized,
					"message": "请求头 X-API-Key 中缺少API密钥",
				},
			})
			return
		}

		if provided != apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    ErrorUnauthorized,
					"message": "API密钥无效",
				},
			})
			return
		}

		c.Next()
	}
}
