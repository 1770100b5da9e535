package middleware

import (
	"net/http"
	"strings"

	"noticeboard/internal/constants"
	"noticeboard/pkg/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuth 管理员认证中间件，请求头中的Token与配置的bcrypt哈希比对
func AdminAuth(tokenHash string, log *logger.Logger) gin.HandlerFunc {
	hash := []byte(tokenHash)
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader("Authorization"))
		token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
		if token == "" {
			c.JSON(http.StatusOK, gin.H{"code": 401, "msg": constants.ErrUnauthorized})
			c.Abort()
			return
		}

		if err := bcrypt.CompareHashAndPassword(hash, []byte(token)); err != nil {
			log.Warn("管理员Token验证失败", "客户端IP", c.ClientIP())
			c.JSON(http.StatusOK, gin.H{"code": 401, "msg": constants.ErrInvalidToken})
			c.Abort()
			return
		}

		c.Set("is_admin", true)
		c.Next()
	}
}
