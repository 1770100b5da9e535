package middleware

import (
	"net/http"
	"regexp"

	"noticeboard/pkg/logger"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	ViewerHeader = "X-Viewer-ID"
	ViewerCookie = "viewer_id"
	ViewerIDKey  = "viewer_id"

	viewerCookieMaxAge = 365 * 24 * 60 * 60
)

var viewerIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

// Viewer 访客身份中间件。没有合法的访客ID时签发一个新的，并通过Cookie和响应头返回。
func Viewer(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(ViewerHeader)
		if !viewerIDPattern.MatchString(id) {
			id, _ = c.Cookie(ViewerCookie)
		}

		if !viewerIDPattern.MatchString(id) {
			newID, err := gonanoid.New()
			if err != nil {
				log.Error("生成访客ID失败", "error", err)
				c.Next()
				return
			}
			id = newID
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(ViewerCookie, id, viewerCookieMaxAge, "/", "", false, true)
		}

		c.Header(ViewerHeader, id)
		c.Set(ViewerIDKey, id)
		c.Next()
	}
}

// ViewerID 当前请求的访客ID
func ViewerID(c *gin.Context) string {
	return c.GetString(ViewerIDKey)
}
