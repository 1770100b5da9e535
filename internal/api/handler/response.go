package handler

import (
	"errors"
	"net/http"
	"strconv"

	"noticeboard/internal/constants"
	"noticeboard/internal/service"
	"noticeboard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RespondError 将服务层错误转换为统一的响应格式。
// 未知错误记录日志后按服务器内部错误返回。
func RespondError(c *gin.Context, log *logger.Logger, action, notFoundMsg string, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusOK, gin.H{"code": 400, "msg": constants.ErrInvalidParams + "：" + err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusOK, gin.H{"code": 404, "msg": notFoundMsg})
	case errors.Is(err, service.ErrReplacementRequired):
		c.JSON(http.StatusOK, gin.H{"code": 409, "msg": constants.ErrCategoryReplacementNeed, "detail": err.Error()})
	default:
		log.Error(action+"失败", "error", err, "路径", c.Request.URL.Path)
		c.JSON(http.StatusOK, gin.H{"code": 500, "msg": constants.ErrInternalServer})
	}
}

// QueryInt 读取整数查询参数，缺失或格式错误时返回默认值
func QueryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}
