package admin

import (
	"github.com/gin-gonic/gin"
)

// RegisterAdminRoutes 注册管理员API路由
func RegisterAdminRoutes(router *gin.RouterGroup, noticeAdminHandler *NoticeAdminHandler, categoryAdminHandler *CategoryAdminHandler) {
	// 公告管理路由
	notices := router.Group("/notices")
	{
		notices.GET("", noticeAdminHandler.GetNotices)
		notices.GET("/:id", noticeAdminHandler.GetNotice)
		notices.GET("/:id/history", noticeAdminHandler.GetNoticeHistory)
		notices.GET("/:id/viewer-state", noticeAdminHandler.GetViewerState)
		notices.POST("/create", noticeAdminHandler.CreateNotice)
		notices.POST("/update", noticeAdminHandler.UpdateNotice)
		notices.POST("/expire", noticeAdminHandler.ExpireNotice)
		notices.POST("/reactivate", noticeAdminHandler.ReactivateNotice)
		notices.POST("/delete", noticeAdminHandler.DeleteNotice)
	}

	// 分类管理路由
	categories := router.Group("/categories")
	{
		categories.GET("", categoryAdminHandler.GetCategories)
		categories.POST("/create", categoryAdminHandler.CreateCategory)
		categories.POST("/update", categoryAdminHandler.UpdateCategory)
		categories.POST("/reorder", categoryAdminHandler.ReorderCategories)
		categories.POST("/delete", categoryAdminHandler.DeleteCategory)
	}
}
