package apis

import (
	"noticeboard/internal/api/handler"

	"github.com/gin-gonic/gin"
)

// RegisterPublicRoutes 注册访客可访问的路由
func RegisterPublicRoutes(v1 *gin.RouterGroup, noticeHandler *handler.NoticeHandler, changeFeedHandler *handler.ChangeFeedHandler, bannerCarouselHandler *handler.BannerCarouselHandler) {
	RegisterNoticeRoutes(v1, noticeHandler)

	v1.GET("/categories", noticeHandler.GetCategories)
	v1.GET("/ws/changes", changeFeedHandler.Changes)
	v1.GET("/ws/banners", bannerCarouselHandler.Banners)
}

// RegisterNoticeRoutes 注册公告相关路由
func RegisterNoticeRoutes(router *gin.RouterGroup, noticeHandler *handler.NoticeHandler) {
	router.GET("/notices", noticeHandler.GetNotices)
	router.GET("/notices/:id", noticeHandler.GetNotice)
	router.GET("/notices/:id/history", noticeHandler.GetNoticeHistory)
	router.POST("/notices/:id/dismiss", noticeHandler.Dismiss)

	router.GET("/banners", noticeHandler.GetBanners)
	router.GET("/modals", noticeHandler.GetModals)
}
