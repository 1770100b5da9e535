package handler

import (
	"net/http"

	"noticeboard/internal/constants"
	"noticeboard/internal/middleware"
	"noticeboard/internal/model"
	"noticeboard/internal/service"
	"noticeboard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// NoticeHandler 公告处理器
type NoticeHandler struct {
	noticeService   *service.NoticeService
	categoryService *service.CategoryService
	logger          *logger.Logger
}

// NewNoticeHandler 创建公告处理器实例
func NewNoticeHandler(noticeService *service.NoticeService, categoryService *service.CategoryService, logger *logger.Logger) *NoticeHandler {
	return &NoticeHandler{
		noticeService:   noticeService,
		categoryService: categoryService,
		logger:          logger,
	}
}

// DismissRequest 关闭横幅或弹窗请求
type DismissRequest struct {
	Surface model.Surface `json:"surface" binding:"required"`
}

// GetNotices 获取公告列表
// @Summary 获取公告列表
// @Description 获取已发布的公告，置顶优先，支持分类筛选、搜索和分页
// @Tags 公告
// @Produce json
// @Param category query string false "分类ID"
// @Param q query string false "搜索标题和正文"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} model.PaginatedNotices
// @Router /notices [get]
func (h *NoticeHandler) GetNotices(c *gin.Context) {
	query := service.PublicQuery{
		Category: c.Query("category"),
		Search:   c.Query("q"),
		Page:     QueryInt(c, "page", 1),
		PageSize: QueryInt(c, "page_size", service.DefaultPageSize),
	}

	result, err := h.noticeService.PublicList(c.Request.Context(), middleware.ViewerID(c), query)
	if err != nil {
		RespondError(c, h.logger, "获取公告列表", constants.ErrNoticeNotFound, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": constants.SuccessGet, "data": result})
}

// GetNotice 获取公告详情
// @Summary 获取公告详情
// @Description 获取已发布公告的详情，浏览次数加一并标记为已读
// @Tags 公告
// @Produce json
// @Param id path string true "公告ID"
// @Success 200 {object} model.NoticeView
// @Router /notices/{id} [get]
func (h *NoticeHandler) GetNotice(c *gin.Context) {
	view, err := h.noticeService.View(c.Request.Context(), middleware.ViewerID(c), c.Param("id"))
	if err != nil {
		RespondError(c, h.logger, "获取公告详情", constants.ErrNoticeNotFound, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": constants.SuccessGet, "data": view})
}

// GetNoticeHistory 获取公告历史记录
// @Summary 获取公告历史记录
// @Tags 公告
// @Produce json
// @Param id path string true "公告ID"
// @Success 200 {array} model.NoticeHistoryEntry
// @Router /notices/{id}/history [get]
func (h *NoticeHandler) GetNoticeHistory(c *gin.Context) {
	history, err := h.noticeService.History(c.Request.Context(), c.Param("id"), true)
	if err != nil {
		RespondError(c, h.logger, "获取公告历史", constants.ErrNoticeNotFound, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": constants.SuccessGet, "data": history})
}

// GetBanners 获取横幅
// @Summary 获取当前访客的横幅
// @Description 按优先级排序，已关闭且仍在关闭期内的横幅不返回
// @Tags 公告
// @Produce json
// @Success 200 {array} model.SurfaceItem
// @Router /banners [get]
func (h *NoticeHandler) GetBanners(c *gin.Context) {
	items, err := h.noticeService.Banners(c.Request.Context(), middleware.ViewerID(c))
	if err != nil {
		RespondError(c, h.logger, "获取横幅", constants.ErrNoticeNotFound, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": constants.SuccessGet, "data": items})
}

// GetModals 获取弹窗
// @Summary 获取当前访客的弹窗
// @Tags 公告
// @Produce json
// @Success 200 {array} model.SurfaceItem
// @Router /modals [get]
func (h *NoticeHandler) GetModals(c *gin.Context) {
	items, err := h.noticeService.Modals(c.Request.Context(), middleware.ViewerID(c))
	if err != nil {
		RespondError(c, h.logger, "获取弹窗", constants.ErrNoticeNotFound, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": constants.SuccessGet, "data": items})
}

// Dismiss 关闭横幅或弹窗
// @Summary 关闭横幅或弹窗
// @Description 记录关闭时间，在公告设置的关闭时长内不再展示
// @Tags 公告
// @Accept json
// @Produce json
// @Param id path string true "公告ID"
// @Param request body DismissRequest true "展示位置"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /notices/{id}/dismiss [post]
func (h *NoticeHandler) Dismiss(c *gin.Context) {
	var req DismissRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "msg": constants.ErrInvalidRequest})
		return
	}
	if !req.Surface.Dismissible() {
		c.JSON(http.StatusOK, gin.H{"code": 400, "msg": constants.ErrInvalidSurface})
		return
	}

	id := c.Param("id")
	if err := h.noticeService.Dismiss(c.Request.Context(), middleware.ViewerID(c), id, req.Surface); err != nil {
		RespondError(c, h.logger, "关闭公告", constants.ErrNoticeNotFound, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": constants.SuccessDismiss})
}

// GetCategories 获取分类列表
// @Summary 获取分类列表
// @Tags 分类
// @Produce json
// @Success 200 {array} model.Category
// @Router /categories [get]
func (h *NoticeHandler) GetCategories(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, "获取分类列表", constants.ErrCategoryNotFound, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": constants.SuccessGet, "data": categories})
}
