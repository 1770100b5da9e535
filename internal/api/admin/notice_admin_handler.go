package admin

import (
	"net/http"
	"strings"

	"noticeboard/internal/api/handler"
	"noticeboard/internal/constants"
	"noticeboard/internal/model"
	"noticeboard/internal/service"
	"noticeboard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// NoticeAdminHandler 公告管理处理器
type NoticeAdminHandler struct {
	noticeService *service.NoticeService
	logger        *logger.Logger
}

// NewNoticeAdminHandler 创建公告管理处理器实例
func NewNoticeAdminHandler(noticeService *service.NoticeService, logger *logger.Logger) *NoticeAdminHandler {
	return &NoticeAdminHandler{
		noticeService: noticeService,
		logger:        logger,
	}
}

// NoticeIDRequest 只包含公告ID的请求
type NoticeIDRequest struct {
	ID string `json:"id" binding:"required"`
}

// splitValues 同时支持重复参数和逗号分隔
func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// GetNotices 管理员获取公告列表
// @Summary 管理员获取公告列表
// @Description 包含所有状态的公告，编号按创建时间从1开始
// @Tags 公告管理
// @Produce json
// @Param q query string false "搜索标题"
// @Param category query []string false "分类ID，可多选"
// @Param status query []string false "状态，可多选"
// @Param pinned query bool false "只看置顶"
// @Param banner query bool false "只看横幅"
// @Param modal query bool false "只看弹窗"
// @Param sort query string false "按编号排序 asc/desc" default(desc)
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} model.PaginatedNotices
// @Router /admin/notices [get]
func (h *NoticeAdminHandler) GetNotices(c *gin.Context) {
	query := service.AdminQuery{
		Search:     c.Query("q"),
		Categories: splitValues(c.QueryArray("category")),
		PinnedOnly: c.Query("pinned") == "true",
		BannerOnly: c.Query("banner") == "true",
		ModalOnly:  c.Query("modal") == "true",
		Sort:       c.DefaultQuery("sort", "desc"),
		Page:       handler.QueryInt(c, "page", 1),
		PageSize:   handler.QueryInt(c, "page_size", service.DefaultPageSize),
	}
	for _, s := range splitValues(c.QueryArray("status")) {
		status := model.NoticeStatus(s)
		if !status.Valid() {
			c.JSON(http.StatusOK, gin.H{"code": 400, "msg": constants.ErrInvalidParams + "：未知状态 " + s})
			return
		}
		query.Statuses = append(query.Statuses, status)
	}

	result, err := h.noticeService.AdminList(c.Request.Context(), query)
	if err != nil {
		handler.RespondError(c, h.logger, "获取公告列表", constants.ErrNoticeNotFound, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": constants.SuccessGet, "data": result})
}

// GetNotice 管理员获取公告详情
// @Summary 管理员获取公告详情
// @Tags 公告管理
// @Produce json
// @Param id path string true "公告ID"
// @Success 200 {object} model.NoticeView
// @Router /admin/notices/{id} [get]
func (h *NoticeAdminHandler) GetNotice(c *gin.Context) {
	view, err := h.noticeService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.RespondError(c, h.logger, "获取公告详情", constants.ErrNoticeNotFound, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": constants.SuccessGet, "data": view})
}

// GetNoticeHistory 管理员获取完整历史记录
// @Summary 管理员获取公告历史记录
// @Tags 公告管理
// @Produce json
// @Param id path string true "公告ID"
// @Success 200 {array} model.NoticeHistoryEntry
// @Router /admin/notices/{id}/history [get]
func (h *NoticeAdminHandler) GetNoticeHistory(c *gin.Context) {
	history, err := h.noticeService.History(c.Request.Context(), c.Param("id"), false)
	if err != nil {
		handler.RespondError(c, h.logger, "获取公告历史", constants.ErrNoticeNotFound, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": constants.SuccessGet, "data": history})
}

// GetViewerState 查看访客对公告的已读和关闭状态
// @Summary 查看访客状态
// @Description 排查某个访客看不到横幅或弹窗的原因
// @Tags 公告管理
// @Produce json
// @Param id path string true "公告ID"
// @Param viewer query string true "访客ID"
// @Success 200 {object} model.ViewerNoticeState
// @Router /admin/notices/{id}/viewer-state [get]
func (h *NoticeAdminHandler) GetViewerState(c *gin.Context) {
	state, err := h.noticeService.ViewerState(c.Request.Context(), c.Query("viewer"), c.Param("id"))
	if err != nil {
		handler.RespondError(c, h.logger, "获取访客状态", constants.ErrNoticeNotFound, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": constants.SuccessGet, "data": state})
}

// CreateNotice 创建公告
// @Summary 创建公告
// @Description 发布时间在未来的公告进入定时状态，draft为true时保存为草稿
// @Tags 公告管理
// @Accept json
// @Produce json
// @Param request body service.CreateNoticeInput true "公告信息"
// @Success 200 {object} model.Notice
// @Router /admin/notices/create [post]
func (h *NoticeAdminHandler) CreateNotice(c *gin.Context) {
	var req service.CreateNoticeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "msg": constants.ErrInvalidParams + "：" + err.Error()})
		return
	}

	notice, err := h.noticeService.Create(c.Request.Context(), req)
	if err != nil {
		handler.RespondError(c, h.logger, "创建公告", constants.ErrNoticeNotFound, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": constants.SuccessCreate, "data": notice})
}

// UpdateNotice 更新公告
// @Summary 更新公告
// @Description 保存修改并记录历史，publish为true时草稿直接发布
// @Tags 公告管理
// @Accept json
// @Produce json
// @Param request body service.UpdateNoticeInput true "公告信息"
// @Success 200 {object} model.Notice
// @Router /admin/notices/update [post]
func (h *NoticeAdminHandler) UpdateNotice(c *gin.Context) {
	var req service.UpdateNoticeInput
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.JSON(http.StatusOK, gin.H{"code": 400, "msg": constants.ErrInvalidRequest})
		return
	}

	notice, err := h.noticeService.Update(c.Request.Context(), req)
	if err != nil {
		handler.RespondError(c, h.logger, "更新公告", constants.ErrNoticeNotFound, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": constants.SuccessUpdate, "data": notice})
}

// ExpireNotice 立即下线公告
// @Summary 下线公告
// @Tags 公告管理
// @Accept json
// @Produce json
// @Param request body NoticeIDRequest true "公告ID"
// @Success 200 {object} model.Notice
// @Router /admin/notices/expire [post]
func (h *NoticeAdminHandler) ExpireNotice(c *gin.Context) {
	var req NoticeIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "msg": constants.ErrInvalidRequest})
		return
	}

	notice, err := h.noticeService.Expire(c.Request.Context(), req.ID)
	if err != nil {
		handler.RespondError(c, h.logger, "下线公告", constants.ErrNoticeNotFound, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": constants.SuccessExpire, "data": notice})
}

// ReactivateNotice 重新上线公告
// @Summary 重新上线公告
// @Description 清除过期时间并恢复为已发布
// @Tags 公告管理
// @Accept json
// @Produce json
// @Param request body NoticeIDRequest true "公告ID"
// @Success 200 {object} model.Notice
// @Router /admin/notices/reactivate [post]
func (h *NoticeAdminHandler) ReactivateNotice(c *gin.Context) {
	var req NoticeIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "msg": constants.ErrInvalidRequest})
		return
	}

	notice, err := h.noticeService.Reactivate(c.Request.Context(), req.ID)
	if err != nil {
		handler.RespondError(c, h.logger, "重新上线公告", constants.ErrNoticeNotFound, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": constants.SuccessReactivate, "data": notice})
}

// DeleteNotice 删除公告
// @Summary 删除公告
// @Tags 公告管理
// @Accept json
// @Produce json
// @Param request body NoticeIDRequest true "公告ID"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /admin/notices/delete [post]
func (h *NoticeAdminHandler) DeleteNotice(c *gin.Context) {
	var req NoticeIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "msg": constants.ErrInvalidRequest})
		return
	}

	if err := h.noticeService.Delete(c.Request.Context(), req.ID); err != nil {
		handler.RespondError(c, h.logger, "删除公告", constants.ErrNoticeNotFound, err)
		return
	}

	h.logger.Info("公告已删除", "id", req.ID)
	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": constants.SuccessDelete})
}
