package admin

import (
	"net/http"

	"noticeboard/internal/api/handler"
	"noticeboard/internal/constants"
	"noticeboard/internal/service"
	"noticeboard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CategoryAdminHandler 分类管理处理器
type CategoryAdminHandler struct {
	categoryService *service.CategoryService
	logger          *logger.Logger
}

// NewCategoryAdminHandler 创建分类管理处理器实例
func NewCategoryAdminHandler(categoryService *service.CategoryService, logger *logger.Logger) *CategoryAdminHandler {
	return &CategoryAdminHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// UpdateCategoryRequest 更新分类请求
type UpdateCategoryRequest struct {
	ID string `json:"id" binding:"required"`
	service.CategoryInput
}

// ReorderCategoriesRequest 分类排序请求
type ReorderCategoriesRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// DeleteCategoryRequest 删除分类请求
type DeleteCategoryRequest struct {
	ID          string `json:"id" binding:"required"`
	Replacement string `json:"replacement"`
}

// GetCategories 管理员获取分类列表
// @Summary 管理员获取分类列表
// @Tags 分类管理
// @Produce json
// @Success 200 {array} model.Category
// @Router /admin/categories [get]
func (h *CategoryAdminHandler) GetCategories(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		handler.RespondError(c, h.logger, "获取分类列表", constants.ErrCategoryNotFound, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": constants.SuccessGet, "data": categories})
}

// CreateCategory 创建分类
// @Summary 创建分类
// @Tags 分类管理
// @Accept json
// @Produce json
// @Param request body service.CategoryInput true "分类信息"
// @Success 200 {object} model.Category
// @Router /admin/categories/create [post]
func (h *CategoryAdminHandler) CreateCategory(c *gin.Context) {
	var req service.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "msg": constants.ErrInvalidRequest})
		return
	}

	category, err := h.categoryService.Add(c.Request.Context(), req)
	if err != nil {
		handler.RespondError(c, h.logger, "创建分类", constants.ErrCategoryNotFound, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": constants.SuccessCreate, "data": category})
}

// UpdateCategory 更新分类
// @Summary 更新分类
// @Tags 分类管理
// @Accept json
// @Produce json
// @Param request body UpdateCategoryRequest true "分类信息"
// @Success 200 {object} model.Category
// @Router /admin/categories/update [post]
func (h *CategoryAdminHandler) UpdateCategory(c *gin.Context) {
	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "msg": constants.ErrInvalidRequest})
		return
	}

	category, err := h.categoryService.Update(c.Request.Context(), req.ID, req.CategoryInput)
	if err != nil {
		handler.RespondError(c, h.logger, "更新分类", constants.ErrCategoryNotFound, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": constants.SuccessUpdate, "data": category})
}

// ReorderCategories 调整分类顺序
// @Summary 调整分类顺序
// @Description 按给定的ID顺序重新编号，未列出的分类排在最后
// @Tags 分类管理
// @Accept json
// @Produce json
// @Param request body ReorderCategoriesRequest true "分类ID顺序"
// @Success 200 {array} model.Category
// @Router /admin/categories/reorder [post]
func (h *CategoryAdminHandler) ReorderCategories(c *gin.Context) {
	var req ReorderCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "msg": constants.ErrInvalidRequest})
		return
	}

	categories, err := h.categoryService.Reorder(c.Request.Context(), req.IDs)
	if err != nil {
		handler.RespondError(c, h.logger, "调整分类顺序", constants.ErrCategoryNotFound, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": constants.SuccessReorder, "data": categories})
}

// DeleteCategory 删除分类
// @Summary 删除分类
// @Description 分类下仍有公告时必须指定替代分类，公告会被迁移到替代分类
// @Tags 分类管理
// @Accept json
// @Produce json
// @Param request body DeleteCategoryRequest true "分类ID和替代分类"
// @Success 200 {object} map[string]interface{} "成功，reassigned为迁移的公告数"
// @Router /admin/categories/delete [post]
func (h *CategoryAdminHandler) DeleteCategory(c *gin.Context) {
	var req DeleteCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "msg": constants.ErrInvalidRequest})
		return
	}

	moved, err := h.categoryService.Delete(c.Request.Context(), req.ID, req.Replacement)
	if err != nil {
		handler.RespondError(c, h.logger, "删除分类", constants.ErrCategoryNotFound, err)
		return
	}

	h.logger.Info("分类已删除", "id", req.ID, "替代分类", req.Replacement, "迁移公告数", moved)
	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": constants.SuccessDelete, "data": gin.H{"reassigned": moved}})
}
