package constants

// 通用错误消息
const (
	// 认证相关错误
	ErrUnauthorized = "未授权，请先登录"
	ErrInvalidToken = "无效的Token"

	// 参数相关错误
	ErrInvalidParams  = "参数错误"
	ErrInvalidRequest = "无效请求格式"
	ErrInvalidSurface = "不支持的展示位置"

	// 公告相关错误
	ErrNoticeNotFound   = "公告不存在"
	ErrNoticeValidation = "公告内容不完整或格式错误"

	// 分类相关错误
	ErrCategoryNotFound        = "分类不存在"
	ErrCategoryValidation      = "分类信息不完整或格式错误"
	ErrCategoryReplacementNeed = "删除分类前需要指定有效的替代分类"

	// 系统错误
	ErrInternalServer = "服务器内部错误"
)

// 成功消息
const (
	SuccessGet        = "获取成功"
	SuccessCreate     = "创建成功"
	SuccessUpdate     = "更新成功"
	SuccessDelete     = "删除成功"
	SuccessDismiss    = "已关闭"
	SuccessExpire     = "已下线"
	SuccessReactivate = "已重新上线"
	SuccessReorder    = "排序已更新"
)
