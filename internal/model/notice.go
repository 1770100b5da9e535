package model

import "time"

// NoticeStatus 公告生命周期状态
type NoticeStatus string

const (
	StatusDraft     NoticeStatus = "draft"
	StatusScheduled NoticeStatus = "scheduled"
	StatusPublished NoticeStatus = "published"
	StatusExpired   NoticeStatus = "expired"
)

// Valid 判断状态值是否合法
func (s NoticeStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusPublished, StatusExpired:
		return true
	}
	return false
}

// HistoryAction 历史记录动作
type HistoryAction string

const (
	ActionCreated     HistoryAction = "created"
	ActionPublished   HistoryAction = "published"
	ActionUpdated     HistoryAction = "updated"
	ActionExpired     HistoryAction = "expired"
	ActionReactivated HistoryAction = "reactivated"
)

// Surface 公告展示位置
type Surface string

const (
	SurfaceBanner     Surface = "banner"
	SurfaceModal      Surface = "modal"
	SurfacePublicList Surface = "publicList"
)

// Dismissible 只有横幅和弹窗支持关闭
func (s Surface) Dismissible() bool {
	return s == SurfaceBanner || s == SurfaceModal
}

const (
	DefaultPriority = 3
	MinPriority     = 1
	MaxPriority     = 5
)

// Author 公告作者，创建后不可修改
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultAuthor 请求未指定作者时使用
var DefaultAuthor = Author{ID: "admin", Name: "관리자"}

// NoticeHistoryEntry 公告历史记录，写入后不可修改
type NoticeHistoryEntry struct {
	Action    HistoryAction `json:"action"`
	Timestamp time.Time     `json:"timestamp"`
	Status    NoticeStatus  `json:"status"`
	Note      string        `json:"note,omitempty"`
}

// BannerConfig 顶部横幅配置，nil 表示不在横幅展示
type BannerConfig struct {
	Content         string          `json:"content,omitempty"`
	StartDate       *time.Time      `json:"startDate,omitempty"`
	EndDate         *time.Time      `json:"endDate,omitempty"`
	DismissDuration DismissDuration `json:"dismissDuration"`
}

// ModalConfig 首次访问弹窗配置，nil 表示不以弹窗展示
type ModalConfig struct {
	Title           string          `json:"title,omitempty"`
	Body            string          `json:"body,omitempty"`
	StartDate       *time.Time      `json:"startDate,omitempty"`
	EndDate         *time.Time      `json:"endDate,omitempty"`
	DismissDuration DismissDuration `json:"dismissDuration"`
}

// Notice 公告模型
type Notice struct {
	ID        string               `json:"id"`
	Category  string               `json:"category"`
	Title     string               `json:"title"`
	Content   string               `json:"content"`
	PublishAt *time.Time           `json:"publishAt,omitempty"`
	ExpireAt  *time.Time           `json:"expireAt,omitempty"`
	IsPinned  bool                 `json:"isPinned"`
	Banner    *BannerConfig        `json:"banner,omitempty"`
	Modal     *ModalConfig         `json:"modal,omitempty"`
	Priority  int                  `json:"priority"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
	ViewCount int64                `json:"viewCount"`
	Author    Author               `json:"author"`
	Status    NoticeStatus         `json:"status"`
	History   []NoticeHistoryEntry `json:"history"`
}

// ShowInBanner 是否开启横幅展示
func (n *Notice) ShowInBanner() bool {
	return n.Banner != nil
}

// ShowAsModal 是否开启弹窗展示
func (n *Notice) ShowAsModal() bool {
	return n.Modal != nil
}

// EffectivePriority 未设置时按默认优先级处理
func (n *Notice) EffectivePriority() int {
	if n.Priority == 0 {
		return DefaultPriority
	}
	return n.Priority
}

// BannerText 横幅文案，未指定时使用标题
func (n *Notice) BannerText() string {
	if n.Banner != nil && n.Banner.Content != "" {
		return n.Banner.Content
	}
	return n.Title
}

// ModalTitle 弹窗标题，未指定时使用标题
func (n *Notice) ModalTitle() string {
	if n.Modal != nil && n.Modal.Title != "" {
		return n.Modal.Title
	}
	return n.Title
}

// ModalBody 弹窗正文，未指定时使用公告内容
func (n *Notice) ModalBody() string {
	if n.Modal != nil && n.Modal.Body != "" {
		return n.Modal.Body
	}
	return n.Content
}

// Normalize 补齐默认值。写入和读取存储时都会调用，
// 关闭时长的默认值只在这里确定。
func (n *Notice) Normalize() {
	if n.Priority == 0 {
		n.Priority = DefaultPriority
	}
	if n.Banner != nil && n.Banner.DismissDuration == "" {
		n.Banner.DismissDuration = DefaultDismissDuration
	}
	if n.Modal != nil && n.Modal.DismissDuration == "" {
		n.Modal.DismissDuration = DefaultDismissDuration
	}
	if n.History == nil {
		n.History = []NoticeHistoryEntry{}
	}
}

// DismissDurationFor 返回指定展示位置的关闭时长
func (n *Notice) DismissDurationFor(surface Surface) DismissDuration {
	var d DismissDuration
	switch surface {
	case SurfaceBanner:
		if n.Banner != nil {
			d = n.Banner.DismissDuration
		}
	case SurfaceModal:
		if n.Modal != nil {
			d = n.Modal.DismissDuration
		}
	}
	if d == "" {
		return DefaultDismissDuration
	}
	return d
}

// Clone 深拷贝，避免调用方修改共享切片和指针
func (n Notice) Clone() Notice {
	c := n
	c.PublishAt = cloneTime(n.PublishAt)
	c.ExpireAt = cloneTime(n.ExpireAt)
	if n.Banner != nil {
		b := *n.Banner
		b.StartDate = cloneTime(n.Banner.StartDate)
		b.EndDate = cloneTime(n.Banner.EndDate)
		c.Banner = &b
	}
	if n.Modal != nil {
		m := *n.Modal
		m.StartDate = cloneTime(n.Modal.StartDate)
		m.EndDate = cloneTime(n.Modal.EndDate)
		c.Modal = &m
	}
	c.History = append([]NoticeHistoryEntry(nil), n.History...)
	return c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// PaginatedNotices 分页公告结果
type PaginatedNotices struct {
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
	Items    []NoticeView `json:"items"`
}

// NoticeView 列表展示用的公告，附带计算出的有效状态
type NoticeView struct {
	Notice
	EffectiveStatus NoticeStatus  `json:"effectiveStatus"`
	DisplayNumber   int           `json:"displayNumber,omitempty"`
	IsRead          bool          `json:"isRead"`
	CategoryInfo    *CategoryInfo `json:"categoryInfo,omitempty"`
}

// ViewerNoticeState 某个访客对一条公告的本地状态
type ViewerNoticeState struct {
	NoticeID         string `json:"noticeId"`
	ViewerID         string `json:"viewerId"`
	IsRead           bool   `json:"isRead"`
	BannerSuppressed bool   `json:"bannerSuppressed"`
	ModalSuppressed  bool   `json:"modalSuppressed"`
}

// SurfaceItem 横幅或弹窗中展示的一条公告
type SurfaceItem struct {
	ID                string          `json:"id"`
	Surface           Surface         `json:"surface"`
	Title             string          `json:"title"`
	Body              string          `json:"body,omitempty"`
	Priority          int             `json:"priority"`
	DismissDuration   DismissDuration `json:"dismissDuration"`
	DismissDurationMs int64           `json:"dismissDurationMs"` // 永久关闭为 math.MaxInt64
	CategoryInfo      *CategoryInfo   `json:"categoryInfo,omitempty"`
}
