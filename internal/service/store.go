package service

import (
	"context"
	"time"

	"noticeboard/internal/model"
)

// NoticeStore 公告存储
type NoticeStore interface {
	All(ctx context.Context) ([]model.Notice, error)
	FindByID(ctx context.Context, id string) (*model.Notice, error)
	Create(ctx context.Context, n *model.Notice) error
	Update(ctx context.Context, n *model.Notice) error
	Delete(ctx context.Context, id string) error
	IncrementViewCount(ctx context.Context, id string) error
	CountByCategory(ctx context.Context, category string) (int64, error)
}

// CategoryStore 分类存储
type CategoryStore interface {
	List(ctx context.Context) ([]model.Category, error)
	Get(ctx context.Context, id string) (*model.Category, error)
	NextOrder(ctx context.Context) (int, error)
	Create(ctx context.Context, c *model.Category) error
	Update(ctx context.Context, c *model.Category) error
	SeedDefaults(ctx context.Context, defaults []model.Category) (bool, error)
	Reorder(ctx context.Context, ids []string) error
	DeleteAndReassign(ctx context.Context, id, replacement string, now time.Time) (int64, error)
}

// ViewerStore 访客状态存储
type ViewerStore interface {
	SetDismissal(ctx context.Context, viewerID string, surface model.Surface, noticeID, stamp string) error
	Dismissal(ctx context.Context, viewerID string, surface model.Surface, noticeID string) (string, bool, error)
	Dismissals(ctx context.Context, viewerID string, surface model.Surface, noticeIDs []string) (map[string]string, error)
	MarkRead(ctx context.Context, viewerID, noticeID string) error
	IsRead(ctx context.Context, viewerID, noticeID string) (bool, error)
	ReadSet(ctx context.Context, viewerID string) (map[string]struct{}, error)
}

// TaskRunner 异步执行不影响响应的副作用
type TaskRunner interface {
	Submit(name string, timeout time.Duration, handler func(ctx context.Context) error) bool
}

// 数据库时间精度为秒
func defaultNow() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
