package service

import (
	"context"
	"fmt"
	"time"

	"noticeboard/internal/lifecycle"
	"noticeboard/internal/model"
	"noticeboard/pkg/logger"
)

// DismissalTracker 记录访客关闭横幅或弹窗的时间，并判断是否仍在关闭期内
type DismissalTracker struct {
	store  ViewerStore
	logger *logger.Logger
	now    func() time.Time
}

// NewDismissalTracker 创建关闭记录服务
func NewDismissalTracker(store ViewerStore, logger *logger.Logger) *DismissalTracker {
	return &DismissalTracker{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock 替换时钟，测试使用
func (t *DismissalTracker) WithClock(now func() time.Time) *DismissalTracker {
	t.now = now
	return t
}

// RecordDismissal 记录关闭时间。重复关闭以最后一次为准。
func (t *DismissalTracker) RecordDismissal(ctx context.Context, viewerID, noticeID string, surface model.Surface) error {
	if !surface.Dismissible() {
		return fmt.Errorf("%w: surface %q cannot be dismissed", ErrValidation, surface)
	}
	if viewerID == "" || noticeID == "" {
		return fmt.Errorf("%w: viewer and notice are required", ErrValidation)
	}

	stamp := t.now().Format(time.RFC3339Nano)
	if err := t.store.SetDismissal(ctx, viewerID, surface, noticeID, stamp); err != nil {
		t.logger.Error("记录关闭时间失败", "viewer", viewerID, "notice", noticeID, "surface", surface, "error", err)
		return err
	}
	return nil
}

// IsSuppressed 判断公告在该位置是否仍处于关闭期
func (t *DismissalTracker) IsSuppressed(ctx context.Context, viewerID, noticeID string, surface model.Surface, duration model.DismissDuration) (bool, error) {
	if viewerID == "" {
		return false, nil
	}
	stamp, ok, err := t.store.Dismissal(ctx, viewerID, surface, noticeID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	dismissedAt, ok := t.parse(viewerID, noticeID, surface, stamp)
	if !ok {
		return false, nil
	}
	return lifecycle.StillSuppressed(dismissedAt, t.now(), duration), nil
}

// Suppressor 批量读取关闭记录，返回供可见性过滤使用的判断函数
func (t *DismissalTracker) Suppressor(ctx context.Context, viewerID string, notices []model.Notice, surface model.Surface) (lifecycle.SuppressFunc, error) {
	if viewerID == "" {
		return nil, nil
	}

	ids := make([]string, 0, len(notices))
	for i := range notices {
		ids = append(ids, notices[i].ID)
	}
	stamps, err := t.store.Dismissals(ctx, viewerID, surface, ids)
	if err != nil {
		return nil, err
	}

	dismissed := make(map[string]time.Time, len(stamps))
	for id, stamp := range stamps {
		if at, ok := t.parse(viewerID, id, surface, stamp); ok {
			dismissed[id] = at
		}
	}

	now := t.now()
	return func(n *model.Notice, s model.Surface) bool {
		if s != surface {
			return false
		}
		at, ok := dismissed[n.ID]
		if !ok {
			return false
		}
		return lifecycle.StillSuppressed(at, now, n.DismissDurationFor(s))
	}, nil
}

// 无法解析的时间按没有记录处理
func (t *DismissalTracker) parse(viewerID, noticeID string, surface model.Surface, stamp string) (time.Time, bool) {
	at, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		t.logger.Warn("关闭记录时间无法解析", "viewer", viewerID, "notice", noticeID, "surface", surface, "value", stamp, "error", err)
		return time.Time{}, false
	}
	return at, true
}
