package service

import (
	"context"

	"noticeboard/pkg/logger"
)

// ReadMarkers 访客的已读标记
type ReadMarkers struct {
	store  ViewerStore
	logger *logger.Logger
}

// NewReadMarkers 创建已读标记服务
func NewReadMarkers(store ViewerStore, logger *logger.Logger) *ReadMarkers {
	return &ReadMarkers{store: store, logger: logger}
}

// MarkRead 标记公告为已读
func (r *ReadMarkers) MarkRead(ctx context.Context, viewerID, noticeID string) error {
	if viewerID == "" {
		return nil
	}
	if err := r.store.MarkRead(ctx, viewerID, noticeID); err != nil {
		r.logger.Error("标记已读失败", "viewer", viewerID, "notice", noticeID, "error", err)
		return err
	}
	return nil
}

// IsRead 公告是否已读
func (r *ReadMarkers) IsRead(ctx context.Context, viewerID, noticeID string) (bool, error) {
	if viewerID == "" {
		return false, nil
	}
	return r.store.IsRead(ctx, viewerID, noticeID)
}

// ReadSet 访客已读的全部公告。读取失败时返回空集合，列表照常展示。
func (r *ReadMarkers) ReadSet(ctx context.Context, viewerID string) map[string]struct{} {
	if viewerID == "" {
		return map[string]struct{}{}
	}
	set, err := r.store.ReadSet(ctx, viewerID)
	if err != nil {
		r.logger.Warn("读取已读标记失败", "viewer", viewerID, "error", err)
		return map[string]struct{}{}
	}
	return set
}
