package repository

import (
	"context"
	"fmt"

	"noticeboard/internal/model"

	"github.com/redis/go-redis/v9"
)

// ViewerStateRepository 每个访客的本地状态：关闭记录和已读标记
type ViewerStateRepository struct {
	redisClient *redis.Client
}

// NewViewerStateRepository 创建访客状态存储库实例
func NewViewerStateRepository(redisClient *redis.Client) *ViewerStateRepository {
	return &ViewerStateRepository{redisClient: redisClient}
}

func dismissalKey(viewerID string, surface model.Surface, noticeID string) string {
	return fmt.Sprintf("dismissed:%s:%s:%s", viewerID, surface, noticeID)
}

func readKey(viewerID string) string {
	return fmt.Sprintf("readNotices:%s", viewerID)
}

// SetDismissal 写入关闭时间，覆盖之前的记录
func (r *ViewerStateRepository) SetDismissal(ctx context.Context, viewerID string, surface model.Surface, noticeID, stamp string) error {
	return r.redisClient.Set(ctx, dismissalKey(viewerID, surface, noticeID), stamp, 0).Err()
}

// Dismissal 读取关闭时间，没有记录时 ok 为 false
func (r *ViewerStateRepository) Dismissal(ctx context.Context, viewerID string, surface model.Surface, noticeID string) (stamp string, ok bool, err error) {
	stamp, err = r.redisClient.Get(ctx, dismissalKey(viewerID, surface, noticeID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return stamp, true, nil
}

// Dismissals 批量读取关闭时间，只返回存在记录的公告
func (r *ViewerStateRepository) Dismissals(ctx context.Context, viewerID string, surface model.Surface, noticeIDs []string) (map[string]string, error) {
	stamps := make(map[string]string, len(noticeIDs))
	if len(noticeIDs) == 0 {
		return stamps, nil
	}

	keys := make([]string, len(noticeIDs))
	for i, id := range noticeIDs {
		keys[i] = dismissalKey(viewerID, surface, id)
	}
	values, err := r.redisClient.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		if s, ok := v.(string); ok {
			stamps[noticeIDs[i]] = s
		}
	}
	return stamps, nil
}

// MarkRead 标记公告为已读
func (r *ViewerStateRepository) MarkRead(ctx context.Context, viewerID, noticeID string) error {
	return r.redisClient.SAdd(ctx, readKey(viewerID), noticeID).Err()
}

// IsRead 公告是否已读
func (r *ViewerStateRepository) IsRead(ctx context.Context, viewerID, noticeID string) (bool, error) {
	return r.redisClient.SIsMember(ctx, readKey(viewerID), noticeID).Result()
}

// ReadSet 访客已读的全部公告
func (r *ViewerStateRepository) ReadSet(ctx context.Context, viewerID string) (map[string]struct{}, error) {
	members, err := r.redisClient.SMembers(ctx, readKey(viewerID)).Result()
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}
	return set, nil
}
