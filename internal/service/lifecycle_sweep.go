package service

import (
	"context"
	"time"

	"noticeboard/internal/lifecycle"
	"noticeboard/internal/model"
)

// SweepTransitions 找出在 (from, to] 之间因时间流逝而变为已发布或已过期的公告，
// 并通知订阅者。状态本身在读取时计算，这里不修改存储。
func (s *NoticeService) SweepTransitions(ctx context.Context, from, to time.Time) (int, error) {
	if !to.After(from) {
		return 0, nil
	}

	all, err := s.collection(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	for i := range all {
		n := &all[i]
		before := lifecycle.EffectiveStatus(n, from)
		after := lifecycle.EffectiveStatus(n, to)
		if before == after {
			continue
		}

		switch after {
		case model.StatusPublished:
			s.publish(EventNoticePublished, n.ID)
		case model.StatusExpired:
			// 手动下线时已经发送过过期通知
			if n.Status == model.StatusExpired {
				continue
			}
			s.publish(EventNoticeExpired, n.ID)
		default:
			continue
		}
		s.logger.Debug("公告状态随时间变化", "id", n.ID, "from", before, "to", after)
		changed++
	}
	return changed, nil
}
