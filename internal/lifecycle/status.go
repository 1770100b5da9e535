// Package lifecycle 公告生命周期与可见性规则。
// 包内函数都是纯函数，当前时间由调用方传入。
package lifecycle

import (
	"time"

	"noticeboard/internal/model"
)

// ResolveStatus 根据发布时间、过期时间和存储的状态计算有效状态。
// 存储的状态只用于判断草稿，其余情况一律按时间重新计算。
func ResolveStatus(publishAt, expireAt *time.Time, stored model.NoticeStatus, now time.Time) model.NoticeStatus {
	// 草稿不会随时间自动流转
	if stored == model.StatusDraft {
		return model.StatusDraft
	}

	// 过期优先于预约
	if expireAt != nil && expireAt.Before(now) {
		return model.StatusExpired
	}

	if publishAt != nil && publishAt.After(now) {
		return model.StatusScheduled
	}

	return model.StatusPublished
}

// EffectiveStatus 计算公告在 now 时刻的有效状态
func EffectiveStatus(n *model.Notice, now time.Time) model.NoticeStatus {
	return ResolveStatus(n.PublishAt, n.ExpireAt, n.Status, now)
}
