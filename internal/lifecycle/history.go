package lifecycle

import (
	"fmt"
	"sort"
	"time"

	"noticeboard/internal/model"
)

const (
	NoteSameStatus   = "edited while in same status"
	NoteManualExpire = "manually hidden by admin"
	NoteReactivated  = "reactivated by admin"
	NoteDraftSaved   = "saved as draft"
)

// actionRank 同一时间戳下的显示顺序
var actionRank = map[model.HistoryAction]int{
	model.ActionCreated:     1,
	model.ActionPublished:   2,
	model.ActionUpdated:     3,
	model.ActionReactivated: 4,
	model.ActionExpired:     5,
}

// AppendEntry 追加一条历史记录，状态取 now 时刻的有效状态。
// 返回新的公告副本，原有记录不会被修改。
func AppendEntry(n model.Notice, action model.HistoryAction, note string, now time.Time) model.Notice {
	return appendWithStatus(n, action, EffectiveStatus(&n, now), note, now)
}

func appendWithStatus(n model.Notice, action model.HistoryAction, status model.NoticeStatus, note string, now time.Time) model.Notice {
	history := make([]model.NoticeHistoryEntry, len(n.History), len(n.History)+1)
	copy(history, n.History)
	n.History = append(history, model.NoticeHistoryEntry{
		Action:    action,
		Timestamp: now,
		Status:    status,
		Note:      note,
	})
	return n
}

// SeedHistory 新建公告的初始历史。立即发布的公告额外追加一条同一时刻的发布记录。
func SeedHistory(n model.Notice, now time.Time) model.Notice {
	status := EffectiveStatus(&n, now)
	n.Status = status
	n.History = nil

	switch status {
	case model.StatusDraft:
		return appendWithStatus(n, model.ActionCreated, model.StatusDraft, NoteDraftSaved, now)
	case model.StatusScheduled:
		return appendWithStatus(n, model.ActionCreated, model.StatusScheduled, "", now)
	case model.StatusPublished:
		n = appendWithStatus(n, model.ActionCreated, model.StatusDraft, "", now)
		return appendWithStatus(n, model.ActionPublished, model.StatusPublished, "", now)
	default:
		return appendWithStatus(n, model.ActionCreated, model.StatusDraft, "", now)
	}
}

// RecordSave 保存编辑时按状态变化追加历史，并刷新存储的状态提示。
// previous 是上次保存时存储的状态。
func RecordSave(n model.Notice, previous model.NoticeStatus, now time.Time) model.Notice {
	current := EffectiveStatus(&n, now)
	n.Status = current

	switch {
	case current == previous:
		return appendWithStatus(n, model.ActionUpdated, current, NoteSameStatus, now)
	case current == model.StatusPublished:
		return appendWithStatus(n, model.ActionPublished, current, "", now)
	case current == model.StatusExpired && previous == model.StatusPublished:
		return appendWithStatus(n, model.ActionExpired, current, "", now)
	default:
		return appendWithStatus(n, model.ActionUpdated, current, fmt.Sprintf("status changed from %s to %s", previous, current), now)
	}
}

// expireTick 存储精度为秒，手动下线的过期时间早于当前时间一个精度单位
const expireTick = time.Second

// Expire 管理员手动下线，过期时间设为 now 之前，now 时刻即已过期
func Expire(n model.Notice, now time.Time) model.Notice {
	expireAt := now.Add(-expireTick)
	n.ExpireAt = &expireAt
	n.Status = model.StatusExpired
	return appendWithStatus(n, model.ActionExpired, model.StatusExpired, NoteManualExpire, now)
}

// Reactivate 管理员重新上线。过期时间会被清除，原有的自动过期设置不再保留。
func Reactivate(n model.Notice, now time.Time) model.Notice {
	n.ExpireAt = nil
	n.Status = model.StatusPublished
	return AppendEntry(n, model.ActionReactivated, NoteReactivated, now)
}

// SortHistory 按时间倒序返回历史副本，时间相同时按动作顺序升序
func SortHistory(history []model.NoticeHistoryEntry) []model.NoticeHistoryEntry {
	sorted := make([]model.NoticeHistoryEntry, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return actionRank[a.Action] < actionRank[b.Action]
	})
	return sorted
}
