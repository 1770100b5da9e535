package lifecycle

import (
	"sort"
	"time"

	"noticeboard/internal/model"
)

// SuppressFunc 判断某公告在指定位置是否处于关闭期
type SuppressFunc func(n *model.Notice, surface model.Surface) bool

// window 展示时间窗口，缺失的边界视为不限
type window struct {
	start *time.Time
	end   *time.Time
}

func (w window) contains(now time.Time) bool {
	if w.start != nil && now.Before(*w.start) {
		return false
	}
	if w.end != nil && now.After(*w.end) {
		return false
	}
	return true
}

// surfaceWindow 返回展示开关和时间窗口。开关关闭时其他字段不参与判断。
func surfaceWindow(n *model.Notice, surface model.Surface) (window, bool) {
	switch surface {
	case model.SurfaceBanner:
		if n.Banner == nil {
			return window{}, false
		}
		return window{start: n.Banner.StartDate, end: n.Banner.EndDate}, true
	case model.SurfaceModal:
		if n.Modal == nil {
			return window{}, false
		}
		return window{start: n.Modal.StartDate, end: n.Modal.EndDate}, true
	}
	return window{}, false
}

// SelectCandidates 计算某个展示位置的候选公告，每次渲染都重新计算，不做缓存。
//
// 横幅和弹窗：开关开启、在时间窗口内、未被关闭，按优先级升序稳定排序。
// 公开列表：有效状态为已发布，置顶优先，其次按创建时间倒序。
func SelectCandidates(notices []model.Notice, surface model.Surface, now time.Time, suppressed SuppressFunc) []model.Notice {
	if surface == model.SurfacePublicList {
		return selectPublic(notices, now)
	}

	result := make([]model.Notice, 0, len(notices))
	for i := range notices {
		n := &notices[i]
		w, enabled := surfaceWindow(n, surface)
		if !enabled {
			continue
		}
		if !w.contains(now) {
			continue
		}
		if suppressed != nil && suppressed(n, surface) {
			continue
		}
		result = append(result, *n)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].EffectivePriority() < result[j].EffectivePriority()
	})
	return result
}

// Listable 公告是否可以出现在公开列表
func Listable(n *model.Notice, now time.Time) bool {
	return EffectiveStatus(n, now) == model.StatusPublished
}

func selectPublic(notices []model.Notice, now time.Time) []model.Notice {
	result := make([]model.Notice, 0, len(notices))
	for i := range notices {
		if Listable(&notices[i], now) {
			result = append(result, notices[i])
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return result
}
