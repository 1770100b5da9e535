package lifecycle

import (
	"math"
	"time"

	"noticeboard/internal/model"
)

var dismissSpans = map[model.DismissDuration]time.Duration{
	model.Dismiss1Hour:   time.Hour,
	model.Dismiss3Hours:  3 * time.Hour,
	model.Dismiss6Hours:  6 * time.Hour,
	model.Dismiss12Hours: 12 * time.Hour,
	model.Dismiss1Day:    24 * time.Hour,
	model.Dismiss3Days:   3 * 24 * time.Hour,
	model.Dismiss1Week:   7 * 24 * time.Hour,
}

// DismissDuration 将关闭时长标识换算为具体时长。
// bounded 为 false 表示永久关闭，没有上限。未知标识按默认值处理。
func DismissDuration(token model.DismissDuration) (span time.Duration, bounded bool) {
	if token == model.DismissPermanent {
		return 0, false
	}
	if span, ok := dismissSpans[token]; ok {
		return span, true
	}
	return dismissSpans[model.DefaultDismissDuration], true
}

// PermanentMs 永久关闭的毫秒表示，大于任何经过的时间
const PermanentMs = math.MaxInt64

// ToMilliseconds 毫秒表示，永久关闭返回 PermanentMs
func ToMilliseconds(token model.DismissDuration) int64 {
	span, bounded := DismissDuration(token)
	if !bounded {
		return PermanentMs
	}
	return span.Milliseconds()
}

// StillSuppressed 判断在 dismissedAt 关闭后，now 时刻是否仍处于关闭期内
func StillSuppressed(dismissedAt, now time.Time, token model.DismissDuration) bool {
	span, bounded := DismissDuration(token)
	if !bounded {
		return true
	}
	return now.Sub(dismissedAt) < span
}
