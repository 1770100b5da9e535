package lifecycle

import (
	"testing"
	"time"

	"noticeboard/internal/model"
)

func ptr(t time.Time) *time.Time { return &t }

func TestResolveStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		publishAt *time.Time
		expireAt  *time.Time
		stored    model.NoticeStatus
		want      model.NoticeStatus
	}{
		{"no schedule", nil, nil, model.StatusPublished, model.StatusPublished},
		{"empty stored status", nil, nil, "", model.StatusPublished},
		{"future publish", ptr(now.Add(time.Hour)), nil, model.StatusScheduled, model.StatusScheduled},
		{"past publish", ptr(now.Add(-time.Hour)), nil, model.StatusScheduled, model.StatusPublished},
		{"past expire dominates future publish", ptr(now.Add(time.Hour)), ptr(now.Add(-time.Minute)), model.StatusScheduled, model.StatusExpired},
		{"stored published but expired", nil, ptr(now.Add(-24 * time.Hour)), model.StatusPublished, model.StatusExpired},
		{"expire equal to now is not expired", nil, ptr(now), model.StatusPublished, model.StatusPublished},
		{"stored expired but window reopened", nil, ptr(now.Add(time.Hour)), model.StatusExpired, model.StatusPublished},
		{"draft with past dates", ptr(now.Add(-48 * time.Hour)), ptr(now.Add(-24 * time.Hour)), model.StatusDraft, model.StatusDraft},
		{"draft with future publish", ptr(now.Add(time.Hour)), nil, model.StatusDraft, model.StatusDraft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveStatus(tt.publishAt, tt.expireAt, tt.stored, now); got != tt.want {
				t.Errorf("ResolveStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolveStatusScheduledBecomesPublished(t *testing.T) {
	now := time.Now()
	publishAt := now.Add(time.Hour)

	if got := ResolveStatus(&publishAt, nil, model.StatusScheduled, now); got != model.StatusScheduled {
		t.Fatalf("at now: got %s, want scheduled", got)
	}
	if got := ResolveStatus(&publishAt, nil, model.StatusScheduled, now.Add(2*time.Hour)); got != model.StatusPublished {
		t.Fatalf("at now+2h: got %s, want published", got)
	}
}

// 固定排期下状态只会沿 scheduled -> published -> expired 前进
func TestResolveStatusMonotonic(t *testing.T) {
	rank := map[model.NoticeStatus]int{
		model.StatusScheduled: 0,
		model.StatusPublished: 1,
		model.StatusExpired:   2,
	}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	schedules := []struct {
		publishAt *time.Time
		expireAt  *time.Time
	}{
		{ptr(base.Add(10 * time.Hour)), ptr(base.Add(20 * time.Hour))},
		{ptr(base.Add(10 * time.Hour)), nil},
		{nil, ptr(base.Add(5 * time.Hour))},
		{ptr(base.Add(30 * time.Hour)), ptr(base.Add(20 * time.Hour))},
		{nil, nil},
	}

	for i, s := range schedules {
		prev := -1
		for h := 0; h <= 48; h++ {
			now := base.Add(time.Duration(h) * time.Hour)
			got := ResolveStatus(s.publishAt, s.expireAt, model.StatusPublished, now)
			r, ok := rank[got]
			if !ok {
				t.Fatalf("schedule %d: unexpected status %s", i, got)
			}
			if r < prev {
				t.Fatalf("schedule %d: status regressed to %s at hour %d", i, got, h)
			}
			prev = r
		}
	}
}

func TestResolveStatusDraftSticky(t *testing.T) {
	base := time.Now()
	for h := -1000; h <= 1000; h += 37 {
		now := base.Add(time.Duration(h) * time.Hour)
		got := ResolveStatus(ptr(base.Add(-time.Hour)), ptr(base.Add(time.Hour)), model.StatusDraft, now)
		if got != model.StatusDraft {
			t.Fatalf("draft resolved to %s at offset %dh", got, h)
		}
	}
}

func TestDismissDuration(t *testing.T) {
	tests := []struct {
		token   model.DismissDuration
		wantMs  int64
		bounded bool
	}{
		{model.Dismiss1Hour, 3_600_000, true},
		{model.Dismiss3Hours, 10_800_000, true},
		{model.Dismiss6Hours, 21_600_000, true},
		{model.Dismiss12Hours, 43_200_000, true},
		{model.Dismiss1Day, 86_400_000, true},
		{model.Dismiss3Days, 259_200_000, true},
		{model.Dismiss1Week, 604_800_000, true},
		{model.DismissPermanent, PermanentMs, false},
		{"bogus", 86_400_000, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.token), func(t *testing.T) {
			_, bounded := DismissDuration(tt.token)
			if bounded != tt.bounded {
				t.Errorf("bounded = %v, want %v", bounded, tt.bounded)
			}
			if got := ToMilliseconds(tt.token); got != tt.wantMs {
				t.Errorf("ToMilliseconds() = %d, want %d", got, tt.wantMs)
			}
		})
	}
}

func TestStillSuppressedPermanent(t *testing.T) {
	dismissedAt := time.Now()
	for _, d := range []time.Duration{0, time.Hour, 24 * 365 * time.Hour, 24 * 365 * 200 * time.Hour} {
		if !StillSuppressed(dismissedAt, dismissedAt.Add(d), model.DismissPermanent) {
			t.Fatalf("permanent dismissal expired after %v", d)
		}
	}
}

func TestStillSuppressedBoundary(t *testing.T) {
	dismissedAt := time.Now()
	if !StillSuppressed(dismissedAt, dismissedAt.Add(59*time.Minute), model.Dismiss1Hour) {
		t.Fatal("expected suppressed before the hour elapsed")
	}
	if StillSuppressed(dismissedAt, dismissedAt.Add(time.Hour), model.Dismiss1Hour) {
		t.Fatal("expected visible once the hour elapsed")
	}
}

func TestPermanentMillisecondsExceedAnyElapsed(t *testing.T) {
	elapsed := (24 * 365 * 200 * time.Hour).Milliseconds()
	if !(elapsed < ToMilliseconds(model.DismissPermanent)) {
		t.Fatalf("permanent ms %d not above elapsed %d", ToMilliseconds(model.DismissPermanent), elapsed)
	}
}
