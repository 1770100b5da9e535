package lifecycle

import (
	"testing"
	"time"

	"noticeboard/internal/model"
)

func ids(notices []model.Notice) []string {
	out := make([]string, len(notices))
	for i, n := range notices {
		out[i] = n.ID
	}
	return out
}

func equalIDs(t *testing.T, got []model.Notice, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("got %v, want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("got %v, want %v", g, want)
		}
	}
}

func TestSelectCandidatesBannerPriority(t *testing.T) {
	now := time.Now()
	notices := []model.Notice{
		{ID: "p3", Priority: 3, Banner: &model.BannerConfig{}},
		{ID: "p1", Priority: 1, Banner: &model.BannerConfig{}},
		{ID: "p2", Priority: 2, Banner: &model.BannerConfig{}},
	}
	equalIDs(t, SelectCandidates(notices, model.SurfaceBanner, now, nil), "p1", "p2", "p3")
}

func TestSelectCandidatesStableOnTies(t *testing.T) {
	now := time.Now()
	notices := []model.Notice{
		{ID: "a", Banner: &model.BannerConfig{}},
		{ID: "b", Priority: 3, Banner: &model.BannerConfig{}},
		{ID: "c", Priority: 1, Banner: &model.BannerConfig{}},
		{ID: "d", Banner: &model.BannerConfig{}},
	}
	equalIDs(t, SelectCandidates(notices, model.SurfaceBanner, now, nil), "c", "a", "b", "d")
}

func TestSelectCandidatesModal(t *testing.T) {
	now := time.Now()
	notices := []model.Notice{
		{ID: "two", Priority: 2, Modal: &model.ModalConfig{}},
		{ID: "one", Priority: 1, Modal: &model.ModalConfig{}},
		{ID: "banner-only", Priority: 1, Banner: &model.BannerConfig{}},
	}
	equalIDs(t, SelectCandidates(notices, model.SurfaceModal, now, nil), "one", "two")
}

func TestSelectCandidatesWindow(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	notices := []model.Notice{
		{ID: "open", Banner: &model.BannerConfig{}},
		{ID: "not-started", Banner: &model.BannerConfig{StartDate: ptr(now.Add(time.Minute))}},
		{ID: "ended", Banner: &model.BannerConfig{EndDate: ptr(now.Add(-time.Minute))}},
		{ID: "inside", Banner: &model.BannerConfig{StartDate: ptr(now.Add(-time.Hour)), EndDate: ptr(now.Add(time.Hour))}},
		{ID: "start-boundary", Banner: &model.BannerConfig{StartDate: ptr(now)}},
		{ID: "end-boundary", Banner: &model.BannerConfig{EndDate: ptr(now)}},
	}
	equalIDs(t, SelectCandidates(notices, model.SurfaceBanner, now, nil), "open", "inside", "start-boundary", "end-boundary")
}

func TestSelectCandidatesToggleShortCircuits(t *testing.T) {
	now := time.Now()
	notices := []model.Notice{
		{ID: "off", Modal: &model.ModalConfig{}},
		{ID: "on", Banner: &model.BannerConfig{}},
	}
	var asked []string
	suppressed := func(n *model.Notice, surface model.Surface) bool {
		asked = append(asked, n.ID)
		return false
	}

	equalIDs(t, SelectCandidates(notices, model.SurfaceBanner, now, suppressed), "on")
	if len(asked) != 1 || asked[0] != "on" {
		t.Fatalf("suppression consulted for %v", asked)
	}
}

func TestSelectCandidatesSuppressed(t *testing.T) {
	now := time.Now()
	notices := []model.Notice{
		{ID: "a", Banner: &model.BannerConfig{}, Modal: &model.ModalConfig{}},
		{ID: "b", Banner: &model.BannerConfig{}},
	}
	suppressed := func(n *model.Notice, surface model.Surface) bool {
		return n.ID == "a" && surface == model.SurfaceBanner
	}

	equalIDs(t, SelectCandidates(notices, model.SurfaceBanner, now, suppressed), "b")
	equalIDs(t, SelectCandidates(notices, model.SurfaceModal, now, suppressed), "a")
}

func TestSelectCandidatesPublicList(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	notices := []model.Notice{
		{ID: "old-pinned", IsPinned: true, Status: model.StatusPublished, CreatedAt: now.Add(-72 * time.Hour)},
		{ID: "new", Status: model.StatusPublished, CreatedAt: now.Add(-time.Hour)},
		{ID: "older", Status: model.StatusPublished, CreatedAt: now.Add(-48 * time.Hour)},
		{ID: "draft", Status: model.StatusDraft, CreatedAt: now},
		{ID: "expired", Status: model.StatusPublished, ExpireAt: ptr(now.Add(-time.Minute)), CreatedAt: now},
		{ID: "scheduled", Status: model.StatusScheduled, PublishAt: ptr(now.Add(time.Hour)), CreatedAt: now},
		{ID: "due", Status: model.StatusScheduled, PublishAt: ptr(now.Add(-time.Hour)), CreatedAt: now.Add(-2 * time.Hour)},
	}
	equalIDs(t, SelectCandidates(notices, model.SurfacePublicList, now, nil), "old-pinned", "new", "due", "older")
}

func TestDisplayNumbers(t *testing.T) {
	base := time.Now()
	filtered := []model.Notice{
		{ID: "c", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "a", CreatedAt: base},
		{ID: "b", CreatedAt: base.Add(time.Hour)},
	}
	numbers := DisplayNumbers(filtered)
	want := map[string]int{"a": 1, "b": 2, "c": 3}
	for id, n := range want {
		if numbers[id] != n {
			t.Fatalf("display number of %s = %d, want %d", id, numbers[id], n)
		}
	}
	if filtered[0].ID != "c" {
		t.Fatal("DisplayNumbers must not reorder its input")
	}
}
