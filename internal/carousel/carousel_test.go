package carousel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"noticeboard/internal/model"
)

type fakeDismisser struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeDismisser) RecordDismissal(ctx context.Context, viewerID, noticeID string, surface model.Surface) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, viewerID+"/"+noticeID+"/"+string(surface))
	return nil
}

func items(ids ...string) []model.SurfaceItem {
	out := make([]model.SurfaceItem, len(ids))
	for i, id := range ids {
		out[i] = model.SurfaceItem{ID: id, Surface: model.SurfaceBanner}
	}
	return out
}

func currentID(t *testing.T, c *Carousel) string {
	t.Helper()
	item, ok := c.Current()
	require.True(t, ok)
	return item.ID
}

func TestDismissRecordsBeforeRemoving(t *testing.T) {
	d := &fakeDismisser{}
	c := New("v1", items("a", "b", "c"), d, WithIntervals(time.Hour, time.Hour))

	c.Next()
	require.NoError(t, c.Dismiss(context.Background()))
	require.Equal(t, []string{"v1/b/banner"}, d.calls)
	require.Equal(t, 2, c.Len())
	require.Equal(t, "c", currentID(t, c))
	c.Stop()
}

func TestDismissFailureKeepsItem(t *testing.T) {
	d := &fakeDismisser{err: errors.New("redis down")}
	c := New("v1", items("a", "b"), d)

	require.Error(t, c.Dismiss(context.Background()))
	require.Equal(t, 2, c.Len())
	require.Equal(t, "a", currentID(t, c))
}

func TestSoftCloseIsNotPersisted(t *testing.T) {
	d := &fakeDismisser{}
	c := New("v1", items("a", "b", "c"), d, WithIntervals(time.Hour, time.Hour))

	c.GoTo(2)
	c.SoftClose()
	require.Empty(t, d.calls)
	require.Equal(t, 2, c.Len())
	// 移除最后一条后回到新的末尾
	require.Equal(t, 1, c.Index())
	require.Equal(t, "b", currentID(t, c))
	c.Stop()
}

func TestTimersClearedWhenSingleItemLeft(t *testing.T) {
	c := New("v1", items("a", "b"), &fakeDismisser{}, WithIntervals(time.Hour, time.Hour))
	c.Start()
	require.True(t, c.Running())

	c.SoftClose()
	require.False(t, c.HasTimers())

	c.SoftClose()
	_, ok := c.Current()
	require.False(t, ok)
	require.False(t, c.HasTimers())
}

func TestSingleItemNeverStartsTimer(t *testing.T) {
	c := New("v1", items("a"), &fakeDismisser{})
	c.Start()
	require.False(t, c.Running())
	c.Next()
	require.False(t, c.HasTimers())
	require.Equal(t, "a", currentID(t, c))
}

func TestStopClearsTimers(t *testing.T) {
	c := New("v1", items("a", "b", "c"), &fakeDismisser{}, WithIntervals(time.Hour, time.Hour))
	c.Start()
	c.Next()
	require.True(t, c.HasTimers())

	c.Stop()
	require.False(t, c.HasTimers())
}

func TestAutoAdvance(t *testing.T) {
	c := New("v1", items("a", "b"), &fakeDismisser{}, WithIntervals(10*time.Millisecond, time.Hour))
	c.Start()
	defer c.Stop()

	require.Eventually(t, func() bool { return c.Index() == 1 }, time.Second, 5*time.Millisecond)
}

func TestManualNavigationPausesThenResumes(t *testing.T) {
	c := New("v1", items("a", "b", "c"), &fakeDismisser{}, WithIntervals(time.Hour, 20*time.Millisecond))
	c.Start()
	defer c.Stop()

	c.Prev()
	require.Equal(t, "c", currentID(t, c))
	require.False(t, c.Running())
	require.True(t, c.HasTimers())

	require.Eventually(t, c.Running, time.Second, 5*time.Millisecond)
}

func TestHoldAndAutoPlayToggle(t *testing.T) {
	c := New("v1", items("a", "b"), &fakeDismisser{}, WithIntervals(time.Hour, time.Hour))
	c.Start()
	defer c.Stop()

	c.Hold()
	require.False(t, c.Running())
	c.Release()
	require.True(t, c.Running())

	c.SetAutoPlay(false)
	require.False(t, c.Running())
	c.SetAutoPlay(true)
	require.True(t, c.Running())
}

func TestGoToOutOfRangeAfterShrinkIsIgnored(t *testing.T) {
	c := New("v1", items("a", "b", "c", "d"), &fakeDismisser{}, WithIntervals(time.Hour, time.Hour))
	c.Start()
	defer c.Stop()

	c.SoftClose()
	c.SoftClose()
	c.GoTo(2)
	c.GoTo(-1)
	require.Equal(t, 0, c.Index())
	require.Equal(t, "c", currentID(t, c))
	require.True(t, c.Running())
}

func TestGoToConcurrentWithSoftClose(t *testing.T) {
	c := New("v1", items("a", "b", "c", "d", "e", "f"), &fakeDismisser{}, WithIntervals(time.Hour, time.Hour))
	defer c.Stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			c.GoTo(5 - i%6)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 5; i++ {
			c.SoftClose()
		}
	}()
	wg.Wait()

	require.Equal(t, 1, c.Len())
	require.Equal(t, 0, c.Index())
	_, ok := c.Current()
	require.True(t, ok)
}

func TestChangesKeepsLatestState(t *testing.T) {
	c := New("v1", items("a", "b", "c"), &fakeDismisser{}, WithIntervals(time.Hour, time.Hour))
	defer c.Stop()

	c.Next()
	c.Next()
	st := <-c.Changes()
	require.Equal(t, 2, st.Index)
	require.Equal(t, 3, st.Total)
	require.Equal(t, "c", st.Item.ID)

	select {
	case extra := <-c.Changes():
		t.Fatalf("unexpected state %+v", extra)
	default:
	}

	c.SoftClose()
	st = <-c.Changes()
	require.Equal(t, 2, st.Total)
	require.Equal(t, "b", st.Item.ID)
}

func TestAutoAdvanceNotifies(t *testing.T) {
	c := New("v1", items("a", "b"), &fakeDismisser{}, WithIntervals(20*time.Millisecond, time.Hour))
	c.Start()
	defer c.Stop()

	select {
	case st := <-c.Changes():
		require.Equal(t, "b", st.Item.ID)
	case <-time.After(time.Second):
		t.Fatal("no state after auto advance")
	}
}

func TestReplaceKeepsCurrentNotice(t *testing.T) {
	c := New("v1", items("a", "b", "c"), &fakeDismisser{}, WithIntervals(time.Hour, time.Hour))
	c.Start()
	defer c.Stop()

	c.GoTo(1)
	<-c.Changes()

	c.Replace(items("x", "a", "b"))
	st := <-c.Changes()
	require.Equal(t, 2, st.Index)
	require.Equal(t, "b", st.Item.ID)
	require.Equal(t, 3, st.Total)

	c.Replace(items("y"))
	st = <-c.Changes()
	require.Equal(t, 0, st.Index)
	require.Equal(t, "y", st.Item.ID)
	require.False(t, c.HasTimers())

	c.Replace(nil)
	st = <-c.Changes()
	require.Nil(t, st.Item)
	require.Equal(t, 0, st.Total)
}
