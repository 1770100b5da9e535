package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"noticeboard/internal/model"
)

func categoryIDs(categories []model.Category) []string {
	ids := make([]string, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}
	return ids
}

func TestDeleteCategoryReassignsNotices(t *testing.T) {
	ctx := context.Background()
	env := setupTest(t)
	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, env.create(t, CreateNoticeInput{NoticeInput: NoticeInput{Category: "event"}}).ID)
	}
	other := env.create(t, CreateNoticeInput{NoticeInput: NoticeInput{Category: "update"}})

	// 先读一次，确保缓存里是旧分类
	list, err := env.notices.PublicList(ctx, "", PublicQuery{Category: "event"})
	require.NoError(t, err)
	require.EqualValues(t, 5, list.Total)

	moved, err := env.categories.Delete(ctx, "event", "announcement")
	require.NoError(t, err)
	require.EqualValues(t, 5, moved)

	list, err = env.notices.PublicList(ctx, "", PublicQuery{Category: "announcement"})
	require.NoError(t, err)
	require.ElementsMatch(t, ids, viewIDs(list.Items))
	for _, item := range list.Items {
		require.Equal(t, "안내", item.CategoryInfo.Label)
	}

	kept, err := env.notices.Get(ctx, other.ID)
	require.NoError(t, err)
	require.Equal(t, "update", kept.Category)

	categories, err := env.categories.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"urgent", "update", "announcement"}, categoryIDs(categories))
	require.Equal(t, 2, categories[2].Order)
}

func TestDeleteCategoryRequiresReplacement(t *testing.T) {
	ctx := context.Background()
	env := setupTest(t)
	env.create(t, CreateNoticeInput{NoticeInput: NoticeInput{Category: "event"}})

	_, err := env.categories.Delete(ctx, "event", "")
	require.True(t, errors.Is(err, ErrReplacementRequired))

	_, err = env.categories.Delete(ctx, "event", "event")
	require.True(t, errors.Is(err, ErrReplacementRequired))

	_, err = env.categories.Delete(ctx, "event", "missing")
	require.True(t, errors.Is(err, ErrReplacementRequired))

	_, err = env.categories.Delete(ctx, "missing", "event")
	require.True(t, errors.Is(err, ErrNotFound))

	// 未被引用的分类可以直接删除
	_, err = env.categories.Delete(ctx, "urgent", "")
	require.NoError(t, err)
	_, err = env.categories.Delete(ctx, "update", "")
	require.NoError(t, err)
	_, err = env.categories.Delete(ctx, "event", "announcement")
	require.NoError(t, err)

	_, err = env.categories.Delete(ctx, "announcement", "")
	require.True(t, errors.Is(err, ErrReplacementRequired))
}

func TestAddUpdateReorderCategories(t *testing.T) {
	ctx := context.Background()
	env := setupTest(t)

	var events int
	env.observer.Subscribe(func(e Event) {
		if e.Type == EventCategoriesUpdated {
			events++
		}
	})

	added, err := env.categories.Add(ctx, CategoryInput{Label: "점검", Emoji: "🛠", Color: "green"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(added.ID, "category_"))
	require.Equal(t, 4, added.Order)

	_, err = env.categories.Add(ctx, CategoryInput{Label: "x", Emoji: "x", Color: "teal"})
	require.True(t, errors.Is(err, ErrValidation))

	updated, err := env.categories.Update(ctx, added.ID, CategoryInput{Label: "정기점검", Emoji: "🔧", Color: "orange"})
	require.NoError(t, err)
	require.Equal(t, "정기점검", updated.Label)
	require.Equal(t, 4, updated.Order)

	info, ok, err := env.categories.Resolve(ctx, added.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, model.CategoryInfo{Label: "정기점검", Emoji: "🔧", Color: "orange"}, info)

	reordered, err := env.categories.Reorder(ctx, []string{added.ID, "unknown", "event"})
	require.NoError(t, err)
	require.Equal(t, []string{added.ID, "event", "urgent", "update", "announcement"}, categoryIDs(reordered))

	_, err = env.categories.Update(ctx, "missing", CategoryInput{Label: "a", Emoji: "b", Color: "red"})
	require.True(t, errors.Is(err, ErrNotFound))

	require.Equal(t, 3, events)
}

func TestObserverUnsubscribe(t *testing.T) {
	o := NewObserver()
	var got []string
	var unsubscribe func()
	unsubscribe = o.Subscribe(func(e Event) {
		got = append(got, e.ID)
		unsubscribe()
	})

	o.Publish(Event{ID: "a"})
	o.Publish(Event{ID: "b"})
	unsubscribe()

	require.Equal(t, []string{"a"}, got)
}
