package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"noticeboard/internal/model"
)

func TestViewerStateDismissals(t *testing.T) {
	ctx := context.Background()
	s, rdb := setupRedis(t)
	repo := NewViewerStateRepository(rdb)

	_, ok, err := repo.Dismissal(ctx, "v1", model.SurfaceBanner, "n1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.SetDismissal(ctx, "v1", model.SurfaceBanner, "n1", "stamp-1"))
	require.NoError(t, repo.SetDismissal(ctx, "v1", model.SurfaceBanner, "n1", "stamp-2"))
	stamp, ok, err := repo.Dismissal(ctx, "v1", model.SurfaceBanner, "n1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "stamp-2", stamp)
	require.True(t, s.Exists("dismissed:v1:banner:n1"))

	// 横幅和弹窗分开记录
	_, ok, err = repo.Dismissal(ctx, "v1", model.SurfaceModal, "n1")
	require.NoError(t, err)
	require.False(t, ok)

	stamps, err := repo.Dismissals(ctx, "v1", model.SurfaceBanner, []string{"n1", "n2"})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"n1": "stamp-2"}, stamps)
}

func TestViewerStateReadMarkers(t *testing.T) {
	ctx := context.Background()
	_, rdb := setupRedis(t)
	repo := NewViewerStateRepository(rdb)

	require.NoError(t, repo.MarkRead(ctx, "v1", "n1"))
	require.NoError(t, repo.MarkRead(ctx, "v1", "n1"))

	read, err := repo.IsRead(ctx, "v1", "n1")
	require.NoError(t, err)
	require.True(t, read)

	read, err = repo.IsRead(ctx, "v2", "n1")
	require.NoError(t, err)
	require.False(t, read)

	set, err := repo.ReadSet(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, set, 1)
	require.Contains(t, set, "n1")
}
