package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"

	"noticeboard/internal/model"
	"noticeboard/internal/repository"
	"noticeboard/pkg/database"
	"noticeboard/pkg/logger"
)

// testEnv 测试用的完整服务组合，时钟可以手动推进
type testEnv struct {
	db         *sqlx.DB
	redis      *miniredis.Miniredis
	rdb        *redis.Client
	now        time.Time
	observer   *Observer
	notices    *NoticeService
	categories *CategoryService
	tracker    *DismissalTracker
}

func (e *testEnv) clock() time.Time { return e.now }

func (e *testEnv) advance(d time.Duration) { e.now = e.now.Add(d) }

func setupTest(t *testing.T) *testEnv {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { rdb.Close() })

	log := logger.NewNop()
	env := &testEnv{
		db:       db,
		redis:    s,
		rdb:      rdb,
		now:      time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
		observer: NewObserver(),
	}

	noticeRepo := repository.NewNoticeRepository(db)
	viewerRepo := repository.NewViewerStateRepository(rdb)

	env.categories = NewCategoryService(repository.NewCategoryRepository(db), noticeRepo, env.observer, log).WithClock(env.clock)
	if err := env.categories.EnsureDefaults(context.Background()); err != nil {
		t.Fatalf("seed categories: %v", err)
	}
	env.tracker = NewDismissalTracker(viewerRepo, log).WithClock(env.clock)
	env.notices = NewNoticeService(
		noticeRepo,
		env.categories,
		env.tracker,
		NewReadMarkers(viewerRepo, log),
		env.observer,
		nil,
		rdb,
		time.Minute,
		log,
	).WithClock(env.clock)
	return env
}

func (e *testEnv) create(t *testing.T, in CreateNoticeInput) *model.Notice {
	t.Helper()
	if in.Category == "" {
		in.Category = "announcement"
	}
	if in.Title == "" {
		in.Title = "공지"
	}
	if in.Content == "" {
		in.Content = "<p>내용</p>"
	}
	n, err := e.notices.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return n
}

func surfaceIDs(items []model.SurfaceItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func viewIDs(views []model.NoticeView) []string {
	ids := make([]string, len(views))
	for i, v := range views {
		ids[i] = v.ID
	}
	return ids
}
