package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"noticeboard/internal/lifecycle"
	"noticeboard/internal/model"
	"noticeboard/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	noticeCacheVersionKey = "notices:version"
	noticeCachePattern    = "notices:cache:*"

	DefaultPageSize = 20
	MaxPageSize     = 100

	viewCountTimeout = 5 * time.Second
)

// NoticeInput 公告的可编辑字段
type NoticeInput struct {
	Category  string              `json:"category"`
	Title     string              `json:"title"`
	Content   string              `json:"content"`
	PublishAt *time.Time          `json:"publishAt"`
	ExpireAt  *time.Time          `json:"expireAt"`
	IsPinned  bool                `json:"isPinned"`
	Banner    *model.BannerConfig `json:"banner"`
	Modal     *model.ModalConfig  `json:"modal"`
	Priority  int                 `json:"priority"`
}

// CreateNoticeInput 新建公告参数。Draft 为 true 时保存为草稿。
type CreateNoticeInput struct {
	NoticeInput
	Author *model.Author `json:"author"`
	Draft  bool          `json:"draft"`
}

// UpdateNoticeInput 编辑公告参数。草稿只有在 Publish 为 true 时才会离开草稿状态。
type UpdateNoticeInput struct {
	ID string `json:"id"`
	NoticeInput
	Publish bool `json:"publish"`
}

// PublicQuery 公开列表查询条件
type PublicQuery struct {
	Category string
	Search   string
	Page     int
	PageSize int
}

// AdminQuery 管理列表查询条件
type AdminQuery struct {
	Search     string
	Categories []string
	Statuses   []model.NoticeStatus
	PinnedOnly bool
	BannerOnly bool
	ModalOnly  bool
	Sort       string // asc 或 desc，按编号排序
	Page       int
	PageSize   int
}

// NoticeService 公告服务
type NoticeService struct {
	notices     NoticeStore
	categories  *CategoryService
	tracker     *DismissalTracker
	reads       *ReadMarkers
	observer    *Observer
	worker      TaskRunner
	redisClient *redis.Client
	cacheTTL    time.Duration
	logger      *logger.Logger
	now         func() time.Time
}

// NewNoticeService 创建公告服务实例
func NewNoticeService(
	notices NoticeStore,
	categories *CategoryService,
	tracker *DismissalTracker,
	reads *ReadMarkers,
	observer *Observer,
	worker TaskRunner,
	redisClient *redis.Client,
	cacheTTL time.Duration,
	logger *logger.Logger,
) *NoticeService {
	s := &NoticeService{
		notices:     notices,
		categories:  categories,
		tracker:     tracker,
		reads:       reads,
		observer:    observer,
		worker:      worker,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
		logger:      logger,
		now:         defaultNow,
	}

	// 分类删除会迁移公告，缓存需要同步失效
	if observer != nil {
		observer.Subscribe(func(e Event) {
			if e.Type == EventCategoriesUpdated {
				s.InvalidateCache(context.Background())
			}
		})
	}
	return s
}

// WithClock 替换时钟，测试使用
func (s *NoticeService) WithClock(now func() time.Time) *NoticeService {
	s.now = now
	return s
}

// noticeCacheKey 缓存键带版本号，写操作递增版本，旧版本的写入不会再被读到
func noticeCacheKey(version int64) string {
	return fmt.Sprintf("notices:cache:v%d", version)
}

// cacheVersion 当前缓存版本，读取失败时不使用缓存
func (s *NoticeService) cacheVersion(ctx context.Context) (int64, bool) {
	if s.redisClient == nil || s.cacheTTL <= 0 {
		return 0, false
	}
	v, err := s.redisClient.Get(ctx, noticeCacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		s.logger.Warn("读取缓存版本失败", "error", err)
		return 0, false
	}
	return v, true
}

func (s *NoticeService) storeCache(ctx context.Context, version int64, notices []model.Notice) {
	data, err := json.Marshal(notices)
	if err != nil {
		return
	}
	s.redisClient.Set(ctx, noticeCacheKey(version), data, s.cacheTTL)
}

// collection 读取全部公告。存储内容损坏时按空集合处理。
func (s *NoticeService) collection(ctx context.Context) ([]model.Notice, error) {
	version, cached := s.cacheVersion(ctx)
	if cached {
		cachedData, err := s.redisClient.Get(ctx, noticeCacheKey(version)).Bytes()
		if err == nil {
			var notices []model.Notice
			if err := json.Unmarshal(cachedData, &notices); err == nil {
				return notices, nil
			}
		}
	}

	notices, err := s.notices.All(ctx)
	if err != nil {
		if errors.Is(err, ErrMalformedStorage) {
			s.logger.Warn("公告数据无法解析，按空列表处理", "error", err)
			return []model.Notice{}, nil
		}
		s.logger.Error("获取公告列表失败", "error", err)
		return nil, err
	}

	if cached {
		s.storeCache(ctx, version, notices)
	}
	return notices, nil
}

// InvalidateCache 递增缓存版本并删除已有缓存
func (s *NoticeService) InvalidateCache(ctx context.Context) error {
	if s.redisClient == nil {
		return nil
	}
	if err := s.redisClient.Incr(ctx, noticeCacheVersionKey).Err(); err != nil {
		return err
	}
	iter := s.redisClient.Scan(ctx, 0, noticeCachePattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := s.redisClient.Del(ctx, iter.Val()).Err(); err != nil {
			s.logger.Error("删除缓存失败", "key", iter.Val(), "error", err)
		}
	}
	return iter.Err()
}

func (s *NoticeService) publish(t EventType, id string) {
	if s.observer == nil {
		return
	}
	s.observer.Publish(Event{Type: t, ID: id, At: s.now()})
}

// afterWrite 写操作成功后清理缓存并通知订阅者
func (s *NoticeService) afterWrite(ctx context.Context, t EventType, id string) {
	if err := s.InvalidateCache(ctx); err != nil {
		s.logger.Warn("清理公告缓存失败", "error", err)
	}
	s.publish(t, id)
}

func (s *NoticeService) validate(ctx context.Context, in *NoticeInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrValidation)
	}
	if in.Priority != 0 && (in.Priority < model.MinPriority || in.Priority > model.MaxPriority) {
		return fmt.Errorf("%w: priority must be between %d and %d", ErrValidation, model.MinPriority, model.MaxPriority)
	}
	if in.Banner != nil {
		if in.Banner.DismissDuration != "" && !in.Banner.DismissDuration.Valid() {
			return fmt.Errorf("%w: unknown banner dismiss duration %q", ErrValidation, in.Banner.DismissDuration)
		}
		if in.Banner.StartDate != nil && in.Banner.EndDate != nil && in.Banner.EndDate.Before(*in.Banner.StartDate) {
			return fmt.Errorf("%w: banner ends before it starts", ErrValidation)
		}
	}
	if in.Modal != nil {
		if in.Modal.DismissDuration != "" && !in.Modal.DismissDuration.Valid() {
			return fmt.Errorf("%w: unknown modal dismiss duration %q", ErrValidation, in.Modal.DismissDuration)
		}
		if in.Modal.StartDate != nil && in.Modal.EndDate != nil && in.Modal.EndDate.Before(*in.Modal.StartDate) {
			return fmt.Errorf("%w: modal ends before it starts", ErrValidation)
		}
	}
	if in.Category == "" {
		return fmt.Errorf("%w: category is required", ErrValidation)
	}
	ok, err := s.categories.Exists(ctx, in.Category)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, in.Category)
	}
	return nil
}

// apply 把输入写到公告上，时间统一转为UTC
func (in *NoticeInput) apply(n *model.Notice) {
	n.Category = in.Category
	n.Title = strings.TrimSpace(in.Title)
	n.Content = in.Content
	n.PublishAt = utc(in.PublishAt)
	n.ExpireAt = utc(in.ExpireAt)
	n.IsPinned = in.IsPinned
	n.Banner = nil
	n.Modal = nil
	if in.Banner != nil {
		b := *in.Banner
		b.StartDate = utc(b.StartDate)
		b.EndDate = utc(b.EndDate)
		n.Banner = &b
	}
	if in.Modal != nil {
		m := *in.Modal
		m.StartDate = utc(m.StartDate)
		m.EndDate = utc(m.EndDate)
		n.Modal = &m
	}
	n.Priority = in.Priority
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

// Create 创建公告
func (s *NoticeService) Create(ctx context.Context, in CreateNoticeInput) (*model.Notice, error) {
	if err := s.validate(ctx, &in.NoticeInput); err != nil {
		return nil, err
	}

	now := s.now()
	n := model.Notice{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Author:    model.DefaultAuthor,
		Status:    model.StatusPublished,
	}
	if in.Author != nil && in.Author.ID != "" {
		n.Author = *in.Author
	}
	if in.Draft {
		n.Status = model.StatusDraft
	}
	in.apply(&n)
	n.Normalize()
	n = lifecycle.SeedHistory(n, now)

	if err := s.notices.Create(ctx, &n); err != nil {
		s.logger.Error("创建公告失败", "title", n.Title, "error", err)
		return nil, err
	}

	s.logger.Info("公告已创建", "id", n.ID, "status", n.Status)
	s.afterWrite(ctx, EventNoticeCreated, n.ID)
	return &n, nil
}

// Update 编辑公告，按状态变化追加历史
func (s *NoticeService) Update(ctx context.Context, in UpdateNoticeInput) (*model.Notice, error) {
	existing, err := s.notices.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, &in.NoticeInput); err != nil {
		return nil, err
	}

	now := s.now()
	previous := existing.Status
	n := existing.Clone()
	in.apply(&n)
	n.UpdatedAt = now
	if in.Publish && n.Status == model.StatusDraft {
		n.Status = model.StatusPublished
	}
	n.Normalize()
	n = lifecycle.RecordSave(n, previous, now)

	if err := s.notices.Update(ctx, &n); err != nil {
		s.logger.Error("更新公告失败", "id", n.ID, "error", err)
		return nil, err
	}

	s.afterWrite(ctx, EventNoticeUpdated, n.ID)
	return &n, nil
}

// Expire 管理员手动下线公告
func (s *NoticeService) Expire(ctx context.Context, id string) (*model.Notice, error) {
	existing, err := s.notices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	n := lifecycle.Expire(existing.Clone(), now)
	n.UpdatedAt = now
	if err := s.notices.Update(ctx, &n); err != nil {
		s.logger.Error("下线公告失败", "id", id, "error", err)
		return nil, err
	}

	s.afterWrite(ctx, EventNoticeExpired, id)
	return &n, nil
}

// Reactivate 管理员重新上线公告，原有的过期时间会被清除
func (s *NoticeService) Reactivate(ctx context.Context, id string) (*model.Notice, error) {
	existing, err := s.notices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	n := lifecycle.Reactivate(existing.Clone(), now)
	n.UpdatedAt = now
	if err := s.notices.Update(ctx, &n); err != nil {
		s.logger.Error("重新上线公告失败", "id", id, "error", err)
		return nil, err
	}

	s.afterWrite(ctx, EventNoticeReactivated, id)
	return &n, nil
}

// Delete 删除公告。访客的关闭记录和已读标记不会清理。
func (s *NoticeService) Delete(ctx context.Context, id string) error {
	if err := s.notices.Delete(ctx, id); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("删除公告失败", "id", id, "error", err)
		}
		return err
	}

	s.afterWrite(ctx, EventNoticeDeleted, id)
	return nil
}

// View 访客查看公告详情：只能查看已发布的公告，浏览次数异步加一，并标记为已读
func (s *NoticeService) View(ctx context.Context, viewerID, id string) (*model.NoticeView, error) {
	n, err := s.notices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !lifecycle.Listable(n, now) {
		return nil, fmt.Errorf("%w: notice %s", ErrNotFound, id)
	}

	s.incrementViewCount(id)
	n.ViewCount++

	if err := s.reads.MarkRead(ctx, viewerID, id); err != nil {
		s.logger.Warn("标记已读失败", "notice", id, "error", err)
	}

	infos, err := s.categories.infoIndex(ctx)
	if err != nil {
		return nil, err
	}
	view := s.toView(n, now, infos)
	view.IsRead = true
	return &view, nil
}

// incrementViewCount 浏览次数在后台更新，失败不影响查看
func (s *NoticeService) incrementViewCount(id string) {
	task := func(ctx context.Context) error {
		if err := s.notices.IncrementViewCount(ctx, id); err != nil {
			return err
		}
		return s.InvalidateCache(ctx)
	}

	if s.worker == nil {
		if err := task(context.Background()); err != nil {
			s.logger.Warn("更新浏览次数失败", "notice", id, "error", err)
		}
		return
	}
	s.worker.Submit("increment_view_count", viewCountTimeout, task)
}

// Get 管理员获取公告详情，不限状态
func (s *NoticeService) Get(ctx context.Context, id string) (*model.NoticeView, error) {
	n, err := s.notices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	infos, err := s.categories.infoIndex(ctx)
	if err != nil {
		return nil, err
	}
	view := s.toView(n, s.now(), infos)
	return &view, nil
}

// History 按展示顺序返回历史记录。publicOnly 为 true 时只允许查看已发布的公告。
func (s *NoticeService) History(ctx context.Context, id string, publicOnly bool) ([]model.NoticeHistoryEntry, error) {
	n, err := s.notices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if publicOnly && !lifecycle.Listable(n, s.now()) {
		return nil, fmt.Errorf("%w: notice %s", ErrNotFound, id)
	}
	return lifecycle.SortHistory(n.History), nil
}

// PublicList 公开列表：已发布的公告，置顶优先，支持分类筛选和搜索
func (s *NoticeService) PublicList(ctx context.Context, viewerID string, q PublicQuery) (*model.PaginatedNotices, error) {
	all, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	candidates := lifecycle.SelectCandidates(all, model.SurfacePublicList, now, nil)

	search := strings.TrimSpace(q.Search)
	filtered := candidates[:0]
	for _, n := range candidates {
		if q.Category != "" && n.Category != q.Category {
			continue
		}
		if search != "" && !containsFold(n.Title, search) && !containsFold(plainText(n.Content), search) {
			continue
		}
		filtered = append(filtered, n)
	}

	infos, err := s.categories.infoIndex(ctx)
	if err != nil {
		return nil, err
	}
	read := s.reads.ReadSet(ctx, viewerID)

	page, size := normalizePage(q.Page, q.PageSize)
	result := &model.PaginatedNotices{
		Total:    int64(len(filtered)),
		Page:     page,
		PageSize: size,
		Items:    []model.NoticeView{},
	}
	for _, n := range paginate(filtered, page, size) {
		view := s.toView(&n, now, infos)
		_, view.IsRead = read[n.ID]
		result.Items = append(result.Items, view)
	}
	return result, nil
}

// AdminList 管理列表：全部公告，支持筛选，按编号排序
func (s *NoticeService) AdminList(ctx context.Context, q AdminQuery) (*model.PaginatedNotices, error) {
	all, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	categories := toSet(q.Categories)
	statuses := make(map[model.NoticeStatus]bool, len(q.Statuses))
	for _, st := range q.Statuses {
		statuses[st] = true
	}
	search := strings.TrimSpace(q.Search)

	filtered := make([]model.Notice, 0, len(all))
	for _, n := range all {
		if search != "" && !containsFold(n.Title, search) {
			continue
		}
		if len(categories) > 0 && !categories[n.Category] {
			continue
		}
		if len(statuses) > 0 && !statuses[lifecycle.EffectiveStatus(&n, now)] {
			continue
		}
		if q.PinnedOnly && !n.IsPinned {
			continue
		}
		if q.BannerOnly && !n.ShowInBanner() {
			continue
		}
		if q.ModalOnly && !n.ShowAsModal() {
			continue
		}
		filtered = append(filtered, n)
	}

	numbers := lifecycle.DisplayNumbers(filtered)
	ascending := q.Sort == "asc"
	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := numbers[filtered[i].ID], numbers[filtered[j].ID]
		if ascending {
			return a < b
		}
		return a > b
	})

	infos, err := s.categories.infoIndex(ctx)
	if err != nil {
		return nil, err
	}

	page, size := normalizePage(q.Page, q.PageSize)
	result := &model.PaginatedNotices{
		Total:    int64(len(filtered)),
		Page:     page,
		PageSize: size,
		Items:    []model.NoticeView{},
	}
	for _, n := range paginate(filtered, page, size) {
		view := s.toView(&n, now, infos)
		view.DisplayNumber = numbers[n.ID]
		result.Items = append(result.Items, view)
	}
	return result, nil
}

// Banners 当前访客的横幅候选，按优先级排序
func (s *NoticeService) Banners(ctx context.Context, viewerID string) ([]model.SurfaceItem, error) {
	return s.surface(ctx, viewerID, model.SurfaceBanner)
}

// Modals 当前访客的弹窗候选，按优先级排序
func (s *NoticeService) Modals(ctx context.Context, viewerID string) ([]model.SurfaceItem, error) {
	return s.surface(ctx, viewerID, model.SurfaceModal)
}

// surface 每次请求都重新计算，关闭记录和时间都可能变化。
// 存储读取失败时不展示任何公告。
func (s *NoticeService) surface(ctx context.Context, viewerID string, surface model.Surface) ([]model.SurfaceItem, error) {
	all, err := s.collection(ctx)
	if err != nil {
		return []model.SurfaceItem{}, nil
	}

	suppressed, err := s.tracker.Suppressor(ctx, viewerID, all, surface)
	if err != nil {
		s.logger.Error("读取关闭记录失败，不展示公告", "viewer", viewerID, "surface", surface, "error", err)
		return []model.SurfaceItem{}, nil
	}

	infos, err := s.categories.infoIndex(ctx)
	if err != nil {
		s.logger.Error("读取分类失败，不展示公告", "surface", surface, "error", err)
		return []model.SurfaceItem{}, nil
	}

	candidates := lifecycle.SelectCandidates(all, surface, s.now(), suppressed)
	items := make([]model.SurfaceItem, 0, len(candidates))
	for i := range candidates {
		n := &candidates[i]
		duration := n.DismissDurationFor(surface)
		item := model.SurfaceItem{
			ID:                n.ID,
			Surface:           surface,
			Priority:          n.EffectivePriority(),
			DismissDuration:   duration,
			DismissDurationMs: lifecycle.ToMilliseconds(duration),
		}
		if surface == model.SurfaceBanner {
			item.Title = n.BannerText()
		} else {
			item.Title = n.ModalTitle()
			item.Body = n.ModalBody()
		}
		if info, ok := infos[n.Category]; ok {
			item.CategoryInfo = &info
		}
		items = append(items, item)
	}
	return items, nil
}

// Dismiss 访客关闭横幅或弹窗。只能关闭当前展示该位置的公告。
func (s *NoticeService) Dismiss(ctx context.Context, viewerID, id string, surface model.Surface) error {
	if !surface.Dismissible() {
		return fmt.Errorf("%w: surface %q cannot be dismissed", ErrValidation, surface)
	}
	n, err := s.notices.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if (surface == model.SurfaceBanner && !n.ShowInBanner()) || (surface == model.SurfaceModal && !n.ShowAsModal()) {
		return fmt.Errorf("%w: notice %s is not shown as %s", ErrValidation, id, surface)
	}
	return s.tracker.RecordDismissal(ctx, viewerID, id, surface)
}

// IsSuppressed 公告在该位置对访客是否处于关闭期
func (s *NoticeService) IsSuppressed(ctx context.Context, viewerID, id string, surface model.Surface) (bool, error) {
	n, err := s.notices.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	return s.tracker.IsSuppressed(ctx, viewerID, id, surface, n.DismissDurationFor(surface))
}

// ViewerState 管理员查看某个访客对公告的已读和关闭状态
func (s *NoticeService) ViewerState(ctx context.Context, viewerID, id string) (*model.ViewerNoticeState, error) {
	if viewerID == "" {
		return nil, fmt.Errorf("%w: viewer id is required", ErrValidation)
	}
	if _, err := s.notices.FindByID(ctx, id); err != nil {
		return nil, err
	}

	state := &model.ViewerNoticeState{NoticeID: id, ViewerID: viewerID}
	var err error
	if state.IsRead, err = s.reads.IsRead(ctx, viewerID, id); err != nil {
		return nil, err
	}
	if state.BannerSuppressed, err = s.IsSuppressed(ctx, viewerID, id, model.SurfaceBanner); err != nil {
		return nil, err
	}
	if state.ModalSuppressed, err = s.IsSuppressed(ctx, viewerID, id, model.SurfaceModal); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *NoticeService) toView(n *model.Notice, now time.Time, infos map[string]model.CategoryInfo) model.NoticeView {
	view := model.NoticeView{
		Notice:          n.Clone(),
		EffectiveStatus: lifecycle.EffectiveStatus(n, now),
	}
	view.History = lifecycle.SortHistory(n.History)
	if info, ok := infos[n.Category]; ok {
		view.CategoryInfo = &info
	}
	return view
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

func paginate(notices []model.Notice, page, size int) []model.Notice {
	start := (page - 1) * size
	if start >= len(notices) {
		return nil
	}
	end := start + size
	if end > len(notices) {
		end = len(notices)
	}
	return notices[start:end]
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = true
		}
	}
	return set
}
