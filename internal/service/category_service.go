package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"noticeboard/internal/model"
	"noticeboard/pkg/logger"

	"k8s.io/apimachinery/pkg/util/rand"
)

// CategoryInput 新建或修改分类的参数
type CategoryInput struct {
	Label string `json:"label"`
	Emoji string `json:"emoji"`
	Color string `json:"color"`
}

// CategoryService 分类服务
type CategoryService struct {
	store    CategoryStore
	notices  NoticeStore
	observer *Observer
	logger   *logger.Logger
	now      func() time.Time
}

// NewCategoryService 创建分类服务实例
func NewCategoryService(store CategoryStore, notices NoticeStore, observer *Observer, logger *logger.Logger) *CategoryService {
	return &CategoryService{
		store:    store,
		notices:  notices,
		observer: observer,
		logger:   logger,
		now:      defaultNow,
	}
}

// WithClock 替换时钟，测试使用
func (s *CategoryService) WithClock(now func() time.Time) *CategoryService {
	s.now = now
	return s
}

// EnsureDefaults 分类表为空时写入默认分类
func (s *CategoryService) EnsureDefaults(ctx context.Context) error {
	defaults := make([]model.Category, len(model.DefaultCategories))
	copy(defaults, model.DefaultCategories)

	seeded, err := s.store.SeedDefaults(ctx, defaults)
	if err != nil {
		s.logger.Error("写入默认分类失败", "error", err)
		return err
	}
	if seeded {
		s.logger.Info("已写入默认分类", "count", len(defaults))
	}
	return nil
}

// List 按排序返回分类，没有存储任何分类时返回默认分类
func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	categories, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("获取分类列表失败", "error", err)
		return nil, err
	}
	if len(categories) == 0 {
		categories = make([]model.Category, len(model.DefaultCategories))
		copy(categories, model.DefaultCategories)
	}
	return categories, nil
}

// Resolve 查询分类的展示信息
func (s *CategoryService) Resolve(ctx context.Context, id string) (model.CategoryInfo, bool, error) {
	categories, err := s.List(ctx)
	if err != nil {
		return model.CategoryInfo{}, false, err
	}
	for _, c := range categories {
		if c.ID == id {
			return c.Info(), true, nil
		}
	}
	return model.CategoryInfo{}, false, nil
}

// infoIndex 分类ID到展示信息的映射
func (s *CategoryService) infoIndex(ctx context.Context) (map[string]model.CategoryInfo, error) {
	categories, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]model.CategoryInfo, len(categories))
	for _, c := range categories {
		index[c.ID] = c.Info()
	}
	return index, nil
}

// Exists 分类是否存在
func (s *CategoryService) Exists(ctx context.Context, id string) (bool, error) {
	_, ok, err := s.Resolve(ctx, id)
	return ok, err
}

func (in CategoryInput) validate() error {
	if strings.TrimSpace(in.Label) == "" {
		return fmt.Errorf("%w: category label is required", ErrValidation)
	}
	if strings.TrimSpace(in.Emoji) == "" {
		return fmt.Errorf("%w: category emoji is required", ErrValidation)
	}
	if !model.ValidCategoryColor(in.Color) {
		return fmt.Errorf("%w: unknown category color %q", ErrValidation, in.Color)
	}
	return nil
}

// Add 新增分类，排在最后
func (s *CategoryService) Add(ctx context.Context, in CategoryInput) (*model.Category, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	order, err := s.store.NextOrder(ctx)
	if err != nil {
		s.logger.Error("获取分类排序失败", "error", err)
		return nil, err
	}

	category := &model.Category{
		ID:    fmt.Sprintf("category_%d_%s", s.now().UnixMilli(), rand.String(4)),
		Label: strings.TrimSpace(in.Label),
		Emoji: strings.TrimSpace(in.Emoji),
		Color: in.Color,
		Order: order,
	}
	if err := s.store.Create(ctx, category); err != nil {
		s.logger.Error("创建分类失败", "label", category.Label, "error", err)
		return nil, err
	}

	s.publish(category.ID)
	return category, nil
}

// Update 修改分类的名称、图标和颜色
func (s *CategoryService) Update(ctx context.Context, id string, in CategoryInput) (*model.Category, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	category, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Label = strings.TrimSpace(in.Label)
	category.Emoji = strings.TrimSpace(in.Emoji)
	category.Color = in.Color
	if err := s.store.Update(ctx, category); err != nil {
		s.logger.Error("更新分类失败", "id", id, "error", err)
		return nil, err
	}

	s.publish(id)
	return category, nil
}

// Reorder 按给定顺序重排，未知ID被忽略，未列出的分类排在最后
func (s *CategoryService) Reorder(ctx context.Context, ids []string) ([]model.Category, error) {
	current, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(current))
	for _, c := range current {
		known[c.ID] = true
	}
	ordered := make([]string, 0, len(current))
	seen := make(map[string]bool, len(current))
	for _, id := range ids {
		if known[id] && !seen[id] {
			ordered = append(ordered, id)
			seen[id] = true
		}
	}
	for _, c := range current {
		if !seen[c.ID] {
			ordered = append(ordered, c.ID)
		}
	}

	if err := s.store.Reorder(ctx, ordered); err != nil {
		s.logger.Error("分类排序失败", "error", err)
		return nil, err
	}

	s.publish("")
	return s.store.List(ctx)
}

// Delete 删除分类。仍被公告引用时必须提供替代分类，引用它的公告会迁移到替代分类。
// 最后一个分类不能删除。
func (s *CategoryService) Delete(ctx context.Context, id, replacement string) (int64, error) {
	current, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}

	found := false
	replacementValid := false
	for _, c := range current {
		if c.ID == id {
			found = true
		} else if c.ID == replacement {
			replacementValid = true
		}
	}
	if !found {
		return 0, fmt.Errorf("%w: category %s", ErrNotFound, id)
	}
	if len(current) <= 1 {
		return 0, fmt.Errorf("%w: cannot delete the last category", ErrReplacementRequired)
	}

	referenced, err := s.notices.CountByCategory(ctx, id)
	if err != nil {
		return 0, err
	}
	if replacement != "" && !replacementValid {
		return 0, fmt.Errorf("%w: replacement %q is not a valid category", ErrReplacementRequired, replacement)
	}
	if referenced > 0 && replacement == "" {
		return 0, fmt.Errorf("%w: %d notices use category %s", ErrReplacementRequired, referenced, id)
	}

	moved, err := s.store.DeleteAndReassign(ctx, id, replacement, s.now())
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("删除分类失败", "id", id, "replacement", replacement, "error", err)
		}
		return 0, err
	}

	s.logger.Info("分类已删除", "id", id, "replacement", replacement, "moved", moved)
	s.publish(id)
	return moved, nil
}

func (s *CategoryService) publish(id string) {
	if s.observer == nil {
		return
	}
	s.observer.Publish(Event{Type: EventCategoriesUpdated, ID: id, At: s.now()})
}
