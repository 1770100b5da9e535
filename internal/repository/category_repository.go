package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"noticeboard/internal/model"

	"github.com/jmoiron/sqlx"
)

// CategoryRepository 分类存储库
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository 创建分类存储库实例
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List 按排序返回全部分类
func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	query := "SELECT id, label, emoji, color, sort_order FROM categories ORDER BY sort_order ASC, id ASC"
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, err
	}
	return categories, nil
}

// Get 根据ID获取分类
func (r *CategoryRepository) Get(ctx context.Context, id string) (*model.Category, error) {
	var category model.Category
	query := "SELECT id, label, emoji, color, sort_order FROM categories WHERE id = ?"
	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: category %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &category, nil
}

// Count 分类总数
func (r *CategoryRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM categories")
	return count, err
}

// NextOrder 新分类的排序值，追加到末尾
func (r *CategoryRepository) NextOrder(ctx context.Context) (int, error) {
	var max sql.NullInt64
	if err := r.db.GetContext(ctx, &max, "SELECT MAX(sort_order) FROM categories"); err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

// Create 创建分类
func (r *CategoryRepository) Create(ctx context.Context, c *model.Category) error {
	query := `INSERT INTO categories (id, label, emoji, color, sort_order)
		VALUES (:id, :label, :emoji, :color, :sort_order)`
	_, err := r.db.NamedExecContext(ctx, query, c)
	return err
}

// Update 更新分类的名称、图标和颜色
func (r *CategoryRepository) Update(ctx context.Context, c *model.Category) error {
	query := "UPDATE categories SET label = :label, emoji = :emoji, color = :color WHERE id = :id"
	_, err := r.db.NamedExecContext(ctx, query, c)
	return err
}

// SeedDefaults 分类表为空时写入默认分类
func (r *CategoryRepository) SeedDefaults(ctx context.Context, defaults []model.Category) (bool, error) {
	count, err := r.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	for i := range defaults {
		query := `INSERT INTO categories (id, label, emoji, color, sort_order)
			VALUES (:id, :label, :emoji, :color, :sort_order)`
		if _, err := tx.NamedExecContext(ctx, query, &defaults[i]); err != nil {
			return false, err
		}
	}
	return true, tx.Commit()
}

// Reorder 按给定顺序重排分类，排序值依次为 0..n-1
func (r *CategoryRepository) Reorder(ctx context.Context, ids []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := renumber(ctx, tx, ids); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteAndReassign 删除分类，并把引用它的公告迁移到替代分类。
// 迁移、删除和重新编号在同一个事务中完成。
func (r *CategoryRepository) DeleteAndReassign(ctx context.Context, id, replacement string, now time.Time) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var moved int64
	if replacement != "" {
		result, err := tx.ExecContext(ctx,
			"UPDATE notices SET category = ?, updated_at = ? WHERE category = ?",
			replacement, now.UTC(), id)
		if err != nil {
			return 0, err
		}
		if moved, err = result.RowsAffected(); err != nil {
			return 0, err
		}
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return 0, err
	}
	if affected, err := result.RowsAffected(); err != nil {
		return 0, err
	} else if affected == 0 {
		return 0, fmt.Errorf("%w: category %s", ErrNotFound, id)
	}

	var remaining []string
	if err := tx.SelectContext(ctx, &remaining, "SELECT id FROM categories ORDER BY sort_order ASC, id ASC"); err != nil {
		return 0, err
	}
	if err := renumber(ctx, tx, remaining); err != nil {
		return 0, err
	}

	return moved, tx.Commit()
}

func renumber(ctx context.Context, tx *sqlx.Tx, ids []string) error {
	for i, id := range ids {
		if _, err := tx.ExecContext(ctx, "UPDATE categories SET sort_order = ? WHERE id = ?", i, id); err != nil {
			return err
		}
	}
	return nil
}
