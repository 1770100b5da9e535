package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"noticeboard/internal/model"

	"github.com/jmoiron/sqlx"
)

// noticeRow notices 表的一行，横幅、弹窗和历史以JSON文本存储
type noticeRow struct {
	ID         string         `db:"id"`
	Category   string         `db:"category"`
	Title      string         `db:"title"`
	Content    string         `db:"content"`
	PublishAt  *time.Time     `db:"publish_at"`
	ExpireAt   *time.Time     `db:"expire_at"`
	IsPinned   bool           `db:"is_pinned"`
	Banner     sql.NullString `db:"banner"`
	Modal      sql.NullString `db:"modal"`
	Priority   int            `db:"priority"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
	ViewCount  int64          `db:"view_count"`
	AuthorID   string         `db:"author_id"`
	AuthorName string         `db:"author_name"`
	Status     string         `db:"status"`
	History    string         `db:"history"`
}

const noticeColumns = `id, category, title, content, publish_at, expire_at, is_pinned, banner, modal,
	priority, created_at, updated_at, view_count, author_id, author_name, status, history`

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func encodeJSON(v interface{}, isNil bool) (sql.NullString, error) {
	if isNil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func toRow(n *model.Notice) (*noticeRow, error) {
	banner, err := encodeJSON(n.Banner, n.Banner == nil)
	if err != nil {
		return nil, fmt.Errorf("encode banner: %w", err)
	}
	modal, err := encodeJSON(n.Modal, n.Modal == nil)
	if err != nil {
		return nil, fmt.Errorf("encode modal: %w", err)
	}
	history := n.History
	if history == nil {
		history = []model.NoticeHistoryEntry{}
	}
	historyData, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}

	return &noticeRow{
		ID:         n.ID,
		Category:   n.Category,
		Title:      n.Title,
		Content:    n.Content,
		PublishAt:  utcPtr(n.PublishAt),
		ExpireAt:   utcPtr(n.ExpireAt),
		IsPinned:   n.IsPinned,
		Banner:     banner,
		Modal:      modal,
		Priority:   n.Priority,
		CreatedAt:  n.CreatedAt.UTC(),
		UpdatedAt:  n.UpdatedAt.UTC(),
		ViewCount:  n.ViewCount,
		AuthorID:   n.Author.ID,
		AuthorName: n.Author.Name,
		Status:     string(n.Status),
		History:    string(historyData),
	}, nil
}

func (r *noticeRow) toNotice() (model.Notice, error) {
	n := model.Notice{
		ID:        r.ID,
		Category:  r.Category,
		Title:     r.Title,
		Content:   r.Content,
		PublishAt: utcPtr(r.PublishAt),
		ExpireAt:  utcPtr(r.ExpireAt),
		IsPinned:  r.IsPinned,
		Priority:  r.Priority,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
		ViewCount: r.ViewCount,
		Author:    model.Author{ID: r.AuthorID, Name: r.AuthorName},
		Status:    model.NoticeStatus(r.Status),
	}

	if r.Banner.Valid && r.Banner.String != "" {
		n.Banner = &model.BannerConfig{}
		if err := json.Unmarshal([]byte(r.Banner.String), n.Banner); err != nil {
			return model.Notice{}, fmt.Errorf("%w: notice %s banner: %v", ErrMalformedStorage, r.ID, err)
		}
	}
	if r.Modal.Valid && r.Modal.String != "" {
		n.Modal = &model.ModalConfig{}
		if err := json.Unmarshal([]byte(r.Modal.String), n.Modal); err != nil {
			return model.Notice{}, fmt.Errorf("%w: notice %s modal: %v", ErrMalformedStorage, r.ID, err)
		}
	}
	if r.History != "" {
		if err := json.Unmarshal([]byte(r.History), &n.History); err != nil {
			return model.Notice{}, fmt.Errorf("%w: notice %s history: %v", ErrMalformedStorage, r.ID, err)
		}
	}
	if !n.Status.Valid() {
		return model.Notice{}, fmt.Errorf("%w: notice %s status %q", ErrMalformedStorage, r.ID, r.Status)
	}

	n.Normalize()
	return n, nil
}

// NoticeRepository 公告存储库
type NoticeRepository struct {
	db *sqlx.DB
}

// NewNoticeRepository 创建公告存储库实例
func NewNoticeRepository(db *sqlx.DB) *NoticeRepository {
	return &NoticeRepository{db: db}
}

// All 按存储顺序（最新创建在前）返回全部公告
func (r *NoticeRepository) All(ctx context.Context) ([]model.Notice, error) {
	var rows []noticeRow
	query := "SELECT " + noticeColumns + " FROM notices ORDER BY created_at DESC, id ASC"
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	notices := make([]model.Notice, 0, len(rows))
	for i := range rows {
		n, err := rows[i].toNotice()
		if err != nil {
			return nil, err
		}
		notices = append(notices, n)
	}
	return notices, nil
}

// FindByID 根据ID获取公告
func (r *NoticeRepository) FindByID(ctx context.Context, id string) (*model.Notice, error) {
	var row noticeRow
	query := "SELECT " + noticeColumns + " FROM notices WHERE id = ?"
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: notice %s", ErrNotFound, id)
		}
		return nil, err
	}

	n, err := row.toNotice()
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Create 创建公告
func (r *NoticeRepository) Create(ctx context.Context, n *model.Notice) error {
	row, err := toRow(n)
	if err != nil {
		return err
	}
	query := `INSERT INTO notices (` + noticeColumns + `) VALUES (
		:id, :category, :title, :content, :publish_at, :expire_at, :is_pinned, :banner, :modal,
		:priority, :created_at, :updated_at, :view_count, :author_id, :author_name, :status, :history)`
	_, err = r.db.NamedExecContext(ctx, query, row)
	return err
}

// Update 更新公告。作者、创建时间和浏览次数不会被覆盖。
func (r *NoticeRepository) Update(ctx context.Context, n *model.Notice) error {
	row, err := toRow(n)
	if err != nil {
		return err
	}
	query := `UPDATE notices SET
		category = :category, title = :title, content = :content,
		publish_at = :publish_at, expire_at = :expire_at, is_pinned = :is_pinned,
		banner = :banner, modal = :modal, priority = :priority,
		updated_at = :updated_at, status = :status, history = :history
		WHERE id = :id`
	_, err = r.db.NamedExecContext(ctx, query, row)
	return err
}

// Delete 删除公告
func (r *NoticeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM notices WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: notice %s", ErrNotFound, id)
	}
	return nil
}

// IncrementViewCount 浏览次数加一
func (r *NoticeRepository) IncrementViewCount(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE notices SET view_count = view_count + 1 WHERE id = ?", id)
	return err
}

// CountByCategory 统计某分类下的公告数量
func (r *NoticeRepository) CountByCategory(ctx context.Context, category string) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM notices WHERE category = ?", category)
	return count, err
}
