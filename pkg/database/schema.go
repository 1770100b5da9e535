package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// 建表语句同时兼容MySQL和SQLite（测试使用）
var schema = []string{
	`CREATE TABLE IF NOT EXISTS notices (
		id VARCHAR(64) NOT NULL PRIMARY KEY,
		category VARCHAR(64) NOT NULL,
		title VARCHAR(255) NOT NULL,
		content MEDIUMTEXT NOT NULL,
		publish_at DATETIME NULL,
		expire_at DATETIME NULL,
		is_pinned BOOLEAN NOT NULL DEFAULT FALSE,
		banner TEXT NULL,
		modal MEDIUMTEXT NULL,
		priority INTEGER NOT NULL DEFAULT 3,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		view_count BIGINT NOT NULL DEFAULT 0,
		author_id VARCHAR(64) NOT NULL,
		author_name VARCHAR(255) NOT NULL,
		status VARCHAR(16) NOT NULL,
		history MEDIUMTEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id VARCHAR(64) NOT NULL PRIMARY KEY,
		label VARCHAR(255) NOT NULL,
		emoji VARCHAR(32) NOT NULL,
		color VARCHAR(32) NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0
	)`,
}

// Migrate 创建公告和分类表
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("执行建表语句失败: %w", err)
		}
	}
	return nil
}
