package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用程序配置
type Config struct {
	APIPort  int
	LogLevel string
	LogFile  LogFileConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Admin    AdminConfig
	Notice   NoticeConfig
	Worker   WorkerConfig
}

// LogFileConfig 日志文件配置
type LogFileConfig struct {
	Enabled    bool
	Path       string
	MaxSize    int // 单个文件最大大小，单位MB
	MaxBackups int
	MaxAge     int // 最大保留天数
	Compress   bool
}

// DatabaseConfig MySQL数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string
	Port     int
	Password string
}

// AdminConfig 管理员认证配置
type AdminConfig struct {
	TokenHash string // 管理员Token的bcrypt哈希
}

// NoticeConfig 公告相关配置
type NoticeConfig struct {
	CacheTTL      time.Duration // 公告集合缓存时间
	SweepInterval time.Duration // 检查预约发布和自动过期的间隔
}

// WorkerConfig 异步工作器配置
type WorkerConfig struct {
	Count     int
	QueueSize int
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	// .env 文件可选，不存在时直接使用环境变量
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := &Config{
		APIPort:  envInt("API_PORT", 8080),
		LogLevel: os.Getenv("LOG_LEVEL"),
		LogFile: LogFileConfig{
			Enabled:    envBool("LOG_FILE_ENABLED", false),
			Path:       envString("LOG_FILE_PATH", "logs/noticeboard.log"),
			MaxSize:    envInt("LOG_FILE_MAX_SIZE", 100),
			MaxBackups: envInt("LOG_FILE_MAX_BACKUPS", 7),
			MaxAge:     envInt("LOG_FILE_MAX_AGE", 30),
			Compress:   envBool("LOG_FILE_COMPRESS", true),
		},
		Database: DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     envInt("DB_PORT", 3306),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     envString("REDIS_HOST", "127.0.0.1"),
			Port:     envInt("REDIS_PORT", 6379),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Admin: AdminConfig{
			TokenHash: os.Getenv("ADMIN_TOKEN_HASH"),
		},
		Notice: NoticeConfig{
			CacheTTL:      time.Duration(envInt("NOTICE_CACHE_TTL", 300)) * time.Second,
			SweepInterval: time.Duration(envInt("NOTICE_SWEEP_INTERVAL", 60)) * time.Second,
		},
		Worker: WorkerConfig{
			Count:     envInt("WORKER_COUNT", 5),
			QueueSize: envInt("WORKER_QUEUE_SIZE", 100),
		},
	}

	if cfg.Admin.TokenHash == "" {
		return nil, fmt.Errorf("ADMIN_TOKEN_HASH must be set")
	}

	return cfg, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
