package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ADMIN_TOKEN_HASH", "$2a$10$abcdefghijklmnopqrstuv")
	t.Setenv("API_PORT", "")
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("NOTICE_CACHE_TTL", "60")
	t.Setenv("NOTICE_SWEEP_INTERVAL", "")
	t.Setenv("LOG_FILE_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIPort != 8080 {
		t.Errorf("APIPort = %d", cfg.APIPort)
	}
	if cfg.Database.Port != 3306 {
		t.Errorf("Database.Port = %d", cfg.Database.Port)
	}
	if cfg.Redis.Port != 6379 {
		t.Errorf("Redis.Port = %d", cfg.Redis.Port)
	}
	if cfg.Notice.CacheTTL != time.Minute {
		t.Errorf("CacheTTL = %v", cfg.Notice.CacheTTL)
	}
	if cfg.Notice.SweepInterval != time.Minute {
		t.Errorf("SweepInterval = %v", cfg.Notice.SweepInterval)
	}
	if !cfg.LogFile.Enabled {
		t.Error("LogFile.Enabled should be true")
	}
	if cfg.Worker.Count != 5 || cfg.Worker.QueueSize != 100 {
		t.Errorf("Worker = %+v", cfg.Worker)
	}
}

func TestLoadRequiresAdminHash(t *testing.T) {
	t.Setenv("ADMIN_TOKEN_HASH", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without ADMIN_TOKEN_HASH")
	}
}
