package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"noticeboard/config"
	"noticeboard/internal/middleware"
	"noticeboard/internal/service"
	"noticeboard/pkg/async"
	"noticeboard/pkg/database"
	"noticeboard/pkg/logger"
)

const adminToken = "admin-secret-token"

type apiResponse struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type testServer struct {
	router *gin.Engine
	db     *sqlx.DB
	worker *async.Worker
}

func setupTest(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	hash, err := bcrypt.GenerateFromPassword([]byte(adminToken), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cfg := &config.Config{
		LogLevel: "debug",
		Admin:    config.AdminConfig{TokenHash: string(hash)},
		Notice:   config.NoticeConfig{CacheTTL: time.Minute},
	}

	log := logger.NewNop()
	worker := async.NewWorker(10, log)
	worker.Start(1)
	t.Cleanup(worker.Stop)

	router, stop := SetupRouter(cfg, log, db, rdb, worker, service.NewObserver())
	t.Cleanup(stop)

	return &testServer{
		router: router,
		db:     db,
		worker: worker,
	}
}

// do 发送请求，viewer 为空时不带访客ID，admin 为真时带管理员Token
func (s *testServer) do(t *testing.T, method, path string, body interface{}, viewer string, admin bool) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if viewer != "" {
		req.Header.Set(middleware.ViewerHeader, viewer)
	}
	if admin {
		req.Header.Set("Authorization", "Bearer "+adminToken)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w, resp
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode data: %v (%s)", err, raw)
	}
	return v
}
