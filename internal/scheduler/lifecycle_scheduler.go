package scheduler

import (
	"context"
	"sync"
	"time"

	"noticeboard/pkg/logger"
)

const sweepTimeout = 30 * time.Second

// Sweeper 按时间区间检查公告状态变化
type Sweeper interface {
	SweepTransitions(ctx context.Context, from, to time.Time) (int, error)
}

// LifecycleScheduler 公告生命周期调度器，定时推送预约发布和自动过期事件
type LifecycleScheduler struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *logger.Logger
	now      func() time.Time
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewLifecycleScheduler 创建生命周期调度器实例
func NewLifecycleScheduler(sweeper Sweeper, interval time.Duration, logger *logger.Logger) *LifecycleScheduler {
	return &LifecycleScheduler{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// WithClock 替换时钟，测试使用
func (s *LifecycleScheduler) WithClock(now func() time.Time) *LifecycleScheduler {
	s.now = now
	return s
}

// Start 启动调度器
func (s *LifecycleScheduler) Start() {
	go s.run()
	s.logger.Info("公告生命周期调度器启动", "interval", s.interval)
}

// Stop 停止调度器并等待当前检查结束
func (s *LifecycleScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
		<-s.done
		s.logger.Info("公告生命周期调度器停止")
	})
}

func (s *LifecycleScheduler) run() {
	defer close(s.done)

	last := s.now()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// 失败时保留起点，下次检查覆盖遗漏的区间
			now := s.now()
			if s.sweep(last, now) {
				last = now
			}
		case <-s.quit:
			return
		}
	}
}

func (s *LifecycleScheduler) sweep(from, to time.Time) bool {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	changed, err := s.sweeper.SweepTransitions(ctx, from, to)
	if err != nil {
		s.logger.Error("检查公告状态变化失败", "error", err)
		return false
	}
	if changed > 0 {
		s.logger.Info("公告状态已随时间变化", "数量", changed)
	}
	return true
}
