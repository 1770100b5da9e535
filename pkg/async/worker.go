package async

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"noticeboard/pkg/logger"
)

// Task 表示一个异步任务
type Task struct {
	ID      string
	Name    string
	Handler func(ctx context.Context) error
	Timeout time.Duration
}

// Stats 任务执行统计
type Stats struct {
	Completed int64
	Failed    int64
	Dropped   int64
}

// Worker 异步任务处理器。任务失败只记录日志，不重试。
type Worker struct {
	taskQueue chan Task
	logger    *logger.Logger
	wg        sync.WaitGroup

	mu     sync.RWMutex
	closed bool
	seq    atomic.Int64

	completed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewWorker 创建一个新的工作器
func NewWorker(queueSize int, logger *logger.Logger) *Worker {
	return &Worker{
		taskQueue: make(chan Task, queueSize),
		logger:    logger,
	}
}

// Start 启动工作器
func (w *Worker) Start(numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.processTask()
	}
}

// Stop 停止接收新任务，并等待队列中的任务执行完毕
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.taskQueue)
	w.mu.Unlock()

	w.wg.Wait()
}

// Submit 将任务加入队列。队列已满或工作器已停止时丢弃任务并返回 false，调用方不会被阻塞。
func (w *Worker) Submit(name string, timeout time.Duration, handler func(ctx context.Context) error) bool {
	task := Task{
		ID:      fmt.Sprintf("task_%d", w.seq.Add(1)),
		Name:    name,
		Handler: handler,
		Timeout: timeout,
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.dropped.Add(1)
		w.logger.Warn("工作器已停止，任务被丢弃", "task", name)
		return false
	}

	select {
	case w.taskQueue <- task:
		return true
	default:
		w.dropped.Add(1)
		w.logger.Warn("任务队列已满，任务被丢弃", "task", name)
		return false
	}
}

// Stats 返回当前统计
func (w *Worker) Stats() Stats {
	return Stats{
		Completed: w.completed.Load(),
		Failed:    w.failed.Load(),
		Dropped:   w.dropped.Load(),
	}
}

// processTask 处理任务的工作循环
func (w *Worker) processTask() {
	defer w.wg.Done()

	for task := range w.taskQueue {
		w.executeTask(task)
	}
}

// executeTask 执行单个任务
func (w *Worker) executeTask(task Task) {
	start := time.Now()

	ctx := context.Background()
	if task.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, task.Timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			w.failed.Add(1)
			w.logger.Error("异步任务发生panic", "task_id", task.ID, "task", task.Name, "panic", r)
		}
	}()

	if err := task.Handler(ctx); err != nil {
		w.failed.Add(1)
		w.logger.Error("异步任务执行失败", "task_id", task.ID, "task", task.Name, "error", err)
		return
	}

	w.completed.Add(1)
	w.logger.Debug("异步任务执行完成", "task_id", task.ID, "task", task.Name, "duration", time.Since(start))
}
