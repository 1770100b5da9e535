// Package carousel 横幅轮播会话：自动切换、手动切换后暂停、关闭与临时隐藏。
package carousel

import (
	"context"
	"sync"
	"time"

	"noticeboard/internal/model"
)

const (
	// AutoAdvanceInterval 自动切换间隔
	AutoAdvanceInterval = 5 * time.Second
	// ResumeDelay 手动切换后恢复自动切换的等待时间
	ResumeDelay = 10 * time.Second
)

// Dismisser 持久化关闭记录
type Dismisser interface {
	RecordDismissal(ctx context.Context, viewerID, noticeID string, surface model.Surface) error
}

// Option 轮播配置
type Option func(*Carousel)

// WithIntervals 修改自动切换间隔和恢复等待时间
func WithIntervals(advance, resume time.Duration) Option {
	return func(c *Carousel) {
		c.interval = advance
		c.resumeDelay = resume
	}
}

// State 轮播当前状态，Item 为空表示没有可展示的横幅
type State struct {
	Item  *model.SurfaceItem `json:"item,omitempty"`
	Index int                `json:"index"`
	Total int                `json:"total"`
}

// Carousel 单个访客的横幅轮播。计时器在自己的goroutine中触发，所有状态由互斥锁保护。
type Carousel struct {
	mu        sync.Mutex
	viewerID  string
	items     []model.SurfaceItem
	index     int
	dismisser Dismisser

	interval    time.Duration
	resumeDelay time.Duration

	autoPlay bool
	held     bool
	stopped  bool

	advanceGen  uint64
	resumeGen   uint64
	advanceT    *time.Timer
	resumeT     *time.Timer
	manualPause bool

	changes chan State
}

// New 创建轮播会话，items 应已按优先级排序
func New(viewerID string, items []model.SurfaceItem, dismisser Dismisser, opts ...Option) *Carousel {
	c := &Carousel{
		viewerID:    viewerID,
		items:       append([]model.SurfaceItem(nil), items...),
		dismisser:   dismisser,
		interval:    AutoAdvanceInterval,
		resumeDelay: ResumeDelay,
		autoPlay:    true,
		changes:     make(chan State, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start 开始自动切换，少于两条时不启动计时器
func (c *Carousel) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = false
	c.rescheduleLocked()
}

// Stop 结束会话并清除所有计时器
func (c *Carousel) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	c.clearTimersLocked()
}

// Changes 状态变化通知，只保留最新的一条
func (c *Carousel) Changes() <-chan State {
	return c.changes
}

// State 当前状态
func (c *Carousel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Carousel) stateLocked() State {
	st := State{Index: c.index, Total: len(c.items)}
	if len(c.items) > 0 {
		item := c.items[c.index]
		st.Item = &item
	}
	return st
}

// notifyLocked 发送只在持锁时进行，清空旧状态后一定能写入
func (c *Carousel) notifyLocked() {
	select {
	case <-c.changes:
	default:
	}
	c.changes <- c.stateLocked()
}

// Replace 用新的横幅列表替换当前列表，当前公告仍在列表中时保持展示
func (c *Carousel) Replace(items []model.SurfaceItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	currentID := ""
	if len(c.items) > 0 {
		currentID = c.items[c.index].ID
	}
	c.items = append([]model.SurfaceItem(nil), items...)
	c.index = 0
	for i, item := range c.items {
		if item.ID == currentID {
			c.index = i
			break
		}
	}

	if len(c.items) <= 1 {
		c.manualPause = false
		c.clearTimersLocked()
	} else {
		c.rescheduleLocked()
	}
	c.notifyLocked()
}

// Current 当前展示的公告
func (c *Carousel) Current() (model.SurfaceItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) == 0 {
		return model.SurfaceItem{}, false
	}
	return c.items[c.index], true
}

// Index 当前位置
func (c *Carousel) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Len 剩余条数
func (c *Carousel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Running 自动切换计时器是否处于运行状态
func (c *Carousel) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.advanceT != nil
}

// HasTimers 是否还有未清除的计时器
func (c *Carousel) HasTimers() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.advanceT != nil || c.resumeT != nil
}

// Next 手动切换到下一条
func (c *Carousel) Next() {
	c.manual(func() bool {
		c.index = (c.index + 1) % len(c.items)
		return true
	})
}

// Prev 手动切换到上一条
func (c *Carousel) Prev() {
	c.manual(func() bool {
		if c.index == 0 {
			c.index = len(c.items) - 1
		} else {
			c.index--
		}
		return true
	})
}

// GoTo 手动切换到指定位置，越界时忽略
func (c *Carousel) GoTo(i int) {
	c.manual(func() bool {
		if i < 0 || i >= len(c.items) {
			return false
		}
		c.index = i
		return true
	})
}

// SetAutoPlay 打开或关闭自动切换
func (c *Carousel) SetAutoPlay(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoPlay = on
	c.manualPause = false
	c.clearResumeLocked()
	c.rescheduleLocked()
}

// Hold 临时暂停自动切换，例如鼠标悬停
func (c *Carousel) Hold() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) <= 1 {
		return
	}
	c.held = true
	c.rescheduleLocked()
}

// Release 取消临时暂停
func (c *Carousel) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.held = false
	c.rescheduleLocked()
}

// Dismiss 关闭当前公告：先写入关闭记录，再从轮播中移除。
// 写入失败时公告保留在轮播中。
func (c *Carousel) Dismiss(ctx context.Context) error {
	c.mu.Lock()
	if len(c.items) == 0 {
		c.mu.Unlock()
		return nil
	}
	id := c.items[c.index].ID
	c.mu.Unlock()

	if err := c.dismisser.RecordDismissal(ctx, c.viewerID, id, model.SurfaceBanner); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(id)
	return nil
}

// SoftClose 只在本次会话中隐藏当前公告，不写入关闭记录
func (c *Carousel) SoftClose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) == 0 {
		return
	}
	c.removeLocked(c.items[c.index].ID)
}

func (c *Carousel) removeLocked(id string) {
	for i, item := range c.items {
		if item.ID != id {
			continue
		}
		c.items = append(c.items[:i], c.items[i+1:]...)
		if i < c.index {
			c.index--
		}
		break
	}
	if c.index > len(c.items)-1 {
		c.index = len(c.items) - 1
	}
	if c.index < 0 {
		c.index = 0
	}
	if len(c.items) <= 1 {
		c.clearTimersLocked()
	}
	c.notifyLocked()
}

// manual 手动切换后暂停自动切换，等待一段时间后恢复。
// move 在锁内执行，返回 false 表示没有切换。
func (c *Carousel) manual(move func() bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) == 0 || !move() {
		return
	}
	c.notifyLocked()
	if len(c.items) <= 1 || c.stopped {
		return
	}

	c.manualPause = true
	c.clearResumeLocked()
	c.rescheduleLocked()

	gen := c.resumeGen
	c.resumeT = time.AfterFunc(c.resumeDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.resumeGen {
			return
		}
		c.manualPause = false
		c.resumeT = nil
		c.rescheduleLocked()
	})
}

// rescheduleLocked 根据当前状态重新设置自动切换计时器
func (c *Carousel) rescheduleLocked() {
	c.clearAdvanceLocked()
	if c.stopped || len(c.items) <= 1 || !c.autoPlay || c.held || c.manualPause {
		return
	}

	gen := c.advanceGen
	var tick func()
	tick = func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.advanceGen || len(c.items) <= 1 {
			return
		}
		c.index = (c.index + 1) % len(c.items)
		c.notifyLocked()
		c.advanceT = time.AfterFunc(c.interval, tick)
	}
	c.advanceT = time.AfterFunc(c.interval, tick)
}

func (c *Carousel) clearTimersLocked() {
	c.clearAdvanceLocked()
	c.clearResumeLocked()
}

func (c *Carousel) clearAdvanceLocked() {
	c.advanceGen++
	if c.advanceT != nil {
		c.advanceT.Stop()
		c.advanceT = nil
	}
}

func (c *Carousel) clearResumeLocked() {
	c.resumeGen++
	if c.resumeT != nil {
		c.resumeT.Stop()
		c.resumeT = nil
	}
}
