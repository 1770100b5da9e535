package handler

import (
	"context"
	"encoding/json"
	"time"

	"noticeboard/internal/carousel"
	"noticeboard/internal/constants"
	"noticeboard/internal/middleware"
	"noticeboard/internal/service"
	"noticeboard/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const carouselDismissTimeout = 5 * time.Second

// 轮播指令
const (
	carouselNext     = "next"
	carouselPrev     = "prev"
	carouselGoTo     = "goto"
	carouselDismiss  = "dismiss"
	carouselClose    = "close"
	carouselHold     = "hold"
	carouselRelease  = "release"
	carouselAutoPlay = "autoplay"
)

// CarouselCommand 客户端发送的轮播指令
type CarouselCommand struct {
	Action string `json:"action"`
	Index  int    `json:"index"`
	On     bool   `json:"on"`
}

// CarouselMessage 服务端推送的轮播消息，type 为 state 或 error
type CarouselMessage struct {
	Type  string          `json:"type"`
	State *carousel.State `json:"state,omitempty"`
	Msg   string          `json:"msg,omitempty"`
}

// BannerCarouselHandler 每个连接维护一个访客的横幅轮播会话
type BannerCarouselHandler struct {
	noticeService *service.NoticeService
	dismisser     carousel.Dismisser
	observer      *service.Observer
	logger        *logger.Logger
	options       []carousel.Option
}

// NewBannerCarouselHandler 创建横幅轮播处理器实例
func NewBannerCarouselHandler(noticeService *service.NoticeService, dismisser carousel.Dismisser, observer *service.Observer, logger *logger.Logger, options ...carousel.Option) *BannerCarouselHandler {
	return &BannerCarouselHandler{
		noticeService: noticeService,
		dismisser:     dismisser,
		observer:      observer,
		logger:        logger,
		options:       options,
	}
}

// Banners 横幅轮播
// @Summary 横幅轮播
// @Description 连接后推送当前展示的横幅，接收切换、关闭和暂停指令；公告变更时重新加载横幅列表
// @Tags 公告
// @Success 101 {object} CarouselMessage "Switching Protocols"
// @Router /ws/banners [get]
func (h *BannerCarouselHandler) Banners(c *gin.Context) {
	viewerID := middleware.ViewerID(c)

	reload := make(chan struct{}, 1)
	unsubscribe := h.observer.Subscribe(func(service.Event) {
		select {
		case reload <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	items, err := h.noticeService.Banners(c.Request.Context(), viewerID)
	if err != nil {
		RespondError(c, h.logger, "获取横幅", constants.ErrNoticeNotFound, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	session := carousel.New(viewerID, items, h.dismisser, h.options...)
	session.Start()
	defer session.Stop()

	replies := make(chan CarouselMessage, feedBufferSize)
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var cmd CarouselCommand
			if err := json.Unmarshal(raw, &cmd); err != nil {
				cmd.Action = ""
			}
			if msg, ok := h.apply(session, viewerID, cmd); !ok {
				select {
				case replies <- msg:
				default:
				}
			}
		}
	}()

	ping := time.NewTicker(feedPingPeriod)
	defer ping.Stop()

	write := func(msg CarouselMessage) bool {
		conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
		return conn.WriteJSON(msg) == nil
	}

	initial := session.State()
	if !write(CarouselMessage{Type: "state", State: &initial}) {
		return
	}

	for {
		select {
		case st := <-session.Changes():
			if !write(CarouselMessage{Type: "state", State: &st}) {
				return
			}
		case msg := <-replies:
			if !write(msg) {
				return
			}
		case <-reload:
			items, err := h.noticeService.Banners(context.Background(), viewerID)
			if err != nil {
				h.logger.Warn("重新加载横幅失败", "viewer", viewerID, "error", err)
				continue
			}
			session.Replace(items)
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

// apply 执行一条指令，失败时返回需要回复给客户端的错误消息
func (h *BannerCarouselHandler) apply(session *carousel.Carousel, viewerID string, cmd CarouselCommand) (CarouselMessage, bool) {
	switch cmd.Action {
	case carouselNext:
		session.Next()
	case carouselPrev:
		session.Prev()
	case carouselGoTo:
		session.GoTo(cmd.Index)
	case carouselDismiss:
		ctx, cancel := context.WithTimeout(context.Background(), carouselDismissTimeout)
		defer cancel()
		if err := session.Dismiss(ctx); err != nil {
			h.logger.Error("轮播关闭横幅失败", "viewer", viewerID, "error", err)
			return CarouselMessage{Type: "error", Msg: constants.ErrInternalServer}, false
		}
	case carouselClose:
		session.SoftClose()
	case carouselHold:
		session.Hold()
	case carouselRelease:
		session.Release()
	case carouselAutoPlay:
		session.SetAutoPlay(cmd.On)
	default:
		return CarouselMessage{Type: "error", Msg: constants.ErrInvalidRequest}, false
	}
	return CarouselMessage{}, true
}
