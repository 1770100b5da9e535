package handler

import (
	"net/http"
	"time"

	"noticeboard/internal/service"
	"noticeboard/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	feedBufferSize = 16
	feedWriteWait  = 10 * time.Second
	feedPingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

// ChangeFeedHandler 通过websocket推送公告和分类的变更事件
type ChangeFeedHandler struct {
	observer *service.Observer
	logger   *logger.Logger
}

// NewChangeFeedHandler 创建变更推送处理器实例
func NewChangeFeedHandler(observer *service.Observer, logger *logger.Logger) *ChangeFeedHandler {
	return &ChangeFeedHandler{observer: observer, logger: logger}
}

// Changes 变更事件推送
// @Summary 变更事件推送
// @Description 连接后持续接收公告和分类的变更事件，客户端据此刷新列表、横幅和弹窗
// @Tags 公告
// @Success 101 {object} service.Event "Switching Protocols"
// @Router /ws/changes [get]
func (h *ChangeFeedHandler) Changes(c *gin.Context) {
	// 握手完成前订阅，避免握手后立即发生的变更丢失。
	// 事件发布是同步的，慢连接只丢弃事件，不阻塞写操作。
	events := make(chan service.Event, feedBufferSize)
	unsubscribe := h.observer.Subscribe(func(e service.Event) {
		select {
		case events <- e:
		default:
			h.logger.Warn("变更推送缓冲已满，丢弃事件", "type", e.Type, "id", e.ID)
		}
	})
	defer unsubscribe()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(feedPingPeriod)
	defer ping.Stop()

	for {
		select {
		case e := <-events:
			conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteJSON(e); err != nil {
				return
			}
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
