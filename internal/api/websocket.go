// internal/api/websocket.go
package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Corphon/CharacterForge/internal/utils"
)

// WebSocket 升级器配置
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 在生产环境中应该进行更严格的检查
		return true
	},
}

// CharacterEvent 推送给订阅方的角色生命周期事件
type CharacterEvent struct {
	Type        string    `json:"type"` // character_created / variation_added / character_deleted
	CharacterID string    `json:"character_id"`
	Timestamp   time.Time `json:"timestamp"`
}

// EventHub 管理订阅角色生成事件的 WebSocket 连接
// 生成调用耗时较长，调用方通过事件得知工作流完成，而不必轮询
type EventHub struct {
	clients map[*websocket.Conn]bool
	mutex   sync.RWMutex
	logger  *utils.Logger
}

// NewEventHub 创建事件推送中心
func NewEventHub(logger *utils.Logger) *EventHub {
	return &EventHub{
		clients: make(map[*websocket.Conn]bool),
		logger:  logger,
	}
}

// HandleEvents 处理 /ws/events 的订阅连接
func (h *EventHub) HandleEvents(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("WebSocket升级失败: %v", err)
		return
	}

	h.mutex.Lock()
	h.clients[conn] = true
	h.mutex.Unlock()

	h.logger.Infof("事件订阅连接建立，当前连接数: %d", h.clientCount())

	// 读循环只用于感知连接关闭，订阅方不发送业务消息
	go func() {
		defer h.removeClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// NotifyCharacterEvent 向所有订阅方推送角色事件
// 实现 services.GenerationNotifier；推送失败的连接直接移除
func (h *EventHub) NotifyCharacterEvent(eventType, characterID string) {
	event := CharacterEvent{
		Type:        eventType,
		CharacterID: characterID,
		Timestamp:   time.Now(),
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(event); err != nil {
			h.logger.Warnf("推送角色事件失败，移除连接: %v", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// removeClient 移除并关闭连接
func (h *EventHub) removeClient(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, exists := h.clients[conn]; exists {
		conn.Close()
		delete(h.clients, conn)
	}
}

// clientCount 当前连接数
func (h *EventHub) clientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
