package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"Tycoon/modules/kit/logx"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// RedrawEvent 是推给客户端的重绘通知。
type RedrawEvent struct {
	MapID string `json:"map_id"`
	Tick  uint64 `json:"tick"`
}

// Hub 按地图分组保存连接，把每个 tick 末的重绘通知广播出去。
// Redraw 在模拟 actor 里调用，不能阻塞。
type Hub struct {
	upgrader websocket.Upgrader
	log      logx.Logger

	mu    sync.RWMutex
	conns map[string]map[*Conn]struct{}
}

func NewHub(l logx.Logger) *Hub {
	if l == nil {
		l = logx.Nop()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			// 允许所有CORS跨域请求
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log:   l,
		conns: make(map[string]map[*Conn]struct{}),
	}
}

// Serve 把请求升级成 websocket 并订阅 mapID 的重绘通知。
func (h *Hub) Serve(resp http.ResponseWriter, req *http.Request, mapID string) {
	wsConn, err := h.upgrader.Upgrade(resp, req, nil)
	if err != nil {
		h.log.Error("websocket upgrade error", zap.Error(err))
		return
	}
	c := newConn(wsConn, mapID, h.log, h.remove)
	h.add(c)
	h.log.Info("websocket subscribed", zap.String("map_id", mapID), zap.String("addr", wsConn.RemoteAddr().String()))
	c.Run()
}

func (h *Hub) Redraw(mapID string, tick uint64) {
	data, err := json.Marshal(RedrawEvent{MapID: mapID, Tick: tick})
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns[mapID] {
		c.Push(data)
	}
}

func (h *Hub) Subscribers(mapID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[mapID])
}

// Close 断开全部连接。
func (h *Hub) Close() {
	h.mu.RLock()
	var all []*Conn
	for _, set := range h.conns {
		for c := range set {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()
	for _, c := range all {
		c.Close()
	}
}

func (h *Hub) add(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[c.mapID]
	if !ok {
		set = make(map[*Conn]struct{})
		h.conns[c.mapID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) remove(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.conns[c.mapID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.conns, c.mapID)
		}
	}
}
