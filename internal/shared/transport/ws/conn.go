package ws

import (
	"fmt"
	"sync"
	"time"

	"Tycoon/modules/kit/logx"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	outBuffer  = 64
)

// Conn 是一个订阅了某张地图重绘通知的连接。读循环只用来发现断开，写循环负责推送和心跳。
type Conn struct {
	conn      *websocket.Conn
	mapID     string
	outChan   chan []byte
	done      chan struct{}
	closeOnce sync.Once
	log       logx.Logger
	onClose   func(*Conn)
}

func newConn(c *websocket.Conn, mapID string, l logx.Logger, onClose func(*Conn)) *Conn {
	return &Conn{
		conn:    c,
		mapID:   mapID,
		outChan: make(chan []byte, outBuffer),
		done:    make(chan struct{}),
		log:     l,
		onClose: onClose,
	}
}

func (s *Conn) MapID() string { return s.mapID }

// Push 不阻塞：缓冲满时丢弃这一条，客户端下次收到的通知里 tick 更新即可。
func (s *Conn) Push(data []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.outChan <- data:
		return true
	default:
		return false
	}
}

func (s *Conn) Run() {
	go s.readMsgLoop()
	go s.writeMsgLoop()
}

func (s *Conn) readMsgLoop() {
	defer func() {
		if err := recover(); err != nil {
			s.log.Error("ws readMsgLoop panic", zap.String("err", fmt.Sprintf("%v", err)))
		}
		s.Close()
	}()
	s.conn.SetReadLimit(512)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("ws read failed", zap.String("map_id", s.mapID), zap.Error(err))
			}
			return
		}
	}
}

func (s *Conn) writeMsgLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close()
	}()
	for {
		select {
		case data := <-s.outChan:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.log.Warn("ws write failed", zap.String("map_id", s.mapID), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *Conn) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
		if s.onClose != nil {
			s.onClose(s)
		}
	})
}
