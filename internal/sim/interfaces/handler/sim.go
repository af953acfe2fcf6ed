package handler

import (
	"context"
	"net/http"
	"strconv"

	"Tycoon/internal/economy/entity"
	"Tycoon/internal/shared/actor/messages"
	"Tycoon/internal/shared/transport"
	httpx "Tycoon/internal/shared/transport/http"
	"Tycoon/internal/shared/transport/http/middleware"
	simactor "Tycoon/internal/sim/actor"
	"Tycoon/modules/kit/logx"
	"Tycoon/modules/kit/tracex"

	"github.com/gin-gonic/gin"
)

// Requester 是 actor runtime 对接口层暴露的能力。
type Requester interface {
	Handle(ctx context.Context, req messages.SimMessage) (*messages.Reply, error)
}

// Subscriber 接管 websocket 升级并订阅重绘通知。
type Subscriber interface {
	Serve(w http.ResponseWriter, r *http.Request, mapID string)
}

type Sim struct {
	rt  Requester
	hub Subscriber
	log logx.Logger
}

func NewSim(rt Requester, hub Subscriber, log logx.Logger) *Sim {
	if log == nil {
		log = logx.Nop()
	}
	return &Sim{rt: rt, hub: hub, log: log}
}

func (s *Sim) RegisterRoutes(g *gin.RouterGroup) {
	m := g.Group("/maps/:map")
	m.GET("/state", s.state)
	if s.hub != nil {
		m.GET("/ws", s.subscribe)
	}

	auth := m.Group("", middleware.Auth())
	auth.POST("/buildings", s.place)
	auth.DELETE("/buildings/:x/:y", s.demolish)
	auth.PUT("/buildings/:x/:y/policy", s.setPolicy)

	auth.POST("/wave/start", s.startWave)
	auth.POST("/wave/stop", s.stopWave)
	auth.POST("/wave/claim", s.claimReward)

	auth.POST("/select", s.selectTile)
	auth.POST("/deselect", s.deselect)
	auth.POST("/hijack", s.hijack)

	auth.POST("/pledges", s.pledge)
	auth.POST("/orders/:id/accept", s.acceptOrder)
	auth.POST("/orders/:id/fulfill", s.fulfillOrder)
}

type placeReq struct {
	Type string `json:"type" binding:"required"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

type tileReq struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type pledgeReq struct {
	Resource string  `json:"resource" binding:"required"`
	Amount   float64 `json:"amount"`
}

func base(c *gin.Context) messages.SimBaseMessage {
	return messages.SimBaseMessage{Map: c.Param("map"), UserID: middleware.UserID(c)}
}

func (s *Sim) state(c *gin.Context) {
	s.do(c, &messages.StateQuery{SimBaseMessage: base(c)})
}

func (s *Sim) subscribe(c *gin.Context) {
	s.hub.Serve(c.Writer, c.Request, c.Param("map"))
}

func (s *Sim) place(c *gin.Context) {
	var req placeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, transport.InvalidParam, "参数错误")
		return
	}
	s.do(c, &messages.PlaceBuilding{SimBaseMessage: base(c), Type: req.Type, X: req.X, Y: req.Y})
}

func (s *Sim) demolish(c *gin.Context) {
	x, y, ok := coordParams(c)
	if !ok {
		return
	}
	s.do(c, &messages.Demolish{SimBaseMessage: base(c), X: x, Y: y})
}

func (s *Sim) setPolicy(c *gin.Context) {
	x, y, ok := coordParams(c)
	if !ok {
		return
	}
	var p entity.Policy
	if err := c.ShouldBindJSON(&p); err != nil {
		httpx.Fail(c, transport.InvalidParam, "参数错误")
		return
	}
	s.do(c, &messages.SetPolicy{SimBaseMessage: base(c), X: x, Y: y, Policy: p})
}

func (s *Sim) startWave(c *gin.Context) {
	s.do(c, &messages.StartWave{SimBaseMessage: base(c)})
}

func (s *Sim) stopWave(c *gin.Context) {
	s.do(c, &messages.StopWave{SimBaseMessage: base(c)})
}

func (s *Sim) claimReward(c *gin.Context) {
	s.do(c, &messages.ClaimReward{SimBaseMessage: base(c)})
}

func (s *Sim) selectTile(c *gin.Context) {
	var req tileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, transport.InvalidParam, "参数错误")
		return
	}
	s.do(c, &messages.SelectTile{SimBaseMessage: base(c), X: req.X, Y: req.Y})
}

func (s *Sim) deselect(c *gin.Context) {
	s.do(c, &messages.Deselect{SimBaseMessage: base(c)})
}

func (s *Sim) hijack(c *gin.Context) {
	s.do(c, &messages.HijackTile{SimBaseMessage: base(c)})
}

func (s *Sim) pledge(c *gin.Context) {
	var req pledgeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, transport.InvalidParam, "参数错误")
		return
	}
	s.do(c, &messages.Pledge{SimBaseMessage: base(c), Resource: req.Resource, Amount: req.Amount})
}

func (s *Sim) acceptOrder(c *gin.Context) {
	id, ok := orderParam(c)
	if !ok {
		return
	}
	s.do(c, &messages.AcceptOrder{SimBaseMessage: base(c), OrderID: id})
}

func (s *Sim) fulfillOrder(c *gin.Context) {
	id, ok := orderParam(c)
	if !ok {
		return
	}
	s.do(c, &messages.FulfillOrder{SimBaseMessage: base(c), OrderID: id})
}

// do 把请求交给 runtime 并按统一响应体回写。
func (s *Sim) do(c *gin.Context, msg messages.SimMessage) {
	ctx := tracex.WithSpanID(c.Request.Context(), "sim")
	transport.SetMap(ctx, msg.MapID())
	reply, err := s.rt.Handle(ctx, msg)
	if err != nil {
		logx.ReportSysErrorWithLoggerContext(ctx, s.log, logx.NewSysLog("sim.http", err))
		httpx.Fail(c, simactor.CodeFromError(err), "服务繁忙")
		return
	}
	transport.SetTick(ctx, reply.Tick)
	code := simactor.CodeFromReply(reply)
	if code != transport.OK {
		httpx.Fail(c, code, reply.Message)
		return
	}
	httpx.OK(c, reply.Payload)
}

func coordParams(c *gin.Context) (int, int, bool) {
	x, errX := strconv.Atoi(c.Param("x"))
	y, errY := strconv.Atoi(c.Param("y"))
	if errX != nil || errY != nil {
		httpx.Fail(c, transport.InvalidParam, "坐标错误")
		return 0, 0, false
	}
	return x, y, true
}

func orderParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httpx.Fail(c, transport.InvalidParam, "订单号错误")
		return 0, false
	}
	return id, true
}
