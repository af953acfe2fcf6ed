package handler

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Tycoon/internal/defense"
	"Tycoon/internal/shared/actor/messages"
	"Tycoon/internal/shared/security"
	"Tycoon/internal/shared/transport"
	httpx "Tycoon/internal/shared/transport/http"
	"Tycoon/internal/shared/transport/http/middleware"
	"Tycoon/modules/kit/logx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeRequester struct {
	got   []messages.SimMessage
	reply *messages.Reply
	err   error
}

func (f *fakeRequester) Handle(ctx context.Context, req messages.SimMessage) (*messages.Reply, error) {
	f.got = append(f.got, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func newEngine(rt Requester) *gin.Engine {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	NewSim(rt, nil, logx.Nop()).RegisterRoutes(&e.RouterGroup)
	return e
}

func do(t *testing.T, e *gin.Engine, method, path, body, token string) httpx.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	var resp httpx.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body=%s err=%v", w.Body.String(), err)
	}
	return resp
}

func token(t *testing.T) string {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	tok, err := security.Award("u1")
	if err != nil {
		t.Fatalf("award err=%v", err)
	}
	return tok
}

func TestState_无需登录(t *testing.T) {
	rt := &fakeRequester{reply: &messages.Reply{OK: true, Payload: map[string]any{"tick": 3}}}
	resp := do(t, newEngine(rt), nethttp.MethodGet, "/maps/m1/state", "", "")
	if resp.Code != transport.OK {
		t.Fatalf("resp=%+v", resp)
	}
	q, ok := rt.got[0].(*messages.StateQuery)
	if !ok || q.MapID() != "m1" {
		t.Fatalf("msg=%#v", rt.got[0])
	}
}

func TestPlace_需要登录(t *testing.T) {
	rt := &fakeRequester{reply: &messages.Reply{OK: true}}
	e := newEngine(rt)
	req := httptest.NewRequest(nethttp.MethodPost, "/maps/m1/buildings", strings.NewReader(`{"type":"wall","x":1,"y":2}`))
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	if w.Code != nethttp.StatusUnauthorized || len(rt.got) != 0 {
		t.Fatalf("status=%d got=%d", w.Code, len(rt.got))
	}

	resp := do(t, e, nethttp.MethodPost, "/maps/m1/buildings", `{"type":"wall","x":1,"y":2}`, token(t))
	if resp.Code != transport.OK {
		t.Fatalf("resp=%+v", resp)
	}
	msg := rt.got[0].(*messages.PlaceBuilding)
	if msg.Type != "wall" || msg.X != 1 || msg.Y != 2 || msg.User() != "u1" {
		t.Fatalf("msg=%+v", msg)
	}
}

func TestPlace_参数错误(t *testing.T) {
	rt := &fakeRequester{reply: &messages.Reply{OK: true}}
	resp := do(t, newEngine(rt), nethttp.MethodPost, "/maps/m1/buildings", `{"x":1}`, token(t))
	if resp.Code != transport.InvalidParam || len(rt.got) != 0 {
		t.Fatalf("resp=%+v got=%d", resp, len(rt.got))
	}
}

func TestDemolish_坐标解析(t *testing.T) {
	rt := &fakeRequester{reply: &messages.Reply{OK: true}}
	e := newEngine(rt)
	tok := token(t)
	if resp := do(t, e, nethttp.MethodDelete, "/maps/m1/buildings/a/2", "", tok); resp.Code != transport.InvalidParam {
		t.Fatalf("resp=%+v", resp)
	}
	if resp := do(t, e, nethttp.MethodDelete, "/maps/m1/buildings/3/2", "", tok); resp.Code != transport.OK {
		t.Fatalf("resp=%+v", resp)
	}
	msg := rt.got[0].(*messages.Demolish)
	if msg.X != 3 || msg.Y != 2 {
		t.Fatalf("msg=%+v", msg)
	}
}

func TestStartWave_业务拒绝映射为冲突(t *testing.T) {
	rt := &fakeRequester{reply: &messages.Reply{
		OK:      false,
		Code:    string(defense.CodeWaveNotIdle),
		Biz:     true,
		Message: "波次进行中",
	}}
	resp := do(t, newEngine(rt), nethttp.MethodPost, "/maps/m1/wave/start", "", token(t))
	if resp.Code != transport.Conflict || resp.Msg != "波次进行中" {
		t.Fatalf("resp=%+v", resp)
	}
}

func TestFulfillOrder_runtime失败(t *testing.T) {
	rt := &fakeRequester{err: context.DeadlineExceeded}
	resp := do(t, newEngine(rt), nethttp.MethodPost, "/maps/m1/orders/7/fulfill", "", token(t))
	if resp.Code != transport.SystemError {
		t.Fatalf("resp=%+v", resp)
	}
	if resp := do(t, newEngine(rt), nethttp.MethodPost, "/maps/m1/orders/x/fulfill", "", token(t)); resp.Code != transport.InvalidParam {
		t.Fatalf("resp=%+v", resp)
	}
}

func TestDo_访问日志带地图和tick(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	log := logx.NewZapLogger(zap.New(core))
	e := gin.New()
	e.Use(middleware.AccessLog(log))
	rt := &fakeRequester{reply: &messages.Reply{OK: true, Tick: 9, Payload: map[string]any{"tick": 9}}}
	NewSim(rt, nil, logx.Nop()).RegisterRoutes(&e.RouterGroup)

	if resp := do(t, e, nethttp.MethodGet, "/maps/m3/state", "", ""); resp.Code != transport.OK {
		t.Fatalf("resp=%+v", resp)
	}
	var access map[string]any
	for _, entry := range logs.All() {
		if f := entry.ContextMap(); f["log_type"] == "access" {
			access = f
		}
	}
	if access["map_id"] != "m3" || access["tick"] != uint64(9) {
		t.Fatalf("access=%v", access)
	}
}
