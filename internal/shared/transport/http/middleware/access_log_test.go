package middleware

import (
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"Tycoon/internal/shared/transport"
	"Tycoon/modules/kit/logx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAccessLog_记录路由地图和回包tick(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	e := gin.New()
	e.Use(AccessLog(logx.NewZapLogger(zap.New(core))))
	e.GET("/maps/:map/state", func(c *gin.Context) {
		transport.SetTick(c.Request.Context(), 42)
		c.JSON(nethttp.StatusOK, gin.H{"code": transport.Conflict})
	})

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, "/maps/m7/state", nil))

	if logs.Len() != 1 {
		t.Fatalf("期望 1 条日志 got=%d", logs.Len())
	}
	entry := logs.All()[0]
	fields := entry.ContextMap()
	if fields["map_id"] != "m7" || fields["tick"] != uint64(42) {
		t.Fatalf("fields=%v", fields)
	}
	if fields["action"] != "GET /maps/:map/state" || fields["biz_code"] != int64(transport.Conflict) {
		t.Fatalf("fields=%v", fields)
	}
	if entry.Level != zapcore.WarnLevel {
		t.Fatalf("409 应记 WARN got=%v", entry.Level)
	}
}

func TestAccessLog_无地图路由不带map_id(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	e := gin.New()
	e.Use(AccessLog(logx.NewZapLogger(zap.New(core))))
	e.GET("/maps", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, gin.H{"code": transport.OK})
	})

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(nethttp.MethodGet, "/maps", nil))

	fields := logs.All()[0].ContextMap()
	if _, has := fields["map_id"]; has {
		t.Fatalf("fields=%v", fields)
	}
	if fields["result"] != "success" {
		t.Fatalf("fields=%v", fields)
	}
}
