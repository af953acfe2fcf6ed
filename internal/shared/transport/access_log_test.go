package transport

import (
	"testing"

	"Tycoon/modules/kit/logx"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWriteAccessLog_带地图和tick(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := NewContext("POST /maps/:map/buildings")
	SetMap(ctx, "m1")
	SetTick(ctx, 0)
	SetBizCode(ctx, BizCode(OK))

	WriteAccessLog(ctx, logx.NewZapLogger(zap.New(core)))

	if logs.Len() != 1 {
		t.Fatalf("期望 1 条日志 got=%d", logs.Len())
	}
	fields := logs.All()[0].ContextMap()
	if fields["map_id"] != "m1" || fields["tick"] != uint64(0) || fields["result"] != "success" {
		t.Fatalf("fields=%v", fields)
	}
}

func TestWriteAccessLog_没有地图时不带字段(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := NewContext("GET /maps")
	SetMap(ctx, "")
	SetErrorReason(ctx, "服务繁忙")

	WriteAccessLog(ctx, logx.NewZapLogger(zap.New(core)))

	fields := logs.All()[0].ContextMap()
	if _, has := fields["map_id"]; has {
		t.Fatalf("不应有 map_id fields=%v", fields)
	}
	if _, has := fields["tick"]; has {
		t.Fatalf("不应有 tick fields=%v", fields)
	}
	if fields["result"] != "failure" || fields["error_reason"] != "服务繁忙" {
		t.Fatalf("fields=%v", fields)
	}
}
