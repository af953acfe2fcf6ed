package logx

import (
	"context"
	"errors"
	"testing"

	"Tycoon/modules/kit/errx"
	"Tycoon/modules/kit/tracex"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuildErrorLog_能提取语义与栈(t *testing.T) {
	e := errx.NewSys("ERR_RECIPE_MISSING", "配方缺失").
		WithData("coord", "3,4").
		WithCause(errors.New("unknown building"))

	meta := BuildErrorLog(e)
	if meta.Code != "ERR_RECIPE_MISSING" || meta.Msg == "" {
		t.Fatalf("code/msg 缺失: %+v", meta)
	}
	if meta.Data["coord"] != "3,4" {
		t.Fatalf("data 缺失: %v", meta.Data)
	}
	if len(meta.CauseChain) == 0 || meta.Origin == "" || meta.Stack == "" {
		t.Fatalf("cause/stack 缺失: %+v", meta)
	}
}

func TestReportSysError_带tick的trace_id(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLogger(zap.New(core))
	ctx := tracex.WithTick(context.Background(), "m", 7, "production")

	ReportSysErrorWithLoggerContext(ctx, l, NewSysLog("production", errx.NewSys("E", "boom")))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("期望 1 条日志, got=%d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["trace_id"] != "tick-m-7" || fields["err_type"] != "sys" {
		t.Fatalf("字段不符: %v", fields)
	}
}

func TestReportBiz_INFO级别(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ReportBizWithLoggerContext(context.Background(), NewZapLogger(zap.New(core)), NewBizLog("wave.start", "ERR_WAVE_NOT_IDLE", ""))
	if logs.Len() != 1 || logs.All()[0].Level != zapcore.InfoLevel {
		t.Fatalf("期望一条 INFO 日志")
	}
}
