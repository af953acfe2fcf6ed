package errx

import (
	"errors"
	"testing"
)

func TestError_Is_只按code比较(t *testing.T) {
	e1 := NewBiz("ERR_WAVE_NOT_IDLE", "a").WithData("wave", 1).WithCause(errors.New("c1"))
	e2 := NewBiz("ERR_WAVE_NOT_IDLE", "b")
	if !errors.Is(e1, e2) {
		t.Fatalf("期望同 code 视为同一语义, e1=%v e2=%v", e1, e2)
	}
	if errors.Is(e1, NewBiz("ERR_OTHER", "a")) {
		t.Fatalf("不同 code 不应相等")
	}
}

func TestError_业务错误不捕获栈(t *testing.T) {
	cause := errors.New("no path")
	err := NewBiz("ERR_NO_PATH", "").WithCause(cause)
	if err.Stack() != nil {
		t.Fatalf("业务错误不应捕获栈")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause 链丢失: %v", err)
	}
	if !err.IsBiz() {
		t.Fatalf("期望 IsBiz==true")
	}
}

func TestError_系统错误只捕获一次栈(t *testing.T) {
	inner := NewSys("ERR_SEED_UNAVAILABLE", "seed").WithCause(errors.New("io"))
	if len(inner.Stack()) == 0 {
		t.Fatalf("期望系统错误捕获栈")
	}
	outer := NewSys("ERR_TICK", "tick").WithCause(inner)
	if outer.Stack() != nil {
		t.Fatalf("下层已有栈时上层不应重复捕获")
	}
	if CodeOf(outer) != "ERR_TICK" {
		t.Fatalf("CodeOf got=%q", CodeOf(outer))
	}
}

func TestError_Data_复制隔离(t *testing.T) {
	m := map[string]any{"coord": "1,2"}
	err := NewBiz("X", "").WithDataMap(m)
	m["coord"] = "9,9"
	if got := err.Data()["coord"]; got != "1,2" {
		t.Fatalf("data 被外部修改污染, got=%v", got)
	}
	if got := err.WithReason("blocked").Reason(); got != "blocked" {
		t.Fatalf("reason got=%q", got)
	}
}
