package orderid

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNextID_严格递增(t *testing.T) {
	g, err := New(3)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	prev := g.NextID(t0)
	for i := 0; i < 5000; i++ {
		// 固定时刻下跑满一毫秒的序号，应借下一毫秒而不是卡住
		id := g.NextID(t0)
		if id <= prev {
			t.Fatalf("id %d not greater than %d", id, prev)
		}
		prev = id
	}
}

func TestNextID_时刻回退不回退号(t *testing.T) {
	g, _ := New(1)
	a := g.NextID(t0.Add(time.Minute))
	b := g.NextID(t0)
	if b <= a {
		t.Fatalf("a=%d b=%d", a, b)
	}
}

func TestParts_还原时刻和节点(t *testing.T) {
	g, _ := New(7)
	g.NextID(t0)
	id := g.NextID(t0)
	at, node, seq := Parts(id)
	if !at.Equal(t0) || node != 7 || seq != 1 {
		t.Fatalf("at=%v node=%d seq=%d", at, node, seq)
	}
}

func TestNew_节点号越界(t *testing.T) {
	if _, err := New(-1); err == nil {
		t.Fatalf("negative node should fail")
	}
	if _, err := New(MaxNode + 1); err == nil {
		t.Fatalf("node %d should fail", MaxNode+1)
	}
}
