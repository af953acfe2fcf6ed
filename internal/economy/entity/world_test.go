package entity

import (
	"errors"
	"testing"
	"time"

	"Tycoon/internal/shared/grid"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	g, err := grid.New(grid.KindSquare, 6, 4, 1)
	if err != nil {
		t.Fatalf("grid.New err=%v", err)
	}
	return NewWorld("meadow", "u1", g)
}

func TestPlace_越界与占用(t *testing.T) {
	w := newTestWorld(t)
	if _, err := w.Place("farm", grid.Coord{X: 9, Y: 0}); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("越界 err=%v", err)
	}
	b, err := w.Place("farm", grid.Coord{X: 1, Y: 1})
	if err != nil {
		t.Fatalf("place err=%v", err)
	}
	if b.Constructed() || !w.Dirty() {
		t.Fatalf("新放置的建筑应处于施工中且 world 变脏")
	}
	if _, err := w.Place("mine", grid.Coord{X: 1, Y: 1}); !errors.Is(err, ErrTileOccupied) {
		t.Fatalf("占用 err=%v", err)
	}
	if _, err := w.Remove(grid.Coord{X: 2, Y: 2}); !errors.Is(err, ErrNoBuilding) {
		t.Fatalf("remove err=%v", err)
	}
}

func TestBuildings_按坐标顺序(t *testing.T) {
	w := newTestWorld(t)
	for _, c := range []grid.Coord{{X: 3, Y: 1}, {X: 0, Y: 2}, {X: 5, Y: 0}, {X: 1, Y: 1}} {
		if _, err := w.PlaceConstructed("farm", c); err != nil {
			t.Fatalf("place err=%v", err)
		}
	}
	got := w.Buildings()
	want := []string{"5,0", "1,1", "3,1", "0,2"}
	for i, b := range got {
		if b.Key() != want[i] {
			t.Fatalf("order[%d] got=%s want=%s", i, b.Key(), want[i])
		}
	}
}

func TestStock_预留不可用(t *testing.T) {
	w := newTestWorld(t)
	w.Put("wood", 10)
	if err := w.Reserve("wood", 6); err != nil {
		t.Fatalf("reserve err=%v", err)
	}
	if got := w.Usable("wood"); got != 4 {
		t.Fatalf("usable got=%v want=4", got)
	}
	if got := w.Take("wood", 10); got != 4 {
		t.Fatalf("take got=%v want=4", got)
	}
	if err := w.Reserve("wood", 1); !errors.Is(err, ErrShortStock) {
		t.Fatalf("库存不足应拒绝 err=%v", err)
	}
	w.ConsumeReserved("wood", 6)
	if w.Stock("wood") != 0 || w.Reserved("wood") != 0 {
		t.Fatalf("stock=%v reserved=%v", w.Stock("wood"), w.Reserved("wood"))
	}
}

func TestSetPolicy_拒绝未知枚举(t *testing.T) {
	w := newTestWorld(t)
	c := grid.Coord{X: 0, Y: 0}
	if _, err := w.PlaceConstructed("farm", c); err != nil {
		t.Fatalf("place err=%v", err)
	}
	if err := w.SetPolicy(c, Policy{InputOverrideFallback: InputFallback(7)}); !errors.Is(err, ErrBadPolicy) {
		t.Fatalf("err=%v", err)
	}
	if err := w.SetPolicy(c, Policy{InputOverrideFallback: InputFallbackSkip, InputBuffer: InputBufferFixed}); err != nil {
		t.Fatalf("err=%v", err)
	}
	var f InputFallback
	if err := f.UnmarshalText([]byte("sometimes")); err == nil {
		t.Fatalf("未知字符串应报错")
	}
}

func TestSwapCycle_next总是全新(t *testing.T) {
	w := newTestWorld(t)
	next := w.BeginCycle()
	next.Produced["wood"] = 3
	w.SwapCycle()
	if w.Tick() != 1 || w.Current().Produced["wood"] != 3 {
		t.Fatalf("tick=%d current=%+v", w.Tick(), w.Current().Produced)
	}
	if len(w.Next().Produced) != 0 || w.Next().Tick != 2 {
		t.Fatalf("next 应为空白且 tick=2, got=%+v", w.Next())
	}
}

func TestHydrateWorld_状态还原(t *testing.T) {
	w := newTestWorld(t)
	b, _ := w.PlaceConstructed("sawmill", grid.Coord{X: 2, Y: 3})
	b.InputBuffer["wood"] = 4
	w.SetDeposit(grid.Coord{X: 0, Y: 0}, "iron_ore")
	w.Put("planks", 7)
	w.AddMoney(12)
	w.PutCampaign(&Campaign{ID: 5, Pledges: []Pledge{{Resource: "wood", Required: 100}}})
	w.ReplaceNews(map[string]NewsEntry{"wood": {Resource: "wood", Scope: ScopeGlobal, Filter: FilterOutput, Modifier: 1.5}})
	w.SetOfflineAt(time.Unix(100, 0))

	s, ok := w.BuildPersistSnapshot(3)
	if !ok || s.Version != 3 {
		t.Fatalf("snapshot ok=%v", ok)
	}
	// 快照是深拷贝
	b.InputBuffer["wood"] = 0

	got, err := HydrateWorld(s.State)
	if err != nil {
		t.Fatalf("hydrate err=%v", err)
	}
	hb, ok := got.Building(grid.Coord{X: 2, Y: 3})
	if !ok || hb.InputBuffer["wood"] != 4 {
		t.Fatalf("building got=%+v", hb)
	}
	if got.Stock("planks") != 7 || got.Money() != 12 {
		t.Fatalf("stock/money got=%v/%v", got.Stock("planks"), got.Money())
	}
	if r, _ := got.Deposit(grid.Coord{}); r != "iron_ore" {
		t.Fatalf("deposit got=%q", r)
	}
	if c, ok := got.Campaign(5); !ok || c.Pledges[0].Required != 100 {
		t.Fatalf("campaign got=%+v", c)
	}
	if n, ok := got.NewsFor("wood"); !ok || n.Modifier != 1.5 {
		t.Fatalf("news got=%+v", n)
	}
	if got.Dirty() {
		t.Fatalf("刚还原的 world 不应为脏")
	}
}
