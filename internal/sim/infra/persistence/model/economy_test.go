package model

import (
	"testing"

	"Tycoon/internal/economy/entity"
	"Tycoon/internal/shared/grid"
)

func TestEncodeState_压缩后可还原(t *testing.T) {
	g, err := grid.New(grid.KindSquare, 4, 3, 1)
	if err != nil {
		t.Fatalf("grid.New err=%v", err)
	}
	w := entity.NewWorld("meadow", "u1", g)
	if _, err := w.PlaceConstructed("farm", grid.Coord{X: 2, Y: 1}); err != nil {
		t.Fatalf("place err=%v", err)
	}
	w.Put("wood", 12.5)
	w.AddMoney(300)

	blob, err := EncodeState(w.State())
	if err != nil {
		t.Fatalf("encode err=%v", err)
	}
	s, err := DecodeState(blob)
	if err != nil {
		t.Fatalf("decode err=%v", err)
	}
	got, err := entity.HydrateWorld(*s)
	if err != nil {
		t.Fatalf("hydrate err=%v", err)
	}
	if got.MapID() != "meadow" || got.Money() != 300 || got.Stock("wood") != 12.5 {
		t.Fatalf("状态不一致 map=%s money=%v wood=%v", got.MapID(), got.Money(), got.Stock("wood"))
	}
	b, ok := got.Building(grid.Coord{X: 2, Y: 1})
	if !ok || !b.Constructed() || b.Type != "farm" {
		t.Fatalf("建筑丢失 b=%+v ok=%v", b, ok)
	}
}

func TestDecodeState_坏数据(t *testing.T) {
	if _, err := DecodeState([]byte("not zstd")); err == nil {
		t.Fatalf("坏数据应报错")
	}
}
