package resource

import "testing"

func TestMustDefault_内嵌表可解析(t *testing.T) {
	c := MustDefault()
	wood, ok := c.Get("wood")
	if !ok || wood.Tier != 1 || !wood.PriceEligible {
		t.Fatalf("wood got=%+v ok=%v", wood, ok)
	}
	crops, _ := c.Get("crops")
	if !crops.TradeableOn("meadow") || crops.TradeableOn("delta") || crops.TradeableEverywhere() {
		t.Fatalf("crops 地图限制不符: %+v", crops)
	}
	energy, _ := c.Get("energy")
	if energy.TradeableOn("meadow") {
		t.Fatalf("energy 不可交易")
	}
}

func TestNew_重复id报错(t *testing.T) {
	if _, err := New([]Resource{{ID: "a"}, {ID: "a"}}); err == nil {
		t.Fatalf("期望重复 id 报错")
	}
}
