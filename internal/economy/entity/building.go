package entity

import (
	"maps"

	"Tycoon/internal/shared/grid"
)

type BuildStatus uint8

const (
	StatusConstructing BuildStatus = iota
	StatusConstructed
)

// Building 是地图上某一格的建筑实例，只归 World 的建筑表所有。
type Building struct {
	Type         string             `json:"type" bson:"type"`
	Coord        grid.Coord         `json:"coord" bson:"coord"`
	Level        int                `json:"level" bson:"level"`
	Status       BuildStatus        `json:"status" bson:"status"`
	Progress     int                `json:"progress" bson:"progress"`   // 已施工的 tick 数
	Committed    bool               `json:"committed" bson:"committed"` // 造价已扣除
	InputBuffer  map[string]float64 `json:"input_buffer,omitempty" bson:"input_buffer,omitempty"`
	OutputBuffer map[string]float64 `json:"output_buffer,omitempty" bson:"output_buffer,omitempty"`
	Policy       Policy             `json:"policy" bson:"policy"`
	Powered      bool               `json:"powered" bson:"powered"` // 上一个 tick 是否供上电
	Growth       int                `json:"growth,omitempty" bson:"growth,omitempty"`
}

func NewBuilding(typ string, c grid.Coord) *Building {
	return &Building{
		Type:         typ,
		Coord:        c,
		Level:        1,
		Status:       StatusConstructing,
		InputBuffer:  make(map[string]float64),
		OutputBuffer: make(map[string]float64),
		Powered:      true,
	}
}

func (b *Building) Key() string {
	return b.Coord.String()
}

func (b *Building) Constructed() bool {
	return b.Status == StatusConstructed
}

// Active 表示本 tick 参与结算：已建成且没有关停。
func (b *Building) Active() bool {
	return b.Constructed() && !b.Policy.TurnOff
}

func (b *Building) clone() *Building {
	cp := *b
	cp.InputBuffer = maps.Clone(b.InputBuffer)
	cp.OutputBuffer = maps.Clone(b.OutputBuffer)
	if cp.InputBuffer == nil {
		cp.InputBuffer = make(map[string]float64)
	}
	if cp.OutputBuffer == nil {
		cp.OutputBuffer = make(map[string]float64)
	}
	return &cp
}
