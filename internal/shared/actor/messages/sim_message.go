package messages

import (
	"time"

	"Tycoon/internal/economy/entity"
)

// SimMessage 路由到某张地图的模拟 actor；MapID 为空的驱动消息广播给所有地图。
type SimMessage interface {
	MapID() string
	User() string
}

type SimBaseMessage struct {
	Map    string
	UserID string
}

func (m SimBaseMessage) MapID() string {
	return m.Map
}

func (m SimBaseMessage) User() string {
	return m.UserID
}

// ---- 驱动 ----

type SecondTick struct {
	SimBaseMessage
	Now time.Time
}

type MinuteTick struct {
	SimBaseMessage
	Now time.Time
}

// WaveStep 推进波次（怪物移动、开火），频率比秒 tick 高。
type WaveStep struct {
	SimBaseMessage
	Dt time.Duration
}

// ---- 建筑 ----

type PlaceBuilding struct {
	SimBaseMessage
	Type string
	X, Y int
}

type Demolish struct {
	SimBaseMessage
	X, Y int
}

type SetPolicy struct {
	SimBaseMessage
	X, Y   int
	Policy entity.Policy
}

// ---- 防守 ----

type StartWave struct{ SimBaseMessage }

type StopWave struct{ SimBaseMessage }

type ClaimReward struct{ SimBaseMessage }

type SelectTile struct {
	SimBaseMessage
	X, Y int
	Now  time.Time
}

type Deselect struct{ SimBaseMessage }

// HijackTile 挂起直到下一次选格，回包里带选中的坐标。
type HijackTile struct{ SimBaseMessage }

// ---- 经济 ----

type Pledge struct {
	SimBaseMessage
	Resource string
	Amount   float64
}

type AcceptOrder struct {
	SimBaseMessage
	OrderID int64
}

type FulfillOrder struct {
	SimBaseMessage
	OrderID int64
}

type StateQuery struct{ SimBaseMessage }
