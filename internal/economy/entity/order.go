package entity

import "time"

type OrderStatus uint8

const (
	OrderOpen OrderStatus = iota
	OrderAccepted
)

// TradeOrder 是系统生成的收购单，接单后锁定库存，到期释放。
type TradeOrder struct {
	ID        int64       `json:"id" bson:"id"`
	Resource  string      `json:"resource" bson:"resource"`
	Amount    float64     `json:"amount" bson:"amount"`
	UnitPrice float64     `json:"unit_price" bson:"unit_price"`
	Status    OrderStatus `json:"status" bson:"status"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
	ExpiresAt time.Time   `json:"expires_at" bson:"expires_at"`
}

func (o *TradeOrder) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// Modifier 是一段时间内对某个资源产出的乘数（政策效果）。
type Modifier struct {
	Resource   string    `json:"resource" bson:"resource"` // 空表示全部资源
	Multiplier float64   `json:"multiplier" bson:"multiplier"`
	From       time.Time `json:"from" bson:"from"`
	Until      time.Time `json:"until" bson:"until"`
}

func (m Modifier) ActiveAt(t time.Time) bool {
	return !t.Before(m.From) && t.Before(m.Until)
}
