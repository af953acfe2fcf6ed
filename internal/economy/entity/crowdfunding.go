package entity

import "strconv"

// Pledge 是众筹里某个资源的认捐进度。
type Pledge struct {
	Resource string  `json:"resource" bson:"resource"`
	Required float64 `json:"required" bson:"required"`
	Actual   float64 `json:"actual" bson:"actual"`
	Paid     bool    `json:"paid" bson:"paid"`
}

// Campaign 的 id 是 floor(serverTime / dayLength)。
type Campaign struct {
	ID      int64    `json:"id" bson:"id"`
	Pledges []Pledge `json:"pledges" bson:"pledges"`
	Value   float64  `json:"value" bson:"value"`
}

func CampaignKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (c *Campaign) clone() *Campaign {
	cp := *c
	cp.Pledges = append([]Pledge(nil), c.Pledges...)
	return &cp
}

type NewsScope string

const (
	ScopeGlobal NewsScope = "global"
	ScopeMap    NewsScope = "map"
	ScopePlayer NewsScope = "player"
)

type NewsFilter string

const (
	FilterInput  NewsFilter = "input"
	FilterOutput NewsFilter = "output"
	FilterBoth   NewsFilter = "both"
)

// NewsEntry 是一条市场新闻：对某个资源的产出估值乘一个系数。
type NewsEntry struct {
	Resource string     `json:"resource" bson:"resource"`
	Scope    NewsScope  `json:"scope" bson:"scope"`
	Filter   NewsFilter `json:"filter" bson:"filter"`
	Modifier float64    `json:"modifier" bson:"modifier"`
}
