package crowdfunding

import (
	"math"
	"math/rand/v2"
	"strconv"

	"Tycoon/internal/economy/entity"
	"Tycoon/internal/shared/gameconfig/resource"
)

const (
	newsMinModifier = 0.5
	newsSpread      = 1.5
	newsStep        = 0.05
)

// RerollNews 为 global/map/player 三个范围各生成一条新闻，返回的新表整体替换旧表。
// produced 判断玩家当前是否在产出某资源。
func RerollNews(list []resource.Resource, id int64, mapID, userID string, produced func(string) bool) map[string]entity.NewsEntry {
	news := make(map[string]entity.NewsEntry, 3)
	idStr := strconv.FormatInt(id, 10)

	assign(news, entity.ScopeGlobal, NewRand("global-news"+idStr), filter(list, func(r resource.Resource) bool {
		return r.TradeableEverywhere()
	}))
	assign(news, entity.ScopeMap, NewRand("map-news"+idStr+mapID), filter(list, func(r resource.Resource) bool {
		return r.TradeableOn(mapID)
	}))
	assign(news, entity.ScopePlayer, NewRand("player-news"+idStr+mapID+userID), filter(list, func(r resource.Resource) bool {
		return r.PriceEligible && produced != nil && produced(r.ID)
	}))
	return news
}

// assign 洗牌后只给第一个还没有新闻的资源写一条。
func assign(news map[string]entity.NewsEntry, scope entity.NewsScope, rng *rand.Rand, pool []resource.Resource) {
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	for _, r := range pool {
		if _, ok := news[r.ID]; ok {
			continue
		}
		news[r.ID] = entity.NewsEntry{
			Resource: r.ID,
			Scope:    scope,
			Filter:   entity.FilterOutput,
			Modifier: newsModifier(rng),
		}
		return
	}
}

func newsModifier(rng *rand.Rand) float64 {
	v := newsMinModifier + rng.Float64()*newsSpread
	return math.Round(v/newsStep) * newsStep
}

func filter(list []resource.Resource, keep func(resource.Resource) bool) []resource.Resource {
	out := make([]resource.Resource, 0, len(list))
	for _, r := range list {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
