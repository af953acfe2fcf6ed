package crowdfunding

import (
	"context"
	"time"

	"Tycoon/internal/economy/entity"
	"Tycoon/internal/shared/gameconfig/resource"
	"Tycoon/modules/kit/logx"

	"go.uber.org/zap"
)

// Feed 每个 tick 检查众筹周期：周期切换时用权威种子抽新一期众筹并重抽市场新闻。
type Feed struct {
	resources *resource.Catalog
	seeds     SeedSource
	dayLength time.Duration
	log       logx.Logger
}

func NewFeed(resources *resource.Catalog, seeds SeedSource, dayLength time.Duration, log logx.Logger) *Feed {
	if dayLength <= 0 {
		dayLength = 24 * time.Hour
	}
	if log == nil {
		log = logx.Nop()
	}
	return &Feed{resources: resources, seeds: seeds, dayLength: dayLength, log: log}
}

func (f *Feed) DayLength() time.Duration { return f.dayLength }

// CampaignID = floor(now / dayLength)。
func (f *Feed) CampaignID(now time.Time) int64 {
	return now.UnixMilli() / f.dayLength.Milliseconds()
}

// Tick 在同一个周期内重复调用是空操作（除了清理零值旧众筹）。
// 种子源失败时返回错误，本期众筹保持不变且不结算，下个 tick 重试。
func (f *Feed) Tick(ctx context.Context, w *entity.World, now time.Time) error {
	id := f.CampaignID(now)
	// 只回收已切换过去的周期；切换失败时上一期还没结算，不能删
	defer func() { f.collect(w, w.CampaignID()) }()

	if id == w.CampaignID() {
		if _, ok := w.Campaign(id); ok {
			return nil
		}
	}

	interval := f.dayLength.Milliseconds()
	if f.seeds == nil {
		return ErrSeedUnavailable.WithData("campaign_id", id)
	}
	seed, err := f.seeds.Seed(ctx, id, interval)
	if err != nil {
		return ErrSeedUnavailable.WithCause(err).WithData("campaign_id", id)
	}

	all := f.resources.All()
	pledges := Pick(FromSeed(seed^uint64(id)), Eligible(all))
	w.PutCampaign(&entity.Campaign{ID: id, Pledges: pledges})
	f.settle(w, id)

	produced := w.Current().Produced
	w.ReplaceNews(RerollNews(all, id, w.MapID(), w.UserID(), func(r string) bool {
		return produced[r] > 0
	}))
	w.SetCampaignID(id)

	picked := make([]string, 0, len(pledges))
	for _, p := range pledges {
		picked = append(picked, p.Resource)
	}
	f.log.WithContext(ctx).Info("crowdfunding rolled",
		zap.String("map_id", w.MapID()),
		zap.Int64("campaign_id", id),
		zap.Strings("resources", picked),
	)
	return nil
}

// settle 结算上一期（id-1）的收益，更早的归零等待回收。
func (f *Feed) settle(w *entity.World, id int64) {
	for _, c := range w.Campaigns() {
		switch {
		case c.ID == id-1:
			c.Value = Return(c)
			w.MarkDirty()
		case c.ID < id-1 && c.Value != 0:
			c.Value = 0
			w.MarkDirty()
		}
	}
}

// collect 删除 current 之前所有零值的众筹。current 必须是已经成功切换的周期。
func (f *Feed) collect(w *entity.World, current int64) {
	for key, c := range w.Campaigns() {
		if c.ID < current && c.Value == 0 {
			w.DeleteCampaign(key)
		}
	}
}

// Pledge 把 amount 记到本期众筹里对应资源的认捐上。
func (f *Feed) Pledge(w *entity.World, resourceID string, amount float64) error {
	c, ok := w.Campaign(w.CampaignID())
	if !ok {
		return ErrNoCampaign
	}
	for i := range c.Pledges {
		p := &c.Pledges[i]
		if p.Resource != resourceID {
			continue
		}
		p.Actual += amount
		if p.Actual >= p.Required {
			p.Paid = true
		}
		w.MarkDirty()
		return nil
	}
	return ErrNotPledged.WithData("resource", resourceID)
}

// InCampaign 判断资源是否在本期众筹里。
func (f *Feed) InCampaign(w *entity.World, resourceID string) bool {
	c, ok := w.Campaign(w.CampaignID())
	if !ok {
		return false
	}
	for _, p := range c.Pledges {
		if p.Resource == resourceID {
			return true
		}
	}
	return false
}

// ActiveBonus 是已结算众筹带来的估值加成。
func ActiveBonus(w *entity.World) float64 {
	bonus := 0.0
	for _, c := range w.Campaigns() {
		if c.ID < w.CampaignID() {
			bonus += c.Value
		}
	}
	return bonus
}
