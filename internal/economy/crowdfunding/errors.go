package crowdfunding

import "Tycoon/modules/kit/errx"

const (
	CodeSeedUnavailable errx.Code = "ERR_SEED_UNAVAILABLE"
	CodeNoCampaign      errx.Code = "ERR_NO_CAMPAIGN"
	CodeNotPledged      errx.Code = "ERR_RESOURCE_NOT_IN_CAMPAIGN"
)

var (
	ErrSeedUnavailable = errx.NewSys(CodeSeedUnavailable, "众筹种子源不可用")
	ErrNoCampaign      = errx.NewBiz(CodeNoCampaign, "当前没有众筹")
	ErrNotPledged      = errx.NewBiz(CodeNotPledged, "该资源不在本期众筹内")
)
