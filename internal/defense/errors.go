package defense

import "Tycoon/modules/kit/errx"

const (
	CodeWaveNotIdle       errx.Code = "ERR_WAVE_NOT_IDLE"
	CodeRewardUnavailable errx.Code = "ERR_REWARD_UNAVAILABLE"
	CodeNoPortal          errx.Code = "ERR_NO_PORTAL"
	CodeNoHome            errx.Code = "ERR_NO_HOME"
	CodeHijackReplaced    errx.Code = "ERR_HIJACK_REPLACED"
	CodeHijackCancelled   errx.Code = "ERR_HIJACK_CANCELLED"
	CodePreviewThrottled  errx.Code = "ERR_PREVIEW_THROTTLED"
	CodeRouteFailed       errx.Code = "ERR_ROUTE_FAILED"
)

var (
	ErrWaveNotIdle       = errx.NewBiz(CodeWaveNotIdle, "当前波次未结束")
	ErrRewardUnavailable = errx.NewBiz(CodeRewardUnavailable, "没有可领取的波次奖励")
	ErrNoPortal          = errx.NewBiz(CodeNoPortal, "地图上没有入口")
	ErrNoHome            = errx.NewBiz(CodeNoHome, "地图上没有主基地")
	ErrHijackReplaced    = errx.NewBiz(CodeHijackReplaced, "已有等待中的选格请求")
	ErrHijackCancelled   = errx.NewBiz(CodeHijackCancelled, "选格请求已取消")
	ErrPreviewThrottled  = errx.NewBiz(CodePreviewThrottled, "路径预览过于频繁")

	ErrRouteFailed = errx.NewSys(CodeRouteFailed, "寻路失败")
)
