package pathfinding

import "Tycoon/modules/kit/errx"

const (
	CodePathTimeout       errx.Code = "ERR_PATH_TIMEOUT"
	CodeWorkerUnavailable errx.Code = "ERR_PATH_WORKER_UNAVAILABLE"
)

var (
	ErrPathTimeout       = errx.NewSys(CodePathTimeout, "寻路请求超时")
	ErrWorkerUnavailable = errx.NewSys(CodeWorkerUnavailable, "寻路 worker 不可用")
)
