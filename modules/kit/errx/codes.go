package errx

// 跨包统一的系统类错误码；领域错误码（例如 ERR_WAVE_NOT_IDLE）由各领域包自己定义。
const (
	CodeInternal    Code = "INTERNAL_ERROR"
	CodeUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeTimeout     Code = "TIMEOUT"
	CodeRateLimited Code = "RATE_LIMITED"
	CodeBadRequest  Code = "BAD_REQUEST"
)

var (
	ErrInternal    = NewSys(CodeInternal, "内部错误")
	ErrUnavailable = NewSys(CodeUnavailable, "依赖不可用")
	ErrTimeout     = NewSys(CodeTimeout, "请求超时")
	ErrRateLimited = NewBiz(CodeRateLimited, "请求过于频繁")
	ErrBadRequest  = NewBiz(CodeBadRequest, "请求参数错误")
)
