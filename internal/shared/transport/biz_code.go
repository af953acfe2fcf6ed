package transport

// BizCode 表示业务码的强类型封装，用于在日志上下文中减少误传风险。
type BizCode int

// 0 为成功；1~499 是调用方可修正的拒绝；>=500 是服务端故障。
const (
	OK              = 0
	InvalidParam    = 400
	Unauthorized    = 401
	NotFound        = 404
	Conflict        = 409
	TooManyRequests = 429
	SystemError     = 500
	Unavailable     = 503
	Timeout         = 504
)
