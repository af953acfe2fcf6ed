// Package messages 定义进出模拟 actor 的消息；都是普通 Go 结构体，只在进程内传递。
package messages

// Reply 是模拟 actor 对请求的统一回包。
type Reply struct {
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"` // errx code，成功时为空
	Biz     bool   `json:"-"`              // 是否为业务拒绝
	Message string `json:"message,omitempty"`
	Payload any    `json:"payload,omitempty"`
	Tick    uint64 `json:"tick,omitempty"` // 回包时地图所在的 tick
}
