package http

import (
	nethttp "net/http"

	"Tycoon/internal/shared/transport"

	"github.com/gin-gonic/gin"
)

// Response 是 HTTP 接口统一的响应体，业务码放在 code 里，HTTP 状态码恒为 200。
type Response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg,omitempty"`
	Data any    `json:"data,omitempty"`
}

func OK(c *gin.Context, data any) {
	c.JSON(nethttp.StatusOK, Response{Code: transport.OK, Data: data})
}

func Fail(c *gin.Context, code int, msg string) {
	transport.SetErrorReason(c.Request.Context(), msg)
	c.JSON(nethttp.StatusOK, Response{Code: code, Msg: msg})
}
