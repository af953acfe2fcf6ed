package errs

import "fmt"

type Kind string

const (
	KindUnknown    Kind = "unknown"
	KindInfra      Kind = "infra"
	KindDependency Kind = "dependency"
	KindBusiness   Kind = "business"
)

// Error 是基础设施层（仓储、驱动）的包装错误。
type Error struct {
	Op    string         // 发生位置：repo.mongo.Save / repo.mysql.Load
	Kind  Kind           // 粗分类
	Meta  map[string]any // 关键参数（map_id、version...）
	Cause error          // 根因
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Data 暴露 Meta，供 logx.BuildErrorLog 打印。
func (e *Error) Data() map[string]any { return e.Meta }

func Wrap(op string, kind Kind, cause error, meta map[string]any) error {
	if cause == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Cause: cause, Meta: meta}
}
