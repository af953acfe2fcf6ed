package service

import "Tycoon/modules/kit/errx"

const (
	CodeRecipeMissing   errx.Code = "ERR_RECIPE_MISSING"
	CodeEntityPanic     errx.Code = "ERR_ENTITY_PANIC"
	CodeUnknownBuilding errx.Code = "ERR_UNKNOWN_BUILDING"
	CodeNotPlaceable    errx.Code = "ERR_NOT_PLACEABLE"
	CodeOrderState      errx.Code = "ERR_ORDER_STATE"
	CodePersist         errx.Code = "ERR_PERSIST"
	CodeBadAmount       errx.Code = "ERR_BAD_AMOUNT"
)

var (
	ErrRecipeMissing   = errx.NewSys(CodeRecipeMissing, "建筑配方缺失")
	ErrEntityPanic     = errx.NewSys(CodeEntityPanic, "单个建筑结算异常")
	ErrUnknownBuilding = errx.NewBiz(CodeUnknownBuilding, "未知建筑类型")
	ErrNotPlaceable    = errx.NewBiz(CodeNotPlaceable, "该建筑不能由玩家放置或拆除")
	ErrOrderState      = errx.NewBiz(CodeOrderState, "订单状态不允许该操作")
	ErrPersist         = errx.NewSys(CodePersist, "持久化失败")
	ErrBadAmount       = errx.NewBiz(CodeBadAmount, "数量必须大于 0")
)
