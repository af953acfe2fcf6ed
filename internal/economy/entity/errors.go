package entity

import "Tycoon/modules/kit/errx"

const (
	CodeOutOfBounds  errx.Code = "ERR_OUT_OF_BOUNDS"
	CodeTileOccupied errx.Code = "ERR_TILE_OCCUPIED"
	CodeNoBuilding   errx.Code = "ERR_NO_BUILDING"
	CodeBadPolicy    errx.Code = "ERR_BAD_POLICY"
	CodeShortStock   errx.Code = "ERR_SHORT_STOCK"
	CodeOrderMissing errx.Code = "ERR_ORDER_MISSING"
)

var (
	ErrOutOfBounds  = errx.NewBiz(CodeOutOfBounds, "坐标不在地图内")
	ErrTileOccupied = errx.NewBiz(CodeTileOccupied, "格子已有建筑")
	ErrNoBuilding   = errx.NewBiz(CodeNoBuilding, "格子没有建筑")
	ErrBadPolicy    = errx.NewBiz(CodeBadPolicy, "策略取值非法")
	ErrShortStock   = errx.NewBiz(CodeShortStock, "可用库存不足")
	ErrOrderMissing = errx.NewBiz(CodeOrderMissing, "订单不存在")
)
