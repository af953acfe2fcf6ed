package port

import (
	"context"

	"Tycoon/internal/economy/entity"
	"Tycoon/modules/kit/errx"
)

const CodeMapNotFound errx.Code = "ERR_MAP_NOT_FOUND"

// ErrMapNotFound 表示仓储里还没有这张地图，调用方应新建。
var ErrMapNotFound = errx.NewBiz(CodeMapNotFound, "地图不存在")

type EconomyRepository interface {
	LoadState(ctx context.Context, mapID string) (*entity.WorldState, error)
	Save(ctx context.Context, s *entity.WorldPersistSnapshot) error
}
