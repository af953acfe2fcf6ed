package mysql

import (
	"context"
	"errors"
	"time"

	"Tycoon/internal/economy/entity"
	"Tycoon/internal/shared/errs"
	"Tycoon/internal/sim/app/port"
	"Tycoon/internal/sim/infra/persistence/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EconomyRepo struct {
	db *gorm.DB
}

func NewEconomyRepo(db *gorm.DB) *EconomyRepo {
	return &EconomyRepo{db: db}
}

// Models 是本仓储落库用到的表，交给 db.Open 建表。
func Models() []any {
	return []any{&model.EconomyRow{}}
}

const OpLoadState = "repo.mysql.LoadState"

func (r *EconomyRepo) LoadState(ctx context.Context, mapID string) (*entity.WorldState, error) {
	var m model.EconomyRow
	err := r.db.WithContext(ctx).Where("map_id = ?", mapID).First(&m).Error

	switch {
	case err == nil:
		s, err := model.DecodeState(m.Blob)
		if err != nil {
			return nil, errs.Wrap(OpLoadState, errs.KindInfra, err, map[string]any{"map_id": mapID})
		}
		return s, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, port.ErrMapNotFound.WithData("map_id", mapID)
	default:
		return nil, errs.Wrap(OpLoadState, errs.KindInfra, err, map[string]any{"map_id": mapID})
	}
}

const OpSave = "repo.mysql.Save"

// Save upsert 一行；只有传入 version 更大时才覆盖。
func (r *EconomyRepo) Save(ctx context.Context, s *entity.WorldPersistSnapshot) error {
	if s == nil {
		return nil
	}
	row, err := model.SnapshotToRow(s, time.Now())
	if err != nil {
		return errs.Wrap(OpSave, errs.KindInfra, err, map[string]any{"map_id": s.State.MapID})
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "map_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"user_id":    gorm.Expr("IF(VALUES(version) > version, VALUES(user_id), user_id)"),
			"tick":       gorm.Expr("IF(VALUES(version) > version, VALUES(tick), tick)"),
			"blob":       gorm.Expr("IF(VALUES(version) > version, VALUES(`blob`), `blob`)"),
			"updated_at": gorm.Expr("IF(VALUES(version) > version, VALUES(updated_at), updated_at)"),
			"version":    gorm.Expr("GREATEST(VALUES(version), version)"),
		}),
	}).Create(row).Error
	if err != nil {
		return errs.Wrap(OpSave, errs.KindInfra, err, map[string]any{"map_id": row.MapID, "version": row.Version})
	}
	return nil
}
