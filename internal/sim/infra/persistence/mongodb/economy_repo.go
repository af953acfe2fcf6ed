package mongodb

import (
	"context"
	"errors"
	"time"

	"Tycoon/internal/economy/entity"
	"Tycoon/internal/shared/errs"
	"Tycoon/internal/sim/app/port"
	"Tycoon/internal/sim/infra/persistence/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CollectionName 是经济快照所在的集合，一张地图一个文档，_id 为 map_id。
const CollectionName = "economy"

const (
	OpLoadState = "repo.mongo.LoadState"
	OpSave      = "repo.mongo.Save"
)

type EconomyRepository struct {
	coll *mongo.Collection
}

func NewEconomyRepository(db *mongo.Database) *EconomyRepository {
	return &EconomyRepository{
		coll: db.Collection(CollectionName),
	}
}

// Indexes 给 Save 的条件覆盖（_id + version）和按用户列地图用。
func Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "_id", Value: 1}, {Key: "version", Value: -1}},
			Options: options.Index().SetName("map_version"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("user"),
		},
	}
}

func (r *EconomyRepository) LoadState(ctx context.Context, mapID string) (*entity.WorldState, error) {
	if r == nil || r.coll == nil {
		return nil, errors.New("mongodb economy collection is nil")
	}

	var doc model.EconomyDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": mapID}).Decode(&doc)
	switch {
	case err == nil:
		return model.DocToState(doc), nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, port.ErrMapNotFound.WithData("map_id", mapID)
	default:
		return nil, errs.Wrap(OpLoadState, errs.KindInfra, err, map[string]any{"map_id": mapID})
	}
}

// Save 以 version 做条件覆盖：库里已有更新的版本时不写。
func (r *EconomyRepository) Save(ctx context.Context, s *entity.WorldPersistSnapshot) error {
	if s == nil {
		return nil
	}
	if r == nil || r.coll == nil {
		return errors.New("mongodb economy collection is nil")
	}

	doc := model.SnapshotToDoc(s, time.Now())
	_, err := r.coll.ReplaceOne(
		ctx,
		bson.M{"_id": doc.MapID, "version": bson.M{"$lt": doc.Version}},
		doc,
		options.Replace().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		// 条件不满足时 upsert 撞上已存在的 _id，说明库里版本更新
		return nil
	}
	if err != nil {
		return errs.Wrap(OpSave, errs.KindInfra, err, map[string]any{"map_id": doc.MapID, "version": doc.Version})
	}
	return nil
}
