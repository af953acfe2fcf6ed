package mongo

import (
	"context"
	"errors"
	"time"

	"Tycoon/internal/shared/errs"
	"Tycoon/internal/shared/serverconfig"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

const (
	defaultConnectTimeout = 3 * time.Second

	opEnsure = "mongo.EnsureCollection"
)

var ErrEmptyURI = errors.New("mongodb uri is empty")

func connectTimeout(cfg serverconfig.MongoDBConfig) time.Duration {
	if cfg.ConnectTimeoutS <= 0 {
		return defaultConnectTimeout
	}
	return time.Duration(cfg.ConnectTimeoutS) * time.Second
}

// Open 建立连接并 ping 一次；ping 不通时断开并返回错误。
func Open(cfg serverconfig.MongoDBConfig, l *zap.Logger) (*mongo.Client, error) {
	if cfg.URI == "" {
		return nil, ErrEmptyURI
	}
	if l == nil {
		l = zap.NewNop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout(cfg))
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	l.Info("open mongodb success",
		zap.String("uri", cfg.SafeURI()),
		zap.String("database", cfg.Database),
	)
	return client, nil
}

// EnsureCollection 确保集合存在并建好 indexes。集合已存在时不重建；
// 同名同键的索引重复创建是空操作。
func EnsureCollection(ctx context.Context, db *mongo.Database, name string, indexes ...mongo.IndexModel) (*mongo.Collection, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return nil, errs.Wrap(opEnsure, errs.KindInfra, err, map[string]any{"collection": name})
	}
	if len(names) == 0 {
		if err := db.CreateCollection(ctx, name); err != nil && !isNamespaceExists(err) {
			return nil, errs.Wrap(opEnsure, errs.KindInfra, err, map[string]any{"collection": name})
		}
	}
	coll := db.Collection(name)
	if len(indexes) > 0 {
		if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
			return nil, errs.Wrap(opEnsure, errs.KindInfra, err, map[string]any{"collection": name, "indexes": len(indexes)})
		}
	}
	return coll, nil
}

// 48 = NamespaceExists，多个进程同时启动时会撞上。
func isNamespaceExists(err error) bool {
	var ce mongo.CommandError
	return errors.As(err, &ce) && ce.Code == 48
}
