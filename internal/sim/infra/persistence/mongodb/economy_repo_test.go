package mongodb

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestIndexes_覆盖条件写的键(t *testing.T) {
	idx := Indexes()
	if len(idx) != 2 {
		t.Fatalf("indexes=%d", len(idx))
	}
	keys, ok := idx[0].Keys.(bson.D)
	if !ok || len(keys) != 2 || keys[0].Key != "_id" || keys[1].Key != "version" {
		t.Fatalf("keys=%v", idx[0].Keys)
	}
}

func TestNilRepository_返回错误不panic(t *testing.T) {
	var r *EconomyRepository
	if _, err := r.LoadState(context.Background(), "m1"); err == nil {
		t.Fatalf("nil 仓储应返回错误")
	}
}
