package memory

import (
	"context"
	"sync"

	"Tycoon/internal/economy/entity"
	"Tycoon/internal/sim/app/port"
	"Tycoon/internal/sim/infra/persistence/model"
)

// EconomyRepository 把状态存在进程内，按 zstd(JSON) 保存一份独立副本。
type EconomyRepository struct {
	mu       sync.RWMutex
	blobs    map[string][]byte
	versions map[string]uint64
}

func NewEconomyRepository() *EconomyRepository {
	return &EconomyRepository{
		blobs:    make(map[string][]byte),
		versions: make(map[string]uint64),
	}
}

func (r *EconomyRepository) LoadState(ctx context.Context, mapID string) (*entity.WorldState, error) {
	_ = ctx
	r.mu.RLock()
	blob, ok := r.blobs[mapID]
	r.mu.RUnlock()
	if !ok {
		return nil, port.ErrMapNotFound.WithData("map_id", mapID)
	}
	return model.DecodeState(blob)
}

// Save 丢弃 version 不高于已存版本的快照。
func (r *EconomyRepository) Save(ctx context.Context, s *entity.WorldPersistSnapshot) error {
	_ = ctx
	if s == nil {
		return nil
	}
	blob, err := model.EncodeState(s.State)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.versions[s.State.MapID]; ok && v >= s.Version {
		return nil
	}
	r.blobs[s.State.MapID] = blob
	r.versions[s.State.MapID] = s.Version
	return nil
}

func (r *EconomyRepository) Version(mapID string) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.versions[mapID]
}
