package model

import (
	"encoding/json"
	"fmt"
	"time"

	"Tycoon/internal/economy/entity"

	"github.com/klauspost/compress/zstd"
)

// EconomyDoc 是 mongodb 里一张地图的文档。
type EconomyDoc struct {
	MapID     string            `bson:"_id"`
	UserID    string            `bson:"user_id"`
	Version   uint64            `bson:"version"`
	Tick      uint64            `bson:"tick"`
	State     entity.WorldState `bson:"state"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

func SnapshotToDoc(s *entity.WorldPersistSnapshot, now time.Time) EconomyDoc {
	return EconomyDoc{
		MapID:     s.State.MapID,
		UserID:    s.State.UserID,
		Version:   s.Version,
		Tick:      s.State.Tick,
		State:     s.State,
		UpdatedAt: now,
	}
}

func DocToState(d EconomyDoc) *entity.WorldState {
	s := d.State
	s.MapID = d.MapID
	return &s
}

// EconomyRow 是 mysql 里的一行，状态整体以 zstd 压缩的 JSON 存放。
type EconomyRow struct {
	MapID     string    `gorm:"column:map_id;primaryKey;size:64"`
	UserID    string    `gorm:"column:user_id;size:64;index"`
	Version   uint64    `gorm:"column:version"`
	Tick      uint64    `gorm:"column:tick"`
	Blob      []byte    `gorm:"column:blob;type:mediumblob"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (EconomyRow) TableName() string {
	return "economy_state"
}

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

// EncodeState 把状态编码为 zstd(JSON)。
func EncodeState(s entity.WorldState) ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode economy state %s: %w", s.MapID, err)
	}
	return encoder.EncodeAll(raw, nil), nil
}

func DecodeState(blob []byte) (*entity.WorldState, error) {
	raw, err := decoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decode economy state: %w", err)
	}
	var s entity.WorldState
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode economy state: %w", err)
	}
	return &s, nil
}

func SnapshotToRow(s *entity.WorldPersistSnapshot, now time.Time) (*EconomyRow, error) {
	blob, err := EncodeState(s.State)
	if err != nil {
		return nil, err
	}
	return &EconomyRow{
		MapID:     s.State.MapID,
		UserID:    s.State.UserID,
		Version:   s.Version,
		Tick:      s.State.Tick,
		Blob:      blob,
		UpdatedAt: now,
	}, nil
}
