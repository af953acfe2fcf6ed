package crowdfunding

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
)

// SeedSource 是权威种子来源，核心自己不生成众筹种子。
type SeedSource interface {
	Seed(ctx context.Context, id int64, intervalMs int64) (uint64, error)
}

type SeedFunc func(ctx context.Context, id int64, intervalMs int64) (uint64, error)

func (f SeedFunc) Seed(ctx context.Context, id int64, intervalMs int64) (uint64, error) {
	return f(ctx, id, intervalMs)
}

// HMACSeed 用服务端密钥对 (id, interval) 做 HMAC-SHA256，取前 8 字节作为种子。
type HMACSeed struct {
	secret []byte
}

func NewHMACSeed(secret string) (*HMACSeed, error) {
	if secret == "" {
		return nil, errors.New("crowdfunding seed secret is empty")
	}
	return &HMACSeed{secret: []byte(secret)}, nil
}

func (s *HMACSeed) Seed(ctx context.Context, id int64, intervalMs int64) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var msg [16]byte
	binary.BigEndian.PutUint64(msg[:8], uint64(id))
	binary.BigEndian.PutUint64(msg[8:], uint64(intervalMs))
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(msg[:])
	return binary.BigEndian.Uint64(mac.Sum(nil)[:8]), nil
}
