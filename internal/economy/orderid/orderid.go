// Package orderid 生成贸易订单号：41 位毫秒时间 + 10 位节点 + 12 位序号。
// 时间取 tick 的模拟时刻而不是墙钟，离线补算出来的订单号和 CreatedAt 对得上。
package orderid

import (
	"fmt"
	"sync"
	"time"
)

// 2026-01-01 00:00:00 UTC
var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

const (
	nodeBits = 10
	seqBits  = 12

	MaxNode int64 = -1 ^ (-1 << nodeBits)
	maxSeq  int64 = -1 ^ (-1 << seqBits)

	nodeShift = seqBits
	timeShift = nodeBits + seqBits
)

type Generator struct {
	mu     sync.Mutex
	node   int64
	lastMS int64
	seq    int64
}

func New(node int64) (*Generator, error) {
	if node < 0 || node > MaxNode {
		return nil, fmt.Errorf("orderid: node %d out of range [0,%d]", node, MaxNode)
	}
	return &Generator{node: node}, nil
}

// NextID 按 now 出号，严格递增。now 回退（重启后补算、多张地图交错）时沿用上一个毫秒；
// 同一毫秒序号用完时借下一毫秒，不等墙钟。
func (g *Generator) NextID(now time.Time) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := max(now.Sub(epoch).Milliseconds(), 0)
	if ms < g.lastMS {
		ms = g.lastMS
	}
	if ms == g.lastMS {
		g.seq = (g.seq + 1) & maxSeq
		if g.seq == 0 {
			ms++
		}
	} else {
		g.seq = 0
	}
	g.lastMS = ms
	return ms<<timeShift | g.node<<nodeShift | g.seq
}

// Parts 拆出订单号里的时刻、节点和序号，排查订单来源时用。
func Parts(id int64) (at time.Time, node int64, seq int64) {
	at = epoch.Add(time.Duration(id>>timeShift) * time.Millisecond)
	node = (id >> nodeShift) & MaxNode
	seq = id & maxSeq
	return at, node, seq
}
