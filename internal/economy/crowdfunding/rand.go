package crowdfunding

import (
	"hash/fnv"
	"math/rand/v2"
)

// NewRand 用字符串种子构造确定性随机源：同一个字符串在任何进程里得到同一序列。
func NewRand(seed string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return FromSeed(h.Sum64())
}

func FromSeed(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
