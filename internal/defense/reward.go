package defense

// RewardAnimator 把奖励分摊到若干个 tick 里发放，而不是一次性到账。
type RewardAnimator struct {
	remaining float64
	ticks     int
}

// Add 追加一笔奖励，在 ticks 个 tick 内发完；与未发完的部分合并。
func (a *RewardAnimator) Add(amount float64, ticks int) {
	if amount <= 0 {
		return
	}
	if ticks < 1 {
		ticks = 1
	}
	a.remaining += amount
	if ticks > a.ticks {
		a.ticks = ticks
	}
}

// Drain 返回本 tick 应到账的金额；最后一个 tick 发放全部余额。
func (a *RewardAnimator) Drain() float64 {
	if a.remaining <= 0 || a.ticks <= 0 {
		return 0
	}
	if a.ticks == 1 {
		out := a.remaining
		a.remaining, a.ticks = 0, 0
		return out
	}
	out := a.remaining / float64(a.ticks)
	a.remaining -= out
	a.ticks--
	return out
}

func (a *RewardAnimator) Pending() float64 { return a.remaining }
