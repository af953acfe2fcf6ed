package defense

import (
	"context"
	"math"
	"time"

	"Tycoon/internal/shared/grid"
	"Tycoon/modules/kit/logx"

	"go.uber.org/zap"
)

type Status uint8

const (
	StatusInit Status = iota
	StatusInProgress
	StatusSuccess
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusInit:
		return "init"
	case StatusInProgress:
		return "in_progress"
	case StatusSuccess:
		return "success"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

type WaveConfig struct {
	TotalCount   int
	SpawnDelay   time.Duration
	AutoContinue bool
	MonsterHP    float64
	HPGrowth     float64 // 每波血量增幅
	MonsterSpeed float64 // 格/秒
	RewardBase   float64
	RewardTicks  int
	BulletTicks  int
}

func (c WaveConfig) withDefaults() WaveConfig {
	if c.TotalCount <= 0 {
		c.TotalCount = 10
	}
	if c.SpawnDelay < 0 {
		c.SpawnDelay = 0
	}
	if c.MonsterHP <= 0 {
		c.MonsterHP = 10
	}
	if c.MonsterSpeed <= 0 {
		c.MonsterSpeed = 1
	}
	if c.RewardTicks <= 0 {
		c.RewardTicks = 10
	}
	if c.BulletTicks <= 0 {
		c.BulletTicks = 1
	}
	return c
}

// PathSource 提供入口列表和每个入口的缓存路径；Router 实现它。
type PathSource interface {
	Portals() []grid.Coord
	Path(portal grid.Coord) ([]grid.Coord, bool)
}

// TowerSource 返回当前能开火的防御塔。
type TowerSource func() []TowerSite

// Progress 是当前波次的计数。
type Progress struct {
	Wave    int    `json:"wave"`
	Status  Status `json:"status"`
	Total   int    `json:"total"`
	Spawned int    `json:"spawned"` // 含被跳过的槽位
	Skipped int    `json:"skipped"`
	Success int    `json:"success"`
	Fail    int    `json:"fail"`
	Portals int    `json:"portals"`
}

// StepReport 汇总一次 Step 里发生的事件。
type StepReport struct {
	Spawned  int
	Skipped  int
	Fired    int
	Killed   int
	Breached int
	Finished bool
	Status   Status
}

// Manager 是波次状态机：init -> in_progress -> success|fail，领奖后回到 init。
// 怪物和子弹池只经由 Manager 修改。
type Manager struct {
	cfg    WaveConfig
	grid   grid.Grid
	paths  PathSource
	towers TowerSource
	log    logx.Logger

	status Status
	wave   int

	portals  []grid.Coord
	total    int
	spawned  int
	skipped  int
	success  int
	fail     int
	interval time.Duration
	elapsed  time.Duration
	spawning bool
	serial   int

	monsters *Pool[Monster]
	bullets  *Pool[Bullet]
	cooldown map[string]time.Duration
	reward   RewardAnimator
}

func NewManager(cfg WaveConfig, g grid.Grid, paths PathSource, towers TowerSource, log logx.Logger) *Manager {
	if log == nil {
		log = logx.Nop()
	}
	if towers == nil {
		towers = func() []TowerSite { return nil }
	}
	return &Manager{
		cfg:      cfg.withDefaults(),
		grid:     g,
		paths:    paths,
		towers:   towers,
		log:      log,
		wave:     1,
		monsters: NewPool[Monster](nil, resetMonster),
		bullets:  NewPool[Bullet](nil, resetBullet),
		cooldown: make(map[string]time.Duration),
	}
}

func (m *Manager) Status() Status { return m.status }
func (m *Manager) Wave() int      { return m.wave }

func (m *Manager) Progress() Progress {
	return Progress{
		Wave:    m.wave,
		Status:  m.status,
		Total:   m.total,
		Spawned: m.spawned,
		Skipped: m.skipped,
		Success: m.success,
		Fail:    m.fail,
		Portals: len(m.portals),
	}
}

func (m *Manager) Monsters() []MonsterView {
	active := m.monsters.Active()
	out := make([]MonsterView, 0, len(active))
	for _, mo := range active {
		out = append(out, MonsterView{ID: mo.ID, HP: mo.HP, MaxHP: mo.MaxHP, Position: mo.Position(), Portal: mo.Portal})
	}
	return out
}

func (m *Manager) ActiveBullets() int { return m.bullets.Len() }

// MonsterHP 是第 wave 波的怪物血量。
func (m *Manager) MonsterHP(wave int) float64 {
	if wave < 1 {
		wave = 1
	}
	return m.cfg.MonsterHP * (1 + m.cfg.HPGrowth*float64(wave-1))
}

// Reward 随入口数量单调递增。
func (m *Manager) Reward(portals int) float64 {
	if portals <= 0 {
		return 0
	}
	return m.cfg.RewardBase * math.Pow(float64(portals), 1.5)
}

// StartNextWave 只能从 init 开始；按 spawnDelay/入口数 的间隔刷怪，共 totalCount*入口数 只。
func (m *Manager) StartNextWave() error {
	if m.status != StatusInit {
		return ErrWaveNotIdle.WithData("status", m.status.String())
	}
	portals := m.paths.Portals()
	if len(portals) == 0 {
		return ErrNoPortal
	}
	m.portals = portals
	m.total = m.cfg.TotalCount * len(portals)
	m.spawned, m.skipped, m.success, m.fail = 0, 0, 0, 0
	m.interval = m.cfg.SpawnDelay / time.Duration(len(portals))
	m.elapsed = 0
	m.spawning = true
	m.status = StatusInProgress
	m.log.Info("wave started",
		zap.Int("wave", m.wave),
		zap.Int("portals", len(portals)),
		zap.Int("total", m.total),
		zap.Duration("interval", m.interval),
	)
	return nil
}

// StopNextWave 强制结束当前波次并清空怪物与子弹；没有进行中的波次时什么都不做。
func (m *Manager) StopNextWave() bool {
	if m.status != StatusInProgress {
		return false
	}
	m.spawning = false
	m.status = StatusFail
	m.monsters.Flush()
	m.bullets.Flush()
	clear(m.cooldown)
	m.log.Info("wave stopped", zap.Int("wave", m.wave), zap.Int("spawned", m.spawned))
	return true
}

// ClaimReward 只能在波次结束后调用：成功时发奖励并进入下一波，失败时奖励为 0；两者都回到 init。
func (m *Manager) ClaimReward() (float64, error) {
	var amount float64
	switch m.status {
	case StatusSuccess:
		amount = m.Reward(len(m.portals))
		m.reward.Add(amount, m.cfg.RewardTicks)
		m.wave++
	case StatusFail:
	default:
		return 0, ErrRewardUnavailable.WithData("status", m.status.String())
	}
	m.status = StatusInit
	return amount, nil
}

// DrainReward 返回本 tick 到账的奖励。
func (m *Manager) DrainReward() float64 { return m.reward.Drain() }

func (m *Manager) PendingReward() float64 { return m.reward.Pending() }

// Step 推进 dt：子弹结算、怪物移动、防御塔开火、刷怪，最后检查是否结束。
func (m *Manager) Step(dt time.Duration) StepReport {
	var rep StepReport
	if m.status == StatusInProgress {
		m.stepBullets(&rep)
		m.stepMonsters(dt, &rep)
		m.stepTowers(dt, &rep)
		m.stepSpawn(dt, &rep)
		m.checkFinished(&rep)
	}
	rep.Status = m.status
	return rep
}

func (m *Manager) stepBullets(rep *StepReport) {
	for _, b := range m.bullets.Active() {
		b.TTL--
		if b.TTL > 0 {
			continue
		}
		t := b.Target
		if t != nil && m.monsters.IsActive(t) && t.ID == b.TargetID && t.Alive() {
			t.HP -= b.Damage
			if !t.Alive() {
				m.monsters.Put(t)
				m.success++
				rep.Killed++
			}
		}
		m.bullets.Put(b)
	}
}

func (m *Manager) stepMonsters(dt time.Duration, rep *StepReport) {
	for _, mo := range m.monsters.Active() {
		if mo.advance(dt) {
			m.monsters.Put(mo)
			m.fail++
			rep.Breached++
		}
	}
}

func (m *Manager) stepTowers(dt time.Duration, rep *StepReport) {
	active := m.monsters.Active()
	for _, t := range m.towers() {
		key := t.Coord.String()
		cd := m.cooldown[key] - dt
		if cd > 0 {
			m.cooldown[key] = cd
			continue
		}
		target := m.nearest(t, active)
		if target == nil {
			m.cooldown[key] = 0
			continue
		}
		b := m.bullets.Get()
		*b = Bullet{Target: target, TargetID: target.ID, Damage: t.Stats.Damage, From: t.Coord, TTL: m.cfg.BulletTicks}
		m.cooldown[key] = t.Stats.FireInterval
		rep.Fired++
	}
}

// nearest 取射程内格距最近的怪物，距离相同时取先出生的。
func (m *Manager) nearest(t TowerSite, monsters []*Monster) *Monster {
	var (
		best *Monster
		dist int
	)
	for _, mo := range monsters {
		if !mo.Alive() {
			continue
		}
		d := m.grid.Distance(t.Coord, mo.Position())
		if d > t.Stats.Range {
			continue
		}
		if best == nil || d < dist || (d == dist && mo.ID < best.ID) {
			best, dist = mo, d
		}
	}
	return best
}

func (m *Manager) stepSpawn(dt time.Duration, rep *StepReport) {
	if !m.spawning {
		return
	}
	m.elapsed += dt
	for m.spawning && m.elapsed >= m.interval {
		m.elapsed -= m.interval
		m.spawnOne(rep)
		if m.spawned >= m.total {
			m.spawning = false
		}
	}
}

// spawnOne 在轮到的入口刷一只怪；入口没有路径时跳过该槽位，计数照常前进。
func (m *Manager) spawnOne(rep *StepReport) {
	portal := m.portals[m.spawned%len(m.portals)]
	m.spawned++
	path, ok := m.paths.Path(portal)
	if !ok || len(path) < 2 {
		m.skipped++
		rep.Skipped++
		m.log.Debug("spawn skipped, no path", zap.String("portal", portal.String()), zap.Int("wave", m.wave))
		return
	}
	m.serial++
	mo := m.monsters.Get()
	hp := m.MonsterHP(m.wave)
	mo.ID = m.serial
	mo.HP, mo.MaxHP = hp, hp
	mo.Speed = m.cfg.MonsterSpeed
	mo.Portal = portal
	mo.Path = append(mo.Path[:0], path...)
	mo.Index = 0
	rep.Spawned++
}

// checkFinished 在 击杀+突破+跳过 达到总数时结算；全部被跳过的波次按成功处理。
func (m *Manager) checkFinished(rep *StepReport) {
	if m.status != StatusInProgress || m.success+m.fail+m.skipped < m.total {
		return
	}
	m.spawning = false
	m.bullets.Flush()
	if m.fail > 0 {
		m.status = StatusFail
	} else {
		m.status = StatusSuccess
	}
	rep.Finished = true
	m.log.Info("wave finished",
		zap.Int("wave", m.wave),
		zap.String("status", m.status.String()),
		zap.Int("success", m.success),
		zap.Int("fail", m.fail),
		zap.Int("skipped", m.skipped),
	)

	if m.status != StatusSuccess || !m.cfg.AutoContinue {
		return
	}
	if _, err := m.ClaimReward(); err != nil {
		logx.ReportBizWithLoggerContext(context.Background(), m.log, logx.NewBizLog("wave.auto_claim", "claim_failed", err.Error()))
		return
	}
	if err := m.StartNextWave(); err != nil {
		logx.ReportBizWithLoggerContext(context.Background(), m.log, logx.NewBizLog("wave.auto_start", "start_failed", err.Error()))
	}
}
