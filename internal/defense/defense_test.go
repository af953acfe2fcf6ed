package defense

import (
	"errors"
	"testing"
	"time"

	"Tycoon/internal/economy/entity"
	"Tycoon/internal/pathfinding"
	"Tycoon/internal/shared/gameconfig/building"
	"Tycoon/internal/shared/grid"
)

func newWorld(t *testing.T, w, h int, home, portal grid.Coord) *entity.World {
	t.Helper()
	g, err := grid.New(grid.KindSquare, w, h, 1)
	if err != nil {
		t.Fatalf("grid err=%v", err)
	}
	world := entity.NewWorld("m1", "u1", g)
	mustPlace(t, world, "home", home)
	mustPlace(t, world, "portal", portal)
	return world
}

func mustPlace(t *testing.T, w *entity.World, typ string, c grid.Coord) {
	t.Helper()
	if _, err := w.PlaceConstructed(typ, c); err != nil {
		t.Fatalf("place %s at %v err=%v", typ, c, err)
	}
}

func newDefense(t *testing.T, w *entity.World, cfg WaveConfig) *Defense {
	t.Helper()
	d := New(w, Options{Buildings: building.MustDefault(), Wave: cfg, PreviewRate: 100, PreviewBurst: 10})
	if err := d.Reroute(nil); err != nil {
		t.Fatalf("reroute err=%v", err)
	}
	return d
}

func contains(path []grid.Coord, c grid.Coord) bool {
	for _, p := range path {
		if p == c {
			return true
		}
	}
	return false
}

func TestPool_归还后再取得到同一实例(t *testing.T) {
	p := NewPool[Monster](nil, resetMonster)
	a := p.Get()
	a.HP = 5
	if !p.IsActive(a) || p.Len() != 1 {
		t.Fatalf("get 后应为 active")
	}
	if !p.Put(a) {
		t.Fatalf("put active 应成功")
	}
	if p.IsActive(a) || p.Free() != 1 {
		t.Fatalf("put 后不应为 active, free=%d", p.Free())
	}
	if p.Put(a) {
		t.Fatalf("重复 put 应被忽略")
	}
	if p.Put(&Monster{}) {
		t.Fatalf("外来对象 put 应被忽略")
	}
	b := p.Get()
	if b != a {
		t.Fatalf("应复用刚归还的实例")
	}
	if !p.IsActive(b) || b.HP != 0 || p.Free() != 0 {
		t.Fatalf("复用实例应被重置并标记 active, hp=%v", b.HP)
	}
}

func TestPool_Flush全部归还(t *testing.T) {
	p := NewPool[Bullet](nil, resetBullet)
	x, y, z := p.Get(), p.Get(), p.Get()
	p.Put(y)
	if got := p.Active(); len(got) != 2 || got[0] != x || got[1] != z {
		t.Fatalf("active 顺序不对: %v", got)
	}
	p.Flush()
	if p.Len() != 0 || p.Free() != 3 {
		t.Fatalf("flush 后 len=%d free=%d", p.Len(), p.Free())
	}
}

func TestBuildLayout_施工中且未扣料的建筑不阻挡(t *testing.T) {
	w := newWorld(t, 5, 1, grid.Coord{X: 4}, grid.Coord{X: 0})
	if _, err := w.Place("wall", grid.Coord{X: 2}); err != nil {
		t.Fatalf("place err=%v", err)
	}
	l, err := BuildLayout(w, building.MustDefault())
	if err != nil {
		t.Fatalf("layout err=%v", err)
	}
	if l.Grid[0][2] != 0 {
		t.Fatalf("未扣料的施工格不应阻挡")
	}
	b, _ := w.Building(grid.Coord{X: 2})
	b.Committed = true
	l, _ = BuildLayout(w, building.MustDefault(), grid.Coord{X: 1})
	if l.Grid[0][2] != 1 || l.Grid[0][1] != 1 {
		t.Fatalf("已扣料的施工格和临时阻挡都应阻挡: %v", l.Grid)
	}
	if l.Grid[0][0] != 0 || l.Grid[0][4] != 0 {
		t.Fatalf("入口和主基地可通行: %v", l.Grid)
	}
}

func TestBuildLayout_缺少主基地或入口(t *testing.T) {
	g, _ := grid.New(grid.KindSquare, 3, 3, 1)
	w := entity.NewWorld("m1", "u1", g)
	if _, err := BuildLayout(w, building.MustDefault()); !errors.Is(err, ErrNoHome) {
		t.Fatalf("err=%v", err)
	}
	mustPlace(t, w, "home", grid.Coord{X: 2, Y: 2})
	if _, err := BuildLayout(w, building.MustDefault()); !errors.Is(err, ErrNoPortal) {
		t.Fatalf("err=%v", err)
	}
}

func TestRouter_放置建筑后重算绕行(t *testing.T) {
	home, portal := grid.Coord{X: 5, Y: 1}, grid.Coord{X: 0, Y: 1}
	w := newWorld(t, 7, 3, home, portal)
	d := newDefense(t, w, WaveConfig{})

	path, ok := d.Router().Path(portal)
	if !ok || len(path) != 6 || path[0] != portal || path[5] != home {
		t.Fatalf("直线路径 got=%v", path)
	}
	blocker := grid.Coord{X: 3, Y: 1}
	if !d.Router().OnPath(blocker) {
		t.Fatalf("(3,1) 应在路径上")
	}

	mustPlace(t, w, "wall", blocker)
	if err := d.Reroute(nil); err != nil {
		t.Fatalf("reroute err=%v", err)
	}
	path, ok = d.Router().Path(portal)
	if !ok || contains(path, blocker) {
		t.Fatalf("新路径不应经过 %v: %v", blocker, path)
	}
	if len(path) != 8 {
		t.Fatalf("绕行路径长度 got=%d", len(path))
	}

	mustPlace(t, w, "wall", grid.Coord{X: 3, Y: 0})
	mustPlace(t, w, "wall", grid.Coord{X: 3, Y: 2})
	_ = d.Reroute(nil)
	if p, ok := d.Router().Path(portal); ok {
		t.Fatalf("堵死后不应有路径: %v", p)
	}
	if d.Router().OnPath(grid.Coord{X: 1, Y: 1}) {
		t.Fatalf("没有路径时 used 集合应为空")
	}
}

type deferredFinder struct {
	calls []func()
}

func (f *deferredFinder) Submit(g [][]int, pairs [][2]pathfinding.Point, done pathfinding.Callback) string {
	f.calls = append(f.calls, func() { pathfinding.LocalFinder{}.Submit(g, pairs, done) })
	return ""
}

func TestRouter_迟到的旧结果被丢弃(t *testing.T) {
	w := newWorld(t, 7, 3, grid.Coord{X: 5, Y: 1}, grid.Coord{X: 0, Y: 1})
	cat := building.MustDefault()
	f := &deferredFinder{}
	r := NewRouter(f, nil, nil)

	l1, _ := BuildLayout(w, cat)
	blocker := grid.Coord{X: 3, Y: 1}
	mustPlace(t, w, "wall", blocker)
	l2, _ := BuildLayout(w, cat)

	r.Recompute(l1, nil)
	r.Recompute(l2, nil)
	if r.Settled() {
		t.Fatalf("结果未到时不应 settled")
	}
	f.calls[1]()
	f.calls[0]()
	if !r.Settled() {
		t.Fatalf("最新结果落地后应 settled")
	}
	path, ok := r.Path(grid.Coord{X: 0, Y: 1})
	if !ok || contains(path, blocker) {
		t.Fatalf("缓存应是最新一次的结果: %v", path)
	}
}

func TestSelect_路径上的格子触发预览且不写缓存(t *testing.T) {
	home, portal := grid.Coord{X: 5, Y: 1}, grid.Coord{X: 0, Y: 1}
	w := newWorld(t, 7, 3, home, portal)
	d := newDefense(t, w, WaveConfig{})
	now := time.Unix(100, 0)

	var preview Routes
	tile := grid.Coord{X: 3, Y: 1}
	ok, err := d.Select(tile, now, func(r Routes, err error) {
		if err != nil {
			t.Fatalf("preview err=%v", err)
		}
		preview = r
	})
	if err != nil || !ok {
		t.Fatalf("select ok=%v err=%v", ok, err)
	}
	if p := preview[portal.String()]; len(p) == 0 || contains(p, tile) {
		t.Fatalf("预览路径应绕开 %v: %v", tile, p)
	}
	if cached, _ := d.Router().Path(portal); !contains(cached, tile) {
		t.Fatalf("预览不应改缓存: %v", cached)
	}

	if ok, _ := d.Select(home, now, nil); ok {
		t.Fatalf("主基地不触发预览")
	}
	if ok, _ := d.Select(grid.Coord{X: 3, Y: 0}, now, nil); ok {
		t.Fatalf("不在路径上的格子不触发预览")
	}
	if _, err := d.Select(grid.Coord{X: 9, Y: 9}, now, nil); !errors.Is(err, entity.ErrOutOfBounds) {
		t.Fatalf("地图外 err=%v", err)
	}
}

func TestSelect_预览限流(t *testing.T) {
	w := newWorld(t, 7, 3, grid.Coord{X: 5, Y: 1}, grid.Coord{X: 0, Y: 1})
	d := New(w, Options{PreviewRate: 1, PreviewBurst: 1})
	if err := d.Reroute(nil); err != nil {
		t.Fatalf("reroute err=%v", err)
	}
	now := time.Unix(100, 0)
	if _, err := d.Select(grid.Coord{X: 2, Y: 1}, now, nil); err != nil {
		t.Fatalf("first select err=%v", err)
	}
	if _, err := d.Select(grid.Coord{X: 2, Y: 1}, now, nil); !errors.Is(err, ErrPreviewThrottled) {
		t.Fatalf("second select err=%v", err)
	}
	if _, err := d.Select(grid.Coord{X: 2, Y: 1}, now.Add(2*time.Second), nil); err != nil {
		t.Fatalf("令牌恢复后 err=%v", err)
	}
}

func TestDeselect_刷新正式路径(t *testing.T) {
	portal := grid.Coord{X: 0, Y: 1}
	w := newWorld(t, 7, 3, grid.Coord{X: 5, Y: 1}, portal)
	d := newDefense(t, w, WaveConfig{})
	blocker := grid.Coord{X: 2, Y: 1}
	mustPlace(t, w, "wall", blocker)
	if err := d.Deselect(nil); err != nil {
		t.Fatalf("deselect err=%v", err)
	}
	if p, _ := d.Router().Path(portal); contains(p, blocker) {
		t.Fatalf("deselect 后应已重算: %v", p)
	}
}

func TestHijack_选格交给监听(t *testing.T) {
	w := newWorld(t, 7, 3, grid.Coord{X: 5, Y: 1}, grid.Coord{X: 0, Y: 1})
	d := newDefense(t, w, WaveConfig{})
	var got grid.Coord
	d.Hijack(func(c grid.Coord, err error) {
		if err != nil {
			t.Fatalf("hijack err=%v", err)
		}
		got = c
	})
	ok, err := d.Select(grid.Coord{X: 3, Y: 1}, time.Unix(1, 0), func(Routes, error) {
		t.Fatalf("被劫持的选格不应预览")
	})
	if ok || err != nil || got != (grid.Coord{X: 3, Y: 1}) {
		t.Fatalf("ok=%v err=%v got=%v", ok, err, got)
	}
}

func TestHijack_重复注册同时拒绝新旧(t *testing.T) {
	var s Selector
	var first, second error
	s.Hijack(func(_ grid.Coord, err error) { first = err })
	s.Hijack(func(_ grid.Coord, err error) { second = err })
	if !errors.Is(first, ErrHijackReplaced) || !errors.Is(second, ErrHijackReplaced) {
		t.Fatalf("first=%v second=%v", first, second)
	}
	if s.Pending() {
		t.Fatalf("两个都被拒绝后不应再挂起")
	}
	if s.Resolve(grid.Coord{}) {
		t.Fatalf("没有监听时 resolve 应返回 false")
	}

	var cancelled error
	s.Hijack(func(_ grid.Coord, err error) { cancelled = err })
	s.Cancel()
	if !errors.Is(cancelled, ErrHijackCancelled) {
		t.Fatalf("cancel err=%v", cancelled)
	}
}

func TestWave_五次死亡或突破后结束(t *testing.T) {
	w := newWorld(t, 4, 1, grid.Coord{X: 3}, grid.Coord{X: 0})
	d := newDefense(t, w, WaveConfig{TotalCount: 5, SpawnDelay: time.Second, MonsterSpeed: 1})
	m := d.Waves()
	if err := m.StartNextWave(); err != nil {
		t.Fatalf("start err=%v", err)
	}
	events := 0
	for i := 0; i < 20 && events < 4; i++ {
		rep := m.Step(time.Second)
		events += rep.Killed + rep.Breached
	}
	if events != 4 || m.Status() != StatusInProgress {
		t.Fatalf("4 次事件后应仍在进行中, events=%d status=%v", events, m.Status())
	}
	rep := m.Step(time.Second)
	if rep.Breached != 1 || !rep.Finished || m.Status() != StatusFail {
		t.Fatalf("第 5 次事件后应 fail, rep=%+v status=%v", rep, m.Status())
	}
	if p := m.Progress(); p.Fail != 5 || p.Success != 0 || p.Spawned != 5 {
		t.Fatalf("progress=%+v", p)
	}
}

func TestWave_三只怪全部被击杀(t *testing.T) {
	home, portal := grid.Coord{X: 5, Y: 1}, grid.Coord{X: 0, Y: 1}
	w := newWorld(t, 7, 3, home, portal)
	mustPlace(t, w, "tower", grid.Coord{X: 2, Y: 0})
	d := newDefense(t, w, WaveConfig{
		TotalCount:   3,
		SpawnDelay:   3 * time.Second,
		MonsterHP:    4,
		MonsterSpeed: 1,
		RewardBase:   100,
		RewardTicks:  4,
		BulletTicks:  1,
	})
	if p, _ := d.Router().Path(portal); len(p) != 6 {
		t.Fatalf("路径 got=%v", p)
	}
	if err := d.StartWave(); err != nil {
		t.Fatalf("start err=%v", err)
	}

	var spawnAt []int
	for sec := 1; sec <= 15 && d.Waves().Status() == StatusInProgress; sec++ {
		rep := d.Step(time.Second)
		if rep.Spawned > 0 {
			spawnAt = append(spawnAt, sec)
		}
		if rep.Breached > 0 {
			t.Fatalf("第 %d 秒有怪突破", sec)
		}
	}
	if len(spawnAt) != 3 || spawnAt[0] != 3 || spawnAt[1] != 6 || spawnAt[2] != 9 {
		t.Fatalf("刷怪时间 got=%v", spawnAt)
	}
	if d.Waves().Status() != StatusSuccess {
		t.Fatalf("status=%v progress=%+v", d.Waves().Status(), d.Waves().Progress())
	}
	if p := d.Waves().Progress(); p.Success != 3 || p.Fail != 0 || p.Skipped != 0 {
		t.Fatalf("progress=%+v", p)
	}

	amount, err := d.ClaimReward()
	if err != nil || amount != 100 {
		t.Fatalf("claim amount=%v err=%v", amount, err)
	}
	if d.Waves().Status() != StatusInit || d.Waves().Wave() != 2 {
		t.Fatalf("领奖后应回到 init 且进入第 2 波")
	}
	before := w.Money()
	var paid float64
	for i := 0; i < 6; i++ {
		paid += d.PayReward()
	}
	if paid != 100 || w.Money()-before != 100 {
		t.Fatalf("奖励应分期全部到账 paid=%v", paid)
	}
}

func TestWave_入口无路径时全部跳过并判定成功(t *testing.T) {
	w := newWorld(t, 3, 3, grid.Coord{X: 2, Y: 1}, grid.Coord{X: 0, Y: 1})
	for y := 0; y < 3; y++ {
		mustPlace(t, w, "wall", grid.Coord{X: 1, Y: y})
	}
	d := newDefense(t, w, WaveConfig{TotalCount: 2, SpawnDelay: time.Second})
	if _, ok := d.Router().Path(grid.Coord{X: 0, Y: 1}); ok {
		t.Fatalf("入口应无路径")
	}
	if err := d.StartWave(); err != nil {
		t.Fatalf("start err=%v", err)
	}
	d.Step(time.Second)
	rep := d.Step(time.Second)
	if !rep.Finished || d.Waves().Status() != StatusSuccess {
		t.Fatalf("全部跳过的波次应判定成功, rep=%+v", rep)
	}
	if p := d.Waves().Progress(); p.Skipped != 2 || p.Success != 0 || len(d.Waves().Monsters()) != 0 {
		t.Fatalf("progress=%+v", p)
	}
}

func TestWave_自动续波(t *testing.T) {
	w := newWorld(t, 3, 3, grid.Coord{X: 2, Y: 1}, grid.Coord{X: 0, Y: 1})
	for y := 0; y < 3; y++ {
		mustPlace(t, w, "wall", grid.Coord{X: 1, Y: y})
	}
	d := newDefense(t, w, WaveConfig{TotalCount: 1, SpawnDelay: time.Second, AutoContinue: true, RewardBase: 10})
	_ = d.StartWave()
	rep := d.Step(time.Second)
	if !rep.Finished || d.Waves().Status() != StatusInProgress || d.Waves().Wave() != 2 {
		t.Fatalf("成功后应自动领奖并开始下一波, rep=%+v wave=%d", rep, d.Waves().Wave())
	}
	if d.Waves().PendingReward() != 10 {
		t.Fatalf("pending reward=%v", d.Waves().PendingReward())
	}
	if !d.StopWave() || d.Waves().Status() != StatusFail {
		t.Fatalf("stop 应能打断自动续波")
	}
}

func TestWave_停止与非法迁移(t *testing.T) {
	w := newWorld(t, 7, 1, grid.Coord{X: 6}, grid.Coord{X: 0})
	d := newDefense(t, w, WaveConfig{TotalCount: 3, SpawnDelay: time.Second})
	m := d.Waves()

	if m.StopNextWave() || m.Status() != StatusInit {
		t.Fatalf("没有波次时 stop 应是 no-op")
	}
	if _, err := m.ClaimReward(); !errors.Is(err, ErrRewardUnavailable) {
		t.Fatalf("init 状态领奖 err=%v", err)
	}
	if err := m.StartNextWave(); err != nil {
		t.Fatalf("start err=%v", err)
	}
	if err := m.StartNextWave(); !errors.Is(err, ErrWaveNotIdle) {
		t.Fatalf("重复开始 err=%v", err)
	}
	m.Step(time.Second)
	m.Step(time.Second)
	if len(m.Monsters()) == 0 {
		t.Fatalf("应已有怪物在场")
	}
	if !m.StopNextWave() || m.Status() != StatusFail {
		t.Fatalf("stop 后应 fail")
	}
	if len(m.Monsters()) != 0 || m.ActiveBullets() != 0 {
		t.Fatalf("stop 应清空怪物和子弹")
	}
	if m.StopNextWave() {
		t.Fatalf("再次 stop 应是 no-op")
	}
	if rep := m.Step(time.Second); rep.Spawned != 0 {
		t.Fatalf("stop 后不应再刷怪")
	}
	amount, err := m.ClaimReward()
	if err != nil || amount != 0 || m.Status() != StatusInit || m.Wave() != 1 {
		t.Fatalf("失败领奖 amount=%v err=%v status=%v wave=%d", amount, err, m.Status(), m.Wave())
	}
}

func TestWave_怪物血量随波次增长(t *testing.T) {
	m := NewManager(WaveConfig{MonsterHP: 10, HPGrowth: 0.5, RewardBase: 10}, nil, nil, nil, nil)
	if m.MonsterHP(1) != 10 || m.MonsterHP(3) != 20 {
		t.Fatalf("hp wave1=%v wave3=%v", m.MonsterHP(1), m.MonsterHP(3))
	}
	if m.Reward(4) <= m.Reward(1) || m.Reward(0) != 0 {
		t.Fatalf("奖励应随入口数递增")
	}
}

func TestSelect_波次进行中不预览(t *testing.T) {
	w := newWorld(t, 7, 3, grid.Coord{X: 5, Y: 1}, grid.Coord{X: 0, Y: 1})
	d := newDefense(t, w, WaveConfig{TotalCount: 1, SpawnDelay: time.Hour})
	if err := d.StartWave(); err != nil {
		t.Fatalf("start err=%v", err)
	}
	ok, err := d.Select(grid.Coord{X: 3, Y: 1}, time.Unix(1, 0), func(Routes, error) {
		t.Fatalf("波次进行中不应预览")
	})
	if ok || err != nil {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}
