package actor

import (
	"context"
	"errors"
	"testing"
	"time"

	"Tycoon/internal/defense"
	"Tycoon/internal/economy/crowdfunding"
	"Tycoon/internal/pathfinding"
	"Tycoon/internal/shared/actor/messages"
	"Tycoon/internal/shared/gameconfig/resource"
	"Tycoon/internal/shared/grid"
	"Tycoon/internal/shared/serverconfig"
	"Tycoon/internal/shared/transport"
	"Tycoon/internal/sim/actors"
	"Tycoon/internal/sim/infra/persistence/memory"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestRuntime(t *testing.T, repo *memory.EconomyRepository) *Runtime {
	t.Helper()
	return newTestRuntimeAt(t, repo, t0)
}

// newTestRuntimeAt 固定 actor 时钟为 now，用来模拟不同时刻的重启。
func newTestRuntimeAt(t *testing.T, repo *memory.EconomyRepository, now time.Time) *Runtime {
	t.Helper()
	return newTestRuntimeWith(t, repo, func(d *actors.Deps) {
		d.Clock = func() time.Time { return now }
	})
}

func newTestRuntimeWith(t *testing.T, repo *memory.EconomyRepository, mutate func(*actors.Deps)) *Runtime {
	t.Helper()
	deps := &actors.Deps{
		Repo:   repo,
		Finder: pathfinding.LocalFinder{},
		Sim: serverconfig.SimConfig{
			UserID:     "u1",
			GridType:   "square",
			Width:      6,
			Height:     3,
			TileSize:   1,
			StartMoney: 100,
		},
		Wave:  defense.WaveConfig{TotalCount: 2, SpawnDelay: time.Second, MonsterHP: 5, MonsterSpeed: 1, RewardBase: 10},
		Clock: func() time.Time { return t0 },
	}
	if mutate != nil {
		mutate(deps)
	}
	r := NewRuntime(deps, time.Second)
	t.Cleanup(r.Shutdown)
	return r
}

func handle(t *testing.T, r *Runtime, msg messages.SimMessage) *messages.Reply {
	t.Helper()
	reply, err := r.Handle(context.Background(), msg)
	if err != nil {
		t.Fatalf("handle %T err=%v", msg, err)
	}
	return reply
}

func base() messages.SimBaseMessage {
	return messages.SimBaseMessage{Map: "m1", UserID: "u1"}
}

// waitRoutes 等初始寻路结果回到 actor。
func waitRoutes(t *testing.T, r *Runtime) actors.StateView {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		reply := handle(t, r, &messages.StateQuery{SimBaseMessage: base()})
		v := reply.Payload.(actors.StateView)
		if len(v.Routes["0,1"]) > 0 {
			return v
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("路径一直没有算出来")
	return actors.StateView{}
}

func TestHandle_新地图播种(t *testing.T) {
	r := newTestRuntime(t, memory.NewEconomyRepository())
	v := waitRoutes(t, r)
	if v.MapID != "m1" || v.Money != 100 || len(v.Buildings) != 2 {
		t.Fatalf("view=%+v", v)
	}
	if got := len(v.Routes["0,1"]); got != 6 {
		t.Fatalf("直线路径应有 6 格 got=%d", got)
	}
	maps, err := r.Maps(context.Background())
	if err != nil || len(maps) != 1 || maps[0] != "m1" {
		t.Fatalf("maps=%v err=%v", maps, err)
	}
}

func TestHandle_建筑操作错误码(t *testing.T) {
	r := newTestRuntime(t, memory.NewEconomyRepository())
	place := &messages.PlaceBuilding{SimBaseMessage: base(), Type: "wall", X: 2, Y: 0}
	if reply := handle(t, r, place); !reply.OK {
		t.Fatalf("place reply=%+v", reply)
	}
	if reply := handle(t, r, place); CodeFromReply(reply) != transport.Conflict {
		t.Fatalf("重复放置 reply=%+v", reply)
	}
	unknown := &messages.PlaceBuilding{SimBaseMessage: base(), Type: "castle", X: 3, Y: 1}
	if reply := handle(t, r, unknown); CodeFromReply(reply) != transport.InvalidParam {
		t.Fatalf("未知建筑 reply=%+v", reply)
	}
	demolish := &messages.Demolish{SimBaseMessage: base(), X: 4, Y: 2}
	if reply := handle(t, r, demolish); CodeFromReply(reply) != transport.NotFound {
		t.Fatalf("拆空格 reply=%+v", reply)
	}
	home := &messages.Demolish{SimBaseMessage: base(), X: 5, Y: 1}
	if reply := handle(t, r, home); CodeFromReply(reply) != transport.InvalidParam {
		t.Fatalf("拆主基地 reply=%+v", reply)
	}
}

func TestHandle_波次状态机(t *testing.T) {
	r := newTestRuntime(t, memory.NewEconomyRepository())
	waitRoutes(t, r)

	if reply := handle(t, r, &messages.StartWave{SimBaseMessage: base()}); !reply.OK {
		t.Fatalf("start reply=%+v", reply)
	}
	if reply := handle(t, r, &messages.StartWave{SimBaseMessage: base()}); CodeFromReply(reply) != transport.Conflict {
		t.Fatalf("重复开始 reply=%+v", reply)
	}
	if reply := handle(t, r, &messages.ClaimReward{SimBaseMessage: base()}); CodeFromReply(reply) != transport.Conflict {
		t.Fatalf("进行中领奖 reply=%+v", reply)
	}
	reply := handle(t, r, &messages.StopWave{SimBaseMessage: base()})
	if !reply.OK || reply.Payload.(map[string]any)["stopped"] != true {
		t.Fatalf("stop reply=%+v", reply)
	}
	reply = handle(t, r, &messages.ClaimReward{SimBaseMessage: base()})
	if !reply.OK || reply.Payload.(map[string]any)["reward"] != 0.0 {
		t.Fatalf("失败领奖 reply=%+v", reply)
	}
}

func TestHandle_选格劫持(t *testing.T) {
	r := newTestRuntime(t, memory.NewEconomyRepository())
	waitRoutes(t, r)

	f := r.root.RequestFuture(r.manager, &messages.HijackTile{SimBaseMessage: base()}, time.Second)
	sel := handle(t, r, &messages.SelectTile{SimBaseMessage: base(), X: 3, Y: 2, Now: t0})
	if !sel.OK || sel.Payload.(map[string]any)["previewed"] != false {
		t.Fatalf("select reply=%+v", sel)
	}
	res, err := f.Result()
	if err != nil {
		t.Fatalf("hijack err=%v", err)
	}
	reply := res.(*messages.Reply)
	if !reply.OK || reply.Payload.(grid.Coord) != (grid.Coord{X: 3, Y: 2}) {
		t.Fatalf("hijack reply=%+v", reply)
	}
}

func TestHandle_选格预览(t *testing.T) {
	r := newTestRuntime(t, memory.NewEconomyRepository())
	waitRoutes(t, r)

	reply := handle(t, r, &messages.SelectTile{SimBaseMessage: base(), X: 2, Y: 1, Now: t0})
	if !reply.OK {
		t.Fatalf("select reply=%+v", reply)
	}
	payload := reply.Payload.(map[string]any)
	if payload["previewed"] != true {
		t.Fatalf("路径上的格子应发起预览 payload=%+v", payload)
	}
	preview := payload["preview"].(actors.RoutesView)
	if got := len(preview.Routes["0,1"]); got <= 6 {
		t.Fatalf("堵住后应绕路 got=%d", got)
	}
	// 预览不改缓存
	v := handle(t, r, &messages.StateQuery{SimBaseMessage: base()}).Payload.(actors.StateView)
	if len(v.Routes["0,1"]) != 6 {
		t.Fatalf("缓存路径被改动 routes=%v", v.Routes)
	}
}

func TestHandle_tick落库后重启恢复(t *testing.T) {
	repo := memory.NewEconomyRepository()
	r := newTestRuntime(t, repo)

	reply := handle(t, r, &messages.SecondTick{SimBaseMessage: base(), Now: t0})
	if !reply.OK || reply.Payload.(map[string]any)["tick"] != uint64(1) {
		t.Fatalf("tick reply=%+v", reply)
	}
	if reply := handle(t, r, &messages.MinuteTick{SimBaseMessage: base(), Now: t0}); !reply.OK {
		t.Fatalf("minute reply=%+v", reply)
	}
	if repo.Version("m1") == 0 {
		t.Fatalf("minute tick 应同步落库")
	}
	r.Shutdown()

	r2 := newTestRuntime(t, repo)
	v := handle(t, r2, &messages.StateQuery{SimBaseMessage: base()}).Payload.(actors.StateView)
	if v.Tick != 1 || v.Money != 100 {
		t.Fatalf("重启后 tick=%d money=%v", v.Tick, v.Money)
	}
}

func TestHandle_立即重启不重放已跑过的tick(t *testing.T) {
	repo := memory.NewEconomyRepository()
	r := newTestRuntime(t, repo)
	if reply := handle(t, r, &messages.MinuteTick{SimBaseMessage: base(), Now: t0}); !reply.OK {
		t.Fatalf("minute reply=%+v", reply)
	}
	for i := 1; i <= 30; i++ {
		if reply := handle(t, r, &messages.SecondTick{SimBaseMessage: base(), Now: t0.Add(time.Duration(i) * time.Second)}); !reply.OK {
			t.Fatalf("tick reply=%+v", reply)
		}
	}
	r.Shutdown()

	r2 := newTestRuntimeAt(t, repo, t0.Add(30*time.Second))
	v := handle(t, r2, &messages.StateQuery{SimBaseMessage: base()}).Payload.(actors.StateView)
	if v.Tick != 30 {
		t.Fatalf("没有停机时间，重启后 tick 应保持 30 got=%d", v.Tick)
	}
	r2.Shutdown()

	// 停机 10 秒只补 10 个 tick
	r3 := newTestRuntimeAt(t, repo, t0.Add(40*time.Second))
	v = handle(t, r3, &messages.StateQuery{SimBaseMessage: base()}).Payload.(actors.StateView)
	if v.Tick != 40 {
		t.Fatalf("停机 10 秒后 tick 应为 40 got=%d", v.Tick)
	}
}

func TestHandle_建墙后tick提交并重算路径(t *testing.T) {
	r := newTestRuntime(t, memory.NewEconomyRepository())
	waitRoutes(t, r)

	wall := grid.Coord{X: 2, Y: 1}
	place := &messages.PlaceBuilding{SimBaseMessage: base(), Type: "wall", X: wall.X, Y: wall.Y}
	if reply := handle(t, r, place); !reply.OK {
		t.Fatalf("place reply=%+v", reply)
	}
	// 放置本身不动缓存路径，要等 tick 扣料提交
	v := handle(t, r, &messages.StateQuery{SimBaseMessage: base()}).Payload.(actors.StateView)
	if len(v.Routes["0,1"]) != 6 {
		t.Fatalf("提交前路径不应变化 routes=%v", v.Routes)
	}

	if reply := handle(t, r, &messages.SecondTick{SimBaseMessage: base(), Now: t0.Add(time.Second)}); !reply.OK {
		t.Fatalf("tick reply=%+v", reply)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		v = handle(t, r, &messages.StateQuery{SimBaseMessage: base()}).Payload.(actors.StateView)
		route := v.Routes["0,1"]
		if len(route) > 6 {
			for _, c := range route {
				if c == wall {
					t.Fatalf("新路径仍经过墙 route=%v", route)
				}
			}
			if route[0] != (grid.Coord{X: 0, Y: 1}) || route[len(route)-1] != (grid.Coord{X: 5, Y: 1}) {
				t.Fatalf("新路径首尾不对 route=%v", route)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("墙提交后路径没有重算 routes=%v", v.Routes)
}

func TestHandle_tick跨边界失败带回错误码(t *testing.T) {
	down := crowdfunding.SeedFunc(func(context.Context, int64, int64) (uint64, error) {
		return 0, errors.New("seed service down")
	})
	r := newTestRuntimeWith(t, memory.NewEconomyRepository(), func(d *actors.Deps) {
		d.Feed = crowdfunding.NewFeed(resource.MustDefault(), down, 24*time.Hour, nil)
	})

	reply := handle(t, r, &messages.SecondTick{SimBaseMessage: base(), Now: t0.Add(time.Second)})
	if !reply.OK {
		t.Fatalf("种子源失败不应让 tick 失败 reply=%+v", reply)
	}
	payload := reply.Payload.(map[string]any)
	if payload["tick"] != uint64(1) || reply.Tick != 1 {
		t.Fatalf("tick 应照常推进 payload=%+v", payload)
	}
	codes, _ := payload["errors"].([]string)
	if len(codes) != 1 || codes[0] != string(crowdfunding.CodeSeedUnavailable) {
		t.Fatalf("errors=%v", payload["errors"])
	}

	healthy := newTestRuntime(t, memory.NewEconomyRepository())
	reply = handle(t, healthy, &messages.SecondTick{SimBaseMessage: base(), Now: t0.Add(time.Second)})
	if _, has := reply.Payload.(map[string]any)["errors"]; has {
		t.Fatalf("没有失败时不应带 errors payload=%+v", reply.Payload)
	}
}

func TestCodeFromError(t *testing.T) {
	if CodeFromError(nil) != transport.OK {
		t.Fatalf("nil 应为 OK")
	}
	if got := CodeFromError(&RuntimeError{Code: transport.Timeout}); got != transport.Timeout {
		t.Fatalf("got=%d", got)
	}
	if got := CodeFromError(defense.ErrPreviewThrottled); got != transport.TooManyRequests {
		t.Fatalf("got=%d", got)
	}
	if got := CodeFromError(pathfinding.ErrPathTimeout); got != transport.Timeout {
		t.Fatalf("got=%d", got)
	}
}
