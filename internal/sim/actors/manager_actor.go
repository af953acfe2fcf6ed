package actors

import (
	"Tycoon/internal/shared/actor/messages"
	"Tycoon/modules/kit/errx"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type ManagerActor struct {
	deps      *Deps
	simActors map[string]*actor.PID
	byPID     map[string]string
}

func NewManagerActor(deps *Deps) *ManagerActor {
	return &ManagerActor{
		deps:      deps.withDefaults(),
		simActors: make(map[string]*actor.PID),
		byPID:     make(map[string]string),
	}
}

func (m *ManagerActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Terminated:
		m.forget(msg.Who)
		return
	case *MapsQuery:
		ctx.Respond(m.mapIDs())
		return
	case messages.SimMessage:
		if msg == nil {
			respond(ctx, fail(errx.ErrBadRequest.WithReason("nil request")))
			return
		}
		mapID := msg.MapID()
		if mapID == "" {
			m.broadcast(ctx, msg)
			return
		}
		ctx.Forward(m.getOrSpawn(ctx, mapID, msg.User()))
	default:
		return
	}
}

// MapsQuery 返回当前在线的地图 id。
type MapsQuery struct{}

// broadcast 把没有指定地图的驱动消息发给所有在线地图，不回包。
func (m *ManagerActor) broadcast(ctx actor.Context, msg messages.SimMessage) {
	for _, pid := range m.simActors {
		ctx.Send(pid, msg)
	}
}

func (m *ManagerActor) getOrSpawn(ctx actor.Context, mapID, userID string) *actor.PID {
	if pid, ok := m.simActors[mapID]; ok && pid != nil {
		return pid
	}
	if userID == "" {
		userID = m.deps.Sim.UserID
	}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewSimActor(mapID, userID, m.deps)
	})
	pid := ctx.Spawn(props)
	m.simActors[mapID] = pid
	m.byPID[pid.Id] = mapID
	m.deps.Logger.Info("sim actor spawned", zap.String("map_id", mapID), zap.String("pid", pid.Id))
	return pid
}

// forget 在子 actor 退出（例如加载失败）后移除，下次请求会重新拉起。
func (m *ManagerActor) forget(pid *actor.PID) {
	if pid == nil {
		return
	}
	mapID, ok := m.byPID[pid.Id]
	if !ok {
		return
	}
	delete(m.byPID, pid.Id)
	if cur, ok := m.simActors[mapID]; ok && cur.Id == pid.Id {
		delete(m.simActors, mapID)
	}
}

func (m *ManagerActor) mapIDs() []string {
	out := make([]string, 0, len(m.simActors))
	for id := range m.simActors {
		out = append(out, id)
	}
	return out
}
