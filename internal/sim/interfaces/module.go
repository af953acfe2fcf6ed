package interfaces

import (
	"Tycoon/internal/sim/interfaces/handler"
	"Tycoon/modules/kit/logx"

	"github.com/gin-gonic/gin"
)

type Module struct {
	sim *handler.Sim
}

func New(rt handler.Requester, hub handler.Subscriber, log logx.Logger) *Module {
	return &Module{sim: handler.NewSim(rt, hub, log)}
}

func (m *Module) Register(g *gin.RouterGroup) {
	m.sim.RegisterRoutes(g)
}
