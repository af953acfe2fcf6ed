package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"Tycoon/internal/economy/crowdfunding"
	"Tycoon/internal/economy/orderid"
	pathactor "Tycoon/internal/pathfinding/actor"
	"Tycoon/internal/shared/actor/messages"
	"Tycoon/internal/shared/gameconfig/building"
	"Tycoon/internal/shared/gameconfig/resource"
	shareddb "Tycoon/internal/shared/infrastructure/db"
	sharedmongo "Tycoon/internal/shared/infrastructure/mongo"
	"Tycoon/internal/shared/logs"
	"Tycoon/internal/shared/serverconfig"
	transporthttp "Tycoon/internal/shared/transport/http"
	"Tycoon/internal/shared/transport/ws"
	simactor "Tycoon/internal/sim/actor"
	"Tycoon/internal/sim/actors"
	"Tycoon/internal/sim/app/port"
	"Tycoon/internal/sim/infra/persistence/memory"
	simmongo "Tycoon/internal/sim/infra/persistence/mongodb"
	simmysql "Tycoon/internal/sim/infra/persistence/mysql"
	"Tycoon/internal/sim/interfaces"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API, redraw websocket and tick driver",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := serverconfig.Load(configPath); err != nil {
		return err
	}
	conf := serverconfig.Conf
	if err := logs.Init("tycoon", conf.Log); err != nil {
		return err
	}
	log := logs.Kit()
	logs.Logger().Info("conf", zap.Any("conf", conf.Redacted()))
	if _, err := serverconfig.Watch(configPath, func(c serverconfig.Config) {
		logs.SetLevel(c.Log.Level)
		logs.Logger().Info("config reloaded", zap.String("log_level", c.Log.Level))
	}); err != nil {
		logs.Logger().Warn("config watch disabled", zap.Error(err))
	}

	resources, buildings, err := loadCatalogs(conf.Sim.CatalogDir)
	if err != nil {
		return err
	}
	seeds, err := crowdfunding.NewHMACSeed(conf.Crowdfunding.SeedSecret)
	if err != nil {
		return err
	}
	ids, err := orderid.New(conf.Sim.NodeID)
	if err != nil {
		return err
	}
	repo, closeRepo, err := openRepo(conf)
	if err != nil {
		return err
	}
	defer closeRepo()

	finder := pathactor.NewRuntime(conf.Pathfinding.Timeout, log)
	defer finder.Shutdown()
	hub := ws.NewHub(log)
	defer hub.Close()

	rt := simactor.NewRuntime(&actors.Deps{
		Repo:         repo,
		Resources:    resources,
		Buildings:    buildings,
		Feed:         crowdfunding.NewFeed(resources, seeds, conf.Crowdfunding.DayLength, log),
		Finder:       finder,
		IDs:          ids,
		Redraw:       hub,
		Sim:          conf.Sim,
		Wave:         actors.WaveFromConfig(conf.Wave),
		PreviewRate:  conf.Pathfinding.PreviewRate,
		PreviewBurst: conf.Pathfinding.PreviewBurst,
		Logger:       log,
	}, 0)
	defer rt.Shutdown()

	host := conf.HTTPServer.Host
	if host == "" {
		host = "0.0.0.0"
	}
	addr := fmt.Sprintf("%s:%d", host, conf.HTTPServer.Port)
	httpServer := transporthttp.NewHttpServer(addr, nil, log)
	interfaces.New(rt, hub, log).Register(httpServer.Group())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 默认地图先拉起来，让它从启动就开始跑 tick
	if _, err := rt.Handle(ctx, &messages.StateQuery{SimBaseMessage: messages.SimBaseMessage{
		Map:    conf.Sim.MapID,
		UserID: conf.Sim.UserID,
	}}); err != nil {
		logs.Logger().Warn("warm up default map failed", zap.String("map_id", conf.Sim.MapID), zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logs.Logger().Info("http server started", zap.String("addr", addr))
		if err := httpServer.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return rt.Drive(gctx, simactor.DriveConfig{
			Tick:     conf.Sim.TickInterval,
			Minute:   conf.Sim.MinuteInterval,
			WaveStep: conf.Wave.StepInterval,
		})
	})
	g.Go(func() error {
		<-gctx.Done()
		logs.Logger().Info("收到退出信号，准备优雅退出")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func loadCatalogs(dir string) (*resource.Catalog, *building.Catalog, error) {
	resources, err := resource.Load(dir)
	if err != nil {
		return nil, nil, err
	}
	buildings, err := building.Load(dir)
	if err != nil {
		return nil, nil, err
	}
	return resources, buildings, nil
}

const ensureTimeout = 5 * time.Second

// openRepo 按 store.driver 选择仓储实现，返回的 close 在退出时调用。
func openRepo(conf serverconfig.Config) (port.EconomyRepository, func(), error) {
	switch conf.Store.Driver {
	case "", "memory":
		return memory.NewEconomyRepository(), func() {}, nil
	case "mongodb":
		client, err := sharedmongo.Open(conf.MongoDB, logs.Logger())
		if err != nil {
			return nil, nil, err
		}
		closeClient := func() { _ = client.Disconnect(context.Background()) }
		database := client.Database(conf.MongoDB.Database)
		ctx, cancel := context.WithTimeout(context.Background(), ensureTimeout)
		defer cancel()
		if _, err := sharedmongo.EnsureCollection(ctx, database, simmongo.CollectionName, simmongo.Indexes()...); err != nil {
			closeClient()
			return nil, nil, err
		}
		return simmongo.NewEconomyRepository(database), closeClient, nil
	case "mysql":
		gdb, err := shareddb.Open(conf.MySQL, simmysql.Models()...)
		if err != nil {
			return nil, nil, err
		}
		return simmysql.NewEconomyRepo(gdb), func() {
			if sqlDB, err := gdb.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", conf.Store.Driver)
	}
}
