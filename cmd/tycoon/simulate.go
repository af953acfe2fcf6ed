package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"Tycoon/internal/defense"
	"Tycoon/internal/economy/crowdfunding"
	"Tycoon/internal/economy/orderid"
	"Tycoon/internal/economy/service"
	"Tycoon/internal/pathfinding"
	"Tycoon/internal/shared/grid"
	"Tycoon/internal/shared/serverconfig"
	"Tycoon/internal/sim/actors"
	"Tycoon/modules/kit/logx"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

type placement struct {
	typ string
	at  grid.Coord
}

// parsePlacement 解析 "type@x,y"。
func parsePlacement(s string) (placement, error) {
	typ, xy, ok := strings.Cut(s, "@")
	if !ok || typ == "" {
		return placement{}, fmt.Errorf("bad placement %q, want type@x,y", s)
	}
	xs, ys, ok := strings.Cut(xy, ",")
	if !ok {
		return placement{}, fmt.Errorf("bad placement %q, want type@x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return placement{}, fmt.Errorf("bad placement %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return placement{}, fmt.Errorf("bad placement %q: %w", s, err)
	}
	return placement{typ: typ, at: grid.Coord{X: x, Y: y}}, nil
}

func newSimulateCmd() *cobra.Command {
	var (
		ticks  int
		mapID  string
		places []string
		wave   bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a map headless for N ticks and print the economy table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := serverconfig.Load(configPath); err != nil {
				return err
			}
			conf := serverconfig.Conf
			if mapID != "" {
				conf.Sim.MapID = mapID
			}
			list := make([]placement, 0, len(places))
			for _, s := range places {
				p, err := parsePlacement(s)
				if err != nil {
					return err
				}
				list = append(list, p)
			}
			return simulate(cmd.Context(), conf, ticks, list, wave)
		},
	}
	cmd.Flags().IntVarP(&ticks, "ticks", "n", 60, "number of one-second ticks to run")
	cmd.Flags().StringVar(&mapID, "map", "", "map id (default: sim.map_id)")
	cmd.Flags().StringArrayVar(&places, "place", nil, "place a building before running, type@x,y (repeatable)")
	cmd.Flags().BoolVar(&wave, "wave", false, "start a wave after placements")
	return cmd
}

func simulate(ctx context.Context, conf serverconfig.Config, ticks int, places []placement, startWave bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	resources, buildings, err := loadCatalogs(conf.Sim.CatalogDir)
	if err != nil {
		return err
	}
	ids, err := orderid.New(conf.Sim.NodeID)
	if err != nil {
		return err
	}
	var feed *crowdfunding.Feed
	if seeds, err := crowdfunding.NewHMACSeed(conf.Crowdfunding.SeedSecret); err == nil {
		feed = crowdfunding.NewFeed(resources, seeds, conf.Crowdfunding.DayLength, logx.Nop())
	}

	w, err := actors.SeedWorld(conf.Sim.MapID, conf.Sim.UserID, conf.Sim, buildings)
	if err != nil {
		return err
	}
	engine, err := service.NewEngine(service.Options{
		Resources:  resources,
		Buildings:  buildings,
		Feed:       feed,
		IDs:        ids,
		OrderEvery: conf.Sim.OrderEvery,
		OrderTTL:   conf.Sim.OrderTTL,
	})
	if err != nil {
		return err
	}
	def := defense.New(w, defense.Options{
		Buildings: buildings,
		Finder:    pathfinding.LocalFinder{},
		Wave:      actors.WaveFromConfig(conf.Wave),
	})
	reroute := func() {
		if err := def.Reroute(nil); err != nil {
			fmt.Fprintf(os.Stderr, "reroute: %v\n", err)
		}
	}
	reroute()

	for _, p := range places {
		if _, err := engine.Place(w, p.typ, p.at); err != nil {
			return fmt.Errorf("place %s at %s: %w", p.typ, p.at, err)
		}
	}
	if startWave {
		if err := def.StartWave(); err != nil {
			return err
		}
	}

	step := conf.Wave.StepInterval
	if step <= 0 {
		step = 100 * time.Millisecond
	}
	stepsPerTick := max(int(time.Second/step), 1)

	produced := make(map[string]float64)
	consumed := make(map[string]float64)
	var reward float64
	now := time.Now()
	for i := 0; i < ticks; i++ {
		now = now.Add(time.Second)
		if err := engine.Tick(ctx, w, now); err != nil {
			fmt.Fprintf(os.Stderr, "tick %d: %v\n", w.Tick(), err)
		}
		cur := w.Current()
		for id, v := range cur.Produced {
			produced[id] += v
		}
		for id, v := range cur.Consumed {
			consumed[id] += v
		}
		reward += def.PayReward()
		if cur.LayoutChanged {
			reroute()
		}
		if def.Waves().Status() == defense.StatusInProgress {
			for j := 0; j < stepsPerTick; j++ {
				def.Step(step)
			}
		}
	}

	stock := w.StockAll()
	prices := w.Prices()
	order := make([]string, 0, len(resources.All()))
	for _, r := range resources.All() {
		if stock[r.ID] != 0 || produced[r.ID] != 0 || consumed[r.ID] != 0 {
			order = append(order, r.ID)
		}
	}
	slices.Sort(order)

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Resource", "Stock", "Price", "Produced", "Consumed"}),
	)
	for _, id := range order {
		price := "-"
		if p, ok := prices[id]; ok {
			price = strconv.FormatFloat(p, 'f', 2, 64)
		}
		if err := table.Append([]string{
			id,
			strconv.FormatFloat(stock[id], 'f', 2, 64),
			price,
			strconv.FormatFloat(produced[id], 'f', 2, 64),
			strconv.FormatFloat(consumed[id], 'f', 2, 64),
		}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	prog := def.Waves().Progress()
	fmt.Printf("map=%s tick=%d money=%.2f buildings=%d orders=%d valuation=%.2f\n",
		w.MapID(), w.Tick(), w.Money(), w.BuildingCount(), len(w.Orders()), w.Current().Valuation)
	fmt.Printf("wave=%d status=%s success=%d fail=%d reward_paid=%.2f routes=%d\n",
		prog.Wave, prog.Status, prog.Success, prog.Fail, reward, len(def.Router().Routes()))
	return nil
}
