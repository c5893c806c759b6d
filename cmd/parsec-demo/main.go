// Command parsec-demo runs a small simulation exercising the schedule:
// a movement system integrating velocities into positions, a spawner
// buffering new entities, and a bookkeeping system writing a tick resource.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/oriumgames/parsec"
)

type config struct {
	Workers  int `yaml:"workers"`
	Ticks    int `yaml:"ticks"`
	Entities int `yaml:"entities"`
}

func defaultConfig() config {
	return config{Workers: 4, Ticks: 10, Entities: 16}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Position is an entity's location.
type Position struct {
	mgl64.Vec2
}

// Velocity is an entity's per-tick displacement.
type Velocity struct {
	mgl64.Vec2
}

// Static marks entities the movement system must skip.
type Static struct{}

// Clock counts completed simulation ticks.
type Clock struct {
	Ticks uint64
}

func main() {
	configPath := flag.String("config", "", "path to yaml config")
	flag.Parse()

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	world := parsec.NewWorld()
	resources := parsec.NewResources()
	parsec.Insert(resources, &Clock{})

	for i := 0; i < cfg.Entities; i++ {
		world.Spawn(
			&Position{mgl64.Vec2{float64(i), 0}},
			&Velocity{mgl64.Vec2{1, 0.5}},
		)
	}
	// One static entity the movement query must never match.
	world.Spawn(&Position{}, &Static{})

	movementQuery := parsec.NewQuery(
		parsec.Write[Position](),
		parsec.Read[Velocity](),
		parsec.Without[Static](),
	)
	movement, err := parsec.NewSystem("movement").
		WithQuery(movementQuery).
		Build(func(res *parsec.ResourceView, queries []*parsec.Query, cmd *parsec.CommandBuffer, view *parsec.View) {
			movementQuery.Each(view, func(e parsec.Entity) {
				pos := parsec.GetMut[Position](view, e)
				vel := parsec.Get[Velocity](view, e)
				if pos == nil || vel == nil {
					return
				}
				pos.Vec2 = pos.Add(vel.Vec2)
			})
		})
	if err != nil {
		log.Fatal("build movement", zap.Error(err))
	}

	spawner, err := parsec.NewSystem("spawner").
		WithAccess(parsec.ReadRes[Clock]()).
		Build(func(res *parsec.ResourceView, queries []*parsec.Query, cmd *parsec.CommandBuffer, view *parsec.View) {
			clock := parsec.Res[Clock](res)
			if clock.Ticks%4 == 0 {
				cmd.Spawn(
					&Position{},
					&Velocity{mgl64.Vec2{0.1, 0.1}},
				)
			}
		})
	if err != nil {
		log.Fatal("build spawner", zap.Error(err))
	}

	ticker, err := parsec.NewSystem("ticker").
		WithAccess(parsec.WriteRes[Clock]()).
		Build(func(res *parsec.ResourceView, queries []*parsec.Query, cmd *parsec.CommandBuffer, view *parsec.View) {
			parsec.ResMut[Clock](res).Ticks++
		})
	if err != nil {
		log.Fatal("build ticker", zap.Error(err))
	}

	sched := parsec.NewSchedule(
		parsec.WithWorkers(cfg.Workers),
		parsec.WithLogger(log),
	).
		AddSystem(movement, parsec.Default).
		AddSystem(spawner, parsec.Default).
		AddSystem(ticker, parsec.After)

	for batch, names := range sched.Batches(parsec.Default) {
		log.Info("batch", zap.Int("index", batch), zap.Strings("systems", names))
	}

	for tick := 0; tick < cfg.Ticks; tick++ {
		if err := sched.Execute(world, resources); err != nil {
			log.Error("pass", zap.Int("tick", tick), zap.Error(err))
		}
	}

	clock, _ := parsec.Fetch[Clock](resources)
	log.Info("done",
		zap.Uint64("ticks", clock.Ticks),
		zap.Int("entities", world.EntityCount()),
	)
}
