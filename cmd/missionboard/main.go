package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brawlers/missionboard/internal/auth"
	"github.com/brawlers/missionboard/internal/callbacks"
	"github.com/brawlers/missionboard/internal/config"
	"github.com/brawlers/missionboard/internal/database"
	"github.com/brawlers/missionboard/internal/mission"
	"github.com/brawlers/missionboard/internal/model"
	"github.com/brawlers/missionboard/internal/repository"
	"github.com/brawlers/missionboard/pkg/log"
)

const memoryDB = "memory"

var (
	gitRevision = "unknown"
	gitBranch   = "unknown"
)

type App struct {
	logger *slog.Logger
	config *config.AppConfig

	dbm      *database.DatabaseManager
	missions repository.MissionRepository
	brawlers repository.BrawlerRepository
	events   *callbacks.Callback[*model.MissionEvent]

	lifecycle *mission.Lifecycle
	crew      *mission.Crew
	manager   *mission.Manager
	query     *mission.Query
	auth      *auth.Service
}

func NewApp(cfg *config.AppConfig) (*App, error) {
	secret := cfg.JWTSecret()
	if secret == "" {
		return nil, errors.New("jwt.secret is not set")
	}

	app := &App{
		logger: slog.Default().With("logger", "app"),
		config: cfg,
		events: callbacks.New[*model.MissionEvent](),
	}

	if cfg.DB() == memoryDB {
		mem := repository.NewMemoryRepo()
		app.missions, app.brawlers = mem, mem
	} else {
		db, err := database.GetDatabase(cfg.DB(), cfg.Debug())
		if err != nil {
			return nil, err
		}

		app.dbm = database.New(db)
		app.missions = app.dbm
		app.brawlers = repository.NewBrawlerDbRepository(cfg.UsersFile(), app.dbm)
	}

	app.lifecycle = mission.NewLifecycle(app.missions, app.events)
	app.crew = mission.NewCrew(app.missions, app.lifecycle)
	app.manager = mission.NewManager(app.missions, app.lifecycle)
	app.query = mission.NewQuery(app.missions)
	app.auth = auth.NewService(app.brawlers, auth.NewPassports(secret, cfg.JWTTTL()))

	return app, nil
}

// Init prepares the schema and seeds brawlers.
func (app *App) Init() error {
	if app.dbm == nil {
		n, err := repository.Seed(context.Background(), app.brawlers, app.config.UsersFile())
		if err != nil {
			return err
		}

		app.logger.Info("using in-memory store", slog.Int("brawlers", n))

		return nil
	}

	if err := app.dbm.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if r, ok := app.brawlers.(*repository.BrawlerDbRepository); ok {
		return r.Start()
	}

	return nil
}

func (app *App) Run(ctx context.Context) error {
	if err := app.Init(); err != nil {
		return err
	}

	api := NewAPI(app, app.config.APIAddr())

	go func() {
		app.logger.Info("listening api at " + api.Address())

		if err := api.Listen(); err != nil {
			app.logger.Error("api server error", slog.Any("error", err))
		}
	}()

	<-ctx.Done()

	app.logger.Info("exiting...")

	if r, ok := app.brawlers.(*repository.BrawlerDbRepository); ok {
		r.Stop()
	}

	return api.Shutdown(time.Second * 5)
}

func main() {
	fmt.Printf("version %s %s\n", gitRevision, gitBranch)

	var conf = flag.String("config", "missionboard.yml", "name of config file")
	var debug = flag.Bool("debug", false, "debug mode")
	flag.Parse()

	cfg := config.NewAppConfig()
	cfg.Load(*conf)
	cfg.LoadEnv()

	if *debug {
		cfg.Set("debug", true)
	}

	var h slog.Handler
	if cfg.Debug() {
		h = log.NewHandler(&slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		h = log.NewHandler(&slog.HandlerOptions{Level: slog.LevelInfo})
	}

	slog.SetDefault(slog.New(h))

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("init failed", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx); err != nil {
		slog.Error("exit with error", slog.Any("error", err))
		os.Exit(1)
	}
}
