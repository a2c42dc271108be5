// Command gameserver runs the scavenger game server: it loads the game
// config, restores saved state, connects to PostgreSQL for the
// retirement leaderboard and serves the JSON API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/scavenge/server/internal/api"
	"github.com/scavenge/server/internal/config"
	"github.com/scavenge/server/internal/data"
	"github.com/scavenge/server/internal/persist"
	"github.com/scavenge/server/internal/sim"
	"github.com/scavenge/server/internal/snapshot"
	"github.com/scavenge/server/internal/strand"
	"github.com/scavenge/server/internal/world"
)

const dbURLEnv = "GAME_DB_URL"

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "gameserver",
		Usage: "cooperative scavenger game server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config-file",
				Aliases:  []string{"c"},
				Usage:    "path to the game JSON config",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "www-root",
				Aliases:  []string{"w"},
				Usage:    "directory with the frontend static files",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "tick-period",
				Aliases: []string{"t"},
				Usage:   "tick period in milliseconds; when set the server ticks itself and /game/tick is disabled",
			},
			&cli.StringFlag{
				Name:  "state-file",
				Usage: "path of the state snapshot file",
			},
			&cli.IntFlag{
				Name:  "save-state-period",
				Usage: "autosave period in milliseconds of game time; requires --state-file",
			},
			&cli.BoolFlag{
				Name:  "randomize-spawn-points",
				Usage: "spawn dogs at random road points instead of the first road's start",
			},
			&cli.StringFlag{
				Name:  "server-config",
				Usage: "optional TOML file with operational tuning",
			},
		},
		Action: run,
	}
}

func run(ctx context.Context, c *cli.Command) error {
	tuning, err := config.Load(c.String("server-config"))
	if err != nil {
		return err
	}

	log, err := newLogger(tuning.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	game, gen, err := data.LoadGame(c.String("config-file"), tuning.Game.CorridorHalfWidth)
	if err != nil {
		return fmt.Errorf("load game config: %w", err)
	}
	log.Info("game config loaded",
		zap.String("path", c.String("config-file")),
		zap.Int("maps", len(game.Maps())))

	dsn := os.Getenv(dbURLEnv)
	if dsn == "" {
		return fmt.Errorf("%s environment variable is not set", dbURLEnv)
	}

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(startCtx, dsn, tuning.Database.Pool, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	if err := persist.RunMigrations(startCtx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	log.Info("database ready")

	players := world.NewState(c.Bool("randomize-spawn-points"))

	savePeriodMS := int64(c.Int("save-state-period"))
	store := snapshot.New(c.String("state-file"), savePeriodMS, game, players, log)
	if err := store.Restore(); err != nil {
		return fmt.Errorf("restore state: %w", err)
	}
	if store.Enabled() {
		// Probe the path now so a broken location fails startup, not the
		// first autosave.
		if err := store.Write(); err != nil {
			return fmt.Errorf("state file not writable: %w", err)
		}
		log.Info("state snapshots enabled",
			zap.String("path", c.String("state-file")),
			zap.Int64("period_ms", savePeriodMS),
			zap.Int("restored_players", players.Count()))
	}

	repo := persist.NewRecordRepo(db)
	sink := persist.NewSink(repo, tuning.Sink, log)

	simulator := sim.New(game, players, gen, sink, store, sim.Tuning{
		DogRadius:    tuning.Game.DogRadius,
		LootRadius:   tuning.Game.LootRadius,
		OfficeRadius: tuning.Game.OfficeRadius,
	}, log)

	st := strand.New(1024)

	tickPeriod := int64(c.Int("tick-period"))
	autoTick := tickPeriod > 0
	var ticker *strand.Ticker
	if autoTick {
		ticker = strand.NewTicker(st, time.Duration(tickPeriod)*time.Millisecond, func(dt time.Duration) {
			simulator.Tick(dt.Milliseconds())
		})
		ticker.Start()
		log.Info("automatic tick enabled", zap.Int64("period_ms", tickPeriod))
	} else {
		log.Info("manual tick mode: POST /api/v1/game/tick drives time")
	}

	server := api.NewServer(game, players, simulator, st, repo, autoTick, c.String("www-root"), log)
	httpServer := &http.Server{
		Addr:         tuning.HTTP.BindAddress,
		Handler:      server,
		ReadTimeout:  tuning.HTTP.ReadTimeout,
		WriteTimeout: tuning.HTTP.WriteTimeout,
		IdleTimeout:  tuning.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("address", tuning.HTTP.BindAddress))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown incomplete", zap.Error(err))
	}

	if ticker != nil {
		ticker.Stop()
	}

	// Final snapshot runs on the strand so it observes a quiesced world.
	if store.Enabled() {
		if err := st.Do(shutdownCtx, func() {
			if err := store.Write(); err != nil {
				log.Error("final snapshot failed", zap.Error(err))
			}
		}); err != nil {
			log.Error("final snapshot not scheduled", zap.Error(err))
		}
	}

	st.Close()
	sink.Close()
	log.Info("server stopped")
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
