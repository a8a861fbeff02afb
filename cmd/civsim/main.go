// Command civsim runs a two-city turn-based strategy game on a small grid.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/talgya/civsim/internal/api"
	"github.com/talgya/civsim/internal/config"
	"github.com/talgya/civsim/internal/decision"
	"github.com/talgya/civsim/internal/engine"
	"github.com/talgya/civsim/internal/entropy"
	"github.com/talgya/civsim/internal/llm"
	"github.com/talgya/civsim/internal/persistence"
	"github.com/talgya/civsim/internal/render"
	"github.com/talgya/civsim/internal/world"
)

func main() {
	if err := run(); err != nil {
		slog.Error("civsim failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	closeLog := setupLogger(cfg)
	defer closeLog()

	fmt.Println("=== Benvenuto in civsim ===")
	fmt.Printf("Modalita: %s, turni: %d, seme: %d\n", cfg.Mode, cfg.MaxTurnsFor(), cfg.Seed)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── World ─────────────────────────────────────────────────────────
	rng := entropy.New(cfg.Seed)
	wcfg := engine.DefaultWorldConfig()
	wcfg.Gen = cfg.GenConfig()

	var w *engine.World
	if cfg.Load {
		snap, err := persistence.LoadFile(cfg.SavePath)
		if err != nil {
			return fmt.Errorf("load %s: %w", cfg.SavePath, err)
		}
		if w, err = snap.Restore(wcfg.Catalog, rng); err != nil {
			return fmt.Errorf("restore %s: %w", cfg.SavePath, err)
		}
		slog.Info("world restored", "path", cfg.SavePath, "turn", w.Turn)
	} else {
		if w, err = engine.NewWorld(wcfg, rng); err != nil {
			return fmt.Errorf("new world: %w", err)
		}
		counts := world.TerrainCounts(w.Grid)
		for _, t := range world.TerrainKinds {
			slog.Debug("terrain", "type", t.String(), "count", counts[t])
		}
		slog.Info("world generated", "size", w.Grid.Size(), "terrain", cfg.Terrain, "cities", len(w.Cities))
	}
	printWorld(w)

	// ── Database ──────────────────────────────────────────────────────
	var db *persistence.DB
	runID := persistence.NewRunID()
	if cfg.DBPath != "" {
		if db, err = persistence.Open(cfg.DBPath); err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		if err := db.SaveMeta(ctx, "last_run", runID); err != nil {
			slog.Warn("save run meta failed", "error", err)
		}
		if err := db.SaveMeta(ctx, "seed", strconv.FormatInt(cfg.Seed, 10)); err != nil {
			slog.Warn("save seed meta failed", "error", err)
		}
		slog.Info("database opened", "path", cfg.DBPath, "run", runID)
	}

	// ── Decisions ─────────────────────────────────────────────────────
	provider := newProvider(cfg)

	eng := engine.NewEngine(w, provider, cfg.MaxTurnsFor())
	eng.Timeout = cfg.DecisionTimeout

	// ── HTTP API ──────────────────────────────────────────────────────
	var apiServer *api.Server
	if cfg.APIAddr != "" {
		apiServer = api.NewServer(cfg.APIAddr)
		apiServer.Publish(w, eng.State(), nil)
		go func() {
			if err := apiServer.Serve(ctx); err != nil {
				slog.Error("HTTP server error", "error", err)
			}
		}()
	}

	eng.OnTurn = func(report engine.TurnReport) {
		printWorld(w)
		if apiServer != nil {
			apiServer.Publish(w, eng.State(), &report)
		}
		// Auto-save every turn.
		if err := persistence.SaveFile(cfg.SavePath, w); err != nil {
			slog.Error("turn save failed", "turn", report.Turn, "error", err)
		}
		if db == nil {
			return
		}
		if _, err := db.SaveSnapshot(ctx, runID, persistence.Capture(w)); err != nil {
			slog.Error("snapshot insert failed", "turn", report.Turn, "error", err)
		}
		if err := db.SaveReports(ctx, runID, []engine.TurnReport{report}); err != nil {
			slog.Error("report insert failed", "turn", report.Turn, "error", err)
		}
	}

	// ── Run ───────────────────────────────────────────────────────────
	reports, runErr := eng.Run(ctx)
	if errors.Is(runErr, context.Canceled) {
		slog.Info("received signal, shutting down", "turns", len(reports))
		runErr = nil
	}

	if apiServer != nil {
		apiServer.Publish(w, eng.State(), nil)
	}

	// Final save on shutdown.
	if err := persistence.SaveFile(cfg.SavePath, w); err != nil {
		slog.Error("final save failed", "error", err)
	}
	if runErr != nil {
		return runErr
	}
	fmt.Printf("Partita terminata dopo %d turni. Stato salvato in %s\n", len(reports), cfg.SavePath)
	return nil
}

// setupLogger installs the default slog logger. With CIVSIM_LOG_FILE set the
// output is teed to a rotating file.
func setupLogger(cfg config.Config) func() {
	level, _ := cfg.SlogLevel()
	var out io.Writer = os.Stderr
	closer := func() {}
	if cfg.LogFile != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		out = io.MultiWriter(os.Stderr, lj)
		closer = func() { lj.Close() }
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
	return closer
}

// newProvider returns nil for scripted play. In ai mode it uses the chat
// model when a key is configured and the local heuristic otherwise.
func newProvider(cfg config.Config) decision.Provider {
	if cfg.Mode != config.ModeAI {
		return nil
	}
	client := llm.NewClient(cfg.AnthropicKey, cfg.LLMModel)
	if !client.Enabled() {
		slog.Warn("ANTHROPIC_API_KEY not set, ai mode uses the local heuristic")
		return decision.Heuristic{}
	}
	slog.Info("LLM provider enabled", "model", client.Model())
	return decision.NewOracle(client)
}

func printWorld(w *engine.World) {
	fmt.Printf("\n--- Turno %d ---\n", w.Turn)
	fmt.Print(render.Render(w.Grid, w.Cities, w.Units))
	for _, c := range w.Cities {
		fmt.Println(c.Status())
	}
}
