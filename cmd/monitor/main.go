package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nmoreno/courtpulse/config"
	"github.com/nmoreno/courtpulse/internal/adapters/espn"
	"github.com/nmoreno/courtpulse/internal/adapters/notify"
	"github.com/nmoreno/courtpulse/internal/adapters/oddsapi"
	"github.com/nmoreno/courtpulse/internal/adapters/stats"
	"github.com/nmoreno/courtpulse/internal/adapters/storage"
	"github.com/nmoreno/courtpulse/internal/domain"
	"github.com/nmoreno/courtpulse/internal/identity"
	"github.com/nmoreno/courtpulse/internal/metrics"
	"github.com/nmoreno/courtpulse/internal/monitor"
	"github.com/nmoreno/courtpulse/internal/ports"
	"github.com/nmoreno/courtpulse/internal/stream"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one poll cycle and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full trigger blocks (default: compact 1-line)")
	report := flag.Bool("report", false, "print W/L record and ROI from recorded results, then exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	sport := domain.SportNCAAB
	if cfg.Monitor.Sport == "nba" {
		sport = domain.SportNBA
	}

	store, err := storage.NewSQLiteStore(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *report {
		if err := runReport(ctx, store, os.Stdout); err != nil {
			slog.Error("report failed", "err", err)
			os.Exit(1)
		}
		return
	}

	slog.Info("courtpulse starting",
		"config", *configPath,
		"sport", sport,
		"interval", cfg.PollInterval(),
		"once", *once,
	)

	statsProvider := stats.NewProvider(cfg.Providers.StatsURL, 0)
	if err := statsProvider.Refresh(ctx); err != nil {
		slog.Warn("initial ratings fetch failed, confidence scoring degraded", "err", err)
	}

	resolver, err := buildResolver(ctx, cfg, statsProvider, store)
	if err != nil {
		slog.Error("failed to build identity resolver", "err", err)
		os.Exit(1)
	}

	espnClient := espn.NewClient(cfg.Providers.ScoreboardBase, sport)
	oddsClient := oddsapi.NewClient(cfg.Providers.OddsBase, cfg.Providers.OddsAPIKey, sport)

	notifier := buildNotifier(cfg, *table)

	var m *metrics.Metrics
	var hub *stream.Hub
	if cfg.Stream.Enabled {
		m = metrics.New()
		hub = stream.NewHub()
		go hub.Run(ctx)
		go serveStream(ctx, cfg.Stream.Addr, hub, m)
	}

	monCfg := monitor.DefaultConfig()
	monCfg.Sport = sport
	monCfg.PollInterval = cfg.PollInterval()
	monCfg.InactivityTimeout = cfg.InactivityTimeout()
	monCfg.RunOnce = *once
	monCfg.Pace = domain.PaceConfig{
		UnderThresholdPPM: cfg.Monitor.UnderThresholdPPM,
		OverThresholdPPM:  cfg.Monitor.OverThresholdPPM,
		DiffThresholdPPM:  cfg.Monitor.DiffThresholdPPM,
		EarlyBlendMinutes: cfg.Monitor.EarlyBlendMinutes,
	}
	monCfg.Momentum = domain.MomentumConfig{
		ShortWindow:   time.Duration(cfg.Monitor.MomentumShortWindowMins) * time.Minute,
		LongWindow:    time.Duration(cfg.Monitor.MomentumLongWindowMins) * time.Minute,
		FlatThreshold: cfg.Monitor.MomentumFlatThresholdPPM,
	}
	monCfg.Weights = cfg.ScoringWeights()
	monCfg.Tiers = cfg.UnitTiers()

	var broadcaster monitor.Broadcaster
	if hub != nil {
		broadcaster = hub
	}

	mon := monitor.New(monCfg,
		espnClient, oddsClient, espnClient,
		statsProvider, store, store, notifier,
		resolver, m, broadcaster,
	)

	if err := mon.Run(ctx); err != nil {
		slog.Error("monitor exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("courtpulse stopped cleanly")
}

// buildResolver arma la tabla canónica (dataset de ratings) con los alias
// sembrados del YAML y los aprendidos en la base de datos.
func buildResolver(ctx context.Context, cfg *config.Config, statsProvider *stats.Provider, store *storage.SQLiteStore) (*identity.Resolver, error) {
	seed, err := identity.LoadAliasFile(cfg.Providers.AliasesPath)
	if err != nil {
		return nil, err
	}

	learned, err := store.LoadAliases(ctx)
	if err != nil {
		return nil, err
	}
	if seed == nil {
		seed = learned
	} else {
		for canonical, list := range learned {
			seed[canonical] = append(seed[canonical], list...)
		}
	}

	return identity.NewResolver(statsProvider.TeamNames(), seed, store), nil
}

// buildNotifier combina consola y, si está configurado, Telegram.
func buildNotifier(cfg *config.Config, table bool) ports.Notifier {
	console := notify.NewConsole(table)
	if !cfg.Telegram.Enabled || cfg.Telegram.Token == "" {
		return console
	}

	tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
	if err != nil {
		slog.Warn("telegram disabled", "err", err)
		return console
	}
	return notify.NewMulti(console, tg)
}

// serveStream sirve el WebSocket de observaciones y /metrics.
func serveStream(ctx context.Context, addr string, hub *stream.Hub, m *metrics.Metrics) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("stream server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("stream server failed", "err", err)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
