package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nmoreno/courtpulse/internal/domain"
	"github.com/nmoreno/courtpulse/internal/identity"
	"github.com/nmoreno/courtpulse/internal/metrics"
	"github.com/nmoreno/courtpulse/internal/ports"
)

// Config contiene la configuración del motor de monitorización.
type Config struct {
	PollInterval      time.Duration
	InactivityTimeout time.Duration // sin partidos en vivo durante este tiempo → apagado
	Sport             domain.Sport
	Pace              domain.PaceConfig
	Weights           domain.ScoringWeights
	Tiers             []domain.UnitTier
	Momentum          domain.MomentumConfig
	Commentary        domain.CommentaryConfig
	RunOnce           bool
}

// DefaultConfig devuelve una configuración sensata para producción.
func DefaultConfig() Config {
	return Config{
		PollInterval:      40 * time.Second,
		InactivityTimeout: 5 * time.Minute,
		Sport:             domain.SportNCAAB,
		Pace:              domain.DefaultPaceConfig(),
		Weights:           domain.DefaultScoringWeights(),
		Tiers:             domain.DefaultUnitTiers(),
		Momentum:          domain.DefaultMomentumConfig(),
		Commentary:        domain.DefaultCommentaryConfig(),
	}
}

// Broadcaster recibe cada observación y cada cierre para su difusión en
// vivo. Implementación opcional: nil lo desactiva.
type Broadcaster interface {
	Broadcast(obs domain.GameObservation)
	BroadcastResult(res domain.GameResult)
}

// gameState es el estado acumulado de un partido a lo largo de sus ticks.
// Vive desde la primera observación hasta la reconciliación.
type gameState struct {
	homeCanonical string // vacío si el resolver no encontró al equipo
	awayCanonical string
	identityNote  string // nombres del proveedor cuando la identidad no resolvió

	line           *float64
	opening        *float64
	openingChecked bool

	maxPeriod     int
	maxConfidence float64
	maxUnits      float64
	triggerSide   domain.Side
	triggerAt     *time.Time
	alerted       map[domain.Side]bool

	history []priorSample
	date    string // YYYY-MM-DD del primer tick
}

// priorSample guarda el contexto de ticks pasados para el comentario.
type priorSample struct {
	at   time.Time
	ppm  float64
	line float64
}

// Monitor es el orquestador del loop de polling: fetch → join → análisis →
// persistencia → notificación, más la reconciliación de finales.
type Monitor struct {
	cfg      Config
	scores   ports.ScoreProvider
	lines    ports.LineProvider
	opening  ports.OpeningLineProvider // puede ser nil
	stats    ports.StatsProvider
	obsStore ports.ObservationStore
	results  ports.ResultStore
	notifier ports.Notifier
	resolver *identity.Resolver
	momentum *domain.MomentumTracker
	metrics  *metrics.Metrics
	stream   Broadcaster // puede ser nil

	games        map[string]*gameState
	lastLiveSeen time.Time
	now          func() time.Time // inyectable en tests
}

// New crea un Monitor con todas las dependencias inyectadas. opening,
// metrics y stream son opcionales (nil los desactiva).
func New(
	cfg Config,
	scores ports.ScoreProvider,
	lines ports.LineProvider,
	opening ports.OpeningLineProvider,
	stats ports.StatsProvider,
	obsStore ports.ObservationStore,
	results ports.ResultStore,
	notifier ports.Notifier,
	resolver *identity.Resolver,
	m *metrics.Metrics,
	stream Broadcaster,
) *Monitor {
	return &Monitor{
		cfg:      cfg,
		scores:   scores,
		lines:    lines,
		opening:  opening,
		stats:    stats,
		obsStore: obsStore,
		results:  results,
		notifier: notifier,
		resolver: resolver,
		momentum: domain.NewMomentumTracker(cfg.Momentum),
		metrics:  m,
		stream:   stream,
		games:    make(map[string]*gameState),
		now:      time.Now,
	}
}

// Run ejecuta el loop de polling hasta que el contexto se cancele, el
// kill switch de inactividad se dispare, o falle la persistencia.
// Con cfg.RunOnce ejecuta un único ciclo.
func (m *Monitor) Run(ctx context.Context) error {
	slog.Info("monitor starting",
		"sport", m.cfg.Sport,
		"interval", m.cfg.PollInterval,
		"inactivity_timeout", m.cfg.InactivityTimeout,
		"run_once", m.cfg.RunOnce,
	)

	m.lastLiveSeen = m.now()

	if err := m.runCycle(ctx); err != nil {
		return err
	}
	if m.cfg.RunOnce {
		return nil
	}

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("monitor stopped")
			return nil
		case <-ticker.C:
			if err := m.runCycle(ctx); err != nil {
				return err
			}
			if m.cfg.InactivityTimeout > 0 && m.now().Sub(m.lastLiveSeen) > m.cfg.InactivityTimeout {
				slog.Info("no live games, shutting down",
					"idle", m.now().Sub(m.lastLiveSeen).Round(time.Second))
				return nil
			}
		}
	}
}

// runCycle ejecuta un ciclo completo. Los errores de proveedor se registran
// y el ciclo continúa; los errores de persistencia son fatales.
func (m *Monitor) runCycle(ctx context.Context) error {
	start := m.now()

	snaps, err := m.scores.FetchScoreboard(ctx)
	if err != nil {
		slog.Error("scoreboard fetch failed", "err", err)
		m.countFetchError("scores")
		return nil
	}

	lineIndex := m.fetchLineIndex(ctx)

	live := 0
	for _, snap := range snaps {
		switch snap.Status {
		case domain.StatusLive:
			live++
			if err := m.observe(ctx, snap, lineIndex); err != nil {
				return fmt.Errorf("monitor.runCycle: %w", err)
			}
		case domain.StatusFinal:
			if err := m.reconcile(ctx, snap); err != nil {
				return fmt.Errorf("monitor.runCycle: %w", err)
			}
		}
	}

	if live > 0 {
		m.lastLiveSeen = m.now()
	}
	if m.metrics != nil {
		m.metrics.Polls.Inc()
		m.metrics.LiveGames.Set(float64(live))
	}

	slog.Info("poll cycle complete",
		"games", len(snaps),
		"live", live,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// fetchLineIndex trae las líneas del mercado y las indexa por pareja
// canónica de equipos. Un fallo del proveedor deja el índice vacío:
// el ciclo sigue y las observaciones salen sin línea.
func (m *Monitor) fetchLineIndex(ctx context.Context) map[string]domain.MarketLine {
	events, err := m.lines.FetchTotals(ctx)
	if err != nil {
		slog.Warn("line fetch failed", "err", err)
		m.countFetchError("lines")
		return nil
	}

	index := make(map[string]domain.MarketLine, len(events))
	for _, ev := range events {
		home, okH := m.resolver.Resolve(ctx, ev.HomeTeam)
		away, okA := m.resolver.Resolve(ctx, ev.AwayTeam)
		if !okH || !okA {
			slog.Debug("unresolved line event",
				"home", ev.HomeTeam, "away", ev.AwayTeam,
				"home_ok", okH, "away_ok", okA)
			continue
		}
		index[matchKey(home, away)] = ev.Line
	}
	return index
}

func (m *Monitor) countFetchError(provider string) {
	if m.metrics != nil {
		m.metrics.FetchErrors.WithLabelValues(provider).Inc()
	}
}

func matchKey(home, away string) string {
	return home + "|" + away
}
