package monitor

// analyze.go — pipeline de un partido en vivo en un tick: join con la línea,
// cálculo de ritmo, scoring de confianza, momentum, comentario y registro.

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nmoreno/courtpulse/internal/domain"
)

// priorWindow es cuánto miramos atrás para el contexto del comentario
// ("pace heating up" compara contra el tick de hace ~4 minutos).
const priorWindow = 4 * time.Minute

// observe procesa un partido en vivo: construye la observación completa,
// la persiste, y notifica si hay trigger nuevo. Un fallo de persistencia
// se propaga (es fatal para el proceso).
func (m *Monitor) observe(ctx context.Context, snap domain.GameSnapshot, lineIndex map[string]domain.MarketLine) error {
	state := m.stateFor(ctx, snap)
	if snap.Period > state.maxPeriod {
		state.maxPeriod = snap.Period
	}

	m.updateLine(ctx, snap, state, lineIndex)

	now := m.now()
	obs := domain.GameObservation{
		Timestamp:        now,
		GameID:           snap.ID,
		HomeTeam:         state.homeCanonical,
		AwayTeam:         state.awayCanonical,
		Period:           snap.Period,
		MinutesRemaining: snap.MinutesRemaining,
		SecondsRemaining: snap.SecondsRemaining,
		HomeScore:        snap.HomeScore,
		AwayScore:        snap.AwayScore,
		TotalPoints:      snap.TotalPoints(),
		OULine:           state.line,
		OUOpen:           state.opening,
	}

	remaining := snap.RemainingMinutes(m.cfg.Sport)
	obs.TotalTimeRemaining = remaining

	if state.line != nil {
		m.deriveSignal(ctx, snap, state, remaining, now, &obs)
	}
	if state.identityNote != "" {
		obs.Notes = state.identityNote
	}

	if err := m.obsStore.AppendObservation(ctx, obs); err != nil {
		return fmt.Errorf("append observation %s: %w", snap.ID, err)
	}
	if m.metrics != nil {
		m.metrics.Observations.Inc()
	}
	if m.stream != nil {
		m.stream.Broadcast(obs)
	}

	if obs.TriggerFlag {
		m.alert(ctx, state, obs)
	}
	return nil
}

// deriveSignal rellena la señal derivada de la observación: ritmo,
// confianza, momentum y comentario. Solo se llama con línea conocida.
func (m *Monitor) deriveSignal(ctx context.Context, snap domain.GameSnapshot, state *gameState, remaining float64, now time.Time, obs *domain.GameObservation) {
	line := *state.line
	analysis := domain.AnalyzePace(snap.TotalPoints(), line, remaining, m.cfg.Sport.RegulationMinutes(), m.cfg.Pace)

	obs.RequiredPPM = analysis.RequiredPPM
	obs.CurrentPPM = &analysis.CurrentPPM
	obs.PPMDifference = analysis.PPMDifference
	obs.ProjectedFinal = &analysis.ProjectedFinal
	obs.BetType = analysis.Side
	obs.TriggerFlag = analysis.Triggered

	home, homeOK := m.stats.TeamMetrics(ctx, state.homeCanonical)
	away, awayOK := m.stats.TeamMetrics(ctx, state.awayCanonical)
	if homeOK {
		obs.HomePace = &home.Pace
		obs.HomeThreeRate = &home.ThreePRate
		obs.HomeDefEff = &home.DefEfficiency
	}
	if awayOK {
		obs.AwayPace = &away.Pace
		obs.AwayThreeRate = &away.ThreePRate
		obs.AwayDefEff = &away.DefEfficiency
	}

	if analysis.Triggered && analysis.RequiredPPM != nil {
		conf := domain.ScoreConfidence(
			analysis.Side, home, away,
			*analysis.RequiredPPM, analysis.CurrentPPM,
			m.cfg.Weights, m.cfg.Tiers,
		)
		obs.ConfidenceScore = conf.Score
		obs.UnitSize = conf.Units
	}

	mom := m.momentum.Record(snap.ID, now, analysis.CurrentPPM)

	priorPPM, priorLine := state.prior(now)
	in := domain.CommentaryInput{
		CurrentPPM:     analysis.CurrentPPM,
		Line:           line,
		ProjectedFinal: analysis.ProjectedFinal,
		PriorPPM:       priorPPM,
		PriorLine:      priorLine,
		Momentum:       mom.Direction,
	}
	obs.Notes = domain.Commentary(in, m.cfg.Commentary)
	if len(analysis.Reasons) > 0 {
		obs.Notes = strings.Join(analysis.Reasons, "; ") + "; " + obs.Notes
	}

	state.record(now, analysis.CurrentPPM, line)
	state.trackTrigger(*obs, now)
}

// alert notifica un trigger una sola vez por partido y lado.
func (m *Monitor) alert(ctx context.Context, state *gameState, obs domain.GameObservation) {
	if state.alerted[obs.BetType] {
		return
	}
	state.alerted[obs.BetType] = true

	if m.metrics != nil {
		m.metrics.Triggers.WithLabelValues(string(obs.BetType)).Inc()
		m.metrics.Confidence.Observe(obs.ConfidenceScore)
	}

	if err := m.notifier.NotifyTrigger(ctx, obs); err != nil {
		slog.Warn("trigger notification failed", "game_id", obs.GameID, "err", err)
	}
}

// stateFor devuelve (creando si hace falta) el estado acumulado del partido,
// con los nombres de equipo ya resueltos a su forma canónica.
func (m *Monitor) stateFor(ctx context.Context, snap domain.GameSnapshot) *gameState {
	if state, ok := m.games[snap.ID]; ok {
		return state
	}

	home, homeOK := m.resolver.Resolve(ctx, snap.HomeTeam)
	away, awayOK := m.resolver.Resolve(ctx, snap.AwayTeam)

	date := snap.StartTime
	if date.IsZero() {
		date = m.now()
	}

	state := &gameState{
		homeCanonical: home,
		awayCanonical: away,
		alerted:       make(map[domain.Side]bool),
		date:          date.Format("2006-01-02"),
	}
	if !homeOK || !awayOK {
		// Identidad sin resolver: los campos canónicos quedan vacíos y
		// los nombres crudos del proveedor se conservan en las notas.
		state.identityNote = fmt.Sprintf("unresolved teams: %s vs %s", snap.HomeTeam, snap.AwayTeam)
		slog.Debug("team resolution failed",
			"game_id", snap.ID,
			"home", snap.HomeTeam, "home_ok", homeOK,
			"away", snap.AwayTeam, "away_ok", awayOK,
		)
	}
	m.games[snap.ID] = state
	return state
}

// updateLine refresca la línea del partido desde el índice del mercado y,
// una única vez, intenta traer la línea de apertura.
func (m *Monitor) updateLine(ctx context.Context, snap domain.GameSnapshot, state *gameState, lineIndex map[string]domain.MarketLine) {
	if ml, ok := lineIndex[matchKey(state.homeCanonical, state.awayCanonical)]; ok {
		line := ml.Total
		state.line = &line
		if ml.Opening != nil && state.opening == nil {
			state.opening = ml.Opening
		}
	}

	if m.opening != nil && !state.openingChecked {
		state.openingChecked = true
		open, ok, err := m.opening.FetchOpeningTotal(ctx, snap.ID)
		switch {
		case err != nil:
			slog.Debug("opening line fetch failed", "game_id", snap.ID, "err", err)
		case ok && state.opening == nil:
			state.opening = &open
		}
	}
}

// --- gameState helpers ---

// record guarda el contexto del tick para el comentario de ticks futuros
// y descarta lo que quedó fuera de ventana.
func (s *gameState) record(at time.Time, ppm, line float64) {
	cutoff := at.Add(-2 * priorWindow)
	kept := s.history[:0]
	for _, p := range s.history {
		if p.at.After(cutoff) {
			kept = append(kept, p)
		}
	}
	s.history = append(kept, priorSample{at: at, ppm: ppm, line: line})
}

// prior devuelve el PPM y la línea de hace ~priorWindow, o nil si aún no
// hay histórico tan viejo.
func (s *gameState) prior(now time.Time) (*float64, *float64) {
	cutoff := now.Add(-priorWindow)
	var best *priorSample
	for i := range s.history {
		if s.history[i].at.Before(cutoff) || s.history[i].at.Equal(cutoff) {
			best = &s.history[i]
		}
	}
	if best == nil {
		return nil, nil
	}
	return &best.ppm, &best.line
}

// trackTrigger acumula el pico de confianza y el primer disparo del partido.
func (s *gameState) trackTrigger(obs domain.GameObservation, at time.Time) {
	if !obs.TriggerFlag {
		return
	}
	if obs.ConfidenceScore > s.maxConfidence {
		s.maxConfidence = obs.ConfidenceScore
	}
	if obs.UnitSize > s.maxUnits {
		s.maxUnits = obs.UnitSize
	}
	if s.triggerAt == nil {
		t := at
		s.triggerAt = &t
		s.triggerSide = obs.BetType
	}
}
