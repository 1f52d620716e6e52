package monitor

// reconcile.go — cierre de partidos: resultado del total, desenlace de la
// señal propia y registro terminal idempotente.

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nmoreno/courtpulse/internal/domain"
)

// Pago estándar a -110: una unidad ganada paga 100/110.
const juicePayout = 100.0 / 110.0

// reconcile cierra un partido que llegó a final: calcula el resultado del
// total y el desenlace de la señal si la hubo, lo persiste (una sola fila
// por partido y fecha) y descarta el estado en memoria. Un fallo de
// persistencia se propaga.
func (m *Monitor) reconcile(ctx context.Context, snap domain.GameSnapshot) error {
	state, ok := m.games[snap.ID]
	if !ok {
		// Partido nunca observado en vivo (ya iba por el final al arrancar).
		// Sin estado no hay línea ni señal: no hay nada que reconciliar.
		return nil
	}

	if snap.Period > state.maxPeriod {
		state.maxPeriod = snap.Period
	}

	res := buildResult(snap, state, m.cfg.Sport)

	inserted, err := m.results.SaveResult(ctx, res)
	if err != nil {
		return fmt.Errorf("save result %s: %w", snap.ID, err)
	}
	if !inserted {
		// Ya reconciliado en un ciclo anterior; limpiar estado y seguir.
		m.forget(snap.ID)
		return nil
	}

	if m.metrics != nil {
		outcome := string(res.Outcome)
		if outcome == "" {
			outcome = "none"
		}
		m.metrics.Results.WithLabelValues(outcome).Inc()
	}

	if err := m.notifier.NotifyResult(ctx, res); err != nil {
		slog.Warn("result notification failed", "game_id", snap.ID, "err", err)
	}
	if m.stream != nil {
		m.stream.BroadcastResult(res)
	}

	slog.Info("game reconciled",
		"game_id", snap.ID,
		"home", state.homeCanonical,
		"away", state.awayCanonical,
		"total", snap.TotalPoints(),
		"ou_result", res.OUResult,
		"outcome", res.Outcome,
	)

	m.forget(snap.ID)
	return nil
}

// forget descarta todo el estado en memoria de un partido cerrado.
func (m *Monitor) forget(gameID string) {
	delete(m.games, gameID)
	m.momentum.Drop(gameID)
}

// buildResult arma el registro terminal a partir del snapshot final y el
// estado acumulado.
func buildResult(snap domain.GameSnapshot, state *gameState, sport domain.Sport) domain.GameResult {
	res := domain.GameResult{
		GameID:         snap.ID,
		Date:           state.date,
		HomeTeam:       state.homeCanonical,
		AwayTeam:       state.awayCanonical,
		FinalHomeScore: snap.HomeScore,
		FinalAwayScore: snap.AwayScore,
		FinalTotal:     snap.TotalPoints(),
		OULine:         state.line,
		OUOpen:         state.opening,
		WentToOT:       state.maxPeriod > sport.RegulationPeriods(),
	}

	if state.line != nil {
		res.OUResult = totalResult(float64(res.FinalTotal), *state.line)
	}

	if state.triggerAt != nil {
		res.OurTrigger = true
		res.TriggerSide = state.triggerSide
		res.MaxConfidence = state.maxConfidence
		res.MaxUnits = state.maxUnits
		res.TriggerTimestamp = state.triggerAt
		res.Outcome, res.UnitProfit = settle(state.triggerSide, res.OUResult, state.maxUnits)
	}

	return res
}

// totalResult compara el total final contra la línea.
func totalResult(total, line float64) domain.Side {
	switch {
	case total > line:
		return domain.SideOver
	case total < line:
		return domain.SideUnder
	default:
		return domain.SidePush // el total cayó exactamente en la línea
	}
}

// settle liquida la señal contra el resultado del total a precio -110.
func settle(side, ouResult domain.Side, units float64) (domain.Outcome, float64) {
	if ouResult == domain.SidePush {
		return domain.OutcomePush, 0
	}
	if side == ouResult {
		return domain.OutcomeWin, units * juicePayout
	}
	return domain.OutcomeLoss, -units
}
