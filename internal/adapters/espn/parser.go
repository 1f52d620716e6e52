package espn

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nmoreno/courtpulse/internal/domain"
)

// toSnapshot convierte un evento del scoreboard en un GameSnapshot.
// Un evento sin ambos equipos o sin marcador parseable es un payload
// malformado: se devuelve error y el llamante salta ese partido.
func toSnapshot(ev event) (domain.GameSnapshot, error) {
	if len(ev.Competitions) == 0 {
		return domain.GameSnapshot{}, fmt.Errorf("espn.toSnapshot: event %s: no competitions", ev.ID)
	}

	var home, away *competitor
	for i := range ev.Competitions[0].Competitors {
		c := &ev.Competitions[0].Competitors[i]
		switch c.HomeAway {
		case "home":
			home = c
		case "away":
			away = c
		}
	}
	if home == nil || away == nil {
		return domain.GameSnapshot{}, fmt.Errorf("espn.toSnapshot: event %s: missing home/away competitor", ev.ID)
	}
	if home.Team.DisplayName == "" || away.Team.DisplayName == "" {
		return domain.GameSnapshot{}, fmt.Errorf("espn.toSnapshot: event %s: missing team name", ev.ID)
	}

	homeScore, err := parseScore(home.Score)
	if err != nil {
		return domain.GameSnapshot{}, fmt.Errorf("espn.toSnapshot: event %s: home score: %w", ev.ID, err)
	}
	awayScore, err := parseScore(away.Score)
	if err != nil {
		return domain.GameSnapshot{}, fmt.Errorf("espn.toSnapshot: event %s: away score: %w", ev.ID, err)
	}

	clockMin, clockSec := parseClock(ev.Status.DisplayClock)

	snap := domain.GameSnapshot{
		ID:               ev.ID,
		HomeTeam:         home.Team.DisplayName,
		AwayTeam:         away.Team.DisplayName,
		HomeScore:        homeScore,
		AwayScore:        awayScore,
		Period:           ev.Status.Period,
		MinutesRemaining: clockMin,
		SecondsRemaining: clockSec,
		Status:           toStatus(ev.Status.Type),
	}
	if ev.Date != "" {
		snap.StartTime = parseEventDate(ev.Date)
	}
	return snap, nil
}

// parseEventDate tolera ambos formatos del feed: RFC3339 completo y la
// variante sin segundos ("2026-02-14T19:00Z").
func parseEventDate(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04Z07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseClock interpreta el displayClock: "12:34" o decimal tipo "0.9"
// en los últimos segundos.
func parseClock(display string) (minutes, seconds int) {
	display = strings.TrimSpace(display)
	if display == "" {
		return 0, 0
	}

	if mm, ss, ok := strings.Cut(display, ":"); ok {
		m, _ := strconv.Atoi(mm)
		s, _ := strconv.Atoi(ss)
		return m, s
	}

	// Formato decimal: segundos sueltos
	if f, err := strconv.ParseFloat(display, 64); err == nil {
		total := int(f)
		return total / 60, total % 60
	}
	return 0, 0
}

// parseScore tolera el marcador vacío de partidos aún no empezados.
func parseScore(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func toStatus(t statusType) domain.GameStatus {
	switch t.State {
	case "in":
		return domain.StatusLive
	case "post":
		return domain.StatusFinal
	default:
		return domain.StatusScheduled
	}
}

// parseTotalLine extrae el número de una línea de totales tipo "o144.5".
func parseTotalLine(line string) (float64, bool) {
	line = strings.TrimSpace(line)
	if len(line) < 2 || (line[0] != 'o' && line[0] != 'u') {
		return 0, false
	}
	v, err := strconv.ParseFloat(line[1:], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
