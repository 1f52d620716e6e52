package domain

import "time"

// Sport identifica la liga monitorizada. Cambia la duración del reglamento
// y cómo se interpreta el período del reloj.
type Sport string

const (
	SportNCAAB Sport = "ncaab" // 2 mitades de 20 min
	SportNBA   Sport = "nba"   // 4 cuartos de 12 min
)

// RegulationMinutes devuelve los minutos de reglamento del deporte.
func (s Sport) RegulationMinutes() float64 {
	if s == SportNBA {
		return 48
	}
	return 40
}

// RegulationPeriods devuelve el número de períodos del reglamento.
// Cualquier período posterior es prórroga.
func (s Sport) RegulationPeriods() int {
	if s == SportNBA {
		return 4
	}
	return 2
}

// PeriodMinutes devuelve la duración de un período regular.
func (s Sport) PeriodMinutes() float64 {
	if s == SportNBA {
		return 12
	}
	return 20
}

// GameStatus es el estado del partido según el proveedor de marcadores.
type GameStatus string

const (
	StatusScheduled GameStatus = "scheduled"
	StatusLive      GameStatus = "live"
	StatusFinal     GameStatus = "final"
)

// GameSnapshot es la foto cruda de un partido en un tick: marcador, reloj
// y estado, tal como los reporta el proveedor de marcadores.
type GameSnapshot struct {
	ID               string
	HomeTeam         string
	AwayTeam         string
	HomeScore        int
	AwayScore        int
	Period           int
	MinutesRemaining int // minutos en el reloj del período actual
	SecondsRemaining int
	Status           GameStatus
	StartTime        time.Time
}

// TotalPoints devuelve la suma de ambos marcadores.
func (g GameSnapshot) TotalPoints() int {
	return g.HomeScore + g.AwayScore
}

// IsLive indica si el partido está en juego.
func (g GameSnapshot) IsLive() bool {
	return g.Status == StatusLive
}

// RemainingMinutes convierte período + reloj en minutos totales restantes
// del partido. En prórroga solo cuenta el reloj del período actual
// (cada prórroga son 5 minutos, sin períodos posteriores garantizados).
func (g GameSnapshot) RemainingMinutes(sport Sport) float64 {
	clock := float64(g.MinutesRemaining) + float64(g.SecondsRemaining)/60

	switch {
	case g.Period <= 0:
		return sport.RegulationMinutes()
	case g.Period > sport.RegulationPeriods():
		return clock
	default:
		periodsLeft := float64(sport.RegulationPeriods() - g.Period)
		return periodsLeft*sport.PeriodMinutes() + clock
	}
}

// MarketLine es la línea de totales (over/under) de un partido.
// Opening puede faltar si el proveedor no la expone.
type MarketLine struct {
	Total   float64
	Opening *float64
}

// TeamMetrics son las métricas de referencia de un equipo, refrescadas en
// cadencia diaria por el proveedor de estadísticas. Solo lectura para el motor.
type TeamMetrics struct {
	Name          string
	Pace          float64 // posesiones por partido
	OffEfficiency float64 // puntos por 100 posesiones
	DefEfficiency float64 // puntos permitidos por 100 posesiones
	ThreePRate    float64 // 3PA / FGA (0–1)
	ThreePPct     float64 // acierto de triples (0–1)
	FTRate        float64 // FTA por partido
	TORate        float64 // pérdidas por partido
}
