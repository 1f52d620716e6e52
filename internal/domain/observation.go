package domain

import "time"

// Side es el lado de la apuesta de totales.
type Side string

const (
	SideNone  Side = ""
	SideOver  Side = "over"
	SideUnder Side = "under"
	SidePush  Side = "push" // solo como resultado del total, nunca como apuesta
)

// Outcome es el resultado de una apuesta registrada.
type Outcome string

const (
	OutcomeNone Outcome = ""
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomePush Outcome = "push"
)

// GameObservation es una fila del log de observaciones: la foto completa de
// un partido en un tick, con toda la señal derivada. Los punteros son campos
// que pueden faltar (sin línea de mercado no hay cálculo de ritmo; sin
// métricas de equipo no hay snapshot de métricas).
type GameObservation struct {
	Timestamp        time.Time
	GameID           string
	HomeTeam         string
	AwayTeam         string
	Period           int
	MinutesRemaining int
	SecondsRemaining int
	HomeScore        int
	AwayScore        int
	TotalPoints      int

	OULine *float64
	OUOpen *float64

	RequiredPPM        *float64
	CurrentPPM         *float64
	PPMDifference      *float64
	ProjectedFinal     *float64
	TotalTimeRemaining float64

	BetType     Side
	TriggerFlag bool

	HomePace      *float64
	HomeThreeRate *float64
	HomeDefEff    *float64
	AwayPace      *float64
	AwayThreeRate *float64
	AwayDefEff    *float64

	ConfidenceScore float64
	UnitSize        float64
	Notes           string
}

// GameResult es el registro terminal de un partido: marcador final, resultado
// del total y el desenlace de nuestra señal si la hubo. Exactamente una fila
// por (game_id, date).
type GameResult struct {
	GameID         string
	Date           string // YYYY-MM-DD
	HomeTeam       string
	AwayTeam       string
	FinalHomeScore int
	FinalAwayScore int
	FinalTotal     int

	OULine   *float64
	OUOpen   *float64
	OUResult Side
	WentToOT bool

	OurTrigger       bool
	TriggerSide      Side
	MaxConfidence    float64
	MaxUnits         float64
	TriggerTimestamp *time.Time

	Outcome    Outcome
	UnitProfit float64
	Notes      string
}
