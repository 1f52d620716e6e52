package domain

// confidence.go — scoring de confianza 0–100 para señales de totales.
//
// El score parte de una base de 50 ("el disparo ya se cumplió") y aplica
// ajustes aditivos por equipo y por emparejamiento. La lógica está escrita
// desde la perspectiva UNDER (ritmo lento suma); para señales OVER el signo
// de los factores de equipo se invierte.

// ScoringWeights son los umbrales y pesos del scorer. Todos configurables
// para poder reajustarlos con el histórico sin tocar código.
type ScoringWeights struct {
	SlowPaceThreshold float64 // por debajo = lento
	FastPaceThreshold float64 // por encima = rápido
	SlowPaceBonus     float64
	MediumPaceBonus   float64
	FastPacePenalty   float64

	LowThreeRateThreshold float64 // 3PA/FGA
	HighThreePctThreshold float64 // acierto de triples
	LowThreeRateBonus     float64
	HighThreePctPenalty   float64

	LowFTRateThreshold  float64 // FTA por partido
	HighFTRateThreshold float64
	LowFTRateBonus      float64
	HighFTRatePenalty   float64

	HighTORateThreshold float64 // pérdidas por partido
	HighTORateBonus     float64

	StrongDefenseThreshold float64 // puntos por 100 posesiones
	StrongDefenseBonus     float64

	BothSlowBonus          float64
	BothStrongDefenseBonus float64
	PaceMismatchPenalty    float64
}

// DefaultScoringWeights devuelve los pesos de producción.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		SlowPaceThreshold: 67,
		FastPaceThreshold: 72,
		SlowPaceBonus:     12,
		MediumPaceBonus:   5,
		FastPacePenalty:   -10,

		LowThreeRateThreshold: 0.30,
		HighThreePctThreshold: 0.38,
		LowThreeRateBonus:     8,
		HighThreePctPenalty:   -5,

		LowFTRateThreshold:  18,
		HighFTRateThreshold: 24,
		LowFTRateBonus:      6,
		HighFTRatePenalty:   -6,

		HighTORateThreshold: 14,
		HighTORateBonus:     5,

		StrongDefenseThreshold: 95,
		StrongDefenseBonus:     10,

		BothSlowBonus:          15,
		BothStrongDefenseBonus: 10,
		PaceMismatchPenalty:    -5,
	}
}

// UnitTier mapea un rango de confianza [Min, Max] a un tamaño de apuesta.
type UnitTier struct {
	Min   float64
	Max   float64
	Units float64
}

// DefaultUnitTiers devuelve la tabla de tiers de producción.
func DefaultUnitTiers() []UnitTier {
	return []UnitTier{
		{Min: 0, Max: 40, Units: 0},
		{Min: 41, Max: 60, Units: 0.5},
		{Min: 61, Max: 75, Units: 1},
		{Min: 76, Max: 85, Units: 2},
		{Min: 86, Max: 100, Units: 3},
	}
}

// UnitsFor devuelve el tamaño de apuesta para un score de confianza.
// Fuera de todos los rangos → 0.
func UnitsFor(confidence float64, tiers []UnitTier) float64 {
	for _, t := range tiers {
		if confidence >= t.Min && confidence <= t.Max {
			return t.Units
		}
	}
	return 0
}

// Confidence es el resultado del scorer: score final y factores aplicados.
type Confidence struct {
	Score   float64
	Units   float64
	Factors []string
}

const confidenceBase = 50

// ScoreConfidence calcula la confianza de una señal dada las métricas de
// referencia de ambos equipos y el contexto de ritmo. Si falta cualquiera de
// las dos métricas devuelve score 0 y 0 unidades: sin datos no hay apuesta,
// nunca un error.
func ScoreConfidence(
	side Side,
	home, away *TeamMetrics,
	requiredPPM, currentPPM float64,
	w ScoringWeights,
	tiers []UnitTier,
) Confidence {
	if home == nil || away == nil {
		return Confidence{Factors: []string{"missing team metrics"}}
	}

	// Factores de equipo escritos para UNDER; OVER invierte el signo.
	multiplier := 1.0
	if side == SideOver {
		multiplier = -1.0
	}

	score := float64(confidenceBase)
	var factors []string

	teamScore := evaluateTeam(home, w) + evaluateTeam(away, w)
	score += teamScore * multiplier

	matchup := evaluateMatchup(home, away, w)
	score += matchup * multiplier
	if matchup != 0 {
		factors = append(factors, "matchup")
	}

	if side == SideOver {
		score += overPaceScore(requiredPPM, currentPPM)
	} else {
		score += ppmSeverity(requiredPPM)
	}

	final := clamp(score, 0, 100)
	return Confidence{
		Score:   final,
		Units:   UnitsFor(final, tiers),
		Factors: factors,
	}
}

// evaluateTeam suma los ajustes de un equipo: ritmo, triples, tiros libres,
// pérdidas y defensa.
func evaluateTeam(m *TeamMetrics, w ScoringWeights) float64 {
	var score float64

	switch {
	case m.Pace < w.SlowPaceThreshold:
		score += w.SlowPaceBonus
	case m.Pace > w.FastPaceThreshold:
		score += w.FastPacePenalty
	default:
		score += w.MediumPaceBonus
	}

	if m.ThreePRate < w.LowThreeRateThreshold {
		score += w.LowThreeRateBonus
	}
	if m.ThreePPct > w.HighThreePctThreshold {
		score += w.HighThreePctPenalty
	}

	switch {
	case m.FTRate < w.LowFTRateThreshold:
		score += w.LowFTRateBonus
	case m.FTRate > w.HighFTRateThreshold:
		score += w.HighFTRatePenalty
	}

	if m.TORate > w.HighTORateThreshold {
		score += w.HighTORateBonus
	}

	if m.DefEfficiency < w.StrongDefenseThreshold {
		score += w.StrongDefenseBonus
	}

	return score
}

// evaluateMatchup aplica los bonos que requieren que ambos equipos cualifiquen
// a la vez, más la penalización por desajuste de ritmos.
func evaluateMatchup(home, away *TeamMetrics, w ScoringWeights) float64 {
	var score float64

	if home.Pace < w.SlowPaceThreshold && away.Pace < w.SlowPaceThreshold {
		score += w.BothSlowBonus
	}
	if home.DefEfficiency < w.StrongDefenseThreshold && away.DefEfficiency < w.StrongDefenseThreshold {
		score += w.BothStrongDefenseBonus
	}

	mismatch := (home.Pace < w.SlowPaceThreshold && away.Pace > w.FastPaceThreshold) ||
		(away.Pace < w.SlowPaceThreshold && home.Pace > w.FastPaceThreshold)
	if mismatch {
		score += w.PaceMismatchPenalty
	}

	return score
}

// ppmSeverity ajusta por la dificultad del ritmo requerido (señales UNDER).
// Escalera simétrica: required muy alto favorece el under, muy bajo lo castiga.
func ppmSeverity(required float64) float64 {
	switch {
	case required > 6.0:
		return 12
	case required > 5.5:
		return 8
	case required > 5.0:
		return 4
	case required > 4.5:
		return 0
	case required > 3.5:
		return -4
	case required > 2.5:
		return -8
	case required > 2.0:
		return -10
	default:
		return -12
	}
}

// overPaceScore ajusta señales OVER: required bajo y ritmo actual muy por
// encima del necesario suman.
func overPaceScore(required, current float64) float64 {
	var score float64
	switch {
	case required < 0.5:
		score = 15
	case required < 1.0:
		score = 10
	case required < 1.5:
		score = 5
	}

	if current > 0 && required > 0 {
		ratio := current / required
		switch {
		case ratio > 2.0:
			score += 10
		case ratio > 1.5:
			score += 5
		}
	}

	return score
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
