package domain

import (
	"fmt"
	"math"
)

// PaceConfig contiene los umbrales del cálculo de ritmo y disparo.
type PaceConfig struct {
	UnderThresholdPPM float64 // required PPM por encima → señal UNDER
	OverThresholdPPM  float64 // required PPM por debajo → señal OVER
	DiffThresholdPPM  float64 // |current - required| por encima → señal secundaria
	EarlyBlendMinutes float64 // con menos minutos jugados, la proyección pondera hacia la línea
}

// DefaultPaceConfig devuelve los umbrales de producción.
func DefaultPaceConfig() PaceConfig {
	return PaceConfig{
		UnderThresholdPPM: 4.5,
		OverThresholdPPM:  1.5,
		DiffThresholdPPM:  1.25,
		EarlyBlendMinutes: 5,
	}
}

// PaceAnalysis es el resultado del cálculo de ritmo para un tick.
// RequiredPPM y PPMDifference son nil cuando no queda tiempo de juego
// (el disparo queda suprimido en ese tick).
type PaceAnalysis struct {
	RequiredPPM    *float64
	CurrentPPM     float64
	PPMDifference  *float64
	ProjectedFinal float64
	Side           Side
	Triggered      bool
	Reasons        []string
}

// AnalyzePace deriva la señal de ritmo de un partido contra su línea de totales.
//
// Fórmulas:
//
//	required_ppm   = (line - total) / remaining      (nil si remaining <= 0)
//	current_ppm    = total / elapsed                 (0 si elapsed <= 0)
//	ppm_difference = current_ppm - required_ppm
//	projected      = total + current_ppm * remaining
//	side           = OVER si projected > line, si no UNDER
//
// Disparo primario: required_ppm > UnderThresholdPPM → UNDER;
// required_ppm < OverThresholdPPM → OVER. Disparo secundario:
// |ppm_difference| > DiffThresholdPPM, con el lado según el signo.
// En los primeros EarlyBlendMinutes la proyección se mezcla linealmente
// con la línea para no sobre-reaccionar a muestras pequeñas.
func AnalyzePace(totalPoints int, line, remainingMinutes, regulationMinutes float64, cfg PaceConfig) PaceAnalysis {
	total := float64(totalPoints)
	elapsed := regulationMinutes - remainingMinutes

	var current float64
	if elapsed > 0 {
		current = total / elapsed
	}

	projected := total + current*remainingMinutes
	if cfg.EarlyBlendMinutes > 0 && elapsed >= 0 && elapsed < cfg.EarlyBlendMinutes {
		weightLine := 1 - elapsed/cfg.EarlyBlendMinutes
		projected = line*weightLine + projected*(1-weightLine)
	}

	analysis := PaceAnalysis{
		CurrentPPM:     current,
		ProjectedFinal: projected,
		Side:           SideUnder,
	}
	if projected > line {
		analysis.Side = SideOver
	}

	if remainingMinutes <= 0 {
		return analysis
	}

	required := (line - total) / remainingMinutes
	diff := current - required
	analysis.RequiredPPM = &required
	analysis.PPMDifference = &diff

	switch {
	case required > cfg.UnderThresholdPPM:
		analysis.Side = SideUnder
		analysis.Triggered = true
		analysis.Reasons = append(analysis.Reasons,
			fmt.Sprintf("required_ppm=%.2f > %.2f", required, cfg.UnderThresholdPPM))
	case required < cfg.OverThresholdPPM:
		analysis.Side = SideOver
		analysis.Triggered = true
		analysis.Reasons = append(analysis.Reasons,
			fmt.Sprintf("required_ppm=%.2f < %.2f", required, cfg.OverThresholdPPM))
	}

	if math.Abs(diff) > cfg.DiffThresholdPPM {
		if !analysis.Triggered {
			if diff > 0 {
				analysis.Side = SideOver
			} else {
				analysis.Side = SideUnder
			}
		}
		analysis.Triggered = true
		analysis.Reasons = append(analysis.Reasons,
			fmt.Sprintf("ppm_diff=%.2f > %.2f", math.Abs(diff), cfg.DiffThresholdPPM))
	}

	return analysis
}
