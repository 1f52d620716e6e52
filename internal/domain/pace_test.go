package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzePace_RequiredPPMFormula(t *testing.T) {
	// (145.5 - 98) / 15 = 3.1666...
	a := AnalyzePace(98, 145.5, 15, 40, DefaultPaceConfig())
	require.NotNil(t, a.RequiredPPM)
	assert.InDelta(t, 3.1667, *a.RequiredPPM, 0.001)
}

func TestAnalyzePace_MidGameNoTrigger(t *testing.T) {
	// required = 3.17: ni supera el umbral under (4.5) ni baja del over (1.5).
	// current = 98/25 = 3.92, diff = 0.75 < 1.25 → tampoco señal secundaria.
	a := AnalyzePace(98, 145.5, 15, 40, DefaultPaceConfig())
	assert.False(t, a.Triggered)
	assert.Empty(t, a.Reasons)
}

func TestAnalyzePace_UnderTrigger(t *testing.T) {
	// required = (145.5-98)/9 = 5.28 > 4.5 → UNDER
	a := AnalyzePace(98, 145.5, 9, 40, DefaultPaceConfig())
	require.NotNil(t, a.RequiredPPM)
	assert.InDelta(t, 5.28, *a.RequiredPPM, 0.01)
	assert.True(t, a.Triggered)
	assert.Equal(t, SideUnder, a.Side)
	assert.NotEmpty(t, a.Reasons)
}

func TestAnalyzePace_OverTrigger(t *testing.T) {
	// required = (145.5-140)/10 = 0.55 < 1.5 → OVER
	a := AnalyzePace(140, 145.5, 10, 40, DefaultPaceConfig())
	assert.True(t, a.Triggered)
	assert.Equal(t, SideOver, a.Side)
}

func TestAnalyzePace_SecondaryDiffTrigger(t *testing.T) {
	// current = 120/30 = 4.0, required = (145.5-120)/10 = 2.55
	// diff = 1.45 > 1.25 → señal secundaria, lado por el signo (over)
	a := AnalyzePace(120, 145.5, 10, 40, DefaultPaceConfig())
	assert.True(t, a.Triggered)
	assert.Equal(t, SideOver, a.Side)
}

func TestAnalyzePace_NoTimeRemaining(t *testing.T) {
	a := AnalyzePace(150, 145.5, 0, 40, DefaultPaceConfig())
	assert.Nil(t, a.RequiredPPM)
	assert.Nil(t, a.PPMDifference)
	assert.False(t, a.Triggered)
}

func TestAnalyzePace_ZeroElapsed(t *testing.T) {
	a := AnalyzePace(0, 145.5, 40, 40, DefaultPaceConfig())
	assert.Equal(t, 0.0, a.CurrentPPM)
}

func TestAnalyzePace_EarlyGameBlendsTowardLine(t *testing.T) {
	// Con 2 de 40 minutos jugados y un parcial caliente (12 puntos, 6 ppm),
	// la proyección cruda sería 240; la mezcla la acerca a la línea.
	a := AnalyzePace(12, 145.5, 38, 40, DefaultPaceConfig())
	assert.Less(t, a.ProjectedFinal, 200.0)
	assert.Greater(t, a.ProjectedFinal, 145.5)
}

func TestAnalyzePace_Deterministic(t *testing.T) {
	cfg := DefaultPaceConfig()
	first := AnalyzePace(98, 145.5, 9, 40, cfg)
	for i := 0; i < 10; i++ {
		again := AnalyzePace(98, 145.5, 9, 40, cfg)
		assert.Equal(t, first.Triggered, again.Triggered)
		assert.Equal(t, first.Side, again.Side)
	}
}
