package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemainingMinutes_NCAAB(t *testing.T) {
	cases := []struct {
		name     string
		period   int
		min, sec int
		want     float64
	}{
		{"primera mitad", 1, 12, 30, 32.5},
		{"segunda mitad", 2, 8, 0, 8.0},
		{"prorroga", 3, 3, 30, 3.5},
		{"sin empezar", 0, 0, 0, 40},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := GameSnapshot{Period: tc.period, MinutesRemaining: tc.min, SecondsRemaining: tc.sec}
			assert.InDelta(t, tc.want, g.RemainingMinutes(SportNCAAB), 0.001)
		})
	}
}

func TestRemainingMinutes_NBA(t *testing.T) {
	g := GameSnapshot{Period: 2, MinutesRemaining: 6, SecondsRemaining: 0}
	assert.InDelta(t, 30.0, g.RemainingMinutes(SportNBA), 0.001)

	g = GameSnapshot{Period: 5, MinutesRemaining: 2, SecondsRemaining: 30}
	assert.InDelta(t, 2.5, g.RemainingMinutes(SportNBA), 0.001)
}

func TestTotalPoints(t *testing.T) {
	g := GameSnapshot{HomeScore: 52, AwayScore: 46}
	assert.Equal(t, 98, g.TotalPoints())
}
