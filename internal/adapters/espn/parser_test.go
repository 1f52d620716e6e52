package espn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmoreno/courtpulse/internal/domain"
)

func liveEvent() event {
	return event{
		ID:   "401638583",
		Date: "2026-02-14T19:00Z",
		Status: eventStatus{
			Period:       2,
			DisplayClock: "12:34",
			Type:         statusType{State: "in"},
		},
		Competitions: []competition{{
			Competitors: []competitor{
				{HomeAway: "home", Score: "52", Team: team{DisplayName: "Duke Blue Devils"}},
				{HomeAway: "away", Score: "46", Team: team{DisplayName: "North Carolina Tar Heels"}},
			},
		}},
	}
}

func TestToSnapshot_LiveGame(t *testing.T) {
	snap, err := toSnapshot(liveEvent())
	require.NoError(t, err)

	assert.Equal(t, "401638583", snap.ID)
	assert.Equal(t, "Duke Blue Devils", snap.HomeTeam)
	assert.Equal(t, "North Carolina Tar Heels", snap.AwayTeam)
	assert.Equal(t, 52, snap.HomeScore)
	assert.Equal(t, 46, snap.AwayScore)
	assert.Equal(t, 2, snap.Period)
	assert.Equal(t, 12, snap.MinutesRemaining)
	assert.Equal(t, 34, snap.SecondsRemaining)
	assert.Equal(t, domain.StatusLive, snap.Status)
}

func TestToSnapshot_StatusMapping(t *testing.T) {
	ev := liveEvent()

	ev.Status.Type.State = "pre"
	snap, err := toSnapshot(ev)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, snap.Status)

	ev.Status.Type.State = "post"
	snap, err = toSnapshot(ev)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFinal, snap.Status)
}

func TestToSnapshot_MissingCompetitorIsMalformed(t *testing.T) {
	ev := liveEvent()
	ev.Competitions[0].Competitors = ev.Competitions[0].Competitors[:1]

	_, err := toSnapshot(ev)
	assert.Error(t, err)
}

func TestToSnapshot_EmptyScoreBeforeTipoff(t *testing.T) {
	ev := liveEvent()
	ev.Status.Type.State = "pre"
	ev.Competitions[0].Competitors[0].Score = ""
	ev.Competitions[0].Competitors[1].Score = ""

	snap, err := toSnapshot(ev)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.TotalPoints())
}

// --- parseClock ---

func TestParseClock(t *testing.T) {
	cases := []struct {
		in       string
		min, sec int
	}{
		{"12:34", 12, 34},
		{"2:08", 2, 8},
		{"0:00", 0, 0},
		{"0.9", 0, 0},
		{"45.0", 0, 45},
		{"", 0, 0},
	}
	for _, tc := range cases {
		m, s := parseClock(tc.in)
		assert.Equal(t, tc.min, m, "minutes for %q", tc.in)
		assert.Equal(t, tc.sec, s, "seconds for %q", tc.in)
	}
}

// --- parseTotalLine ---

func TestParseTotalLine(t *testing.T) {
	v, ok := parseTotalLine("o144.5")
	require.True(t, ok)
	assert.Equal(t, 144.5, v)

	v, ok = parseTotalLine("u141.5")
	require.True(t, ok)
	assert.Equal(t, 141.5, v)

	_, ok = parseTotalLine("144.5")
	assert.False(t, ok)

	_, ok = parseTotalLine("")
	assert.False(t, ok)
}
