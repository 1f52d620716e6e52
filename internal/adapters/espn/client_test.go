package espn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmoreno/courtpulse/internal/domain"
)

const scoreboardFixture = `{
  "events": [
    {
      "id": "401638583",
      "date": "2026-02-14T19:00Z",
      "status": {"period": 2, "displayClock": "9:00", "type": {"state": "in"}},
      "competitions": [{
        "competitors": [
          {"homeAway": "home", "score": "52", "team": {"displayName": "Duke Blue Devils"}},
          {"homeAway": "away", "score": "46", "team": {"displayName": "Virginia Cavaliers"}}
        ]
      }]
    },
    {
      "id": "broken",
      "status": {"period": 1, "displayClock": "15:00", "type": {"state": "in"}},
      "competitions": [{"competitors": []}]
    }
  ]
}`

const summaryFixture = `{
  "pickcenter": [
    {"total": {"over": {"open": {"line": "o141.5"}, "close": {"line": "o144.5"}}}}
  ]
}`

func TestFetchScoreboard_SkipsMalformedEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/scoreboard", r.URL.Path)
		w.Write([]byte(scoreboardFixture))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, domain.SportNCAAB)
	snaps, err := c.FetchScoreboard(context.Background())
	require.NoError(t, err)

	// El evento malformado se salta; el válido sobrevive.
	require.Len(t, snaps, 1)
	assert.Equal(t, "401638583", snaps[0].ID)
	assert.Equal(t, 98, snaps[0].TotalPoints())
}

func TestFetchOpeningAndClosingTotals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/summary", r.URL.Path)
		assert.Equal(t, "401638583", r.URL.Query().Get("event"))
		w.Write([]byte(summaryFixture))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, domain.SportNCAAB)

	open, ok, err := c.FetchOpeningTotal(context.Background(), "401638583")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 141.5, open)

	closing, ok, err := c.FetchClosingTotal(context.Background(), "401638583")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 144.5, closing)
}

func TestFetchOpeningTotal_NoPickcenter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pickcenter": []}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, domain.SportNCAAB)
	_, ok, err := c.FetchOpeningTotal(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, ok)
}
