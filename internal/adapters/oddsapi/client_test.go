package oddsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmoreno/courtpulse/internal/domain"
)

const oddsFixture = `[
  {
    "id": "evt1",
    "home_team": "Duke",
    "away_team": "North Carolina",
    "bookmakers": [
      {"key": "draftkings", "markets": [
        {"key": "totals", "outcomes": [
          {"name": "Over", "point": 145.5},
          {"name": "Under", "point": 145.5}
        ]}
      ]}
    ]
  },
  {
    "id": "evt2",
    "home_team": "Gonzaga",
    "away_team": "Saint Mary's",
    "bookmakers": []
  }
]`

func TestFetchTotals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sports/basketball_ncaab/odds/", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		assert.Equal(t, "totals", r.URL.Query().Get("markets"))
		w.Write([]byte(oddsFixture))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", domain.SportNCAAB)
	events, err := c.FetchTotals(context.Background())
	require.NoError(t, err)

	// evt2 no tiene mercado de totales → se omite.
	require.Len(t, events, 1)
	assert.Equal(t, "Duke", events[0].HomeTeam)
	assert.Equal(t, "North Carolina", events[0].AwayTeam)
	assert.Equal(t, 145.5, events[0].Line.Total)
}

func TestFetchTotals_ClientErrorIsNotRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"message":"invalid key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad-key", domain.SportNCAAB)
	_, err := c.FetchTotals(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
