package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmoreno/courtpulse/internal/domain"
	"github.com/nmoreno/courtpulse/internal/identity"
	"github.com/nmoreno/courtpulse/internal/ports"
)

// --- fakes ---

type fakeScores struct {
	boards [][]domain.GameSnapshot
	calls  int
}

func (f *fakeScores) FetchScoreboard(context.Context) ([]domain.GameSnapshot, error) {
	if f.calls >= len(f.boards) {
		return nil, nil
	}
	b := f.boards[f.calls]
	f.calls++
	return b, nil
}

type fakeLines struct {
	events []ports.LineEvent
}

func (f *fakeLines) FetchTotals(context.Context) ([]ports.LineEvent, error) {
	return f.events, nil
}

type fakeStats struct {
	metrics map[string]*domain.TeamMetrics
}

func (f *fakeStats) TeamMetrics(_ context.Context, name string) (*domain.TeamMetrics, bool) {
	m, ok := f.metrics[name]
	return m, ok
}

func (f *fakeStats) Refresh(context.Context) error { return nil }

type fakeObsStore struct {
	obs []domain.GameObservation
	err error
}

func (f *fakeObsStore) AppendObservation(_ context.Context, o domain.GameObservation) error {
	if f.err != nil {
		return f.err
	}
	f.obs = append(f.obs, o)
	return nil
}

type fakeResultStore struct {
	saved []domain.GameResult
	seen  map[string]bool
}

func (f *fakeResultStore) SaveResult(_ context.Context, r domain.GameResult) (bool, error) {
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	key := r.GameID + "|" + r.Date
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	f.saved = append(f.saved, r)
	return true, nil
}

func (f *fakeResultStore) ListResults(context.Context) ([]domain.GameResult, error) {
	return f.saved, nil
}

type fakeNotifier struct {
	triggers []domain.GameObservation
	results  []domain.GameResult
}

func (f *fakeNotifier) NotifyTrigger(_ context.Context, o domain.GameObservation) error {
	f.triggers = append(f.triggers, o)
	return nil
}

func (f *fakeNotifier) NotifyResult(_ context.Context, r domain.GameResult) error {
	f.results = append(f.results, r)
	return nil
}

// --- fixtures ---

func slowMetrics(name string) *domain.TeamMetrics {
	return &domain.TeamMetrics{
		Name: name, Pace: 65, DefEfficiency: 90,
		ThreePRate: 0.25, ThreePPct: 0.35, FTRate: 16, TORate: 15,
	}
}

func liveSnap(home, away int, period, mins int) domain.GameSnapshot {
	return domain.GameSnapshot{
		ID:               "g1",
		HomeTeam:         "Duke Blue Devils",
		AwayTeam:         "Virginia Cavaliers",
		HomeScore:        home,
		AwayScore:        away,
		Period:           period,
		MinutesRemaining: mins,
		Status:           domain.StatusLive,
		StartTime:        time.Date(2026, 2, 14, 19, 0, 0, 0, time.UTC),
	}
}

func newTestMonitor(scores *fakeScores, obsStore *fakeObsStore, results *fakeResultStore, notifier *fakeNotifier) *Monitor {
	cfg := DefaultConfig()
	cfg.RunOnce = true

	lines := &fakeLines{events: []ports.LineEvent{
		{HomeTeam: "Duke", AwayTeam: "Virginia", Line: domain.MarketLine{Total: 144.5}},
	}}
	stats := &fakeStats{metrics: map[string]*domain.TeamMetrics{
		"Duke":     slowMetrics("Duke"),
		"Virginia": slowMetrics("Virginia"),
	}}
	resolver := identity.NewResolver([]string{"Duke", "Virginia"}, nil, nil)

	return New(cfg, scores, lines, nil, stats, obsStore, results, notifier, resolver, nil, nil)
}

// --- tests ---

func TestObserve_UnderTriggerAndAlert(t *testing.T) {
	scores := &fakeScores{boards: [][]domain.GameSnapshot{
		{liveSnap(52, 46, 2, 9)},
	}}
	obsStore := &fakeObsStore{}
	results := &fakeResultStore{}
	notifier := &fakeNotifier{}
	m := newTestMonitor(scores, obsStore, results, notifier)

	require.NoError(t, m.Run(context.Background()))

	require.Len(t, obsStore.obs, 1)
	obs := obsStore.obs[0]
	assert.Equal(t, "Duke", obs.HomeTeam)
	assert.Equal(t, "Virginia", obs.AwayTeam)
	assert.Equal(t, 98, obs.TotalPoints)
	require.NotNil(t, obs.OULine)
	assert.Equal(t, 144.5, *obs.OULine)
	require.NotNil(t, obs.RequiredPPM)
	assert.InDelta(t, 5.17, *obs.RequiredPPM, 0.01)
	assert.Equal(t, domain.SideUnder, obs.BetType)
	assert.True(t, obs.TriggerFlag)
	// Equipos lentos con buena defensa: el score satura.
	assert.Equal(t, 100.0, obs.ConfidenceScore)
	assert.Equal(t, 3.0, obs.UnitSize)
	assert.NotEmpty(t, obs.Notes)

	require.Len(t, notifier.triggers, 1)
}

func TestObserve_AlertOncePerSide(t *testing.T) {
	scores := &fakeScores{boards: [][]domain.GameSnapshot{
		{liveSnap(52, 46, 2, 9)},
		{liveSnap(55, 48, 2, 8)},
	}}
	obsStore := &fakeObsStore{}
	notifier := &fakeNotifier{}
	m := newTestMonitor(scores, obsStore, &fakeResultStore{}, notifier)

	ctx := context.Background()
	require.NoError(t, m.runCycle(ctx))
	require.NoError(t, m.runCycle(ctx))

	assert.Len(t, obsStore.obs, 2)
	// Segundo trigger del mismo lado: sin nueva alerta.
	assert.Len(t, notifier.triggers, 1)
}

func TestObserve_NoLineNoSignal(t *testing.T) {
	scores := &fakeScores{boards: [][]domain.GameSnapshot{
		{liveSnap(52, 46, 2, 9)},
	}}
	obsStore := &fakeObsStore{}
	notifier := &fakeNotifier{}

	cfg := DefaultConfig()
	cfg.RunOnce = true
	resolver := identity.NewResolver([]string{"Duke", "Virginia"}, nil, nil)
	m := New(cfg, scores, &fakeLines{}, nil, &fakeStats{}, obsStore, &fakeResultStore{}, notifier, resolver, nil, nil)

	require.NoError(t, m.Run(context.Background()))

	require.Len(t, obsStore.obs, 1)
	obs := obsStore.obs[0]
	assert.Nil(t, obs.OULine)
	assert.Nil(t, obs.RequiredPPM)
	assert.False(t, obs.TriggerFlag)
	assert.Empty(t, notifier.triggers)
}

func TestObserve_UnresolvedIdentityLeftNull(t *testing.T) {
	snap := liveSnap(52, 46, 2, 9)
	snap.HomeTeam = "Estudiantes Madrid"
	snap.AwayTeam = "Joventut Badalona"
	scores := &fakeScores{boards: [][]domain.GameSnapshot{{snap}}}
	obsStore := &fakeObsStore{}
	notifier := &fakeNotifier{}
	m := newTestMonitor(scores, obsStore, &fakeResultStore{}, notifier)

	require.NoError(t, m.Run(context.Background()))

	// Equipos desconocidos: identidad vacía, sin línea, sin señal.
	// Los nombres crudos del proveedor quedan en las notas.
	require.Len(t, obsStore.obs, 1)
	obs := obsStore.obs[0]
	assert.Empty(t, obs.HomeTeam)
	assert.Empty(t, obs.AwayTeam)
	assert.Nil(t, obs.OULine)
	assert.False(t, obs.TriggerFlag)
	assert.Contains(t, obs.Notes, "Estudiantes Madrid")
	assert.Contains(t, obs.Notes, "Joventut Badalona")
	assert.Empty(t, notifier.triggers)
}

func TestReconcile_WinAndIdempotent(t *testing.T) {
	final := domain.GameSnapshot{
		ID: "g1", HomeTeam: "Duke Blue Devils", AwayTeam: "Virginia Cavaliers",
		HomeScore: 71, AwayScore: 64, Period: 2, Status: domain.StatusFinal,
		StartTime: time.Date(2026, 2, 14, 19, 0, 0, 0, time.UTC),
	}
	scores := &fakeScores{boards: [][]domain.GameSnapshot{
		{liveSnap(52, 46, 2, 9)},
		{final},
		{final},
	}}
	obsStore := &fakeObsStore{}
	results := &fakeResultStore{}
	notifier := &fakeNotifier{}
	m := newTestMonitor(scores, obsStore, results, notifier)

	ctx := context.Background()
	require.NoError(t, m.runCycle(ctx))
	require.NoError(t, m.runCycle(ctx))
	require.NoError(t, m.runCycle(ctx))

	require.Len(t, results.saved, 1)
	res := results.saved[0]
	assert.Equal(t, "2026-02-14", res.Date)
	assert.Equal(t, 135, res.FinalTotal)
	assert.Equal(t, domain.SideUnder, res.OUResult)
	assert.False(t, res.WentToOT)
	assert.True(t, res.OurTrigger)
	assert.Equal(t, domain.SideUnder, res.TriggerSide)
	assert.Equal(t, domain.OutcomeWin, res.Outcome)
	assert.InDelta(t, 3*100.0/110.0, res.UnitProfit, 0.001)

	// Solo una notificación de resultado pese a dos snapshots finales.
	assert.Len(t, notifier.results, 1)
	assert.Equal(t, 0, m.momentum.Tracked())
}

func TestReconcile_OvertimeFlag(t *testing.T) {
	scores := &fakeScores{boards: [][]domain.GameSnapshot{
		{liveSnap(70, 70, 3, 2)}, // período 3 en NCAAB = prórroga
		{{
			ID: "g1", HomeTeam: "Duke Blue Devils", AwayTeam: "Virginia Cavaliers",
			HomeScore: 80, AwayScore: 78, Period: 3, Status: domain.StatusFinal,
		}},
	}}
	results := &fakeResultStore{}
	m := newTestMonitor(scores, &fakeObsStore{}, results, &fakeNotifier{})

	ctx := context.Background()
	require.NoError(t, m.runCycle(ctx))
	require.NoError(t, m.runCycle(ctx))

	require.Len(t, results.saved, 1)
	res := results.saved[0]
	assert.True(t, res.WentToOT)
	assert.Equal(t, domain.SideOver, res.OUResult) // 158 > 144.5
}

func TestRun_FatalOnPersistenceFailure(t *testing.T) {
	scores := &fakeScores{boards: [][]domain.GameSnapshot{
		{liveSnap(52, 46, 2, 9)},
	}}
	obsStore := &fakeObsStore{err: errors.New("disk full")}
	m := newTestMonitor(scores, obsStore, &fakeResultStore{}, &fakeNotifier{})

	err := m.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRun_InactivityShutdown(t *testing.T) {
	scores := &fakeScores{} // siempre sin partidos
	m := newTestMonitor(scores, &fakeObsStore{}, &fakeResultStore{}, &fakeNotifier{})
	m.cfg.RunOnce = false
	m.cfg.PollInterval = 5 * time.Millisecond
	m.cfg.InactivityTimeout = 20 * time.Millisecond

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not shut down on inactivity")
	}
}
