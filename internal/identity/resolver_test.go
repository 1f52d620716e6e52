package identity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmoreno/courtpulse/internal/identity"
)

// fakeAliasStore registra los alias aprendidos en memoria.
type fakeAliasStore struct {
	saved map[string][]string
}

func newFakeAliasStore() *fakeAliasStore {
	return &fakeAliasStore{saved: make(map[string][]string)}
}

func (f *fakeAliasStore) SaveAlias(_ context.Context, canonical, alias string) error {
	f.saved[canonical] = append(f.saved[canonical], alias)
	return nil
}

func (f *fakeAliasStore) LoadAliases(_ context.Context) (map[string][]string, error) {
	return f.saved, nil
}

func newTestResolver(store *fakeAliasStore) *identity.Resolver {
	canonical := []string{
		"Duke", "North Carolina", "Michigan", "Michigan State",
		"Gonzaga", "Saint Mary's (CA)", "Texas Tech",
	}
	seed := map[string][]string{
		"North Carolina": {"UNC", "N Carolina"},
		"Gonzaga":        {"Zags"},
	}
	var s *fakeAliasStore
	if store != nil {
		s = store
	}
	if s == nil {
		return identity.NewResolver(canonical, seed, nil)
	}
	return identity.NewResolver(canonical, seed, s)
}

func TestResolve_ExactCaseInsensitive(t *testing.T) {
	r := newTestResolver(nil)

	got, ok := r.Resolve(context.Background(), "duke")
	require.True(t, ok)
	assert.Equal(t, "Duke", got)
}

func TestResolve_KnownAlias(t *testing.T) {
	r := newTestResolver(nil)

	got, ok := r.Resolve(context.Background(), "UNC")
	require.True(t, ok)
	assert.Equal(t, "North Carolina", got)
}

func TestResolve_NormalizedMatch(t *testing.T) {
	r := newTestResolver(nil)

	// Mascota y puntuación fuera tras normalizar.
	got, ok := r.Resolve(context.Background(), "North Carolina Tar Heels")
	require.True(t, ok)
	assert.Equal(t, "North Carolina", got)

	got, ok = r.Resolve(context.Background(), "Saint Mary's (CA)")
	require.True(t, ok)
	assert.Equal(t, "Saint Mary's (CA)", got)
}

func TestResolve_FuzzyTypo(t *testing.T) {
	store := newFakeAliasStore()
	r := newTestResolver(store)

	got, ok := r.Resolve(context.Background(), "North Carolinaa")
	require.True(t, ok)
	assert.Equal(t, "North Carolina", got)
	assert.Contains(t, store.saved["North Carolina"], "North Carolinaa")
}

func TestResolve_PartialLearnsAlias(t *testing.T) {
	store := newFakeAliasStore()
	r := newTestResolver(store)

	got, ok := r.Resolve(context.Background(), "Duke Blue Devils XYZ")
	require.True(t, ok)
	assert.Equal(t, "Duke", got)
	assert.Contains(t, store.saved["Duke"], "Duke Blue Devils XYZ")

	// El alias aprendido resuelve exacto en el siguiente lookup.
	got, ok = r.Resolve(context.Background(), "Duke Blue Devils XYZ")
	require.True(t, ok)
	assert.Equal(t, "Duke", got)
	assert.Len(t, store.saved["Duke"], 1)
}

func TestResolve_QualifierGuard(t *testing.T) {
	// Con solo "Michigan State" en la tabla, "Michigan" no puede resolver.
	r := identity.NewResolver([]string{"Michigan State"}, nil, nil)

	_, ok := r.Resolve(context.Background(), "Michigan")
	assert.False(t, ok)

	// Y al revés: "Michigan State" nunca resuelve a "Michigan".
	r = identity.NewResolver([]string{"Michigan"}, nil, nil)
	_, ok = r.Resolve(context.Background(), "Michigan State Spartans")
	assert.False(t, ok)
}

func TestResolve_AbbreviatedQualifier(t *testing.T) {
	// "St" abrevia "State" y cuenta como calificador: no puede colapsar
	// en el programa sin calificador, y sí resuelve al que lo lleva.
	r := identity.NewResolver([]string{"Michigan", "Michigan State"}, nil, nil)

	got, ok := r.Resolve(context.Background(), "Michigan St")
	require.True(t, ok)
	assert.Equal(t, "Michigan State", got)

	// "A&M" funciona igual: "Texas A&M" nunca resuelve a "Texas".
	r = identity.NewResolver([]string{"Texas"}, nil, nil)
	_, ok = r.Resolve(context.Background(), "Texas A&M")
	assert.False(t, ok)
}

func TestResolve_DistinctTeamsStayDistinct(t *testing.T) {
	r := newTestResolver(nil)

	got, ok := r.Resolve(context.Background(), "Michigan")
	require.True(t, ok)
	assert.Equal(t, "Michigan", got)

	got, ok = r.Resolve(context.Background(), "Michigan State")
	require.True(t, ok)
	assert.Equal(t, "Michigan State", got)
}

func TestResolve_UnknownIsNotAnError(t *testing.T) {
	r := newTestResolver(nil)

	got, ok := r.Resolve(context.Background(), "Real Madrid")
	assert.False(t, ok)
	assert.Empty(t, got)
}

// --- Normalize ---

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"North Carolina Tar Heels", "north carolina"},
		{"Saint Mary's (CA)", "saint marys"},
		{"MICHIGAN STATE", "michigan state"},
		{"St. John's", "st johns"},
		{"Texas A&M Aggies", "texas a&m"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, identity.Normalize(tc.in), "input %q", tc.in)
	}
}

func TestHasQualifier(t *testing.T) {
	assert.True(t, identity.HasQualifier("michigan state"))
	assert.True(t, identity.HasQualifier("michigan st"))
	assert.True(t, identity.HasQualifier("texas tech"))
	assert.True(t, identity.HasQualifier("texas a&m"))
	assert.False(t, identity.HasQualifier("duke"))
}
