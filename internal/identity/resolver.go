package identity

// resolver.go — resolución de identidades de equipo entre proveedores.
//
// Cada proveedor escribe el mismo equipo a su manera ("UNC", "North
// Carolina", "North Carolina Tar Heels"). El resolver mapea cualquier
// variante al nombre canónico con una cascada de estrategias, de la más
// barata a la más laxa, y aprende: un match fuzzy/parcial aceptado persiste
// el input original como alias para que el próximo lookup sea exacto.

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/nmoreno/courtpulse/internal/ports"
)

const defaultFuzzyThreshold = 0.80

// Tokens extra tolerados en un match parcial tras el nombre canónico
// ("Duke Blue Devils XYZ" → "duke xyz" → canónico "duke" + 1 token).
const maxPartialExtraTokens = 2

// Resolver mapea nombres de equipo heterogéneos a su identidad canónica.
// Los alias aprendidos se serializan bajo mutex: varios partidos del mismo
// tick pueden aprender a la vez.
type Resolver struct {
	mu        sync.Mutex
	canonical []string          // nombres canónicos, en orden de carga
	normForm  map[string]string // canónico → forma normalizada
	aliases   map[string]string // alias (lower/normalizado) → canónico
	store     ports.AliasStore  // nil en tests
	threshold float64
}

// NewResolver construye el resolver con la tabla canónica y los alias
// sembrados. store puede ser nil (no se persiste el aprendizaje).
func NewResolver(canonicalNames []string, seed map[string][]string, store ports.AliasStore) *Resolver {
	r := &Resolver{
		normForm:  make(map[string]string, len(canonicalNames)),
		aliases:   make(map[string]string),
		store:     store,
		threshold: defaultFuzzyThreshold,
	}

	for _, name := range canonicalNames {
		r.addCanonical(name)
	}
	for canonical, list := range seed {
		if _, ok := r.normForm[canonical]; !ok {
			r.addCanonical(canonical)
		}
		for _, alias := range list {
			r.indexAlias(canonical, alias)
		}
	}
	return r
}

// addCanonical registra un nombre canónico y lo indexa como alias de sí mismo.
func (r *Resolver) addCanonical(name string) {
	r.canonical = append(r.canonical, name)
	norm := Normalize(name)
	r.normForm[name] = norm
	r.aliases[strings.ToLower(name)] = name
	if norm != "" {
		r.aliases[norm] = name
	}
}

// indexAlias añade un alias en memoria (sin persistir).
func (r *Resolver) indexAlias(canonical, alias string) {
	r.aliases[strings.ToLower(alias)] = canonical
	if norm := Normalize(alias); norm != "" {
		r.aliases[norm] = canonical
	}
}

// Resolve devuelve el nombre canónico del input, o ("", false) si no hay
// match. "Sin match" es un resultado normal, no un error: el llamante
// registra la observación con identidad nula y sigue.
//
// Cascada, primer acierto gana:
//  1. match exacto (case-insensitive) contra canónicos
//  2. lookup directo en la tabla de alias
//  3. lookup de la forma normalizada
//  4. fuzzy por ratio de edición ≥ umbral, con guarda de calificador
//  5. match parcial (prefijo + resto mascota/corto), con guarda de calificador
//
// Los pasos 4 y 5 aprenden: el input se persiste como alias nuevo.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, bool) {
	if name == "" {
		return "", false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if canonical, ok := r.aliases[strings.ToLower(name)]; ok {
		return canonical, true
	}

	norm := Normalize(name)
	if norm == "" {
		return "", false
	}
	if canonical, ok := r.aliases[norm]; ok {
		return canonical, true
	}

	if canonical, ok := r.fuzzyMatch(norm); ok {
		r.learn(ctx, canonical, name, norm)
		return canonical, true
	}

	if canonical, ok := r.partialMatch(norm); ok {
		r.learn(ctx, canonical, name, norm)
		return canonical, true
	}

	return "", false
}

// fuzzyMatch busca el canónico con mayor ratio de similitud ≥ umbral.
func (r *Resolver) fuzzyMatch(norm string) (string, bool) {
	var best string
	var bestScore float64

	for _, canonical := range r.canonical {
		candidate := r.normForm[canonical]
		if candidate == "" {
			continue
		}
		score := similarity(norm, candidate)
		if score > bestScore {
			bestScore = score
			best = canonical
		}
	}

	if bestScore < r.threshold {
		return "", false
	}
	if qualifierMismatch(norm, r.normForm[best]) {
		return "", false
	}
	return best, true
}

// partialMatch cubre casos tipo "Duke" vs "Duke Blue Devils XYZ": el nombre
// más corto debe ser prefijo del más largo y el resto debe ser una mascota
// o como mucho maxPartialExtraTokens tokens sin calificadores.
func (r *Resolver) partialMatch(norm string) (string, bool) {
	for _, canonical := range r.canonical {
		candidate := r.normForm[canonical]
		if candidate == "" || candidate == norm {
			continue
		}

		shorter, longer := candidate, norm
		if len(norm) < len(candidate) {
			shorter, longer = norm, candidate
		}
		if !strings.HasPrefix(longer, shorter) {
			continue
		}

		remainder := strings.TrimSpace(longer[len(shorter):])
		if !partialRemainderOK(remainder) {
			continue
		}
		if qualifierMismatch(norm, candidate) {
			continue
		}
		return canonical, true
	}
	return "", false
}

// learn persiste el input original como alias nuevo del canónico.
func (r *Resolver) learn(ctx context.Context, canonical, original, norm string) {
	r.aliases[strings.ToLower(original)] = canonical
	r.aliases[norm] = canonical

	if r.store == nil {
		return
	}
	if err := r.store.SaveAlias(ctx, canonical, original); err != nil {
		slog.Warn("alias persist failed", "canonical", canonical, "alias", original, "err", err)
		return
	}
	slog.Debug("learned team alias", "canonical", canonical, "alias", original)
}

// --- helpers ---

// similarity es el ratio de Levenshtein: 1 - distancia/longitud máxima.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

// qualifierMismatch veta el match cuando solo uno de los dos nombres lleva
// calificador: "michigan" nunca puede resolver a "michigan state".
func qualifierMismatch(a, b string) bool {
	return HasQualifier(a) != HasQualifier(b)
}

// partialRemainderOK acepta restos vacíos, mascotas conocidas o colas cortas
// sin calificadores.
func partialRemainderOK(remainder string) bool {
	if remainder == "" || isMascot(remainder) {
		return true
	}
	words := strings.Fields(remainder)
	if len(words) > maxPartialExtraTokens {
		return false
	}
	for _, w := range words {
		if qualifiers[w] {
			return false
		}
	}
	return true
}
