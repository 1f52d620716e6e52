package ports

import (
	"context"

	"github.com/nmoreno/courtpulse/internal/domain"
)

// ObservationStore es el log append-only de observaciones: una fila por
// (partido, tick), flush inmediato. Es el sistema de registro del motor;
// un fallo de escritura es fatal para el proceso.
type ObservationStore interface {
	AppendObservation(ctx context.Context, obs domain.GameObservation) error
}

// ResultStore persiste el registro terminal de cada partido.
type ResultStore interface {
	// SaveResult inserta el resultado si no existe ya una fila para
	// (game_id, date). Devuelve true si insertó, false si ya existía.
	SaveResult(ctx context.Context, res domain.GameResult) (bool, error)

	// ListResults devuelve los resultados registrados, más recientes al final.
	ListResults(ctx context.Context) ([]domain.GameResult, error)
}

// AliasStore persiste los alias aprendidos por el resolver de identidades.
type AliasStore interface {
	// SaveAlias registra un alias → nombre canónico.
	SaveAlias(ctx context.Context, canonical, alias string) error

	// LoadAliases devuelve todos los alias persistidos: canónico → alias.
	LoadAliases(ctx context.Context) (map[string][]string, error)
}
