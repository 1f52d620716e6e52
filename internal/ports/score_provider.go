package ports

import (
	"context"

	"github.com/nmoreno/courtpulse/internal/domain"
)

// ScoreProvider obtiene el marcador y reloj en vivo de los partidos del día.
type ScoreProvider interface {
	// FetchScoreboard devuelve un snapshot por partido (en juego o no).
	FetchScoreboard(ctx context.Context) ([]domain.GameSnapshot, error)
}
