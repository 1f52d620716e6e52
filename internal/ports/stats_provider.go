package ports

import (
	"context"

	"github.com/nmoreno/courtpulse/internal/domain"
)

// StatsProvider sirve las métricas de referencia por equipo. Se refrescan en
// cadencia diaria, independiente del polling de partidos.
type StatsProvider interface {
	// TeamMetrics devuelve las métricas del equipo o (nil, false) si el
	// equipo no está en el dataset. La ausencia no es un error.
	TeamMetrics(ctx context.Context, canonicalName string) (*domain.TeamMetrics, bool)

	// Refresh fuerza una recarga del dataset.
	Refresh(ctx context.Context) error
}
