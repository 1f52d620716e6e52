package ports

import (
	"context"

	"github.com/nmoreno/courtpulse/internal/domain"
)

// LineEvent es un evento del proveedor de líneas: nombres de equipos tal
// como los reporta ese proveedor más su línea de totales.
type LineEvent struct {
	HomeTeam string
	AwayTeam string
	Line     domain.MarketLine
}

// LineProvider obtiene las líneas de totales del mercado.
type LineProvider interface {
	// FetchTotals devuelve la línea de totales de cada evento con mercado
	// abierto. Los nombres de equipo vienen en el esquema del proveedor y
	// deben resolverse contra el resolver de identidades.
	FetchTotals(ctx context.Context) ([]LineEvent, error)
}

// OpeningLineProvider enriquece un partido con su línea de apertura,
// cuando el proveedor la expone.
type OpeningLineProvider interface {
	// FetchOpeningTotal devuelve (total de apertura, true) o (0, false)
	// si el partido no tiene línea de apertura publicada.
	FetchOpeningTotal(ctx context.Context, gameID string) (float64, bool, error)
}
