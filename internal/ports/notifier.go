package ports

import (
	"context"

	"github.com/nmoreno/courtpulse/internal/domain"
)

// Notifier anuncia señales nuevas al usuario.
type Notifier interface {
	// NotifyTrigger anuncia una señal recién disparada.
	NotifyTrigger(ctx context.Context, obs domain.GameObservation) error

	// NotifyResult anuncia el cierre de un partido con señal registrada.
	NotifyResult(ctx context.Context, res domain.GameResult) error
}
