package notify

import (
	"context"
	"errors"

	"github.com/nmoreno/courtpulse/internal/domain"
	"github.com/nmoreno/courtpulse/internal/ports"
)

// Multi reparte cada notificación a varios notificadores. Los errores se
// acumulan: que falle Telegram no silencia la consola.
type Multi struct {
	targets []ports.Notifier
}

// NewMulti agrupa notificadores. Con uno solo se comporta como ese.
func NewMulti(targets ...ports.Notifier) *Multi {
	return &Multi{targets: targets}
}

// NotifyTrigger reenvía la alerta a todos los destinos.
func (m *Multi) NotifyTrigger(ctx context.Context, obs domain.GameObservation) error {
	var errs []error
	for _, t := range m.targets {
		if err := t.NotifyTrigger(ctx, obs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NotifyResult reenvía el cierre a todos los destinos.
func (m *Multi) NotifyResult(ctx context.Context, res domain.GameResult) error {
	var errs []error
	for _, t := range m.targets {
		if err := t.NotifyResult(ctx, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
