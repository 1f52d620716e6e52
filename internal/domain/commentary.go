package domain

import (
	"fmt"
	"math"
	"strings"
)

// CommentaryConfig controla los umbrales y el tamaño del texto generado.
type CommentaryConfig struct {
	PaceDeltaThreshold float64 // cambio de PPM vs N minutos atrás que merece cláusula
	LineDeltaThreshold float64 // movimiento de línea que merece cláusula
	MaxLength          int     // truncado final en caracteres
}

// DefaultCommentaryConfig devuelve los umbrales de producción.
func DefaultCommentaryConfig() CommentaryConfig {
	return CommentaryConfig{
		PaceDeltaThreshold: 0.5,
		LineDeltaThreshold: 1.0,
		MaxLength:          240,
	}
}

// CommentaryInput son los valores actuales y los de N minutos atrás.
// Los punteros Prior* son nil cuando aún no hay histórico suficiente.
type CommentaryInput struct {
	CurrentPPM     float64
	Line           float64
	ProjectedFinal float64
	PriorPPM       *float64
	PriorLine      *float64
	Momentum       MomentumDirection
}

// Commentary genera la explicación determinista de una observación:
// una cláusula por umbral cruzado más la cláusula final de tracking.
// Entradas idénticas producen siempre el mismo texto.
func Commentary(in CommentaryInput, cfg CommentaryConfig) string {
	var clauses []string

	if in.PriorPPM != nil {
		delta := in.CurrentPPM - *in.PriorPPM
		switch {
		case delta >= cfg.PaceDeltaThreshold:
			clauses = append(clauses, fmt.Sprintf("pace heating up (+%.1f ppm)", delta))
		case delta <= -cfg.PaceDeltaThreshold:
			clauses = append(clauses, fmt.Sprintf("pace cooling (%.1f ppm)", delta))
		}
	}

	if in.PriorLine != nil && math.Abs(in.Line-*in.PriorLine) >= cfg.LineDeltaThreshold {
		clauses = append(clauses, fmt.Sprintf("line moved %.1f to %.1f", *in.PriorLine, in.Line))
	}

	switch in.Momentum {
	case MomentumUp:
		clauses = append(clauses, "scoring momentum up")
	case MomentumDown:
		clauses = append(clauses, "scoring momentum down")
	}

	gap := in.ProjectedFinal - in.Line
	if gap >= 0 {
		clauses = append(clauses, fmt.Sprintf("tracking %.1f points over pace", gap))
	} else {
		clauses = append(clauses, fmt.Sprintf("tracking %.1f points under pace", -gap))
	}

	text := strings.Join(clauses, "; ")
	if cfg.MaxLength > 0 && len(text) > cfg.MaxLength {
		text = text[:cfg.MaxLength]
	}
	return text
}
