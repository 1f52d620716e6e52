package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/nmoreno/courtpulse/internal/domain"
)

const exceptionalConfidence = 85

// Console implementa ports.Notifier escribiendo a stdout.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador de consola. Con table=true imprime el
// bloque completo de alerta; si no, una línea compacta.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// NotifyTrigger imprime la alerta de un trigger de apuesta.
func (c *Console) NotifyTrigger(_ context.Context, obs domain.GameObservation) error {
	if c.table {
		c.printTriggerBlock(obs)
	} else {
		c.printTriggerCompact(obs)
	}
	return nil
}

// NotifyResult imprime el desenlace de un partido reconciliado.
func (c *Console) NotifyResult(_ context.Context, res domain.GameResult) error {
	label := strings.ToUpper(string(res.OUResult))
	if label == "" {
		label = "NO LINE"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] FINAL %s %d - %s %d (total %d, %s)",
		time.Now().Format("15:04:05"),
		res.HomeTeam, res.FinalHomeScore,
		res.AwayTeam, res.FinalAwayScore,
		res.FinalTotal, label)
	if res.WentToOT {
		sb.WriteString(" [OT]")
	}
	if res.OurTrigger {
		fmt.Fprintf(&sb, " | signal %s %.0fu → %s %+.2fu",
			strings.ToUpper(string(res.TriggerSide)), res.MaxUnits,
			strings.ToUpper(string(res.Outcome)), res.UnitProfit)
	}

	fmt.Fprintln(c.out, sb.String())
	return nil
}

// printTriggerCompact imprime lo esencial en una línea.
func (c *Console) printTriggerCompact(obs domain.GameObservation) {
	now := time.Now().Format("15:04:05")

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] TRIGGER %s %s vs %s %d-%d",
		now, strings.ToUpper(string(obs.BetType)),
		obs.HomeTeam, obs.AwayTeam, obs.HomeScore, obs.AwayScore)
	if obs.OULine != nil {
		fmt.Fprintf(&sb, " line %.1f", *obs.OULine)
	}
	if obs.RequiredPPM != nil && obs.CurrentPPM != nil {
		fmt.Fprintf(&sb, " req %.2f cur %.2f", *obs.RequiredPPM, *obs.CurrentPPM)
	}
	fmt.Fprintf(&sb, " conf %.0f units %.1f", obs.ConfidenceScore, obs.UnitSize)
	if obs.ConfidenceScore >= exceptionalConfidence {
		sb.WriteString(" *** EXCEPTIONAL ***")
	}

	fmt.Fprintln(c.out, sb.String())
}

// printTriggerBlock imprime la tabla de alerta con toda la señal derivada.
func (c *Console) printTriggerBlock(obs domain.GameObservation) {
	now := time.Now().Format("15:04:05")

	header := fmt.Sprintf("\n[%s] ===== %s TRIGGER — %s vs %s =====",
		now, strings.ToUpper(string(obs.BetType)), obs.HomeTeam, obs.AwayTeam)
	if obs.ConfidenceScore >= exceptionalConfidence {
		header += "  *** EXCEPTIONAL CONFIDENCE ***"
	}
	fmt.Fprintln(c.out, header)

	table := tablewriter.NewWriter(c.out)
	table.Header("Score", "Period", "Clock", "Line", "Req PPM", "Cur PPM", "Proj", "Conf", "Units")
	table.Append(
		fmt.Sprintf("%d-%d", obs.HomeScore, obs.AwayScore),
		fmt.Sprintf("%d", obs.Period),
		fmt.Sprintf("%d:%02d", obs.MinutesRemaining, obs.SecondsRemaining),
		fmtPtr(obs.OULine, "%.1f"),
		fmtPtr(obs.RequiredPPM, "%.2f"),
		fmtPtr(obs.CurrentPPM, "%.2f"),
		fmtPtr(obs.ProjectedFinal, "%.1f"),
		fmt.Sprintf("%.0f", obs.ConfidenceScore),
		fmt.Sprintf("%.1f", obs.UnitSize),
	)
	table.Render()

	if obs.Notes != "" {
		fmt.Fprintf(c.out, "  %s\n", obs.Notes)
	}
	fmt.Fprintln(c.out)
}

// --- helpers ---

func fmtPtr(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}
