package main

// report.go — modo --report: récord W/L, beneficio en unidades y desglose
// por tamaño de apuesta, a partir del registro terminal.

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"

	"github.com/nmoreno/courtpulse/internal/domain"
	"github.com/nmoreno/courtpulse/internal/ports"
)

type tierStats struct {
	wins   int
	losses int
	pushes int
	profit float64
}

func runReport(ctx context.Context, store ports.ResultStore, out io.Writer) error {
	results, err := store.ListResults(ctx)
	if err != nil {
		return err
	}

	var triggered []domain.GameResult
	for _, r := range results {
		if r.OurTrigger {
			triggered = append(triggered, r)
		}
	}

	fmt.Fprintf(out, "\n=== RESULTS REPORT — %d games recorded, %d with signal ===\n\n",
		len(results), len(triggered))

	if len(triggered) == 0 {
		fmt.Fprintln(out, "  No signals recorded yet.")
		return nil
	}

	byTier := make(map[float64]*tierStats)
	total := tierStats{}
	var staked float64

	for _, r := range triggered {
		ts, ok := byTier[r.MaxUnits]
		if !ok {
			ts = &tierStats{}
			byTier[r.MaxUnits] = ts
		}
		switch r.Outcome {
		case domain.OutcomeWin:
			ts.wins++
			total.wins++
		case domain.OutcomeLoss:
			ts.losses++
			total.losses++
		case domain.OutcomePush:
			ts.pushes++
			total.pushes++
		}
		ts.profit += r.UnitProfit
		total.profit += r.UnitProfit
		staked += r.MaxUnits
	}

	table := tablewriter.NewWriter(out)
	table.Header("Units", "W", "L", "Push", "Win%", "Profit (u)")

	tiers := make([]float64, 0, len(byTier))
	for u := range byTier {
		tiers = append(tiers, u)
	}
	sort.Float64s(tiers)

	for _, u := range tiers {
		ts := byTier[u]
		table.Append(
			fmt.Sprintf("%.1f", u),
			fmt.Sprintf("%d", ts.wins),
			fmt.Sprintf("%d", ts.losses),
			fmt.Sprintf("%d", ts.pushes),
			winPct(ts.wins, ts.losses),
			fmt.Sprintf("%+.2f", ts.profit),
		)
	}
	table.Append(
		"TOTAL",
		fmt.Sprintf("%d", total.wins),
		fmt.Sprintf("%d", total.losses),
		fmt.Sprintf("%d", total.pushes),
		winPct(total.wins, total.losses),
		fmt.Sprintf("%+.2f", total.profit),
	)
	table.Render()

	if staked > 0 {
		fmt.Fprintf(out, "\n  Units staked: %.1f | ROI: %+.1f%%\n", staked, total.profit/staked*100)
	}

	ot := 0
	for _, r := range triggered {
		if r.WentToOT {
			ot++
		}
	}
	if ot > 0 {
		fmt.Fprintf(out, "  Games with signal that went to OT: %d\n", ot)
	}
	fmt.Fprintln(out)
	return nil
}

func winPct(wins, losses int) string {
	if wins+losses == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", float64(wins)/float64(wins+losses)*100)
}
