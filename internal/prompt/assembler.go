// Package prompt groups trades by instrument and renders the grounded
// analysis request sent to the language model. Rendering is pure: the same
// trades, prices and context always produce the same prompt.
package prompt

import (
	"fmt"
	"strings"

	"github.com/inveskit/trade-mentor/internal/prices"
	"github.com/inveskit/trade-mentor/internal/types"
)

// NoDataMarker is rendered when a trade has no surrounding price data or an
// unparseable date. The section is always present so the prompt keeps a
// fixed structure.
const NoDataMarker = "  (no price data around this date)"

// Group is the trades for one instrument, in original input order.
// The code is the first-seen one for that instrument name.
type Group struct {
	Name   string
	Code   string
	Trades []types.Trade
}

// GroupByInstrument groups trades by instrument name, preserving first-seen
// instrument order and, within each group, original trade order.
func GroupByInstrument(trades []types.Trade) []Group {
	byName := make(map[string]int)
	var groups []Group
	for _, t := range trades {
		i, seen := byName[t.StockName]
		if !seen {
			i = len(groups)
			byName[t.StockName] = i
			groups = append(groups, Group{Name: t.StockName, Code: t.StockCode})
		}
		groups[i].Trades = append(groups[i].Trades, t)
	}
	return groups
}

// Options parameterizes the template. The per-trade variant is superseded;
// it remains only as a template parameter.
type Options struct {
	// GroupByInstrument renders one block and requires one result entry per
	// instrument rather than per trade.
	GroupByInstrument bool
	// SingleEntryPerInstrument makes the template assert the exactly-one-
	// entry-per-instrument contract explicitly; generators otherwise tend to
	// emit one entry per trade.
	SingleEntryPerInstrument bool
	// IncludeScoreBands enumerates the scoring bands in the instructions.
	IncludeScoreBands bool
}

// DefaultOptions is the current behavior: per-instrument grouping with the
// explicit single-entry requirement and score bands.
func DefaultOptions() Options {
	return Options{
		GroupByInstrument:        true,
		SingleEntryPerInstrument: true,
		IncludeScoreBands:        true,
	}
}

// Assembler renders analysis prompts.
type Assembler struct {
	window prices.Window
	opts   Options
}

// NewAssembler creates an assembler using the given price window and
// template options.
func NewAssembler(window prices.Window, opts Options) *Assembler {
	return &Assembler{window: window, opts: opts}
}

// Render merges the trades, their price-context windows and the retrieved
// strategy context into one instructional prompt.
func (a *Assembler) Render(trades []types.Trade, points []types.PricePoint, strategyContext string) string {
	var records string
	if a.opts.GroupByInstrument {
		records = a.renderGroups(GroupByInstrument(trades), points)
	} else {
		records = a.renderFlat(trades, points)
	}
	return a.renderTemplate(strategyContext, records)
}

func (a *Assembler) renderGroups(groups []Group, points []types.PricePoint) string {
	var b strings.Builder
	rule := strings.Repeat("=", 50)
	for idx, g := range groups {
		fmt.Fprintf(&b, "\n%s\n", rule)
		fmt.Fprintf(&b, "[Instrument %d] %s (code: %s)\n", idx+1, g.Name, g.Code)
		fmt.Fprintf(&b, "%s\n\nTrade history:\n", rule)
		for i, t := range g.Trades {
			fmt.Fprintf(&b, "\n  [%d] %s - %s\n", i+1, t.Date, actionLabel(t.TradeType))
			fmt.Fprintf(&b, "      - price: %.0f\n", t.Price)
			fmt.Fprintf(&b, "      - quantity: %d\n\n", t.Quantity)
			fmt.Fprintf(&b, "  Price action around the trade:\n%s\n", a.priceContext(t.Date, points))
		}
		fmt.Fprintf(&b, "\n%s\n", strings.Repeat("-", 50))
	}
	return b.String()
}

func (a *Assembler) renderFlat(trades []types.Trade, points []types.PricePoint) string {
	var b strings.Builder
	for i, t := range trades {
		fmt.Fprintf(&b, "\n[Trade %d]\n", i+1)
		fmt.Fprintf(&b, "- instrument: %s\n", t.StockName)
		fmt.Fprintf(&b, "- date: %s\n", t.Date)
		fmt.Fprintf(&b, "- action: %s (price: %.0f)\n", actionLabel(t.TradeType), t.Price)
		fmt.Fprintf(&b, "- price action at the time:\n%s\n", a.priceContext(t.Date, points))
		fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 32))
	}
	return b.String()
}

// priceContext renders the window for one trade date, degrading to the
// no-data marker on a bad date or an empty window.
func (a *Assembler) priceContext(tradeDate string, points []types.PricePoint) string {
	window, err := a.window.Around(tradeDate, points)
	if err != nil || len(window) == 0 {
		return NoDataMarker
	}
	lines := make([]string, len(window))
	for i, p := range window {
		lines[i] = fmt.Sprintf("  %s: %.0f", p.Date, p.ClosePrice)
	}
	return strings.Join(lines, "\n")
}

func actionLabel(tradeType string) string {
	if tradeType == types.ActionSell {
		return "sell"
	}
	return "buy"
}
