// Package prices selects the closing prices surrounding a trade date. The
// window is look-back heavy: it shows what led into the trade plus a short
// look-ahead for the immediate outcome.
package prices

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/inveskit/trade-mentor/internal/types"
)

// Default window bounds, in days, inclusive on both ends.
const (
	DefaultLookBackDays  = 10
	DefaultLookAheadDays = 5
)

// ErrBadDate indicates an unparseable trade date. Callers convert it into a
// "no surrounding data" marker so one bad date never aborts a full request.
var ErrBadDate = errors.New("unparseable date")

// Window selects price points within [trade-LookBack, trade+LookAhead].
type Window struct {
	LookBackDays  int
	LookAheadDays int
}

// DefaultWindow returns the standard 10-back/5-ahead window.
func DefaultWindow() Window {
	return Window{LookBackDays: DefaultLookBackDays, LookAheadDays: DefaultLookAheadDays}
}

// Around returns the price points inside the window around tradeDate, in
// chronological order. No matching points yields an empty slice. A malformed
// trade date fails with ErrBadDate; malformed individual price points are
// skipped, degrading only that data point.
func (w Window) Around(tradeDate string, points []types.PricePoint) ([]types.PricePoint, error) {
	target, err := time.Parse(types.DateLayout, tradeDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadDate, tradeDate)
	}

	start := target.AddDate(0, 0, -w.LookBackDays)
	end := target.AddDate(0, 0, w.LookAheadDays)

	var inWindow []types.PricePoint
	for _, p := range points {
		d, err := time.Parse(types.DateLayout, p.Date)
		if err != nil {
			continue
		}
		if !d.Before(start) && !d.After(end) {
			inWindow = append(inWindow, p)
		}
	}

	sort.Slice(inWindow, func(i, j int) bool {
		return inWindow[i].Date < inWindow[j].Date
	})
	return inWindow, nil
}
