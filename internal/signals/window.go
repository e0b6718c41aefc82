package signals

import (
	"sort"
	"time"

	"spendlens/internal/models"
)

// Window sizes the engine computes. Each invocation produces one SignalSet
// per window from the same underlying transaction collection.
const (
	WindowShortDays = 30
	WindowLongDays  = 180
)

// inWindow reports whether ts falls inside the trailing window ending at
// reference (inclusive on both ends).
func inWindow(ts, reference time.Time, days int) bool {
	start := reference.AddDate(0, 0, -days)
	return !ts.Before(start) && !ts.After(reference)
}

// filterWindow returns the transactions inside the trailing window.
func filterWindow(transactions []models.Transaction, reference time.Time, days int) []models.Transaction {
	var out []models.Transaction
	for _, t := range transactions {
		if inWindow(t.Date, reference, days) {
			out = append(out, t)
		}
	}
	return out
}

// sortByDate returns a copy sorted ascending by transaction date.
func sortByDate(transactions []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(transactions))
	copy(out, transactions)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// gapDays returns the whole-day gaps between consecutive transactions,
// ascending by date. Same-day pairs produce a zero gap.
func gapDays(sorted []models.Transaction) []float64 {
	var gaps []float64
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, sorted[i].Date.Sub(sorted[i-1].Date).Hours()/24)
	}
	return gaps
}

// monthlyRate normalizes an amount accumulated over windowDays to a 30-day
// period.
func monthlyRate(amount float64, windowDays int) float64 {
	if windowDays <= 0 {
		return 0
	}
	return amount / float64(windowDays) * 30
}
