package eval

import (
	"fmt"
	"strings"
)

// WinStats are one policy's aggregate counters. They only grow; one match
// contributes exactly one win and one loss, split between its two policies.
type WinStats struct {
	Wins   int
	Losses int
}

// PolicyStats pairs a policy name with its counters for reporting.
type PolicyStats struct {
	Name string
	WinStats
}

// Accumulate merges match outcomes into per-policy counters. The merge is
// commutative and associative, so the totals are independent of match
// completion order.
func Accumulate(stats map[string]*WinStats, outcomes ...Outcome) {
	for _, o := range outcomes {
		if stats[o.Winner] == nil {
			stats[o.Winner] = &WinStats{}
		}
		if stats[o.Loser] == nil {
			stats[o.Loser] = &WinStats{}
		}
		stats[o.Winner].Wins++
		stats[o.Loser].Losses++
	}
}

// FormatWinStatsTable renders the aggregate as an aligned table keyed by
// policy name.
func FormatWinStatsTable(rows []PolicyStats) string {
	nameWidth := len("policy")
	for _, r := range rows {
		if len(r.Name) > nameWidth {
			nameWidth = len(r.Name)
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-*s  %6s  %6s\n", nameWidth, "policy", "wins", "losses")
	for _, r := range rows {
		fmt.Fprintf(&b, "%-*s  %6d  %6d\n", nameWidth, r.Name, r.Wins, r.Losses)
	}
	return strings.TrimRight(b.String(), "\n")
}
