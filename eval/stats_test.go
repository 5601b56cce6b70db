package eval

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccumulateOrderIndependent(t *testing.T) {
	outcomes := []Outcome{
		{Winner: "a", Loser: "b"},
		{Winner: "b", Loser: "a"},
		{Winner: "a", Loser: "b"},
		{Winner: "a", Loser: "b"},
	}
	forward := make(map[string]*WinStats)
	Accumulate(forward, outcomes...)

	reversed := make(map[string]*WinStats)
	for i := len(outcomes) - 1; i >= 0; i-- {
		Accumulate(reversed, outcomes[i])
	}

	require.Equal(t, forward, reversed, "Totals must not depend on completion order")
	require.Equal(t, WinStats{Wins: 3, Losses: 1}, *forward["a"])
	require.Equal(t, WinStats{Wins: 1, Losses: 3}, *forward["b"])
}

func TestAccumulateConservesMatches(t *testing.T) {
	outcomes := []Outcome{
		{Winner: "a", Loser: "b"},
		{Winner: "b", Loser: "a"},
		{Winner: "b", Loser: "a"},
	}
	stats := make(map[string]*WinStats)
	Accumulate(stats, outcomes...)

	wins, losses := 0, 0
	for _, s := range stats {
		wins += s.Wins
		losses += s.Losses
	}
	require.Equal(t, len(outcomes), wins, "Every match produces exactly one win")
	require.Equal(t, len(outcomes), losses, "Every match produces exactly one loss")
}

func TestFormatWinStatsTable(t *testing.T) {
	table := FormatWinStatsTable([]PolicyStats{
		{Name: "candidate-000123", WinStats: WinStats{Wins: 7, Losses: 3}},
		{Name: "ref", WinStats: WinStats{Wins: 3, Losses: 7}},
	})
	require.Contains(t, table, "candidate-000123")
	require.Contains(t, table, "ref")
	require.Contains(t, table, "policy")
	require.Contains(t, table, "7")
}
