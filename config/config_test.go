package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 32, cfg.ParallelGames)
	require.Equal(t, 19, cfg.BoardSize)
	require.Equal(t, 7.5, cfg.Komi)
	require.Equal(t, 100, cfg.EvalReadouts)
	require.Equal(t, 100, cfg.TargetReadouts)
	require.True(t, cfg.ResignEnabled)
	require.Equal(t, -0.999, cfg.ResignThreshold)
	require.Equal(t, 8, cfg.VirtualLosses)
	require.Equal(t, 2.0, cfg.ValueInitPenalty)
	require.Empty(t, cfg.ExportTable)
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eval.yaml")
	body := `
eval_model: models/candidate.onnx
target_model: models/reference.onnx
parallel_games: 4
board_size: 9
komi: 5.5
verbose: false
export_table: proj,mongodb://localhost:27017,matches
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "models/candidate.onnx", cfg.EvalModel)
	require.Equal(t, 4, cfg.ParallelGames)
	require.Equal(t, 9, cfg.BoardSize)
	require.Equal(t, 5.5, cfg.Komi)
	require.False(t, cfg.Verbose)
	// Untouched keys keep their defaults.
	require.Equal(t, 100, cfg.EvalReadouts)
}

func TestLoadRejectsBadConfig(t *testing.T) {
	writeCfg := func(t *testing.T, body string) string {
		path := filepath.Join(t.TempDir(), "eval.yaml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed export target", func(t *testing.T) {
		_, err := Load(writeCfg(t, "export_table: proj,matches\n"))
		require.Error(t, err)
	})

	t.Run("non-positive parallel games", func(t *testing.T) {
		_, err := Load(writeCfg(t, "parallel_games: 0\n"))
		require.Error(t, err)
	})

	t.Run("oversized board", func(t *testing.T) {
		_, err := Load(writeCfg(t, "board_size: 25\n"))
		require.Error(t, err)
	})
}
